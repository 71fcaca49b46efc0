package evaluation

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sdh-lab/interview-pipeline/agent"
	"github.com/sdh-lab/interview-pipeline/emotion"
	"github.com/sdh-lab/interview-pipeline/transcript"
)

// TranscriptJudge scores a parsed transcript. *agent.Judge satisfies it; the
// tests plug in fakes.
type TranscriptJudge interface {
	Evaluate(ctx context.Context, role string, turns []transcript.QATurn) (*agent.Judgment, error)
}

// Config wires a Service. A nil Judge is allowed: evaluation then runs on
// the affect track alone and JudgeNote lands in the report's agent.error.
type Config struct {
	BaseDir     string
	OutputsDir  string
	Judge       TranscriptJudge
	JudgeNote   string
	Weights     emotion.Weights
	Sufficiency SufficiencyParams
}

// Service resolves session artifacts and runs one full evaluation pass:
// emotion log to affect score, transcript to adjusted judgment, fusion.
type Service struct {
	baseDir    string
	outputsDir string
	judge      TranscriptJudge
	judgeNote  string
	weights    emotion.Weights
	suff       SufficiencyParams
	log        *logrus.Entry
}

func NewService(c Config) *Service {
	if c.Weights == (emotion.Weights{}) {
		c.Weights = emotion.DefaultWeights()
	}
	if c.Sufficiency.MinRequired == 0 {
		c.Sufficiency = DefaultSufficiencyParams()
	}
	if c.Judge == nil && c.JudgeNote == "" {
		c.JudgeNote = "llm judge unavailable (skip agent scoring)"
	}
	return &Service{
		baseDir:    c.BaseDir,
		outputsDir: c.OutputsDir,
		judge:      c.Judge,
		judgeNote:  c.JudgeNote,
		weights:    c.Weights,
		suff:       c.Sufficiency,
		log:        logrus.WithField("component", "evaluation"),
	}
}

// Request selects the session and optional per-call overrides. A nil weight
// falls back to its default; explicit values are honored as given, zero
// included. Explicit paths skip the resolver, and an empty Role leaves role
// inference to the judge.
type Request struct {
	SessionID      string
	Role           string
	BaseDir        string
	TranscriptPath string
	EmotionPath    string
	WKnowledge     *float64
	WAttitude      *float64
	WAgentFinal    *float64
	WEmotion       *float64
}

func weightOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// Evaluate runs one full pass for a session. Missing artifacts return an
// ErrNotFound-wrapped error; a failed or unavailable judge degrades to an
// affect-only report instead of failing.
func (s *Service) Evaluate(ctx context.Context, req Request) (*Report, error) {
	wk := weightOr(req.WKnowledge, agent.DefaultKnowledgeWeight)
	wa := weightOr(req.WAttitude, agent.DefaultAttitudeWeight)
	wf := weightOr(req.WAgentFinal, DefaultAgentFinalWeight)
	we := weightOr(req.WEmotion, DefaultEmotionWeight)

	baseDir := strings.TrimSpace(req.BaseDir)
	if baseDir == "" {
		baseDir = s.baseDir
	}
	resolver := NewResolver(baseDir)

	tp := strings.TrimSpace(req.TranscriptPath)
	if tp == "" {
		var err error
		if tp, err = resolver.Transcript(req.SessionID); err != nil {
			return nil, err
		}
	}
	ep := strings.TrimSpace(req.EmotionPath)
	if ep == "" {
		var err error
		if ep, err = resolver.EmotionLog(req.SessionID); err != nil {
			return nil, err
		}
	}

	emoRaw, err := os.ReadFile(ep)
	if err != nil {
		return nil, fmt.Errorf("read emotion log: %w", err)
	}
	events := emotion.ParseLog(string(emoRaw))
	dist := emotion.Distribute(events)
	emoScore, emoDetail := emotion.Score(events, s.weights)

	var (
		judgment *agent.Judgment
		turns    []transcript.QATurn
		agentErr string
	)
	if s.judge == nil {
		agentErr = s.judgeNote
	} else if raw, err := os.ReadFile(tp); err != nil {
		agentErr = fmt.Sprintf("agent scoring failed: %v", err)
	} else {
		turns = transcript.Parse(string(raw))
		if judgment, err = s.judge.Evaluate(ctx, req.Role, turns); err != nil {
			judgment = nil
			agentErr = fmt.Sprintf("agent scoring failed: %v", err)
		}
	}

	var (
		scores      *AgentScoreSummary
		fused       *AgentScores
		explanation map[string]any
		suffDetail  *SufficiencyDetail
	)
	if judgment != nil {
		nValid := 0
		for _, t := range turns {
			if ValidAnswer(t.Answer) {
				nValid++
			}
		}
		adj := AdjustSufficiency(judgment.Knowledge, judgment.Attitude, wk, wa, nValid, s.suff)

		scores = &AgentScoreSummary{KnowledgeScore: adj.Knowledge, AttitudeScore: adj.Attitude, AgentFinalScore: adj.Final}
		fused = &AgentScores{Knowledge: adj.Knowledge, Attitude: adj.Attitude, Final: adj.Final}

		explanation = judgment.Explanation
		if explanation == nil {
			explanation = map[string]any{}
		}
		if _, ok := explanation["data_sufficiency"]; !ok {
			explanation["data_sufficiency"] = adj.Detail
		}
		d := adj.Detail
		suffDetail = &d
	}

	overall := ComputeTotal(emoScore, fused, wf, we)
	if suffDetail != nil {
		overall.DataSufficiency = suffDetail
		overall.Detail.DataSufficiency = suffDetail
	}

	var role *string
	if req.Role != "" {
		r := req.Role
		role = &r
	}
	var agentFailure *string
	if agentErr != "" {
		agentFailure = &agentErr
	}

	report := &Report{
		Inputs: Inputs{
			BaseDir:              baseDir,
			SessionID:            req.SessionID,
			Role:                 role,
			TranscriptPath:       tp,
			EmotionPath:          ep,
			AgentInternalWeights: InternalWeights{Knowledge: wk, Attitude: wa},
			OverallWeights:       OverallWeights{AgentFinal: wf, EmotionFace: we},
		},
		Emotion: EmotionBlock{
			TotalEvents:  len(events),
			Distribution: dist.Round(4),
			Score:        emoScore,
			Detail:       emoDetail,
		},
		Agent:   AgentBlock{Scores: scores, Error: agentFailure, Explanation: explanation},
		Overall: overall,
	}

	s.log.WithFields(logrus.Fields{
		"session": req.SessionID,
		"events":  len(events),
		"judged":  judgment != nil,
	}).Info("evaluation complete")

	if s.outputsDir != "" {
		if path, err := s.persist(report); err != nil {
			s.log.WithError(err).Warn("report persistence failed")
		} else {
			s.log.WithField("path", path).Info("report persisted")
		}
	}
	return report, nil
}
