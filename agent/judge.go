package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/sdh-lab/interview-pipeline/transcript"
)

// Default split between the two qualitative dimensions.
const (
	DefaultKnowledgeWeight = 0.7
	DefaultAttitudeWeight  = 0.3
)

// Judgment is the qualitative result of one scoring call. Scores are clamped
// to [0,10] and rounded to 2 decimals; Explanation carries the judge's full
// JSON payload for the report.
type Judgment struct {
	Knowledge   float64
	Attitude    float64
	Final       float64
	Explanation map[string]any
}

// Judge scores interview transcripts against the fixed rubric.
type Judge struct {
	llm        LLM
	wKnowledge float64
	wAttitude  float64
}

// NewJudge builds a judge over the given chat client. Zero weights select the
// defaults.
func NewJudge(llm LLM, wKnowledge, wAttitude float64) *Judge {
	if wKnowledge == 0 && wAttitude == 0 {
		wKnowledge = DefaultKnowledgeWeight
		wAttitude = DefaultAttitudeWeight
	}
	return &Judge{llm: llm, wKnowledge: wKnowledge, wAttitude: wAttitude}
}

// Evaluate asks the model to score the transcript and validates the reply.
// The final score is always recomputed from the two dimension scores; the
// model's own arithmetic is never trusted.
func (j *Judge) Evaluate(ctx context.Context, role string, turns []transcript.QATurn) (*Judgment, error) {
	system, user, err := judgePrompt(role, turns, j.wKnowledge, j.wAttitude)
	if err != nil {
		return nil, err
	}

	reply, err := j.llm.Chat(ctx, system, user)
	if err != nil {
		return nil, err
	}

	raw, ok := ExtractJSON(reply)
	if !ok {
		return nil, fmt.Errorf("model did not return valid JSON: %s", clip(reply, 500))
	}

	knowledge, ok := numeric(gjson.GetBytes(raw, "scores.knowledge.score"))
	if !ok {
		return nil, errors.New("judge reply missing numeric scores.knowledge.score")
	}
	attitude, ok := numeric(gjson.GetBytes(raw, "scores.attitude.score"))
	if !ok {
		return nil, errors.New("judge reply missing numeric scores.attitude.score")
	}

	knowledge = clamp10(knowledge)
	attitude = clamp10(attitude)
	final := clamp10(knowledge*j.wKnowledge + attitude*j.wAttitude)

	var explanation map[string]any
	if err := json.Unmarshal(raw, &explanation); err != nil {
		return nil, fmt.Errorf("judge explanation decode: %w", err)
	}

	return &Judgment{
		Knowledge:   round2(knowledge),
		Attitude:    round2(attitude),
		Final:       round2(final),
		Explanation: explanation,
	}, nil
}

var jsonBlobRe = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractJSON pulls a JSON object out of a model reply, tolerating code
// fences and prose around the braces.
func ExtractJSON(s string) ([]byte, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return nil, false
	}
	if strings.HasPrefix(raw, "```") {
		rest := strings.TrimSpace(strings.TrimPrefix(raw, "```"))
		if i := strings.Index(rest, "\n"); i >= 0 {
			rest = rest[i+1:]
		}
		if j := strings.LastIndex(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		raw = strings.TrimSpace(rest)
	}
	if json.Valid([]byte(raw)) {
		return []byte(raw), true
	}
	if m := jsonBlobRe.FindString(raw); m != "" && json.Valid([]byte(m)) {
		return []byte(m), true
	}
	return nil, false
}

func numeric(r gjson.Result) (float64, bool) {
	switch r.Type {
	case gjson.Number:
		return r.Num, true
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func clamp10(x float64) float64 {
	return math.Max(0.0, math.Min(10.0, x))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
