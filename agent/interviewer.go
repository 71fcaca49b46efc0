package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sdh-lab/interview-pipeline/transcript"
)

var (
	// ErrSessionNotFound reports an unknown mock session id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrMissingInput reports a start request without CV or JD text.
	ErrMissingInput = errors.New("cv_text and jd_text are required")
)

// TurnResult is what the candidate sees after submitting an answer.
type TurnResult struct {
	ReasoningSummary string   `json:"reasoning_summary"`
	NextQuestion     string   `json:"next_question"`
	Followups        []string `json:"followups"`
}

type interviewTurn struct {
	question string
	answer   string
	answered bool
	summary  string
	at       time.Time
}

type interviewSession struct {
	id     string
	cvText string
	jdText string
	role   string
	turns  []interviewTurn
}

// Interviewer runs adaptive mock interviews: one opening question, then a
// summary plus follow-up per answer. Sessions live in memory; the transcript
// export is the durable record.
type Interviewer struct {
	llm LLM
	dir string

	mu       sync.Mutex
	sessions map[string]*interviewSession

	log *logrus.Entry
}

// NewInterviewer builds an interviewer exporting transcripts into dir.
func NewInterviewer(llm LLM, dir string) *Interviewer {
	return &Interviewer{
		llm:      llm,
		dir:      dir,
		sessions: map[string]*interviewSession{},
		log:      logrus.WithField("component", "interviewer"),
	}
}

var roleRe = regexp.MustCompile(`(?i)(Senior|Junior|Lead)?\s*([A-Za-z ]+(Engineer|Developer|Scientist|Manager))`)

// roleFromJD prefers an explicit role, then a title-looking phrase from the
// JD, then a neutral placeholder.
func roleFromJD(jdText, fallback string) string {
	if r := strings.TrimSpace(fallback); r != "" {
		return r
	}
	if m := strings.TrimSpace(roleRe.FindString(jdText)); m != "" {
		return m
	}
	return "the position"
}

// StartSession registers a session and returns the opening question.
// Restarting an existing id replaces the old session.
func (iv *Interviewer) StartSession(ctx context.Context, sessionID, cvText, jdText, role string) (string, error) {
	if strings.TrimSpace(cvText) == "" || strings.TrimSpace(jdText) == "" {
		iv.log.WithFields(logrus.Fields{
			"session": sessionID,
			"cv_len":  len(cvText),
			"jd_len":  len(jdText),
		}).Warn("mock start rejected, missing text")
		return "", ErrMissingInput
	}

	roleName := roleFromJD(jdText, role)
	firstQ, err := iv.llm.Chat(ctx,
		"You are an adaptive interviewer. Ask one clear opening question ending with '?'.",
		fmt.Sprintf("Role: %s\nCV:\n%s\nJD:\n%s", roleName, clip(cvText, 4000), clip(jdText, 4000)))
	if err != nil {
		return "", fmt.Errorf("opening question: %w", err)
	}
	firstQ = ensureQuestion(firstQ)

	iv.mu.Lock()
	iv.sessions[sessionID] = &interviewSession{
		id:     sessionID,
		cvText: cvText,
		jdText: jdText,
		role:   role,
		turns:  []interviewTurn{{question: firstQ, at: time.Now().UTC()}},
	}
	active := len(iv.sessions)
	iv.mu.Unlock()

	iv.log.WithFields(logrus.Fields{"session": sessionID, "active": active}).Info("mock session started")
	return firstQ, nil
}

// ProcessTurn records the answer, summarizes it, and asks the next question.
// An answer after an unanswered question attaches to it; otherwise it opens
// an answer-only turn so nothing the candidate said is dropped.
func (iv *Interviewer) ProcessTurn(ctx context.Context, sessionID, answer string) (*TurnResult, error) {
	iv.mu.Lock()
	s, ok := iv.sessions[sessionID]
	if !ok {
		iv.mu.Unlock()
		return nil, fmt.Errorf("invalid session_id, call start first: %w", ErrSessionNotFound)
	}
	if n := len(s.turns); n > 0 && !s.turns[n-1].answered {
		s.turns[n-1].answer = answer
		s.turns[n-1].answered = true
	} else {
		s.turns = append(s.turns, interviewTurn{answer: answer, answered: true, at: time.Now().UTC()})
	}
	cvText, jdText, role := s.cvText, s.jdText, s.role
	iv.mu.Unlock()

	summary, err := iv.llm.Chat(ctx,
		"Analyze the answer; return concise summary linked to JD/CV. Max 120 words.",
		fmt.Sprintf("JD:\n%s\nCV:\n%s\nAnswer:\n%s", clip(jdText, 3000), clip(cvText, 3000), answer))
	if err != nil {
		return nil, fmt.Errorf("answer summary: %w", err)
	}

	iv.mu.Lock()
	if n := len(s.turns); n > 0 {
		s.turns[n-1].summary = summary
	}
	iv.mu.Unlock()

	nextQ, err := iv.llm.Chat(ctx,
		"Ask exactly one concise follow-up question ending with '?'.",
		fmt.Sprintf("Role: %s\nJD:\n%s\nCV:\n%s\nLast answer:\n%s",
			roleFromJD(jdText, role), clip(jdText, 2500), clip(cvText, 2500), answer))
	if err != nil {
		return nil, fmt.Errorf("followup question: %w", err)
	}
	nextQ = ensureQuestion(nextQ)

	iv.mu.Lock()
	s.turns = append(s.turns, interviewTurn{question: nextQ, at: time.Now().UTC()})
	iv.mu.Unlock()

	return &TurnResult{ReasoningSummary: summary, NextQuestion: nextQ, Followups: []string{}}, nil
}

// ExportTranscript writes the session transcript to the export directory and
// returns the file path.
func (iv *Interviewer) ExportTranscript(sessionID string) (string, error) {
	iv.mu.Lock()
	s, ok := iv.sessions[sessionID]
	if !ok {
		iv.mu.Unlock()
		return "", ErrSessionNotFound
	}
	entries := make([]transcript.Entry, len(s.turns))
	for i, t := range s.turns {
		entries[i] = transcript.Entry{Question: t.question, Answer: t.answer, Summary: t.summary, At: t.at}
	}
	role, jdText := s.role, s.jdText
	iv.mu.Unlock()

	if strings.TrimSpace(role) == "" {
		role = roleFromJD(jdText, "")
	}

	if err := os.MkdirAll(iv.dir, 0o755); err != nil {
		return "", err
	}
	now := time.Now().UTC()
	path := filepath.Join(iv.dir, transcript.Filename(sessionID, now))
	if err := os.WriteFile(path, []byte(transcript.Render(sessionID, role, entries, now)), 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}

	iv.log.WithFields(logrus.Fields{"session": sessionID, "path": path}).Info("transcript exported")
	return path, nil
}

func ensureQuestion(q string) string {
	q = strings.TrimSpace(q)
	if !strings.HasSuffix(q, "?") {
		q = strings.TrimRight(q, ".") + "?"
	}
	return q
}

// SaveRole persists the role/JD text a session was started with so an
// export-time evaluation can reuse it.
func SaveRole(dir, sessionID, text string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(roleFile(dir, sessionID), []byte(text), 0o644)
}

// LoadRole returns the saved role text, or "" when none was recorded.
func LoadRole(dir, sessionID string) string {
	b, err := os.ReadFile(roleFile(dir, sessionID))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func roleFile(dir, sessionID string) string {
	return filepath.Join(dir, "role_"+transcript.SafeID(sessionID)+".txt")
}
