package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sdh-lab/interview-pipeline/transcript"
)

const (
	testCV = "Five years of Go backend work, plus two years of Python tooling."
	testJD = "Requirements: Senior Backend Engineer, Go, PostgreSQL, Kubernetes."
)

func TestStartSessionRequiresTexts(t *testing.T) {
	iv := NewInterviewer(&fakeLLM{}, t.TempDir())
	if _, err := iv.StartSession(context.Background(), "s1", "", testJD, ""); !errors.Is(err, ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
	if _, err := iv.StartSession(context.Background(), "s1", testCV, "   ", ""); !errors.Is(err, ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
}

func TestStartSessionForcesQuestionMark(t *testing.T) {
	f := &fakeLLM{replies: []string{"Walk me through your most recent project."}}
	iv := NewInterviewer(f, t.TempDir())

	q, err := iv.StartSession(context.Background(), "s1", testCV, testJD, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q != "Walk me through your most recent project?" {
		t.Fatalf("unexpected question: %q", q)
	}
}

func TestProcessTurnUnknownSession(t *testing.T) {
	iv := NewInterviewer(&fakeLLM{}, t.TempDir())
	if _, err := iv.ProcessTurn(context.Background(), "nope", "an answer"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestInterviewLifecycleAndExport(t *testing.T) {
	f := &fakeLLM{replies: []string{
		"Tell me about your Go experience?",
		"Concrete backend experience matching the JD.",
		"Which service are you most proud of?",
	}}
	dir := t.TempDir()
	iv := NewInterviewer(f, dir)
	ctx := context.Background()

	if _, err := iv.StartSession(ctx, "s1", testCV, testJD, "Backend Engineer"); err != nil {
		t.Fatalf("start: %v", err)
	}

	res, err := iv.ProcessTurn(ctx, "s1", "I built a payments API in Go.")
	if err != nil {
		t.Fatalf("turn: %v", err)
	}
	if res.NextQuestion != "Which service are you most proud of?" {
		t.Fatalf("unexpected next question: %q", res.NextQuestion)
	}
	if res.ReasoningSummary == "" || res.Followups == nil {
		t.Fatalf("unexpected turn result: %+v", res)
	}

	path, err := iv.ExportTranscript("s1")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("export landed outside dir: %q", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	text := string(raw)
	if !strings.Contains(text, "Role: Backend Engineer") {
		t.Fatalf("export missing role header:\n%s", text)
	}

	turns := transcript.Parse(text)
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns in export, got %d", len(turns))
	}
	if turns[0].Answer != "I built a payments API in Go." {
		t.Fatalf("unexpected answer: %q", turns[0].Answer)
	}
	if turns[1].Answer != "" {
		t.Fatalf("expected open final turn, got %q", turns[1].Answer)
	}
}

func TestExportUnknownSession(t *testing.T) {
	iv := NewInterviewer(&fakeLLM{}, t.TempDir())
	if _, err := iv.ExportTranscript("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRoleFromJD(t *testing.T) {
	cases := []struct {
		name     string
		jd       string
		fallback string
		want     string
	}{
		{"explicit fallback wins", "anything", "Data Scientist", "Data Scientist"},
		{"title from jd", "Requirements: Senior Backend Engineer, Go", "", "Senior Backend Engineer"},
		{"no title", "12345 %%% !!!", "", "the position"},
	}
	for _, tc := range cases {
		if got := roleFromJD(tc.jd, tc.fallback); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestSaveAndLoadRole(t *testing.T) {
	dir := t.TempDir()
	if err := SaveRole(dir, "sess/01", "Senior Backend Engineer JD text"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "role_sess01.txt")); err != nil {
		t.Fatalf("role file missing: %v", err)
	}
	if got := LoadRole(dir, "sess/01"); got != "Senior Backend Engineer JD text" {
		t.Fatalf("unexpected role text: %q", got)
	}
	if got := LoadRole(dir, "absent"); got != "" {
		t.Fatalf("expected empty role for absent session, got %q", got)
	}
}
