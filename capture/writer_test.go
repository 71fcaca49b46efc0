package capture

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sdh-lab/interview-pipeline/emotion"
)

func TestFormatLine(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 5, 0, 0, time.UTC)
	cases := []struct {
		name string
		obs  *Observation
		want string
	}{
		{"nil observation", nil, "2025-03-01T10:05:00Z\temotion=None\t\n"},
		{"labeled", &Observation{OK: true, Emotion: "happy"}, "2025-03-01T10:05:00Z\temotion=happy\t\n"},
		{"camera error", &Observation{OK: false, Err: "cannot open camera"}, "2025-03-01T10:05:00Z\temotion=None\t\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatLine(tc.obs, now); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestTickAppendsToEverySession(t *testing.T) {
	dir := t.TempDir()
	cell := &latestCell{}
	cell.publish(Observation{OK: true, At: time.Now().UTC(), Emotion: "sad"})
	w := &Writer{dir: dir, interval: time.Second, latest: cell, log: logrus.WithField("component", "emotion-writer")}
	w.setActive([]string{"sess01", "s/lash"})

	w.tick(time.Date(2025, 3, 1, 10, 5, 0, 0, time.UTC))
	w.tick(time.Date(2025, 3, 1, 10, 5, 10, 0, time.UTC))

	for _, name := range []string{"emotion_sess01.txt", "emotion_slash.txt"} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		events := emotion.ParseLog(string(b))
		if len(events) != 2 {
			t.Fatalf("%s: expected 2 events, got %d", name, len(events))
		}
		for _, ev := range events {
			if ev.Label != "sad" {
				t.Fatalf("%s: expected sad, got %q", name, ev.Label)
			}
		}
		if !strings.HasSuffix(string(b), "\n") {
			t.Fatalf("%s: expected trailing newline", name)
		}
	}
}

func TestTickSkipsWhenNoSessions(t *testing.T) {
	dir := t.TempDir()
	cell := &latestCell{}
	cell.publish(Observation{OK: true, Emotion: "happy"})
	w := &Writer{dir: dir, interval: time.Second, latest: cell, log: logrus.WithField("component", "emotion-writer")}

	w.tick(time.Now().UTC())

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no log files, got %d", len(entries))
	}
}
