package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sdh-lab/interview-pipeline/transcript"
)

// Writer appends one line per active session at a fixed interval, recording
// whatever the sampler last observed. It keeps its own copy of the session
// list so a tick never reaches back into the manager lock.
type Writer struct {
	dir      string
	interval time.Duration
	latest   *latestCell
	log      *logrus.Entry

	amu    sync.RWMutex
	active []string
}

func (w *Writer) setActive(ids []string) {
	w.amu.Lock()
	w.active = ids
	w.amu.Unlock()
}

func (w *Writer) activeIDs() []string {
	w.amu.RLock()
	defer w.amu.RUnlock()
	return w.active
}

func (w *Writer) run(ctx context.Context) {
	w.log.WithField("interval", w.interval).Info("emotion log loop started")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info("emotion log loop stopped")
			return
		case <-ticker.C:
			w.tick(time.Now().UTC())
		}
	}
}

// tick writes the same line to every active session log. A failing session
// file is logged and skipped, never aborting the others.
func (w *Writer) tick(now time.Time) {
	ids := w.activeIDs()
	if len(ids) == 0 {
		return
	}
	line := formatLine(w.latest.snapshot(), now)
	for _, id := range ids {
		if err := w.append(id, line); err != nil {
			w.log.WithError(err).WithField("session", id).Warn("emotion append failed")
		}
	}
}

// formatLine renders one log line. A missing or faceless observation reads
// emotion=None so the evaluation side still counts the tick when it computes
// label ratios. The trailing tab reserves a note field the parser ignores.
func formatLine(obs *Observation, now time.Time) string {
	label := "None"
	if obs != nil && obs.Emotion != "" {
		label = obs.Emotion
	}
	return fmt.Sprintf("%s\temotion=%s\t\n", now.Format(time.RFC3339), label)
}

func (w *Writer) append(sessionID, line string) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(w.dir, "emotion_"+transcript.SafeID(sessionID)+".txt")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(line)
	return err
}
