package evaluation

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound marks a missing session artifact. The HTTP layer maps it to
// 404; everything else stays a 500.
var ErrNotFound = errors.New("not found")

// Resolver locates session artifacts in the exports directory by glob,
// so callers can evaluate by session id without knowing exact filenames.
type Resolver struct {
	base string
}

func NewResolver(baseDir string) *Resolver { return &Resolver{base: baseDir} }

// Transcript finds the transcript file for a session. Explicit mock and
// transcript names win over the catch-all, and emotion logs never match even
// when the catch-all pattern sweeps them up.
func (r *Resolver) Transcript(sessionID string) (string, error) {
	patterns := []string{
		filepath.Join(r.base, "*"+sessionID+"*mock*.txt"),
		filepath.Join(r.base, "*"+sessionID+"*transcript*.txt"),
		filepath.Join(r.base, "*"+sessionID+"*.txt"),
	}
	for _, pat := range patterns {
		matches, _ := filepath.Glob(pat)
		sort.Strings(matches)
		for _, p := range matches {
			if !strings.Contains(strings.ToLower(filepath.Base(p)), "emotion") {
				return p, nil
			}
		}
	}
	return "", fmt.Errorf("transcript for session %s in %s: %w", sessionID, r.base, ErrNotFound)
}

// EmotionLog finds the emotion log for a session.
func (r *Resolver) EmotionLog(sessionID string) (string, error) {
	patterns := []string{
		filepath.Join(r.base, "*emotion*"+sessionID+"*.txt"),
		filepath.Join(r.base, "*"+sessionID+"*emotion*.txt"),
		filepath.Join(r.base, "emotion_"+sessionID+".txt"),
	}
	for _, pat := range patterns {
		matches, _ := filepath.Glob(pat)
		sort.Strings(matches)
		if len(matches) > 0 {
			return matches[0], nil
		}
	}
	return "", fmt.Errorf("emotion log for session %s in %s: %w", sessionID, r.base, ErrNotFound)
}
