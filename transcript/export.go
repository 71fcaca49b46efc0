package transcript

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// stampLayout is a zone-less ISO timestamp; callers append the "Z".
const stampLayout = "2006-01-02T15:04:05.999999"

// Entry is one recorded exchange of a live session, in interview order. Any
// of the three texts may be empty; empty blocks are not rendered.
type Entry struct {
	Question string
	Answer   string
	Summary  string
	At       time.Time
}

// Render serializes session entries into the canonical transcript text that
// Parse reads back. Question numbering restarts from 1 regardless of how the
// session counted internally.
func Render(sessionID, role string, entries []Entry, exportedAt time.Time) string {
	lines := []string{
		"=== MOCK INTERVIEW TRANSCRIPT ===",
		"Session: " + sessionID,
		"Role: " + role,
		"Exported (UTC): " + stamp(exportedAt),
		"",
	}

	qIdx := 0
	for _, e := range entries {
		if e.Question != "" {
			qIdx++
			lines = append(lines, fmt.Sprintf("[Q%d] (%s)", qIdx, stamp(e.At)), e.Question, "")
		}
		if e.Answer != "" {
			lines = append(lines, fmt.Sprintf("[A%d] (%s)", qIdx, stamp(e.At)), e.Answer, "")
		}
		if e.Summary != "" {
			lines = append(lines, fmt.Sprintf("[Summary Q%d]", qIdx), e.Summary, "")
		}
		lines = append(lines, strings.Repeat("-", 60))
	}

	return strings.Join(lines, "\n")
}

// Filename builds the export name for a session, timestamped so repeated
// exports never clobber each other.
func Filename(sessionID string, now time.Time) string {
	return fmt.Sprintf("mock_%s_%s.txt", SafeID(sessionID), now.UTC().Format("20060102_150405"))
}

// SafeID keeps letters, digits, '-' and '_' so a session id cannot smuggle
// path separators into a filename.
func SafeID(id string) string {
	var b strings.Builder
	for _, r := range id {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func stamp(t time.Time) string {
	return t.UTC().Format(stampLayout) + "Z"
}
