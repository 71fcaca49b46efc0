// Package emotion turns per-session facial-emotion logs into ordered event
// sequences and a bounded affect score.
package emotion

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// Labels is the fixed category set produced by the emotion classifier.
var Labels = []string{"angry", "disgust", "fear", "happy", "sad", "surprise", "neutral"}

// Event is one persisted emotion observation. Timestamps are UTC.
type Event struct {
	At    time.Time
	Label string
}

// Strict line shape: "<timestamp> emotion=<word>" after tabs are folded to spaces.
var lineRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}T\S+)\s+emotion=(\w+)\s*$`)

// ParseLog recovers events from a raw emotion log. Lines are matched against
// the strict pattern first; on a miss, a tolerant fallback splits on
// whitespace and accepts any line whose last token carries "emotion=".
// Malformed lines are dropped, never reported. The result is sorted ascending
// by timestamp: appends from concurrent sessions do not guarantee write order.
func ParseLog(text string) []Event {
	var events []Event
	for _, raw := range strings.Split(text, "\n") {
		ln := strings.TrimSpace(strings.ReplaceAll(raw, "\t", " "))
		if ln == "" {
			continue
		}

		if m := lineRe.FindStringSubmatch(ln); m != nil {
			if at, ok := parseTimestamp(m[1]); ok {
				if label := strings.ToLower(m[2]); label != "" {
					events = append(events, Event{At: at, Label: label})
				}
			}
			continue
		}

		// Tolerant tier: "<ts> ... emotion=xxx".
		parts := strings.Fields(ln)
		if len(parts) >= 2 && strings.Contains(parts[len(parts)-1], "emotion=") {
			at, ok := parseTimestamp(parts[0])
			if !ok {
				continue
			}
			last := parts[len(parts)-1]
			label := strings.ToLower(strings.TrimSpace(last[strings.LastIndex(last, "emotion=")+len("emotion="):]))
			if label != "" {
				events = append(events, Event{At: at, Label: label})
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].At.Before(events[j].At) })
	return events
}

// parseTimestamp accepts RFC3339 (a trailing Z means UTC) and, for hand-edited
// logs, a zone-less ISO form which is read as UTC.
func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05.999999999", s, time.UTC); err == nil {
		return t, true
	}
	return time.Time{}, false
}
