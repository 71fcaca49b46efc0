package transcript

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	qHeaderRe = regexp.MustCompile(`^\[Q(\d+)\]\s+\(([^)]+)\)\s*$`)
	aHeaderRe = regexp.MustCompile(`^\[A(\d+)\]\s+\(([^)]+)\)\s*$`)
	summaryRe = regexp.MustCompile(`^\[Summary Q(\d+)\]\s*$`)
)

// Parse scans transcript text into turns ordered by question number. Body
// text runs from a header to the next header or divider line. Summary blocks
// are consumed and discarded. A turn appears in the result only if it has
// non-empty question text; a missing answer stays empty rather than failing.
func Parse(text string) []QATurn {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	type partial struct {
		question string
		answer   string
	}
	parts := map[int]*partial{}

	stop := func(s string) bool {
		return qHeaderRe.MatchString(s) || aHeaderRe.MatchString(s) ||
			summaryRe.MatchString(s) || strings.HasPrefix(s, "-----")
	}

	i := 0
	collect := func() string {
		var buf []string
		for i < len(lines) && !stop(strings.TrimSpace(lines[i])) {
			buf = append(buf, lines[i])
			i++
		}
		return strings.TrimSpace(strings.Join(buf, "\n"))
	}
	at := func(idx int) *partial {
		p, ok := parts[idx]
		if !ok {
			p = &partial{}
			parts[idx] = p
		}
		return p
	}

	for i < len(lines) {
		ln := strings.TrimSpace(lines[i])
		if m := qHeaderRe.FindStringSubmatch(ln); m != nil {
			idx, _ := strconv.Atoi(m[1])
			i++
			at(idx).question = collect()
			continue
		}
		if m := aHeaderRe.FindStringSubmatch(ln); m != nil {
			idx, _ := strconv.Atoi(m[1])
			i++
			at(idx).answer = collect()
			continue
		}
		if summaryRe.MatchString(ln) {
			i++
			collect()
			continue
		}
		i++
	}

	idxs := make([]int, 0, len(parts))
	for idx := range parts {
		idxs = append(idxs, idx)
	}
	sort.Ints(idxs)

	var out []QATurn
	for _, idx := range idxs {
		p := parts[idx]
		if q := strings.TrimSpace(p.question); q != "" {
			out = append(out, QATurn{Index: idx, Question: q, Answer: strings.TrimSpace(p.answer)})
		}
	}
	return out
}
