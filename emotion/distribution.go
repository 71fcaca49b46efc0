package emotion

import (
	"bytes"
	"encoding/json"
	"sort"
)

// DistributionEntry is one label's share of the event count.
type DistributionEntry struct {
	Label string
	Ratio float64
}

// Distribution maps labels to frequency ratios, ordered by descending
// frequency then lexicographically on ties. Ratios over a non-empty event
// list sum to 1.
type Distribution []DistributionEntry

// Distribute counts labels over events. Empty input yields an empty
// distribution, not an error.
func Distribute(events []Event) Distribution {
	if len(events) == 0 {
		return nil
	}
	counts := map[string]int{}
	for _, e := range events {
		counts[e.Label]++
	}

	out := make(Distribution, 0, len(counts))
	total := float64(len(events))
	for label, n := range counts {
		out = append(out, DistributionEntry{Label: label, Ratio: float64(n) / total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Ratio != out[j].Ratio {
			return out[i].Ratio > out[j].Ratio
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// Round returns a copy with ratios rounded to the given number of decimals,
// for report embedding.
func (d Distribution) Round(places int) Distribution {
	out := make(Distribution, len(d))
	for i, e := range d {
		out[i] = DistributionEntry{Label: e.Label, Ratio: round(e.Ratio, places)}
	}
	return out
}

// MarshalJSON emits a JSON object whose keys keep the distribution's order.
// A plain map would lose it.
func (d Distribution) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, e := range d {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(e.Label)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Ratio)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}
