package evaluation

import (
	"strings"
	"testing"
)

func TestValidAnswer(t *testing.T) {
	cases := []struct {
		name   string
		answer string
		want   bool
	}{
		{"empty", "", false},
		{"whitespace", "   ", false},
		{"refusal", "no", false},
		{"refusal cased", "  IDK  ", false},
		{"placeholder", "(No Answer Provided)", false},
		{"too short", "I used Go a bit", false},
		{"just long enough", strings.Repeat("a", 20), true},
		{"substantive", "I built and operated Go services for five years.", true},
		{"multibyte runes count", "tôi đã dùng Go năm năm rồi", true},
	}
	for _, tc := range cases {
		if got := ValidAnswer(tc.answer); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestCountValidAnswers(t *testing.T) {
	answers := []string{
		"no",
		"I built and operated Go services for five years.",
		"",
		strings.Repeat("x", 25),
	}
	if got := CountValidAnswers(answers); got != 2 {
		t.Fatalf("expected 2 valid answers, got %d", got)
	}
}

func TestAdjustSufficiencyZeroValid(t *testing.T) {
	adj := AdjustSufficiency(8.0, 6.0, 0.7, 0.3, 0, DefaultSufficiencyParams())
	if adj.Knowledge != 0 || adj.Attitude != 0 || adj.Final != 0 {
		t.Fatalf("expected zeroed scores, got %+v", adj)
	}
	if adj.Detail.CoverageFactor != 0 {
		t.Fatalf("expected coverage 0, got %v", adj.Detail.CoverageFactor)
	}
	if adj.Detail.Raw.Knowledge != 8.0 {
		t.Fatalf("raw scores must survive: %+v", adj.Detail.Raw)
	}
}

func TestAdjustSufficiencyAtThreshold(t *testing.T) {
	adj := AdjustSufficiency(8.0, 6.0, 0.7, 0.3, 10, DefaultSufficiencyParams())
	if adj.Knowledge != 8.0 || adj.Attitude != 6.0 {
		t.Fatalf("expected unchanged scores at full coverage, got %+v", adj)
	}
	if adj.Detail.Bonus != 0 {
		t.Fatalf("expected no bonus at exactly the threshold, got %v", adj.Detail.Bonus)
	}
	if adj.Final != 7.4 {
		t.Fatalf("expected final 7.4, got %v", adj.Final)
	}
}

func TestAdjustSufficiencyBelowThreshold(t *testing.T) {
	// coverage = (5/10)^1.8 ≈ 0.2872
	adj := AdjustSufficiency(8.0, 6.0, 0.7, 0.3, 5, DefaultSufficiencyParams())
	if adj.Detail.CoverageFactor != 0.2872 {
		t.Fatalf("expected coverage 0.2872, got %v", adj.Detail.CoverageFactor)
	}
	if adj.Knowledge != 2.3 || adj.Attitude != 1.72 {
		t.Fatalf("unexpected scaled scores: %+v", adj)
	}
	if adj.Final != 2.13 {
		t.Fatalf("expected final 2.13, got %v", adj.Final)
	}
}

func TestAdjustSufficiencyBonusAboveThreshold(t *testing.T) {
	adj := AdjustSufficiency(8.0, 6.0, 0.7, 0.3, 20, DefaultSufficiencyParams())
	if adj.Detail.Bonus <= 0 || adj.Detail.Bonus >= 0.8 {
		t.Fatalf("bonus must saturate below its cap, got %v", adj.Detail.Bonus)
	}
	if adj.Knowledge != 8.35 || adj.Attitude != 6.15 {
		t.Fatalf("unexpected bonus split: %+v", adj)
	}
	if adj.Final != 7.69 {
		t.Fatalf("expected final 7.69, got %v", adj.Final)
	}
}

func TestAdjustSufficiencyClampsAtTen(t *testing.T) {
	adj := AdjustSufficiency(10.0, 10.0, 0.7, 0.3, 30, DefaultSufficiencyParams())
	if adj.Knowledge != 10.0 || adj.Attitude != 10.0 || adj.Final != 10.0 {
		t.Fatalf("expected clamp at 10, got %+v", adj)
	}
}
