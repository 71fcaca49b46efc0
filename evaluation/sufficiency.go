// Package evaluation fuses a session's affect score and LLM judgment into
// one explainable report.
package evaluation

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Answers in this set are refusals, not content; they never count toward
// coverage no matter their casing.
var badShortAnswers = map[string]struct{}{
	"no":                   {},
	"idk":                  {},
	"i don't know":         {},
	"n/a":                  {},
	".":                    {},
	"nah":                  {},
	"(no answer provided)": {},
}

const minAnswerRunes = 20

// ValidAnswer reports whether an answer is substantive enough to count
// toward interview coverage.
func ValidAnswer(answer string) bool {
	t := strings.ToLower(strings.TrimSpace(answer))
	if t == "" {
		return false
	}
	if _, bad := badShortAnswers[t]; bad {
		return false
	}
	return utf8.RuneCountInString(t) >= minAnswerRunes
}

// CountValidAnswers counts substantive answers in a turn list.
func CountValidAnswers(answers []string) int {
	n := 0
	for _, a := range answers {
		if ValidAnswer(a) {
			n++
		}
	}
	return n
}

// SufficiencyParams shape the coverage curve that discounts judgments built
// on too few answers.
type SufficiencyParams struct {
	MinRequired int     `yaml:"min_required"`
	Exponent    float64 `yaml:"exponent"`
	BonusMax    float64 `yaml:"bonus_max"`
	BonusRate   float64 `yaml:"bonus_rate"`
}

// DefaultSufficiencyParams returns the curve existing reports were produced
// with: full weight at 10 answers, steep discount below, a small saturating
// bonus above.
func DefaultSufficiencyParams() SufficiencyParams {
	return SufficiencyParams{MinRequired: 10, Exponent: 1.8, BonusMax: 0.8, BonusRate: 10}
}

type sufficiencyParamsOut struct {
	P        float64 `json:"p"`
	BonusMax float64 `json:"bonus_max"`
	K        float64 `json:"k"`
}

// RawScores are the judge's scores before any coverage correction.
type RawScores struct {
	Knowledge float64 `json:"knowledge"`
	Attitude  float64 `json:"attitude"`
}

// AdjustedScores are the coverage-corrected scores, rounded for the report.
type AdjustedScores struct {
	Knowledge  float64 `json:"knowledge"`
	Attitude   float64 `json:"attitude"`
	AgentFinal float64 `json:"agent_final"`
}

// SufficiencyDetail is the audit trail of one coverage correction.
type SufficiencyDetail struct {
	MinRequired    int                  `json:"min_required"`
	NValidAnswers  int                  `json:"n_valid_answers"`
	CoverageFactor float64              `json:"coverage_factor"`
	Bonus          float64              `json:"bonus"`
	Params         sufficiencyParamsOut `json:"params"`
	Rule           string               `json:"rule"`
	Raw            RawScores            `json:"raw"`
	Adjusted       AdjustedScores       `json:"adjusted"`
}

// Adjusted is the result of a coverage correction. Inputs are never mutated;
// both raw and adjusted values survive in Detail.
type Adjusted struct {
	Knowledge float64
	Attitude  float64
	Final     float64
	Detail    SufficiencyDetail
}

// AdjustSufficiency scales knowledge and attitude by answer coverage and
// grants a small weighted bonus past the threshold. The adjusted final is
// recomputed from the adjusted dimensions, never taken from the judge.
func AdjustSufficiency(knowledge, attitude, wKnowledge, wAttitude float64, nValid int, p SufficiencyParams) Adjusted {
	if p.MinRequired <= 0 {
		p = DefaultSufficiencyParams()
	}

	ratio := math.Min(1.0, float64(nValid)/float64(p.MinRequired))
	coverage := math.Pow(ratio, p.Exponent)

	ksAdj := clamp10(knowledge * coverage)
	atsAdj := clamp10(attitude * coverage)

	bonus := 0.0
	if nValid > p.MinRequired {
		bonus = p.BonusMax * (1.0 - math.Exp(-float64(nValid-p.MinRequired)/p.BonusRate))
		totalW := wKnowledge + wAttitude
		if totalW == 0 {
			totalW = 1.0
		}
		ksAdj = math.Min(10.0, ksAdj+bonus*(wKnowledge/totalW))
		atsAdj = math.Min(10.0, atsAdj+bonus*(wAttitude/totalW))
	}

	finalAdj := clamp10(ksAdj*wKnowledge + atsAdj*wAttitude)

	return Adjusted{
		Knowledge: round2(ksAdj),
		Attitude:  round2(atsAdj),
		Final:     round2(finalAdj),
		Detail: SufficiencyDetail{
			MinRequired:    p.MinRequired,
			NValidAnswers:  nValid,
			CoverageFactor: round(coverage, 4),
			Bonus:          round(bonus, 4),
			Params:         sufficiencyParamsOut{P: p.Exponent, BonusMax: p.BonusMax, K: p.BonusRate},
			Rule:           "knowledge/attitude scaled by coverage; small bonus after 10; clamp 0..10",
			Raw:            RawScores{Knowledge: knowledge, Attitude: attitude},
			Adjusted:       AdjustedScores{Knowledge: round2(ksAdj), Attitude: round2(atsAdj), AgentFinal: round2(finalAdj)},
		},
	}
}

func clamp10(x float64) float64 {
	return math.Max(0.0, math.Min(10.0, x))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
