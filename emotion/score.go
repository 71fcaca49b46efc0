package emotion

import (
	"math"
	"strings"
)

// NoEventsScore is returned when a session produced no emotion events at all
// (camera never saw a face). Sessions are not penalized for missing telemetry.
const NoEventsScore = 7.0

const noEventsNote = "No emotion events; default emotion_face_score=7.0"

// Weights are the per-category severity factors applied to frequency ratios.
// Penalty categories subtract, bonus categories add, each scaled onto the 0-10
// range. The defaults are tuned constants carried over from the original
// scoring reports; changing them breaks comparability with older reports.
type Weights struct {
	Angry    float64 `yaml:"angry" json:"angry"`
	Disgust  float64 `yaml:"disgust" json:"disgust"`
	Fear     float64 `yaml:"fear" json:"fear"`
	Sad      float64 `yaml:"sad" json:"sad"`
	Happy    float64 `yaml:"happy" json:"happy"`
	Neutral  float64 `yaml:"neutral" json:"neutral"`
	Surprise float64 `yaml:"surprise" json:"surprise"`
}

// DefaultWeights returns the severity ranking used by existing reports:
// anger and disgust weigh far more than sadness or fear, and positive
// categories give small bonuses.
func DefaultWeights() Weights {
	return Weights{
		Angry:    1.2,
		Disgust:  1.0,
		Fear:     0.6,
		Sad:      0.4,
		Happy:    0.15,
		Neutral:  0.10,
		Surprise: 0.08,
	}
}

// ScoreComponents itemizes each category's contribution on the 0-10 scale.
type ScoreComponents struct {
	AngryPenalty   float64 `json:"angry_penalty"`
	DisgustPenalty float64 `json:"disgust_penalty"`
	FearPenalty    float64 `json:"fear_penalty"`
	SadPenalty     float64 `json:"sad_penalty"`
	HappyBonus     float64 `json:"happy_bonus"`
	NeutralBonus   float64 `json:"neutral_bonus"`
	SurpriseBonus  float64 `json:"surprise_bonus"`
}

// ScoreDetail is the reproducible breakdown behind an affect score.
type ScoreDetail struct {
	Score      float64            `json:"score"`
	Counts     map[string]int     `json:"counts,omitempty"`
	Ratios     map[string]float64 `json:"ratios,omitempty"`
	PosRatio   float64            `json:"pos_ratio"`
	NegRatio   float64            `json:"neg_ratio"`
	Components *ScoreComponents   `json:"components,omitempty"`
	Note       string             `json:"note,omitempty"`
}

// Score folds an event sequence into one bounded affect score with its
// breakdown. Ratios are computed over every event, so unclassified ticks
// (label "none") dilute all categories without carrying a weight of their own.
func Score(events []Event, w Weights) (float64, ScoreDetail) {
	if len(events) == 0 {
		return NoEventsScore, ScoreDetail{Score: NoEventsScore, Note: noEventsNote}
	}

	counts := map[string]int{}
	for _, e := range events {
		counts[strings.ToLower(strings.TrimSpace(e.Label))]++
	}
	total := 0
	for _, n := range counts {
		total += n
	}

	ratios := make(map[string]float64, len(counts))
	for label, n := range counts {
		ratios[label] = float64(n) / float64(total)
	}

	comp := ScoreComponents{
		AngryPenalty:   w.Angry * ratios["angry"] * 10.0,
		DisgustPenalty: w.Disgust * ratios["disgust"] * 10.0,
		FearPenalty:    w.Fear * ratios["fear"] * 10.0,
		SadPenalty:     w.Sad * ratios["sad"] * 10.0,
		HappyBonus:     w.Happy * ratios["happy"] * 10.0,
		NeutralBonus:   w.Neutral * ratios["neutral"] * 10.0,
		SurpriseBonus:  w.Surprise * ratios["surprise"] * 10.0,
	}

	score := 10.0
	score -= comp.AngryPenalty + comp.DisgustPenalty + comp.FearPenalty + comp.SadPenalty
	score += comp.HappyBonus + comp.NeutralBonus + comp.SurpriseBonus
	score = round(clamp10(score), 2)

	rounded := make(map[string]float64, len(ratios))
	for label, r := range ratios {
		rounded[label] = round(r, 3)
	}

	detail := ScoreDetail{
		Score:    score,
		Counts:   counts,
		Ratios:   rounded,
		PosRatio: round(ratios["happy"]+ratios["neutral"]+ratios["surprise"], 3),
		NegRatio: round(ratios["angry"]+ratios["disgust"]+ratios["fear"]+ratios["sad"], 3),
		Components: &ScoreComponents{
			AngryPenalty:   round(comp.AngryPenalty, 3),
			DisgustPenalty: round(comp.DisgustPenalty, 3),
			FearPenalty:    round(comp.FearPenalty, 3),
			SadPenalty:     round(comp.SadPenalty, 3),
			HappyBonus:     round(comp.HappyBonus, 3),
			NeutralBonus:   round(comp.NeutralBonus, 3),
			SurpriseBonus:  round(comp.SurpriseBonus, 3),
		},
	}
	return score, detail
}

func clamp10(x float64) float64 {
	return math.Max(0.0, math.Min(10.0, x))
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
