package evaluation

import (
	"github.com/sdh-lab/interview-pipeline/emotion"
)

// Report is the full evaluation artifact: what was evaluated, both scoring
// tracks with their breakdowns, and the fused overall block.
type Report struct {
	Inputs  Inputs       `json:"inputs"`
	Emotion EmotionBlock `json:"emotion"`
	Agent   AgentBlock   `json:"agent"`
	Overall Overall      `json:"overall"`
}

// Inputs records everything a rerun would need to reproduce the report.
// Role is null when the caller left it to the judge to infer.
type Inputs struct {
	BaseDir              string          `json:"base_dir"`
	SessionID            string          `json:"session_id"`
	Role                 *string         `json:"role"`
	TranscriptPath       string          `json:"transcript_path"`
	EmotionPath          string          `json:"emotion_path"`
	AgentInternalWeights InternalWeights `json:"agent_internal_weights"`
	OverallWeights       OverallWeights  `json:"overall_weights"`
}

// InternalWeights split the qualitative score between its two dimensions.
type InternalWeights struct {
	Knowledge float64 `json:"knowledge"`
	Attitude  float64 `json:"attitude"`
}

// OverallWeights split the total between judgment and affect.
type OverallWeights struct {
	AgentFinal  float64 `json:"agent_final"`
	EmotionFace float64 `json:"emotion_face"`
}

// EmotionBlock is the affect side of the report.
type EmotionBlock struct {
	TotalEvents  int                  `json:"total_events"`
	Distribution emotion.Distribution `json:"distribution"`
	Score        float64              `json:"score"`
	Detail       emotion.ScoreDetail  `json:"detail"`
}

// AgentBlock is the qualitative side. Scores and Explanation are nil when
// judging was skipped or failed; Error then says why and is null otherwise.
type AgentBlock struct {
	Scores      *AgentScoreSummary `json:"scores"`
	Error       *string            `json:"error"`
	Explanation map[string]any     `json:"explanation"`
}

// AgentScoreSummary is the adjusted qualitative triple.
type AgentScoreSummary struct {
	KnowledgeScore  float64 `json:"knowledge_score"`
	AttitudeScore   float64 `json:"attitude_score"`
	AgentFinalScore float64 `json:"agent_final_score"`
}
