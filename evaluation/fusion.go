package evaluation

// Default fusion weights between the qualitative final and the affect score.
const (
	DefaultAgentFinalWeight = 0.65
	DefaultEmotionWeight    = 0.35
)

// AgentScores is the adjusted qualitative triple fed into fusion.
type AgentScores struct {
	Knowledge float64
	Attitude  float64
	Final     float64
}

// FusionWeights echo the weights a total was computed with.
type FusionWeights struct {
	WAgentFinal float64 `json:"w_agent_final"`
	WEmotion    float64 `json:"w_emotion"`
}

// FusionComponents itemize each side's contribution to the total.
type FusionComponents struct {
	AgentFinalComponent float64 `json:"agent_final_component"`
	EmotionComponent    float64 `json:"emotion_component"`
}

// OverallDetail explains how a total was produced.
type OverallDetail struct {
	Formula         string             `json:"formula"`
	Weights         FusionWeights      `json:"weights"`
	Components      *FusionComponents  `json:"components,omitempty"`
	DataSufficiency *SufficiencyDetail `json:"data_sufficiency,omitempty"`
}

// Overall is the fused scoring block of a report. Qualitative fields are
// pointers: without a judgment they stay nil and serialize as explicit
// nulls, never as fabricated numbers.
type Overall struct {
	EmotionFaceScore float64            `json:"emotion_face_score"`
	KnowledgeScore   *float64           `json:"knowledge_score"`
	AttitudeScore    *float64           `json:"attitude_score"`
	AgentFinalScore  *float64           `json:"agent_final_score"`
	TotalScore       *float64           `json:"total_score"`
	Detail           OverallDetail      `json:"detail"`
	DataSufficiency  *SufficiencyDetail `json:"data_sufficiency,omitempty"`
}

// ComputeTotal fuses the affect score with the adjusted judgment. A nil
// agent leaves every qualitative field null; the emotion score alone never
// makes a total.
func ComputeTotal(emotionScore float64, agent *AgentScores, wAgentFinal, wEmotion float64) Overall {
	out := Overall{
		EmotionFaceScore: round2(emotionScore),
		Detail: OverallDetail{
			Formula: "total = agent_final*w_agent_final + emotion_face_score*w_emotion",
			Weights: FusionWeights{WAgentFinal: wAgentFinal, WEmotion: wEmotion},
		},
	}
	if agent == nil {
		return out
	}

	agentFinal := clamp10(agent.Final)
	total := clamp10(agentFinal*wAgentFinal + emotionScore*wEmotion)

	out.Detail.Components = &FusionComponents{
		AgentFinalComponent: round(agentFinal*wAgentFinal, 4),
		EmotionComponent:    round(emotionScore*wEmotion, 4),
	}
	out.KnowledgeScore = f64p(agent.Knowledge)
	out.AttitudeScore = f64p(agent.Attitude)
	out.AgentFinalScore = f64p(round2(agentFinal))
	out.TotalScore = f64p(round2(total))
	return out
}

func f64p(x float64) *float64 { return &x }
