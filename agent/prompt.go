package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sdh-lab/interview-pipeline/transcript"
)

const judgeSystem = "You are an objective interview evaluator. " +
	"You must score the candidate FAIRLY and CONSISTENTLY based only on the provided transcript " +
	"(and the role string if provided). " +
	"Do NOT assume missing info. Do NOT reward verbosity. " +
	"Do NOT invent facts. Output STRICT JSON only. No markdown."

const judgeUserTemplate = `Inputs:
- Role (may be unknown): %s

Interview transcript (Q/A JSON):
<<<TRANSCRIPT_JSON
%s
TRANSCRIPT_JSON>>>

TASK 1 — Role Inference (ONLY if role is unknown/empty):
Infer the most likely role(s) from the transcript.
If uncertain, return top 3 roles with confidence (0..1) and reasons grounded in evidence quotes.

TASK 2 — Scoring (must be fair & explainable):
Score each dimension from 0..10 using 0.5 increments ONLY.
Compute agent_final_score = knowledge_score*%v + attitude_score*%v.
agent_final_score MUST match (round to 2 decimals).

STRICT RUBRIC:
Knowledge score (0..10) is the sum of five subscores K1..K5 (each 0..2, allow 0.5 increments):
- K1 Relevance & correctness
- K2 Completeness
- K3 Specificity & evidence
- K4 Depth & reasoning
- K5 Consistency across answers

Attitude score (0..10) is the sum of five subscores A1..A5 (each 0..2, allow 0.5 increments):
- A1 Professional tone
- A2 Clarity & structure
- A3 Engagement & responsiveness
- A4 Accountability & honesty
- A5 Constructiveness

EVIDENCE REQUIREMENT:
- For EACH subscore, provide at least one evidence quote (<= 25 words) with q_index.
- If an answer is empty, use "(no answer provided)" as the quote.

OUTPUT STRICT JSON (exact schema):
{
  "role_inference": {
    "primary_role": "string",
    "confidence": 0.0,
    "alternatives": [
      {"role": "string", "confidence": 0.0, "reasons": ["string"]}
    ],
    "evidence": [{"q_index": 0, "quote": "string"}]
  },
  "scores": {
    "knowledge": {
      "score": 0.0,
      "subscores": {
        "K1": {"score": 0.0, "reason": "string", "evidence": [{"q_index": 0, "quote": "string"}]},
        "K2": {"score": 0.0, "reason": "string", "evidence": [{"q_index": 0, "quote": "string"}]},
        "K3": {"score": 0.0, "reason": "string", "evidence": [{"q_index": 0, "quote": "string"}]},
        "K4": {"score": 0.0, "reason": "string", "evidence": [{"q_index": 0, "quote": "string"}]},
        "K5": {"score": 0.0, "reason": "string", "evidence": [{"q_index": 0, "quote": "string"}]}
      },
      "summary": {"strengths": ["string"], "gaps": ["string"], "improvements": ["string"]}
    },
    "attitude": {
      "score": 0.0,
      "subscores": {
        "A1": {"score": 0.0, "reason": "string", "evidence": [{"q_index": 0, "quote": "string"}]},
        "A2": {"score": 0.0, "reason": "string", "evidence": [{"q_index": 0, "quote": "string"}]},
        "A3": {"score": 0.0, "reason": "string", "evidence": [{"q_index": 0, "quote": "string"}]},
        "A4": {"score": 0.0, "reason": "string", "evidence": [{"q_index": 0, "quote": "string"}]},
        "A5": {"score": 0.0, "reason": "string", "evidence": [{"q_index": 0, "quote": "string"}]}
      },
      "summary": {"strengths": ["string"], "risks": ["string"], "improvements": ["string"]}
    },
    "final": {
      "score": 0.0,
      "weights": {"knowledge": %v, "attitude": %v},
      "calculation": "string"
    }
  }
}

Return JSON only.`

// judgePrompt builds the system and user messages for one scoring call. The
// transcript rides inside the user message as JSON so quoting stays exact.
func judgePrompt(role string, turns []transcript.QATurn, wKnowledge, wAttitude float64) (string, string, error) {
	if strings.TrimSpace(role) == "" {
		role = "unknown / infer from questions/answers"
	}
	if turns == nil {
		turns = []transcript.QATurn{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(turns); err != nil {
		return "", "", fmt.Errorf("encode transcript: %w", err)
	}

	user := fmt.Sprintf(judgeUserTemplate,
		role, strings.TrimSpace(buf.String()),
		wKnowledge, wAttitude, wKnowledge, wAttitude)
	return judgeSystem, user, nil
}
