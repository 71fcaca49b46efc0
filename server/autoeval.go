package server

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sdh-lab/interview-pipeline/evaluation"
)

var (
	knowledgeKeys = []string{"K1", "K2", "K3", "K4", "K5"}
	attitudeKeys  = []string{"A1", "A2", "A3", "A4", "A5"}
)

// autoEvalPayload flattens the overall block and, when the judge produced an
// explanation, merges in UI-friendly per-criterion detail.
func autoEvalPayload(rep *evaluation.Report) map[string]any {
	out := map[string]any{}
	if b, err := json.Marshal(rep.Overall); err == nil {
		_ = json.Unmarshal(b, &out)
	}
	for k, v := range extractAgentDetails(rep.Agent.Explanation) {
		out[k] = v
	}
	return out
}

func extractAgentDetails(explanation map[string]any) map[string]any {
	if len(explanation) == 0 {
		return nil
	}
	scores, _ := explanation["scores"].(map[string]any)
	knowledge, _ := scores["knowledge"].(map[string]any)
	attitude, _ := scores["attitude"].(map[string]any)

	return map[string]any{
		"role_inference":    roleInference(explanation),
		"knowledge_detail":  subscoreDetail(knowledge, knowledgeKeys),
		"attitude_detail":   subscoreDetail(attitude, attitudeKeys),
		"knowledge_summary": summaryBlock(knowledge),
		"attitude_summary":  summaryBlock(attitude),
	}
}

func roleInference(explanation map[string]any) map[string]any {
	ri, _ := explanation["role_inference"].(map[string]any)
	if ri == nil {
		return nil
	}
	primary, _ := ri["primary_role"].(string)
	conf, hasConf := ri["confidence"]
	if primary == "" && (!hasConf || conf == nil) {
		return nil
	}
	return map[string]any{
		"primary_role": ri["primary_role"],
		"confidence":   ri["confidence"],
		"evidence":     evidenceStrings(ri["evidence"], 3),
	}
}

func subscoreDetail(block map[string]any, keys []string) map[string]any {
	subs, _ := block["subscores"].(map[string]any)
	detail := map[string]any{}
	for _, k := range keys {
		item, _ := subs[k].(map[string]any)
		score := 0.0
		switch n := item["score"].(type) {
		case float64:
			score = n
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				score = f
			}
		}
		reason := ""
		if s, ok := item["reason"].(string); ok {
			reason = strings.TrimSpace(s)
		}
		detail[k] = map[string]any{
			"score":       score,
			"description": reason,
			"evidence":    evidenceStrings(item["evidence"], 5),
		}
	}
	return detail
}

// evidenceStrings renders up to limit evidence entries as "Q<i>: <quote>",
// skipping entries without a quote.
func evidenceStrings(v any, limit int) []string {
	items, _ := v.([]any)
	if len(items) > limit {
		items = items[:limit]
	}
	out := []string{}
	for _, it := range items {
		ev, ok := it.(map[string]any)
		if !ok {
			continue
		}
		quote, _ := ev["quote"].(string)
		quote = strings.TrimSpace(quote)
		if quote == "" {
			continue
		}
		if qi, ok := ev["q_index"]; ok && qi != nil {
			out = append(out, fmt.Sprintf("Q%v: %s", qi, quote))
		} else {
			out = append(out, quote)
		}
	}
	return out
}

func summaryBlock(block map[string]any) map[string]any {
	if s, ok := block["summary"].(map[string]any); ok {
		return s
	}
	return map[string]any{}
}
