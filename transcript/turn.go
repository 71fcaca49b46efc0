// Package transcript parses and renders the plain-text interview transcript
// format shared by the mock interviewer and the evaluator.
package transcript

// QATurn is one question/answer exchange keyed by its question number. The
// JSON tags match the shape the judge prompt embeds.
type QATurn struct {
	Index    int    `json:"q_index"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
