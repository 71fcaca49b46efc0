// Package server exposes the capture, mock-interview and evaluation
// operations over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/sdh-lab/interview-pipeline/agent"
	"github.com/sdh-lab/interview-pipeline/capture"
	"github.com/sdh-lab/interview-pipeline/evaluation"
)

const defaultRole = "ai_engineer"

type Server struct {
	capture   *capture.Manager
	interview *agent.Interviewer
	eval      *evaluation.Service
	exports   string
	log       *logrus.Entry
}

func New(cap *capture.Manager, interview *agent.Interviewer, eval *evaluation.Service, exportsDir string) *Server {
	return &Server{
		capture:   cap,
		interview: interview,
		eval:      eval,
		exports:   exportsDir,
		log:       logrus.WithField("component", "server"),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /emotion/start", s.emotionStart)
	mux.HandleFunc("POST /emotion/stop", s.emotionStop)
	mux.HandleFunc("GET /emotion/status", s.emotionStatus)
	mux.HandleFunc("POST /mock/start", s.mockStart)
	mux.HandleFunc("POST /mock/turn", s.mockTurn)
	mux.HandleFunc("POST /mock/export", s.mockExport)
	mux.HandleFunc("POST /evaluation/evaluate", s.evaluate)
	return withCORS(mux)
}

// --- /emotion ---

type sessionReq struct {
	SessionID string `json:"session_id"`
}

func (s *Server) emotionStart(w http.ResponseWriter, r *http.Request) {
	var req sessionReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SessionID == "" {
		validationError(w, "session_id is required")
		return
	}
	s.capture.Begin(req.SessionID)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) emotionStop(w http.ResponseWriter, r *http.Request) {
	var req sessionReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SessionID == "" {
		validationError(w, "session_id is required")
		return
	}
	s.capture.End(req.SessionID)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) emotionStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.capture.Status())
}

// --- /mock ---

type mockStartReq struct {
	SessionID string `json:"session_id"`
	CVText    string `json:"cv_text"`
	JDText    string `json:"jd_text"`
	Role      string `json:"role"`
}

type mockStartResp struct {
	SessionID     string `json:"session_id"`
	FirstQuestion string `json:"first_question"`
}

func (s *Server) mockStart(w http.ResponseWriter, r *http.Request) {
	var req mockStartReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SessionID == "" {
		validationError(w, "session_id is required")
		return
	}

	// the job description doubles as the session's role description
	if err := agent.SaveRole(s.exports, req.SessionID, req.JDText); err != nil {
		s.log.WithError(err).WithField("session", req.SessionID).Warn("save role failed")
	}
	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = strings.TrimSpace(req.JDText)
	}

	first, err := s.interview.StartSession(r.Context(), req.SessionID, req.CVText, req.JDText, role)
	if err != nil {
		if errors.Is(err, agent.ErrMissingInput) {
			httpError(w, http.StatusBadRequest, err.Error())
			return
		}
		httpError(w, http.StatusInternalServerError, fmt.Sprintf("start_mock failed: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, mockStartResp{SessionID: req.SessionID, FirstQuestion: first})
}

type mockTurnReq struct {
	SessionID  string `json:"session_id"`
	UserAnswer string `json:"user_answer"`
}

type mockTurnResp struct {
	SessionID        string    `json:"session_id"`
	Timestamp        time.Time `json:"timestamp"`
	ReasoningSummary string    `json:"reasoning_summary"`
	NextQuestion     string    `json:"next_question"`
	Followups        []string  `json:"followups"`
}

func (s *Server) mockTurn(w http.ResponseWriter, r *http.Request) {
	var req mockTurnReq
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := s.interview.ProcessTurn(r.Context(), req.SessionID, req.UserAnswer)
	if err != nil {
		if errors.Is(err, agent.ErrSessionNotFound) {
			httpError(w, http.StatusBadRequest, "Invalid session_id. Call /mock/start first.")
			return
		}
		httpError(w, http.StatusInternalServerError, fmt.Sprintf("mock_turn failed: %v", err))
		return
	}
	if res.Followups == nil {
		res.Followups = []string{}
	}
	writeJSON(w, http.StatusOK, mockTurnResp{
		SessionID:        req.SessionID,
		Timestamp:        time.Now().UTC(),
		ReasoningSummary: res.ReasoningSummary,
		NextQuestion:     res.NextQuestion,
		Followups:        res.Followups,
	})
}

// mockExport writes the transcript, then immediately scores the session and
// returns the overall block enriched with the judge's per-criterion detail.
func (s *Server) mockExport(w http.ResponseWriter, r *http.Request) {
	sid := r.URL.Query().Get("session_id")
	if sid == "" {
		validationError(w, "session_id query parameter is required")
		return
	}

	path, err := s.interview.ExportTranscript(sid)
	if err != nil {
		httpError(w, http.StatusInternalServerError, fmt.Sprintf("export_mock failed: %v", err))
		return
	}

	role := agent.LoadRole(s.exports, sid)
	report, err := s.eval.Evaluate(r.Context(), evaluation.Request{SessionID: sid, Role: role})
	if err != nil {
		httpError(w, http.StatusInternalServerError, fmt.Sprintf("export_mock failed: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"path":      path,
		"auto_eval": autoEvalPayload(report),
	})
}

// --- /evaluation ---

// evaluateReq keeps role raw so an absent field (default role) stays
// distinguishable from an explicit null (leave inference to the judge).
type evaluateReq struct {
	SessionID      string          `json:"session_id"`
	Role           json.RawMessage `json:"role"`
	BaseDir        string          `json:"base_dir"`
	TranscriptPath string          `json:"transcript_path"`
	EmotionPath    string          `json:"emotion_path"`
	WKnowledge     *float64        `json:"w_knowledge"`
	WAttitude      *float64        `json:"w_attitude"`
	WAgentFinal    *float64        `json:"w_agent_final"`
	WEmotion       *float64        `json:"w_emotion"`
}

func (s *Server) evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if utf8.RuneCountInString(req.SessionID) < 6 {
		validationError(w, "session_id must be at least 6 characters")
		return
	}

	role := defaultRole
	if req.Role != nil {
		if string(req.Role) == "null" {
			role = ""
		} else if err := json.Unmarshal(req.Role, &role); err != nil {
			validationError(w, "role must be a string or null")
			return
		}
	}
	report, err := s.eval.Evaluate(r.Context(), evaluation.Request{
		SessionID:      req.SessionID,
		Role:           role,
		BaseDir:        req.BaseDir,
		TranscriptPath: req.TranscriptPath,
		EmotionPath:    req.EmotionPath,
		WKnowledge:     req.WKnowledge,
		WAttitude:      req.WAttitude,
		WAgentFinal:    req.WAgentFinal,
		WEmotion:       req.WEmotion,
	})
	if err != nil {
		if errors.Is(err, evaluation.ErrNotFound) {
			httpError(w, http.StatusNotFound, err.Error())
			return
		}
		httpError(w, http.StatusInternalServerError, fmt.Sprintf("evaluate failed: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "report": report})
}

// --- plumbing ---

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		validationError(w, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]any{"detail": detail})
}

// validationError keeps the flat envelope older frontends expect.
func validationError(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"status_code": http.StatusUnprocessableEntity,
		"detail":      detail,
		"headers":     nil,
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "*")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
