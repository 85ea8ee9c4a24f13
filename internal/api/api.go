// Package api is the HTTP transport veneer over the Orchestrator:
// routing and JSON serialization only. It holds no pipeline logic of
// its own.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/queryloom/queryloom/internal/orchestrator"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Orchestrator is the subset of orchestrator.Orchestrator the HTTP
// layer drives.
type Orchestrator interface {
	Analyze(ctx context.Context, utterance string) orchestrator.AnalyzeResult
	Execute(ctx context.Context, sessionID, approvedSQL string) orchestrator.ExecuteResult
}

// NewHandler returns an http.Handler implementing the analyze/execute
// transport contract. There is no authentication surface.
func NewHandler(o Orchestrator) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Post("/analyze", handleAnalyze(o))
	r.Post("/execute", handleExecute(o))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

type analyzeRequest struct {
	Utterance      string `json:"utterance"`
	PriorSessionID string `json:"session_id,omitempty"`
}

func handleAnalyze(o Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request", "invalid request body: %v", err)
			return
		}
		if req.Utterance == "" {
			httpError(w, http.StatusBadRequest, "invalid_request", "utterance is required")
			return
		}

		result := o.Analyze(r.Context(), req.Utterance)
		writeJSON(w, http.StatusOK, analyzeResponse(result))
	}
}

func analyzeResponse(result orchestrator.AnalyzeResult) map[string]any {
	switch result.Kind {
	case orchestrator.KindNeedsSQLApproval:
		return map[string]any{
			"kind":       "sql",
			"session_id": result.SessionID,
			"sql":        result.GeneratedSQL,
			"warnings":   result.Warnings,
			"plan":       result.Plan,
		}
	case orchestrator.KindSuggestions:
		return map[string]any{
			"kind":        "suggestions",
			"suggestions": result.Suggestions,
		}
	case orchestrator.KindDescription:
		return map[string]any{
			"kind": "description",
			"text": result.Text,
		}
	default:
		return map[string]any{
			"kind":    "error",
			"stage":   result.Stage,
			"message": result.Reason,
		}
	}
}

type executeRequest struct {
	SessionID   string `json:"session_id"`
	ApprovedSQL string `json:"approved_sql"`
}

func handleExecute(o Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req executeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request", "invalid request body: %v", err)
			return
		}
		if req.SessionID == "" || req.ApprovedSQL == "" {
			httpError(w, http.StatusBadRequest, "invalid_request", "session_id and approved_sql are required")
			return
		}

		result := o.Execute(r.Context(), req.SessionID, req.ApprovedSQL)
		status, body := executeResponse(result)
		writeJSON(w, status, body)
	}
}

func executeResponse(result orchestrator.ExecuteResult) (int, map[string]any) {
	switch result.Kind {
	case orchestrator.KindSuccess:
		return http.StatusOK, map[string]any{
			"kind":           "result",
			"rows":           result.Rows,
			"row_count":      result.RowCount,
			"truncated":      result.Truncated,
			"interpretation": result.Interpretation,
		}
	case orchestrator.KindExecutionFailed:
		var suggestion any
		if result.HasDebugSuggestion {
			suggestion = result.DebugSuggestion
		}
		return http.StatusOK, map[string]any{
			"kind":             "exec_error",
			"engine_error":     result.EngineError,
			"debug_suggestion": suggestion,
		}
	case orchestrator.KindSessionMissing:
		return http.StatusNotFound, map[string]any{"kind": "session_missing"}
	default:
		return http.StatusInternalServerError, map[string]any{
			"kind":    "error",
			"stage":   result.Stage,
			"message": result.Reason,
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
