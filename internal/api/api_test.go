package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/queryloom/queryloom/internal/orchestrator"
	"github.com/queryloom/queryloom/internal/sqlgen"
)

type fakeOrchestrator struct {
	analyzeResult orchestrator.AnalyzeResult
	executeResult orchestrator.ExecuteResult
}

func (f *fakeOrchestrator) Analyze(context.Context, string) orchestrator.AnalyzeResult {
	return f.analyzeResult
}

func (f *fakeOrchestrator) Execute(context.Context, string, string) orchestrator.ExecuteResult {
	return f.executeResult
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v, body=%s", err, rec.Body.String())
	}
	return out
}

func TestAnalyze_SQLKind(t *testing.T) {
	fake := &fakeOrchestrator{analyzeResult: orchestrator.AnalyzeResult{
		Kind:         orchestrator.KindNeedsSQLApproval,
		SessionID:    "sess-1",
		GeneratedSQL: "SELECT COUNT(*) FROM sales",
		Warnings:     []sqlgen.Warning{},
		Plan:         []string{"count sales"},
	}}
	rec := postJSON(t, NewHandler(fake), "/analyze", map[string]any{"utterance": "how many sales"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["kind"] != "sql" || body["session_id"] != "sess-1" {
		t.Errorf("body = %v", body)
	}
}

func TestAnalyze_MissingUtteranceIsBadRequest(t *testing.T) {
	fake := &fakeOrchestrator{}
	rec := postJSON(t, NewHandler(fake), "/analyze", map[string]any{"utterance": ""})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAnalyze_ErrorKind(t *testing.T) {
	fake := &fakeOrchestrator{analyzeResult: orchestrator.AnalyzeResult{
		Kind: orchestrator.KindFailed, Stage: "plan", Reason: "unknown table products",
	}}
	rec := postJSON(t, NewHandler(fake), "/analyze", map[string]any{"utterance": "categories"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for a plan-stage error", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["kind"] != "error" || body["stage"] != "plan" {
		t.Errorf("body = %v", body)
	}
}

func TestExecute_ResultKind(t *testing.T) {
	fake := &fakeOrchestrator{executeResult: orchestrator.ExecuteResult{
		Kind:           orchestrator.KindSuccess,
		Rows:           []map[string]any{{"count": int64(2)}},
		RowCount:       1,
		Interpretation: "There were 2 sales.",
	}}
	rec := postJSON(t, NewHandler(fake), "/execute", map[string]any{"session_id": "s1", "approved_sql": "SELECT COUNT(*) FROM sales"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["kind"] != "result" {
		t.Errorf("body = %v", body)
	}
}

func TestExecute_SessionMissingReturns404(t *testing.T) {
	fake := &fakeOrchestrator{executeResult: orchestrator.ExecuteResult{Kind: orchestrator.KindSessionMissing}}
	rec := postJSON(t, NewHandler(fake), "/execute", map[string]any{"session_id": "gone", "approved_sql": "SELECT 1"})

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["kind"] != "session_missing" {
		t.Errorf("body = %v", body)
	}
}

func TestExecute_ExecErrorWithDebugSuggestion(t *testing.T) {
	fake := &fakeOrchestrator{executeResult: orchestrator.ExecuteResult{
		Kind:               orchestrator.KindExecutionFailed,
		EngineError:        "syntax error",
		DebugSuggestion:    "SELECT COUNT(*) FROM sales",
		HasDebugSuggestion: true,
	}}
	rec := postJSON(t, NewHandler(fake), "/execute", map[string]any{"session_id": "s1", "approved_sql": "SELEC 1"})

	body := decodeBody(t, rec)
	if body["kind"] != "exec_error" || body["debug_suggestion"] != "SELECT COUNT(*) FROM sales" {
		t.Errorf("body = %v", body)
	}
}

func TestExecute_MissingFieldsIsBadRequest(t *testing.T) {
	fake := &fakeOrchestrator{}
	rec := postJSON(t, NewHandler(fake), "/execute", map[string]any{"session_id": ""})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
