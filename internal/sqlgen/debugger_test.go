package sqlgen

import (
	"context"
	"testing"

	"github.com/queryloom/queryloom/internal/llmgw"
)

func TestDebug_ReturnsValidSuggestion(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"SELECT amount FROM sales"}}
	gw := llmgw.New(provider, 0)
	d := NewDebugger(gw)

	sql, ok := d.Debug(context.Background(), "", "how much did we sell", "SELECT amnt FROM sales", "no such column: amnt", nil, testContext())
	if !ok {
		t.Fatal("Debug() ok = false, want true")
	}
	if sql != "SELECT amount FROM sales" {
		t.Errorf("sql = %q", sql)
	}
}

func TestDebug_DiscardsInvalidSuggestion(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"SELECT * FROM products"}}
	gw := llmgw.New(provider, 0)
	d := NewDebugger(gw)

	_, ok := d.Debug(context.Background(), "", "how much did we sell", "SELECT amnt FROM sales", "no such column: amnt", nil, testContext())
	if ok {
		t.Fatal("Debug() ok = true, want false for unknown-table suggestion")
	}
}

func TestDebug_NeverRefines(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"SELECT * FROM products"}}
	gw := llmgw.New(provider, 0)
	d := NewDebugger(gw)

	d.Debug(context.Background(), "", "q", "bad sql", "error", nil, testContext())
	if provider.calls != 1 {
		t.Errorf("calls = %d, want exactly 1 (debugger never refines)", provider.calls)
	}
}
