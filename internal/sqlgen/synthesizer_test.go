package sqlgen

import (
	"context"
	"testing"

	"github.com/queryloom/queryloom/internal/llmgw"
)

type scriptedProvider struct {
	responses []string
	calls     int
}

func (p *scriptedProvider) Complete(context.Context, string, []llmgw.Message) (string, error) {
	if p.calls >= len(p.responses) {
		return p.responses[len(p.responses)-1], nil
	}
	r := p.responses[p.calls]
	p.calls++
	return r, nil
}

func TestSynthesize_CleanFirstPassSkipsRefinement(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"SELECT amount FROM sales"}}
	gw := llmgw.New(provider, 0)
	s := New(gw)

	result, err := s.Synthesize(context.Background(), "", []string{"Sum the sales amount"}, testContext())
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if result.SQL != "SELECT amount FROM sales" {
		t.Errorf("SQL = %q", result.SQL)
	}
	if provider.calls != 1 {
		t.Errorf("calls = %d, want 1 (no refinement)", provider.calls)
	}
}

func TestSynthesize_RefinesOnHardWarning(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"SELECT * FROM products",
		"SELECT amount FROM sales",
	}}
	gw := llmgw.New(provider, 0)
	s := New(gw)

	result, err := s.Synthesize(context.Background(), "", []string{"Sum the sales amount"}, testContext())
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if result.SQL != "SELECT amount FROM sales" {
		t.Errorf("SQL = %q, want refined query", result.SQL)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none after refinement", result.Warnings)
	}
	if provider.calls != 2 {
		t.Errorf("calls = %d, want 2 (one refinement)", provider.calls)
	}
}

func TestSynthesize_RefinesOnlyOnceEvenIfStillInvalid(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"SELECT * FROM products",
		"SELECT * FROM products",
	}}
	gw := llmgw.New(provider, 0)
	s := New(gw)

	result, err := s.Synthesize(context.Background(), "", []string{"Sum the sales amount"}, testContext())
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if !hasWarning(result.Warnings, WarnUnknownTable) {
		t.Errorf("Warnings = %v, want unknown-table to survive", result.Warnings)
	}
	if provider.calls != 2 {
		t.Errorf("calls = %d, want exactly 2 (one refinement attempt, no retry loop)", provider.calls)
	}
}

func TestSynthesize_SoftWarningDoesNotTriggerRefinement(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"DELETE FROM sales"}}
	gw := llmgw.New(provider, 0)
	s := New(gw)

	result, err := s.Synthesize(context.Background(), "", []string{"step"}, testContext())
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if !hasWarning(result.Warnings, WarnForbiddenKeyword) {
		t.Errorf("Warnings = %v, want forbidden-keyword surfaced", result.Warnings)
	}
	if provider.calls != 1 {
		t.Errorf("calls = %d, want 1 (forbidden-keyword is not a hard-refinement warning)", provider.calls)
	}
}
