package interpreter

import (
	"context"
	"strings"
	"testing"

	"github.com/queryloom/queryloom/internal/datastore"
	"github.com/queryloom/queryloom/internal/llmgw"
)

type stubProvider struct {
	text string
	err  error
}

func (s *stubProvider) Complete(context.Context, string, []llmgw.Message) (string, error) {
	return s.text, s.err
}

func TestInterpret_ReturnsTrimmedText(t *testing.T) {
	gw := llmgw.New(&stubProvider{text: "  Sales totaled $4,200 last week.  "}, 0)
	in := New(gw)

	result := &datastore.Result{
		Columns: []string{"total"},
		Rows:    []datastore.Row{{{Name: "total", Value: int64(4200)}}},
	}
	text, err := in.Interpret(context.Background(), "", "how much did we sell last week", result, 1)
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if text != "Sales totaled $4,200 last week." {
		t.Errorf("Interpret() = %q", text)
	}
}

func TestBuildInterpretationPrompt_NotesTruncation(t *testing.T) {
	result := &datastore.Result{
		Columns: []string{"id"},
		Rows:    []datastore.Row{{{Name: "id", Value: int64(1)}}},
	}
	prompt := buildInterpretationPrompt("q", result, 10000)
	if !strings.Contains(prompt, "truncated") {
		t.Error("expected prompt to mention truncation when trueCount exceeds row count")
	}
}

func TestBuildInterpretationPrompt_EmptyResult(t *testing.T) {
	prompt := buildInterpretationPrompt("q", &datastore.Result{}, 0)
	if !strings.Contains(prompt, "no rows") {
		t.Errorf("prompt = %q, want mention of no rows", prompt)
	}
}
