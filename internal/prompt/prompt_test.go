package prompt

import (
	"errors"
	"testing"
)

func TestFormat_Substitutes(t *testing.T) {
	got, err := Format("Do {task} as {kind}", map[string]string{
		"task": "write a poem",
		"kind": "haiku",
	})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if got != "Do write a poem as haiku" {
		t.Errorf("Format = %q, want %q", got, "Do write a poem as haiku")
	}
}

func TestFormat_MissingVariable(t *testing.T) {
	got, err := Format("Do {task} in {tone}", map[string]string{"task": "x"})
	if err == nil {
		t.Fatal("expected error for missing variable")
	}

	var missing *MissingVariableError
	if !errors.As(err, &missing) {
		t.Fatalf("error type = %T, want *MissingVariableError", err)
	}
	if missing.Name != "tone" {
		t.Errorf("missing variable = %q, want %q", missing.Name, "tone")
	}
	if got != "" {
		t.Errorf("expected empty string on failure, got %q", got)
	}
}

func TestFormat_Deterministic(t *testing.T) {
	vars := map[string]string{"a": "1", "b": "2"}
	first, err := Format("{a}-{b}-{a}", vars)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	second, err := Format("{a}-{b}-{a}", vars)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if first != second {
		t.Errorf("Format not deterministic: %q vs %q", first, second)
	}
	if first != "1-2-1" {
		t.Errorf("Format = %q, want %q", first, "1-2-1")
	}
}

func TestFormat_EscapedBraces(t *testing.T) {
	got, err := Format("literal {{braces}} and {v}", map[string]string{"v": "x"})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if got != "literal {braces} and x" {
		t.Errorf("Format = %q, want %q", got, "literal {braces} and x")
	}
}

func TestFormat_UnclosedPlaceholder(t *testing.T) {
	if _, err := Format("broken {task", map[string]string{"task": "x"}); err == nil {
		t.Error("expected error for unclosed placeholder")
	}
}

func TestFormat_DoesNotMutateVars(t *testing.T) {
	vars := map[string]string{"task": "x"}
	if _, err := Format("{task}", vars); err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if len(vars) != 1 || vars["task"] != "x" {
		t.Errorf("vars mutated: %v", vars)
	}
}

func TestExtractTagged_Present(t *testing.T) {
	text := "before <analysis>the reasoning</analysis> after"
	got, ok := ExtractTagged(text, "analysis")
	if !ok {
		t.Fatal("expected tag to be found")
	}
	if got != "the reasoning" {
		t.Errorf("ExtractTagged = %q, want %q", got, "the reasoning")
	}
}

func TestExtractTagged_FirstOccurrence(t *testing.T) {
	text := "<response>one</response><response>two</response>"
	got, ok := ExtractTagged(text, "response")
	if !ok {
		t.Fatal("expected tag to be found")
	}
	if got != "one" {
		t.Errorf("ExtractTagged = %q, want first occurrence %q", got, "one")
	}
}

func TestExtractTagged_Absent(t *testing.T) {
	got, ok := ExtractTagged("no tags here", "tasks")
	if ok {
		t.Error("expected ok=false for absent tag")
	}
	if got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestExtractTagged_UnterminatedTag(t *testing.T) {
	if _, ok := ExtractTagged("<tasks>never closed", "tasks"); ok {
		t.Error("expected ok=false for unterminated tag")
	}
}

func TestMerge_FixedWins(t *testing.T) {
	context := map[string]string{"tone": "formal", "task": "caller value"}
	fixed := map[string]string{"task": "engine value"}

	merged := Merge(context, fixed)

	if merged["task"] != "engine value" {
		t.Errorf("merged[task] = %q, want fixed field to win", merged["task"])
	}
	if merged["tone"] != "formal" {
		t.Errorf("merged[tone] = %q, want %q", merged["tone"], "formal")
	}
	if context["task"] != "caller value" {
		t.Error("Merge mutated the caller's context")
	}
}
