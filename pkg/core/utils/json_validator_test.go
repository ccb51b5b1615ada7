package utils

import (
	"strings"
	"testing"
)

func TestExtractJSONBlock(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"clean object", `{"a": 1}`, `{"a": 1}`},
		{"markdown fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"prose wrapper", `Here is the result: {"a": 1} Hope that helps!`, `{"a": 1}`},
		{"array payload", `The list: [1, 2, 3] as requested`, `[1, 2, 3]`},
		{"no json at all", "nothing here", "nothing here"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractJSONBlock(tc.input); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestSmartParseStrict(t *testing.T) {
	var out struct {
		Industry string `json:"industry"`
	}
	canonical, err := SmartParse(`{"industry": "Consumer Electronics"}`, &out)
	if err != nil {
		t.Fatalf("Strict parse failed: %v", err)
	}
	if out.Industry != "Consumer Electronics" {
		t.Errorf("Expected Consumer Electronics, got %q", out.Industry)
	}
	if !strings.Contains(canonical, "Consumer Electronics") {
		t.Errorf("Canonical form lost content: %q", canonical)
	}
}

func TestSmartParseRepairsMalformedOutput(t *testing.T) {
	// Single quotes and a trailing comma, the two most common LLM slips.
	input := "```json\n{'strengths': ['brand', 'ecosystem'],}\n```"

	var out struct {
		Strengths []string `json:"strengths"`
	}
	if _, err := SmartParse(input, &out); err != nil {
		t.Fatalf("Repair chain failed: %v", err)
	}
	if len(out.Strengths) != 2 || out.Strengths[0] != "brand" {
		t.Errorf("Expected [brand ecosystem], got %v", out.Strengths)
	}
}

func TestSmartParseHjsonFallback(t *testing.T) {
	// Unquoted keys with a comment, valid Hjson but not JSON.
	input := `{
  # classification
  industry: Software
}`

	var out map[string]interface{}
	if _, err := SmartParse(input, &out); err != nil {
		t.Fatalf("Hjson fallback failed: %v", err)
	}
	if out["industry"] != "Software" {
		t.Errorf("Expected Software, got %v", out["industry"])
	}
}

func TestSmartParseFailure(t *testing.T) {
	var out map[string]interface{}
	if _, err := SmartParse("I could not produce any structured output.", &out); err == nil {
		t.Error("Expected error for unparseable input, got nil")
	}
}

func TestCleanMarkdown(t *testing.T) {
	input := "```markdown\n# Report\n\nBody text.\n```"
	got := CleanMarkdown(input)
	if strings.Contains(got, "```") {
		t.Errorf("Fences not stripped: %q", got)
	}
	if !strings.Contains(got, "# Report") {
		t.Errorf("Content lost: %q", got)
	}
}
