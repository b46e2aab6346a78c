package llmjson

import (
	"fmt"
	"testing"

	"marketplace_backend/platform/logger"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", "\n{\"a\":1}\n"},
		{"```\n{\"a\":1}```", "\n{\"a\":1}"},
		{"```JSON{}```", "{}"},
		{"{\"a\":1}", "{\"a\":1}"},
	}
	for _, tt := range tests {
		got := StripCodeFences(tt.in)
		if got != tt.want {
			t.Fatalf("StripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if again := StripCodeFences(got); again != got {
			t.Fatalf("StripCodeFences not idempotent for %q", tt.in)
		}
	}
}

func TestExtractObject(t *testing.T) {
	got, ok := ExtractObject(`Sure! Here you go: {"a": {"b": 1}} hope that helps`)
	if !ok || got != `{"a": {"b": 1}}` {
		t.Fatalf("unexpected extraction %q (ok=%v)", got, ok)
	}
	if _, ok := ExtractObject("no braces"); ok {
		t.Fatal("expected no object")
	}
	if _, ok := ExtractObject("} backwards {"); ok {
		t.Fatal("expected no object for reversed braces")
	}
}

func TestRepairTrailingCommaInsideFence(t *testing.T) {
	raw := "```json\n{\"Product Name\": \"Silk Saree\", \"Tags\": [\"silk\", \"festive\",],}\n```"
	got := Repair(logger.New("test"), raw)

	if got["Product Name"] != "Silk Saree" {
		t.Fatalf("expected product name, got %#v", got)
	}
	tags, ok := got["Tags"].([]any)
	if !ok || len(tags) != 2 {
		t.Fatalf("expected two tags, got %#v", got["Tags"])
	}
}

func TestRepairKeepsNumbers(t *testing.T) {
	got := Repair(nil, `{"Price": 1499}`)
	if fmt.Sprint(got["Price"]) != "1499" {
		t.Fatalf("expected 1499, got %#v", got["Price"])
	}
}

func TestRepairClosesTruncatedObjectAfterProse(t *testing.T) {
	got := Repair(nil, `Here you go: {"a": [1, 2`)
	values, ok := got["a"].([]any)
	if !ok || len(values) != 2 {
		t.Fatalf("expected a=[1 2], got %#v", got)
	}
}

func TestRepairNeverFails(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"not json at all",
		"[1, 2, 3]",
		`"just a string"`,
		"42",
		"```",
		"{{{{",
		"}{",
		"null",
	}
	for _, in := range inputs {
		got := Repair(logger.New("test"), in)
		if got == nil {
			t.Fatalf("Repair(%q) returned nil map", in)
		}
	}
}

func TestRepairNonObjectRootIsEmpty(t *testing.T) {
	for _, in := range []string{"[1, 2, 3]", "42", "true"} {
		if got := Repair(nil, in); len(got) != 0 {
			t.Fatalf("Repair(%q) = %#v, want empty map", in, got)
		}
	}
}
