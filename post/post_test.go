package post

import (
	"errors"
	"strings"
	"testing"
)

func TestInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      Input
		invalid []string
	}{
		{"all present", Input{Title: "T", Author: "A", Content: "C"}, nil},
		{"missing title", Input{Author: "A", Content: "C"}, []string{"title"}},
		{"blank author", Input{Title: "T", Author: "  \t", Content: "C"}, []string{"author"}},
		{"newline content", Input{Title: "T", Author: "A", Content: "\n\n"}, []string{"content"}},
		{"everything empty", Input{}, []string{"title", "author", "content"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if len(tt.invalid) == 0 {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if got := len(verr.Fields()); got != len(tt.invalid) {
				t.Errorf("len(Fields()) = %d, want %d (%v)", got, len(tt.invalid), verr.Fields())
			}
			for _, f := range tt.invalid {
				if !verr.Has(f) {
					t.Errorf("expected field %q to be reported, got %v", f, verr.Fields())
				}
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := Input{Title: "T"}.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "post: invalid input: ") {
		t.Errorf("Error() = %q, want post: prefix", msg)
	}
	if !strings.Contains(msg, "author") || !strings.Contains(msg, "content") {
		t.Errorf("Error() = %q, should name author and content", msg)
	}
}

func TestEstimateReadTime(t *testing.T) {
	tests := []struct {
		words    int
		expected string
	}{
		{1, "1 min read"},
		{199, "1 min read"},
		{200, "1 min read"},
		{201, "2 min read"},
		{400, "2 min read"},
		{401, "3 min read"},
	}
	for _, tt := range tests {
		text := strings.TrimSpace(strings.Repeat("word ", tt.words))
		got := EstimateReadTime(text)
		if got != tt.expected {
			t.Errorf("EstimateReadTime(%d words) = %q, want %q", tt.words, got, tt.expected)
		}
	}
}

func TestEstimateReadTimeWhitespace(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "0 min read"},
		{"   \n\t ", "0 min read"},
		{"  hello  \n\n world\t", "1 min read"},
	}
	for _, tt := range tests {
		got := EstimateReadTime(tt.input)
		if got != tt.expected {
			t.Errorf("EstimateReadTime(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
