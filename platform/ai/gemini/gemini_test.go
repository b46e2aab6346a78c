package gemini

import (
	"testing"

	"google.golang.org/genai"
)

func TestToResponseTreatsBlockedAnswerAsEmpty(t *testing.T) {
	cases := map[string]*genai.GenerateContentResponse{
		"nil":           nil,
		"no candidates": {},
		"nil content":   {Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}}},
	}
	for name, resp := range cases {
		out := toResponse(resp)
		if out == nil {
			t.Fatalf("%s: expected an empty response, got nil", name)
		}
		if out.Text != "" || len(out.Images) != 0 {
			t.Fatalf("%s: expected empty response, got %+v", name, out)
		}
	}
}

func TestToResponseSplitsImagesAndText(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []*genai.Part{
			{Text: "thinking", Thought: true},
			{Text: "here is "},
			{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte{1, 2}}},
			nil,
			{Text: "the image"},
		}},
	}}}

	out := toResponse(resp)
	if out.Text != "here is the image" {
		t.Fatalf("unexpected text %q", out.Text)
	}
	if len(out.Images) != 1 || out.Images[0].MIMEType != "image/png" {
		t.Fatalf("unexpected images %+v", out.Images)
	}
}
