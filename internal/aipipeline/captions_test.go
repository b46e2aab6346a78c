package aipipeline

import (
	"reflect"
	"testing"

	"marketplace_backend/platform/ai/llmjson"
)

func TestNormalizeCaptionsFromFencedResponse(t *testing.T) {
	raw := "```json\n{\"Instagram\": [\"Glow up ✨ #handmade\", \"Made for you\"], \"Facebook\": [\"Shop Now!\"], \"WhatsApp\": [\"New in!\"]}\n```"
	got := NormalizeCaptions(llmjson.Repair(nil, raw))

	want := CaptionSet{
		Instagram: []string{"Glow up ✨ #handmade", "Made for you"},
		Facebook:  []string{"Shop Now!"},
		WhatsApp:  []string{"New in!"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestNormalizeCaptionsCaseInsensitive(t *testing.T) {
	got := NormalizeCaptions(map[string]any{
		"INSTAGRAM": []any{"a"},
		"facebook":  "b",
		"Whatsapp":  nil,
	})
	if !reflect.DeepEqual(got.Instagram, []string{"a"}) {
		t.Fatalf("instagram = %#v", got.Instagram)
	}
	if !reflect.DeepEqual(got.Facebook, []string{"b"}) {
		t.Fatalf("facebook = %#v", got.Facebook)
	}
	if got.WhatsApp == nil || len(got.WhatsApp) != 0 {
		t.Fatalf("whatsapp should be empty, got %#v", got.WhatsApp)
	}
}

func TestNormalizeCaptionsMissingPlatforms(t *testing.T) {
	got := NormalizeCaptions(llmjson.Repair(nil, "sorry, I cannot help"))
	for name, values := range map[string][]string{
		"instagram": got.Instagram,
		"facebook":  got.Facebook,
		"whatsapp":  got.WhatsApp,
	} {
		if values == nil || len(values) != 0 {
			t.Fatalf("%s should be an empty sequence, got %#v", name, values)
		}
	}
}

func TestNormalizeCaptionsMixedCase(t *testing.T) {
	raw := "```json\n{\"Instagram\": [\"Hi!\"], \"Facebook\": [\"Hello\"]}\n```"
	got := NormalizeCaptions(llmjson.Repair(nil, raw))

	want := CaptionSet{Instagram: []string{"Hi!"}, Facebook: []string{"Hello"}, WhatsApp: []string{}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}
