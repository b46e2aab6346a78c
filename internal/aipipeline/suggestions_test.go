package aipipeline

import (
	"encoding/json"
	"reflect"
	"testing"

	"marketplace_backend/platform/ai/llmjson"
)

func TestNormalizeSuggestionsHasEveryCategory(t *testing.T) {
	got := NormalizeSuggestions(map[string]any{})
	if len(got) != len(SuggestionCategories) {
		t.Fatalf("expected %d keys, got %d", len(SuggestionCategories), len(got))
	}
	for _, key := range SuggestionCategories {
		values, ok := got[key]
		if !ok {
			t.Fatalf("missing category %s", key)
		}
		if values == nil || len(values) != 0 {
			t.Fatalf("category %s should be an empty sequence, got %#v", key, values)
		}
	}
}

func TestNormalizeSuggestionsCoercesValues(t *testing.T) {
	recovered := map[string]any{
		"platforms":      []any{"Instagram", json.Number("3"), nil, true},
		"festivals":      "Diwali",
		"hashtags":       nil,
		"PackagingIdeas": []any{"kraft box"},
		"extraInsight":   map[string]any{"note": "x"},
	}
	got := NormalizeSuggestions(recovered)

	if want := []string{"Instagram", "3", "true"}; !reflect.DeepEqual(got["platforms"], want) {
		t.Fatalf("platforms = %#v, want %#v", got["platforms"], want)
	}
	if want := []string{"Diwali"}; !reflect.DeepEqual(got["festivals"], want) {
		t.Fatalf("festivals = %#v, want %#v", got["festivals"], want)
	}
	if len(got["hashtags"]) != 0 {
		t.Fatalf("null should become empty, got %#v", got["hashtags"])
	}
	if want := []string{"kraft box"}; !reflect.DeepEqual(got["packagingIdeas"], want) {
		t.Fatalf("case-variant key should land on packagingIdeas, got %#v", got)
	}
	if want := []string{`{"note":"x"}`}; !reflect.DeepEqual(got["extraInsight"], want) {
		t.Fatalf("unknown keys are kept, got %#v", got["extraInsight"])
	}
}

func TestNormalizeSuggestionsKeepsMarkupCharacters(t *testing.T) {
	recovered := map[string]any{
		"seasonalDemand": map[string]any{"q4": "Diwali & <Holi>"},
	}
	got := NormalizeSuggestions(recovered)

	if want := []string{`{"q4":"Diwali & <Holi>"}`}; !reflect.DeepEqual(got["seasonalDemand"], want) {
		t.Fatalf("seasonalDemand = %#v, want %#v", got["seasonalDemand"], want)
	}
}

func TestMapSuggestionsFromUnparseableText(t *testing.T) {
	doc := MapSuggestions(llmjson.Repair(nil, "not json"))

	for _, key := range SuggestionCategories {
		if values, ok := doc.SuggestionsBox[key]; !ok || len(values) != 0 {
			t.Fatalf("category %s should be present and empty, got %#v", key, values)
		}
	}
	if doc.SuggestedTitles == nil || doc.SuggestedDescriptions == nil || doc.SuggestedTags == nil || doc.SuggestedPrices == nil {
		t.Fatal("top-level fields must be empty sequences, not nil")
	}
}

func TestMapSuggestionsRelocatesKnownKeys(t *testing.T) {
	recovered := llmjson.Repair(nil, `{
		"Titles": ["Handwoven Silk Saree"],
		"descriptions": "Pure silk",
		"tags": ["silk", "saree"],
		"priceInRupees": [1499, "₹1,799", "Rs 1999", "ask"],
		"platforms": ["Etsy"]
	}`)
	doc := MapSuggestions(recovered)

	if want := []string{"Handwoven Silk Saree"}; !reflect.DeepEqual(doc.SuggestedTitles, want) {
		t.Fatalf("titles = %#v", doc.SuggestedTitles)
	}
	if want := []string{"Pure silk"}; !reflect.DeepEqual(doc.SuggestedDescriptions, want) {
		t.Fatalf("descriptions = %#v", doc.SuggestedDescriptions)
	}
	if want := []string{"silk", "saree"}; !reflect.DeepEqual(doc.SuggestedTags, want) {
		t.Fatalf("tags = %#v", doc.SuggestedTags)
	}
	if want := []float64{1499, 1799, 1999}; !reflect.DeepEqual(doc.SuggestedPrices, want) {
		t.Fatalf("prices = %#v", doc.SuggestedPrices)
	}
	if want := []string{"Etsy"}; !reflect.DeepEqual(doc.SuggestionsBox["platforms"], want) {
		t.Fatalf("platforms = %#v", doc.SuggestionsBox["platforms"])
	}
	for _, consumed := range []string{"Titles", "descriptions", "tags", "priceInRupees"} {
		if _, ok := doc.SuggestionsBox[consumed]; ok {
			t.Fatalf("mapped key %s must not also be in the suggestion box", consumed)
		}
	}
}

func TestLookupFoldPrefersExactMatch(t *testing.T) {
	m := map[string]any{"Tags": "upper", "tags": "lower"}
	key, value, ok := LookupFold(m, "tags")
	if !ok || key != "tags" || value != "lower" {
		t.Fatalf("expected exact match, got %s=%v", key, value)
	}
	key, _, ok = LookupFold(map[string]any{"TAGS": 1, "Tags": 2}, "tags")
	if !ok || key != "TAGS" {
		t.Fatalf("expected lexically first fold match, got %s", key)
	}
}

func TestNormalizeSuggestionsFromLooseJSON(t *testing.T) {
	recovered := llmjson.Repair(nil, `{platforms: ['a','b'], seasonalDemand: {q1:"high"},}`)
	got := NormalizeSuggestions(recovered)

	if want := []string{"a", "b"}; !reflect.DeepEqual(got["platforms"], want) {
		t.Fatalf("platforms = %#v, want %#v", got["platforms"], want)
	}
	if want := []string{`{"q1":"high"}`}; !reflect.DeepEqual(got["seasonalDemand"], want) {
		t.Fatalf("seasonalDemand = %#v, want %#v", got["seasonalDemand"], want)
	}
}
