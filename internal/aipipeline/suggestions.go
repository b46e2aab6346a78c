package aipipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// SuggestionCategories is the fixed set of suggestion box keys. Every
// normalized document carries all of them.
var SuggestionCategories = []string{
	"platforms",
	"targetAudience",
	"geoMarkets",
	"seasonalDemand",
	"festivals",
	"giftingOccasions",
	"marketingChannels",
	"contentIdeas",
	"influencerMatch",
	"hashtags",
	"collaborationTips",
	"crossSellUpsell",
	"packagingIdeas",
	"customerRetention",
	"sustainabilityTips",
	"costCuttingTips",
	"competitorInsights",
	"currentTrends",
	"emotionalTriggers",
	"colorPsychology",
	"causeMarketing",
}

// Target is a top-level field of the persisted suggestion document.
type Target string

const (
	TargetTitles       Target = "suggestedTitles"
	TargetDescriptions Target = "suggestedDescriptions"
	TargetTags         Target = "suggestedTags"
	TargetPrices       Target = "suggestedPrices"
)

// Coercion is how a mapped value is shaped.
type Coercion int

const (
	CoerceStrings Coercion = iota
	CoerceNumbers
)

// FieldMapping relocates provider keys onto a document field. Source keys
// are matched case-insensitively; the first present key wins.
type FieldMapping struct {
	Sources []string
	Target  Target
	Coerce  Coercion
}

// SuggestionFieldMappings is the provider -> document renaming table.
// Keys consumed here do not also land in the suggestion box.
var SuggestionFieldMappings = []FieldMapping{
	{Sources: []string{"suggestedTitles", "titles", "title"}, Target: TargetTitles, Coerce: CoerceStrings},
	{Sources: []string{"suggestedDescriptions", "descriptions", "description"}, Target: TargetDescriptions, Coerce: CoerceStrings},
	{Sources: []string{"suggestedTags", "tags", "keywords"}, Target: TargetTags, Coerce: CoerceStrings},
	{Sources: []string{"suggestedPrices", "priceInRupees", "prices", "price"}, Target: TargetPrices, Coerce: CoerceNumbers},
}

// SuggestionDocument is the persisted shape of generated suggestions.
type SuggestionDocument struct {
	SuggestionsBox        map[string][]string `json:"suggestionsBox"`
	SuggestedTitles       []string            `json:"suggestedTitles"`
	SuggestedDescriptions []string            `json:"suggestedDescriptions"`
	SuggestedTags         []string            `json:"suggestedTags"`
	SuggestedPrices       []float64           `json:"suggestedPrices"`
}

// NormalizeSuggestions coerces every value to a sequence of strings and
// guarantees every known category key is present.
func NormalizeSuggestions(recovered map[string]any) map[string][]string {
	out := make(map[string][]string, len(SuggestionCategories)+len(recovered))
	for _, key := range SuggestionCategories {
		out[key] = []string{}
	}
	keys := make([]string, 0, len(recovered))
	for key := range recovered {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		canonical := canonicalCategory(key)
		out[canonical] = append(out[canonical], ToStrings(recovered[key])...)
	}
	return out
}

// MapSuggestions applies SuggestionFieldMappings to a recovered object and
// normalizes everything left into the suggestion box.
func MapSuggestions(recovered map[string]any) SuggestionDocument {
	remaining := make(map[string]any, len(recovered))
	for k, v := range recovered {
		remaining[k] = v
	}

	doc := SuggestionDocument{
		SuggestedTitles:       []string{},
		SuggestedDescriptions: []string{},
		SuggestedTags:         []string{},
		SuggestedPrices:       []float64{},
	}

	for _, m := range SuggestionFieldMappings {
		key, value, ok := lookupFirst(remaining, m.Sources)
		if !ok {
			continue
		}
		delete(remaining, key)

		switch m.Target {
		case TargetTitles:
			doc.SuggestedTitles = ToStrings(value)
		case TargetDescriptions:
			doc.SuggestedDescriptions = ToStrings(value)
		case TargetTags:
			doc.SuggestedTags = ToStrings(value)
		case TargetPrices:
			doc.SuggestedPrices = ToNumbers(value)
		}
	}

	doc.SuggestionsBox = NormalizeSuggestions(remaining)
	return doc
}

// ToStrings converts any JSON value into a sequence of strings. Arrays map
// element-wise, objects become their JSON text, scalars their string form.
// null yields an empty sequence and null elements are dropped.
func ToStrings(value any) []string {
	switch v := value.(type) {
	case nil:
		return []string{}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			out = append(out, stringify(item))
		}
		return out
	case []string:
		return append([]string{}, v...)
	default:
		return []string{stringify(v)}
	}
}

// ToNumbers converts any JSON value into a sequence of numbers, dropping
// elements that cannot be read as one.
func ToNumbers(value any) []float64 {
	items, ok := value.([]any)
	if !ok {
		if value == nil {
			return []float64{}
		}
		items = []any{value}
	}
	out := make([]float64, 0, len(items))
	for _, item := range items {
		if n, ok := toNumber(item); ok {
			out = append(out, n)
		}
	}
	return out
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any, []any:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(t); err != nil {
			return fmt.Sprint(t)
		}
		return strings.TrimSuffix(buf.String(), "\n")
	default:
		return fmt.Sprint(t)
	}
}

var numberCleaner = strings.NewReplacer("₹", "", "Rs.", "", "Rs", "", "INR", "", ",", "", " ", "")

func toNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = t
	case string:
		cleaned := numberCleaner.Replace(strings.TrimSpace(t))
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// canonicalCategory maps a provider key onto a known category when it only
// differs in case; unknown keys keep their own name.
func canonicalCategory(key string) string {
	for _, known := range SuggestionCategories {
		if strings.EqualFold(known, key) {
			return known
		}
	}
	return key
}

func lookupFirst(m map[string]any, candidates []string) (string, any, bool) {
	for _, candidate := range candidates {
		if key, value, ok := LookupFold(m, candidate); ok {
			return key, value, true
		}
	}
	return "", nil, false
}

// LookupFold finds key in m ignoring case. An exact match wins; otherwise
// the lexically first case-insensitive match is used so results are stable.
func LookupFold(m map[string]any, key string) (string, any, bool) {
	if v, ok := m[key]; ok {
		return key, v, true
	}
	var matches []string
	for k := range m {
		if strings.EqualFold(k, key) {
			matches = append(matches, k)
		}
	}
	if len(matches) == 0 {
		return "", nil, false
	}
	sort.Strings(matches)
	return matches[0], m[matches[0]], true
}
