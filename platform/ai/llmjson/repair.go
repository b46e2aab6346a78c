// Package llmjson recovers structured objects from free-form model output.
package llmjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"marketplace_backend/platform/logger"

	"github.com/kaptinlin/jsonrepair"
)

var fencePattern = regexp.MustCompile("(?i)```json|```")

// StripCodeFences removes generic and json-tagged markdown fence markers.
// Text without fences is returned unchanged.
func StripCodeFences(text string) string {
	if !strings.Contains(text, "```") {
		return text
	}
	return fencePattern.ReplaceAllString(text, "")
}

// ExtractObject returns the span from the first '{' to the last '}'.
// ok is false when no such span exists.
func ExtractObject(text string) (candidate string, ok bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return text, false
	}
	return text[start : end+1], true
}

// Repair turns raw provider text into a mapping. It never fails: on any
// unrecoverable input, or a JSON root that is not an object, it logs a
// diagnostic and returns an empty map.
func Repair(log *logger.Logger, raw string) (out map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			warn(log, "json repair panicked", fmt.Errorf("%v", r), raw)
			out = map[string]any{}
		}
	}()

	text := strings.TrimSpace(StripCodeFences(raw))
	if text == "" {
		warn(log, "empty provider response", nil, raw)
		return map[string]any{}
	}

	if candidate, ok := ExtractObject(text); ok {
		text = candidate
	} else if start := strings.Index(text, "{"); start > 0 {
		// Truncated answer: keep the open object so its brackets can be closed.
		text = text[start:]
	}

	if obj, err := decodeObject(text); err == nil {
		return obj
	}

	repaired, err := jsonrepair.JSONRepair(text)
	if err != nil {
		warn(log, "json repair failed", err, raw)
		return map[string]any{}
	}

	obj, err := decodeObject(repaired)
	if err != nil {
		warn(log, "repaired json unusable", err, raw)
		return map[string]any{}
	}
	return obj
}

// errNotObject flags valid JSON whose root is an array or scalar.
var errNotObject = errors.New("json root is not an object")

func decodeObject(text string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after json value")
	}
	obj, ok := root.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return obj, nil
}

func warn(log *logger.Logger, msg string, err error, raw string) {
	if log == nil {
		return
	}
	args := []any{"rawLength", len(raw), "rawPreview", preview(raw)}
	if err != nil {
		args = append(args, "error", err)
	}
	log.Warn(msg, args...)
}

func preview(raw string) string {
	const limit = 160
	compact := bytes.Join(bytes.Fields([]byte(raw)), []byte(" "))
	if len(compact) > limit {
		return string(compact[:limit]) + "..."
	}
	return string(compact)
}
