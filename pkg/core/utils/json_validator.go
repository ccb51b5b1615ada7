package utils

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// ExtractJSONBlock trims conversational filler around a JSON payload.
// LLM responses frequently wrap JSON in markdown fences or prose; this cuts
// the substring between the first opening brace/bracket and the last
// closing one.
func ExtractJSONBlock(response string) string {
	trimmed := strings.TrimSpace(response)

	objStart := strings.Index(trimmed, "{")
	arrStart := strings.Index(trimmed, "[")

	start := objStart
	end := strings.LastIndex(trimmed, "}")
	if objStart == -1 || (arrStart != -1 && arrStart < objStart) {
		start = arrStart
		end = strings.LastIndex(trimmed, "]")
	}

	if start == -1 || end == -1 || end < start {
		return trimmed
	}
	return trimmed[start : end+1]
}

// RepairJSON attempts to fix common JSON errors in LLM output: single
// quotes, unquoted keys, trailing commas, unclosed brackets, markdown
// fences.
func RepairJSON(malformedJSON string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformedJSON)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %w", err)
	}
	return repaired, nil
}

// ParseHJSON parses lenient human-style JSON (comments, unquoted keys,
// optional commas) and normalizes it to standard JSON.
func ParseHJSON(input string) (string, error) {
	var result interface{}
	if err := hjson.Unmarshal([]byte(input), &result); err != nil {
		return "", fmt.Errorf("hjson parse failed: %w", err)
	}
	normalized, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("json marshal failed: %w", err)
	}
	return string(normalized), nil
}

// SmartParse unmarshals an LLM response into schema, trying progressively
// more lenient strategies:
//  1. strict JSON on the extracted block
//  2. json-repair then strict JSON
//  3. Hjson normalization then strict JSON
//
// Returns the JSON string that successfully parsed, so callers can keep the
// canonical form for logging or storage.
func SmartParse(response string, schema interface{}) (string, error) {
	input := ExtractJSONBlock(response)

	if err := json.Unmarshal([]byte(input), schema); err == nil {
		return input, nil
	}

	if repaired, err := RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return repaired, nil
		}
	}

	if normalized, err := ParseHJSON(input); err == nil {
		if err := json.Unmarshal([]byte(normalized), schema); err == nil {
			return normalized, nil
		}
	}

	return "", fmt.Errorf("smart parse failed: no strategy produced valid JSON")
}
