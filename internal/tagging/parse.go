package tagging

import (
	"encoding/json"
	"strings"
)

// rawSuggestion is the model's claimed suggestion before validation.
// Confidence stays untyped so one non-numeric value drops that suggestion
// alone instead of failing the whole decode.
type rawSuggestion struct {
	AssetID    string `json:"assetId"`
	AssetName  string `json:"assetName"`
	Confidence any    `json:"confidence"`
	Reason     string `json:"reason"`
}

// rawBatchItem is one entry of a batch reply.
type rawBatchItem struct {
	ProductID   string          `json:"productId"`
	Suggestions []rawSuggestion `json:"suggestions"`
}

// decodeSuggestions parses a single-product reply. It tries the whole body
// first, then the first balanced bracket block. Anything that still does not
// decode yields (nil, false); malformed model output never becomes an error.
func decodeSuggestions(body string) ([]rawSuggestion, bool) {
	for _, candidate := range decodeCandidates(body) {
		var out []rawSuggestion
		if err := json.Unmarshal([]byte(candidate), &out); err == nil {
			return out, true
		}
		// models occasionally wrap the array in an object
		var wrapped struct {
			Suggestions []rawSuggestion `json:"suggestions"`
		}
		if err := json.Unmarshal([]byte(candidate), &wrapped); err == nil && wrapped.Suggestions != nil {
			return wrapped.Suggestions, true
		}
	}
	return nil, false
}

// decodeBatch parses a batch reply of {productId, suggestions} entries.
func decodeBatch(body string) ([]rawBatchItem, bool) {
	for _, candidate := range decodeCandidates(body) {
		var out []rawBatchItem
		if err := json.Unmarshal([]byte(candidate), &out); err == nil {
			return out, true
		}
		var wrapped struct {
			Results []rawBatchItem `json:"results"`
		}
		if err := json.Unmarshal([]byte(candidate), &wrapped); err == nil && wrapped.Results != nil {
			return wrapped.Results, true
		}
	}
	return nil, false
}

func decodeCandidates(body string) []string {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}
	candidates := []string{body}
	if block, ok := firstBalancedBlock(body); ok && block != body {
		candidates = append(candidates, block)
	}
	return candidates
}

// firstBalancedBlock scans for the first `[` or `{` and returns the text up
// to its matching close bracket, honoring JSON string literals and escapes.
func firstBalancedBlock(s string) (string, bool) {
	start := strings.IndexAny(s, "[{")
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
