// Package extract pulls the JSON object out of free-form model output.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/MereWhiplash/fieldnorm/internal/types"
)

// ErrNoJSON is returned when the text holds no balanced JSON object
var ErrNoJSON = errors.New("no JSON object found")

// JSONObject returns the first balanced {...} span in text. Braces inside JSON
// strings are ignored, so code fences or leading prose do not matter.
func JSONObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	for start >= 0 {
		if end, ok := matchBrace(text, start); ok {
			return text[start : end+1], nil
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", ErrNoJSON
}

// matchBrace returns the index of the brace closing the one at start
func matchBrace(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// Normalizations decodes the model's reply into a Result, keeping field order.
func Normalizations(text string) (*types.Result, error) {
	raw := strings.TrimSpace(text)
	if !json.Valid([]byte(raw)) {
		obj, err := JSONObject(raw)
		if err != nil {
			return nil, err
		}
		raw = obj
	}

	result := types.NewResult()
	if err := json.Unmarshal([]byte(raw), result); err != nil {
		return nil, fmt.Errorf("failed to decode normalizations: %w", err)
	}
	return result, nil
}
