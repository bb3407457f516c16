// Package glossary loads the static abbreviation glossary used as retrieval ground truth.
package glossary

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MereWhiplash/fieldnorm/internal/types"
)

//go:embed glossary.yaml
var builtin []byte

// Builtin returns the glossary shipped with the binary
func Builtin() ([]types.GlossaryEntry, error) {
	return Parse(builtin, "yaml")
}

// Load reads a glossary file. An empty path returns the built-in glossary.
// The format is chosen by extension: .yaml, .yml or .json.
func Load(path string) ([]types.GlossaryEntry, error) {
	if path == "" {
		return Builtin()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read glossary: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return Parse(data, "yaml")
	case ".json":
		return Parse(data, "json")
	default:
		return nil, fmt.Errorf("unsupported glossary format: %s", ext)
	}
}

// Parse decodes and validates glossary entries
func Parse(data []byte, format string) ([]types.GlossaryEntry, error) {
	var entries []types.GlossaryEntry

	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to decode glossary: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to decode glossary: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported glossary format: %s", format)
	}

	if err := Validate(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Validate checks every entry and rejects abbreviations that collide once lower-cased
func Validate(entries []types.GlossaryEntry) error {
	seen := make(map[string]string, len(entries))
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return err
		}
		key := strings.ToLower(strings.TrimSpace(e.Abbr))
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("duplicate glossary abbreviation %q (also %q)", e.Abbr, prev)
		}
		seen[key] = e.Abbr
	}
	return nil
}
