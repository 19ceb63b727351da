package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FromFile loads engine settings from a YAML or JSON file, chosen by
// extension. Recognized extensions: .yaml, .yml, .json.
func FromFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read formula config %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FromYAML(raw)
	case ".json":
		return FromJSON(raw)
	}
	return Config{}, fmt.Errorf("formula config %s: unsupported extension (want .yaml, .yml, or .json)", path)
}

// FromYAML decodes YAML engine settings, typically the date_format and
// constants keys consumed by formula.FromConfig.
func FromYAML(raw []byte) (Config, error) {
	var m map[string]any
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return Config{}, fmt.Errorf("decode yaml config: %w", err)
	}
	return New(m), nil
}

// FromJSON decodes JSON engine settings.
func FromJSON(raw []byte) (Config, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return Config{}, fmt.Errorf("decode json config: %w", err)
	}
	return New(m), nil
}
