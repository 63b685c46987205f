package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Manifest declares a state graph in data. Primary and sub kinds are fully
// described; computed kinds declare their name and sources here while the
// derivation function is bound in code when the manifest is applied.
type Manifest struct {
	App    string      `yaml:"app" json:"app" mapstructure:"app"`
	States []StateSpec `yaml:"states" json:"states" mapstructure:"states"`
}

// StateSpec declares a single state kind. Which fields apply depends on Kind:
// primaries carry Type and Initial, subs carry Parent, When, Type and Default,
// computed kinds carry Sources.
type StateSpec struct {
	Name    string   `yaml:"name" json:"name" mapstructure:"name"`
	Kind    string   `yaml:"kind" json:"kind" mapstructure:"kind"`
	Type    string   `yaml:"type,omitempty" json:"type,omitempty" mapstructure:"type"`
	Initial string   `yaml:"initial,omitempty" json:"initial,omitempty" mapstructure:"initial"`
	Parent  string   `yaml:"parent,omitempty" json:"parent,omitempty" mapstructure:"parent"`
	When    []string `yaml:"when,omitempty" json:"when,omitempty" mapstructure:"when"`
	Default string   `yaml:"default,omitempty" json:"default,omitempty" mapstructure:"default"`
	Sources []string `yaml:"sources,omitempty" json:"sources,omitempty" mapstructure:"sources"`
}

// Kind variant names accepted in a manifest.
const (
	KindPrimary  = "primary"
	KindSub      = "sub"
	KindComputed = "computed"
)

// Load reads a manifest file. The extension selects the format: .json is
// parsed as JSON, everything else as YAML.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read manifest: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		var m Manifest
		if err := json.Unmarshal(data, &m); err != nil {
			return Manifest{}, fmt.Errorf("failed to parse manifest json: %w", err)
		}
		return m, nil
	}
	return Parse(data)
}

// Parse decodes a YAML manifest.
func Parse(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest yaml: %w", err)
	}
	return m, nil
}

// FromMap decodes a manifest embedded in a larger configuration structure,
// such as a section of an already-parsed config file.
func FromMap(raw map[string]any) (Manifest, error) {
	var m Manifest
	if err := mapstructure.Decode(raw, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return m, nil
}
