package taxonomy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/suykerbuyk/padroles/internal/record"
)

// Tables maps legacy role names to current ones, per side. Keys are matched
// case-insensitively.
type Tables struct {
	Human map[string]string `toml:"human" yaml:"human"`
	AI    map[string]string `toml:"ai" yaml:"ai"`
}

// DefaultTables returns the mapping for the role vocabularies used by earlier
// annotation passes.
func DefaultTables() Tables {
	return Tables{
		Human: map[string]string{
			"information-seeker": "seeker",
			"questioner":         "seeker",
			"student":            "learner",
			"instructor":         "director",
			"commander":          "director",
			"co-creator":         "collaborator",
			"co-constructor":     "collaborator",
			"relational-peer":    "sharer",
			"social-expressor":   "sharer",
			"provider":           "sharer",
			"tester":             "challenger",
			"critic":             "challenger",
		},
		AI: map[string]string{
			"expert-system":        "expert",
			"information-provider": "expert",
			"consultant":           "advisor",
			"learning-facilitator": "facilitator",
			"tutor":                "facilitator",
			"mirror":               "reflector",
			"co-constructor":       "peer",
			"relational-peer":      "peer",
			"collaborator":         "peer",
			"social-facilitator":   "affiliative",
			"companion":            "affiliative",
		},
	}
}

// Side returns the table for side.
func (t Tables) Side(side record.Side) map[string]string {
	switch side {
	case record.SideHuman:
		return t.Human
	case record.SideAI:
		return t.AI
	default:
		return nil
	}
}

// Merge returns t with the entries of other added, other winning on conflict.
func (t Tables) Merge(other Tables) Tables {
	out := Tables{Human: map[string]string{}, AI: map[string]string{}}
	for _, src := range []Tables{t, other} {
		for k, v := range src.Human {
			out.Human[normalize(k)] = v
		}
		for k, v := range src.AI {
			out.AI[normalize(k)] = v
		}
	}
	return out
}

// Validate checks that every mapping targets a canonical role name.
func (t Tables) Validate() error {
	for _, side := range record.Sides {
		for from, to := range t.Side(side) {
			if !IsCanonical(side, to) {
				return fmt.Errorf("%s mapping %q -> %q: target is not a current role", side, from, to)
			}
		}
	}
	return nil
}

// LoadFile reads mapping tables from a TOML or YAML file, chosen by extension.
func LoadFile(path string) (Tables, error) {
	var t Tables
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read taxonomy file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &t); err != nil {
			return t, fmt.Errorf("parse taxonomy file %s: %w", path, err)
		}
	default:
		if _, err := toml.Decode(string(data), &t); err != nil {
			return t, fmt.Errorf("parse taxonomy file %s: %w", path, err)
		}
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("taxonomy file %s: %w", path, err)
	}
	return t, nil
}
