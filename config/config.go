// Package config loads game variants from YAML. The embedded defaults.yaml
// defines the built-in variants; an optional file on disk can override fields
// of existing variants or add new ones.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/brensch/conpac/game"
	"github.com/brensch/conpac/rules"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type file struct {
	Default  string               `yaml:"default"`
	Variants map[string]yaml.Node `yaml:"variants"`
}

// Set is every known variant, in decode order per name.
type Set struct {
	Default string
	layers  map[string][]yaml.Node
}

// LoadSet parses the embedded defaults and, if path is not empty, layers the
// file at path on top.
func LoadSet(path string) (*Set, error) {
	set := &Set{layers: map[string][]yaml.Node{}}
	if err := set.add(defaultsYAML); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := set.add(data); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	return set, nil
}

func (s *Set) add(data []byte) error {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return err
	}
	if f.Default != "" {
		s.Default = f.Default
	}
	for name, node := range f.Variants {
		s.layers[name] = append(s.layers[name], node)
	}
	return nil
}

// Names lists the variants in alphabetical order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.layers))
	for name := range s.layers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Variant resolves name (the default variant when empty) and validates it.
func (s *Set) Variant(name string) (game.Config, error) {
	if name == "" {
		name = s.Default
	}
	layers, ok := s.layers[name]
	if !ok {
		return game.Config{}, fmt.Errorf("unknown variant %q (have %v)", name, s.Names())
	}

	cfg := game.DefaultConfig
	cfg.Patterns = append([]game.PatternCadence(nil), cfg.Patterns...)
	for i := range layers {
		if err := layers[i].Decode(&cfg); err != nil {
			return game.Config{}, fmt.Errorf("decoding variant %q: %w", name, err)
		}
	}
	cfg.Name = name

	if err := Validate(cfg); err != nil {
		return game.Config{}, fmt.Errorf("variant %q: %w", name, err)
	}
	return cfg, nil
}

// Load is LoadSet followed by Variant.
func Load(path, variant string) (game.Config, error) {
	set, err := LoadSet(path)
	if err != nil {
		return game.Config{}, err
	}
	return set.Variant(variant)
}

// Validate checks cfg and that every pattern it schedules exists.
func Validate(cfg game.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	for _, p := range cfg.Patterns {
		if _, ok := rules.LookupPattern(p.Pattern); !ok {
			return fmt.Errorf("unknown pattern %q", p.Pattern)
		}
	}
	return nil
}
