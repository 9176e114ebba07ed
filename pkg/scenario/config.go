// YAML DSL for synthetic GenAI traces used by the demo command
// Parses nested span definitions with AI markers and source attributes
package scenario

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed demo.yaml
var defaultScenario []byte

// Config is the top-level YAML scenario: one or more root spans, each with a
// nested subtree.
type Config struct {
	Trace []SpanConfig `yaml:"trace"`
}

// SpanConfig describes one span in the scenario tree.
type SpanConfig struct {
	Name       string            `yaml:"name,omitempty"`
	AI         bool              `yaml:"ai,omitempty"`
	Operation  string            `yaml:"operation,omitempty"`
	Duration   string            `yaml:"duration,omitempty"`
	Attributes map[string]string `yaml:"attributes,omitempty"`
	Children   []SpanConfig      `yaml:"children,omitempty"`
}

// defaultSpanDuration applies when a span omits its duration.
const defaultSpanDuration = 5 * time.Millisecond

// Load reads and parses a YAML scenario file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied scenario path is expected
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return Parse(data)
}

// Default returns the embedded demo scenario.
func Default() (*Config, error) {
	return Parse(defaultScenario)
}

// Parse parses YAML scenario data and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks a scenario for structural correctness.
func Validate(cfg *Config) error {
	if len(cfg.Trace) == 0 {
		return fmt.Errorf("at least one root span is required")
	}
	for i := range cfg.Trace {
		if err := validateSpan(&cfg.Trace[i], ""); err != nil {
			return err
		}
	}
	return nil
}

func validateSpan(cfg *SpanConfig, parent string) error {
	if cfg.Name == "" && cfg.Operation == "" {
		return fmt.Errorf("span under %q must set name or operation", orRoot(parent))
	}
	label := cfg.Name
	if label == "" {
		label = cfg.Operation
	}
	if cfg.Duration != "" {
		if _, err := time.ParseDuration(cfg.Duration); err != nil {
			return fmt.Errorf("span %q: invalid duration: %w", label, err)
		}
	}
	if cfg.Operation != "" && !cfg.AI {
		return fmt.Errorf("span %q sets operation but is not marked ai", label)
	}
	for i := range cfg.Children {
		if err := validateSpan(&cfg.Children[i], label); err != nil {
			return err
		}
	}
	return nil
}

func orRoot(parent string) string {
	if parent == "" {
		return "trace root"
	}
	return parent
}

// duration resolves a span's duration, applying the default.
func (s *SpanConfig) duration() time.Duration {
	if s.Duration == "" {
		return defaultSpanDuration
	}
	d, err := time.ParseDuration(s.Duration)
	if err != nil {
		// Validate rejects this before emission.
		return defaultSpanDuration
	}
	return d
}

// label is the span's display name, falling back to the operation name.
func (s *SpanConfig) label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Operation
}
