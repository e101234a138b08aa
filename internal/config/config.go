// Package config loads the TOML run configuration shared by the msgspec
// subcommands.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is one run's external input: where the sheets live, how arrays
// expand, and what the payload check may consult.
type Config struct {
	Spec   SpecConfig   `toml:"spec"`
	Layout LayoutConfig `toml:"layout"`
	Verify VerifyConfig `toml:"verify"`
}

// SpecConfig names the source sheets and build options.
type SpecConfig struct {
	Request      string `toml:"request"`
	Response     string `toml:"response"`
	Header       string `toml:"header"`
	OperationID  string `toml:"operation_id"`
	HeaderAnchor string `toml:"header_anchor"`
}

// LayoutConfig supplies repetition counts for arrays without a fixed
// bound, keyed by field path.
type LayoutConfig struct {
	Repetitions map[string]int `toml:"repetitions"`
}

// VerifyConfig configures the payload check.
type VerifyConfig struct {
	Payload    string            `toml:"payload"`
	Convention string            `toml:"convention"`
	Redact     bool              `toml:"redact"`
	Overrides  map[string]string `toml:"overrides"`
	Resolver   map[string]string `toml:"resolver"`
}

// Load reads and validates a run configuration file. Unknown keys are
// rejected so a typo never silently disables an option.
func Load(path string) (*Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("load run config: %w", err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("run config %s has unknown keys: %s", path, strings.Join(keys, ", "))
	}

	cfg.Spec.Request = strings.TrimSpace(cfg.Spec.Request)
	cfg.Spec.Response = strings.TrimSpace(cfg.Spec.Response)
	cfg.Spec.Header = strings.TrimSpace(cfg.Spec.Header)
	cfg.Spec.OperationID = strings.TrimSpace(cfg.Spec.OperationID)
	cfg.Spec.HeaderAnchor = strings.TrimSpace(cfg.Spec.HeaderAnchor)
	cfg.Verify.Payload = strings.TrimSpace(cfg.Verify.Payload)
	cfg.Verify.Convention = strings.TrimSpace(cfg.Verify.Convention)

	for fieldPath, n := range cfg.Layout.Repetitions {
		if n < 0 {
			return nil, fmt.Errorf("run config %s: repetition count for %s is negative", path, fieldPath)
		}
	}
	return &cfg, nil
}
