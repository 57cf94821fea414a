package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cohortcheck/internal/check"
)

// DefaultConfigFile is read when --config is not given and the file exists
// in the working directory.
const DefaultConfigFile = ".cohortcheck.yaml"

// failOnNone disables the --fail-on threshold.
const failOnNone = "none"

// Config holds defaults for command flags. Flags given on the command line
// override it.
type Config struct {
	Dialect       string   `yaml:"dialect"`
	Patterns      string   `yaml:"patterns"`
	SessionID     string   `yaml:"session_id"`
	TempSchema    string   `yaml:"temp_schema"`
	DisabledRules []string `yaml:"disabled_rules"`
	FailOn        string   `yaml:"fail_on"`
}

// LoadConfig reads a YAML config file. Unknown keys are rejected. A missing
// file is an error only when required is true.
func LoadConfig(path string, required bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return &Config{}, nil
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeConfig, Message: fmt.Sprintf("reading config: %v", err)}
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &LoadError{Code: ErrCodeConfig, Message: fmt.Sprintf("parsing config: %v", err)}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	for _, name := range c.DisabledRules {
		if !check.IsRule(name) {
			return &LoadError{Code: ErrCodeUnknownRule, Message: fmt.Sprintf("config: unknown rule %q in disabled_rules", name)}
		}
	}
	if _, _, err := parseFailOn(c.FailOn); err != nil {
		return &LoadError{Code: ErrCodeConfig, Message: fmt.Sprintf("config: fail_on: %v", err)}
	}
	return nil
}

// parseFailOn parses a --fail-on value. enabled is false for "none"; an
// empty value means CRITICAL.
func parseFailOn(value string) (threshold check.Severity, enabled bool, err error) {
	switch v := strings.TrimSpace(value); {
	case v == "":
		return check.SeverityCritical, true, nil
	case strings.EqualFold(v, failOnNone):
		return check.SeverityInfo, false, nil
	default:
		threshold, err = check.ParseSeverity(v)
		return threshold, err == nil, err
	}
}
