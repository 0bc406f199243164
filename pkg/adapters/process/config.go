package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProcessConfig binds an operator to an external validation command.
type ProcessConfig struct {
	Operator    string            `yaml:"operator" json:"operator"`
	Category    string            `yaml:"category" json:"category"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
}

// ConfigFile represents the structure of validators.yaml.
type ConfigFile struct {
	Validators []ProcessConfig `yaml:"validators" json:"validators"`
}

// LoadValidators reads a configuration file (YAML or JSON) and returns the
// configured validators keyed by operator. A missing file yields no validators.
func LoadValidators(path string) (map[string]ProcessConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]ProcessConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read validators config: %w", err)
	}

	var cfg ConfigFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	out := make(map[string]ProcessConfig)
	for _, v := range cfg.Validators {
		if v.Operator == "" || v.Command == "" {
			continue
		}
		out[v.Operator] = v
	}
	return out, nil
}
