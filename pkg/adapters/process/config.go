package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// TargetConfig describes an external executable a step may name.
type TargetConfig struct {
	Name        string            `yaml:"name" json:"name"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
}

// ConfigFile represents the structure of targets.yaml.
type ConfigFile struct {
	Targets []TargetConfig `yaml:"targets" json:"targets"`
}

// LoadTargets reads a configuration file (YAML or JSON) and returns a map of target names to configs.
// A missing file yields an empty map.
func LoadTargets(path string) (map[string]TargetConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]TargetConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read targets config: %w", err)
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

	targets := make(map[string]TargetConfig)
	for _, t := range cfg.Targets {
		if t.Name == "" {
			continue
		}
		if t.Command == "" {
			return nil, fmt.Errorf("target %q: command is required", t.Name)
		}
		targets[t.Name] = t
	}
	return targets, nil
}
