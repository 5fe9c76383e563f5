package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/tuning.yaml
var defaultTuningYAML []byte

//go:embed defaults/scenario.yaml
var defaultScenarioYAML []byte

// LoadTuning loads a TuningConfig. Search order: customPath -> the user
// config directory (via os.UserConfigDir, matching the OS-appropriate
// location rather than hardcoding a dotfile path) -> ./configs/tuning.yaml
// -> the embedded default.
func LoadTuning(customPath string) (TuningConfig, error) {
	var cfg TuningConfig

	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("read tuning config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse tuning config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	if p := userConfigPath("tuning.yaml"); p != "" {
		if data, err := os.ReadFile(p); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return cfg, nil
			}
		}
	}

	if data, err := os.ReadFile("configs/tuning.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(defaultTuningYAML, &cfg); err != nil {
		return DefaultTuningConfig(), nil
	}
	return cfg, nil
}

// LoadScenario loads a ScenarioConfig with the same fallback chain as
// LoadTuning.
func LoadScenario(customPath string) (ScenarioConfig, error) {
	var cfg ScenarioConfig

	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("read scenario %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse scenario %s: %w", customPath, err)
		}
		return cfg, nil
	}

	if p := userConfigPath("scenario.yaml"); p != "" {
		if data, err := os.ReadFile(p); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return cfg, nil
			}
		}
	}

	if data, err := os.ReadFile("configs/scenario.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(defaultScenarioYAML, &cfg); err != nil {
		return cfg, fmt.Errorf("parse embedded default scenario: %w", err)
	}
	return cfg, nil
}

func userConfigPath(filename string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "vela2d", filename)
}
