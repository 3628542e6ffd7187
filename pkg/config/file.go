package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape of a project file. The json tags are
// what CUE decodes through.
type fileConfig struct {
	Features  map[string]bool `yaml:"features" json:"features"`
	Warnings  map[string]bool `yaml:"warnings" json:"warnings"`
	MaxErrors *int            `yaml:"max-errors" json:"max-errors"`
	Color     *bool           `yaml:"color" json:"color"`
}

// LoadFile applies a project file on top of c. YAML files (.yaml, .yml) are
// decoded strictly, so a misspelt key is an error; CUE files (.cue) are
// evaluated first and the result decoded into the same shape.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		err = decodeYAML(data, &fc)
	case ".cue":
		err = decodeCUE(path, data, &fc)
	default:
		return fmt.Errorf("unsupported config file extension '%s' (want .yaml, .yml or .cue)", ext)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return c.apply(&fc)
}

func decodeYAML(data []byte, fc *fileConfig) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(fc); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

func decodeCUE(path string, data []byte, fc *fileConfig) error {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return fmt.Errorf("building CUE value: %w", err)
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("validating CUE value: %w", err)
	}
	if err := value.Decode(fc); err != nil {
		return fmt.Errorf("decoding CUE value: %w", err)
	}
	return nil
}

func (c *Config) apply(fc *fileConfig) error {
	for name, enabled := range fc.Features {
		ft, ok := c.FeatureMap[name]
		if !ok {
			return fmt.Errorf("unknown feature '%s'", name)
		}
		c.SetFeature(ft, enabled)
	}
	if all, ok := fc.Warnings["all"]; ok {
		for i := Warning(0); i < WarnCount; i++ {
			c.SetWarning(i, all)
		}
	}
	for name, enabled := range fc.Warnings {
		if name == "all" {
			continue
		}
		wt, ok := c.WarningMap[name]
		if !ok {
			return fmt.Errorf("unknown warning '%s'", name)
		}
		c.SetWarning(wt, enabled)
	}
	if fc.MaxErrors != nil {
		if *fc.MaxErrors < 0 {
			return fmt.Errorf("max-errors must not be negative, got %d", *fc.MaxErrors)
		}
		c.MaxErrors = *fc.MaxErrors
	}
	if fc.Color != nil {
		c.Color = *fc.Color
	}
	return nil
}
