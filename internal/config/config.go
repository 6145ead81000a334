// Package config loads the kernel's tunable settings from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/alexshamov/TypeTheory/internal/kernel"
)

// File is the on-disk shape of a kernel configuration file.
type File struct {
	UnsafeMode     bool     `yaml:"unsafe_mode"`
	RecursionLimit int      `yaml:"recursion_limit"`
	Prelude        []string `yaml:"prelude"`
}

// Load reads and parses a YAML configuration file at path. A missing or
// empty recursion_limit stays 0 in the resulting kernel.Config, which
// the kernel reads as its own default limit.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if f.RecursionLimit < 0 {
		return nil, fmt.Errorf("config: %s: recursion_limit must not be negative", path)
	}
	return &f, nil
}

// KernelConfig translates the file's settings into kernel.Config.
func (f *File) KernelConfig() kernel.Config {
	return kernel.Config{
		UnsafeMode:     f.UnsafeMode,
		RecursionLimit: f.RecursionLimit,
	}
}
