// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/avatar"
)

// loadConfig reads an avatar configuration from a YAML file. Fields
// missing from the file keep their defaults. An empty path returns the
// defaults.
func loadConfig(path string) (avatar.Config, error) {
	cfg := avatar.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if !cfg.Size.Valid() {
		return cfg, fmt.Errorf("config %s: invalid size %s", path, cfg.Size)
	}
	return cfg, nil
}
