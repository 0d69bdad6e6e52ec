// github.com/coder5617/MeshPDF - annotate, sign, print, and merge PDF documents
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package config handles MeshPDF configuration loading.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Render RenderConfig `yaml:"render"`
	Text   TextConfig   `yaml:"text"`
}

// RenderConfig holds viewport rendering settings.
type RenderConfig struct {
	// Scale is the fixed render quality multiplier (pixels per point at
	// zoom 1), chosen once per session.
	Scale float64 `yaml:"scale"`
}

// TextConfig holds text annotation settings.
type TextConfig struct {
	// Font is the document font name used for persisted text overlays.
	Font string `yaml:"font"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Scale: 2.0, // 200% render resolution for crisp display
		},
		Text: TextConfig{
			Font: "Helvetica",
		},
	}
}

// Load reads a YAML configuration file. A missing file yields the
// defaults; a malformed one is an error. Unset fields fall back to their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Render.Scale <= 0 {
		c.Render.Scale = d.Render.Scale
	}
	if c.Text.Font == "" {
		c.Text.Font = d.Text.Font
	}
}
