// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/stamprename/pkg/naming"
	"github.com/walteh/stamprename/pkg/workitem"
	"gitlab.com/tozd/go/errors"
)

const (
	DefaultBatchSize      = 10
	DefaultMaxParallelism = 4
)

// DefaultInclude matches every file below the source directory
var DefaultInclude = []string{"**/*"}

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🏷️ NamingArgs configures destination names
type NamingArgs struct {
	Fields       []string             `json:"fields,omitempty" yaml:"fields,omitempty"`             // field labels joined in order
	Replacements []naming.Replacement `json:"replacements,omitempty" yaml:"replacements,omitempty"` // applied to the joined stem
}

// 🛡️ PreserveArgs configures preserve mode
type PreserveArgs struct {
	Enabled      bool                        `json:"enabled" yaml:"enabled"`
	Groups       []workitem.EventGroupConfig `json:"groups,omitempty" yaml:"groups,omitempty"`
	TokenMarkers map[string]string           `json:"token_markers,omitempty" yaml:"token_markers,omitempty"` // label -> marker
}

// 🎨 StampArgs configures the external stamping tool
type StampArgs struct {
	Command []string `json:"command" yaml:"command"`
}

// 📚 Config represents one rename run
type Config struct {
	Source         string            `json:"source" yaml:"source"`
	Include        []string          `json:"include,omitempty" yaml:"include,omitempty"`
	Ignore         []string          `json:"ignore,omitempty" yaml:"ignore,omitempty"`
	Export         string            `json:"export" yaml:"export"`
	Copy           bool              `json:"copy,omitempty" yaml:"copy,omitempty"`
	Separator      string            `json:"separator,omitempty" yaml:"separator,omitempty"`
	BatchSize      int               `json:"batch_size,omitempty" yaml:"batch_size,omitempty"`
	MaxParallelism int               `json:"max_parallelism,omitempty" yaml:"max_parallelism,omitempty"`
	Regex          string            `json:"regex,omitempty" yaml:"regex,omitempty"`
	Defaults       map[string]string `json:"defaults,omitempty" yaml:"defaults,omitempty"`   // label -> value for empty fields
	Overrides      map[string]string `json:"overrides,omitempty" yaml:"overrides,omitempty"` // label -> value written over every item
	Naming         NamingArgs        `json:"naming,omitempty" yaml:"naming,omitempty"`
	Preserve       PreserveArgs      `json:"preserve,omitempty" yaml:"preserve,omitempty"`
	Stamp          *StampArgs        `json:"stamp,omitempty" yaml:"stamp,omitempty"`
	Journal        bool              `json:"journal,omitempty" yaml:"journal,omitempty"`
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	// Parse config
	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	// Relative paths are resolved against the config file
	base := filepath.Dir(path)
	cfg.Source = resolve(base, cfg.Source)
	cfg.Export = resolve(base, cfg.Export)

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// 🔍 Validate checks if the configuration is valid and fills in defaults
func (cfg *Config) Validate() error {
	// Check required fields
	if cfg.Source == "" {
		return errors.Errorf("source is required")
	}
	if cfg.Export == "" {
		return errors.Errorf("export is required")
	}

	// Clean up paths
	cfg.Source = filepath.Clean(cfg.Source)
	cfg.Export = filepath.Clean(cfg.Export)

	// Set defaults
	if len(cfg.Include) == 0 {
		cfg.Include = DefaultInclude
	}
	if cfg.Separator == "" {
		cfg.Separator = naming.DefaultSeparator
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.MaxParallelism <= 0 {
		cfg.MaxParallelism = DefaultMaxParallelism
	}

	for _, pattern := range append(append([]string{}, cfg.Include...), cfg.Ignore...) {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid glob pattern %q", pattern)
		}
	}

	if cfg.Regex != "" {
		if _, err := regexp.Compile(cfg.Regex); err != nil {
			return errors.Errorf("compiling regex: %w", err)
		}
	}

	for label := range cfg.Defaults {
		if _, ok := workitem.LookupField(label); !ok {
			return errors.Errorf("defaults: unknown field %q", label)
		}
	}

	for label := range cfg.Overrides {
		if _, ok := workitem.LookupField(label); !ok {
			return errors.Errorf("overrides: unknown field %q", label)
		}
	}

	for _, label := range cfg.Naming.Fields {
		if _, ok := workitem.LookupField(label); !ok {
			return errors.Errorf("naming.fields: unknown field %q", label)
		}
	}
	if err := naming.ValidateReplacements(cfg.Naming.Replacements); err != nil {
		return errors.Errorf("naming.replacements: %w", err)
	}

	for _, g := range cfg.Preserve.Groups {
		for _, label := range g.Fields {
			if _, ok := workitem.LookupField(label); !ok {
				return errors.Errorf("preserve group %q: unknown field %q", g.Name, label)
			}
		}
	}
	for label, marker := range cfg.Preserve.TokenMarkers {
		if _, ok := workitem.LookupField(label); !ok {
			return errors.Errorf("preserve.token_markers: unknown field %q", label)
		}
		if strings.TrimSpace(marker) == "" {
			return errors.Errorf("preserve.token_markers: empty marker for %q", label)
		}
	}

	if cfg.Stamp != nil && (len(cfg.Stamp.Command) == 0 || cfg.Stamp.Command[0] == "") {
		return errors.Errorf("stamp.command is required when stamp is set")
	}

	return nil
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	mode := "move"
	if cfg.Copy {
		mode = "copy"
	}
	return fmt.Sprintf("%s -> %s (%s)", cfg.Source, cfg.Export, mode)
}
