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
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/stamprename/pkg/naming"
	"github.com/walteh/stamprename/pkg/workitem"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid_config",
			config: `
source: /data/in
export: /data/out
copy: true
include:
  - "**/*.pdf"
ignore:
  - "**/draft/**"
separator: "-"
batch_size: 20
max_parallelism: 8
regex: "R(\\d+)"
defaults:
  Material: PVC
overrides:
  Process: laser
naming:
  fields: ["Order Number", "Material"]
  replacements:
    - old: " "
      new: "_"
preserve:
  enabled: true
  groups:
    - name: cutting
      fields: ["Quantity", "Dimensions"]
      preserved: true
  token_markers:
    Quantity: "#Q"
stamp:
  command: ["layerstamp", "{src}", "{dst}"]
journal: true
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/data/in", cfg.Source, "source should match")
				assert.Equal(t, "/data/out", cfg.Export, "export should match")
				assert.True(t, cfg.Copy, "copy should be true")
				assert.Equal(t, []string{"**/*.pdf"}, cfg.Include)
				assert.Equal(t, []string{"**/draft/**"}, cfg.Ignore)
				assert.Equal(t, "-", cfg.Separator)
				assert.Equal(t, 20, cfg.BatchSize)
				assert.Equal(t, 8, cfg.MaxParallelism)
				assert.Equal(t, `R(\d+)`, cfg.Regex)
				assert.Equal(t, map[string]string{"Material": "PVC"}, cfg.Defaults)
				assert.Equal(t, map[string]string{"Process": "laser"}, cfg.Overrides)
				assert.Equal(t, []string{"Order Number", "Material"}, cfg.Naming.Fields)
				assert.Equal(t, []naming.Replacement{{Old: " ", New: "_"}}, cfg.Naming.Replacements)
				assert.True(t, cfg.Preserve.Enabled)
				assert.Equal(t, []workitem.EventGroupConfig{
					{Name: "cutting", Fields: []string{"Quantity", "Dimensions"}, IsPreserved: true},
				}, cfg.Preserve.Groups)
				assert.Equal(t, map[string]string{"Quantity": "#Q"}, cfg.Preserve.TokenMarkers)
				require.NotNil(t, cfg.Stamp)
				assert.Equal(t, []string{"layerstamp", "{src}", "{dst}"}, cfg.Stamp.Command)
				assert.True(t, cfg.Journal)
			},
		},
		{
			name: "minimal_config",
			config: `
source: /data/in
export: /data/out/
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/data/out", cfg.Export, "export should be cleaned")
				assert.Equal(t, DefaultInclude, cfg.Include, "include should have default value")
				assert.Equal(t, naming.DefaultSeparator, cfg.Separator)
				assert.Equal(t, DefaultBatchSize, cfg.BatchSize)
				assert.Equal(t, DefaultMaxParallelism, cfg.MaxParallelism)
				assert.False(t, cfg.Copy)
				assert.Nil(t, cfg.Stamp)
			},
		},
		{
			name: "non_positive_sizes_use_defaults",
			config: `
source: /data/in
export: /data/out
batch_size: 0
max_parallelism: -2
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultBatchSize, cfg.BatchSize)
				assert.Equal(t, DefaultMaxParallelism, cfg.MaxParallelism)
			},
		},
		{
			name: "missing_required_source",
			config: `
export: /data/out
`,
			wantErr:     true,
			errContains: "source is required",
		},
		{
			name: "missing_required_export",
			config: `
source: /data/in
`,
			wantErr:     true,
			errContains: "export is required",
		},
		{
			name: "unknown_key",
			config: `
source: /data/in
export: /data/out
destination: /tmp
`,
			wantErr:     true,
			errContains: "parsing YAML",
		},
		{
			name: "unknown_naming_field",
			config: `
source: /data/in
export: /data/out
naming:
  fields: ["Colour"]
`,
			wantErr:     true,
			errContains: `naming.fields: unknown field "Colour"`,
		},
		{
			name: "unknown_override_field",
			config: `
source: /data/in
export: /data/out
overrides:
  Colour: red
`,
			wantErr:     true,
			errContains: `overrides: unknown field "Colour"`,
		},
		{
			name: "unknown_preserve_field",
			config: `
source: /data/in
export: /data/out
preserve:
  groups:
    - name: g
      fields: ["Nope"]
`,
			wantErr:     true,
			errContains: `preserve group "g": unknown field "Nope"`,
		},
		{
			name: "bad_regex",
			config: `
source: /data/in
export: /data/out
regex: "("
`,
			wantErr:     true,
			errContains: "compiling regex",
		},
		{
			name: "bad_glob",
			config: `
source: /data/in
export: /data/out
include: ["[a-"]
`,
			wantErr:     true,
			errContains: "invalid glob pattern",
		},
		{
			name: "empty_replacement",
			config: `
source: /data/in
export: /data/out
naming:
  replacements:
    - old: ""
      new: x
`,
			wantErr:     true,
			errContains: "naming.replacements",
		},
		{
			name: "empty_stamp_command",
			config: `
source: /data/in
export: /data/out
stamp:
  command: []
`,
			wantErr:     true,
			errContains: "stamp.command is required",
		},
	}

	ctx := zerolog.New(os.Stderr).WithContext(context.Background())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create temporary config file
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "config.yaml")
			err := os.WriteFile(configPath, []byte(tt.config), 0644)
			require.NoError(t, err, "writing config file should succeed")

			// Load config
			cfg, err := Load(ctx, configPath)
			if tt.wantErr {
				require.Error(t, err, "Load should return error")
				assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
				return
			}

			require.NoError(t, err, "Load should succeed")
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoadResolvesRelativePaths(t *testing.T) {
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "run.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("source: in\nexport: ./out\n"), 0644))

	cfg, err := Load(ctx, configPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "in"), cfg.Source)
	assert.Equal(t, filepath.Join(tmpDir, "out"), cfg.Export)
}

func TestLoadErrors(t *testing.T) {
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
	tmpDir := t.TempDir()

	_, err := Load(ctx, filepath.Join(tmpDir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")

	txt := filepath.Join(tmpDir, "config.txt")
	require.NoError(t, os.WriteFile(txt, []byte("source: x"), 0644))
	_, err = Load(ctx, txt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no parser found for file")
}

func TestConfigString(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
		want string
	}{
		{
			name: "move",
			cfg:  &Config{Source: "/in", Export: "/out"},
			want: "/in -> /out (move)",
		},
		{
			name: "copy",
			cfg:  &Config{Source: "/in", Export: "/out", Copy: true},
			want: "/in -> /out (copy)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.String(), "String() should match")
		})
	}
}
