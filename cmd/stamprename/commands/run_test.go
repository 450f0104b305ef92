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

package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/stamprename/cmd/stamprename/opts"
	"github.com/walteh/stamprename/pkg/journal"
)

type cliEnv struct {
	ctx     context.Context
	src     string
	export  string
	config  string
	console *bytes.Buffer
	opts    *opts.RootOpts
}

func setupCLI(t *testing.T, files ...string) *cliEnv {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	root := t.TempDir()
	env := &cliEnv{
		ctx:     zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background()),
		src:     filepath.Join(root, "src"),
		export:  filepath.Join(root, "export"),
		config:  filepath.Join(root, "run.yaml"),
		console: &bytes.Buffer{},
	}
	require.NoError(t, os.MkdirAll(env.src, 0755))
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(env.src, f), []byte(f), 0644))
	}

	cfg := `
source: src
export: export
regex: "^W-(?P<order_number>\\d+)"
defaults:
  Material: PVC
naming:
  fields: ["Order Number", "Material", "Quantity"]
journal: true
`
	require.NoError(t, os.WriteFile(env.config, []byte(cfg), 0644))

	env.opts = &opts.RootOpts{ConfigFile: env.config, Console: env.console}
	return env
}

func TestRunAndUndo(t *testing.T) {
	env := setupCLI(t, "W-1 plate&Q20.pdf", "W-2 bracket&Q5.pdf")

	run := NewRunCmd(env.opts)
	run.SetArgs([]string{})
	require.NoError(t, run.ExecuteContext(env.ctx))

	assert.FileExists(t, filepath.Join(env.export, "1_PVC_20.pdf"))
	assert.FileExists(t, filepath.Join(env.export, "2_PVC_5.pdf"))
	assert.NoFileExists(t, filepath.Join(env.src, "W-1 plate&Q20.pdf"))
	assert.FileExists(t, journal.Path(env.export))
	assert.Contains(t, env.console.String(), "2 files renamed")

	undo := NewUndoCmd(env.opts)
	undo.SetArgs([]string{env.export})
	require.NoError(t, undo.ExecuteContext(env.ctx))

	assert.FileExists(t, filepath.Join(env.src, "W-1 plate&Q20.pdf"))
	assert.FileExists(t, filepath.Join(env.src, "W-2 bracket&Q5.pdf"))
	assert.NoFileExists(t, filepath.Join(env.export, "1_PVC_20.pdf"))
	assert.Contains(t, env.console.String(), "2 files restored")
}

func TestRunPreserveKeepsTokenFields(t *testing.T) {
	tests := []struct {
		name     string
		preserve bool
		want     []string
	}{
		{
			name:     "overrides_replace_fields",
			preserve: false,
			want:     []string{"1_STEEL_1.pdf", "2_STEEL_1.pdf"},
		},
		{
			name:     "preserved_quantity_survives_override",
			preserve: true,
			want:     []string{"1_STEEL_20.pdf", "2_STEEL_1.pdf"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupCLI(t, "W-1 plate&Q20.pdf", "W-2 bracket.pdf")

			cfg := fmt.Sprintf(`
source: src
export: export
regex: "^W-(?P<order_number>\\d+)"
overrides:
  Material: STEEL
  Quantity: "1"
naming:
  fields: ["Order Number", "Material", "Quantity"]
preserve:
  enabled: %t
  groups:
    - name: counts
      fields: ["Quantity"]
      preserved: true
`, tt.preserve)
			require.NoError(t, os.WriteFile(env.config, []byte(cfg), 0644))

			run := NewRunCmd(env.opts)
			run.SetArgs([]string{})
			require.NoError(t, run.ExecuteContext(env.ctx))

			for _, name := range tt.want {
				assert.FileExists(t, filepath.Join(env.export, name))
			}
		})
	}
}

func TestRunFlagsOverrideConfig(t *testing.T) {
	env := setupCLI(t, "W-7 plate&Q1.pdf")
	other := filepath.Join(t.TempDir(), "elsewhere")

	run := NewRunCmd(env.opts)
	run.SetArgs([]string{"--copy", "--export", other, "--batch-size", "1", "--parallel", "1", "--journal=false"})
	require.NoError(t, run.ExecuteContext(env.ctx))

	assert.FileExists(t, filepath.Join(other, "7_PVC_1.pdf"))
	assert.FileExists(t, filepath.Join(env.src, "W-7 plate&Q1.pdf"), "copy keeps the source")
	assert.NoFileExists(t, journal.Path(other))
}

func TestRunResolvesConflicts(t *testing.T) {
	env := setupCLI(t, "W-3 a&Q2.pdf", "W-3 b&Q2.pdf")

	run := NewRunCmd(env.opts)
	run.SetArgs([]string{})
	require.NoError(t, run.ExecuteContext(env.ctx))

	assert.FileExists(t, filepath.Join(env.export, "3_PVC_2.pdf"))
	assert.FileExists(t, filepath.Join(env.export, "3_PVC_2(1).pdf"))
}

func TestRunValidation(t *testing.T) {
	env := setupCLI(t)
	env.opts.ConfigFile = ""

	run := NewRunCmd(env.opts)
	run.SilenceUsage = true
	run.SetArgs([]string{})
	err := run.ExecuteContext(env.ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source is required")
}

func TestUndoWithoutJournal(t *testing.T) {
	env := setupCLI(t)
	require.NoError(t, os.MkdirAll(env.export, 0755))

	undo := NewUndoCmd(env.opts)
	undo.SilenceUsage = true
	undo.SetArgs([]string{env.export})
	err := undo.ExecuteContext(env.ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, journal.ErrNothingToUndo)
}
