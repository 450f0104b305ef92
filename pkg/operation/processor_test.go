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

package operation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/walteh/stamprename/pkg/naming"
	"github.com/walteh/stamprename/pkg/stamp"
	"github.com/walteh/stamprename/pkg/status"
	"github.com/walteh/stamprename/pkg/workitem"
	"gitlab.com/tozd/go/errors"
)

// 🔧 mockStamper is a mock implementation of stamp.Stamper
type mockStamper struct {
	mock.Mock
}

func (m *mockStamper) Stamp(ctx context.Context, sourcePath, destPath string, layer workitem.LayerDescriptor) error {
	return m.Called(ctx, sourcePath, destPath, layer).Error(0)
}

// 🔧 failingMoves wraps the real file manager and fails every move
type failingMoves struct {
	*status.Manager
}

func (f failingMoves) MoveFile(ctx context.Context, src, dst string) error {
	return errors.New("permission denied")
}

type testEnv struct {
	ctx    context.Context
	srcDir string
	export string
}

// 🧪 newTestEnv creates a source and export directory
func newTestEnv(t *testing.T) *testEnv {
	root := t.TempDir()
	env := &testEnv{
		ctx:    zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background()),
		srcDir: filepath.Join(root, "src"),
		export: filepath.Join(root, "export"),
	}
	require.NoError(t, os.MkdirAll(env.srcDir, 0755))
	return env
}

func (e *testEnv) item(t *testing.T, name, content string) *workitem.WorkItem {
	path := filepath.Join(e.srcDir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return workitem.New(name, path)
}

func readFile(t *testing.T, path string) string {
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func newProcessor(t *testing.T, files status.FileManager, stamper *mockStamper) *Processor {
	opts := Options{Files: files, Namer: naming.FieldNamer(nil)}
	if stamper != nil {
		opts.Stamper = stamper
	}
	p, err := NewProcessor(opts)
	require.NoError(t, err)
	return p
}

func TestNewProcessorValidation(t *testing.T) {
	_, err := NewProcessor(Options{Namer: naming.FieldNamer(nil)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file manager is required")

	_, err = NewProcessor(Options{Files: status.NewManager()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "namer is required")
}

func TestProcessMoveAndCopy(t *testing.T) {
	tests := []struct {
		name       string
		copyMode   bool
		wantSource bool
	}{
		{name: "move", copyMode: false, wantSource: false},
		{name: "copy", copyMode: true, wantSource: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			item := env.item(t, "drawing.pdf", "data")
			item.OrderNumber = "A100"

			p := newProcessor(t, status.NewManager(), nil)
			p.Process(env.ctx, item, Job{ExportPath: env.export, CopyMode: tt.copyMode, Separator: "_"})

			require.Equal(t, workitem.StatusSuccess, item.Status, item.ErrorMessage)
			assert.Equal(t, "A100.pdf", item.NewName)
			assert.Equal(t, filepath.Join(env.export, "A100.pdf"), item.DestPath)
			assert.Equal(t, "data", readFile(t, item.DestPath))

			_, err := os.Stat(item.FullPath)
			assert.Equal(t, tt.wantSource, err == nil)
		})
	}
}

func TestProcessMissingSource(t *testing.T) {
	env := newTestEnv(t)
	item := workitem.New("gone.pdf", filepath.Join(env.srcDir, "gone.pdf"))

	p := newProcessor(t, status.NewManager(), nil)
	p.Process(env.ctx, item, Job{ExportPath: env.export, Separator: "_"})

	assert.Equal(t, workitem.StatusFailed, item.Status)
	assert.Contains(t, item.ErrorMessage, "source file not found")
	assert.Empty(t, item.DestPath)
}

func TestProcessConflictSuffix(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.MkdirAll(env.export, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(env.export, "name.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(env.export, "name(1).txt"), []byte("y"), 0644))

	item := env.item(t, "name.txt", "new")

	p := newProcessor(t, status.NewManager(), nil)
	p.Process(env.ctx, item, Job{ExportPath: env.export, Separator: "_"})

	require.Equal(t, workitem.StatusSuccess, item.Status, item.ErrorMessage)
	assert.Equal(t, "name(2).txt", item.NewName)
	assert.Equal(t, "new", readFile(t, filepath.Join(env.export, "name(2).txt")))
	assert.Equal(t, "x", readFile(t, filepath.Join(env.export, "name.txt")))
}

func TestProcessStamping(t *testing.T) {
	tests := []struct {
		name        string
		copyMode    bool
		stampErr    error
		wantContent string
		wantSource  bool
	}{
		{name: "stamped_move", wantContent: "stamped", wantSource: false},
		{name: "stamped_copy_keeps_original", copyMode: true, wantContent: "stamped", wantSource: true},
		{name: "stamp_failure_is_not_fatal", stampErr: errors.New("no layer support"), wantContent: "original", wantSource: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			item := env.item(t, "plate.pdf", "original")
			item.OrderNumber = "A100"
			item.Material = "PVC"

			stamper := &mockStamper{}
			stamper.On("Stamp", mock.Anything, item.FullPath, mock.AnythingOfType("string"), mock.MatchedBy(func(l workitem.LayerDescriptor) bool {
				return l.Name == "PVC" && l.Text == "A100_PVC"
			})).Run(func(args mock.Arguments) {
				// the stamper writes its output even when it then reports failure
				require.NoError(t, os.WriteFile(args.String(2), []byte("stamped"), 0644))
			}).Return(tt.stampErr).Once()

			p := newProcessor(t, status.NewManager(), stamper)
			p.Process(env.ctx, item, Job{ExportPath: env.export, CopyMode: tt.copyMode, Separator: "_"})

			stamper.AssertExpectations(t)
			require.Equal(t, workitem.StatusSuccess, item.Status, item.ErrorMessage)
			assert.Equal(t, "A100_PVC.pdf", item.NewName)
			assert.Equal(t, tt.wantContent, readFile(t, item.DestPath))

			_, err := os.Stat(item.FullPath)
			assert.Equal(t, tt.wantSource, err == nil)
			if tt.wantSource {
				assert.Equal(t, "original", readFile(t, item.FullPath))
			}

			_, err = os.Stat(stampPath(item.FullPath))
			assert.True(t, os.IsNotExist(err), "stamp temp file must not be left behind")
		})
	}
}

func TestProcessNoopStamperExportsOriginal(t *testing.T) {
	env := newTestEnv(t)
	item := env.item(t, "plate.pdf", "original")
	item.OrderNumber = "A100"
	item.Material = "PVC"

	p, err := NewProcessor(Options{Files: status.NewManager(), Namer: naming.FieldNamer(nil), Stamper: stamp.Noop{}})
	require.NoError(t, err)
	p.Process(env.ctx, item, Job{ExportPath: env.export, Separator: "_"})

	require.Equal(t, workitem.StatusSuccess, item.Status, item.ErrorMessage)
	assert.Equal(t, "original", readFile(t, item.DestPath))
	assert.NoFileExists(t, item.FullPath)
	assert.NoFileExists(t, stampPath(item.FullPath))
}

func TestProcessSkipsStampingWithoutMaterial(t *testing.T) {
	env := newTestEnv(t)
	item := env.item(t, "plain.pdf", "data")

	stamper := &mockStamper{}
	p := newProcessor(t, status.NewManager(), stamper)
	p.Process(env.ctx, item, Job{ExportPath: env.export, Separator: "_"})

	require.Equal(t, workitem.StatusSuccess, item.Status)
	stamper.AssertNotCalled(t, "Stamp", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessFailures(t *testing.T) {
	tests := []struct {
		name    string
		files   status.FileManager
		namer   naming.Namer
		wantErr string
	}{
		{
			name:    "move_denied",
			files:   failingMoves{status.NewManager()},
			namer:   naming.FieldNamer(nil),
			wantErr: "moving file: permission denied",
		},
		{
			name:    "empty_name",
			files:   status.NewManager(),
			namer:   func(*workitem.WorkItem, string) string { return "  " },
			wantErr: "naming function returned an empty name",
		},
		{
			name:    "name_escapes_export",
			files:   status.NewManager(),
			namer:   func(*workitem.WorkItem, string) string { return "../escaped.pdf" },
			wantErr: "naming function returned a path, not a file name",
		},
		{
			name:    "name_with_subdirectory",
			files:   status.NewManager(),
			namer:   func(*workitem.WorkItem, string) string { return "sub/nested.pdf" },
			wantErr: "naming function returned a path, not a file name",
		},
		{
			name:    "name_is_parent_dir",
			files:   status.NewManager(),
			namer:   func(*workitem.WorkItem, string) string { return ".." },
			wantErr: "naming function returned a path, not a file name",
		},
		{
			name:    "namer_panics",
			files:   status.NewManager(),
			namer:   func(*workitem.WorkItem, string) string { panic("bad template") },
			wantErr: "unexpected panic: bad template",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			item := env.item(t, "a.pdf", "data")

			p, err := NewProcessor(Options{Files: tt.files, Namer: tt.namer})
			require.NoError(t, err)

			assert.NotPanics(t, func() {
				p.Process(env.ctx, item, Job{ExportPath: env.export, Separator: "_"})
			})
			assert.Equal(t, workitem.StatusFailed, item.Status)
			assert.Contains(t, item.ErrorMessage, tt.wantErr)

			assert.FileExists(t, item.FullPath)
			assert.NoFileExists(t, filepath.Join(filepath.Dir(env.export), "escaped.pdf"))
		})
	}
}

func TestProcessSharedReserver(t *testing.T) {
	env := newTestEnv(t)
	a := env.item(t, "a.pdf", "a")
	b := env.item(t, "b.pdf", "b")
	a.OrderNumber = "SAME"
	b.OrderNumber = "SAME"

	p := newProcessor(t, status.NewManager(), nil)
	job := Job{ExportPath: env.export, Separator: "_", CopyMode: true, Reserver: p.NewReserver()}
	p.Process(env.ctx, a, job)
	p.Process(env.ctx, b, job)

	assert.Equal(t, "SAME.pdf", a.NewName)
	assert.Equal(t, "SAME(1).pdf", b.NewName)
}
