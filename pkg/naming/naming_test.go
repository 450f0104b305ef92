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

package naming

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/stamprename/pkg/workitem"
)

func osExists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func TestFieldNamer(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		setup  func(*workitem.WorkItem)
		sep    string
		want   string
	}{
		{
			name: "default_labels",
			setup: func(w *workitem.WorkItem) {
				w.OrderNumber = "A100"
				w.Material = "PVC"
				w.Quantity = "20"
			},
			sep:  "_",
			want: "A100_PVC_20.pdf",
		},
		{
			name:   "custom_labels_and_separator",
			labels: []string{workitem.LabelMaterial, workitem.LabelOrderNumber},
			setup: func(w *workitem.WorkItem) {
				w.OrderNumber = "A100"
				w.Material = "PVC"
			},
			sep:  "-",
			want: "PVC-A100.pdf",
		},
		{
			name:  "falls_back_to_original_stem",
			setup: func(w *workitem.WorkItem) {},
			sep:   "_",
			want:  "drawing.pdf",
		},
		{
			name: "sanitizes_unsafe_characters",
			setup: func(w *workitem.WorkItem) {
				w.OrderNumber = "A/100"
				w.Material = "PVC?"
			},
			sep:  "_",
			want: "A-100_PVC-.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := workitem.New("drawing.pdf", "/in/drawing.pdf")
			tt.setup(item)
			assert.Equal(t, tt.want, FieldNamer(tt.labels)(item, tt.sep))
		})
	}
}

func TestWithReplacements(t *testing.T) {
	item := workitem.New("x.pdf", "/x.pdf")
	item.OrderNumber = "old-100"
	item.Material = "PVC"

	n := WithReplacements(FieldNamer(nil), []Replacement{{Old: "old", New: "new"}, {Old: "PVC", New: "pvc"}})
	assert.Equal(t, "new-100_pvc.pdf", n(item, "_"))

	s, count := ApplyReplacements("a.a.a", []Replacement{{Old: "a", New: "b"}, {Old: "", New: "x"}})
	assert.Equal(t, "b.b.b", s)
	assert.Equal(t, 3, count)

	require.Error(t, ValidateReplacements([]Replacement{{Old: ""}}))
	require.NoError(t, ValidateReplacements([]Replacement{{Old: "a"}}))
}

func TestNextFreeName(t *testing.T) {
	taken := map[string]bool{"name.txt": true, "name(1).txt": true}
	got, err := NextFreeName("name.txt", func(s string) (bool, error) { return taken[s], nil })
	require.NoError(t, err)
	assert.Equal(t, "name(2).txt", got)

	got, err = NextFreeName("free.txt", func(s string) (bool, error) { return taken[s], nil })
	require.NoError(t, err)
	assert.Equal(t, "free.txt", got)
}

func TestReserverExistingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "name.txt"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "name(1).txt"), []byte("b"), 0644))

	r := NewReserver(osExists)

	got, err := r.Reserve(context.Background(), dir, "name.txt")
	require.NoError(t, err)
	assert.Equal(t, "name(2).txt", got)

	// claimed names are not reused even though nothing was written yet
	got, err = r.Reserve(context.Background(), dir, "name.txt")
	require.NoError(t, err)
	assert.Equal(t, "name(3).txt", got)

	got, err = r.Reserve(context.Background(), dir, "other.txt")
	require.NoError(t, err)
	assert.Equal(t, "other.txt", got)
}

func TestReserverPassesContext(t *testing.T) {
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "run")

	var probed []string
	r := NewReserver(func(ctx context.Context, path string) (bool, error) {
		assert.Equal(t, "run", ctx.Value(ctxKey{}))
		probed = append(probed, filepath.Base(path))
		return filepath.Base(path) == "taken.pdf", nil
	})

	got, err := r.Reserve(ctx, "/export", "taken.pdf")
	require.NoError(t, err)
	assert.Equal(t, "taken(1).pdf", got)
	assert.Equal(t, []string{"taken.pdf", "taken(1).pdf"}, probed)
}

func TestReserverConcurrent(t *testing.T) {
	dir := t.TempDir()
	r := NewReserver(osExists)

	const workers = 32
	results := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name, err := r.Reserve(context.Background(), dir, "same.pdf")
			assert.NoError(t, err)
			results[i] = name
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, name := range results {
		assert.False(t, seen[name], "name %s handed out twice", name)
		seen[name] = true
	}
	assert.True(t, seen["same.pdf"])
	assert.True(t, seen["same(31).pdf"])
}
