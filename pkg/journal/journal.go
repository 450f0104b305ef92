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

// Package journal records the file moves of each run so they can be undone.
package journal

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/walteh/stamprename/pkg/workitem"
	"gitlab.com/tozd/go/errors"
)

const (
	// FileName is the journal file written inside the export directory
	FileName      = ".stamprename-journal.json"
	SchemaVersion = "1.0.0"

	// StaleLockAge is how old a lock file must be before it is treated as abandoned
	StaleLockAge = time.Minute
)

// 📄 File is the on-disk journal format
type File struct {
	SchemaVersion string    `json:"schema_version"`
	LastUpdated   time.Time `json:"last_updated"`
	Runs          []Run     `json:"runs"`
}

// 🏃 Run is the set of exports performed by one batch run
type Run struct {
	RunID       string    `json:"run_id"`
	CompletedAt time.Time `json:"completed_at"`
	Canceled    bool      `json:"canceled"`
	Entries     []Entry   `json:"entries"`
}

// 📝 Entry is one successful export
type Entry struct {
	ID          string `json:"id"`
	Source      string `json:"source"`      // original location
	Destination string `json:"destination"` // exported location
	Copied      bool   `json:"copied"`      // source was left in place
}

// Path returns the journal path for an export directory
func Path(exportDir string) string {
	return filepath.Join(exportDir, FileName)
}

// 🔒 Journal collects successful items during a run and persists them when the run completes
type Journal struct {
	mu       sync.Mutex
	path     string
	copyMode bool
	entries  []Entry
	err      error
}

// 🏭 New creates a journal for a run exporting into exportDir
func New(exportDir string, copyMode bool) *Journal {
	return &Journal{
		path:     Path(exportDir),
		copyMode: copyMode,
	}
}

// OnProgress records successful items
func (j *Journal) OnProgress(ctx context.Context, ev workitem.ProgressEvent) {
	item := ev.CurrentItem
	if item == nil || item.Status != workitem.StatusSuccess {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, Entry{
		ID:          ulid.Make().String(),
		Source:      item.FullPath,
		Destination: item.DestPath,
		Copied:      j.copyMode,
	})
}

// OnComplete appends the run to the journal file. Runs without successful
// items leave the file untouched.
func (j *Journal) OnComplete(ctx context.Context, o *workitem.Outcome) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if len(j.entries) == 0 {
		return
	}

	run := Run{
		RunID:       o.RunID,
		CompletedAt: time.Now(),
		Canceled:    o.IsCanceled,
		Entries:     j.entries,
	}

	if err := update(ctx, j.path, func(f *File) error {
		f.Runs = append(f.Runs, run)
		return nil
	}); err != nil {
		j.err = err
		zerolog.Ctx(ctx).Error().Err(err).Str("path", j.path).Msg("writing journal")
		return
	}

	zerolog.Ctx(ctx).Debug().Str("path", j.path).Int("entries", len(run.Entries)).Msg("journal written")
	j.entries = nil
}

// Err returns the error of the last journal write, if any
func (j *Journal) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Load reads a journal file. A missing file yields an empty journal.
func Load(ctx context.Context, path string) (*File, error) {
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("loading journal")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{SchemaVersion: SchemaVersion}, nil
		}
		return nil, errors.Errorf("reading journal file: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Errorf("parsing journal file: %w", err)
	}
	if f.SchemaVersion != SchemaVersion {
		return nil, errors.Errorf("unsupported journal schema version %q", f.SchemaVersion)
	}
	return &f, nil
}

// save writes the journal atomically through a temp file
func save(path string, f *File) error {
	f.SchemaVersion = SchemaVersion
	f.LastUpdated = time.Now()

	data, err := json.MarshalIndent(f, "", "\t")
	if err != nil {
		return errors.Errorf("marshaling journal: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Errorf("writing journal file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Errorf("replacing journal file: %w", err)
	}
	return nil
}

// acquireLock creates the lock file exclusively. A lock older than
// StaleLockAge was left by a process that died mid-update and is replaced.
func acquireLock(ctx context.Context, lockPath string) (*os.File, error) {
	lock, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err == nil {
		return lock, nil
	}
	if !os.IsExist(err) {
		return nil, errors.Errorf("creating lock file: %w", err)
	}

	info, statErr := os.Stat(lockPath)
	if statErr != nil || time.Since(info.ModTime()) < StaleLockAge {
		return nil, errors.Errorf("creating lock file: journal is locked by another process (remove %s if none is running): %w", lockPath, err)
	}

	zerolog.Ctx(ctx).Warn().
		Str("lock", lockPath).
		Time("modified", info.ModTime()).
		Msg("removing stale journal lock")

	if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
		return nil, errors.Errorf("removing stale lock file: %w", err)
	}
	lock, err = os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return nil, errors.Errorf("creating lock file: %w", err)
	}
	return lock, nil
}

// update loads, modifies, and saves the journal while holding its lock file.
// An empty journal after fn removes the file.
func update(ctx context.Context, path string, fn func(*File) error) error {
	lockPath := path + ".lock"
	lock, err := acquireLock(ctx, lockPath)
	if err != nil {
		return err
	}
	defer func() {
		lock.Close()
		os.Remove(lockPath)
	}()

	f, err := Load(ctx, path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		return err
	}

	if len(f.Runs) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return errors.Errorf("removing empty journal: %w", err)
		}
		return nil
	}
	return save(path, f)
}

// ↩️ UndoResult summarizes one undo
type UndoResult struct {
	RunID    string
	Restored int
	Failed   []Entry
}
