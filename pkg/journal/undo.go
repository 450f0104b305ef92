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

package journal

import (
	"context"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/walteh/stamprename/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// ErrNothingToUndo is returned when the journal holds no runs
var ErrNothingToUndo = errors.Base("journal has no runs to undo")

// ↩️ Undo reverts the most recent run recorded in the export directory's journal.
// Moved files go back to their source; copies are deleted. Entries that fail
// stay in the journal so a later undo can retry them, and their errors are
// aggregated into the returned error.
func Undo(ctx context.Context, exportDir string, files status.FileManager) (*UndoResult, error) {
	logger := zerolog.Ctx(ctx)
	result := &UndoResult{}
	var errs *multierror.Error

	err := update(ctx, Path(exportDir), func(f *File) error {
		if len(f.Runs) == 0 {
			return ErrNothingToUndo
		}
		last := len(f.Runs) - 1
		run := f.Runs[last]
		result.RunID = run.RunID

		// newest first so chained renames unwind in order
		for i := len(run.Entries) - 1; i >= 0; i-- {
			e := run.Entries[i]
			if err := revert(ctx, files, e); err != nil {
				logger.Warn().Err(err).Str("destination", e.Destination).Msg("undo failed for entry")
				errs = multierror.Append(errs, err)
				result.Failed = append([]Entry{e}, result.Failed...)
				continue
			}
			logger.Debug().Str("source", e.Source).Str("destination", e.Destination).Msg("entry reverted")
			result.Restored++
		}

		if len(result.Failed) == 0 {
			f.Runs = f.Runs[:last]
		} else {
			f.Runs[last].Entries = result.Failed
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNothingToUndo) {
			return nil, err
		}
		return nil, errors.Errorf("updating journal: %w", err)
	}

	logger.Info().Str("run_id", result.RunID).Int("restored", result.Restored).Int("failed", len(result.Failed)).Msg("undo finished")
	if err := errs.ErrorOrNil(); err != nil {
		return result, errors.Errorf("undoing run %s: %w", result.RunID, err)
	}
	return result, nil
}

func revert(ctx context.Context, files status.FileManager, e Entry) error {
	exists, err := files.FileExists(ctx, e.Destination)
	if err != nil {
		return err
	}
	if !exists {
		return errors.Errorf("exported file missing: %s", e.Destination)
	}

	if e.Copied {
		if err := files.DeleteFile(ctx, e.Destination); err != nil {
			return errors.Errorf("deleting copy %s: %w", e.Destination, err)
		}
		return nil
	}

	occupied, err := files.FileExists(ctx, e.Source)
	if err != nil {
		return err
	}
	if occupied {
		return errors.Errorf("source path is occupied: %s", e.Source)
	}
	if err := files.CreateDir(ctx, filepath.Dir(e.Source)); err != nil {
		return errors.Errorf("recreating source directory: %w", err)
	}
	if err := files.MoveFile(ctx, e.Destination, e.Source); err != nil {
		return errors.Errorf("moving %s back: %w", e.Destination, err)
	}
	return nil
}
