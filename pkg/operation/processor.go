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
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/stamprename/pkg/naming"
	"github.com/walteh/stamprename/pkg/stamp"
	"github.com/walteh/stamprename/pkg/status"
	"github.com/walteh/stamprename/pkg/workitem"
	"gitlab.com/tozd/go/errors"
)

// 🔧 Options contains the collaborators of a processor
type Options struct {
	// Files performs all file system access
	Files status.FileManager
	// Namer computes destination names
	Namer naming.Namer
	// Stamper adds the metadata layer; nil disables stamping
	Stamper stamp.Stamper
}

// 📋 Job holds the per-run settings shared by every item
type Job struct {
	ExportPath string
	CopyMode   bool
	Separator  string
	// Reserver resolves name conflicts for the run. When nil the processor's own is used.
	Reserver *naming.Reserver
}

// 🏃 Processor executes one work item end to end
type Processor struct {
	files    status.FileManager
	namer    naming.Namer
	stamper  stamp.Stamper
	reserver *naming.Reserver
}

// 🏭 NewProcessor creates a processor with the given options
func NewProcessor(opts Options) (*Processor, error) {
	if opts.Files == nil {
		return nil, errors.Errorf("file manager is required")
	}
	if opts.Namer == nil {
		return nil, errors.Errorf("namer is required")
	}
	p := &Processor{
		files:   opts.Files,
		namer:   opts.Namer,
		stamper: opts.Stamper,
	}
	p.reserver = p.NewReserver()
	return p, nil
}

// NewReserver returns a conflict reserver backed by the processor's file manager
func (p *Processor) NewReserver() *naming.Reserver {
	return naming.NewReserver(p.files.FileExists)
}

// 📄 Process runs item to a terminal Success or Failed state. It never panics
// and never returns an error: failures are recorded on the item.
func (p *Processor) Process(ctx context.Context, item *workitem.WorkItem, job Job) {
	logger := zerolog.Ctx(ctx).With().Str("file", item.OriginalName).Logger()

	defer func() {
		if r := recover(); r != nil {
			item.MarkFailed(fmt.Sprintf("unexpected panic: %v", r))
			logger.Error().Interface("panic", r).Msg("item processing panicked")
		}
	}()

	if err := p.process(ctx, &logger, item, job); err != nil {
		item.MarkFailed(err.Error())
		logger.Error().Err(err).Msg("item failed")
		return
	}

	logger.Debug().Str("destination", item.DestPath).Msg("item processed")
}

func (p *Processor) process(ctx context.Context, logger *zerolog.Logger, item *workitem.WorkItem, job Job) error {
	// Verify source
	exists, err := p.files.FileExists(ctx, item.FullPath)
	if err != nil {
		return errors.Errorf("checking source file: %w", err)
	}
	if !exists {
		return errors.Errorf("source file not found: %s", item.FullPath)
	}

	// Stamp the layer when a material is set
	payload := item.FullPath
	if item.Material != "" {
		payload = p.stampLayer(ctx, logger, item, job.Separator)
	}
	stamped := payload != item.FullPath

	// Resolve destination name
	name := strings.TrimSpace(p.namer(item, job.Separator))
	if name == "" {
		p.discard(ctx, logger, payload, stamped)
		return errors.Errorf("naming function returned an empty name")
	}
	if name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		p.discard(ctx, logger, payload, stamped)
		return errors.Errorf("naming function returned a path, not a file name: %q", name)
	}

	reserver := job.Reserver
	if reserver == nil {
		reserver = p.reserver
	}
	resolved, err := reserver.Reserve(ctx, job.ExportPath, name)
	if err != nil {
		p.discard(ctx, logger, payload, stamped)
		return errors.Errorf("reserving destination name: %w", err)
	}
	item.NewName = resolved
	if resolved != name {
		logger.Debug().Str("requested", name).Str("resolved", resolved).Msg("destination name conflict resolved")
	}

	// Export
	if err := p.files.CreateDir(ctx, job.ExportPath); err != nil {
		p.discard(ctx, logger, payload, stamped)
		return errors.Errorf("creating export directory: %w", err)
	}
	dest := filepath.Join(job.ExportPath, resolved)

	switch {
	case stamped:
		if err := p.files.MoveFile(ctx, payload, dest); err != nil {
			p.discard(ctx, logger, payload, stamped)
			return errors.Errorf("exporting stamped file: %w", err)
		}
		if !job.CopyMode {
			if err := p.files.DeleteFile(ctx, item.FullPath); err != nil {
				logger.Warn().Err(err).Msg("stamped file exported but source could not be removed")
			}
		}
	case job.CopyMode:
		if err := p.files.CopyFile(ctx, item.FullPath, dest); err != nil {
			return errors.Errorf("copying file: %w", err)
		}
	default:
		if err := p.files.MoveFile(ctx, item.FullPath, dest); err != nil {
			return errors.Errorf("moving file: %w", err)
		}
	}

	item.MarkSuccess(dest)
	return nil
}

// stampLayer writes a stamped copy beside the source and returns its path, or
// the source path when stamping is disabled or fails.
func (p *Processor) stampLayer(ctx context.Context, logger *zerolog.Logger, item *workitem.WorkItem, sep string) string {
	if p.stamper == nil {
		return item.FullPath
	}

	tmp := stampPath(item.FullPath)
	layer := workitem.DescribeLayer(item, sep)

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = errors.Errorf("stamper panicked: %v", r)
			}
		}()
		return p.stamper.Stamp(ctx, item.FullPath, tmp, layer)
	}()
	if err != nil {
		logger.Warn().Err(err).Str("layer", layer.Name).Msg("layer stamping failed, continuing without layer")
		p.discard(ctx, logger, tmp, true)
		return item.FullPath
	}

	ok, err := p.files.FileExists(ctx, tmp)
	if err != nil {
		logger.Warn().Err(err).Str("layer", layer.Name).Msg("checking stamped file")
		return item.FullPath
	}
	if !ok {
		logger.Debug().Str("layer", layer.Name).Msg("stamper wrote no file, exporting original")
		return item.FullPath
	}

	logger.Debug().Str("layer", layer.Name).Msg("layer stamped")
	return tmp
}

// discard removes a stamped temp file; the source itself is never touched
func (p *Processor) discard(ctx context.Context, logger *zerolog.Logger, path string, stamped bool) {
	if !stamped {
		return
	}
	if ok, _ := p.files.FileExists(ctx, path); !ok {
		return
	}
	if err := p.files.DeleteFile(ctx, path); err != nil {
		logger.Debug().Err(err).Str("path", path).Msg("removing stamp temp file")
	}
}

// stampPath is the hidden temp file a stamper writes next to the source
func stampPath(src string) string {
	return filepath.Join(filepath.Dir(src), "."+filepath.Base(src)+".stamp.tmp")
}
