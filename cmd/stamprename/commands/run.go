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
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/stamprename/cmd/stamprename/opts"
	"github.com/walteh/stamprename/pkg/batch"
	"github.com/walteh/stamprename/pkg/config"
	"github.com/walteh/stamprename/pkg/journal"
	"github.com/walteh/stamprename/pkg/naming"
	"github.com/walteh/stamprename/pkg/preserve"
	"github.com/walteh/stamprename/pkg/scan"
	"github.com/walteh/stamprename/pkg/stamp"
	"github.com/walteh/stamprename/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// runFlags are the command line overrides for a config file
type runFlags struct {
	export    string
	copy      bool
	batchSize int
	parallel  int
	progress  bool
	journal   bool
}

// apply copies every flag the user set onto cfg
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config, args []string) {
	if len(args) > 0 {
		cfg.Source = args[0]
	}
	flags := cmd.Flags()
	if flags.Changed("export") {
		cfg.Export = f.export
	}
	if flags.Changed("copy") {
		cfg.Copy = f.copy
	}
	if flags.Changed("batch-size") {
		cfg.BatchSize = f.batchSize
	}
	if flags.Changed("parallel") {
		cfg.MaxParallelism = f.parallel
	}
	if flags.Changed("journal") {
		cfg.Journal = f.journal
	}
}

// 🏃 NewRunCmd creates the run command
func NewRunCmd(o *opts.RootOpts) *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run [source]",
		Short: "Rename, stamp, and export the files of a source directory",
		Long: `Run scans the source directory, derives each file's fields from its name,
and exports it under a name built from those fields.
It will:
1. Scan the source directory with the include and ignore globs
2. Apply field overrides, keeping preserved fields when preserve mode is enabled
3. Process files in batches with bounded parallelism
4. Report each file and print a summary
5. Record a journal for undo when enabled`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := zerolog.Ctx(ctx)

			cfg, err := o.LoadConfig(ctx)
			if err != nil {
				return err
			}
			f.apply(cmd, cfg, args)
			if err := cfg.Validate(); err != nil {
				return errors.Errorf("validating config: %w", err)
			}

			tokens := preserve.NewManager(cfg.Preserve.TokenMarkers)
			items, err := scan.Scan(ctx, scan.Options{
				Source:   cfg.Source,
				Include:  cfg.Include,
				Ignore:   cfg.Ignore,
				Exclude:  []string{cfg.Export},
				Regex:    cfg.Regex,
				Defaults: cfg.Defaults,
				Tokens:   tokens,
			})
			if err != nil {
				return errors.Errorf("scanning source: %w", err)
			}

			// Overrides replace scanned fields; preserved fields get their backup back
			if cfg.Preserve.Enabled {
				tokens.Apply(ctx, items, cfg.Preserve.Groups)
			}
			scan.Override(ctx, items, cfg.Overrides)
			if cfg.Preserve.Enabled {
				tokens.Restore(ctx, items)
			}

			var stamper stamp.Stamper = stamp.Noop{}
			if cfg.Stamp != nil {
				cs, err := stamp.NewCommandStamper(cfg.Stamp.Command)
				if err != nil {
					return errors.Errorf("creating stamper: %w", err)
				}
				stamper = cs
			}

			// Structured per-item records only in debug mode; the console covers the rest
			reportLogger := logger.Level(zerolog.WarnLevel)
			if o.Debug {
				reportLogger = logger.Level(zerolog.DebugLevel)
			}
			reporter := status.NewReporter(&reportLogger, status.NewDefaultFileFormatter())

			console := o.NewConsole()
			progress := []batch.ProgressSink{reporter}
			completion := []batch.CompletionSink{reporter}

			if f.progress {
				bar := newProgressBar(len(items))
				progress = append(progress, bar)
				completion = append(completion, bar)
			} else {
				progress = append(progress, console)
			}
			completion = append(completion, console)

			var jrnl *journal.Journal
			if cfg.Journal {
				jrnl = journal.New(cfg.Export, cfg.Copy)
				progress = append(progress, jrnl)
				completion = append(completion, jrnl)
			}

			coord, err := batch.New(batch.Options{
				Files:      status.NewManager(),
				Namer:      naming.WithReplacements(naming.FieldNamer(cfg.Naming.Fields), cfg.Naming.Replacements),
				Stamper:    stamper,
				Progress:   progress,
				Completion: completion,
			})
			if err != nil {
				return errors.Errorf("creating coordinator: %w", err)
			}

			console.StartRun(ctx, consoleRun(cfg, len(items)))

			outcome, err := coord.Run(ctx, items, batch.RunOptions{
				ExportPath:     cfg.Export,
				CopyMode:       cfg.Copy,
				BatchSize:      cfg.BatchSize,
				MaxParallelism: cfg.MaxParallelism,
				Separator:      cfg.Separator,
			})
			if err != nil {
				return errors.Errorf("running batch: %w", err)
			}

			if len(outcome.FailedItems) > 0 {
				if err := renderFailures(outcome); err != nil {
					logger.Debug().Err(err).Msg("rendering failure table")
				}
			}
			if jrnl != nil && jrnl.Err() != nil {
				console.Warningf("journal not written, undo is unavailable for this run: %v", jrnl.Err())
			}

			if outcome.IsCanceled {
				return errors.Errorf("run canceled after %d of %d files", outcome.Processed(), outcome.TotalCount)
			}
			if outcome.FailedCount > 0 {
				return errors.Errorf("%d of %d files failed", outcome.FailedCount, outcome.TotalCount)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&f.export, "export", "e", "", "export directory")
	cmd.Flags().BoolVar(&f.copy, "copy", false, "copy files instead of moving them")
	cmd.Flags().IntVar(&f.batchSize, "batch-size", config.DefaultBatchSize, "files per batch")
	cmd.Flags().IntVarP(&f.parallel, "parallel", "p", config.DefaultMaxParallelism, "files processed at once within a batch")
	cmd.Flags().BoolVar(&f.progress, "progress", false, "show a progress bar instead of per-file lines")
	cmd.Flags().BoolVar(&f.journal, "journal", false, "record a journal in the export directory for undo")

	return cmd
}
