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

package batch

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/walteh/stamprename/pkg/naming"
	"github.com/walteh/stamprename/pkg/operation"
	"github.com/walteh/stamprename/pkg/stamp"
	"github.com/walteh/stamprename/pkg/status"
	"github.com/walteh/stamprename/pkg/workitem"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBatchSize      = 10
	DefaultMaxParallelism = 4
)

// ErrRunInProgress is returned when Run is called while another run is active
var ErrRunInProgress = errors.Base("a batch run is already in progress")

// 🚦 State is the lifecycle state of the coordinator's current or last run
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateCompleted
	StateCanceled
)

// String returns a string representation of State
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCanceled:
		return "canceled"
	default:
		return "not_started"
	}
}

// 🔧 Options contains the collaborators injected at construction
type Options struct {
	// Files performs all file system access
	Files status.FileManager
	// Namer computes destination names
	Namer naming.Namer
	// Stamper adds metadata layers; nil disables stamping
	Stamper stamp.Stamper
	// Logger overrides the context logger for runs
	Logger *zerolog.Logger

	Progress   []ProgressSink
	Completion []CompletionSink
}

// 📋 RunOptions are the per-run settings
type RunOptions struct {
	ExportPath     string
	CopyMode       bool
	BatchSize      int
	MaxParallelism int
	Separator      string
}

func (o RunOptions) withDefaults() RunOptions {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.MaxParallelism <= 0 {
		o.MaxParallelism = DefaultMaxParallelism
	}
	if o.Separator == "" {
		o.Separator = naming.DefaultSeparator
	}
	return o
}

// 🎮 Coordinator runs batches of work items. One run may be active at a time.
type Coordinator struct {
	files      status.FileManager
	processor  *operation.Processor
	logger     *zerolog.Logger
	progress   []ProgressSink
	completion []CompletionSink

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
}

// 🏭 New creates a coordinator with the given options
func New(opts Options) (*Coordinator, error) {
	processor, err := operation.NewProcessor(operation.Options{
		Files:   opts.Files,
		Namer:   opts.Namer,
		Stamper: opts.Stamper,
	})
	if err != nil {
		return nil, errors.Errorf("creating processor: %w", err)
	}
	return &Coordinator{
		files:      opts.Files,
		processor:  processor,
		logger:     opts.Logger,
		progress:   opts.Progress,
		completion: opts.Completion,
	}, nil
}

// State returns the state of the current or most recent run
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// 🛑 Cancel signals the active run to stop admitting items. It is idempotent
// and does nothing when no run is active.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRunning || c.cancel == nil {
		return
	}
	c.cancel()
}

// ⚡ Start runs the batch in the background. The returned channel yields the
// outcome once and is then closed.
func (c *Coordinator) Start(ctx context.Context, items []*workitem.WorkItem, opts RunOptions) <-chan *workitem.Outcome {
	done := make(chan *workitem.Outcome, 1)
	go func() {
		defer close(done)
		outcome, _ := c.Run(ctx, items, opts)
		done <- outcome
	}()
	return done
}

func (c *Coordinator) begin(cancel context.CancelFunc) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateRunning {
		return false
	}
	c.state = StateRunning
	c.cancel = cancel
	return true
}

// finish records the terminal state and then publishes the outcome exactly once
func (c *Coordinator) finish(ctx context.Context, outcome *workitem.Outcome, state State, start time.Time) {
	outcome.Duration = time.Since(start)

	c.mu.Lock()
	c.state = state
	c.cancel = nil
	c.mu.Unlock()

	for _, sink := range c.completion {
		notify(ctx, "completion", func() { sink.OnComplete(ctx, outcome) })
	}
}

// 🏃 Run processes items and blocks until the run completes or is canceled.
//
// The returned outcome is never nil. The error is non-nil only when the run
// could not process items at all: another run is active (no events are
// published) or the export directory could not be prepared (the completion
// event carries the same error in Outcome.SetupErr).
func (c *Coordinator) Run(ctx context.Context, items []*workitem.WorkItem, opts RunOptions) (*workitem.Outcome, error) {
	opts = opts.withDefaults()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if !c.begin(cancel) {
		return &workitem.Outcome{TotalCount: len(items), SetupErr: ErrRunInProgress}, ErrRunInProgress
	}

	start := time.Now()
	outcome := &workitem.Outcome{
		RunID:      ulid.Make().String(),
		TotalCount: len(items),
	}

	logger := zerolog.Ctx(ctx)
	if c.logger != nil {
		logger = c.logger
	}
	runLogger := logger.With().Str("run_id", outcome.RunID).Logger()
	ctx = runLogger.WithContext(ctx)

	runLogger.Info().
		Int("items", len(items)).
		Str("export", opts.ExportPath).
		Bool("copy", opts.CopyMode).
		Int("batch_size", opts.BatchSize).
		Int("max_parallelism", opts.MaxParallelism).
		Msg("starting batch run")

	if len(items) == 0 {
		c.finish(ctx, outcome, StateCompleted, start)
		runLogger.Info().Msg("nothing to process")
		return outcome, nil
	}

	if err := c.prepareExport(ctx, opts.ExportPath); err != nil {
		outcome.SetupErr = err
		runLogger.Error().Err(err).Msg("batch run aborted")
		c.finish(ctx, outcome, StateCompleted, start)
		return outcome, err
	}

	for _, item := range items {
		item.Status = workitem.StatusPending
		item.ErrorMessage = ""
	}

	canceled := c.runBatches(ctx, runCtx, items, opts, outcome)

	state := StateCompleted
	if canceled {
		state = StateCanceled
		outcome.IsCanceled = true
	}

	runLogger.Info().
		Int("succeeded", outcome.SuccessCount).
		Int("failed", outcome.FailedCount).
		Bool("canceled", outcome.IsCanceled).
		Dur("duration", time.Since(start)).
		Msg("batch run finished")

	c.finish(ctx, outcome, state, start)
	return outcome, nil
}

// prepareExport creates the export directory once, before any worker starts
func (c *Coordinator) prepareExport(ctx context.Context, path string) error {
	if path == "" {
		return errors.Errorf("export path is required")
	}
	if err := c.files.CreateDir(ctx, path); err != nil {
		return errors.Errorf("preparing export directory %s: %w", path, err)
	}
	return nil
}

// runBatches schedules every batch in order and reports whether an admission
// check observed cancellation.
func (c *Coordinator) runBatches(ctx, runCtx context.Context, items []*workitem.WorkItem, opts RunOptions, outcome *workitem.Outcome) bool {
	logger := zerolog.Ctx(ctx)

	agg := &aggregate{outcome: outcome, sinks: c.progress}
	job := operation.Job{
		ExportPath: opts.ExportPath,
		CopyMode:   opts.CopyMode,
		Separator:  opts.Separator,
		Reserver:   c.processor.NewReserver(),
	}

	// in-flight items run to completion even after cancellation
	workCtx := context.WithoutCancel(ctx)

	var stopped sync.Once
	canceled := false
	admit := func() bool {
		if runCtx.Err() == nil {
			return true
		}
		stopped.Do(func() {
			canceled = true
			logger.Warn().Msg("cancellation requested, no new items will start")
		})
		return false
	}

	total := len(items)
	batches := (total + opts.BatchSize - 1) / opts.BatchSize

	for b := 0; b < batches; b++ {
		if !admit() {
			break
		}

		lo := b * opts.BatchSize
		hi := min(lo+opts.BatchSize, total)

		logger.Debug().
			Int("batch", b+1).
			Int("batches", batches).
			Int("size", hi-lo).
			Msg("starting batch")

		var g errgroup.Group
		g.SetLimit(opts.MaxParallelism)

		for _, item := range items[lo:hi] {
			if !admit() {
				break
			}
			g.Go(func() error {
				// a slot may free up only after cancellation
				if !admit() {
					return nil
				}
				c.processor.Process(workCtx, item, job)
				agg.complete(ctx, item)
				return nil
			})
		}

		// batch-drain barrier
		_ = g.Wait()
	}

	// admit is only called from goroutines that have all returned by now
	return canceled
}

// 🧮 aggregate guards the shared counters and delivers progress in count order
type aggregate struct {
	mu      sync.Mutex
	outcome *workitem.Outcome
	count   int
	sinks   []ProgressSink
}

func (a *aggregate) complete(ctx context.Context, item *workitem.WorkItem) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if item.Status == workitem.StatusSuccess {
		a.outcome.SuccessCount++
	} else {
		if item.Status != workitem.StatusFailed {
			item.MarkFailed("item finished without a terminal status")
		}
		a.outcome.FailedCount++
		a.outcome.FailedItems = append(a.outcome.FailedItems, item)
	}
	a.count++

	ev := workitem.ProgressEvent{
		CurrentCount: a.count,
		TotalCount:   a.outcome.TotalCount,
		CurrentItem:  item,
	}
	for _, sink := range a.sinks {
		notify(ctx, "progress", func() { sink.OnProgress(ctx, ev) })
	}
}
