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

package status

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/stamprename/pkg/workitem"
	"gitlab.com/tozd/go/errors"
)

// 📈 Reporter tracks item outcomes and reports progress. It satisfies the
// batch progress and completion sink contracts.
type Reporter struct {
	logger    *zerolog.Logger
	formatter FileFormatter

	mu        sync.RWMutex
	files     map[string]workitem.Status
	processed int
	total     int
}

// 🏭 NewReporter creates a reporter that writes to logger
func NewReporter(logger *zerolog.Logger, formatter FileFormatter) *Reporter {
	if formatter == nil {
		formatter = NewDefaultFileFormatter()
	}
	return &Reporter{
		logger:    logger,
		formatter: formatter,
		files:     make(map[string]workitem.Status),
	}
}

// OnProgress records the completed item and logs the running count
func (r *Reporter) OnProgress(ctx context.Context, ev workitem.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.processed = ev.CurrentCount
	r.total = ev.TotalCount

	level := zerolog.InfoLevel
	if ev.CurrentItem != nil && ev.CurrentItem.Status == workitem.StatusFailed {
		level = zerolog.WarnLevel
	}

	event := r.logger.WithLevel(level)
	if ev.CurrentItem != nil {
		r.files[ev.CurrentItem.FullPath] = ev.CurrentItem.Status
		event = event.Str("file", ev.CurrentItem.OriginalName).
			Str("result", r.formatter.FormatFileOperation(ev.CurrentItem))
	}
	event.
		Int("processed", ev.CurrentCount).
		Int("total", ev.TotalCount).
		Msg(r.formatter.FormatProgress(ev.CurrentCount, ev.TotalCount))
}

// OnComplete logs the final summary
func (r *Reporter) OnComplete(ctx context.Context, o *workitem.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total = o.TotalCount
	r.processed = o.Processed()

	level := zerolog.InfoLevel
	if o.SetupErr != nil {
		level = zerolog.ErrorLevel
	}
	r.logger.WithLevel(level).
		Err(o.SetupErr).
		Int("succeeded", o.SuccessCount).
		Int("failed", o.FailedCount).
		Bool("canceled", o.IsCanceled).
		Dur("duration", o.Duration).
		Msg(r.formatter.FormatSummary(o))
}

// GetStatus returns the recorded status of the item with the given source path
func (r *Reporter) GetStatus(path string) (workitem.Status, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.files[path]
	if !ok {
		return workitem.StatusPending, errors.Errorf("file not tracked: %s", path)
	}
	return s, nil
}

// Progress returns the last processed and total counts seen
func (r *Reporter) Progress() (processed, total int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.processed, r.total
}
