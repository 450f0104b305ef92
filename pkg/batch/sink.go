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

	"github.com/rs/zerolog"
	"github.com/walteh/stamprename/pkg/workitem"
)

// 📡 ProgressSink receives one event per completed item. Events are delivered
// one at a time with a strictly increasing CurrentCount.
type ProgressSink interface {
	OnProgress(ctx context.Context, ev workitem.ProgressEvent)
}

// 🏁 CompletionSink receives the final outcome exactly once per run
type CompletionSink interface {
	OnComplete(ctx context.Context, o *workitem.Outcome)
}

// ProgressFunc adapts a function to ProgressSink
type ProgressFunc func(ctx context.Context, ev workitem.ProgressEvent)

func (f ProgressFunc) OnProgress(ctx context.Context, ev workitem.ProgressEvent) { f(ctx, ev) }

// CompletionFunc adapts a function to CompletionSink
type CompletionFunc func(ctx context.Context, o *workitem.Outcome)

func (f CompletionFunc) OnComplete(ctx context.Context, o *workitem.Outcome) { f(ctx, o) }

// notify runs a sink callback, keeping a misbehaving sink from taking down the run
func notify(ctx context.Context, kind string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			zerolog.Ctx(ctx).Error().Interface("panic", r).Str("sink", kind).Msg("sink panicked")
		}
	}()
	fn()
}
