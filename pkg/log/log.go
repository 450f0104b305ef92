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

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/stamprename/pkg/workitem"
)

// 🎨 Display configuration
const (
	fileIndent = 4  // spaces to indent file entries
	nameWidth  = 35 // Base width for filename
	typeWidth  = 15 // Width for operation type
)

// 📦 RunInfo describes a run for the console header
type RunInfo struct {
	Source string // Source directory
	Export string // Export directory
	Copy   bool   // Whether sources are kept
	Items  int    // Number of files in the run
}

// 🎯 Logger handles structured logging with console output. It can be attached
// to a batch run as both progress and completion sink.
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	run     *RunInfo
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatItem formats a processed item for display
func (l *Logger) formatItem(item *workitem.WorkItem) string {
	var (
		symbol      rune
		symbolColor color.Attribute
		kind        string
		typeColor   color.Attribute
		detail      string
	)

	switch item.Status {
	case workitem.StatusSuccess:
		symbol, symbolColor = '✓', color.FgGreen
		kind, typeColor = "moved", color.FgCyan
		if l.run != nil && l.run.Copy {
			kind = "copied"
		}
		detail = item.NewName
	case workitem.StatusFailed:
		symbol, symbolColor = '✗', color.FgRed
		kind, typeColor = "failed", color.FgRed
		detail = item.ErrorMessage
	default:
		symbol, symbolColor = '-', color.FgYellow
		kind, typeColor = "pending", color.FgYellow
	}

	// Build the line
	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, item.OriginalName),
		color.New(typeColor).Sprint(fmt.Sprintf("%-*s", typeWidth, kind)),
		detail)
}

// 📝 LogItem logs one processed item
func (l *Logger) LogItem(ctx context.Context, item *workitem.WorkItem) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, l.formatItem(item))

	ev := l.zlog.Info()
	if item.Status == workitem.StatusFailed {
		ev = l.zlog.Warn()
	}
	ev.Str("file", item.OriginalName).
		Str("status", item.Status.String()).
		Str("new_name", item.NewName).
		Str("error", item.ErrorMessage).
		Msg("item processed")
}

// 📝 StartRun prints the run header
func (l *Logger) StartRun(ctx context.Context, run RunInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.run = &run

	mode := "move"
	if run.Copy {
		mode = "copy"
	}

	fmt.Fprintf(l.console, "[renaming into %s]\n",
		color.New(color.FgCyan).Sprint(run.Export))

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(fmt.Sprintf("%d files", run.Items)),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(mode))

	l.zlog.Info().
		Str("source", run.Source).
		Str("export", run.Export).
		Bool("copy", run.Copy).
		Int("items", run.Items).
		Msg("starting run")
}

// OnProgress prints each completed item
func (l *Logger) OnProgress(ctx context.Context, ev workitem.ProgressEvent) {
	if ev.CurrentItem == nil {
		return
	}
	l.LogItem(ctx, ev.CurrentItem)
}

// OnComplete prints the run summary
func (l *Logger) OnComplete(ctx context.Context, o *workitem.Outcome) {
	switch {
	case o.SetupErr != nil:
		l.Errorf("run aborted: %v", o.SetupErr)
	case o.IsCanceled:
		l.Warningf("canceled after %d of %d files (%d failed)", o.Processed(), o.TotalCount, o.FailedCount)
	case o.FailedCount > 0:
		l.Warningf("%d renamed, %d failed", o.SuccessCount, o.FailedCount)
	default:
		l.Successf("%d files renamed", o.SuccessCount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.run = nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("stamprename")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
