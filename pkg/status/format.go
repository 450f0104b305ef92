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
	"fmt"

	"github.com/walteh/stamprename/pkg/workitem"
)

// FileFormatter defines how item outcomes and progress should be formatted
type FileFormatter interface {
	// FormatFileOperation formats the outcome of one item
	FormatFileOperation(item *workitem.WorkItem) string

	// FormatProgress formats a progress message
	FormatProgress(current, total int) string

	// FormatError formats an error message
	FormatError(err error) string

	// FormatSummary formats the final outcome of a run
	FormatSummary(o *workitem.Outcome) string
}

// DefaultFileFormatter provides a default implementation of FileFormatter
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatFileOperation formats an item outcome with emojis
func (f *DefaultFileFormatter) FormatFileOperation(item *workitem.WorkItem) string {
	switch item.Status {
	case workitem.StatusSuccess:
		if item.NewName != "" && item.NewName != item.OriginalName {
			return fmt.Sprintf("✨ Renamed %s -> %s", item.OriginalName, item.NewName)
		}
		return fmt.Sprintf("👍 Exported %s", item.OriginalName)
	case workitem.StatusFailed:
		return fmt.Sprintf("❌ Failed %s: %s", item.OriginalName, item.ErrorMessage)
	default:
		return fmt.Sprintf("⏸️  Pending %s", item.OriginalName)
	}
}

// FormatProgress formats a progress message with percentage
func (f *DefaultFileFormatter) FormatProgress(current, total int) string {
	var percentage float64
	if total == 0 {
		percentage = 0
		if current > 0 {
			percentage = 100
		}
	} else {
		percentage = float64(current) / float64(total) * 100
	}

	if current >= total {
		return fmt.Sprintf("✅ Progress: %d/%d (%.0f%%)", current, total, percentage)
	}
	return fmt.Sprintf("⏳ Progress: %d/%d (%.0f%%)", current, total, percentage)
}

// FormatError formats an error message with emoji
func (f *DefaultFileFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}

// FormatSummary formats the final counts of a run
func (f *DefaultFileFormatter) FormatSummary(o *workitem.Outcome) string {
	switch {
	case o.SetupErr != nil:
		return fmt.Sprintf("💥 Run aborted: %v", o.SetupErr)
	case o.IsCanceled:
		return fmt.Sprintf("🛑 Canceled: %d succeeded, %d failed, %d not processed",
			o.SuccessCount, o.FailedCount, o.TotalCount-o.Processed())
	case o.FailedCount > 0:
		return fmt.Sprintf("⚠️  Done: %d succeeded, %d failed of %d", o.SuccessCount, o.FailedCount, o.TotalCount)
	default:
		return fmt.Sprintf("✅ Done: %d succeeded of %d", o.SuccessCount, o.TotalCount)
	}
}
