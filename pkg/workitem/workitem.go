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

package workitem

import (
	"strings"
)

// 📊 Status is the outcome state of a single work item
type Status int

const (
	StatusPending Status = iota
	StatusSuccess
	StatusFailed
)

// String returns a string representation of Status
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

// 📄 WorkItem is one file's rename/stamp task plus its outcome.
//
// Items are created by the caller, mutated in place by the preserve manager and
// the processor, and never shared for writes between workers.
type WorkItem struct {
	// Identity
	OriginalName string // file name as found on disk
	FullPath     string // absolute source path
	NewName      string // computed destination file name (set during processing)
	DestPath     string // resolved destination path (set on success)

	// Descriptive fields used in naming and stamping
	OrderNumber  string
	Material     string
	Quantity     string
	Dimensions   string
	Process      string
	SerialNumber string
	RegexResult  string // token extracted from the original name by an external matcher
	Rows         string
	Columns      string

	// Preserve mode
	IsPreserveMode bool
	BackupData     map[string]string // field label -> backed up value

	// Outcome
	Status       Status
	ErrorMessage string
}

// 🏭 New creates a pending work item for the file at path
func New(name, path string) *WorkItem {
	return &WorkItem{
		OriginalName: name,
		FullPath:     path,
		Status:       StatusPending,
	}
}

// ✅ MarkSuccess records a successful outcome
func (w *WorkItem) MarkSuccess(destPath string) {
	w.Status = StatusSuccess
	w.DestPath = destPath
	w.ErrorMessage = ""
}

// ❌ MarkFailed records a failed outcome with the given message
func (w *WorkItem) MarkFailed(msg string) {
	w.Status = StatusFailed
	w.ErrorMessage = msg
}

// Field labels. These are the display names used by group configs, backup data,
// and the default namer.
const (
	LabelOrderNumber  = "Order Number"
	LabelMaterial     = "Material"
	LabelQuantity     = "Quantity"
	LabelDimensions   = "Dimensions"
	LabelProcess      = "Process"
	LabelSerialNumber = "Serial Number"
	LabelRegexResult  = "Regex Result"
	LabelRows         = "Rows"
	LabelColumns      = "Columns"
)

// 🏷️ Field binds a label to a WorkItem property
type Field struct {
	Label string
	Get   func(*WorkItem) string
	Set   func(*WorkItem, string)
}

var fields = []Field{
	{LabelOrderNumber, func(w *WorkItem) string { return w.OrderNumber }, func(w *WorkItem, v string) { w.OrderNumber = v }},
	{LabelMaterial, func(w *WorkItem) string { return w.Material }, func(w *WorkItem, v string) { w.Material = v }},
	{LabelQuantity, func(w *WorkItem) string { return w.Quantity }, func(w *WorkItem, v string) { w.Quantity = v }},
	{LabelDimensions, func(w *WorkItem) string { return w.Dimensions }, func(w *WorkItem, v string) { w.Dimensions = v }},
	{LabelProcess, func(w *WorkItem) string { return w.Process }, func(w *WorkItem, v string) { w.Process = v }},
	{LabelSerialNumber, func(w *WorkItem) string { return w.SerialNumber }, func(w *WorkItem, v string) { w.SerialNumber = v }},
	{LabelRegexResult, func(w *WorkItem) string { return w.RegexResult }, func(w *WorkItem, v string) { w.RegexResult = v }},
	{LabelRows, func(w *WorkItem) string { return w.Rows }, func(w *WorkItem, v string) { w.Rows = v }},
	{LabelColumns, func(w *WorkItem) string { return w.Columns }, func(w *WorkItem, v string) { w.Columns = v }},
}

// 🔍 LookupField finds a field by label. Matching ignores case and surrounding space.
func LookupField(label string) (Field, bool) {
	label = strings.TrimSpace(label)
	for _, f := range fields {
		if strings.EqualFold(f.Label, label) {
			return f, true
		}
	}
	return Field{}, false
}

// Fields returns all known fields in display order
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// Get returns the value of the field with the given label
func (w *WorkItem) Get(label string) (string, bool) {
	f, ok := LookupField(label)
	if !ok {
		return "", false
	}
	return f.Get(w), true
}

// Set writes value to the field with the given label, reporting whether the label is known
func (w *WorkItem) Set(label, value string) bool {
	f, ok := LookupField(label)
	if !ok {
		return false
	}
	f.Set(w, value)
	return true
}
