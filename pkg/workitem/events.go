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
	"time"

	"github.com/hashicorp/go-multierror"
	"gitlab.com/tozd/go/errors"
)

// 🗂️ EventGroupConfig is a named set of field labels. A field is preserved when
// it appears in any group flagged preserved.
type EventGroupConfig struct {
	Name        string   `json:"name" yaml:"name"`
	Fields      []string `json:"fields" yaml:"fields"`
	IsPreserved bool     `json:"preserved" yaml:"preserved"`
}

// PreservedLabels returns the de-duplicated labels of every preserved group, in first-seen order
func PreservedLabels(groups []EventGroupConfig) []string {
	seen := make(map[string]struct{})
	var labels []string
	for _, g := range groups {
		if !g.IsPreserved {
			continue
		}
		for _, l := range g.Fields {
			if _, ok := seen[l]; ok {
				continue
			}
			seen[l] = struct{}{}
			labels = append(labels, l)
		}
	}
	return labels
}

// 🎨 LayerDescriptor describes the metadata layer stamped onto one file
type LayerDescriptor struct {
	Name   string            // layer name, taken from the item's material
	Text   string            // visible layer text
	Fields map[string]string // labelled field values carried by the layer
}

// DescribeLayer builds the per-item layer descriptor. Empty fields are omitted.
func DescribeLayer(w *WorkItem, sep string) LayerDescriptor {
	d := LayerDescriptor{
		Name:   w.Material,
		Fields: make(map[string]string),
	}
	var text string
	for _, f := range fields {
		v := f.Get(w)
		if v == "" {
			continue
		}
		d.Fields[f.Label] = v
		if text != "" {
			text += sep
		}
		text += v
	}
	d.Text = text
	return d
}

// 📈 ProgressEvent is emitted once per completed item
type ProgressEvent struct {
	CurrentCount int
	TotalCount   int
	CurrentItem  *WorkItem
}

// Percent returns the completion percentage carried by the event
func (e ProgressEvent) Percent() float64 {
	if e.TotalCount == 0 {
		return 100
	}
	return float64(e.CurrentCount) / float64(e.TotalCount) * 100
}

// 📦 Outcome is the aggregate result of one batch run. It is immutable once emitted.
type Outcome struct {
	RunID        string
	TotalCount   int
	SuccessCount int
	FailedCount  int
	FailedItems  []*WorkItem
	IsCanceled   bool
	Duration     time.Duration

	// SetupErr is set when the run could not start processing items at all
	SetupErr error
}

// Processed returns the number of items that reached a terminal state
func (o *Outcome) Processed() int {
	return o.SuccessCount + o.FailedCount
}

// Err aggregates the failed items (and any setup failure) into one error, or nil
func (o *Outcome) Err() error {
	var errs *multierror.Error
	if o.SetupErr != nil {
		errs = multierror.Append(errs, o.SetupErr)
	}
	for _, item := range o.FailedItems {
		errs = multierror.Append(errs, errors.Errorf("%s: %s", item.OriginalName, item.ErrorMessage))
	}
	return errs.ErrorOrNil()
}
