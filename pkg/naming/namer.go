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

package naming

import (
	"path/filepath"
	"strings"

	"github.com/walteh/stamprename/pkg/workitem"
)

// DefaultSeparator joins field values in generated names
const DefaultSeparator = "_"

// 🏷️ Namer computes the destination file name for an item. It must be pure.
type Namer func(item *workitem.WorkItem, sep string) string

// DefaultLabels is the field order used when no naming fields are configured
var DefaultLabels = []string{
	workitem.LabelOrderNumber,
	workitem.LabelMaterial,
	workitem.LabelQuantity,
	workitem.LabelDimensions,
	workitem.LabelProcess,
	workitem.LabelSerialNumber,
}

// 🧩 FieldNamer joins the non-empty values of labels with the separator and keeps
// the original extension. An item with no usable values keeps its original stem.
func FieldNamer(labels []string) Namer {
	if len(labels) == 0 {
		labels = DefaultLabels
	}
	return func(item *workitem.WorkItem, sep string) string {
		ext := filepath.Ext(item.OriginalName)

		parts := make([]string, 0, len(labels))
		for _, label := range labels {
			v, ok := item.Get(label)
			if !ok {
				continue
			}
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			parts = append(parts, v)
		}

		stem := strings.Join(parts, sep)
		if stem == "" {
			stem = strings.TrimSuffix(item.OriginalName, ext)
		}
		return Sanitize(stem) + ext
	}
}

// WithReplacements wraps n so rules are applied to the computed stem
func WithReplacements(n Namer, rules []Replacement) Namer {
	if len(rules) == 0 {
		return n
	}
	return func(item *workitem.WorkItem, sep string) string {
		name := n(item, sep)
		ext := filepath.Ext(name)
		stem, _ := ApplyReplacements(strings.TrimSuffix(name, ext), rules)
		return Sanitize(stem) + ext
	}
}
