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

package preserve

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/stamprename/pkg/workitem"
)

// DefaultTokenMarkers maps token-derived field labels to the marker that precedes
// their value in an original file name, e.g. "plate&Q20&R2&C5.pdf".
var DefaultTokenMarkers = map[string]string{
	workitem.LabelQuantity:   "&Q",
	workitem.LabelDimensions: "&D",
	workitem.LabelRows:       "&R",
	workitem.LabelColumns:    "&C",
}

// 🛟 Manager backs up and restores preserved fields around destructive re-derivation
type Manager struct {
	markers    map[string]string // lower-cased label -> marker
	allMarkers []string
}

// 🏭 NewManager creates a preserve manager. A nil markers map selects DefaultTokenMarkers.
func NewManager(markers map[string]string) *Manager {
	if markers == nil {
		markers = DefaultTokenMarkers
	}
	m := &Manager{markers: make(map[string]string, len(markers))}
	for label, marker := range markers {
		m.markers[normalize(label)] = marker
		m.allMarkers = append(m.allMarkers, marker)
	}
	// longest first so "&QT" wins over "&Q" when both are configured
	sort.Slice(m.allMarkers, func(i, j int) bool { return len(m.allMarkers[i]) > len(m.allMarkers[j]) })
	return m
}

func normalize(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// Marker returns the token marker configured for label, if the label is token-derived
func (m *Manager) Marker(label string) (string, bool) {
	marker, ok := m.markers[normalize(label)]
	return marker, ok
}

// Tokens parses every token-derived field out of name, keyed by field label.
// Labels whose marker is absent are omitted.
func (m *Manager) Tokens(name string) map[string]string {
	out := make(map[string]string, len(m.markers))
	for key, marker := range m.markers {
		value, ok := ParseToken(name, marker, m.allMarkers)
		if !ok {
			continue
		}
		label := key
		if f, ok := workitem.LookupField(key); ok {
			label = f.Label
		}
		out[label] = value
	}
	return out
}

// 📥 Apply puts every item into preserve mode and backs up each label found in a
// preserved group. Token-derived labels are parsed out of the original name;
// every other label takes the field's current value verbatim. Labels that cannot
// be resolved get no entry. An entry already present is never overwritten, so a
// second Apply cannot replace a backup with a value written after the first one.
func (m *Manager) Apply(ctx context.Context, items []*workitem.WorkItem, groups []workitem.EventGroupConfig) {
	logger := zerolog.Ctx(ctx)
	labels := workitem.PreservedLabels(groups)

	for _, item := range items {
		item.IsPreserveMode = true
		if item.BackupData == nil {
			item.BackupData = make(map[string]string, len(labels))
		}

		for _, label := range labels {
			if _, exists := item.BackupData[label]; exists {
				continue
			}
			value, ok := m.backupValue(item, label)
			if !ok {
				logger.Debug().
					Str("file", item.OriginalName).
					Str("label", label).
					Msg("no backup value for preserved field")
				continue
			}
			item.BackupData[label] = value
		}
	}

	logger.Debug().
		Int("items", len(items)).
		Strs("labels", labels).
		Msg("preserve mode applied")
}

// backupValue resolves the value to back up for label
func (m *Manager) backupValue(item *workitem.WorkItem, label string) (string, bool) {
	if marker, ok := m.Marker(label); ok {
		return ParseToken(item.OriginalName, marker, m.allMarkers)
	}
	return item.Get(label)
}

// 📤 Restore writes every backed up value onto its field for items in preserve
// mode. Items without backup data are left untouched.
func (m *Manager) Restore(ctx context.Context, items []*workitem.WorkItem) {
	logger := zerolog.Ctx(ctx)

	restored := 0
	for _, item := range items {
		if !item.IsPreserveMode || len(item.BackupData) == 0 {
			continue
		}
		for label, value := range item.BackupData {
			if !item.Set(label, value) {
				logger.Debug().
					Str("file", item.OriginalName).
					Str("label", label).
					Msg("backup label has no matching field")
				continue
			}
			restored++
		}
	}

	logger.Debug().Int("fields", restored).Msg("preserved fields restored")
}
