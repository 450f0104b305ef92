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

// Package scan turns a source directory into work items, deriving field values
// from each file name.
package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/stamprename/pkg/preserve"
	"github.com/walteh/stamprename/pkg/workitem"
	"gitlab.com/tozd/go/errors"
)

// 🔧 Options controls which files are picked up and how fields are filled
type Options struct {
	Source  string
	Include []string // doublestar patterns relative to Source; empty matches everything
	Ignore  []string // doublestar patterns relative to Source
	Exclude []string // directories skipped entirely, e.g. an export dir inside Source

	// Regex is matched against the file stem. Named groups matching a field
	// label (spaces removed, case-insensitive) fill that field; otherwise the
	// first group, or the whole match, becomes the regex result.
	Regex string

	// Defaults fill fields left empty by tokens and the regex, keyed by label
	Defaults map[string]string

	// Tokens parses token-derived fields; nil uses the default markers
	Tokens *preserve.Manager
}

// 🔍 Scan lists the matching files under opts.Source in natural name order.
// Hidden files are skipped.
func Scan(ctx context.Context, opts Options) ([]*workitem.WorkItem, error) {
	logger := zerolog.Ctx(ctx)

	if opts.Source == "" {
		return nil, errors.Errorf("source directory is required")
	}
	info, err := os.Stat(opts.Source)
	if err != nil {
		return nil, errors.Errorf("reading source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("source is not a directory: %s", opts.Source)
	}

	var re *regexp.Regexp
	if opts.Regex != "" {
		if re, err = regexp.Compile(opts.Regex); err != nil {
			return nil, errors.Errorf("compiling regex: %w", err)
		}
	}

	tokens := opts.Tokens
	if tokens == nil {
		tokens = preserve.NewManager(nil)
	}

	include := opts.Include
	if len(include) == 0 {
		include = []string{"**/*"}
	}

	excluded := make([]string, 0, len(opts.Exclude))
	for _, dir := range opts.Exclude {
		if rel, err := filepath.Rel(opts.Source, dir); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
			excluded = append(excluded, filepath.ToSlash(rel))
		}
	}

	fsys := os.DirFS(opts.Source)
	seen := make(map[string]struct{})
	var paths []string

	for _, pattern := range include {
		err := doublestar.GlobWalk(fsys, pattern, func(path string, d fs.DirEntry) error {
			if d.IsDir() || isHidden(path) || isExcluded(path, excluded) {
				return nil
			}
			if _, ok := seen[path]; ok {
				return nil
			}
			ignored, err := matchesAny(opts.Ignore, path)
			if err != nil {
				return err
			}
			if ignored {
				logger.Debug().Str("path", path).Msg("ignoring file")
				return nil
			}
			seen[path] = struct{}{}
			paths = append(paths, path)
			return nil
		})
		if err != nil {
			return nil, errors.Errorf("matching %q: %w", pattern, err)
		}
	}

	sort.SliceStable(paths, func(i, j int) bool { return naturalLess(paths[i], paths[j]) })

	items := make([]*workitem.WorkItem, 0, len(paths))
	for _, rel := range paths {
		name := filepath.Base(rel)
		item := workitem.New(name, filepath.Join(opts.Source, filepath.FromSlash(rel)))

		for label, value := range tokens.Tokens(name) {
			item.Set(label, value)
		}
		if re != nil {
			applyRegex(re, item)
		}
		for label, value := range opts.Defaults {
			if current, ok := item.Get(label); ok && current == "" {
				item.Set(label, value)
			}
		}

		items = append(items, item)
	}

	logger.Info().Str("source", opts.Source).Int("files", len(items)).Msg("scanned source directory")
	return items, nil
}

// ✏️ Override writes every value in values onto each item, replacing whatever
// the scan derived. It returns the number of fields written.
func Override(ctx context.Context, items []*workitem.WorkItem, values map[string]string) int {
	if len(values) == 0 {
		return 0
	}

	written := 0
	for _, item := range items {
		for label, value := range values {
			if item.Set(label, value) {
				written++
			}
		}
	}

	zerolog.Ctx(ctx).Debug().Int("items", len(items)).Int("fields", written).Msg("field overrides applied")
	return written
}

func matchesAny(patterns []string, path string) (bool, error) {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, path)
		if err != nil {
			return false, errors.Errorf("matching ignore pattern %q: %w", pattern, err)
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

func isHidden(path string) bool {
	for _, part := range strings.Split(path, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

func isExcluded(path string, dirs []string) bool {
	for _, dir := range dirs {
		if path == dir || strings.HasPrefix(path, dir+"/") {
			return true
		}
	}
	return false
}

// applyRegex fills fields from the first match in the file stem
func applyRegex(re *regexp.Regexp, item *workitem.WorkItem) {
	stem := strings.TrimSuffix(item.OriginalName, filepath.Ext(item.OriginalName))
	m := re.FindStringSubmatch(stem)
	if m == nil {
		return
	}

	result := m[0]
	firstGroup := true
	for i, group := range re.SubexpNames() {
		if i == 0 {
			continue
		}
		if label, ok := fieldForGroup(group); ok {
			item.Set(label, m[i])
			continue
		}
		if firstGroup {
			result = m[i]
			firstGroup = false
		}
	}
	item.RegexResult = result
}

func fieldForGroup(group string) (string, bool) {
	if group == "" {
		return "", false
	}
	want := strings.ToLower(strings.ReplaceAll(group, "_", ""))
	for _, f := range workitem.Fields() {
		if strings.ToLower(strings.ReplaceAll(f.Label, " ", "")) == want {
			return f.Label, true
		}
	}
	return "", false
}

// naturalLess orders names case-insensitively with digit runs compared by value
func naturalLess(a, b string) bool {
	ai, bi, la, lb := 0, 0, len(a), len(b)
	for ai < la && bi < lb {
		ca, cb := a[ai], b[bi]
		if isDigit(ca) && isDigit(cb) {
			startA, startB := ai, bi
			for ai < la && isDigit(a[ai]) {
				ai++
			}
			for bi < lb && isDigit(b[bi]) {
				bi++
			}
			numA := strings.TrimLeft(a[startA:ai], "0")
			numB := strings.TrimLeft(b[startB:bi], "0")
			if len(numA) != len(numB) {
				return len(numA) < len(numB)
			}
			if numA != numB {
				return numA < numB
			}
			if ai-startA != bi-startB {
				return ai-startA < bi-startB
			}
			continue
		}
		if lca, lcb := lower(ca), lower(cb); lca != lcb {
			return lca < lcb
		}
		ai++
		bi++
	}
	return la < lb
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 'a' - 'A'
	}
	return b
}
