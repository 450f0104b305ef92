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
	"strings"
	"unicode"

	"gitlab.com/tozd/go/errors"
)

// 🔄 Replacement is a literal find/replace applied to generated names
type Replacement struct {
	Old string `json:"old" yaml:"old" hcl:"old"`
	New string `json:"new" yaml:"new" hcl:"new,optional"`
}

// ApplyReplacements applies rules in order and returns the result plus the
// number of replacements made. Rules with an empty Old are skipped.
func ApplyReplacements(s string, rules []Replacement) (string, int) {
	count := 0
	for _, rule := range rules {
		if rule.Old == "" {
			continue
		}
		if n := strings.Count(s, rule.Old); n > 0 {
			count += n
			s = strings.ReplaceAll(s, rule.Old, rule.New)
		}
	}
	return s, count
}

// ValidateReplacements reports the first rule without a search string
func ValidateReplacements(rules []Replacement) error {
	for i, rule := range rules {
		if rule.Old == "" {
			return errors.Errorf("replacement %d: old is required", i)
		}
	}
	return nil
}

const unsafeChars = `<>:"/\|?*`

// Sanitize replaces characters that are not allowed in file names with '-' and
// trims trailing dots and spaces.
func Sanitize(stem string) string {
	stem = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(unsafeChars, r) {
			return '-'
		}
		return r
	}, stem)
	return strings.TrimRight(stem, ". ")
}
