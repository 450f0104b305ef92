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
	"path/filepath"
	"strings"
	"unicode"
)

// ParseToken extracts the value that follows marker in the file name (extension
// excluded). The value is the run of letters and digits after the marker, ending
// at the first other rune, at the start of any marker in allMarkers, or at the
// end of the name. A missing marker or an empty run reports false.
func ParseToken(name, marker string, allMarkers []string) (string, bool) {
	if marker == "" {
		return "", false
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	idx := strings.Index(stem, marker)
	if idx < 0 {
		return "", false
	}
	rest := stem[idx+len(marker):]

	end := len(rest)
	for i, r := range rest {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			end = i
			break
		}
		if i > 0 && startsWithMarker(rest[i:], allMarkers) {
			end = i
			break
		}
	}
	if end == 0 {
		return "", false
	}
	return rest[:end], true
}

func startsWithMarker(s string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.HasPrefix(s, m) {
			return true
		}
	}
	return false
}
