// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	reCRLF               = regexp.MustCompile(`\r\n?`)
	reTrailingWhitespace = regexp.MustCompile(`[ \t]+\n`)
	reExtraNewlines      = regexp.MustCompile(`\n{3,}`)
)

// normalizeOutput post-processes converter output:
// line endings become LF, trailing whitespace and control characters are
// stripped, runs of 3+ newlines collapse to 2, and the result is valid UTF-8
// trimmed of surrounding whitespace.
func normalizeOutput(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}

	s = reCRLF.ReplaceAllString(s, "\n")

	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	s = reTrailingWhitespace.ReplaceAllString(s, "\n")
	s = reExtraNewlines.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}
