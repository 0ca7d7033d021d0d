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

package convertmd

import (
	"path/filepath"
	"strings"
)

// Document is one uploaded file. The name is the document's identity within
// a session: caching, eviction and output naming all key on it.
type Document struct {
	Name string
	Data []byte
}

// Stem returns the document name without its extension, used to derive the
// output filename (report.pdf -> report).
func (d Document) Stem() string {
	base := filepath.Base(d.Name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Outcome is the terminal result of converting one document: markdown content
// on success, a reason on failure. A failure is cached like a success and is
// not retried within a session.
type Outcome struct {
	Markdown string
	Reason   string
}

// Failed reports whether the outcome is a failure.
func (o Outcome) Failed() bool {
	return o.Reason != ""
}

// Result pairs a document name with its conversion outcome.
type Result struct {
	Name    string
	Outcome Outcome
}

// Formats lists the supported document families, shown to users when no
// documents are active.
func Formats() []string {
	return []string{"PDF", "Word", "PowerPoint", "Excel", "EPUB"}
}
