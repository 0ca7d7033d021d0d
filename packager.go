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
	"archive/zip"
	"bytes"
	"fmt"
)

// ArchiveName is the filename of the batch deliverable.
const ArchiveName = "converted_markdown_files.zip"

// DeliverableKind tells callers what the deliverable contains.
type DeliverableKind int

const (
	// DeliverableNone means nothing converted; check Failures.
	DeliverableNone DeliverableKind = iota
	// DeliverableMarkdown is a single markdown document.
	DeliverableMarkdown
	// DeliverableArchive is a ZIP of markdown documents.
	DeliverableArchive
)

// Failure describes one document that could not be converted.
type Failure struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

func (f Failure) String() string {
	return fmt.Sprintf("%s: %s", f.Name, f.Reason)
}

// Deliverable is the final output for the current document set: the lone
// markdown text for a single-document session, or a ZIP archive with one
// `<stem>.md` entry per converted document, plus the list of failures in
// batch order. Partial success is a normal deliverable, not an error.
type Deliverable struct {
	Kind     DeliverableKind
	Filename string
	Content  []byte
	Failures []Failure
}

// BuildDeliverable assembles the deliverable for batch from cached outcomes.
// Batch order is preserved in archive entries and in the failure list,
// regardless of the order conversions completed in.
func BuildDeliverable(batch []Document, cache *ResultCache) (Deliverable, error) {
	var (
		converted []Document // batch entries with a success outcome
		failures  []Failure
	)
	for _, d := range batch {
		o, ok := cache.Get(d.Name)
		if !ok {
			continue
		}
		if o.Failed() {
			failures = append(failures, Failure{Name: d.Name, Reason: o.Reason})
		} else {
			converted = append(converted, d)
		}
	}

	if len(batch) == 1 {
		if len(converted) == 0 {
			return Deliverable{Kind: DeliverableNone, Failures: failures}, nil
		}
		doc := converted[0]
		o, _ := cache.Get(doc.Name)
		return Deliverable{
			Kind:     DeliverableMarkdown,
			Filename: doc.Stem() + ".md",
			Content:  []byte(o.Markdown),
			Failures: failures,
		}, nil
	}

	if len(converted) == 0 {
		return Deliverable{Kind: DeliverableNone, Failures: failures}, nil
	}

	data, err := buildArchive(converted, cache)
	if err != nil {
		return Deliverable{}, fmt.Errorf("build archive: %w", err)
	}
	return Deliverable{
		Kind:     DeliverableArchive,
		Filename: ArchiveName,
		Content:  data,
		Failures: failures,
	}, nil
}

// buildArchive writes one `<stem>.md` entry per converted document. Two
// source names can share a stem (report.pdf, report.docx); later entries get
// a numeric suffix instead of overwriting earlier ones.
func buildArchive(converted []Document, cache *ResultCache) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	used := make(map[string]bool, len(converted))
	for _, d := range converted {
		entry := d.Stem() + ".md"
		for i := 2; used[entry]; i++ {
			entry = fmt.Sprintf("%s-%d.md", d.Stem(), i)
		}
		used[entry] = true

		w, err := zw.Create(entry)
		if err != nil {
			return nil, fmt.Errorf("create entry %q: %w", entry, err)
		}
		o, _ := cache.Get(d.Name)
		if _, err := w.Write([]byte(o.Markdown)); err != nil {
			return nil, fmt.Errorf("write entry %q: %w", entry, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}
