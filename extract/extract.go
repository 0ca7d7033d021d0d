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

// Package extract converts documents (PDF, Word, PowerPoint, Excel, EPUB)
// to Markdown text.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Engine is the document-to-markdown extraction engine. Converters are tried
// in registration order; each format family has exactly one built-in
// converter.
type Engine struct {
	converters   []registeredConverter
	keepDataURIs bool
}

type registeredConverter struct {
	name      string
	converter Converter
}

// New creates a new Engine with the built-in converters registered.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	e.registerBuiltins()
	return e
}

// Register adds a converter tried after the ones already registered.
func (e *Engine) Register(name string, c Converter) {
	e.converters = append(e.converters, registeredConverter{name: name, converter: c})
}

func (e *Engine) registerBuiltins() {
	e.Register("pdf", NewPDFConverter())
	e.Register("docx", NewDocxConverter(e))
	e.Register("pptx", NewPptxConverter())
	e.Register("xlsx", NewXlsxConverter())
	e.Register("xls", NewXlsConverter())
	e.Register("epub", NewEpubConverter(e))
}

// Convert converts one document given its raw bytes and name, returning the
// extracted markdown. It satisfies the orchestrator's converter contract and
// is safe for concurrent use.
func (e *Engine) Convert(_ context.Context, name string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	reader := bytes.NewReader(data)

	info := StreamInfo{
		Extension: ext,
		Filename:  filepath.Base(name),
		MIMEType:  detectMIMEType(reader, ext),
	}
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("seek: %w", err)
	}

	result, err := e.ConvertReader(reader, info)
	if err != nil {
		return "", err
	}
	return result.Markdown, nil
}

// ConvertFile converts a local file to markdown.
func (e *Engine) ConvertFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	info := StreamInfo{
		Extension: ext,
		Filename:  filepath.Base(path),
		MIMEType:  detectMIMEType(f, ext),
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}

	return e.ConvertReader(f, info)
}

// ConvertReader converts a stream to markdown using the provided StreamInfo.
func (e *Engine) ConvertReader(r io.ReadSeeker, info StreamInfo) (*Result, error) {
	for _, rc := range e.converters {
		if !rc.converter.Accepts(info) {
			continue
		}

		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("seek: %w", err)
		}

		result, err := rc.converter.Convert(r, info)
		if err != nil {
			return nil, &ExtractionError{Format: rc.name, Err: err}
		}

		result.Markdown = normalizeOutput(result.Markdown)
		return result, nil
	}

	return nil, &UnsupportedFormatError{
		Extension: info.Extension,
		MIMEType:  info.MIMEType,
	}
}

// Extensions returns the file extensions the built-in converters accept.
func Extensions() []string {
	return []string{".pdf", ".docx", ".pptx", ".xlsx", ".xls", ".epub"}
}

// detectMIMEType detects the MIME type from content, falling back to the
// extension when content sniffing is inconclusive.
func detectMIMEType(r io.ReadSeeker, ext string) string {
	mtype, err := mimetype.DetectReader(r)
	if err == nil && mtype.String() != "application/octet-stream" {
		return mtype.String()
	}
	return mimeFromExtension(ext)
}

var extensionMIME = map[string]string{
	".pdf":   "application/pdf",
	".docx":  "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".pptx":  "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".xlsx":  "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xls":   "application/vnd.ms-excel",
	".epub":  "application/epub+zip",
	".html":  "text/html",
	".htm":   "text/html",
	".xhtml": "application/xhtml+xml",
}

// mimeFromExtension returns a MIME type for the supported extensions.
func mimeFromExtension(ext string) string {
	if m, ok := extensionMIME[ext]; ok {
		return m
	}
	return "application/octet-stream"
}
