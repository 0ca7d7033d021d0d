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
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFConverter handles PDF files.
type PDFConverter struct{}

// NewPDFConverter creates a new PDFConverter.
func NewPDFConverter() *PDFConverter {
	return &PDFConverter{}
}

func (c *PDFConverter) Accepts(info StreamInfo) bool {
	if info.Extension == ".pdf" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(info.MIMEType), "application/pdf")
}

func (c *PDFConverter) Convert(reader io.ReadSeeker, info StreamInfo) (*Result, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read PDF: %w", err)
	}

	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}

	var md strings.Builder
	for i := 1; i <= pdfReader.NumPage(); i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text := strings.TrimSpace(extractPageText(page))
		if text == "" {
			continue
		}
		md.WriteString(text)
		md.WriteString("\n\n")
	}

	return &Result{Markdown: md.String()}, nil
}

// extractPageText extracts text from one page, preferring the library's
// row-based extraction and falling back to grouping raw positioned fragments
// into lines when rows come back empty.
func extractPageText(page pdf.Page) string {
	rows, err := page.GetTextByRow()
	if err == nil && len(rows) > 0 {
		var b strings.Builder
		for _, row := range rows {
			line := joinRowWords(row)
			if line != "" {
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
		if strings.TrimSpace(b.String()) != "" {
			return b.String()
		}
	}

	return extractByPosition(page)
}

// joinRowWords concatenates a row's fragments. The library emits an empty
// fragment between words, which marks a word boundary.
func joinRowWords(row *pdf.Row) string {
	var b strings.Builder
	boundary := false
	for _, word := range row.Content {
		if word.S == "" {
			boundary = true
			continue
		}
		if b.Len() > 0 && boundary && !strings.HasSuffix(b.String(), " ") {
			b.WriteString(" ")
		}
		b.WriteString(word.S)
		boundary = false
	}
	return strings.TrimSpace(b.String())
}

type pdfFragment struct {
	x, y, size float64
	text       string
}

// extractByPosition groups raw text fragments into lines by Y proximity and
// orders them top-to-bottom, left-to-right. Word gaps are inferred from
// font-size-relative spacing.
func extractByPosition(page pdf.Page) string {
	content := page.Content()
	if len(content.Text) == 0 {
		return ""
	}

	var fragments []pdfFragment
	for _, t := range content.Text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		fragments = append(fragments, pdfFragment{x: t.X, y: t.Y, size: t.FontSize, text: t.S})
	}
	if len(fragments) == 0 {
		return ""
	}

	tolerance := 3.0
	if fragments[0].size > 0 {
		tolerance = fragments[0].size * 0.3
	}

	type line struct {
		y     float64
		frags []pdfFragment
	}
	var lines []line
	for _, f := range fragments {
		placed := false
		for i := range lines {
			if abs(lines[i].y-f.y) < tolerance {
				lines[i].frags = append(lines[i].frags, f)
				placed = true
				break
			}
		}
		if !placed {
			lines = append(lines, line{y: f.y, frags: []pdfFragment{f}})
		}
	}

	// PDF Y grows upward; higher Y means earlier on the page.
	sort.Slice(lines, func(i, j int) bool { return lines[i].y > lines[j].y })

	var b strings.Builder
	for _, ln := range lines {
		sort.Slice(ln.frags, func(i, j int) bool { return ln.frags[i].x < ln.frags[j].x })

		var text strings.Builder
		var lastEnd float64
		for i, f := range ln.frags {
			if i > 0 {
				threshold := f.size * 0.2
				if threshold < 1.0 {
					threshold = 1.0
				}
				if f.x-lastEnd > threshold {
					text.WriteString(" ")
				}
			}
			text.WriteString(f.text)
			lastEnd = f.x + float64(len([]rune(f.text)))*f.size*0.55
		}
		if strings.TrimSpace(text.String()) != "" {
			b.WriteString(text.String())
			b.WriteString("\n")
		}
	}

	return b.String()
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
