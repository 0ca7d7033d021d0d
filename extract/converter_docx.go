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
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/nicholasgasior/convertmd-go/internal/ooxml"
)

// DocxConverter handles DOCX files. The document body is rendered to an HTML
// intermediate (headings, emphasis, hyperlinks, tables, line breaks) and then
// converted to markdown through the shared HTML renderer.
type DocxConverter struct {
	engine *Engine
}

// NewDocxConverter creates a new DocxConverter.
func NewDocxConverter(e *Engine) *DocxConverter {
	return &DocxConverter{engine: e}
}

func (c *DocxConverter) Accepts(info StreamInfo) bool {
	if info.Extension == ".docx" {
		return true
	}
	mime := strings.ToLower(info.MIMEType)
	return strings.HasPrefix(mime, "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
}

func (c *DocxConverter) Convert(reader io.ReadSeeker, info StreamInfo) (*Result, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read DOCX: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open DOCX ZIP: %w", err)
	}

	rels, _ := ooxml.ParseRelationships(zr, "word/_rels/document.xml.rels")
	headings := parseHeadingStyles(zr)

	docData, err := ooxml.ReadFile(zr, "word/document.xml")
	if err != nil {
		return nil, fmt.Errorf("read document.xml: %w", err)
	}

	root, err := parseXMLTree(docData)
	if err != nil {
		return nil, fmt.Errorf("parse document.xml: %w", err)
	}
	body := root.descendant("body")
	if body == nil {
		return nil, fmt.Errorf("document.xml has no body")
	}

	htmlStr := docxBodyToHTML(body, rels, headings)

	keep := false
	if c.engine != nil {
		keep = c.engine.keepDataURIs
	}
	return htmlRenderer{keepDataURIs: keep}.render(htmlStr)
}

// parseHeadingStyles maps style IDs to heading levels 1-6 based on the style
// names in word/styles.xml ("heading 1", "Title", ...). Missing or
// unparseable styles.xml degrades to no headings.
func parseHeadingStyles(zr *zip.Reader) map[string]int {
	levels := make(map[string]int)
	data, err := ooxml.ReadFile(zr, "word/styles.xml")
	if err != nil {
		return levels
	}
	root, err := parseXMLTree(data)
	if err != nil {
		return levels
	}

	for _, style := range root.descendants("style") {
		id := style.attr("styleId")
		name := style.child("name")
		if id == "" || name == nil {
			continue
		}
		if lvl := headingLevelFromStyleName(name.attr("val")); lvl > 0 {
			levels[id] = lvl
		}
	}
	return levels
}

func headingLevelFromStyleName(name string) int {
	lower := strings.ToLower(name)
	if lower == "title" {
		return 1
	}
	if rest, ok := strings.CutPrefix(lower, "heading "); ok {
		switch rest {
		case "1", "2", "3", "4", "5", "6":
			return int(rest[0] - '0')
		}
	}
	return 0
}

// docxBodyToHTML renders the document body element into an HTML fragment.
func docxBodyToHTML(body *xmlNode, rels map[string]ooxml.Relationship, headings map[string]int) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := range body.Children {
		node := &body.Children[i]
		switch node.XMLName.Local {
		case "p":
			writeDocxParagraph(&b, node, rels, headings)
		case "tbl":
			writeDocxTable(&b, node, rels, headings)
		}
	}
	b.WriteString("</body></html>")
	return b.String()
}

func writeDocxParagraph(b *strings.Builder, p *xmlNode, rels map[string]ooxml.Relationship, headings map[string]int) {
	tag := "p"
	if pPr := p.child("pPr"); pPr != nil {
		if pStyle := pPr.child("pStyle"); pStyle != nil {
			if lvl := headings[pStyle.attr("val")]; lvl > 0 {
				tag = fmt.Sprintf("h%d", lvl)
			}
		}
	}

	inner := docxRunsToHTML(p, rels)
	if strings.TrimSpace(inner) == "" {
		return
	}
	fmt.Fprintf(b, "<%s>%s</%s>", tag, inner, tag)
}

// docxRunsToHTML renders the runs of a paragraph (or hyperlink) node.
func docxRunsToHTML(node *xmlNode, rels map[string]ooxml.Relationship) string {
	var b strings.Builder
	for i := range node.Children {
		child := &node.Children[i]
		switch child.XMLName.Local {
		case "r":
			b.WriteString(docxRunToHTML(child))
		case "hyperlink":
			inner := docxRunsToHTML(child, rels)
			href := ""
			if rel, ok := rels[child.attr("id")]; ok {
				href = rel.Target
			}
			if href != "" {
				fmt.Fprintf(&b, `<a href="%s">%s</a>`, href, inner)
			} else {
				b.WriteString(inner)
			}
		}
	}
	return b.String()
}

func docxRunToHTML(run *xmlNode) string {
	var text strings.Builder
	for i := range run.Children {
		child := &run.Children[i]
		switch child.XMLName.Local {
		case "t":
			text.WriteString(escapeHTML(child.text()))
		case "br":
			text.WriteString("<br/>")
		case "tab":
			text.WriteString(" ")
		}
	}
	s := text.String()
	if s == "" {
		return ""
	}

	if rPr := run.child("rPr"); rPr != nil {
		// w:b / w:i with val="false" or "0" explicitly turn formatting off.
		if formattingOn(rPr.child("i")) {
			s = "<em>" + s + "</em>"
		}
		if formattingOn(rPr.child("b")) {
			s = "<strong>" + s + "</strong>"
		}
	}
	return s
}

func formattingOn(node *xmlNode) bool {
	if node == nil {
		return false
	}
	switch node.attr("val") {
	case "false", "0", "none":
		return false
	}
	return true
}

func writeDocxTable(b *strings.Builder, tbl *xmlNode, rels map[string]ooxml.Relationship, headings map[string]int) {
	b.WriteString("<table>")
	for _, tr := range tbl.children("tr") {
		b.WriteString("<tr>")
		for _, tc := range tr.children("tc") {
			b.WriteString("<td>")
			for i := range tc.Children {
				node := &tc.Children[i]
				switch node.XMLName.Local {
				case "p":
					writeDocxParagraph(b, node, rels, headings)
				case "tbl":
					writeDocxTable(b, node, rels, headings)
				}
			}
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
}
