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
	"sort"
	"strings"

	"github.com/nicholasgasior/convertmd-go/internal/ooxml"
)

// PptxConverter handles PPTX files: slides in presentation order, one
// markdown section per slide, with title placeholders as headings, text
// frames as paragraphs, tables, and speaker notes.
type PptxConverter struct{}

// NewPptxConverter creates a new PptxConverter.
func NewPptxConverter() *PptxConverter {
	return &PptxConverter{}
}

func (c *PptxConverter) Accepts(info StreamInfo) bool {
	if info.Extension == ".pptx" {
		return true
	}
	mime := strings.ToLower(info.MIMEType)
	return strings.HasPrefix(mime, "application/vnd.openxmlformats-officedocument.presentationml")
}

func (c *PptxConverter) Convert(reader io.ReadSeeker, info StreamInfo) (*Result, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read PPTX: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open PPTX ZIP: %w", err)
	}

	slides, err := slidePaths(zr)
	if err != nil {
		return nil, fmt.Errorf("resolve slide order: %w", err)
	}

	var md strings.Builder
	for i, slidePath := range slides {
		slideData, err := ooxml.ReadFile(zr, slidePath)
		if err != nil {
			continue
		}

		fmt.Fprintf(&md, "\n\n<!-- Slide %d -->\n", i+1)
		md.WriteString(renderSlide(slideData))

		if notes := slideNotes(zr, slidePath); notes != "" {
			md.WriteString("\n\n### Notes:\n")
			md.WriteString(notes)
		}
	}

	return &Result{Markdown: strings.TrimSpace(md.String())}, nil
}

// slidePaths returns slide part paths in presentation order, resolved from
// the sldId list in presentation.xml via its relationships. When either part
// is unreadable, slides fall back to name order.
func slidePaths(zr *zip.Reader) ([]string, error) {
	presData, err := ooxml.ReadFile(zr, "ppt/presentation.xml")
	if err == nil {
		rels, relErr := ooxml.ParseRelationships(zr, "ppt/_rels/presentation.xml.rels")
		if relErr == nil {
			if root, parseErr := parseXMLTree(presData); parseErr == nil {
				var paths []string
				for _, sldID := range root.descendants("sldId") {
					rid := relationshipID(sldID)
					rel, ok := rels[rid]
					if !ok {
						continue
					}
					paths = append(paths, ooxml.ResolveTarget("ppt/presentation.xml", rel.Target))
				}
				if len(paths) > 0 {
					return paths, nil
				}
			}
		}
	}

	var paths []string
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			paths = append(paths, f.Name)
		}
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no slides found")
	}
	return paths, nil
}

// relationshipID returns the r:id attribute of a node.
func relationshipID(n *xmlNode) string {
	for _, a := range n.Attrs {
		if a.Name.Local == "id" && strings.Contains(a.Name.Space, "relationships") {
			return a.Value
		}
	}
	return ""
}

// renderSlide extracts the textual content of one slide.
func renderSlide(slideData []byte) string {
	root, err := parseXMLTree(slideData)
	if err != nil {
		return ""
	}

	var md strings.Builder
	var walk func(n *xmlNode)
	walk = func(n *xmlNode) {
		switch n.XMLName.Local {
		case "sp":
			writeShape(&md, n)
		case "graphicFrame":
			if tbl := n.descendant("tbl"); tbl != nil {
				md.WriteString(renderSlideTable(tbl))
			}
		default:
			for i := range n.Children {
				walk(&n.Children[i])
			}
		}
	}
	walk(root)

	return md.String()
}

// writeShape renders a text shape. Title placeholders become headings.
func writeShape(md *strings.Builder, sp *xmlNode) {
	text := shapeText(sp)
	if text == "" {
		return
	}
	if isTitlePlaceholder(sp) {
		md.WriteString("# " + strings.ReplaceAll(text, "\n", " ") + "\n")
		return
	}
	md.WriteString(text + "\n")
}

// shapeText joins the shape's paragraphs with newlines, each paragraph being
// the concatenation of its text runs.
func shapeText(sp *xmlNode) string {
	txBody := sp.descendant("txBody")
	if txBody == nil {
		return ""
	}
	var paragraphs []string
	for _, p := range txBody.children("p") {
		var runs []string
		for _, t := range p.descendants("t") {
			runs = append(runs, t.text())
		}
		if line := strings.TrimSpace(strings.Join(runs, "")); line != "" {
			paragraphs = append(paragraphs, line)
		}
	}
	return strings.Join(paragraphs, "\n")
}

// isTitlePlaceholder checks the shape's placeholder type for title/ctrTitle.
func isTitlePlaceholder(sp *xmlNode) bool {
	ph := sp.descendant("ph")
	if ph == nil {
		return false
	}
	switch ph.attr("type") {
	case "title", "ctrTitle":
		return true
	}
	return false
}

// renderSlideTable renders an a:tbl element as a markdown table.
func renderSlideTable(tbl *xmlNode) string {
	var rows [][]string
	for _, tr := range tbl.children("tr") {
		var cells []string
		for _, tc := range tr.children("tc") {
			var runs []string
			for _, t := range tc.descendants("t") {
				runs = append(runs, t.text())
			}
			cells = append(cells, strings.Join(runs, " "))
		}
		rows = append(rows, cells)
	}
	return renderMarkdownTable(rows)
}

// slideNotes returns the speaker notes for a slide, if any.
func slideNotes(zr *zip.Reader, slidePath string) string {
	rels, err := ooxml.ParseRelationships(zr, ooxml.RelsPath(slidePath))
	if err != nil {
		return ""
	}

	for _, rel := range rels {
		if !strings.Contains(rel.Type, "notesSlide") {
			continue
		}
		notesPath := ooxml.ResolveTarget(slidePath, rel.Target)
		notesData, err := ooxml.ReadFile(zr, notesPath)
		if err != nil {
			return ""
		}
		root, err := parseXMLTree(notesData)
		if err != nil {
			return ""
		}
		var lines []string
		for _, p := range root.descendants("p") {
			var runs []string
			for _, t := range p.descendants("t") {
				runs = append(runs, t.text())
			}
			if line := strings.TrimSpace(strings.Join(runs, "")); line != "" {
				lines = append(lines, line)
			}
		}
		return strings.Join(lines, "\n")
	}
	return ""
}
