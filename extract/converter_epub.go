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
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/nicholasgasior/convertmd-go/internal/ooxml"
)

// EpubConverter handles EPUB files: a metadata header followed by the spine
// chapters in reading order, each rendered through the HTML renderer.
type EpubConverter struct {
	engine *Engine
}

// NewEpubConverter creates a new EpubConverter.
func NewEpubConverter(e *Engine) *EpubConverter {
	return &EpubConverter{engine: e}
}

func (c *EpubConverter) Accepts(info StreamInfo) bool {
	if info.Extension == ".epub" {
		return true
	}
	mime := strings.ToLower(info.MIMEType)
	return strings.HasPrefix(mime, "application/epub") ||
		strings.HasPrefix(mime, "application/x-epub+zip")
}

func (c *EpubConverter) Convert(reader io.ReadSeeker, info StreamInfo) (*Result, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read EPUB: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open EPUB ZIP: %w", err)
	}

	opfPath, err := findOPFPath(zr)
	if err != nil {
		return nil, fmt.Errorf("find OPF: %w", err)
	}

	pkg, err := parseOPF(zr, opfPath)
	if err != nil {
		return nil, fmt.Errorf("parse OPF: %w", err)
	}

	var md strings.Builder
	writeEpubMetadata(&md, pkg.metadata)

	keep := false
	if c.engine != nil {
		keep = c.engine.keepDataURIs
	}
	renderer := htmlRenderer{keepDataURIs: keep}

	opfDir := path.Dir(opfPath)
	for _, idref := range pkg.spine {
		item, ok := pkg.manifest[idref]
		if !ok {
			continue
		}

		filePath := item.href
		if opfDir != "." && !strings.HasPrefix(filePath, "/") {
			filePath = opfDir + "/" + filePath
		}

		fileData, err := ooxml.ReadFile(zr, filePath)
		if err != nil {
			continue
		}

		ext := strings.ToLower(path.Ext(filePath))
		isHTML := ext == ".html" || ext == ".htm" || ext == ".xhtml" ||
			strings.Contains(item.mediaType, "html") || strings.Contains(item.mediaType, "xhtml")
		if !isHTML {
			continue
		}

		result, err := renderer.render(decodeText(fileData, ""))
		if err == nil && strings.TrimSpace(result.Markdown) != "" {
			md.WriteString(result.Markdown)
			md.WriteString("\n\n")
		}
	}

	return &Result{Markdown: md.String(), Title: pkg.metadata.title}, nil
}

type epubMetadata struct {
	title       string
	authors     []string
	language    string
	publisher   string
	date        string
	description string
}

type epubItem struct {
	href      string
	mediaType string
}

type epubPackage struct {
	metadata epubMetadata
	manifest map[string]epubItem
	spine    []string
}

func writeEpubMetadata(md *strings.Builder, meta epubMetadata) {
	if meta.title != "" {
		fmt.Fprintf(md, "# %s\n\n", meta.title)
	}
	if len(meta.authors) > 0 {
		fmt.Fprintf(md, "**Authors:** %s\n\n", strings.Join(meta.authors, ", "))
	}
	if meta.language != "" {
		fmt.Fprintf(md, "**Language:** %s\n\n", meta.language)
	}
	if meta.publisher != "" {
		fmt.Fprintf(md, "**Publisher:** %s\n\n", meta.publisher)
	}
	if meta.date != "" {
		fmt.Fprintf(md, "**Date:** %s\n\n", meta.date)
	}
	if meta.description != "" {
		fmt.Fprintf(md, "**Description:** %s\n\n", meta.description)
	}
}

// findOPFPath locates the package document via META-INF/container.xml.
func findOPFPath(zr *zip.Reader) (string, error) {
	data, err := ooxml.ReadFile(zr, "META-INF/container.xml")
	if err != nil {
		return "", err
	}

	var container struct {
		Rootfiles []struct {
			FullPath string `xml:"full-path,attr"`
		} `xml:"rootfiles>rootfile"`
	}
	if err := xml.Unmarshal(data, &container); err != nil {
		return "", fmt.Errorf("parse container.xml: %w", err)
	}
	if len(container.Rootfiles) == 0 || container.Rootfiles[0].FullPath == "" {
		return "", fmt.Errorf("container.xml lists no rootfile")
	}
	return container.Rootfiles[0].FullPath, nil
}

// parseOPF reads the package document: Dublin Core metadata, the manifest of
// content items, and the spine giving reading order.
func parseOPF(zr *zip.Reader, opfPath string) (*epubPackage, error) {
	data, err := ooxml.ReadFile(zr, opfPath)
	if err != nil {
		return nil, err
	}

	var doc struct {
		Metadata struct {
			Titles      []string `xml:"title"`
			Creators    []string `xml:"creator"`
			Language    string   `xml:"language"`
			Publisher   string   `xml:"publisher"`
			Date        string   `xml:"date"`
			Description string   `xml:"description"`
		} `xml:"metadata"`
		Manifest struct {
			Items []struct {
				ID        string `xml:"id,attr"`
				Href      string `xml:"href,attr"`
				MediaType string `xml:"media-type,attr"`
			} `xml:"item"`
		} `xml:"manifest"`
		Spine struct {
			ItemRefs []struct {
				IDRef string `xml:"idref,attr"`
			} `xml:"itemref"`
		} `xml:"spine"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse package document: %w", err)
	}

	pkg := &epubPackage{manifest: make(map[string]epubItem, len(doc.Manifest.Items))}
	if len(doc.Metadata.Titles) > 0 {
		pkg.metadata.title = strings.TrimSpace(doc.Metadata.Titles[0])
	}
	for _, creator := range doc.Metadata.Creators {
		if creator = strings.TrimSpace(creator); creator != "" {
			pkg.metadata.authors = append(pkg.metadata.authors, creator)
		}
	}
	pkg.metadata.language = strings.TrimSpace(doc.Metadata.Language)
	pkg.metadata.publisher = strings.TrimSpace(doc.Metadata.Publisher)
	pkg.metadata.date = strings.TrimSpace(doc.Metadata.Date)
	pkg.metadata.description = strings.TrimSpace(doc.Metadata.Description)

	for _, item := range doc.Manifest.Items {
		pkg.manifest[item.ID] = epubItem{href: item.Href, mediaType: item.MediaType}
	}
	for _, ref := range doc.Spine.ItemRefs {
		pkg.spine = append(pkg.spine, ref.IDRef)
	}

	return pkg, nil
}
