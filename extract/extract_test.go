package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildZip builds an in-memory zip from name -> content pairs.
func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestConverterAccepts(t *testing.T) {
	e := New()
	tests := []struct {
		name      string
		converter Converter
		info      StreamInfo
		want      bool
	}{
		{"pdf by ext", NewPDFConverter(), StreamInfo{Extension: ".pdf"}, true},
		{"pdf by mime", NewPDFConverter(), StreamInfo{MIMEType: "application/pdf"}, true},
		{"pdf wrong ext", NewPDFConverter(), StreamInfo{Extension: ".txt"}, false},
		{"docx by ext", NewDocxConverter(e), StreamInfo{Extension: ".docx"}, true},
		{"docx by mime", NewDocxConverter(e), StreamInfo{MIMEType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"}, true},
		{"pptx by ext", NewPptxConverter(), StreamInfo{Extension: ".pptx"}, true},
		{"xlsx by ext", NewXlsxConverter(), StreamInfo{Extension: ".xlsx"}, true},
		{"xls by ext", NewXlsConverter(), StreamInfo{Extension: ".xls"}, true},
		{"xls by mime", NewXlsConverter(), StreamInfo{MIMEType: "application/vnd.ms-excel"}, true},
		{"epub by ext", NewEpubConverter(e), StreamInfo{Extension: ".epub"}, true},
		{"epub by mime", NewEpubConverter(e), StreamInfo{MIMEType: "application/epub+zip"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.converter.Accepts(tt.info))
		})
	}
}

func TestConvertUnsupportedFormat(t *testing.T) {
	e := New()
	_, err := e.Convert(context.Background(), "notes.txt", []byte("plain text"))
	require.Error(t, err)
	assert.True(t, IsUnsupportedFormat(err))
}

func TestConvertCorruptPDFIsExtractionError(t *testing.T) {
	e := New()
	_, err := e.Convert(context.Background(), "broken.pdf", []byte("not a pdf at all"))
	require.Error(t, err)

	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, "pdf", extractionErr.Format)
}

func TestConvertXlsx(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Name"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Age"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Ada"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 36))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	md, err := New().Convert(context.Background(), "people.xlsx", buf.Bytes())
	require.NoError(t, err)

	assert.Contains(t, md, "## Sheet1")
	assert.Contains(t, md, "| Name | Age |")
	assert.Contains(t, md, "| Ada | 36 |")
}

const docxDocumentXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"
            xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
 <w:body>
  <w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Quarterly Report</w:t></w:r></w:p>
  <w:p><w:r><w:rPr><w:b/></w:rPr><w:t>Revenue</w:t></w:r><w:r><w:t xml:space="preserve"> grew by 12%.</w:t></w:r></w:p>
  <w:p><w:hyperlink r:id="rId1"><w:r><w:t>details</w:t></w:r></w:hyperlink></w:p>
  <w:tbl>
   <w:tr><w:tc><w:p><w:r><w:t>Region</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Total</w:t></w:r></w:p></w:tc></w:tr>
   <w:tr><w:tc><w:p><w:r><w:t>EMEA</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>41</w:t></w:r></w:p></w:tc></w:tr>
  </w:tbl>
 </w:body>
</w:document>`

const docxStylesXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
 <w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/></w:style>
</w:styles>`

const docxRelsXML = `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
 <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="https://example.com/report" TargetMode="External"/>
</Relationships>`

func TestConvertDocx(t *testing.T) {
	data := buildZip(t, map[string]string{
		"word/document.xml":            docxDocumentXML,
		"word/styles.xml":              docxStylesXML,
		"word/_rels/document.xml.rels": docxRelsXML,
	})

	md, err := New().Convert(context.Background(), "report.docx", data)
	require.NoError(t, err)

	assert.Contains(t, md, "# Quarterly Report")
	assert.Contains(t, md, "**Revenue**")
	assert.Contains(t, md, "grew by 12%")
	assert.Contains(t, md, "[details](https://example.com/report)")
	assert.Contains(t, md, "EMEA")
}

const pptxPresentationXML = `<?xml version="1.0" encoding="UTF-8"?>
<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"
                xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
 <p:sldIdLst><p:sldId id="256" r:id="rId2"/></p:sldIdLst>
</p:presentation>`

const pptxPresentationRels = `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
 <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide1.xml"/>
</Relationships>`

const pptxSlideXML = `<?xml version="1.0" encoding="UTF-8"?>
<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"
       xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
 <p:cSld><p:spTree>
  <p:sp>
   <p:nvSpPr><p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr>
   <p:txBody><a:p><a:r><a:t>Roadmap 2026</a:t></a:r></a:p></p:txBody>
  </p:sp>
  <p:sp>
   <p:nvSpPr><p:nvPr/></p:nvSpPr>
   <p:txBody><a:p><a:r><a:t>Ship the batch converter</a:t></a:r></a:p></p:txBody>
  </p:sp>
 </p:spTree></p:cSld>
</p:sld>`

func TestConvertPptx(t *testing.T) {
	data := buildZip(t, map[string]string{
		"ppt/presentation.xml":            pptxPresentationXML,
		"ppt/_rels/presentation.xml.rels": pptxPresentationRels,
		"ppt/slides/slide1.xml":           pptxSlideXML,
	})

	md, err := New().Convert(context.Background(), "deck.pptx", data)
	require.NoError(t, err)

	assert.Contains(t, md, "<!-- Slide 1 -->")
	assert.Contains(t, md, "# Roadmap 2026")
	assert.Contains(t, md, "Ship the batch converter")
}

const epubContainerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
 <rootfiles><rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/></rootfiles>
</container>`

const epubOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" xmlns:dc="http://purl.org/dc/elements/1.1/" version="3.0">
 <metadata>
  <dc:title>The Test Book</dc:title>
  <dc:creator>Jane Doe</dc:creator>
  <dc:language>en</dc:language>
 </metadata>
 <manifest>
  <item id="ch1" href="chapter1.xhtml" media-type="application/xhtml+xml"/>
 </manifest>
 <spine><itemref idref="ch1"/></spine>
</package>`

const epubChapter = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
 <head><title>Chapter 1</title></head>
 <body><h1>Chapter 1</h1><p>It began with a batch of documents.</p></body>
</html>`

func TestConvertEpub(t *testing.T) {
	data := buildZip(t, map[string]string{
		"META-INF/container.xml": epubContainerXML,
		"OEBPS/content.opf":      epubOPF,
		"OEBPS/chapter1.xhtml":   epubChapter,
	})

	md, err := New().Convert(context.Background(), "book.epub", data)
	require.NoError(t, err)

	assert.Contains(t, md, "# The Test Book")
	assert.Contains(t, md, "**Authors:** Jane Doe")
	assert.Contains(t, md, "**Language:** en")
	assert.Contains(t, md, "# Chapter 1")
	assert.Contains(t, md, "It began with a batch of documents.")
}

func TestExtensions(t *testing.T) {
	assert.Equal(t, []string{".pdf", ".docx", ".pptx", ".xlsx", ".xls", ".epub"}, Extensions())
}
