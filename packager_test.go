package convertmd

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readArchive(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	entries := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		entries[f.Name] = string(content)
	}
	return entries
}

func archiveEntryOrder(t *testing.T, data []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	names := make([]string, len(zr.File))
	for i, f := range zr.File {
		names[i] = f.Name
	}
	return names
}

func TestDeliverableSingleSuccess(t *testing.T) {
	c := NewResultCache()
	c.Put("report.pdf", Outcome{Markdown: "# Report"})

	d, err := BuildDeliverable([]Document{doc("report.pdf")}, c)
	require.NoError(t, err)

	assert.Equal(t, DeliverableMarkdown, d.Kind)
	assert.Equal(t, "report.md", d.Filename)
	assert.Equal(t, "# Report", string(d.Content))
	assert.Empty(t, d.Failures)
}

func TestDeliverableSingleFailure(t *testing.T) {
	c := NewResultCache()
	c.Put("bad.docx", Outcome{Reason: "corrupt structure"})

	d, err := BuildDeliverable([]Document{doc("bad.docx")}, c)
	require.NoError(t, err)

	assert.Equal(t, DeliverableNone, d.Kind)
	assert.Empty(t, d.Content)
	require.Len(t, d.Failures, 1)
	assert.Equal(t, "bad.docx: corrupt structure", d.Failures[0].String())
}

func TestDeliverableBatchAllSuccesses(t *testing.T) {
	c := NewResultCache()
	c.Put("a.pdf", Outcome{Markdown: "# a"})
	c.Put("b.docx", Outcome{Markdown: "# b"})

	d, err := BuildDeliverable([]Document{doc("a.pdf"), doc("b.docx")}, c)
	require.NoError(t, err)

	assert.Equal(t, DeliverableArchive, d.Kind)
	assert.Equal(t, ArchiveName, d.Filename)
	assert.Empty(t, d.Failures)
	assert.Equal(t, map[string]string{"a.md": "# a", "b.md": "# b"}, readArchive(t, d.Content))
}

func TestDeliverableBatchPartialSuccess(t *testing.T) {
	c := NewResultCache()
	c.Put("a.pdf", Outcome{Markdown: "# a"})
	c.Put("bad.docx", Outcome{Reason: "unsupported structure"})

	d, err := BuildDeliverable([]Document{doc("a.pdf"), doc("bad.docx")}, c)
	require.NoError(t, err)

	assert.Equal(t, DeliverableArchive, d.Kind)
	assert.Equal(t, map[string]string{"a.md": "# a"}, readArchive(t, d.Content))
	require.Len(t, d.Failures, 1)
	assert.Equal(t, Failure{Name: "bad.docx", Reason: "unsupported structure"}, d.Failures[0])
}

func TestDeliverableBatchOrderPreserved(t *testing.T) {
	c := NewResultCache()
	c.Put("y.pdf", Outcome{Markdown: "# y"})
	c.Put("x.docx", Outcome{Reason: "broken"})
	c.Put("z.xlsx", Outcome{Markdown: "# z"})

	d, err := BuildDeliverable([]Document{doc("y.pdf"), doc("x.docx"), doc("z.xlsx")}, c)
	require.NoError(t, err)

	assert.Equal(t, []string{"y.md", "z.md"}, archiveEntryOrder(t, d.Content))
}

func TestDeliverableStemCollisionGetsSuffix(t *testing.T) {
	c := NewResultCache()
	c.Put("report.pdf", Outcome{Markdown: "from pdf"})
	c.Put("report.docx", Outcome{Markdown: "from docx"})

	d, err := BuildDeliverable([]Document{doc("report.pdf"), doc("report.docx")}, c)
	require.NoError(t, err)

	entries := readArchive(t, d.Content)
	assert.Equal(t, "from pdf", entries["report.md"])
	assert.Equal(t, "from docx", entries["report-2.md"])
}

func TestDeliverableBatchAllFailures(t *testing.T) {
	c := NewResultCache()
	c.Put("a.pdf", Outcome{Reason: "broken"})
	c.Put("b.docx", Outcome{Reason: "also broken"})

	d, err := BuildDeliverable([]Document{doc("a.pdf"), doc("b.docx")}, c)
	require.NoError(t, err)

	assert.Equal(t, DeliverableNone, d.Kind)
	assert.Empty(t, d.Content)
	assert.Len(t, d.Failures, 2)
}

func TestDeliverableEmptyBatch(t *testing.T) {
	d, err := BuildDeliverable(nil, NewResultCache())
	require.NoError(t, err)
	assert.Equal(t, DeliverableNone, d.Kind)
	assert.Empty(t, d.Failures)
}

func TestDocumentStem(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"report.pdf", "report"},
		{"archive.tar.gz", "archive.tar"},
		{"noext", "noext"},
		{"dir/nested.docx", "nested"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Document{Name: tt.name}.Stem())
	}
}
