package convertmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSingleDocument(t *testing.T) {
	conv := newCountingConverter()
	s := NewSession(conv)

	d, err := s.SetDocuments(context.Background(), []Document{doc("report.pdf")})
	require.NoError(t, err)

	assert.Equal(t, DeliverableMarkdown, d.Kind)
	assert.Equal(t, "report.md", d.Filename)
	assert.Equal(t, "# report.pdf", string(d.Content))
}

func TestSessionUnchangedSetConvertsNothing(t *testing.T) {
	conv := newCountingConverter()
	s := NewSession(conv)
	docs := []Document{doc("a.pdf"), doc("b.docx")}

	_, err := s.SetDocuments(context.Background(), docs)
	require.NoError(t, err)
	_, err = s.SetDocuments(context.Background(), docs)
	require.NoError(t, err)

	assert.Equal(t, 1, conv.callCount("a.pdf"))
	assert.Equal(t, 1, conv.callCount("b.docx"))
}

func TestSessionConvertsOnlyDelta(t *testing.T) {
	conv := newCountingConverter()
	s := NewSession(conv)

	_, err := s.SetDocuments(context.Background(), []Document{doc("a.pdf")})
	require.NoError(t, err)

	d, err := s.SetDocuments(context.Background(), []Document{doc("a.pdf"), doc("b.docx")})
	require.NoError(t, err)

	assert.Equal(t, 1, conv.callCount("a.pdf"))
	assert.Equal(t, 1, conv.callCount("b.docx"))
	assert.Equal(t, DeliverableArchive, d.Kind)
	assert.Len(t, readArchive(t, d.Content), 2)
}

func TestSessionRemovalEvictsAndShrinksOutput(t *testing.T) {
	conv := newCountingConverter()
	s := NewSession(conv)

	_, err := s.SetDocuments(context.Background(), []Document{doc("a.pdf"), doc("b.docx")})
	require.NoError(t, err)

	d, err := s.SetDocuments(context.Background(), []Document{doc("b.docx")})
	require.NoError(t, err)

	// Down to one document: direct markdown again, not an archive.
	assert.Equal(t, DeliverableMarkdown, d.Kind)
	assert.Equal(t, "b.md", d.Filename)
	assert.Equal(t, []string{"b.docx"}, s.Documents())
}

func TestSessionFailedDocumentIsNotRetried(t *testing.T) {
	conv := newCountingConverter()
	conv.fail["bad.docx"] = errors.New("corrupt structure")
	s := NewSession(conv)
	docs := []Document{doc("a.pdf"), doc("bad.docx")}

	d, err := s.SetDocuments(context.Background(), docs)
	require.NoError(t, err)
	require.Len(t, d.Failures, 1)

	// Same set again: the failure is cached as terminal.
	_, err = s.SetDocuments(context.Background(), docs)
	require.NoError(t, err)
	assert.Equal(t, 1, conv.callCount("bad.docx"))
}

func TestSessionRemoveReAddRetries(t *testing.T) {
	conv := newCountingConverter()
	conv.fail["flaky.pdf"] = errors.New("transient")
	s := NewSession(conv)

	_, err := s.SetDocuments(context.Background(), []Document{doc("flaky.pdf")})
	require.NoError(t, err)

	// Remove, fix the input, re-add: fresh conversion.
	_, err = s.SetDocuments(context.Background(), nil)
	require.NoError(t, err)
	delete(conv.fail, "flaky.pdf")

	d, err := s.SetDocuments(context.Background(), []Document{doc("flaky.pdf")})
	require.NoError(t, err)

	assert.Equal(t, 2, conv.callCount("flaky.pdf"))
	assert.Equal(t, DeliverableMarkdown, d.Kind)
}

func TestSessionDuplicateNamesRejected(t *testing.T) {
	s := NewSession(newCountingConverter())

	_, err := s.SetDocuments(context.Background(), []Document{doc("a.pdf"), doc("a.pdf")})
	require.Error(t, err)
	assert.True(t, IsDuplicateName(err))
}

func TestSessionClear(t *testing.T) {
	conv := newCountingConverter()
	s := NewSession(conv)

	_, err := s.SetDocuments(context.Background(), []Document{doc("a.pdf")})
	require.NoError(t, err)

	s.Clear()
	assert.Empty(t, s.Documents())

	// Re-adding after clear converts again: the cache is gone.
	_, err = s.SetDocuments(context.Background(), []Document{doc("a.pdf")})
	require.NoError(t, err)
	assert.Equal(t, 2, conv.callCount("a.pdf"))
}

func TestSessionProgressReachesTotal(t *testing.T) {
	conv := newCountingConverter()
	var last [2]int
	s := NewSession(conv, WithProgress(func(done, total int) {
		last = [2]int{done, total}
	}), WithWorkers(2))

	_, err := s.SetDocuments(context.Background(), []Document{doc("a.pdf"), doc("b.docx"), doc("c.epub")})
	require.NoError(t, err)

	assert.Equal(t, [2]int{3, 3}, last)
}

func TestFormats(t *testing.T) {
	assert.Equal(t, []string{"PDF", "Word", "PowerPoint", "Excel", "EPUB"}, Formats())
}
