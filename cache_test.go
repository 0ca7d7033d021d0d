package convertmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(name string) Document {
	return Document{Name: name, Data: []byte(name)}
}

func TestReconcileReturnsUncachedInBatchOrder(t *testing.T) {
	c := NewResultCache()
	c.Put("b.docx", Outcome{Markdown: "# b"})

	pending := c.Reconcile([]Document{doc("a.pdf"), doc("b.docx"), doc("c.epub")})

	require.Len(t, pending, 2)
	assert.Equal(t, "a.pdf", pending[0].Name)
	assert.Equal(t, "c.epub", pending[1].Name)
}

func TestReconcileEvictsRemovedNames(t *testing.T) {
	c := NewResultCache()
	c.Put("a.pdf", Outcome{Markdown: "# a"})
	c.Put("b.docx", Outcome{Reason: "corrupt structure"})

	c.Reconcile([]Document{doc("b.docx")})

	_, ok := c.Get("a.pdf")
	assert.False(t, ok, "a.pdf should be evicted")
	assert.ElementsMatch(t, []string{"b.docx"}, c.Names())
}

func TestReconcileKeepsFailuresAsTerminal(t *testing.T) {
	c := NewResultCache()
	c.Put("bad.docx", Outcome{Reason: "corrupt structure"})

	pending := c.Reconcile([]Document{doc("bad.docx")})

	assert.Empty(t, pending, "a cached failure must not be scheduled again")
}

func TestReconcileRemovedThenReAddedIsFresh(t *testing.T) {
	c := NewResultCache()
	c.Put("a.pdf", Outcome{Markdown: "stale"})

	// a.pdf removed from the set...
	c.Reconcile([]Document{doc("b.docx")})
	// ...then re-added: it must be scheduled for conversion, not served stale.
	pending := c.Reconcile([]Document{doc("b.docx"), doc("a.pdf")})

	require.Len(t, pending, 2)
	assert.Equal(t, "b.docx", pending[0].Name)
	assert.Equal(t, "a.pdf", pending[1].Name)
}

func TestMergeReplacesOutcomes(t *testing.T) {
	c := NewResultCache()
	c.Put("a.pdf", Outcome{Reason: "first attempt failed"})

	c.Merge([]Result{{Name: "a.pdf", Outcome: Outcome{Markdown: "# a"}}})

	o, ok := c.Get("a.pdf")
	require.True(t, ok)
	assert.False(t, o.Failed())
	assert.Equal(t, "# a", o.Markdown)
}

func TestClear(t *testing.T) {
	c := NewResultCache()
	c.Put("a.pdf", Outcome{Markdown: "# a"})
	c.Clear()
	assert.Zero(t, c.Len())
}
