package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDocument() *Document {
	doc := NewDocument([]string{"name", "amount"})
	_ = doc.AppendRow([]string{"alpha", "1"})
	_ = doc.AppendRow([]string{"beta", "2"})
	doc.BoundPath = "/tmp/test.csv"
	return doc
}

func TestDocument_Clone_Independent(t *testing.T) {
	doc := newTestDocument()
	require.NoError(t, doc.SetFormat("amount", FormatSpec{Kind: "number", Decimals: 2}))

	clone := doc.Clone()
	require.True(t, doc.Equal(clone))

	// Mutating the clone must not leak into the original.
	require.NoError(t, clone.SetCell(0, 0, "changed"))
	clone.Columns[1] = "renamed"
	clone.Formats["amount"] = FormatSpec{Kind: "currency"}

	assert.Equal(t, "alpha", doc.Rows[0][0])
	assert.Equal(t, "amount", doc.Columns[1])
	assert.Equal(t, "number", doc.Formats["amount"].Kind)
}

func TestDocument_Clone_Nil(t *testing.T) {
	var doc *Document
	assert.Nil(t, doc.Clone())
}

func TestDocument_SetCell_OutOfRange(t *testing.T) {
	doc := newTestDocument()

	assert.Error(t, doc.SetCell(5, 0, "x"))
	assert.Error(t, doc.SetCell(0, 5, "x"))
	assert.Error(t, doc.SetCell(-1, 0, "x"))
}

func TestDocument_InsertAndDeleteRow(t *testing.T) {
	doc := newTestDocument()

	require.NoError(t, doc.InsertRow(1, []string{"inserted"}))
	require.Len(t, doc.Rows, 3)
	assert.Equal(t, []string{"inserted", ""}, doc.Rows[1])
	assert.Equal(t, "beta", doc.Rows[2][0])

	require.NoError(t, doc.DeleteRow(1))
	require.Len(t, doc.Rows, 2)
	assert.Equal(t, "beta", doc.Rows[1][0])

	assert.Error(t, doc.DeleteRow(9))
	assert.Error(t, doc.InsertRow(0, []string{"a", "b", "c"}), "row wider than the document")
}

func TestDocument_ColumnOperations(t *testing.T) {
	doc := newTestDocument()

	require.NoError(t, doc.AppendColumn("status", "new"))
	assert.Equal(t, []string{"name", "amount", "status"}, doc.Columns)
	assert.Equal(t, "new", doc.Rows[0][2])

	assert.Error(t, doc.AppendColumn("status", ""), "duplicate column")
	assert.Error(t, doc.AppendColumn("", ""), "empty column name")

	require.NoError(t, doc.SetFormat("status", FormatSpec{Kind: "text", Bold: true}))
	require.NoError(t, doc.RenameColumn("status", "state"))
	assert.True(t, doc.Formats["state"].Bold, "format follows the renamed column")
	_, ok := doc.Formats["status"]
	assert.False(t, ok)

	require.NoError(t, doc.DeleteColumn("state"))
	assert.Equal(t, []string{"name", "amount"}, doc.Columns)
	assert.Len(t, doc.Rows[0], 2)
	assert.Error(t, doc.DeleteColumn("state"))
}

func TestDocument_Equal(t *testing.T) {
	a := newTestDocument()
	b := newTestDocument()
	require.True(t, a.Equal(b))

	// Dirty flag is session state, not content.
	b.Dirty = true
	assert.True(t, a.Equal(b))

	require.NoError(t, b.SetCell(1, 1, "9"))
	assert.False(t, a.Equal(b))
}

func TestSnapshot_DocumentReturnsCopy(t *testing.T) {
	doc := newTestDocument()
	snap := NewSnapshot("id-1", "baseline", doc)

	// Mutating the source after capture must not change the snapshot.
	require.NoError(t, doc.SetCell(0, 0, "mutated"))

	restored := snap.Document()
	assert.Equal(t, "alpha", restored.Rows[0][0])

	// Each call hands out independent storage.
	restored.Rows[0][0] = "scribbled"
	again := snap.Document()
	assert.Equal(t, "alpha", again.Rows[0][0])
}
