package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectedQuote(t *testing.T) {
	part := Part{
		PartQuotes: []PartQuote{
			{ID: "pq_1", UnitPrice: 1000},
			{ID: "pq_2", UnitPrice: 900},
		},
	}

	_, ok := part.SelectedQuote()
	assert.False(t, ok)

	selected := "pq_2"
	part.SelectedPartQuoteID = &selected
	quote, ok := part.SelectedQuote()
	require.True(t, ok)
	assert.Equal(t, "pq_2", quote.ID)
	assert.Equal(t, int64(900), quote.UnitPrice)

	dangling := "pq_gone"
	part.SelectedPartQuoteID = &dangling
	_, ok = part.SelectedQuote()
	assert.False(t, ok)
}

func TestPatchStates(t *testing.T) {
	unchanged := Unchanged[string]()
	assert.True(t, unchanged.IsUnchanged())
	assert.False(t, unchanged.IsSet())
	assert.False(t, unchanged.IsCleared())
	_, ok := unchanged.Value()
	assert.False(t, ok)

	set := Set("pq_1")
	assert.True(t, set.IsSet())
	assert.False(t, set.IsUnchanged())
	v, ok := set.Value()
	assert.True(t, ok)
	assert.Equal(t, "pq_1", v)

	cleared := Clear[string]()
	assert.True(t, cleared.IsCleared())
	assert.False(t, cleared.IsSet())
	_, ok = cleared.Value()
	assert.False(t, ok)
}

func TestPatchZeroValueIsUnchanged(t *testing.T) {
	var p Patch[FileReference]
	assert.True(t, p.IsUnchanged())
}
