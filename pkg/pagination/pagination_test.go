package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveClampsPages(t *testing.T) {
	page := Resolve(99, 12, 30)
	assert.Equal(t, 3, page.Number)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 24, page.Offset())
	assert.False(t, page.HasNext)
	assert.True(t, page.HasPrevious)

	page = Resolve(-4, 12, 30)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 0, page.Offset())
	assert.True(t, page.HasNext)
	assert.False(t, page.HasPrevious)
}

func TestResolveEmptyListing(t *testing.T) {
	page := Resolve(5, 10, 0)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 1, page.TotalPages)
	assert.False(t, page.HasNext)
	assert.False(t, page.HasPrevious)
}

func TestNormalizeLimitAndParsePage(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, MaxLimit, NormalizeLimit(1000))
	assert.Equal(t, 7, NormalizeLimit(7))

	assert.Equal(t, 1, ParsePage(""))
	assert.Equal(t, 1, ParsePage("abc"))
	assert.Equal(t, 1, ParsePage("0"))
	assert.Equal(t, 4, ParsePage(" 4 "))
}
