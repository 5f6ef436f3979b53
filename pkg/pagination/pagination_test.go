package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 0, p.Offset)
}

func TestFromRequest_Defaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	p := FromRequest(req)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 0, p.Offset)
}

func TestFromRequest_CustomValues(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/products?page=3&per_page=50", nil)
	p := FromRequest(req)

	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 50, p.PerPage)
	assert.Equal(t, 100, p.Offset) // (3-1) * 50
}

func TestFromRequest_InvalidValues(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/products?page=-1&per_page=500", nil)
	p := FromRequest(req)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
}

func TestNewResult(t *testing.T) {
	data := []string{"a", "b", "c"}
	r := NewResult(data, 7, Params{Page: 1, PerPage: 3})

	assert.Equal(t, 7, r.TotalCount)
	assert.Equal(t, 3, r.TotalPages)
	assert.True(t, r.HasNext)
	assert.False(t, r.HasPrev)
}

func TestNewResult_NilData(t *testing.T) {
	r := NewResult[string](nil, 0, Params{Page: 1, PerPage: 10})
	assert.NotNil(t, r.Data)
	assert.Empty(t, r.Data)
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, Slice(items, Params{Offset: 0, PerPage: 2}))
	assert.Equal(t, []int{5}, Slice(items, Params{Offset: 4, PerPage: 2}))
	assert.Empty(t, Slice(items, Params{Offset: 10, PerPage: 2}))
}
