package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPage_TotalPages(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{25, 10, 3},
		{100, 1, 100},
	}
	for _, tc := range cases {
		p := NewPage([]int{}, tc.total, 1, tc.limit)
		assert.Equal(t, tc.want, p.TotalPages, "total=%d limit=%d", tc.total, tc.limit)
	}
}

func TestNewPage_EmptyDataIsNotNil(t *testing.T) {
	p := NewPage[string](nil, 0, 1, 20)
	assert.NotNil(t, p.Data)
	assert.Empty(t, p.Data)
	assert.Equal(t, 0, p.TotalPages)
}

func TestListQuery_EntityFilters(t *testing.T) {
	q := ListQuery{Role: "hr", BlogID: "b1"}
	assert.Equal(t, map[string]string{"role": "hr", "blogId": "b1"}, q.EntityFilters())
	assert.Empty(t, ListQuery{}.EntityFilters())
}
