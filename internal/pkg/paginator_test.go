package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginateFirstPage(t *testing.T) {
	p := Paginate(1, 10, 23)

	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 3, p.NumPages)
	assert.Equal(t, 0, p.Offset())
	assert.False(t, p.HasPrev())
	assert.True(t, p.HasNext())
}

func TestPaginateLastPage(t *testing.T) {
	p := Paginate(3, 10, 23)

	assert.Equal(t, 3, p.Number)
	assert.Equal(t, 20, p.Offset())
	assert.True(t, p.HasPrev())
	assert.False(t, p.HasNext())
}

// 越界页码收敛到最近的有效页
func TestPaginateClamp(t *testing.T) {
	cases := []struct {
		name   string
		number int
		total  int64
		want   int
	}{
		{"below range", 0, 23, 1},
		{"negative", -5, 23, 1},
		{"above range", 99, 23, 3},
		{"exact last", 3, 30, 3},
		{"past exact last", 4, 30, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Paginate(tc.number, 10, tc.total).Number)
		})
	}
}

// 空结果集视为一个空页而不是报错
func TestPaginateEmpty(t *testing.T) {
	p := Paginate(5, 10, 0)

	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 1, p.NumPages)
	assert.False(t, p.HasNext())
	assert.False(t, p.HasPrev())
}

func TestPaginateSizeFallback(t *testing.T) {
	p := Paginate(1, 0, 5)
	assert.Equal(t, 10, p.Size)
}
