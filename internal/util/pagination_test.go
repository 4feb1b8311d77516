package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		page, size         int
		wantOffset, wantLn int
	}{
		{page: 1, size: 10, wantOffset: 0, wantLn: 10},
		{page: 3, size: 10, wantOffset: 20, wantLn: 10},
		{page: 0, size: 0, wantOffset: 0, wantLn: DefaultPageSize},
		{page: 2, size: 1000, wantOffset: DefaultPageSize, wantLn: DefaultPageSize},
	}
	for _, tt := range tests {
		offset, limit := Calculate(tt.page, tt.size)
		assert.Equal(t, tt.wantOffset, offset)
		assert.Equal(t, tt.wantLn, limit)
	}
}

func TestMeta(t *testing.T) {
	t.Parallel()

	m := Meta(2, 10, 25)
	assert.EqualValues(t, 3, m.TotalPages)
	assert.True(t, m.HasPrev)
	assert.True(t, m.HasNext)

	m = Meta(3, 10, 25)
	assert.False(t, m.HasNext)

	assert.Equal(t, 7, ParseIntDefault("7", 1))
	assert.Equal(t, 1, ParseIntDefault("x", 1))
	assert.Equal(t, 1, ParseIntDefault("", 1))
}
