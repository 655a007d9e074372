package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                       string
		page, size                 int
		wantPage, wantOff, wantLim int
	}{
		{"defaults", 0, 0, 1, 0, DefaultPageSize},
		{"second page", 2, 10, 2, 10, 10},
		{"size capped", 1, 500, 1, 0, MaxPageSize},
		{"negative page", -3, 5, 1, 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, off, lim := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.wantPage, p)
			assert.Equal(t, tt.wantOff, off)
			assert.Equal(t, tt.wantLim, lim)
		})
	}
}

func TestNewMeta(t *testing.T) {
	t.Parallel()

	m := NewMeta(2, 12, 12, 30)
	assert.Equal(t, int64(3), m.TotalPages)
	assert.True(t, m.HasPrev)
	assert.True(t, m.HasNext)

	m = NewMeta(3, 24, 12, 30)
	assert.False(t, m.HasNext)

	m = NewMeta(1, 0, 12, 0)
	assert.Zero(t, m.TotalPages)
	assert.False(t, m.HasPrev)
	assert.False(t, m.HasNext)
}

func TestParseIntDefault(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 7, ParseIntDefault("", 7))
	assert.Equal(t, 7, ParseIntDefault("abc", 7))
	assert.Equal(t, 3, ParseIntDefault("3", 7))
}
