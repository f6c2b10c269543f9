package paging

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, Params{Number: 1, Size: DefaultSize}, Normalize(0, 0))
	assert.Equal(t, Params{Number: 3, Size: 5}, Normalize(3, 5))
	assert.Equal(t, Params{Number: 1, Size: MaxSize}, Normalize(-2, 1000))
}

func TestNormalize_HugePageNumber(t *testing.T) {
	for _, size := range []int{0, 1, 20, MaxSize} {
		p := Normalize(math.MaxInt, size)
		assert.GreaterOrEqual(t, p.Offset(), 0, "size %d", size)
		assert.Equal(t, math.MaxInt/p.Size, p.Number)
	}
}

func TestOffsetAndTotalPages(t *testing.T) {
	p := Normalize(3, 20)
	assert.Equal(t, 40, p.Offset())
	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(20))
	assert.Equal(t, 2, p.TotalPages(21))
}
