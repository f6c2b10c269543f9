// Package paging holds the pageNumber/pageSize convention used by list endpoints.
package paging

import "math"

const (
	DefaultSize = 20
	MaxSize     = 100
)

type Params struct {
	Number int
	Size   int
}

// Normalize clamps a request to page >= 1 and 1 <= size <= MaxSize. Page
// numbers past the point where the offset would overflow are pulled back to it.
func Normalize(number, size int) Params {
	if size < 1 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	if number < 1 {
		number = 1
	}
	if maxNumber := math.MaxInt / size; number > maxNumber {
		number = maxNumber
	}
	return Params{Number: number, Size: size}
}

func (p Params) Offset() int {
	return (p.Number - 1) * p.Size
}

func (p Params) TotalPages(total int) int {
	if p.Size <= 0 {
		return 0
	}
	return (total + p.Size - 1) / p.Size
}
