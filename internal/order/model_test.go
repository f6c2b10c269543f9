package order

import (
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := map[string]struct {
		in     string
		want   Status
		wantOK bool
	}{
		"exact":        {in: "Shipped", want: StatusShipped, wantOK: true},
		"lower case":   {in: "cancelled", want: StatusCancelled, wantOK: true},
		"padded upper": {in: "  PROCESSING ", want: StatusProcessing, wantOK: true},
		"unknown":      {in: "Refunded", wantOK: false},
		"empty":        {in: "", wantOK: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := ParseStatus(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStockEffect(t *testing.T) {
	assert.Equal(t, 1, StockEffect(StatusPending, StatusCancelled))
	assert.Equal(t, 1, StockEffect(StatusDelivered, StatusCancelled))
	assert.Equal(t, -1, StockEffect(StatusCancelled, StatusProcessing))
	assert.Equal(t, 0, StockEffect(StatusCancelled, StatusCancelled))
	assert.Equal(t, 0, StockEffect(StatusPending, StatusShipped))
	assert.Equal(t, 0, StockEffect(StatusDelivered, StatusPending))
}

func TestNewOrderNumber(t *testing.T) {
	now := time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC)
	n := NewOrderNumber(now)

	assert.Regexp(t, regexp.MustCompile(`^ORD-20240309-[0-9A-F]{8}$`), n)
	assert.NotEqual(t, n, NewOrderNumber(now))
}

func TestPriceLines(t *testing.T) {
	a := CartLine{ProductID: 1, ProductName: "A", Price: decimal.NewFromInt(100), Stock: 5, IsActive: true, Quantity: 2}
	b := CartLine{ProductID: 2, ProductName: "B", Price: decimal.NewFromInt(50), Stock: 1, IsActive: true, Quantity: 2}

	t.Run("insufficient line rejects everything", func(t *testing.T) {
		items, total, violations := PriceLines([]CartLine{a, b})
		assert.Nil(t, items)
		assert.True(t, total.IsZero())
		assert.Equal(t, []string{"Insufficient stock for B. Available: 1, Requested: 2"}, violations)
	})

	t.Run("all violations reported", func(t *testing.T) {
		inactive := a
		inactive.IsActive = false
		_, _, violations := PriceLines([]CartLine{inactive, b})
		require.Len(t, violations, 2)
		assert.Equal(t, "Product 1 is no longer available", violations[0])
	})

	t.Run("prices snapshot and total", func(t *testing.T) {
		b1 := b
		b1.Quantity = 1
		items, total, violations := PriceLines([]CartLine{a, b1})
		require.Empty(t, violations)
		require.Len(t, items, 2)
		assert.True(t, items[0].Subtotal.Equal(decimal.NewFromInt(200)))
		assert.True(t, items[1].Subtotal.Equal(decimal.NewFromInt(50)))
		assert.True(t, total.Equal(decimal.NewFromInt(250)), "total %s", total)
	})

	t.Run("fractional prices keep cents", func(t *testing.T) {
		c := CartLine{ProductID: 3, ProductName: "C", Price: decimal.RequireFromString("19.99"), Stock: 10, IsActive: true, Quantity: 3}
		_, total, _ := PriceLines([]CartLine{c})
		assert.Equal(t, "59.97", total.StringFixed(2))
	})
}
