package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id int, price string) Product {
	return Product{ID: id, Name: "p", Price: decimal.RequireFromString(price)}
}

// ============================================================================
// Cart.Add Tests
// ============================================================================

func TestAdd_SameProductMerges(t *testing.T) {
	var c Cart
	p := product(1, "10")
	for i := 0; i < 5; i++ {
		c.Add(p)
	}

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 5, c.Lines[0].Qty)
}

func TestAdd_PreservesInsertionOrder(t *testing.T) {
	var c Cart
	c.Add(product(1, "1"))
	c.Add(product(2, "1"))
	c.Add(product(3, "1"))
	c.Add(product(1, "1"))

	require.Len(t, c.Lines, 3)
	assert.Equal(t, 1, c.Lines[0].Product.ID)
	assert.Equal(t, 2, c.Lines[0].Qty)
	assert.Equal(t, 2, c.Lines[1].Product.ID)
	assert.Equal(t, 3, c.Lines[2].Product.ID)
}

// ============================================================================
// Cart.Decrement Tests
// ============================================================================

func TestDecrement_LowersQuantity(t *testing.T) {
	var c Cart
	c.Add(product(1, "1"))
	c.Add(product(1, "1"))

	assert.True(t, c.Decrement(1))
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 1, c.Lines[0].Qty)
}

func TestDecrement_RemovesLineAtOne(t *testing.T) {
	var c Cart
	c.Add(product(1, "1"))
	c.Add(product(2, "1"))

	assert.True(t, c.Decrement(1))
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Product.ID)
}

func TestDecrement_AbsentIsNoop(t *testing.T) {
	var c Cart
	c.Add(product(1, "1"))
	before := c.Clone()

	assert.False(t, c.Decrement(99))
	assert.Equal(t, before, c.Clone())
}

// ============================================================================
// Cart.Remove / Clear Tests
// ============================================================================

func TestRemove_IgnoresQuantity(t *testing.T) {
	var c Cart
	for i := 0; i < 7; i++ {
		c.Add(product(1, "1"))
	}
	c.Add(product(2, "1"))

	assert.True(t, c.Remove(1))
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Product.ID)
	assert.False(t, c.Remove(1))
}

func TestClear_CountIsZero(t *testing.T) {
	var c Cart
	c.Add(product(1, "3.50"))
	c.Add(product(2, "1"))
	c.Clear()

	assert.Equal(t, 0, c.Count())
	assert.True(t, c.Total().IsZero())
}

// ============================================================================
// Cart.Total / Count Tests
// ============================================================================

func TestTotal_EmptyCart(t *testing.T) {
	var c Cart
	assert.True(t, c.Total().Equal(decimal.Zero))
	assert.Equal(t, 0, c.Count())
}

func TestTotal_MultipleLines(t *testing.T) {
	c := Cart{Lines: []CartLine{
		{Product: product(1, "10"), Qty: 2},
		{Product: product(2, "4.25"), Qty: 3},
	}}
	// 20 + 12.75
	assert.Equal(t, "32.75", c.Total().StringFixed(MoneyScale))
	assert.Equal(t, 5, c.Count())
}

func TestTotal_NoFloatDrift(t *testing.T) {
	c := Cart{Lines: []CartLine{{Product: product(1, "0.1"), Qty: 3}}}
	assert.Equal(t, "0.30", c.Total().StringFixed(MoneyScale))
}

func TestTotal_RoundsAtCurrencyBoundary(t *testing.T) {
	c := Cart{Lines: []CartLine{{Product: product(1, "0.333"), Qty: 3}}}
	// 0.999 rounds to 1.00
	assert.Equal(t, "1.00", c.Total().StringFixed(MoneyScale))
}

func TestWorkedExample(t *testing.T) {
	var c Cart
	a := product(1, "10")

	c.Add(a)
	c.Add(a)
	assert.Equal(t, 2, c.Count())
	assert.Equal(t, "20.00", c.Total().StringFixed(MoneyScale))

	c.Decrement(1)
	assert.Equal(t, 1, c.Count())

	c.Decrement(1)
	assert.Empty(t, c.Lines)
	assert.Equal(t, 0, c.Count())
}

func TestClone_DoesNotAlias(t *testing.T) {
	var c Cart
	c.Add(product(1, "1"))
	cp := c.Clone()

	c.Add(product(1, "1"))
	assert.Equal(t, 1, cp.Lines[0].Qty)
}
