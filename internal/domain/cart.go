package domain

import "github.com/shopspring/decimal"

// MoneyScale is the number of fractional digits totals are rounded to.
const MoneyScale = 2

// CartLine pairs a product with the quantity the shopper intends to buy.
// Qty is always at least 1.
type CartLine struct {
	Product Product `json:"product"`
	Qty     int     `json:"qty"`
}

// Subtotal returns unit price times quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Qty)))
}

// Cart is an ordered list of lines holding at most one line per product id.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// FindLineIndex returns the index of the line for productID, or -1.
func (c *Cart) FindLineIndex(productID int) int {
	for i := range c.Lines {
		if c.Lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

// Add increments the line for p in place, or appends a new line with qty 1.
func (c *Cart) Add(p Product) {
	if i := c.FindLineIndex(p.ID); i >= 0 {
		c.Lines[i].Qty++
		return
	}
	c.Lines = append(c.Lines, CartLine{Product: p, Qty: 1})
}

// Decrement lowers the quantity of the line for productID by one and drops
// the line once it reaches zero. It reports whether a line was found.
func (c *Cart) Decrement(productID int) bool {
	i := c.FindLineIndex(productID)
	if i < 0 {
		return false
	}
	if c.Lines[i].Qty-1 <= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		return true
	}
	c.Lines[i].Qty--
	return true
}

// Remove drops the line for productID regardless of its quantity.
func (c *Cart) Remove(productID int) bool {
	i := c.FindLineIndex(productID)
	if i < 0 {
		return false
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Lines = nil
}

// Total returns the sum of line subtotals rounded to MoneyScale.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total.Round(MoneyScale)
}

// Count returns the total number of units across all lines.
func (c *Cart) Count() int {
	var n int
	for _, l := range c.Lines {
		n += l.Qty
	}
	return n
}

// Clone returns a cart backed by a fresh line slice.
func (c *Cart) Clone() Cart {
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Lines: lines}
}
