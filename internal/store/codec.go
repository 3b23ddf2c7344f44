package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/validator"
)

// Storage keys.
const (
	CartKey  = "sm_cart_v1"
	TokenKey = "sm_token"
	EmailKey = "sm_email"
	RoleKey  = "sm_role"
)

// encodeCart serialises lines as a JSON array of {product, qty}.
func encodeCart(c domain.Cart) (string, error) {
	lines := c.Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return "", fmt.Errorf("marshal cart: %w", err)
	}
	return string(data), nil
}

type storedLine struct {
	Product json.RawMessage `json:"product"`
	Qty     json.RawMessage `json:"qty"`
}

// decodeCart parses a stored cart. Anything that is not a JSON array yields
// an empty cart. Entries without a product id, with a non-numeric or
// non-positive quantity, or with an invalid product are dropped; repeated
// product ids are folded into the first line. The second result is the
// number of dropped entries.
func decodeCart(raw string) (domain.Cart, int) {
	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return domain.Cart{}, 0
	}

	var (
		cart    domain.Cart
		dropped int
	)
	for _, entry := range entries {
		line, ok := decodeLine(entry)
		if !ok {
			dropped++
			continue
		}
		if i := cart.FindLineIndex(line.Product.ID); i >= 0 {
			cart.Lines[i].Qty += line.Qty
			continue
		}
		cart.Lines = append(cart.Lines, line)
	}
	return cart, dropped
}

func decodeLine(entry json.RawMessage) (domain.CartLine, bool) {
	var sl storedLine
	if err := json.Unmarshal(entry, &sl); err != nil {
		return domain.CartLine{}, false
	}

	qty, ok := decodeQty(sl.Qty)
	if !ok {
		return domain.CartLine{}, false
	}

	if len(sl.Product) == 0 {
		return domain.CartLine{}, false
	}
	var p domain.Product
	if err := json.Unmarshal(sl.Product, &p); err != nil {
		return domain.CartLine{}, false
	}
	if err := validator.Validate(p); err != nil {
		return domain.CartLine{}, false
	}

	return domain.CartLine{Product: p, Qty: qty}, true
}

// decodeQty accepts only a bare JSON number holding a positive integer.
func decodeQty(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	if f < 1 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
