package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/storage"
	"github.com/utafrali/storefront/pkg/logger"
)

// CartStore owns the shopper's cart. Every mutation runs to completion,
// including its storage write, before the next one starts.
type CartStore struct {
	mu     sync.Mutex
	cart   domain.Cart
	kv     storage.KV
	logger *slog.Logger
}

// NewCartStore creates an empty cart store backed by kv. Call Load to rehydrate.
func NewCartStore(kv storage.KV, logger *slog.Logger) *CartStore {
	return &CartStore{kv: kv, logger: logger}
}

// Load replaces the in-memory cart with the stored one. A missing key
// leaves the cart empty. Malformed entries are dropped.
func (s *CartStore) Load(ctx context.Context) error {
	raw, err := s.kv.Get(ctx, CartKey)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("load cart: %w", err)
	}

	cart, dropped := decodeCart(raw)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = cart
	cartLines.Set(float64(len(cart.Lines)))

	if dropped > 0 {
		s.logger.WarnContext(ctx, "dropped malformed cart entries",
			slog.Int("dropped", dropped),
			slog.Int("kept", len(cart.Lines)),
		)
	}
	return nil
}

// Add puts one more unit of p in the cart.
func (s *CartStore) Add(ctx context.Context, p domain.Product) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Add(p)
	s.commit(ctx, "add")

	logger.WithContext(ctx, s.logger).DebugContext(ctx, "cart line added",
		slog.Int("product_id", p.ID),
		slog.Int("count", s.cart.Count()),
	)
	return s.cart.Clone()
}

// Decrement takes one unit of productID out of the cart, dropping the line
// at zero. An absent product leaves the cart untouched.
func (s *CartStore) Decrement(ctx context.Context, productID int) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cart.Decrement(productID) {
		s.commit(ctx, "decrement")
	}
	return s.cart.Clone()
}

// Remove drops the line for productID whatever its quantity.
func (s *CartStore) Remove(ctx context.Context, productID int) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cart.Remove(productID) {
		s.commit(ctx, "remove")
	}
	return s.cart.Clone()
}

// Clear empties the cart.
func (s *CartStore) Clear(ctx context.Context) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Clear()
	s.commit(ctx, "clear")
	return s.cart.Clone()
}

// Snapshot returns a copy of the current cart.
func (s *CartStore) Snapshot() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// Total is recomputed from the current lines on every call.
func (s *CartStore) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Total()
}

// Count is recomputed from the current lines on every call.
func (s *CartStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Count()
}

// commit persists the cart. Must be called with s.mu held. Storage failures
// are logged and swallowed; the in-memory cart stays authoritative.
func (s *CartStore) commit(ctx context.Context, op string) {
	cartMutationsTotal.WithLabelValues(op).Inc()
	cartLines.Set(float64(len(s.cart.Lines)))

	raw, err := encodeCart(s.cart)
	if err == nil {
		// The mutation is already applied in memory; storage must follow it
		// even when the caller has gone away.
		err = s.kv.Set(context.WithoutCancel(ctx), CartKey, raw)
	}
	if err != nil {
		persistFailuresTotal.WithLabelValues("cart").Inc()
		logger.WithContext(ctx, s.logger).ErrorContext(ctx, "failed to persist cart",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
	}
}
