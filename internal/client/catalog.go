package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/utafrali/storefront/internal/domain"
)

// Catalog reads products and categories. The session token, if any, is
// sent as a bearer token.
type Catalog struct {
	base
}

// NewCatalog creates a catalog client rooted at baseURL.
func NewCatalog(doer HTTPDoer, baseURL string, token TokenSource) *Catalog {
	return &Catalog{base: newBase(doer, baseURL, token)}
}

// ListProducts fetches GET /products.
func (c *Catalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var out listOf[domain.Product]
	if err := c.call(ctx, http.MethodGet, "/products", nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// ListCategories fetches GET /categories.
func (c *Catalog) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var out listOf[domain.Category]
	if err := c.call(ctx, http.MethodGet, "/categories", nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// GetProduct fetches GET /products/{id}.
func (c *Catalog) GetProduct(ctx context.Context, id int) (*domain.Product, error) {
	var p domain.Product
	if err := c.call(ctx, http.MethodGet, "/products/"+strconv.Itoa(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func nonNil[T any](l listOf[T]) []T {
	if l == nil {
		return []T{}
	}
	return l
}
