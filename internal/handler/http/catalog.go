package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
)

// CatalogHandler serves the product list and detail views.
type CatalogHandler struct {
	catalog Catalog
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog view handler.
func NewCatalogHandler(catalog Catalog, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// ProductsKPIs summarises the products view.
type ProductsKPIs struct {
	Total      int `json:"total"`
	Filtered   int `json:"filtered"`
	Categories int `json:"categories"`
}

// ProductsView is the body of GET /api/products.
type ProductsView struct {
	Products   []domain.Product  `json:"products"`
	Categories []domain.Category `json:"categories"`
	KPIs       ProductsKPIs      `json:"kpis"`
}

// ListProducts handles GET /api/products?q=&category_id=
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := domain.ProductFilter{Query: r.URL.Query().Get("q")}
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, apperrors.InvalidInput("category_id must be an integer"), h.logger)
			return
		}
		filter.CategoryID = &id
	}

	ctx := r.Context()
	products, err := h.catalog.ListProducts(ctx)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	// The list still renders without categories.
	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		logger.WithContext(ctx, h.logger).WarnContext(ctx, "categories unavailable",
			slog.String("error", err.Error()),
		)
		categories = []domain.Category{}
	}

	filtered := domain.FilterProducts(products, filter)
	writeData(w, http.StatusOK, ProductsView{
		Products:   filtered,
		Categories: categories,
		KPIs: ProductsKPIs{
			Total:      len(products),
			Filtered:   len(filtered),
			Categories: len(categories),
		},
	})
}

// GetProduct handles GET /api/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	param := chi.URLParam(r, "id")
	id, ok := httputil.ParseID(w, param)
	if !ok {
		return
	}

	p, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, r, productLookupError(err, param), h.logger)
		return
	}
	writeData(w, http.StatusOK, p)
}

// productLookupError reports an upstream 404 as a missing product.
func productLookupError(err error, id string) error {
	var netErr *httpclient.NetworkError
	if errors.As(err, &netErr) && netErr.Status == http.StatusNotFound {
		return apperrors.NotFound("product", id)
	}
	return err
}
