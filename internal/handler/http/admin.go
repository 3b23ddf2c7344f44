package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/store"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// AdminHandler serves the admin stub. Access is decided from the client
// session role only; the catalog API enforces real permissions.
type AdminHandler struct {
	auth    *store.AuthStore
	catalog Catalog
	logger  *slog.Logger
}

// NewAdminHandler creates a new admin view handler.
func NewAdminHandler(auth *store.AuthStore, catalog Catalog, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{auth: auth, catalog: catalog, logger: logger}
}

// AdminProductsView is the body of GET /api/admin/products.
type AdminProductsView struct {
	Products []domain.Product `json:"products"`
	Count    int              `json:"count"`
}

// RequireAdmin answers 403 unless the current session is an admin.
func (h *AdminHandler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.auth.Session().IsAdmin() {
			writeError(w, r, apperrors.Forbidden("no access"), h.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListProducts handles GET /api/admin/products
func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, AdminProductsView{Products: products, Count: len(products)})
}
