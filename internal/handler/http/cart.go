package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/store"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// CartHandler serves the cart view and its mutations.
type CartHandler struct {
	cart         *store.CartStore
	auth         *store.AuthStore
	catalog      Catalog
	money        *domain.MoneyFormatter
	requireLogin bool
	logger       *slog.Logger
}

// NewCartHandler creates a new cart view handler. When requireLogin is set,
// anonymous sessions may read the cart but not change it.
func NewCartHandler(
	cart *store.CartStore,
	auth *store.AuthStore,
	catalog Catalog,
	money *domain.MoneyFormatter,
	requireLogin bool,
	logger *slog.Logger,
) *CartHandler {
	return &CartHandler{
		cart:         cart,
		auth:         auth,
		catalog:      catalog,
		money:        money,
		requireLogin: requireLogin,
		logger:       logger,
	}
}

// AddItemRequest is the JSON request body for adding a product to the cart.
type AddItemRequest struct {
	ProductID int `json:"product_id" validate:"required,gt=0"`
}

// CartLineView is one rendered cart line.
type CartLineView struct {
	Product           domain.Product `json:"product"`
	Qty               int            `json:"qty"`
	Subtotal          json.Number    `json:"subtotal"`
	SubtotalFormatted string         `json:"subtotal_formatted"`
}

// CartView is the body of every cart endpoint.
type CartView struct {
	Lines          []CartLineView `json:"lines"`
	Count          int            `json:"count"`
	Unique         int            `json:"unique"`
	Total          json.Number    `json:"total"`
	TotalFormatted string         `json:"total_formatted"`
	Currency       string         `json:"currency"`
}

func (h *CartHandler) render(c domain.Cart) CartView {
	lines := make([]CartLineView, 0, len(c.Lines))
	for _, l := range c.Lines {
		sub := l.Subtotal().Round(domain.MoneyScale)
		lines = append(lines, CartLineView{
			Product:           l.Product,
			Qty:               l.Qty,
			Subtotal:          domain.AmountJSON(sub),
			SubtotalFormatted: h.money.Format(sub),
		})
	}
	total := c.Total()
	return CartView{
		Lines:          lines,
		Count:          c.Count(),
		Unique:         len(c.Lines),
		Total:          domain.AmountJSON(total),
		TotalFormatted: h.money.Format(total),
		Currency:       h.money.Currency(),
	}
}

// RequireSession rejects cart mutations from anonymous sessions when the
// login gate is enabled.
func (h *CartHandler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.requireLogin && r.Method != http.MethodGet && !h.auth.Session().Authenticated() {
			writeError(w, r, apperrors.Unauthorized("login required to change the cart"), h.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, h.render(h.cart.Snapshot()))
}

// AddItem handles POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	p, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, r, productLookupError(err, strconv.Itoa(req.ProductID)), h.logger)
		return
	}
	if err := validator.Validate(p); err != nil {
		writeError(w, r, apperrors.InvalidInput("catalog returned an invalid product"), h.logger)
		return
	}

	writeData(w, http.StatusOK, h.render(h.cart.Add(r.Context(), *p)))
}

// DecrementItem handles POST /api/cart/items/{productId}/decrement
func (h *CartHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}
	writeData(w, http.StatusOK, h.render(h.cart.Decrement(r.Context(), id)))
}

// RemoveItem handles DELETE /api/cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}
	writeData(w, http.StatusOK, h.render(h.cart.Remove(r.Context(), id)))
}

// ClearCart handles DELETE /api/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.render(h.cart.Clear(r.Context())))
}
