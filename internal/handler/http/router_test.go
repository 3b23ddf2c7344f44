package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/storage"
	"github.com/utafrali/storefront/internal/store"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/httputil"
)

// ============================================================================
// Fakes
// ============================================================================

type fakeCatalog struct {
	products      []domain.Product
	categories    []domain.Category
	productsErr   error
	categoriesErr error
}

func (f *fakeCatalog) ListProducts(context.Context) ([]domain.Product, error) {
	if f.productsErr != nil {
		return nil, f.productsErr
	}
	return f.products, nil
}

func (f *fakeCatalog) ListCategories(context.Context) ([]domain.Category, error) {
	if f.categoriesErr != nil {
		return nil, f.categoriesErr
	}
	return f.categories, nil
}

func (f *fakeCatalog) GetProduct(_ context.Context, id int) (*domain.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, &httpclient.NetworkError{Method: "GET", Path: "/products/" + strconv.Itoa(id), Status: 404}
}

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) Login(ctx context.Context, creds domain.Credentials) (*domain.LoginResponse, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoginResponse), args.Error(1)
}

// ============================================================================
// Test helpers
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func sampleCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: []domain.Product{
			{ID: 1, Name: "Ceramic Mug", Description: strPtr("Holds coffee"), Price: decimal.RequireFromString("10"), CategoryID: intPtr(1)},
			{ID: 2, Name: "Desk Lamp", Price: decimal.RequireFromString("49.90"), Category: &domain.Category{ID: 2, Name: "Home"}},
			{ID: 3, Name: "Notebook", Description: strPtr("Dotted, A5"), Price: decimal.RequireFromString("7.25"), CategoryID: intPtr(3)},
		},
		categories: []domain.Category{{ID: 1, Name: "Kitchen"}, {ID: 2, Name: "Home"}, {ID: 3, Name: "Office"}},
	}
}

type testEnv struct {
	router  http.Handler
	catalog *fakeCatalog
	authn   *mockAuthenticator
	cart    *store.CartStore
	auth    *store.AuthStore
	kv      *storage.Memory
}

func setupRouter(t *testing.T, requireLogin bool) *testEnv {
	t.Helper()
	kv := storage.NewMemory()
	catalog := sampleCatalog()
	authn := &mockAuthenticator{}
	logger := testLogger()

	cartStore := store.NewCartStore(kv, logger)
	authStore := store.NewAuthStore(kv, authn, logger)
	money, err := domain.NewMoneyFormatter("ILS", "en")
	require.NoError(t, err)

	h := Handlers{
		Catalog: NewCatalogHandler(catalog, logger),
		Cart:    NewCartHandler(cartStore, authStore, catalog, money, requireLogin, logger),
		Auth:    NewAuthHandler(authStore, logger),
		Admin:   NewAdminHandler(authStore, catalog, logger),
	}
	return &testEnv{
		router:  NewRouter(h, health.NewHandler(time.Second), logger, nil),
		catalog: catalog,
		authn:   authn,
		cart:    cartStore,
		auth:    authStore,
		kv:      kv,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, role string) {
	t.Helper()
	creds := domain.Credentials{Email: "dana@example.com", Password: "secret"}
	resp := &domain.LoginResponse{Token: strPtr("tok"), User: &domain.LoginUser{Email: creds.Email}}
	if role != "" {
		resp.User.Role = strPtr(role)
	}
	e.authn.On("Login", mock.Anything, creds).Return(resp, nil).Once()
	_, err := e.auth.Login(context.Background(), creds)
	require.NoError(t, err)
}

// envelope mirrors httputil.Response with a typed payload.
type envelope[T any] struct {
	Data  T                       `json:"data"`
	Error *httputil.ErrorResponse `json:"error"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var out envelope[T]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "42",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}
