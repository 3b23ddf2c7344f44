package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func product(id int, price string) domain.Product {
	return domain.Product{ID: id, Name: "Product", Price: decimal.RequireFromString(price)}
}

// failingKV wraps a memory store and fails writes while broken is set, or
// writes to failKey when it is non-empty.
type failingKV struct {
	*storage.Memory
	mu      sync.Mutex
	broken  bool
	failKey string
	writes  int
}

func newFailingKV() *failingKV {
	return &failingKV{Memory: storage.NewMemory()}
}

var errDiskFull = errors.New("disk full")

func (f *failingKV) setBroken(b bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broken = b
}

func (f *failingKV) failOn(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failKey = key
}

func (f *failingKV) fails(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	return f.broken || (f.failKey != "" && f.failKey == key)
}

func (f *failingKV) Set(ctx context.Context, key, value string) error {
	if f.fails(key) {
		return errDiskFull
	}
	return f.Memory.Set(ctx, key, value)
}

func (f *failingKV) Delete(ctx context.Context, key string) error {
	if f.fails(key) {
		return errDiskFull
	}
	return f.Memory.Delete(ctx, key)
}

func (f *failingKV) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

// mockAuthenticator is a testify mock of Authenticator.
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

func strPtr(s string) *string { return &s }
