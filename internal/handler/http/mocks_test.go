package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/addressbook/internal/domain"
	"github.com/utafrali/addressbook/internal/service"
	"github.com/utafrali/addressbook/pkg/middleware"
)

const (
	validToken = "valid-token"
	testUserID = "6f1c7d52-0d55-4b3e-9d36-2b8f4f2f8c11"
)

// --- Mock services ---

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) SignUp(ctx context.Context, input service.CredentialsInput) (*domain.Identity, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, input service.CredentialsInput) (*domain.SessionToken, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SessionToken), args.Error(1)
}

type mockAddressBook struct {
	mock.Mock
}

func (m *mockAddressBook) AddAddress(ctx context.Context, identityRef string, input service.AddAddressInput) ([]domain.Address, error) {
	args := m.Called(ctx, identityRef, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Address), args.Error(1)
}

func (m *mockAddressBook) ListAddresses(ctx context.Context, identityRef string) ([]domain.Address, error) {
	args := m.Called(ctx, identityRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Address), args.Error(1)
}

type mockRecentSearches struct {
	mock.Mock
}

func (m *mockRecentSearches) Record(ctx context.Context, identityRef string, input service.RecordSearchInput) ([]domain.RecentSearchEntry, error) {
	args := m.Called(ctx, identityRef, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RecentSearchEntry), args.Error(1)
}

func (m *mockRecentSearches) List(ctx context.Context, identityRef string) ([]domain.RecentSearchEntry, error) {
	args := m.Called(ctx, identityRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RecentSearchEntry), args.Error(1)
}

func (m *mockRecentSearches) Clear(ctx context.Context, identityRef string) error {
	args := m.Called(ctx, identityRef)
	return args.Error(0)
}

// --- Helpers ---

type testRouter struct {
	handler  http.Handler
	auth     *mockAuthenticator
	book     *mockAddressBook
	searches *mockRecentSearches
}

func stubVerify(token string) (string, error) {
	if token == validToken {
		return testUserID, nil
	}
	return "", errors.New("signature is invalid")
}

func newTestRouter(t *testing.T, opts ...func(*RouterConfig)) *testRouter {
	t.Helper()
	tr := &testRouter{
		auth:     new(mockAuthenticator),
		book:     new(mockAddressBook),
		searches: new(mockRecentSearches),
	}
	cfg := RouterConfig{
		ServiceName: "addressbook-test",
		Auth:        tr.auth,
		Book:        tr.book,
		Searches:    tr.searches,
		Verify:      stubVerify,
		CORS:        middleware.DefaultCORSConfig(),
		Logger:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	tr.handler = NewRouter(cfg)
	t.Cleanup(func() {
		tr.auth.AssertExpectations(t)
		tr.book.AssertExpectations(t)
		tr.searches.AssertExpectations(t)
	})
	return tr
}

func (tr *testRouter) do(method, path, body, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	tr.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	env := decodeEnvelope(t, rec)
	require.Nil(t, env.Error, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func (tr *testRouter) doRaw(method, path, body, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	tr.handler.ServeHTTP(rec, req)
	return rec
}
