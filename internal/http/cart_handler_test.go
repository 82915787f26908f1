package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fjod/go_cart/shop-cart/internal/cart"
	"github.com/fjod/go_cart/shop-cart/internal/catalog"
	"github.com/fjod/go_cart/shop-cart/internal/domain"
	"github.com/fjod/go_cart/shop-cart/internal/metrics"
	"github.com/fjod/go_cart/shop-cart/internal/session"
	"github.com/fjod/go_cart/shop-cart/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler  http.Handler
	sessions *session.Registry
}

func setupServer(t *testing.T) *testServer {
	t.Helper()

	products, err := catalog.New([]domain.Product{
		{ID: 1, Title: "Shirt", Price: decimal.NewFromInt(20), Image: "shirt.jpg", Description: "Cotton shirt"},
		{ID: 2, Title: "Hat", Price: decimal.RequireFromString("7.50"), Image: "hat.jpg", Description: "Sun hat"},
	})
	require.NoError(t, err)

	sessions := session.NewRegistry(func() *cart.Store { return cart.NewStore(products) })
	t.Cleanup(func() { sessions.Close() })

	return &testServer{
		handler: NewRouter(RouterConfig{
			Catalog:            products,
			Sessions:           sessions,
			Metrics:            metrics.New(),
			Logger:             logger.Nop(),
			RequestTimeout:     5 * time.Second,
			MaxRequestBodySize: 1 << 20,
		}),
		sessions: sessions,
	}
}

func (s *testServer) do(t *testing.T, method, path, sessionID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if sessionID != "" {
		req.Header.Set(SessionHeader, sessionID)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) CartResponse {
	t.Helper()
	var resp CartResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestGetCart_NewSessionWhenHeaderMissing(t *testing.T) {
	srv := setupServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/cart", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	sessionID := rec.Header().Get(SessionHeader)
	assert.NotEmpty(t, sessionID)
	assert.Equal(t, 1, srv.sessions.Len())

	resp := decodeCart(t, rec)
	assert.Equal(t, sessionID, resp.SessionID)
	assert.NotNil(t, resp.Items)
	assert.Empty(t, resp.Items)
	assert.Equal(t, 0, resp.TotalQuantity)
	assert.True(t, resp.TotalPrice.IsZero())
}

func TestGetCart_UnknownSession(t *testing.T) {
	srv := setupServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/cart", "nonexistent", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "session_not_found", decodeError(t, rec).Code)
}

func TestCart_Scenarios(t *testing.T) {
	srv := setupServer(t)
	sessionID, _ := srv.sessions.Open()

	// A
	rec := srv.do(t, http.MethodPost, "/api/v1/cart/items", sessionID, AddItemRequestDTO{ProductID: 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeCart(t, rec)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(1), resp.Items[0].ProductID)
	assert.Equal(t, "Shirt", resp.Items[0].Name)
	assert.True(t, decimal.NewFromInt(20).Equal(resp.Items[0].Price))
	assert.Equal(t, 1, resp.Items[0].Quantity)

	// B
	rec = srv.do(t, http.MethodPost, "/api/v1/cart/items", sessionID, AddItemRequestDTO{ProductID: 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	resp = decodeCart(t, rec)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 2, resp.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(40).Equal(resp.TotalPrice))

	// C
	rec = srv.do(t, http.MethodPatch, "/api/v1/cart/items/1", sessionID, map[string]int{"delta": -2})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeCart(t, rec).Items)

	// D
	rec = srv.do(t, http.MethodPost, "/api/v1/cart/items", sessionID, AddItemRequestDTO{ProductID: 999})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "product_not_found", decodeError(t, rec).Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/cart", sessionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeCart(t, rec).Items)
}

func TestAddItem_Totals(t *testing.T) {
	srv := setupServer(t)
	sessionID, _ := srv.sessions.Open()

	srv.do(t, http.MethodPost, "/api/v1/cart/items", sessionID, AddItemRequestDTO{ProductID: 1})
	srv.do(t, http.MethodPost, "/api/v1/cart/items", sessionID, AddItemRequestDTO{ProductID: 2})
	rec := srv.do(t, http.MethodPost, "/api/v1/cart/items", sessionID, AddItemRequestDTO{ProductID: 2})
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeCart(t, rec)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, 3, resp.TotalQuantity)
	assert.True(t, decimal.NewFromInt(35).Equal(resp.TotalPrice), "got %s", resp.TotalPrice)
	assert.True(t, decimal.NewFromInt(15).Equal(resp.Items[1].Subtotal))
}

func TestAddItem_InvalidBody(t *testing.T) {
	srv := setupServer(t)
	sessionID, _ := srv.sessions.Open()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewBufferString("{not json"))
	req.Header.Set(SessionHeader, sessionID)
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", decodeError(t, rec).Code)
}

func TestAddItem_InvalidProductID(t *testing.T) {
	srv := setupServer(t)
	sessionID, _ := srv.sessions.Open()

	rec := srv.do(t, http.MethodPost, "/api/v1/cart/items", sessionID, AddItemRequestDTO{ProductID: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_product_id", decodeError(t, rec).Code)
}

func TestUpdateQuantity_ItemNotInCart(t *testing.T) {
	srv := setupServer(t)
	sessionID, _ := srv.sessions.Open()

	rec := srv.do(t, http.MethodPatch, "/api/v1/cart/items/2", sessionID, map[string]int{"delta": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "item_not_found", decodeError(t, rec).Code)
}

func TestUpdateQuantity_MissingDelta(t *testing.T) {
	srv := setupServer(t)
	sessionID, _ := srv.sessions.Open()
	srv.do(t, http.MethodPost, "/api/v1/cart/items", sessionID, AddItemRequestDTO{ProductID: 1})

	rec := srv.do(t, http.MethodPatch, "/api/v1/cart/items/1", sessionID, map[string]int{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_delta", decodeError(t, rec).Code)
}

func TestUpdateQuantity_InvalidProductID(t *testing.T) {
	srv := setupServer(t)
	sessionID, _ := srv.sessions.Open()

	rec := srv.do(t, http.MethodPatch, "/api/v1/cart/items/abc", sessionID, map[string]int{"delta": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_product_id", decodeError(t, rec).Code)
}

func TestUpdateQuantity_Increment(t *testing.T) {
	srv := setupServer(t)
	sessionID, _ := srv.sessions.Open()
	srv.do(t, http.MethodPost, "/api/v1/cart/items", sessionID, AddItemRequestDTO{ProductID: 2})

	rec := srv.do(t, http.MethodPatch, "/api/v1/cart/items/2", sessionID, map[string]int{"delta": 3})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeCart(t, rec)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 4, resp.Items[0].Quantity)
}

func TestUpdateQuantity_OverflowingDelta(t *testing.T) {
	srv := setupServer(t)
	sessionID, _ := srv.sessions.Open()
	srv.do(t, http.MethodPost, "/api/v1/cart/items", sessionID, AddItemRequestDTO{ProductID: 1})

	body := fmt.Sprintf(`{"delta":%d}`, math.MaxInt64)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/1", bytes.NewBufferString(body))
	req.Header.Set(SessionHeader, sessionID)
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "quantity_overflow", decodeError(t, rec).Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/cart", sessionID, nil)
	resp := decodeCart(t, rec)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 1, resp.Items[0].Quantity)
}

func TestRouter_ZeroLimitsFallBackToDefaults(t *testing.T) {
	products := catalog.Default()
	sessions := session.NewRegistry(func() *cart.Store { return cart.NewStore(products) })
	t.Cleanup(func() { sessions.Close() })

	handler := NewRouter(RouterConfig{
		Catalog:  products,
		Sessions: sessions,
		Logger:   logger.Nop(),
	})

	sessionID, _ := sessions.Open()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewBufferString(`{"product_id":1}`))
	req.Header.Set(SessionHeader, sessionID)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, decodeCart(t, rec).Items, 1)
}

func TestRequestTimeout_ZeroUsesDefault(t *testing.T) {
	var ctxErr error
	var deadline time.Time
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxErr = r.Context().Err()
		deadline, _ = r.Context().Deadline()
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	requestTimeout(0)(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, ctxErr)
	assert.WithinDuration(t, time.Now().Add(defaultRequestTimeout), deadline, time.Second)
}

func TestSessions_OpenAndEnd(t *testing.T) {
	srv := setupServer(t)

	rec := srv.do(t, http.MethodPost, "/api/v1/sessions", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp SessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.SessionID)
	assert.Equal(t, resp.SessionID, rec.Header().Get(SessionHeader))

	rec = srv.do(t, http.MethodDelete, "/api/v1/sessions/current", resp.SessionID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/cart", resp.SessionID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodDelete, "/api/v1/sessions/current", resp.SessionID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEndSession_MissingHeader(t *testing.T) {
	srv := setupServer(t)

	rec := srv.do(t, http.MethodDelete, "/api/v1/sessions/current", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_session", decodeError(t, rec).Code)
}

func TestRequestIDEchoed(t *testing.T) {
	srv := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	srv := setupServer(t)
	sessionID, _ := srv.sessions.Open()
	srv.do(t, http.MethodPost, "/api/v1/cart/items", sessionID, AddItemRequestDTO{ProductID: 1})

	rec := srv.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "shopcart_http_requests_total")
}
