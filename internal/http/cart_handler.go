package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fjod/go_cart/shop-cart/internal/cart"
	"github.com/fjod/go_cart/shop-cart/internal/domain"
	"github.com/fjod/go_cart/shop-cart/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CartHandler struct {
	sessions    Sessions
	maxBodySize int64
	log         *slog.Logger
}

func NewCartHandler(sessions Sessions, maxBodySize int64, log *slog.Logger) *CartHandler {
	return &CartHandler{
		sessions:    sessions,
		maxBodySize: maxBodySize,
		log:         log,
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
}

type UpdateQuantityRequestDTO struct {
	Delta *int `json:"delta"`
}

type CartItemResponse struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type CartResponse struct {
	SessionID     string             `json:"session_id"`
	Items         []CartItemResponse `json:"items"`
	TotalQuantity int                `json:"total_quantity"`
	TotalPrice    decimal.Decimal    `json:"total_price"`
}

type SessionResponse struct {
	SessionID string `json:"session_id"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	store := getStore(r.Context())
	respondJSON(w, http.StatusOK, convertCart(getSessionID(r.Context()), store.State()))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	store := getStore(r.Context())

	var req AddItemRequestDTO
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodySize)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	if err := store.AddItem(r.Context(), req.ProductID); err != nil {
		h.handleCartError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, convertCart(getSessionID(r.Context()), store.State()))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	store := getStore(r.Context())

	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodySize)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Delta == nil {
		respondError(w, http.StatusBadRequest, "invalid_delta", "delta is required")
		return
	}

	if err := store.UpdateQuantity(r.Context(), productID, *req.Delta); err != nil {
		h.handleCartError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, convertCart(getSessionID(r.Context()), store.State()))
}

func (h *CartHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	id, _ := h.sessions.Open()
	w.Header().Set(SessionHeader, id)
	respondJSON(w, http.StatusCreated, SessionResponse{SessionID: id})
}

func (h *CartHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing_session", SessionHeader+" header is required")
		return
	}

	if err := h.sessions.End(id); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			respondError(w, http.StatusNotFound, "session_not_found", "session not found or expired")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) handleCartError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, cart.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
	case errors.Is(err, cart.ErrLineItemNotFound):
		respondError(w, http.StatusNotFound, "item_not_found", "item not found in cart")
	case errors.Is(err, cart.ErrQuantityOverflow):
		respondError(w, http.StatusBadRequest, "quantity_overflow", "quantity out of range")
	default:
		h.log.ErrorContext(r.Context(), "cart action failed", slog.Any("err", err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func convertCart(sessionID string, state domain.State) CartResponse {
	items := state.Items()
	resp := CartResponse{
		SessionID:     sessionID,
		Items:         make([]CartItemResponse, len(items)),
		TotalQuantity: state.TotalQuantity(),
		TotalPrice:    state.TotalPrice(),
	}

	for i, item := range items {
		resp.Items[i] = CartItemResponse{
			ProductID: item.ID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal(),
		}
	}

	return resp
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", slog.Any("err", err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
