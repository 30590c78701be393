package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/cart"
	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/domain"
)

type CartHandler struct {
	engine  *cart.Engine
	timeout time.Duration
}

func NewCartHandler(engine *cart.Engine, timeout time.Duration) *CartHandler {
	return &CartHandler{
		engine:  engine,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"imageUrl"`
}

type CartResponseDTO struct {
	Items    []domain.CartLine `json:"items"`
	Count    int               `json:"count"`
	Subtotal decimal.Decimal   `json:"subtotal"`
}

func cartResponse(c domain.Cart) CartResponseDTO {
	items := c.Lines
	if items == nil {
		items = []domain.CartLine{}
	}
	return CartResponseDTO{
		Items:    items,
		Count:    c.Count(),
		Subtotal: cart.Subtotal(c),
	}
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be positive")
		return
	}

	updated, err := h.engine.Add(ctx, domain.CartLine{
		ProductID: req.ProductID,
		Name:      req.Name,
		UnitPrice: req.Price,
		Quantity:  req.Quantity,
		ImageURL:  req.ImageURL,
	})
	if err != nil {
		respondFailure(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, cartResponse(updated))
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	c, err := h.engine.Get(ctx)
	if err != nil {
		respondFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(c))
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.engine.Clear(ctx); err != nil {
		respondFailure(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
