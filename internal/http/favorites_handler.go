package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/domain"
	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/favorites"
)

type FavoritesHandler struct {
	catalog    CatalogService
	reconciler *favorites.Reconciler
	timeout    time.Duration
}

func NewFavoritesHandler(catalog CatalogService, reconciler *favorites.Reconciler, timeout time.Duration) *FavoritesHandler {
	return &FavoritesHandler{
		catalog:    catalog,
		reconciler: reconciler,
		timeout:    timeout,
	}
}

type ToggleRequestDTO struct {
	ProductID  int64 `json:"productId"`
	IsFavorite bool  `json:"isFavorite"`
}

// List returns the customer's favorite products as a stamped product list.
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	customerID := getCustomerIDFromContext(r.Context())
	if customerID == 0 {
		respondFailure(w, domain.ErrAuthRequired)
		return
	}

	products, err := h.catalog.ListActive(ctx)
	if err != nil {
		respondFailure(w, err)
		return
	}

	stamped, err := h.reconciler.Reconcile(ctx, products, customerID)
	if err != nil {
		respondFailure(w, err)
		return
	}

	onlyFavorites := make([]domain.StampedProduct, 0)
	for _, p := range stamped {
		if p.IsFavorite {
			onlyFavorites = append(onlyFavorites, p)
		}
	}

	respondJSON(w, http.StatusOK, ProductsResponseDTO{Products: onlyFavorites})
}

// Toggle flips one product's favorite state for the signed-in customer.
func (h *FavoritesHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ToggleRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be positive")
		return
	}

	stamped := domain.StampedProduct{
		Product:    domain.Product{ProductID: req.ProductID},
		IsFavorite: req.IsFavorite,
	}

	toggled, err := h.reconciler.Toggle(ctx, stamped, getCustomerIDFromContext(r.Context()))
	if err != nil {
		respondFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toggled)
}
