package http

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/domain"
	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/favorites"
)

// CatalogService is the product-listing collaborator.
type CatalogService interface {
	ListActive(ctx context.Context) ([]domain.Product, error)
	Search(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
}

type ProductHandler struct {
	catalog    CatalogService
	reconciler *favorites.Reconciler
	timeout    time.Duration
}

func NewProductHandler(catalog CatalogService, reconciler *favorites.Reconciler, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog:    catalog,
		reconciler: reconciler,
		timeout:    timeout,
	}
}

type ProductsResponseDTO struct {
	Products []domain.StampedProduct `json:"products"`
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.ListActive(ctx)
	if err != nil {
		respondFailure(w, err)
		return
	}

	stamped, err := h.reconciler.Reconcile(ctx, products, getCustomerIDFromContext(r.Context()))
	if err != nil {
		respondFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ProductsResponseDTO{Products: stamped})
}

func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	filter, ok := parseFilter(w, r)
	if !ok {
		return
	}

	products, err := h.catalog.Search(ctx, filter)
	if err != nil {
		respondFailure(w, err)
		return
	}

	stamped, err := h.reconciler.Reconcile(ctx, products, getCustomerIDFromContext(r.Context()))
	if err != nil {
		respondFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ProductsResponseDTO{Products: stamped})
}

func parseFilter(w http.ResponseWriter, r *http.Request) (domain.ProductFilter, bool) {
	filter := domain.ProductFilter{Name: r.URL.Query().Get("name")}

	for param, dst := range map[string]**decimal.Decimal{
		"minPrice": &filter.MinPrice,
		"maxPrice": &filter.MaxPrice,
	} {
		raw := r.URL.Query().Get(param)
		if raw == "" {
			continue
		}
		price, err := decimal.NewFromString(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_price", param+" must be a number")
			return domain.ProductFilter{}, false
		}
		if price.IsNegative() {
			respondError(w, http.StatusBadRequest, "invalid_price", param+" must not be negative")
			return domain.ProductFilter{}, false
		}
		*dst = &price
	}

	return filter, true
}
