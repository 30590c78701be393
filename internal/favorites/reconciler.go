package favorites

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/domain"
)

// Service is the backend favorites collaborator.
type Service interface {
	ListByCustomer(ctx context.Context, customerID int64) ([]int64, error)
	Add(ctx context.Context, customerID, productID int64) error
	Remove(ctx context.Context, customerID, productID int64) error
}

// Reconciler stamps product lists with favorite membership and performs
// toggle-with-confirm against the backend.
type Reconciler struct {
	svc Service
	sfg singleflight.Group // collapses concurrent favorite-set fetches per customer
}

func NewReconciler(svc Service) *Reconciler {
	return &Reconciler{svc: svc}
}

// Reconcile stamps every product by membership in the customer's favorite
// set. The set is fetched once and mapped in a single pass; per-product
// existence checks are deliberately not an option. Guests (customerID 0) are
// stamped false without any backend call.
func (r *Reconciler) Reconcile(ctx context.Context, products []domain.Product, customerID int64) ([]domain.StampedProduct, error) {
	stamped := make([]domain.StampedProduct, len(products))
	for i, p := range products {
		stamped[i] = domain.StampedProduct{Product: p}
	}

	if customerID == 0 {
		return stamped, nil
	}

	ids, err := r.fetchFavoriteSet(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("fetch favorites for customer %d failed: %w", customerID, err)
	}

	for i := range stamped {
		_, ok := ids[stamped[i].ProductID]
		stamped[i].IsFavorite = ok
	}
	return stamped, nil
}

func (r *Reconciler) fetchFavoriteSet(ctx context.Context, customerID int64) (map[int64]struct{}, error) {
	v, err, _ := r.sfg.Do(strconv.FormatInt(customerID, 10), func() (interface{}, error) {
		ids, err := r.svc.ListByCustomer(ctx, customerID)
		if err != nil {
			return nil, err
		}
		set := make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		return set, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[int64]struct{}), nil
}

// Toggle flips the favorite state of one product. The stamped flag changes
// only after the backend confirms; on failure the product comes back
// unchanged alongside the backend's reason.
func (r *Reconciler) Toggle(ctx context.Context, product domain.StampedProduct, customerID int64) (domain.StampedProduct, error) {
	if customerID == 0 {
		return product, domain.ErrAuthRequired
	}

	if product.IsFavorite {
		if err := r.svc.Remove(ctx, customerID, product.ProductID); err != nil {
			return product, err
		}
		product.IsFavorite = false
		return product, nil
	}

	if err := r.svc.Add(ctx, customerID, product.ProductID); err != nil {
		return product, err
	}
	product.IsFavorite = true
	return product, nil
}
