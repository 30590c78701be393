package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

type FavoritesClient struct{ c *Client }

func NewFavoritesClient(c *Client) *FavoritesClient { return &FavoritesClient{c: c} }

type favoriteDTO struct {
	ProductID int64 `json:"productId"`
}

type favoriteMutationDTO struct {
	CustomerID int64 `json:"customerId"`
	ProductID  int64 `json:"productId"`
}

// ListByCustomer returns the full favorite product-id set for one customer.
func (fc *FavoritesClient) ListByCustomer(ctx context.Context, customerID int64) ([]int64, error) {
	path := "/api/Favorites/" + strconv.FormatInt(customerID, 10)
	data, err := fc.c.call(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var favorites []favoriteDTO
	if hasData(data) {
		if err := json.Unmarshal(data, &favorites); err != nil {
			return nil, fmt.Errorf("decode favorites failed: %w", err)
		}
	}

	ids := make([]int64, 0, len(favorites))
	for _, f := range favorites {
		ids = append(ids, f.ProductID)
	}
	return ids, nil
}

func (fc *FavoritesClient) Add(ctx context.Context, customerID, productID int64) error {
	_, err := fc.c.call(ctx, http.MethodPost, "/api/Favorites", nil, favoriteMutationDTO{
		CustomerID: customerID,
		ProductID:  productID,
	})
	return err
}

func (fc *FavoritesClient) Remove(ctx context.Context, customerID, productID int64) error {
	_, err := fc.c.call(ctx, http.MethodDelete, "/api/Favorites", nil, favoriteMutationDTO{
		CustomerID: customerID,
		ProductID:  productID,
	})
	return err
}
