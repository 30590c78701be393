package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/domain"
)

type CatalogClient struct{ c *Client }

func NewCatalogClient(c *Client) *CatalogClient { return &CatalogClient{c: c} }

// ListActive fetches the product list and keeps only active records.
func (cc *CatalogClient) ListActive(ctx context.Context) ([]domain.Product, error) {
	data, err := cc.c.call(ctx, http.MethodGet, "/api/Product/list-product", nil, nil)
	if err != nil {
		return nil, err
	}

	var products []domain.Product
	if hasData(data) {
		if err := json.Unmarshal(data, &products); err != nil {
			return nil, fmt.Errorf("decode products failed: %w", err)
		}
	}

	active := products[:0]
	for _, p := range products {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active, nil
}

// Search queries products by name and optional price bounds.
func (cc *CatalogClient) Search(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	query := url.Values{}
	if filter.Name != "" {
		query.Set("productName", filter.Name)
	}
	if filter.MinPrice != nil {
		query.Set("minPrice", filter.MinPrice.String())
	}
	if filter.MaxPrice != nil {
		query.Set("maxPrice", filter.MaxPrice.String())
	}

	data, err := cc.c.call(ctx, http.MethodGet, "/api/Product/search-products", query, nil)
	if err != nil {
		return nil, err
	}

	var products []domain.Product
	if hasData(data) {
		if err := json.Unmarshal(data, &products); err != nil {
			return nil, fmt.Errorf("decode products failed: %w", err)
		}
	}
	return products, nil
}
