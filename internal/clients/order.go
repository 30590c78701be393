package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/domain"
)

type OrderClient struct{ c *Client }

func NewOrderClient(c *Client) *OrderClient { return &OrderClient{c: c} }

// Create submits the order and returns the created order id. The backend
// signals success with a positive id in the data payload.
func (oc *OrderClient) Create(ctx context.Context, order domain.OrderRequest) (int64, error) {
	data, err := oc.c.call(ctx, http.MethodPost, "/api/Order/create", nil, order)
	if err != nil {
		return 0, err
	}

	var orderID int64
	if hasData(data) {
		if err := json.Unmarshal(data, &orderID); err != nil {
			return 0, fmt.Errorf("decode order id failed: %w", err)
		}
	}
	if orderID <= 0 {
		return 0, fmt.Errorf("%w: order was not created", domain.ErrBackendRejected)
	}
	return orderID, nil
}
