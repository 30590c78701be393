package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/promotion"
)

type PromotionClient struct{ c *Client }

func NewPromotionClient(c *Client) *PromotionClient { return &PromotionClient{c: c} }

type promotionCheckDTO struct {
	PromotionCode string          `json:"promotionCode"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
}

// Check validates a code against a subtotal. A successful response without a
// discount payload returns (nil, nil): the code bought nothing.
func (pc *PromotionClient) Check(ctx context.Context, code string, subtotal decimal.Decimal) (*promotion.Discount, error) {
	data, err := pc.c.call(ctx, http.MethodPost, "/api/Promotion/check-promotion-code", nil, promotionCheckDTO{
		PromotionCode: code,
		TotalAmount:   subtotal,
	})
	if err != nil {
		return nil, err
	}
	if !hasData(data) {
		return nil, nil
	}

	var discount promotion.Discount
	if err := json.Unmarshal(data, &discount); err != nil {
		return nil, fmt.Errorf("decode discount failed: %w", err)
	}
	return &discount, nil
}
