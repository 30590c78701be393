package promotion

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/cart"
	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/domain"
)

// Discount is the usable payload of a backend code validation. A nil
// Discount with a nil error means the backend had no discount for the code.
type Discount struct {
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	FinalAmount    decimal.Decimal `json:"finalAmount"`
}

// Service is the backend promotion collaborator.
type Service interface {
	Check(ctx context.Context, code string, subtotal decimal.Decimal) (*Discount, error)
}

type Evaluator struct {
	svc Service
}

func NewEvaluator(svc Service) *Evaluator {
	return &Evaluator{svc: svc}
}

// CheckCode validates a code against the current cart. The subtotal is always
// recomputed fresh; quotes are superseded, never merged. A blank code is a
// valid zero-discount quote and makes no backend call. Both a rejected code
// and a transport failure produce an invalid quote with the cause logged.
func (e *Evaluator) CheckCode(ctx context.Context, c domain.Cart, code string) (domain.PromotionQuote, error) {
	subtotal := cart.Subtotal(c)
	code = strings.TrimSpace(code)

	if code == "" {
		return domain.PromotionQuote{
			Subtotal:       subtotal,
			DiscountAmount: decimal.Zero,
			FinalAmount:    subtotal,
			Valid:          true,
		}, nil
	}

	invalid := domain.PromotionQuote{
		Code:           code,
		Subtotal:       subtotal,
		DiscountAmount: decimal.Zero,
		FinalAmount:    subtotal,
		Valid:          false,
	}

	discount, err := e.svc.Check(ctx, code, subtotal)
	if err != nil {
		log.Printf("promotion check failed for code %q: %v", code, err)
		return invalid, fmt.Errorf("%w: %v", domain.ErrPromotionInvalid, err)
	}
	if discount == nil {
		log.Printf("promotion check for code %q returned no discount payload", code)
		return invalid, fmt.Errorf("%w: no usable discount", domain.ErrPromotionInvalid)
	}

	return domain.PromotionQuote{
		Code:           code,
		Subtotal:       subtotal,
		DiscountAmount: discount.DiscountAmount,
		FinalAmount:    discount.FinalAmount,
		Valid:          true,
	}, nil
}

// Total is the amount owed at checkout: the quoted final amount when a valid
// quote is present, else the raw subtotal. A valid 100%-off quote with a zero
// final amount is honored; the test is quote validity, not amount truthiness.
func Total(c domain.Cart, quote *domain.PromotionQuote) decimal.Decimal {
	if quote != nil && quote.Valid {
		return quote.FinalAmount
	}
	return cart.Subtotal(c)
}
