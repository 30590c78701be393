package domain

import "github.com/shopspring/decimal"

// PromotionQuote is the discount computation for a code against a subtotal.
// Invariants: when Valid, FinalAmount = Subtotal - DiscountAmount; when not,
// DiscountAmount is zero and FinalAmount equals Subtotal.
type PromotionQuote struct {
	Code           string          `json:"code"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	FinalAmount    decimal.Decimal `json:"finalAmount"`
	Valid          bool            `json:"valid"`
}
