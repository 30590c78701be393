package domain

import "github.com/google/uuid"

type PaymentMethod string

const (
	PayOnDelivery   PaymentMethod = "PAY_ON_DELIVERY"
	ExternalCapture PaymentMethod = "EXTERNAL_CAPTURE"
)

type CheckoutStatus string

const (
	CheckoutStatusIdle            CheckoutStatus = "IDLE"
	CheckoutStatusMethodSelected  CheckoutStatus = "METHOD_SELECTED"
	CheckoutStatusAwaitingCapture CheckoutStatus = "AWAITING_CAPTURE"
	CheckoutStatusReadyToSubmit   CheckoutStatus = "READY_TO_SUBMIT"
	CheckoutStatusSubmitting      CheckoutStatus = "SUBMITTING"
	CheckoutStatusCompleted       CheckoutStatus = "COMPLETED"
	CheckoutStatusFailed          CheckoutStatus = "FAILED"
)

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusCompleted
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}

var allowedTransitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusIdle:           {CheckoutStatusMethodSelected},
	CheckoutStatusMethodSelected: {CheckoutStatusAwaitingCapture, CheckoutStatusReadyToSubmit},
	// Re-selecting the payment method before submit is allowed.
	CheckoutStatusAwaitingCapture: {CheckoutStatusMethodSelected, CheckoutStatusSubmitting},
	CheckoutStatusReadyToSubmit:   {CheckoutStatusMethodSelected, CheckoutStatusSubmitting},
	CheckoutStatusSubmitting:      {CheckoutStatusCompleted, CheckoutStatusFailed},
	// Failed always rearms to the method's resubmittable state.
	CheckoutStatusFailed: {CheckoutStatusAwaitingCapture, CheckoutStatusReadyToSubmit},
}

func CanTransitionTo(from, to CheckoutStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type ShippingInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// CheckoutSession is the in-flight checkout state. It is seeded from the cart
// store when the checkout view opens and discarded on completion or cancel.
// The ID guards against stale responses resurrecting a discarded session.
type CheckoutSession struct {
	ID         uuid.UUID
	CustomerID int64
	Cart       Cart
	Shipping   ShippingInfo
	Note       string
	Promotion  *PromotionQuote
	Method     PaymentMethod
	Paid       bool
}

type OrderLine struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// OrderRequest is the payload of the single order-creation call.
type OrderRequest struct {
	CustomerID    int64       `json:"customerId"`
	Lines         []OrderLine `json:"cartItems"`
	Note          string      `json:"note"`
	PromotionCode string      `json:"promotionCode"`
	Paid          bool        `json:"paid"`
}
