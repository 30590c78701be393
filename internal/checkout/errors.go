package checkout

import "errors"

var (
	ErrEmptyCart           = errors.New("cart is empty, nothing to checkout")
	ErrNoSession           = errors.New("no open checkout session")
	ErrUnknownMethod       = errors.New("unknown payment method")
	IllegalTransitionError = errors.New("illegal transition of checkout status")
)
