package domain

import "errors"

var (
	// ErrInvalidQuantity rejects a non-positive add-to-cart quantity before
	// any state is touched.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")

	// ErrAuthRequired means a favorites mutation was attempted without a
	// signed-in customer. No backend call is made.
	ErrAuthRequired = errors.New("sign-in required")

	// ErrMissingIdentity means checkout could not resolve a nonzero numeric
	// customer id. The order-creation call is never issued.
	ErrMissingIdentity = errors.New("customer id missing or invalid")

	// ErrPromotionInvalid covers both a rejected code and a validation
	// transport failure; the cause is logged, the user sees one class.
	ErrPromotionInvalid = errors.New("promotion code invalid")

	// ErrBackendRejected is an explicit failure response from a mutating call.
	ErrBackendRejected = errors.New("backend rejected request")

	// ErrTransportFailure is a network or timeout failure.
	ErrTransportFailure = errors.New("transport failure")

	// ErrStaleResponse marks a response that arrived after its session was
	// discarded. It is dropped, never surfaced to the user.
	ErrStaleResponse = errors.New("stale response for discarded session")
)
