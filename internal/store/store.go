package store

import (
	"context"
	"errors"

	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/domain"
)

// CartStore is the single durable slot holding the serialized cart. Writes
// are whole-value replacements; Clear removes the slot entirely rather than
// writing an empty array.
type CartStore interface {
	Get(ctx context.Context) (domain.Cart, error)
	Set(ctx context.Context, cart domain.Cart) error
	Clear(ctx context.Context) error
}

// ErrEmptySlot is returned by Get when no cart has been persisted.
var ErrEmptySlot = errors.New("cart slot is empty")
