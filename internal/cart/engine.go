package cart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/domain"
	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/store"
)

// Engine is the only component allowed to mutate the persisted cart slot.
// Every add from every view goes through Add, so rapid repeated clicks
// serialize on the engine mutex and each write is a whole-value replacement.
type Engine struct {
	store store.CartStore

	mu   sync.Mutex
	subs []func(domain.Cart)
}

func NewEngine(s store.CartStore) *Engine {
	return &Engine{store: s}
}

// Get loads the current cart. An empty slot is an empty cart, not an error.
func (e *Engine) Get(ctx context.Context) (domain.Cart, error) {
	cart, err := e.store.Get(ctx)
	if err != nil && errors.Is(err, store.ErrEmptySlot) {
		return domain.Cart{}, nil
	}
	if err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

// Add merges the candidate line into the cart. A line with the same product
// id gets its quantity incremented; price, name and image stay as captured
// at first add. Otherwise the candidate is appended in encounter order.
func (e *Engine) Add(ctx context.Context, candidate domain.CartLine) (domain.Cart, error) {
	if candidate.Quantity <= 0 {
		return domain.Cart{}, domain.ErrInvalidQuantity
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	cart, err := e.Get(ctx)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load cart failed: %w", err)
	}

	merged := false
	for i := range cart.Lines {
		if cart.Lines[i].ProductID == candidate.ProductID {
			cart.Lines[i].Quantity += candidate.Quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Lines = append(cart.Lines, candidate)
	}

	if err := e.store.Set(ctx, cart); err != nil {
		return domain.Cart{}, fmt.Errorf("persist cart failed: %w", err)
	}

	e.notify(cart)
	return cart, nil
}

// Clear empties the cart and removes the persisted slot entirely.
func (e *Engine) Clear(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear cart failed: %w", err)
	}
	e.notify(domain.Cart{})
	return nil
}

// Subscribe registers a cart-changed listener. Listeners replace the
// full-page reload the original storefront relied on after cart mutations.
func (e *Engine) Subscribe(fn func(domain.Cart)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs = append(e.subs, fn)
}

func (e *Engine) notify(cart domain.Cart) {
	for _, fn := range e.subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("cart subscriber panicked: %v", r)
				}
			}()
			fn(cart)
		}()
	}
}

// Subtotal sums unit price times quantity over all lines. Malformed persisted
// lines (zero price, non-positive quantity) count as zero instead of failing
// so a damaged slot degrades gracefully at checkout.
func Subtotal(cart domain.Cart) decimal.Decimal {
	total := decimal.Zero
	for _, line := range cart.Lines {
		if line.Quantity <= 0 {
			continue
		}
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}
