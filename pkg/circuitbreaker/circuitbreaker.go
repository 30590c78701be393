package circuitbreaker

import (
	"errors"
	"log"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ErrOpen is returned while the breaker refuses calls.
var ErrOpen = errors.New("circuit breaker is open")

// Breaker guards one backend collaborator. It opens after a run of
// consecutive failures and probes with a single request once the cooldown
// elapses.
type Breaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

func New[T any](name string) *Breaker[T] {
	cb := gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("circuit %s: %s -> %s", name, from, to)
		},
	})
	return &Breaker[T]{cb: cb}
}

func (b *Breaker[T]) Execute(fn func() (T, error)) (T, error) {
	result, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return result, ErrOpen
	}
	return result, err
}
