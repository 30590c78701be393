package payment

import (
	"errors"
	"sync"
)

// CaptureEvent is one outcome notification from the external payment rail.
// An unapproved event carries the reason and leaves the capture retriable.
type CaptureEvent struct {
	Approved bool
	Details  string // provider capture reference when approved
	Reason   string // failure reason when not approved
}

// Rail is the injected external payment capability. Render activates a
// capture for the given amount, already expressed in the rail's settlement
// currency, and returns the stream of capture outcomes. Release withdraws
// the active capture so a new one can be rendered.
type Rail interface {
	Render(amount string) (<-chan CaptureEvent, error)
	Release()
}

var (
	ErrCaptureActive   = errors.New("a capture is already active")
	ErrNoActiveCapture = errors.New("no active capture")
)

// WebhookRail adapts provider confirmation callbacks into the Rail event
// stream. The storefront's capture-confirmation endpoint feeds it.
type WebhookRail struct {
	mu     sync.Mutex
	amount string
	events chan CaptureEvent
}

func NewWebhookRail() *WebhookRail {
	return &WebhookRail{}
}

func (r *WebhookRail) Render(amount string) (<-chan CaptureEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events != nil {
		return nil, ErrCaptureActive
	}
	r.amount = amount
	// Buffered so a provider callback never blocks on a slow consumer.
	r.events = make(chan CaptureEvent, 8)
	return r.events, nil
}

// Release withdraws the rendered capture. The event channel is abandoned,
// not closed: a consumer still selecting on it simply stops receiving.
// Callbacks arriving afterwards get ErrNoActiveCapture.
func (r *WebhookRail) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.amount = ""
	r.events = nil
}

// Amount reports the rendered capture amount in settlement currency.
func (r *WebhookRail) Amount() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events == nil {
		return "", ErrNoActiveCapture
	}
	return r.amount, nil
}

func (r *WebhookRail) Approve(details string) error {
	return r.emit(CaptureEvent{Approved: true, Details: details})
}

func (r *WebhookRail) Fail(reason string) error {
	return r.emit(CaptureEvent{Reason: reason})
}

func (r *WebhookRail) emit(ev CaptureEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events == nil {
		return ErrNoActiveCapture
	}
	select {
	case r.events <- ev:
		return nil
	default:
		return errors.New("capture event stream is full")
	}
}
