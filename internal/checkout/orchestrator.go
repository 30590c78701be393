package checkout

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/cart"
	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/domain"
	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/events"
	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/payment"
	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/promotion"
)

// OrderService is the backend order collaborator. Create returns the new
// order id.
type OrderService interface {
	Create(ctx context.Context, order domain.OrderRequest) (int64, error)
}

// Outcome is the terminal result of one submit action.
type Outcome struct {
	OrderID int64
	Err     error
}

type Config struct {
	Engine    *cart.Engine
	Evaluator *promotion.Evaluator
	Orders    OrderService
	Rail      payment.Rail
	Publisher events.Publisher

	// SettlementRate is base-currency units per one settlement-currency unit
	// for the external rail (e.g. 23000 VND per USD).
	SettlementRate decimal.Decimal
	Currency       string
	SubmitTimeout  time.Duration
}

// Orchestrator sequences one checkout session. The order-creation call fires
// at most once per submit action, and for the external-capture path only
// after a capture confirmation. Late responses for a discarded session are
// dropped by comparing the session id they were issued under.
type Orchestrator struct {
	cfg Config

	mu      sync.Mutex
	status  domain.CheckoutStatus
	session *domain.CheckoutSession
	results chan Outcome
	done    chan struct{}
}

func New(cfg Config) *Orchestrator {
	if cfg.Publisher == nil {
		cfg.Publisher = events.NopPublisher{}
	}
	if cfg.SettlementRate.IsZero() {
		cfg.SettlementRate = decimal.NewFromInt(1)
	}
	if cfg.Currency == "" {
		cfg.Currency = "VND"
	}
	if cfg.SubmitTimeout == 0 {
		cfg.SubmitTimeout = 30 * time.Second
	}
	return &Orchestrator{
		cfg:    cfg,
		status: domain.CheckoutStatusIdle,
	}
}

// Begin opens a session seeded from the cart store and last-known shipping
// info. Any previous session is discarded without side effects.
func (o *Orchestrator) Begin(ctx context.Context, customerID int64, shipping domain.ShippingInfo, note string) error {
	c, err := o.cfg.Engine.Get(ctx)
	if err != nil {
		return err
	}
	if c.IsEmpty() {
		return ErrEmptyCart
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.discardLocked()
	o.session = &domain.CheckoutSession{
		ID:         uuid.New(),
		CustomerID: customerID,
		Cart:       c,
		Shipping:   shipping,
		Note:       note,
	}
	o.status = domain.CheckoutStatusIdle
	o.results = make(chan Outcome, 4)
	o.done = make(chan struct{})
	return nil
}

// ApplyPromotion validates a code against the session's cart and stores the
// resulting quote, superseding any previous one. Not allowed once a capture
// has been rendered, since the rendered amount would diverge.
func (o *Orchestrator) ApplyPromotion(ctx context.Context, code string) (domain.PromotionQuote, error) {
	o.mu.Lock()
	if o.session == nil {
		o.mu.Unlock()
		return domain.PromotionQuote{}, ErrNoSession
	}
	if o.status == domain.CheckoutStatusAwaitingCapture || o.status == domain.CheckoutStatusSubmitting {
		o.mu.Unlock()
		return domain.PromotionQuote{}, IllegalTransitionError
	}
	sessionCart := o.session.Cart
	sid := o.session.ID
	o.mu.Unlock()

	quote, err := o.cfg.Evaluator.CheckCode(ctx, sessionCart, code)

	o.mu.Lock()
	if o.session != nil && o.session.ID == sid {
		q := quote
		o.session.Promotion = &q
	}
	o.mu.Unlock()
	return quote, err
}

// SelectMethod chooses the payment path. Pay-on-delivery goes straight to
// ready-to-submit; the external rail renders a capture for the session total
// in settlement currency and waits for its confirmation stream.
func (o *Orchestrator) SelectMethod(method domain.PaymentMethod) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session == nil {
		return ErrNoSession
	}

	prev, prevMethod := o.status, o.session.Method
	if err := o.transitionLocked(domain.CheckoutStatusMethodSelected); err != nil {
		return err
	}
	o.session.Method = method

	switch method {
	case domain.PayOnDelivery:
		if err := o.transitionLocked(domain.CheckoutStatusReadyToSubmit); err != nil {
			o.status, o.session.Method = prev, prevMethod
			return err
		}
		if prev == domain.CheckoutStatusAwaitingCapture {
			o.releaseRailLocked()
		}
		return nil

	case domain.ExternalCapture:
		if err := o.transitionLocked(domain.CheckoutStatusAwaitingCapture); err != nil {
			o.status, o.session.Method = prev, prevMethod
			return err
		}
		if prev == domain.CheckoutStatusAwaitingCapture {
			o.releaseRailLocked()
		}
		eventsCh, err := o.cfg.Rail.Render(o.captureAmountLocked())
		if err != nil {
			o.status, o.session.Method = prev, prevMethod
			return err
		}
		go o.watchCapture(o.session.ID, eventsCh, o.done)
		return nil

	default:
		o.status, o.session.Method = prev, prevMethod
		return ErrUnknownMethod
	}
}

// CaptureAmount is the rendered amount in the rail's settlement currency.
func (o *Orchestrator) CaptureAmount() (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return "", ErrNoSession
	}
	return o.captureAmountLocked(), nil
}

func (o *Orchestrator) captureAmountLocked() string {
	total := promotion.Total(o.session.Cart, o.session.Promotion)
	return total.Div(o.cfg.SettlementRate).StringFixed(2)
}

// Total is the amount currently owed for the session.
func (o *Orchestrator) Total() (decimal.Decimal, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return decimal.Zero, ErrNoSession
	}
	return promotion.Total(o.session.Cart, o.session.Promotion), nil
}

// Submit fires the pay-on-delivery order creation. It fails fast without a
// network call when no resolvable customer id is present, leaving the
// session resubmittable.
func (o *Orchestrator) Submit(ctx context.Context) error {
	o.mu.Lock()
	if o.session == nil {
		o.mu.Unlock()
		return ErrNoSession
	}
	if o.status != domain.CheckoutStatusReadyToSubmit {
		o.mu.Unlock()
		return IllegalTransitionError
	}

	order, err := o.buildOrderLocked()
	if err != nil {
		o.mu.Unlock()
		return err
	}
	if err := o.transitionLocked(domain.CheckoutStatusSubmitting); err != nil {
		o.mu.Unlock()
		return err
	}
	sid := o.session.ID
	o.mu.Unlock()

	go o.submitOrder(sid, order)
	return nil
}

// Results delivers the terminal outcome of submit actions for the current
// session. Begin must have been called.
func (o *Orchestrator) Results() <-chan Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.results
}

func (o *Orchestrator) Status() domain.CheckoutStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Session returns a copy of the open session.
func (o *Orchestrator) Session() (domain.CheckoutSession, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return domain.CheckoutSession{}, false
	}
	return *o.session, true
}

// Discard drops the session without side effects. A response from an
// in-flight order creation arriving afterwards is ignored.
func (o *Orchestrator) Discard() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.discardLocked()
	o.status = domain.CheckoutStatusIdle
}

func (o *Orchestrator) discardLocked() {
	if o.done != nil {
		close(o.done)
		o.done = nil
	}
	o.releaseRailLocked()
	o.session = nil
}

// releaseRailLocked withdraws any active capture so a later render starts
// clean. Safe to call when nothing is rendered.
func (o *Orchestrator) releaseRailLocked() {
	if o.cfg.Rail != nil {
		o.cfg.Rail.Release()
	}
}

func (o *Orchestrator) transitionLocked(to domain.CheckoutStatus) error {
	if !domain.CanTransitionTo(o.status, to) {
		return IllegalTransitionError
	}
	o.status = to
	return nil
}

func (o *Orchestrator) buildOrderLocked() (domain.OrderRequest, error) {
	if o.session.CustomerID <= 0 {
		return domain.OrderRequest{}, domain.ErrMissingIdentity
	}

	lines := make([]domain.OrderLine, 0, len(o.session.Cart.Lines))
	for _, l := range o.session.Cart.Lines {
		lines = append(lines, domain.OrderLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	code := ""
	if q := o.session.Promotion; q != nil && q.Valid {
		code = q.Code
	}

	return domain.OrderRequest{
		CustomerID:    o.session.CustomerID,
		Lines:         lines,
		Note:          o.session.Note,
		PromotionCode: code,
		Paid:          o.session.Paid,
	}, nil
}

func (o *Orchestrator) watchCapture(sid uuid.UUID, eventsCh <-chan payment.CaptureEvent, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case ev := <-eventsCh:
			if !ev.Approved {
				log.Printf("capture attempt failed for session %v: %v", sid, ev.Reason)
				continue
			}
			o.onCaptureApproved(sid, ev)
		}
	}
}

// onCaptureApproved is the only trigger allowed to advance past
// AwaitingCapture. Duplicate approvals after submission has begun and
// approvals for a discarded session are both dropped.
func (o *Orchestrator) onCaptureApproved(sid uuid.UUID, ev payment.CaptureEvent) {
	o.mu.Lock()
	if o.session == nil || o.session.ID != sid {
		o.mu.Unlock()
		log.Printf("capture approval for discarded session %v dropped", sid)
		return
	}
	if o.status != domain.CheckoutStatusAwaitingCapture {
		o.mu.Unlock()
		log.Printf("duplicate capture approval for session %v ignored", sid)
		return
	}

	o.session.Paid = true
	order, err := o.buildOrderLocked()
	if err != nil {
		o.deliverLocked(Outcome{Err: err})
		o.mu.Unlock()
		return
	}
	if err := o.transitionLocked(domain.CheckoutStatusSubmitting); err != nil {
		o.deliverLocked(Outcome{Err: err})
		o.mu.Unlock()
		return
	}
	o.mu.Unlock()

	log.Printf("capture %v confirmed for session %v, submitting order", ev.Details, sid)
	go o.submitOrder(sid, order)
}

// submitOrder issues the single order-creation call for one submit action
// and applies its result, unless the session has been discarded meanwhile.
func (o *Orchestrator) submitOrder(sid uuid.UUID, order domain.OrderRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), o.cfg.SubmitTimeout)
	defer cancel()

	orderID, err := o.cfg.Orders.Create(ctx, order)

	o.mu.Lock()
	if o.session == nil || o.session.ID != sid {
		o.mu.Unlock()
		log.Printf("order result for discarded session %v dropped", sid)
		return
	}

	if err != nil {
		_ = o.transitionLocked(domain.CheckoutStatusFailed)
		resubmit := domain.CheckoutStatusReadyToSubmit
		if o.session.Method == domain.ExternalCapture {
			resubmit = domain.CheckoutStatusAwaitingCapture
		}
		_ = o.transitionLocked(resubmit)
		log.Printf("order creation failed for session %v: %v", sid, err)
		o.deliverLocked(Outcome{Err: err})
		o.mu.Unlock()
		return
	}

	_ = o.transitionLocked(domain.CheckoutStatusCompleted)
	completed := *o.session
	o.session = nil
	if o.done != nil {
		close(o.done)
		o.done = nil
	}
	o.releaseRailLocked()
	o.deliverLocked(Outcome{OrderID: orderID})
	o.mu.Unlock()

	if errClear := o.cfg.Engine.Clear(context.Background()); errClear != nil {
		log.Printf("clearing cart after order %d failed: %v", orderID, errClear)
	}

	event := events.OrderCompleted{
		OrderID:       orderID,
		CustomerID:    completed.CustomerID,
		Items:         order.Lines,
		TotalAmount:   promotion.Total(completed.Cart, completed.Promotion).String(),
		Currency:      o.cfg.Currency,
		PromotionCode: order.PromotionCode,
		Paid:          completed.Paid,
		CompletedAt:   time.Now(),
	}
	if errPub := o.cfg.Publisher.PublishOrderCompleted(context.Background(), event); errPub != nil {
		log.Printf("publishing order %d event failed: %v", orderID, errPub)
	}
}

func (o *Orchestrator) deliverLocked(out Outcome) {
	select {
	case o.results <- out:
	default:
		log.Printf("dropping undelivered checkout outcome: order=%d err=%v", out.OrderID, out.Err)
	}
}
