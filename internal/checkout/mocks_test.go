package checkout

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/domain"
	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/events"
	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/payment"
	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/promotion"
)

// MockOrderService implements OrderService for testing
type MockOrderService struct {
	m       sync.Mutex
	Calls   int
	Last    domain.OrderRequest
	OrderID int64
	Err     error

	// Gate, when set, blocks Create until released to simulate an in-flight
	// order-creation call.
	Gate chan struct{}
}

func (m *MockOrderService) Create(_ context.Context, order domain.OrderRequest) (int64, error) {
	if m.Gate != nil {
		<-m.Gate
	}
	m.m.Lock()
	defer m.m.Unlock()
	m.Calls++
	m.Last = order
	if m.Err != nil {
		return 0, m.Err
	}
	return m.OrderID, nil
}

func (m *MockOrderService) CallCount() int {
	m.m.Lock()
	defer m.m.Unlock()
	return m.Calls
}

func (m *MockOrderService) LastOrder() domain.OrderRequest {
	m.m.Lock()
	defer m.m.Unlock()
	return m.Last
}

// MockRail implements payment.Rail for testing
type MockRail struct {
	m        sync.Mutex
	Rendered []string
	Releases int
	ch       chan payment.CaptureEvent
	Err      error
}

func (r *MockRail) Render(amount string) (<-chan payment.CaptureEvent, error) {
	r.m.Lock()
	defer r.m.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	r.Rendered = append(r.Rendered, amount)
	r.ch = make(chan payment.CaptureEvent, 8)
	return r.ch, nil
}

func (r *MockRail) Release() {
	r.m.Lock()
	defer r.m.Unlock()
	r.Releases++
}

func (r *MockRail) ReleaseCount() int {
	r.m.Lock()
	defer r.m.Unlock()
	return r.Releases
}

func (r *MockRail) Approve(details string) {
	r.m.Lock()
	defer r.m.Unlock()
	r.ch <- payment.CaptureEvent{Approved: true, Details: details}
}

func (r *MockRail) FailCapture(reason string) {
	r.m.Lock()
	defer r.m.Unlock()
	r.ch <- payment.CaptureEvent{Reason: reason}
}

func (r *MockRail) RenderedAmounts() []string {
	r.m.Lock()
	defer r.m.Unlock()
	out := make([]string, len(r.Rendered))
	copy(out, r.Rendered)
	return out
}

// MockPromotionService implements promotion.Service for testing
type MockPromotionService struct {
	Discount *promotion.Discount
	Err      error
}

func (m *MockPromotionService) Check(context.Context, string, decimal.Decimal) (*promotion.Discount, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Discount, nil
}

// MockPublisher records published order events
type MockPublisher struct {
	m      sync.Mutex
	Events []events.OrderCompleted
}

func (m *MockPublisher) PublishOrderCompleted(_ context.Context, event events.OrderCompleted) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockPublisher) Published() []events.OrderCompleted {
	m.m.Lock()
	defer m.m.Unlock()
	out := make([]events.OrderCompleted, len(m.Events))
	copy(out, m.Events)
	return out
}
