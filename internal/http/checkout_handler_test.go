package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/cart"
	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/domain"
	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/events"
	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/promotion"
	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/store"
)

type OrderServiceMock struct {
	mu      sync.Mutex
	orders  []domain.OrderRequest
	orderID int64
	err     error

	// gate, when set, blocks Create until closed to hold an order-creation
	// call in flight.
	gate chan struct{}
}

func (m *OrderServiceMock) Create(_ context.Context, order domain.OrderRequest) (int64, error) {
	m.mu.Lock()
	m.orders = append(m.orders, order)
	orderID, errv, gate := m.orderID, m.err, m.gate
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if errv != nil {
		return 0, errv
	}
	return orderID, nil
}

func (m *OrderServiceMock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

type PromotionServiceMock struct {
	discount *promotion.Discount
	err      error
}

func (m *PromotionServiceMock) Check(_ context.Context, _ string, _ decimal.Decimal) (*promotion.Discount, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.discount, nil
}

type checkoutFixture struct {
	handler *CheckoutHandler
	orders  *OrderServiceMock
	store   *store.MemoryStore
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	st := store.NewMemoryStore()
	engine := cart.NewEngine(st)
	seeded := domain.Cart{Lines: []domain.CartLine{
		{ProductID: 1, Name: "Bonsai", UnitPrice: decimal.NewFromInt(150000), Quantity: 1},
		{ProductID: 2, Name: "Kumquat", UnitPrice: decimal.NewFromInt(80000), Quantity: 1},
	}}
	if err := st.Set(context.Background(), seeded); err != nil {
		t.Fatalf("Failed to seed cart: %v", err)
	}

	orders := &OrderServiceMock{orderID: 42}
	handler := NewCheckoutHandler(CheckoutDeps{
		Engine:         engine,
		Evaluator:      promotion.NewEvaluator(&PromotionServiceMock{}),
		Orders:         orders,
		Publisher:      events.NopPublisher{},
		SettlementRate: decimal.NewFromInt(23000),
		Currency:       "VND",
	}, 5*time.Second)

	return &checkoutFixture{handler: handler, orders: orders, store: st}
}

func checkoutRequest(method, target, body string, customerID int64) *http.Request {
	var request *http.Request
	if body == "" {
		request = httptest.NewRequest(method, target, nil)
	} else {
		request = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := context.WithValue(request.Context(), "customer_id", customerID)
	return request.WithContext(ctx)
}

func (f *checkoutFixture) begin(t *testing.T, customerID int64) {
	t.Helper()
	recorder := httptest.NewRecorder()
	body := `{"shipping": {"name": "An", "phone": "0901", "address": "12 Hang Ma"}, "note": "gate code 4"}`
	f.handler.Begin(recorder, checkoutRequest("POST", "/api/checkout", body, customerID))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("Failed to begin checkout: status %d, body %s", recorder.Code, recorder.Body)
	}
}

func TestBegin_EmptyCartRejected(t *testing.T) {
	fixture := newCheckoutFixture(t)
	if err := fixture.store.Clear(context.Background()); err != nil {
		t.Fatalf("Failed to clear store: %v", err)
	}

	recorder := httptest.NewRecorder()
	fixture.handler.Begin(recorder, checkoutRequest("POST", "/api/checkout", `{"shipping": {}}`, 7))

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestSession_NoSession(t *testing.T) {
	fixture := newCheckoutFixture(t)

	recorder := httptest.NewRecorder()
	fixture.handler.Session(recorder, checkoutRequest("GET", "/api/checkout", "", 7))

	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, recorder.Code)
	}
}

func TestSubmit_PayOnDeliveryHappyPath(t *testing.T) {
	fixture := newCheckoutFixture(t)
	fixture.begin(t, 7)

	recorder := httptest.NewRecorder()
	fixture.handler.SelectMethod(recorder, checkoutRequest("POST", "/api/checkout/method", `{"method": "PAY_ON_DELIVERY"}`, 7))
	if recorder.Code != http.StatusOK {
		t.Fatalf("Failed to select method: status %d", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	fixture.handler.Submit(recorder, checkoutRequest("POST", "/api/checkout/submit", `{"confirm": true}`, 7))

	if recorder.Code != http.StatusCreated {
		t.Fatalf("Expected status code %d, got %d: %s", http.StatusCreated, recorder.Code, recorder.Body)
	}

	var response OrderCreatedDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.OrderID != 42 {
		t.Errorf("Expected order id 42, got %d", response.OrderID)
	}
	if fixture.orders.CallCount() != 1 {
		t.Errorf("Expected 1 order call, got %d", fixture.orders.CallCount())
	}

	// Session is gone once the order landed.
	getRecorder := httptest.NewRecorder()
	fixture.handler.Session(getRecorder, checkoutRequest("GET", "/api/checkout", "", 7))
	if getRecorder.Code != http.StatusNotFound {
		t.Errorf("Expected session gone after completion, got %d", getRecorder.Code)
	}
}

func TestSubmit_Unconfirmed(t *testing.T) {
	fixture := newCheckoutFixture(t)
	fixture.begin(t, 7)

	recorder := httptest.NewRecorder()
	fixture.handler.SelectMethod(recorder, checkoutRequest("POST", "/api/checkout/method", `{"method": "PAY_ON_DELIVERY"}`, 7))

	recorder = httptest.NewRecorder()
	fixture.handler.Submit(recorder, checkoutRequest("POST", "/api/checkout/submit", `{"confirm": false}`, 7))

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
	if fixture.orders.CallCount() != 0 {
		t.Errorf("Expected no order call, got %d", fixture.orders.CallCount())
	}
}

func TestSubmit_WithoutMethod(t *testing.T) {
	fixture := newCheckoutFixture(t)
	fixture.begin(t, 7)

	recorder := httptest.NewRecorder()
	fixture.handler.Submit(recorder, checkoutRequest("POST", "/api/checkout/submit", `{"confirm": true}`, 7))

	if recorder.Code != http.StatusConflict {
		t.Errorf("Expected status code %d, got %d", http.StatusConflict, recorder.Code)
	}
}

func TestSelectMethod_ExternalRendersCaptureAmount(t *testing.T) {
	fixture := newCheckoutFixture(t)
	fixture.begin(t, 7)

	recorder := httptest.NewRecorder()
	fixture.handler.SelectMethod(recorder, checkoutRequest("POST", "/api/checkout/method", `{"method": "EXTERNAL_CAPTURE"}`, 7))

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response SessionResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.CaptureAmount != "10.00" {
		t.Errorf("Expected capture amount 10.00, got %q", response.CaptureAmount)
	}
	if response.Status != string(domain.CheckoutStatusAwaitingCapture) {
		t.Errorf("Expected status %s, got %s", domain.CheckoutStatusAwaitingCapture, response.Status)
	}
}

func TestCapture_ApprovedCreatesOrder(t *testing.T) {
	fixture := newCheckoutFixture(t)
	fixture.begin(t, 7)

	recorder := httptest.NewRecorder()
	fixture.handler.SelectMethod(recorder, checkoutRequest("POST", "/api/checkout/method", `{"method": "EXTERNAL_CAPTURE"}`, 7))

	recorder = httptest.NewRecorder()
	fixture.handler.Capture(recorder, checkoutRequest("POST", "/api/checkout/capture", `{"approved": true, "details": "txn-9"}`, 7))

	if recorder.Code != http.StatusCreated {
		t.Fatalf("Expected status code %d, got %d: %s", http.StatusCreated, recorder.Code, recorder.Body)
	}

	var response OrderCreatedDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.OrderID != 42 {
		t.Errorf("Expected order id 42, got %d", response.OrderID)
	}
	if fixture.orders.CallCount() != 1 {
		t.Errorf("Expected 1 order call, got %d", fixture.orders.CallCount())
	}
}

func TestSelectMethod_SwitchAwayAndBackToExternal(t *testing.T) {
	fixture := newCheckoutFixture(t)
	fixture.begin(t, 7)

	for _, method := range []string{"EXTERNAL_CAPTURE", "PAY_ON_DELIVERY", "EXTERNAL_CAPTURE"} {
		recorder := httptest.NewRecorder()
		fixture.handler.SelectMethod(recorder, checkoutRequest("POST", "/api/checkout/method", `{"method": "`+method+`"}`, 7))
		if recorder.Code != http.StatusOK {
			t.Fatalf("Selecting %s failed: status %d, body %s", method, recorder.Code, recorder.Body)
		}
	}

	recorder := httptest.NewRecorder()
	fixture.handler.Session(recorder, checkoutRequest("GET", "/api/checkout", "", 7))

	var response SessionResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Status != string(domain.CheckoutStatusAwaitingCapture) {
		t.Errorf("Expected status %s, got %s", domain.CheckoutStatusAwaitingCapture, response.Status)
	}
	if response.CaptureAmount != "10.00" {
		t.Errorf("Expected capture amount 10.00, got %q", response.CaptureAmount)
	}

	recorder = httptest.NewRecorder()
	fixture.handler.Capture(recorder, checkoutRequest("POST", "/api/checkout/capture", `{"approved": true, "details": "txn-3"}`, 7))
	if recorder.Code != http.StatusCreated {
		t.Errorf("Expected status code %d, got %d: %s", http.StatusCreated, recorder.Code, recorder.Body)
	}
}

func TestCapture_DeclinedIsRetriable(t *testing.T) {
	fixture := newCheckoutFixture(t)
	fixture.begin(t, 7)

	recorder := httptest.NewRecorder()
	fixture.handler.SelectMethod(recorder, checkoutRequest("POST", "/api/checkout/method", `{"method": "EXTERNAL_CAPTURE"}`, 7))

	recorder = httptest.NewRecorder()
	fixture.handler.Capture(recorder, checkoutRequest("POST", "/api/checkout/capture", `{"approved": false, "reason": "declined"}`, 7))

	if recorder.Code != http.StatusAccepted {
		t.Fatalf("Expected status code %d, got %d", http.StatusAccepted, recorder.Code)
	}
	if fixture.orders.CallCount() != 0 {
		t.Errorf("Expected no order call after declined capture, got %d", fixture.orders.CallCount())
	}

	// The same session can still be captured.
	recorder = httptest.NewRecorder()
	fixture.handler.Capture(recorder, checkoutRequest("POST", "/api/checkout/capture", `{"approved": true, "details": "txn-10"}`, 7))
	if recorder.Code != http.StatusCreated {
		t.Errorf("Expected status code %d after retry, got %d", http.StatusCreated, recorder.Code)
	}
}

func TestCapture_DuplicateConfirmationConflicts(t *testing.T) {
	fixture := newCheckoutFixture(t)
	fixture.orders.gate = make(chan struct{})
	fixture.begin(t, 7)

	recorder := httptest.NewRecorder()
	fixture.handler.SelectMethod(recorder, checkoutRequest("POST", "/api/checkout/method", `{"method": "EXTERNAL_CAPTURE"}`, 7))
	if recorder.Code != http.StatusOK {
		t.Fatalf("Failed to select method: status %d", recorder.Code)
	}

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		r := httptest.NewRecorder()
		fixture.handler.Capture(r, checkoutRequest("POST", "/api/checkout/capture", `{"approved": true, "details": "txn-1"}`, 7))
		first <- r
	}()

	deadline := time.Now().Add(2 * time.Second)
	for fixture.orders.CallCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if fixture.orders.CallCount() == 0 {
		t.Fatal("order creation never started")
	}

	// Submission is in flight, so a second confirmation conflicts instead of
	// hanging until the handler timeout.
	dup := httptest.NewRecorder()
	fixture.handler.Capture(dup, checkoutRequest("POST", "/api/checkout/capture", `{"approved": true, "details": "txn-2"}`, 7))
	if dup.Code != http.StatusConflict {
		t.Errorf("Expected status code %d for duplicate confirmation, got %d", http.StatusConflict, dup.Code)
	}

	close(fixture.orders.gate)
	select {
	case r := <-first:
		if r.Code != http.StatusCreated {
			t.Errorf("Expected status code %d for first confirmation, got %d", http.StatusCreated, r.Code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first capture confirmation never finished")
	}
	if fixture.orders.CallCount() != 1 {
		t.Errorf("Expected 1 order call, got %d", fixture.orders.CallCount())
	}
}

func TestDiscard_RemovesSession(t *testing.T) {
	fixture := newCheckoutFixture(t)
	fixture.begin(t, 7)

	recorder := httptest.NewRecorder()
	fixture.handler.Discard(recorder, checkoutRequest("DELETE", "/api/checkout", "", 7))

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("Expected status code %d, got %d", http.StatusNoContent, recorder.Code)
	}

	getRecorder := httptest.NewRecorder()
	fixture.handler.Session(getRecorder, checkoutRequest("GET", "/api/checkout", "", 7))
	if getRecorder.Code != http.StatusNotFound {
		t.Errorf("Expected session gone after discard, got %d", getRecorder.Code)
	}
}

func TestSessions_IsolatedPerCustomer(t *testing.T) {
	fixture := newCheckoutFixture(t)
	fixture.begin(t, 7)

	recorder := httptest.NewRecorder()
	fixture.handler.Session(recorder, checkoutRequest("GET", "/api/checkout", "", 8))

	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected customer 8 to have no session, got %d", recorder.Code)
	}
}
