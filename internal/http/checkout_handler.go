package http

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/cart"
	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/checkout"
	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/domain"
	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/events"
	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/payment"
	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/promotion"
)

// CheckoutDeps carries everything a checkout session needs.
type CheckoutDeps struct {
	Engine         *cart.Engine
	Evaluator      *promotion.Evaluator
	Orders         checkout.OrderService
	Publisher      events.Publisher
	SettlementRate decimal.Decimal
	Currency       string
}

// CheckoutHandler owns at most one checkout session per customer. Each
// session gets its own orchestrator and webhook rail; the capture endpoint
// feeds the rail.
type CheckoutHandler struct {
	deps    CheckoutDeps
	timeout time.Duration

	mu       sync.Mutex
	sessions map[int64]*checkoutEntry
}

type checkoutEntry struct {
	orch *checkout.Orchestrator
	rail *payment.WebhookRail
}

func NewCheckoutHandler(deps CheckoutDeps, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		deps:     deps,
		timeout:  timeout,
		sessions: make(map[int64]*checkoutEntry),
	}
}

func (h *CheckoutHandler) entryFor(customerID int64) (*checkoutEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	entry, ok := h.sessions[customerID]
	return entry, ok
}

type BeginRequestDTO struct {
	Shipping domain.ShippingInfo `json:"shipping"`
	Note     string              `json:"note"`
}

type SessionResponseDTO struct {
	Status        string          `json:"status"`
	Total         decimal.Decimal `json:"total"`
	CaptureAmount string          `json:"captureAmount,omitempty"`
}

// Begin opens a checkout session seeded from the cart store, replacing any
// previous session for the customer.
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	var req BeginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	customerID := getCustomerIDFromContext(r.Context())
	rail := payment.NewWebhookRail()
	orch := checkout.New(checkout.Config{
		Engine:         h.deps.Engine,
		Evaluator:      h.deps.Evaluator,
		Orders:         h.deps.Orders,
		Rail:           rail,
		Publisher:      h.deps.Publisher,
		SettlementRate: h.deps.SettlementRate,
		Currency:       h.deps.Currency,
		SubmitTimeout:  h.timeout,
	})

	if err := orch.Begin(r.Context(), customerID, req.Shipping, req.Note); err != nil {
		respondFailure(w, err)
		return
	}

	h.mu.Lock()
	if prev, ok := h.sessions[customerID]; ok {
		prev.orch.Discard()
	}
	h.sessions[customerID] = &checkoutEntry{orch: orch, rail: rail}
	h.mu.Unlock()

	h.respondSession(w, http.StatusCreated, orch)
}

func (h *CheckoutHandler) Session(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entryFor(getCustomerIDFromContext(r.Context()))
	if !ok {
		respondFailure(w, checkout.ErrNoSession)
		return
	}
	h.respondSession(w, http.StatusOK, entry.orch)
}

type PromotionRequestDTO struct {
	Code string `json:"code"`
}

func (h *CheckoutHandler) ApplyPromotion(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entryFor(getCustomerIDFromContext(r.Context()))
	if !ok {
		respondFailure(w, checkout.ErrNoSession)
		return
	}

	var req PromotionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	quote, err := entry.orch.ApplyPromotion(r.Context(), req.Code)
	if err != nil {
		respondFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

type MethodRequestDTO struct {
	Method domain.PaymentMethod `json:"method"`
}

func (h *CheckoutHandler) SelectMethod(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entryFor(getCustomerIDFromContext(r.Context()))
	if !ok {
		respondFailure(w, checkout.ErrNoSession)
		return
	}

	var req MethodRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := entry.orch.SelectMethod(req.Method); err != nil {
		respondFailure(w, err)
		return
	}

	h.respondSession(w, http.StatusOK, entry.orch)
}

type SubmitRequestDTO struct {
	Confirm bool `json:"confirm"`
}

type OrderCreatedDTO struct {
	OrderID int64 `json:"orderId"`
}

// Submit fires the pay-on-delivery order creation. The confirm flag stands
// in for the storefront's confirmation dialog; unconfirmed submits do
// nothing.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	customerID := getCustomerIDFromContext(r.Context())
	entry, ok := h.entryFor(customerID)
	if !ok {
		respondFailure(w, checkout.ErrNoSession)
		return
	}

	var req SubmitRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if !req.Confirm {
		respondError(w, http.StatusBadRequest, "confirmation_required", "order was not confirmed")
		return
	}

	if err := entry.orch.Submit(r.Context()); err != nil {
		respondFailure(w, err)
		return
	}

	h.awaitOutcome(w, r, customerID, entry)
}

type CaptureRequestDTO struct {
	Approved bool   `json:"approved"`
	Details  string `json:"details"`
	Reason   string `json:"reason"`
}

// Capture receives the external rail's confirmation callback and feeds the
// session's capture stream. A failed capture leaves the session retriable.
func (h *CheckoutHandler) Capture(w http.ResponseWriter, r *http.Request) {
	customerID := getCustomerIDFromContext(r.Context())
	entry, ok := h.entryFor(customerID)
	if !ok {
		respondFailure(w, checkout.ErrNoSession)
		return
	}

	var req CaptureRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// A duplicate confirmation after submission started would be dropped by
	// the orchestrator anyway; answer right away instead of waiting it out.
	if entry.orch.Status() != domain.CheckoutStatusAwaitingCapture {
		respondFailure(w, checkout.IllegalTransitionError)
		return
	}

	if !req.Approved {
		if err := entry.rail.Fail(req.Reason); err != nil {
			respondFailure(w, err)
			return
		}
		respondJSON(w, http.StatusAccepted, map[string]string{"status": "capture_failed_retriable"})
		return
	}

	if err := entry.rail.Approve(req.Details); err != nil {
		respondFailure(w, err)
		return
	}

	h.awaitOutcome(w, r, customerID, entry)
}

func (h *CheckoutHandler) Discard(w http.ResponseWriter, r *http.Request) {
	customerID := getCustomerIDFromContext(r.Context())

	h.mu.Lock()
	entry, ok := h.sessions[customerID]
	if ok {
		delete(h.sessions, customerID)
	}
	h.mu.Unlock()

	if ok {
		entry.orch.Discard()
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// awaitOutcome waits for the terminal result of a submit action and cleans
// the session up on success.
func (h *CheckoutHandler) awaitOutcome(w http.ResponseWriter, r *http.Request, customerID int64, entry *checkoutEntry) {
	select {
	case out := <-entry.orch.Results():
		if out.Err != nil {
			respondFailure(w, out.Err)
			return
		}
		h.mu.Lock()
		if h.sessions[customerID] == entry {
			delete(h.sessions, customerID)
		}
		h.mu.Unlock()
		respondJSON(w, http.StatusCreated, OrderCreatedDTO{OrderID: out.OrderID})

	case <-time.After(h.timeout):
		respondError(w, http.StatusGatewayTimeout, "submit_timeout", "order submission did not finish in time")

	case <-r.Context().Done():
		// Client went away; the orchestrator's stale guard handles the rest.
	}
}

func (h *CheckoutHandler) respondSession(w http.ResponseWriter, status int, orch *checkout.Orchestrator) {
	total, err := orch.Total()
	if err != nil {
		respondFailure(w, err)
		return
	}

	resp := SessionResponseDTO{
		Status: orch.Status().String(),
		Total:  total,
	}
	if session, ok := orch.Session(); ok && session.Method == domain.ExternalCapture {
		if amount, err := orch.CaptureAmount(); err == nil {
			resp.CaptureAmount = amount
		}
	}
	respondJSON(w, status, resp)
}
