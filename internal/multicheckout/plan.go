package multicheckout

import (
	"fmt"
	"time"
)

// State is the orchestrator's position in the multi-seller checkout flow.
type State string

const (
	// StateSingle: one seller group only, no plan; checkout proceeds
	// directly against the original session.
	StateSingle State = "SINGLE"
	// StateSplitting: per-group sessions are being created (in flight).
	StateSplitting State = "SPLITTING"
	// StateInProgress: a plan exists and the cursor points at the session
	// currently being completed.
	StateInProgress State = "IN_PROGRESS"
	// StateComplete: every session produced an order; the plan is gone.
	StateComplete State = "COMPLETE"
)

// SessionRef points at one backend checkout session created for a seller group.
type SessionRef struct {
	SellerID   string `json:"sellerId"`
	SellerName string `json:"sellerName"`
	CheckoutID string `json:"checkoutId"`
	Token      string `json:"token"`
}

// Plan is the durable state of a multi-seller checkout in progress. It is
// the sole hand-off between page loads: written after every successful
// transition, deleted once every session has produced an order.
type Plan struct {
	CreatedAt          time.Time    `json:"createdAt"`
	OriginalCheckoutID string       `json:"originalCheckoutId"`
	Checkouts          []SessionRef `json:"checkouts"`
	CurrentIndex       int          `json:"currentIndex"`
	Orders             []string     `json:"orders"`
}

// Validate rejects plans that cannot be resumed safely. A persisted plan
// always has a cursor inside the session list and exactly one collected
// order per completed session; anything else is corruption and the caller
// discards the plan rather than guessing.
func (p *Plan) Validate() error {
	if p == nil {
		return fmt.Errorf("plan is nil")
	}
	if len(p.Checkouts) < 2 {
		return fmt.Errorf("plan has %d sessions, need at least 2", len(p.Checkouts))
	}
	if p.CurrentIndex < 0 || p.CurrentIndex >= len(p.Checkouts) {
		return fmt.Errorf("cursor %d out of range for %d sessions", p.CurrentIndex, len(p.Checkouts))
	}
	if len(p.Orders) != p.CurrentIndex {
		return fmt.Errorf("have %d orders at cursor %d", len(p.Orders), p.CurrentIndex)
	}
	for i, session := range p.Checkouts {
		if session.CheckoutID == "" {
			return fmt.Errorf("session %d has no checkout id", i)
		}
	}
	return nil
}

// Current returns the session at the cursor.
func (p *Plan) Current() (SessionRef, bool) {
	if p == nil || p.CurrentIndex < 0 || p.CurrentIndex >= len(p.Checkouts) {
		return SessionRef{}, false
	}
	return p.Checkouts[p.CurrentIndex], true
}

// Advance records the order created from the current session and moves the
// cursor to the next one. Order ids accumulate strictly in session order.
func (p *Plan) Advance(orderID string) {
	p.Orders = append(p.Orders, orderID)
	p.CurrentIndex++
}

// Finished reports whether every session has produced an order.
func (p *Plan) Finished() bool {
	return p != nil && p.CurrentIndex >= len(p.Checkouts)
}
