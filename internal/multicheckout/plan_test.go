package multicheckout

import (
	"testing"
	"time"
)

func twoSessionPlan() *Plan {
	return &Plan{
		CreatedAt:          time.Now().UTC(),
		OriginalCheckoutID: "chk-original",
		Checkouts: []SessionRef{
			{SellerID: "seller-1", SellerName: "North Outfitters", CheckoutID: "chk-1", Token: "tok-1"},
			{SellerID: "seller-2", SellerName: "Trailhead Gear", CheckoutID: "chk-2", Token: "tok-2"},
		},
		CurrentIndex: 0,
		Orders:       []string{},
	}
}

func TestPlanValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*Plan)
		wantErr bool
	}{
		{name: "valid", mutate: func(p *Plan) {}},
		{name: "single session", mutate: func(p *Plan) {
			p.Checkouts = p.Checkouts[:1]
		}, wantErr: true},
		{name: "negative cursor", mutate: func(p *Plan) {
			p.CurrentIndex = -1
		}, wantErr: true},
		{name: "cursor past end", mutate: func(p *Plan) {
			p.CurrentIndex = 2
			p.Orders = []string{"o1", "o2"}
		}, wantErr: true},
		{name: "orders disagree with cursor", mutate: func(p *Plan) {
			p.Orders = []string{"o1"}
		}, wantErr: true},
		{name: "session missing checkout id", mutate: func(p *Plan) {
			p.Checkouts[1].CheckoutID = ""
		}, wantErr: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			plan := twoSessionPlan()
			tc.mutate(plan)
			err := plan.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}

	var nilPlan *Plan
	if err := nilPlan.Validate(); err == nil {
		t.Fatalf("nil plan should not validate")
	}
}

func TestPlanAdvanceAccumulatesOrdersInSessionOrder(t *testing.T) {
	t.Parallel()

	plan := twoSessionPlan()

	current, ok := plan.Current()
	if !ok || current.CheckoutID != "chk-1" {
		t.Fatalf("expected first session, got %+v ok=%v", current, ok)
	}

	plan.Advance("order-1")
	if plan.Finished() {
		t.Fatalf("plan should not be finished after one of two sessions")
	}
	if err := plan.Validate(); err != nil {
		t.Fatalf("plan invalid mid-flow: %v", err)
	}

	current, ok = plan.Current()
	if !ok || current.CheckoutID != "chk-2" {
		t.Fatalf("expected second session, got %+v ok=%v", current, ok)
	}

	plan.Advance("order-2")
	if !plan.Finished() {
		t.Fatalf("plan should be finished after both sessions")
	}
	if _, ok := plan.Current(); ok {
		t.Fatalf("finished plan has no current session")
	}

	if len(plan.Orders) != 2 || plan.Orders[0] != "order-1" || plan.Orders[1] != "order-2" {
		t.Fatalf("orders out of session order: %v", plan.Orders)
	}
}
