package multicheckout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hos-market/storefront-api/internal/grouping"
	"github.com/hos-market/storefront-api/pkg/commerce"
	pkgerrors "github.com/hos-market/storefront-api/pkg/errors"
	"github.com/hos-market/storefront-api/pkg/logger"
	"github.com/hos-market/storefront-api/pkg/metrics"
	"github.com/shopspring/decimal"
)

type commerceAPI interface {
	GetCheckout(ctx context.Context, checkoutID string) (*commerce.Checkout, error)
	CreateCheckout(ctx context.Context, input commerce.CreateCheckoutInput) (*commerce.CheckoutRef, error)
	DeleteCheckoutLines(ctx context.Context, checkoutID string, lineIDs []string) error
	CreatePayment(ctx context.Context, checkoutID string, input commerce.PaymentInput) error
	CompleteCheckout(ctx context.Context, checkoutID string) (string, error)
}

type planStore interface {
	Save(ctx context.Context, clientKey string, plan *Plan) error
	Load(ctx context.Context, clientKey string) (*Plan, error)
	Delete(ctx context.Context, clientKey string) error
}

// Service drives the multi-seller checkout flow: deciding whether a cart
// needs splitting, performing the split, and sequencing completion of the
// resulting sessions.
type Service interface {
	Initiate(ctx context.Context, clientKey, checkoutID string) (*SplitResult, error)
	Active(ctx context.Context, clientKey string) (*Progress, error)
	CompleteCurrent(ctx context.Context, clientKey string, payment PaymentDetails) (*Progress, error)
	Abandon(ctx context.Context, clientKey string) error
}

// SplitResult reports the outcome of initiating checkout on a cart.
type SplitResult struct {
	State State
	// CheckoutID is the untouched original session when no split was needed.
	CheckoutID string
	Plan       *Plan
	// Warning is set when the split succeeded but the original cart's lines
	// could not be removed; the original checkout must be treated as stale.
	Warning string
}

// Progress describes where the flow stands for a client.
type Progress struct {
	State    State
	Plan     *Plan
	Current  *SessionRef
	Position int
	Total    int
	Orders   []string
}

// PaymentDetails is the tokenized payment applied to the current session.
type PaymentDetails struct {
	Gateway string
	Token   string
	Amount  decimal.Decimal
}

type service struct {
	backend commerceAPI
	plans   planStore
	logg    *logger.Logger
	metrics *metrics.CheckoutMetrics
}

// NewService builds the multi-checkout orchestrator.
func NewService(backend commerceAPI, plans planStore, logg *logger.Logger, m *metrics.CheckoutMetrics) (Service, error) {
	if backend == nil {
		return nil, fmt.Errorf("commerce backend required")
	}
	if plans == nil {
		return nil, fmt.Errorf("plan store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{backend: backend, plans: plans, logg: logg, metrics: m}, nil
}

func (s *service) Initiate(ctx context.Context, clientKey, checkoutID string) (*SplitResult, error) {
	if clientKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client key required")
	}
	if checkoutID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout id required")
	}
	ctx = s.logg.WithCheckoutID(ctx, checkoutID)

	// An existing plan wins: the user resumes where they left off instead of
	// re-splitting and re-creating sessions that already exist.
	if plan, err := s.loadPlan(ctx, clientKey); err == nil {
		s.metrics.IncPlanEvent("resumed")
		return &SplitResult{State: StateInProgress, Plan: plan}, nil
	} else if !errors.Is(err, ErrNoPlan) {
		return nil, err
	}

	checkout, err := s.backend.GetCheckout(ctx, checkoutID)
	if err != nil {
		return nil, err
	}
	if len(checkout.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout has no lines")
	}

	groups := grouping.Partition(checkout)
	if len(groups) <= 1 {
		return &SplitResult{State: StateSingle, CheckoutID: checkout.ID}, nil
	}

	started := time.Now()
	plan, err := s.split(ctx, checkout, groups)
	if err != nil {
		s.metrics.IncSplit("aborted")
		s.metrics.ObserveSplitDuration("aborted", time.Since(started))
		return nil, err
	}

	result := &SplitResult{State: StateInProgress, Plan: plan}

	// The new sessions are the source of truth from here on. Clearing the
	// original cart prevents the same items being bought twice; when the
	// backend refuses, the original is stale regardless and the plan
	// proceeds.
	if err := s.clearOriginal(ctx, checkout); err != nil {
		s.logg.Error(ctx, "failed to clear original checkout after split", err)
		result.Warning = "original cart could not be cleared; it is no longer valid for checkout"
	}

	if err := s.plans.Save(ctx, clientKey, plan); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting checkout plan")
	}

	s.metrics.IncSplit("success")
	s.metrics.ObserveSplitDuration("success", time.Since(started))
	s.logg.Info(s.logg.WithField(ctx, "sessions", len(plan.Checkouts)), "multi-seller checkout split created")
	return result, nil
}

// split creates one backend session per seller group, strictly sequentially
// in group order. Any failure aborts the whole split: no partial plan is
// returned and the original checkout stays untouched. Sessions created
// before the failing group are abandoned, not compensated.
func (s *service) split(ctx context.Context, checkout *commerce.Checkout, groups []grouping.SellerGroup) (*Plan, error) {
	sessions := make([]SessionRef, 0, len(groups))
	for _, group := range groups {
		lines, err := lineInputs(group)
		if err != nil {
			return nil, err
		}
		ref, err := s.backend.CreateCheckout(ctx, commerce.CreateCheckoutInput{
			Email:   checkout.Email,
			Channel: checkout.Channel,
			Lines:   lines,
		})
		if err != nil {
			gctx := s.logg.WithSellerGroup(ctx, group.Key)
			s.logg.Error(gctx, "session creation failed, aborting split", err)
			return nil, pkgerrors.Wrap(pkgerrors.CodeBackend, err,
				fmt.Sprintf("could not create checkout for %s", group.Name))
		}
		sessions = append(sessions, SessionRef{
			SellerID:   group.Key,
			SellerName: group.Name,
			CheckoutID: ref.ID,
			Token:      ref.Token,
		})
	}

	return &Plan{
		CreatedAt:          time.Now().UTC(),
		OriginalCheckoutID: checkout.ID,
		Checkouts:          sessions,
		CurrentIndex:       0,
		Orders:             []string{},
	}, nil
}

func lineInputs(group grouping.SellerGroup) ([]commerce.LineInput, error) {
	lines := make([]commerce.LineInput, 0, len(group.Lines))
	for _, line := range group.Lines {
		if line.Variant == nil || line.Variant.ID == "" {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("line %s has no variant and cannot be split", line.ID))
		}
		quantity := line.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		lines = append(lines, commerce.LineInput{VariantID: line.Variant.ID, Quantity: quantity})
	}
	return lines, nil
}

func (s *service) clearOriginal(ctx context.Context, checkout *commerce.Checkout) error {
	lineIDs := make([]string, 0, len(checkout.Lines))
	for _, line := range checkout.Lines {
		if line.ID != "" {
			lineIDs = append(lineIDs, line.ID)
		}
	}
	if len(lineIDs) == 0 {
		return nil
	}
	return s.backend.DeleteCheckoutLines(ctx, checkout.ID, lineIDs)
}

func (s *service) Active(ctx context.Context, clientKey string) (*Progress, error) {
	if clientKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client key required")
	}
	plan, err := s.loadPlan(ctx, clientKey)
	if err != nil {
		if errors.Is(err, ErrNoPlan) {
			return &Progress{State: StateSingle}, nil
		}
		return nil, err
	}
	return progressOf(plan), nil
}

func (s *service) CompleteCurrent(ctx context.Context, clientKey string, payment PaymentDetails) (*Progress, error) {
	if clientKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client key required")
	}
	if payment.Gateway == "" || payment.Token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment gateway and token required")
	}

	plan, err := s.loadPlan(ctx, clientKey)
	if err != nil {
		if errors.Is(err, ErrNoPlan) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no multi-seller checkout in progress")
		}
		return nil, err
	}

	current, ok := plan.Current()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "plan has no active session")
	}
	ctx = s.logg.WithCheckoutID(ctx, current.CheckoutID)

	// Failures below leave the cursor unmoved; the user retries the same
	// session. Nothing is retried automatically.
	if err := s.backend.CreatePayment(ctx, current.CheckoutID, commerce.PaymentInput{
		Gateway: payment.Gateway,
		Token:   payment.Token,
		Amount:  payment.Amount,
	}); err != nil {
		s.metrics.IncSession("payment_failed")
		return nil, err
	}

	orderID, err := s.backend.CompleteCheckout(ctx, current.CheckoutID)
	if err != nil {
		s.metrics.IncSession("complete_failed")
		return nil, err
	}

	plan.Advance(orderID)
	s.metrics.IncSession("completed")

	if plan.Finished() {
		if err := s.plans.Delete(ctx, clientKey); err != nil {
			s.logg.Error(ctx, "failed to delete finished plan", err)
		}
		s.metrics.IncPlanEvent("finished")
		s.logg.Info(s.logg.WithField(ctx, "orders", len(plan.Orders)), "multi-seller checkout complete")
		return &Progress{
			State:  StateComplete,
			Total:  len(plan.Checkouts),
			Orders: plan.Orders,
		}, nil
	}

	if err := s.plans.Save(ctx, clientKey, plan); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting checkout plan")
	}
	return progressOf(plan), nil
}

func (s *service) Abandon(ctx context.Context, clientKey string) error {
	if clientKey == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "client key required")
	}
	if err := s.plans.Delete(ctx, clientKey); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting checkout plan")
	}
	s.metrics.IncPlanEvent("abandoned")
	return nil
}

func (s *service) loadPlan(ctx context.Context, clientKey string) (*Plan, error) {
	plan, err := s.plans.Load(ctx, clientKey)
	if err != nil {
		if errors.Is(err, ErrPlanDiscarded) {
			s.metrics.IncPlanEvent("discarded")
			s.logg.Warn(ctx, "discarded malformed multi-checkout plan")
		}
		return nil, err
	}
	return plan, nil
}

func progressOf(plan *Plan) *Progress {
	current, _ := plan.Current()
	return &Progress{
		State:    StateInProgress,
		Plan:     plan,
		Current:  &current,
		Position: plan.CurrentIndex,
		Total:    len(plan.Checkouts),
		Orders:   plan.Orders,
	}
}
