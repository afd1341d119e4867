package cart

import (
	"context"
	"fmt"

	"github.com/hos-market/storefront-api/internal/grouping"
	"github.com/hos-market/storefront-api/pkg/commerce"
	pkgerrors "github.com/hos-market/storefront-api/pkg/errors"
	"github.com/hos-market/storefront-api/pkg/logger"
	"github.com/hos-market/storefront-api/pkg/types"
)

type checkoutFetcher interface {
	GetCheckout(ctx context.Context, checkoutID string) (*commerce.Checkout, error)
}

// Service renders the buyer's cart grouped by seller.
type Service interface {
	View(ctx context.Context, checkoutID string) (*View, error)
}

// View is the seller-grouped cart shown before checkout. Groups appear in
// the order their first line appears in the cart.
type View struct {
	CheckoutID  string       `json:"checkoutId"`
	Email       string       `json:"email,omitempty"`
	Currency    string       `json:"currency"`
	MultiSeller bool         `json:"multiSeller"`
	Groups      []GroupView  `json:"groups"`
	Subtotal    *types.Money `json:"subtotal,omitempty"`
	Shipping    *types.Money `json:"shipping,omitempty"`
	Total       *types.Money `json:"total,omitempty"`
}

type GroupView struct {
	Key      string      `json:"key"`
	Name     string      `json:"name"`
	Subtotal types.Money `json:"subtotal"`
	Lines    []LineView  `json:"lines"`
}

type LineView struct {
	ID          string       `json:"id"`
	Quantity    int          `json:"quantity"`
	VariantID   string       `json:"variantId,omitempty"`
	VariantName string       `json:"variantName,omitempty"`
	ProductName string       `json:"productName,omitempty"`
	Total       *types.Money `json:"total,omitempty"`
}

type service struct {
	backend checkoutFetcher
	logg    *logger.Logger
}

// NewService builds the cart view service.
func NewService(backend checkoutFetcher, logg *logger.Logger) (Service, error) {
	if backend == nil {
		return nil, fmt.Errorf("commerce backend required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{backend: backend, logg: logg}, nil
}

func (s *service) View(ctx context.Context, checkoutID string) (*View, error) {
	if checkoutID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout id required")
	}
	ctx = s.logg.WithCheckoutID(ctx, checkoutID)

	checkout, err := s.backend.GetCheckout(ctx, checkoutID)
	if err != nil {
		return nil, err
	}

	groups := grouping.Partition(checkout)
	view := &View{
		CheckoutID:  checkout.ID,
		Email:       checkout.Email,
		Currency:    checkout.Currency(),
		MultiSeller: len(groups) > 1,
		Groups:      make([]GroupView, 0, len(groups)),
		Subtotal:    grossOf(checkout.SubtotalPrice),
		Shipping:    grossOf(checkout.ShippingPrice),
		Total:       grossOf(checkout.TotalPrice),
	}

	for _, group := range groups {
		gv := GroupView{
			Key:      group.Key,
			Name:     group.Name,
			Subtotal: group.Subtotal,
			Lines:    make([]LineView, 0, len(group.Lines)),
		}
		for _, line := range group.Lines {
			gv.Lines = append(gv.Lines, lineView(line))
		}
		view.Groups = append(view.Groups, gv)
	}

	return view, nil
}

func lineView(line commerce.CheckoutLine) LineView {
	lv := LineView{
		ID:       line.ID,
		Quantity: line.Quantity,
		Total:    grossOf(line.TotalPrice),
	}
	if line.Variant != nil {
		lv.VariantID = line.Variant.ID
		lv.VariantName = line.Variant.Name
		if line.Variant.Product != nil {
			lv.ProductName = line.Variant.Product.Name
		}
	}
	return lv
}

func grossOf(price *commerce.TaxedMoney) *types.Money {
	if price == nil {
		return nil
	}
	gross := price.Gross
	return &gross
}
