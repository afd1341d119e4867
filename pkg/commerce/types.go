package commerce

import (
	"strings"

	"github.com/hos-market/storefront-api/pkg/types"
)

// Seller is the marketplace seller attached to a product, when one exists.
type Seller struct {
	ID         string `json:"id"`
	StoreName  string `json:"storeName"`
	SellerType string `json:"sellerType"`
}

// Product carries the subset of product fields the storefront reads.
type Product struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Seller *Seller `json:"seller"`
}

// Variant is a purchasable product variant.
type Variant struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Product *Product `json:"product"`
}

// TaxedMoney mirrors the backend's gross/net/tax price triple.
type TaxedMoney struct {
	Gross types.Money `json:"gross"`
	Net   types.Money `json:"net"`
	Tax   types.Money `json:"tax"`
}

// CheckoutLine is one variant/quantity pair inside a checkout. Every nested
// reference can be absent; readers must not assume presence.
type CheckoutLine struct {
	ID         string      `json:"id"`
	Quantity   int         `json:"quantity"`
	Variant    *Variant    `json:"variant"`
	TotalPrice *TaxedMoney `json:"totalPrice"`
}

// Checkout is a backend checkout session snapshot.
type Checkout struct {
	ID            string         `json:"id"`
	Token         string         `json:"token"`
	Email         string         `json:"email"`
	Channel       string         `json:"channel"`
	Lines         []CheckoutLine `json:"lines"`
	SubtotalPrice *TaxedMoney    `json:"subtotalPrice"`
	ShippingPrice *TaxedMoney    `json:"shippingPrice"`
	TotalPrice    *TaxedMoney    `json:"totalPrice"`
}

// Currency returns the checkout's currency code, falling back to USD when the
// backend omitted prices entirely.
func (c *Checkout) Currency() string {
	if c != nil && c.TotalPrice != nil && c.TotalPrice.Gross.Currency != "" {
		return c.TotalPrice.Gross.Currency
	}
	return "USD"
}

// CheckoutRef identifies a freshly created checkout session.
type CheckoutRef struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

// LineInput is the variant/quantity pair sent when creating a checkout.
type LineInput struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

// APIErrorDetail is one field/message/code triple from a backend mutation.
type APIErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func joinErrorMessages(details []APIErrorDetail) string {
	messages := make([]string, 0, len(details))
	for _, detail := range details {
		if detail.Message != "" {
			messages = append(messages, detail.Message)
		}
	}
	if len(messages) == 0 {
		return "backend reported an error"
	}
	return strings.Join(messages, "; ")
}
