package grouping

import (
	"github.com/hos-market/storefront-api/pkg/commerce"
	"github.com/hos-market/storefront-api/pkg/types"
)

// SellerGroup is one partition of a checkout's lines: the lines fulfilled by
// a single seller (or a product-derived fallback group) plus a running
// subtotal. Recomputed fresh on every read, never persisted.
type SellerGroup struct {
	Key      string
	Name     string
	Mode     Mode
	Lines    []commerce.CheckoutLine
	Subtotal types.Money
}

// Partition splits the checkout's lines into seller groups in first-seen
// order. Every line lands in exactly one group; no line is dropped or
// duplicated.
func Partition(checkout *commerce.Checkout) []SellerGroup {
	if checkout == nil || len(checkout.Lines) == 0 {
		return nil
	}

	currency := checkout.Currency()
	groups := make([]SellerGroup, 0, 2)
	indexByKey := make(map[string]int, 2)

	for _, line := range checkout.Lines {
		lg := GroupForLine(line)
		idx, seen := indexByKey[lg.Key]
		if !seen {
			idx = len(groups)
			indexByKey[lg.Key] = idx
			groups = append(groups, SellerGroup{
				Key:      lg.Key,
				Name:     displayName(lg),
				Mode:     lg.Mode,
				Subtotal: types.Money{Currency: currency},
			})
		}
		groups[idx].Lines = append(groups[idx].Lines, line)
		if line.TotalPrice != nil {
			groups[idx].Subtotal = groups[idx].Subtotal.Add(line.TotalPrice.Gross)
		}
	}

	return groups
}

// displayName labels product-fallback groups the way the cart page does, so
// a buyer sees that unattributed items ship together.
func displayName(lg LineGroup) string {
	if lg.Mode == ModeSeller {
		return lg.Label
	}
	return lg.Label + " (grouped)"
}
