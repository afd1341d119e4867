package grouping

import "github.com/hos-market/storefront-api/pkg/commerce"

// Mode records how a line's group key was derived.
type Mode string

const (
	ModeSeller  Mode = "seller"
	ModeProduct Mode = "product"
	ModeUnknown Mode = "unknown"
)

// productKeyPrefix keeps product-derived keys from colliding with seller ids.
const productKeyPrefix = "product:"

const (
	fallbackSellerLabel = "Seller"
	fallbackItemLabel   = "Item"
	unknownKey          = "unknown"
)

// LineGroup identifies the seller group one checkout line belongs to.
type LineGroup struct {
	Key        string
	Label      string
	SellerType string
	Mode       Mode
}

// GroupForLine maps a checkout line to its seller group. It is the single
// normalization point for group keys: cart display and checkout splitting
// must both go through here or grouping drifts between the two.
//
// Pure and total: any nested reference may be nil and a fallback key is
// always produced. Prefers the seller id, then the product id (namespaced),
// then the variant id, then the line id, then a literal unknown key.
func GroupForLine(line commerce.CheckoutLine) LineGroup {
	var product *commerce.Product
	if line.Variant != nil {
		product = line.Variant.Product
	}

	if product != nil && product.Seller != nil && product.Seller.ID != "" {
		label := product.Seller.StoreName
		if label == "" {
			label = fallbackSellerLabel
		}
		sellerType := product.Seller.SellerType
		if sellerType == "" {
			sellerType = unknownKey
		}
		return LineGroup{
			Key:        product.Seller.ID,
			Label:      label,
			SellerType: sellerType,
			Mode:       ModeSeller,
		}
	}

	fallbackID := unknownKey
	mode := ModeUnknown
	if product != nil && product.ID != "" {
		fallbackID = product.ID
		mode = ModeProduct
	} else if line.Variant != nil && line.Variant.ID != "" {
		fallbackID = line.Variant.ID
	} else if line.ID != "" {
		fallbackID = line.ID
	}

	label := fallbackItemLabel
	if product != nil && product.Name != "" {
		label = product.Name
	}

	return LineGroup{
		Key:        productKeyPrefix + fallbackID,
		Label:      label,
		SellerType: unknownKey,
		Mode:       mode,
	}
}
