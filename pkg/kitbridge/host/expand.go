package host

import (
	"fmt"
	"maps"
	"strconv"
)

// Expanded event naming and attribute keys.
const (
	// AggregateNameFormat names the purchase or refund total event.
	AggregateNameFormat = "eCommerce - %s - Total"

	// ItemNameFormat names the per-product events.
	ItemNameFormat = "eCommerce - %s - Item"

	// AttrTotalAmount holds the transaction total on the aggregate event.
	AttrTotalAmount = "Total Amount"

	AttrTransactionID = "Transaction Id"
	AttrProductCount  = "Product Count"
	AttrAffiliation   = "Affiliation"
	AttrTax           = "Tax Amount"
	AttrShipping      = "Shipping Amount"

	AttrProductName     = "Name"
	AttrProductSKU      = "Id"
	AttrProductCategory = "Category"
	AttrProductBrand    = "Brand"
	AttrProductPrice    = "Item Price"
	AttrProductQuantity = "Quantity"
	AttrProductAction   = "Product Action"
)

// Expander decomposes a commerce event into ordered generic events.
type Expander interface {
	// Expand returns the atomic events for ce, in order.
	Expand(ce *CommerceEvent) []*Event

	// AggregateName returns the name of the aggregate event for a product
	// action. Expand emits it only for purchases and refunds.
	AggregateName(action string) string
}

// DefaultExpander emits, for a purchase or refund, one aggregate event
// carrying the transaction total followed by one item event per product.
// Other product actions emit item events only.
type DefaultExpander struct{}

// Compile-time interface check.
var _ Expander = DefaultExpander{}

// AggregateName implements Expander.
func (DefaultExpander) AggregateName(action string) string {
	return fmt.Sprintf(AggregateNameFormat, action)
}

// Expand implements Expander.
func (d DefaultExpander) Expand(ce *CommerceEvent) []*Event {
	if ce == nil || ce.ProductAction == "" {
		return nil
	}

	events := make([]*Event, 0, len(ce.Products)+1)

	if ce.ProductAction == ActionPurchase || ce.ProductAction == ActionRefund {
		attrs := maps.Clone(ce.CustomAttributes)
		if attrs == nil {
			attrs = make(map[string]string)
		}
		attrs[AttrProductCount] = strconv.Itoa(len(ce.Products))
		if tx := ce.Transaction; tx != nil {
			if tx.ID != "" {
				attrs[AttrTransactionID] = tx.ID
			}
			if tx.Affiliation != "" {
				attrs[AttrAffiliation] = tx.Affiliation
			}
			if tx.Revenue != nil {
				attrs[AttrTotalAmount] = formatAmount(*tx.Revenue)
			}
			if tx.Tax != nil {
				attrs[AttrTax] = formatAmount(*tx.Tax)
			}
			if tx.Shipping != nil {
				attrs[AttrShipping] = formatAmount(*tx.Shipping)
			}
		}
		events = append(events, &Event{
			Name:             d.AggregateName(ce.ProductAction),
			Type:             EventTypeTransaction,
			CustomAttributes: attrs,
		})
	}

	for _, p := range ce.Products {
		attrs := maps.Clone(ce.CustomAttributes)
		if attrs == nil {
			attrs = make(map[string]string)
		}
		attrs[AttrProductAction] = ce.ProductAction
		setIfNotEmpty(attrs, AttrProductName, p.Name)
		setIfNotEmpty(attrs, AttrProductSKU, p.SKU)
		setIfNotEmpty(attrs, AttrProductCategory, p.Category)
		setIfNotEmpty(attrs, AttrProductBrand, p.Brand)
		attrs[AttrProductPrice] = formatAmount(p.Price)
		attrs[AttrProductQuantity] = formatAmount(p.Quantity)

		events = append(events, &Event{
			Name:             fmt.Sprintf(ItemNameFormat, ce.ProductAction),
			Type:             EventTypeTransaction,
			CustomAttributes: attrs,
		})
	}

	return events
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func setIfNotEmpty(m map[string]string, key, value string) {
	if value != "" {
		m[key] = value
	}
}
