package host

// Product actions.
const (
	ActionAddToCart      = "add_to_cart"
	ActionRemoveFromCart = "remove_from_cart"
	ActionCheckout       = "checkout"
	ActionClick          = "click"
	ActionViewDetail     = "view_detail"
	ActionPurchase       = "purchase"
	ActionRefund         = "refund"
)

// Product is one line item of a commerce event.
type Product struct {
	Name     string  `yaml:"name" json:"name"`
	SKU      string  `yaml:"sku" json:"sku"`
	Category string  `yaml:"category" json:"category"`
	Brand    string  `yaml:"brand" json:"brand"`
	Price    float64 `yaml:"price" json:"price"`
	Quantity float64 `yaml:"quantity" json:"quantity"`
}

// TransactionAttributes describe a purchase or refund.
type TransactionAttributes struct {
	ID          string   `yaml:"id" json:"id"`
	Affiliation string   `yaml:"affiliation" json:"affiliation"`
	Revenue     *float64 `yaml:"revenue" json:"revenue"`
	Tax         *float64 `yaml:"tax" json:"tax"`
	Shipping    *float64 `yaml:"shipping" json:"shipping"`
}

// CommerceEvent is a composite event that decomposes into generic events.
type CommerceEvent struct {
	ProductAction string                 `yaml:"action" json:"action"`
	Products      []Product              `yaml:"products" json:"products"`
	Transaction   *TransactionAttributes `yaml:"transaction" json:"transaction"`

	CustomAttributes map[string]string   `yaml:"attributes" json:"attributes"`
	CustomFlags      map[string][]string `yaml:"flags" json:"flags"`
}

// Flag returns the first value recorded for a custom flag.
func (c *CommerceEvent) Flag(key string) (string, bool) {
	return firstFlag(c.CustomFlags, key)
}

// DisplayName describes the commerce event for logs and reporting.
func (c *CommerceEvent) DisplayName() string {
	if c.ProductAction == "" {
		return "commerce_event"
	}
	return "commerce_event:" + c.ProductAction
}
