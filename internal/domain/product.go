// Package domain holds the storefront's plain data types.
package domain

// Product is an immutable catalog entry (a card in the storefront).
// A nil Price marks a priceless item.
type Product struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Price       *int64 `json:"price"`
}

// HasPrice reports whether the product can be priced.
func (p *Product) HasPrice() bool {
	return p != nil && p.Price != nil
}

// PriceValue returns the price, counting a priceless product as zero.
func (p *Product) PriceValue() int64 {
	if !p.HasPrice() {
		return 0
	}
	return *p.Price
}

// Price returns a pointer to a price value, for building products.
func Price(v int64) *int64 {
	return &v
}

// Total sums the prices of items. Priceless items add nothing.
func Total(items []*Product) int64 {
	var total int64
	for _, item := range items {
		total += item.PriceValue()
	}
	return total
}

// IDs returns the identifiers of items in order.
func IDs(items []*Product) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}
