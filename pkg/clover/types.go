package clover

// Merchant is the owning merchant of an access token, from /v3/merchants/me.
type Merchant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Item is one inventory item. Clover models items flat (no variants) with
// integer-cent prices.
type Item struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	AlternateName string        `json:"alternateName,omitempty"`
	Price         int64         `json:"price"`
	PriceType     string        `json:"priceType,omitempty"`
	SKU           string        `json:"sku,omitempty"`
	Code          string        `json:"code,omitempty"`
	Hidden        bool          `json:"hidden,omitempty"`
	Available     bool          `json:"available"`
	Categories    *categoryList `json:"categories,omitempty"`
	ItemStock     *ItemStock    `json:"itemStock,omitempty"`
}

// Category is an item category reference.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ItemStock is the stock record expanded onto an item.
type ItemStock struct {
	Quantity float64 `json:"quantity"`
}

type categoryList struct {
	Elements []Category `json:"elements"`
}

// CategoryNames returns the names of the item's categories, in order.
func (i *Item) CategoryNames() []string {
	if i.Categories == nil {
		return nil
	}
	names := make([]string, 0, len(i.Categories.Elements))
	for _, c := range i.Categories.Elements {
		names = append(names, c.Name)
	}
	return names
}

type listItemsResponse struct {
	Elements []Item `json:"elements"`
}
