package lightspeed

// Product is one item from the Lightspeed retail catalog. Prices come back
// as decimal strings.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Price       string `json:"price"`
	Currency    string `json:"currency,omitempty"`
	Stock       int    `json:"stock_quantity"`
	SKU         string `json:"sku,omitempty"`
	Barcode     string `json:"barcode,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	Active      bool   `json:"active"`
	Brand       string `json:"brand,omitempty"`
	Supplier    string `json:"supplier,omitempty"`
}

type listProductsResponse struct {
	Data []Product `json:"data"`
}
