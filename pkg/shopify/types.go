package shopify

// Product is one product from the Shopify Admin REST API.
type Product struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	BodyHTML    string    `json:"body_html"`
	Vendor      string    `json:"vendor"`
	ProductType string    `json:"product_type"`
	Handle      string    `json:"handle"`
	Status      string    `json:"status"`
	Tags        string    `json:"tags"`
	Image       *Image    `json:"image,omitempty"`
	Variants    []Variant `json:"variants"`
}

// Variant is one purchasable variant of a product. Shopify always creates at
// least one, titled "Default Title" when the product has no real options.
type Variant struct {
	ID                int64  `json:"id"`
	ProductID         int64  `json:"product_id"`
	Title             string `json:"title"`
	Price             string `json:"price"`
	SKU               string `json:"sku"`
	Barcode           string `json:"barcode"`
	InventoryQuantity int    `json:"inventory_quantity"`
	Position          int    `json:"position"`
}

// Image is a product image reference.
type Image struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
}

type listProductsResponse struct {
	Products []Product `json:"products"`
}
