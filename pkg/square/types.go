package square

// Money is Square's integer-cent money representation.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency,omitempty"`
}

// CatalogObject is one entry from the catalog list endpoint. Only the ITEM
// fields this service consumes are modeled.
type CatalogObject struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	IsDeleted bool      `json:"is_deleted,omitempty"`
	ItemData  *ItemData `json:"item_data,omitempty"`
}

// ItemData is the payload of an ITEM catalog object. Variations are nested
// under the item as ITEM_VARIATION objects.
type ItemData struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	CategoryID  string             `json:"category_id,omitempty"`
	ImageURL    string             `json:"image_url,omitempty"`
	PriceMoney  *Money             `json:"price_money,omitempty"`
	Variations  []CatalogVariation `json:"variations,omitempty"`
}

// CatalogVariation is an ITEM_VARIATION object nested under an item.
type CatalogVariation struct {
	Type              string             `json:"type"`
	ID                string             `json:"id"`
	ItemVariationData *ItemVariationData `json:"item_variation_data,omitempty"`
}

// ItemVariationData is the payload of an ITEM_VARIATION catalog object.
type ItemVariationData struct {
	ItemID     string `json:"item_id,omitempty"`
	Name       string `json:"name,omitempty"`
	SKU        string `json:"sku,omitempty"`
	UPC        string `json:"upc,omitempty"`
	PriceMoney *Money `json:"price_money,omitempty"`
}

type listCatalogResponse struct {
	Objects []CatalogObject `json:"objects"`
	Cursor  string          `json:"cursor,omitempty"`
}
