package models

// Category is static reference data products are classified into. Restricted
// categories (alcohol, tobacco, lottery, gift cards, pharmacy, firearms) are
// excluded from barter payment. A permanent "other" row always exists as the
// fallback classification.
type Category struct {
	ID                int     `db:"id" json:"id"`
	Name              string  `db:"name" json:"name"`
	Slug              string  `db:"slug" json:"slug"`
	IsRestricted      bool    `db:"is_restricted" json:"isRestricted"`
	RestrictionReason *string `db:"restriction_reason" json:"restrictionReason,omitempty"`
}

// FallbackCategorySlug is the slug of the guaranteed fallback row.
const FallbackCategorySlug = "other"
