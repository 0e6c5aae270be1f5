package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/barterly/pos-sync/internal/models"
)

// restrictedClass couples a restricted category slug with the keywords that
// force products into it.
type restrictedClass struct {
	slug     string
	keywords []string
}

// restrictedClasses is evaluated in fixed priority order; the first keyword
// hit wins. Restriction detection runs before any provider-declared category
// is honored, so a merchant cannot dodge compliance by mislabeling.
var restrictedClasses = []restrictedClass{
	// Bare "ale" is left out on purpose: the substring scan would fire on
	// "sale", "kale" and the like.
	{slug: "alcohol", keywords: []string{
		"alcohol", "beer", "lager", "stout", "pale ale", "wine", "liquor",
		"spirits", "vodka", "whiskey", "whisky", "rum", "tequila", "bourbon",
		"brandy", "champagne", "cider", "sake", "mead",
	}},
	{slug: "tobacco", keywords: []string{
		"tobacco", "cigarette", "cigar", "vape", "e-cig", "nicotine",
		"hookah", "snuff", "rolling paper",
	}},
	{slug: "lottery", keywords: []string{
		"lottery", "lotto", "scratch-off", "scratch off", "powerball",
		"mega millions", "raffle",
	}},
	{slug: "gift-cards", keywords: []string{
		"gift card", "giftcard", "gift certificate", "store credit",
		"prepaid card",
	}},
	{slug: "pharmacy", keywords: []string{
		"pharmacy", "prescription", "pharmaceutical", "medication",
		"medicine", "antibiotic",
	}},
	{slug: "firearms", keywords: []string{
		"firearm", "gun", "ammunition", "ammo", "rifle", "pistol",
		"shotgun", "handgun",
	}},
}

// CategoryMatch is the mapper's classification of one raw catalog entry.
type CategoryMatch struct {
	CategoryID   int
	IsRestricted bool
	// MatchedLabel is the restricted keyword that fired, or the category
	// label that resolved, or "other".
	MatchedLabel string
}

// CategoryMapper classifies raw catalog entries into canonical categories
// and decides barter eligibility.
type CategoryMapper struct {
	categories CategoryStore
}

// NewCategoryMapper creates a CategoryMapper.
func NewCategoryMapper(categories CategoryStore) *CategoryMapper {
	return &CategoryMapper{categories: categories}
}

// Map resolves a category for a product. Resolution order:
//
//  1. restricted keyword scan over name+description+category (first match
//     wins, forces restriction, overrides the provider category)
//  2. case-insensitive name-or-slug lookup of the provider's category label
//  3. the guaranteed "other" fallback row
//
// Given an intact reference table Map always returns a category.
func (m *CategoryMapper) Map(categoryLabel, productName, productDescription string) (*CategoryMatch, error) {
	haystack := strings.ToLower(productName + " " + productDescription + " " + categoryLabel)

	for _, class := range restrictedClasses {
		for _, kw := range class.keywords {
			if !strings.Contains(haystack, kw) {
				continue
			}
			cat, err := m.categories.GetBySlug(class.slug)
			if err != nil {
				// The restricted row should be seeded; fall through to
				// "other" but keep the restriction verdict.
				cat, err = m.fallback()
				if err != nil {
					return nil, err
				}
			}
			return &CategoryMatch{
				CategoryID:   cat.ID,
				IsRestricted: true,
				MatchedLabel: kw,
			}, nil
		}
	}

	if strings.TrimSpace(categoryLabel) != "" {
		cat, err := m.categories.GetByNameOrSlug(strings.TrimSpace(categoryLabel))
		if err == nil {
			return &CategoryMatch{
				CategoryID:   cat.ID,
				IsRestricted: cat.IsRestricted,
				MatchedLabel: cat.Slug,
			}, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}

	cat, err := m.fallback()
	if err != nil {
		return nil, err
	}
	return &CategoryMatch{
		CategoryID:   cat.ID,
		IsRestricted: cat.IsRestricted,
		MatchedLabel: cat.Slug,
	}, nil
}

func (m *CategoryMapper) fallback() (*models.Category, error) {
	cat, err := m.categories.GetBySlug(models.FallbackCategorySlug)
	if err != nil {
		return nil, fmt.Errorf("category reference table is missing the %q fallback row: %w", models.FallbackCategorySlug, err)
	}
	return cat, nil
}
