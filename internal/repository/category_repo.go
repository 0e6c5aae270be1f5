package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/barterly/pos-sync/internal/models"
)

// CategoryRepository handles read access to the category reference table.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// GetByNameOrSlug resolves a category by case-insensitive name or slug
// match. Returns sql.ErrNoRows when nothing matches.
func (r *CategoryRepository) GetByNameOrSlug(label string) (*models.Category, error) {
	const q = `
        SELECT * FROM categories
        WHERE LOWER(name) = LOWER($1) OR LOWER(slug) = LOWER($1)
        LIMIT 1`

	var cat models.Category
	if err := r.db.Get(&cat, q, label); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &cat, nil
}

// GetBySlug resolves a category by exact slug.
func (r *CategoryRepository) GetBySlug(slug string) (*models.Category, error) {
	const q = `SELECT * FROM categories WHERE slug = $1 LIMIT 1`

	var cat models.Category
	if err := r.db.Get(&cat, q, slug); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &cat, nil
}
