package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
)

// ProductRepository handles database operations for products.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new product repository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, name, brand, category, description, image_url, search_count, created_at, updated_at`

// GetOrCreate returns the product with the given name, creating it if absent.
// Concurrent callers racing on the same name all resolve to one row: the
// insert takes the unique index on name, and the no-op DO UPDATE makes the
// existing row's id come back through RETURNING either way.
func (r *ProductRepository) GetOrCreate(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		INSERT INTO products (name, brand, category, description, image_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING ` + productColumns

	var out domain.Product
	err := r.db.GetContext(
		ctx,
		&out,
		query,
		product.Name,
		product.Brand,
		product.Category,
		product.Description,
		product.ImageURL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create product: %w", err)
	}

	return &out, nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	err := r.db.GetContext(ctx, &product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &product, nil
}

// GetByIDs retrieves the products with the given ids.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return []*domain.Product{}, nil
	}

	query, args, err := sqlx.In(
		`SELECT `+productColumns+` FROM products WHERE id IN (?) ORDER BY created_at DESC`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var products []*domain.Product
	err = r.db.SelectContext(ctx, &products, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	if products == nil {
		products = []*domain.Product{}
	}

	return products, nil
}

// List retrieves products with optional brand/category filters.
func (r *ProductRepository) List(ctx context.Context, params ListProductsParams) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []any{}

	if params.Brand != "" {
		args = append(args, params.Brand)
		query += fmt.Sprintf(" AND brand = $%d", len(args))
	}
	if params.Category != "" {
		args = append(args, params.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}

	args = append(args, params.Limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, params.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	var products []*domain.Product
	err := r.db.SelectContext(ctx, &products, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	if products == nil {
		products = []*domain.Product{}
	}

	return products, nil
}

// SearchByName retrieves products whose name contains the query, newest first.
func (r *ProductRepository) SearchByName(ctx context.Context, query string, limit int) ([]*domain.Product, error) {
	var products []*domain.Product
	stmt := `
		SELECT ` + productColumns + `
		FROM products
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC
		LIMIT $2
	`

	err := r.db.SelectContext(ctx, &products, stmt, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	if products == nil {
		products = []*domain.Product{}
	}

	return products, nil
}

// IncrementSearchCount bumps search_count for the given products.
func (r *ProductRepository) IncrementSearchCount(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(
		`UPDATE products SET search_count = search_count + 1, updated_at = NOW() WHERE id IN (?)`, ids)
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err = r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to increment search count: %w", err)
	}

	return nil
}

// MostSearched retrieves the products with the highest search counts.
func (r *ProductRepository) MostSearched(ctx context.Context, limit int) ([]*domain.Product, error) {
	var products []*domain.Product
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE search_count > 0
		ORDER BY search_count DESC, updated_at DESC
		LIMIT $1
	`

	err := r.db.SelectContext(ctx, &products, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get most searched products: %w", err)
	}

	if products == nil {
		products = []*domain.Product{}
	}

	return products, nil
}
