package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
)

var productRows = []string{
	"id", "name", "brand", "category", "description", "image_url",
	"search_count", "created_at", "updated_at",
}

func TestProductGetOrCreate(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewProductRepository(sqlxDB)

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO products .+ ON CONFLICT \(name\) DO UPDATE`).
		WithArgs("Wireless Headphones", "", "", "", "").
		WillReturnRows(sqlmock.NewRows(productRows).AddRow(
			int64(7), "Wireless Headphones", "", "", "", "", 0, now, now,
		))

	out, err := repo.GetOrCreate(context.Background(), &domain.Product{Name: "Wireless Headphones"})
	require.NoError(t, err)

	assert.Equal(t, int64(7), out.ID)
	assert.Equal(t, "Wireless Headphones", out.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductSearchByName(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewProductRepository(sqlxDB)

	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM products\s+WHERE name ILIKE`).
		WithArgs("headphones", 50).
		WillReturnRows(sqlmock.NewRows(productRows).
			AddRow(int64(1), "Wireless Headphones Pro", "", "", "", "", 2, now, now).
			AddRow(int64(2), "Budget Headphones", "", "", "", "", 0, now, now))

	products, err := repo.SearchByName(context.Background(), "headphones", 50)
	require.NoError(t, err)

	require.Len(t, products, 2)
	assert.Equal(t, "Budget Headphones", products[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductIncrementSearchCount(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewProductRepository(sqlxDB)

	mock.ExpectExec(`UPDATE products SET search_count = search_count \+ 1`).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.IncrementSearchCount(context.Background(), []int64{1, 2}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductIncrementSearchCountNoIDs(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewProductRepository(sqlxDB)

	// No ids means no query at all.
	require.NoError(t, repo.IncrementSearchCount(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductMostSearched(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewProductRepository(sqlxDB)

	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM products\s+WHERE search_count > 0`).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(productRows).
			AddRow(int64(3), "Gaming Laptop", "", "", "", "", 40, now, now))

	products, err := repo.MostSearched(context.Background(), 10)
	require.NoError(t, err)

	require.Len(t, products, 1)
	assert.Equal(t, 40, products[0].SearchCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
