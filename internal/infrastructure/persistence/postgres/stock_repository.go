package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ChunPingWang/ec-microservice-sub000/internal/domain/repository"
	domain "github.com/ChunPingWang/ec-microservice-sub000/internal/domain/stock"
)

type StockRepository struct {
	pool *pgxpool.Pool
}

func NewStockRepository(pool *pgxpool.Pool) *StockRepository {
	return &StockRepository{pool: pool}
}

const stockColumns = `
	id, product_id, quantity, reserved_quantity, minimum_threshold, maximum_capacity,
	warehouse_location, last_restock_date, last_sale_date, version`

func (r *StockRepository) Create(ctx context.Context, s *domain.Stock) error {
	if s == nil {
		return fmt.Errorf("stock is nil")
	}

	if err := r.ensureTable(ctx); err != nil {
		return err
	}

	const query = `
		INSERT INTO stocks (
			id, product_id, quantity, reserved_quantity, minimum_threshold, maximum_capacity,
			warehouse_location, last_restock_date, last_sale_date, version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0);
	`
	_, err := r.pool.Exec(ctx, query,
		s.ID, s.ProductID, s.Quantity, s.ReservedQuantity, s.MinimumThreshold, s.MaximumCapacity,
		s.WarehouseLocation, s.LastRestockDate, s.LastSaleDate,
	)
	if err != nil {
		return fmt.Errorf("insert stock: %w", err)
	}
	s.Version = 0
	return nil
}

func (r *StockRepository) FindByProductID(ctx context.Context, productID string) (*domain.Stock, error) {
	query := `SELECT ` + stockColumns + ` FROM stocks WHERE product_id = $1;`

	s, err := scanStock(r.pool.QueryRow(ctx, query, productID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Update is the conditional write that keeps concurrent reserve/confirm/
// release/reduce/add race-free: it only lands if the stored version still
// matches the one the caller read, and it bumps the version in the same
// statement. Zero affected rows means another writer won.
func (r *StockRepository) Update(ctx context.Context, s *domain.Stock) error {
	if s == nil {
		return fmt.Errorf("stock is nil")
	}

	const query = `
		UPDATE stocks
		SET quantity = $1,
			reserved_quantity = $2,
			minimum_threshold = $3,
			maximum_capacity = $4,
			warehouse_location = $5,
			last_restock_date = $6,
			last_sale_date = $7,
			version = version + 1
		WHERE id = $8 AND version = $9;
	`
	tag, err := r.pool.Exec(ctx, query,
		s.Quantity, s.ReservedQuantity, s.MinimumThreshold, s.MaximumCapacity,
		s.WarehouseLocation, s.LastRestockDate, s.LastSaleDate,
		s.ID, s.Version,
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrVersionConflict
	}
	s.Version++
	return nil
}

func (r *StockRepository) FindLowStockItems(ctx context.Context) ([]*domain.Stock, error) {
	query := `SELECT ` + stockColumns + ` FROM stocks WHERE quantity <= minimum_threshold ORDER BY product_id;`
	return r.queryStocks(ctx, query)
}

func (r *StockRepository) FindOutOfStockItems(ctx context.Context) ([]*domain.Stock, error) {
	query := `SELECT ` + stockColumns + ` FROM stocks WHERE quantity <= 0 ORDER BY product_id;`
	return r.queryStocks(ctx, query)
}

func (r *StockRepository) queryStocks(ctx context.Context, query string, args ...any) ([]*domain.Stock, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stocks := make([]*domain.Stock, 0)
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, err
		}
		stocks = append(stocks, s)
	}
	return stocks, rows.Err()
}

func scanStock(row pgx.Row) (*domain.Stock, error) {
	var s domain.Stock
	err := row.Scan(
		&s.ID, &s.ProductID, &s.Quantity, &s.ReservedQuantity, &s.MinimumThreshold, &s.MaximumCapacity,
		&s.WarehouseLocation, &s.LastRestockDate, &s.LastSaleDate, &s.Version,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StockRepository) ensureTable(ctx context.Context) error {
	const stmt = `
		CREATE TABLE IF NOT EXISTS stocks (
			id TEXT PRIMARY KEY,
			product_id TEXT NOT NULL UNIQUE,
			quantity INT NOT NULL CHECK (quantity >= 0),
			reserved_quantity INT NOT NULL CHECK (reserved_quantity >= 0 AND reserved_quantity <= quantity),
			minimum_threshold INT NOT NULL,
			maximum_capacity INT NOT NULL,
			warehouse_location TEXT NOT NULL DEFAULT '',
			last_restock_date TIMESTAMPTZ,
			last_sale_date TIMESTAMPTZ,
			version BIGINT NOT NULL DEFAULT 0
		);
	`
	_, err := r.pool.Exec(ctx, stmt)
	return err
}
