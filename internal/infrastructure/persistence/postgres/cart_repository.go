package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	domain "github.com/ChunPingWang/ec-microservice-sub000/internal/domain/cart"
)

type CartRepository struct {
	pool *pgxpool.Pool
}

func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

func (r *CartRepository) FindByCustomerID(ctx context.Context, customerID string) (*domain.Cart, error) {
	const cartQuery = `SELECT customer_id FROM carts WHERE customer_id = $1;`

	var c domain.Cart
	err := r.pool.QueryRow(ctx, cartQuery, customerID).Scan(&c.CustomerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	const itemsQuery = `
		SELECT product_id, product_name, unit_price::text, quantity, specification
		FROM cart_items
		WHERE customer_id = $1
		ORDER BY position ASC;
	`
	rows, err := r.pool.Query(ctx, itemsQuery, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Item, 0)
	for rows.Next() {
		var (
			it    domain.Item
			price string
		)
		if err := rows.Scan(&it.ProductID, &it.ProductName, &price, &it.Quantity, &it.Specification); err != nil {
			return nil, err
		}
		if it.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse cart item price: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	c.Items = items
	return &c, nil
}

func (r *CartRepository) Save(ctx context.Context, c *domain.Cart) error {
	if c == nil {
		return fmt.Errorf("cart is nil")
	}

	if err := r.ensureTables(ctx); err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	const upsertCart = `
		INSERT INTO carts (customer_id) VALUES ($1)
		ON CONFLICT (customer_id) DO NOTHING;
	`
	if _, err := tx.Exec(ctx, upsertCart, c.CustomerID); err != nil {
		return fmt.Errorf("upsert cart: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE customer_id = $1;`, c.CustomerID); err != nil {
		return fmt.Errorf("delete cart items: %w", err)
	}

	const insertItem = `
		INSERT INTO cart_items (customer_id, product_id, product_name, unit_price, quantity, specification, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	for i, it := range c.Items {
		_, err := tx.Exec(ctx, insertItem,
			c.CustomerID, it.ProductID, it.ProductName, it.UnitPrice.String(), it.Quantity, it.Specification, i)
		if err != nil {
			return fmt.Errorf("insert cart item: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *CartRepository) ensureTables(ctx context.Context) error {
	const stmt = `
		CREATE TABLE IF NOT EXISTS carts (
			customer_id TEXT PRIMARY KEY
		);
		CREATE TABLE IF NOT EXISTS cart_items (
			customer_id TEXT NOT NULL REFERENCES carts(customer_id) ON DELETE CASCADE,
			product_id TEXT NOT NULL,
			product_name TEXT NOT NULL,
			unit_price NUMERIC NOT NULL,
			quantity INT NOT NULL,
			specification TEXT NOT NULL DEFAULT '',
			position INT NOT NULL,
			PRIMARY KEY (customer_id, product_id)
		);
	`
	_, err := r.pool.Exec(ctx, stmt)
	return err
}
