package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	domain "github.com/ChunPingWang/ec-microservice-sub000/internal/domain/order"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderColumns = `
	id, customer_id, customer_name, customer_email,
	shipping_address, billing_address, status,
	total_amount::text, shipping_fee::text, tax_amount::text, final_amount::text,
	order_date, confirmed_date, paid_date, shipped_date, delivered_date, cancelled_date,
	payment_method, cancel_reason`

// Save upserts the order row and rewrites its items atomically. Items keep
// their insertion order through the position column.
func (r *OrderRepository) Save(ctx context.Context, o *domain.Order) error {
	if o == nil {
		return fmt.Errorf("order is nil")
	}

	if err := r.ensureTables(ctx); err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	const upsertOrder = `
		INSERT INTO orders (
			id, customer_id, customer_name, customer_email,
			shipping_address, billing_address, status,
			total_amount, shipping_fee, tax_amount, final_amount,
			order_date, confirmed_date, paid_date, shipped_date, delivered_date, cancelled_date,
			payment_method, cancel_reason
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
			total_amount = EXCLUDED.total_amount,
			shipping_fee = EXCLUDED.shipping_fee,
			tax_amount = EXCLUDED.tax_amount,
			final_amount = EXCLUDED.final_amount,
			confirmed_date = EXCLUDED.confirmed_date,
			paid_date = EXCLUDED.paid_date,
			shipped_date = EXCLUDED.shipped_date,
			delivered_date = EXCLUDED.delivered_date,
			cancelled_date = EXCLUDED.cancelled_date,
			payment_method = EXCLUDED.payment_method,
			cancel_reason = EXCLUDED.cancel_reason;
	`

	_, err = tx.Exec(ctx, upsertOrder,
		o.ID, o.CustomerID, o.CustomerName, o.CustomerEmail,
		o.ShippingAddress, o.BillingAddress, string(o.Status),
		o.TotalAmount.String(), o.ShippingFee.String(), o.TaxAmount.String(), o.FinalAmount.String(),
		o.OrderDate, o.ConfirmedDate, o.PaidDate, o.ShippedDate, o.DeliveredDate, o.CancelledDate,
		o.PaymentMethod, o.CancelReason,
	)
	if err != nil {
		return fmt.Errorf("upsert order: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1;`, o.ID); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}

	const insertItem = `
		INSERT INTO order_items (
			id, order_id, product_id, product_name,
			unit_price, quantity, specifications, total_price, position
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	for i, it := range o.Items {
		_, err := tx.Exec(ctx, insertItem,
			it.ID, o.ID, it.ProductID, it.ProductName,
			it.UnitPrice.String(), it.Quantity, it.ProductSpecifications, it.TotalPrice.String(), i,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1;`

	row := r.pool.QueryRow(ctx, query, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepository) FindByCustomerID(ctx context.Context, customerID string) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE customer_id = $1 ORDER BY order_date DESC;`
	return r.queryOrders(ctx, query, customerID)
}

func (r *OrderRepository) FindByCustomerIDAndStatus(ctx context.Context, customerID string, status domain.Status) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE customer_id = $1 AND status = $2 ORDER BY order_date DESC;`
	return r.queryOrders(ctx, query, customerID, string(status))
}

func (r *OrderRepository) FindByCustomerIDAndOrderDateBetween(ctx context.Context, customerID string, from, to time.Time) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE customer_id = $1 AND order_date BETWEEN $2 AND $3 ORDER BY order_date DESC;`
	return r.queryOrders(ctx, query, customerID, from, to)
}

func (r *OrderRepository) FindLatestByCustomerID(ctx context.Context, customerID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE customer_id = $1 ORDER BY order_date DESC LIMIT 1;`

	row := r.pool.QueryRow(ctx, query, customerID)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepository) FindPendingOlderThan(ctx context.Context, cutoff time.Time) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE status = $1 AND order_date < $2 ORDER BY order_date ASC;`
	return r.queryOrders(ctx, query, string(domain.StatusPending), cutoff)
}

func (r *OrderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]*domain.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, o := range orders {
		if err := r.loadItems(ctx, o); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, o *domain.Order) error {
	const query = `
		SELECT id, product_id, product_name, unit_price::text, quantity, specifications, total_price::text
		FROM order_items
		WHERE order_id = $1
		ORDER BY position ASC;
	`
	rows, err := r.pool.Query(ctx, query, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	items := make([]*domain.Item, 0)
	for rows.Next() {
		var (
			it                    domain.Item
			unitPrice, totalPrice string
		)
		if err := rows.Scan(&it.ID, &it.ProductID, &it.ProductName, &unitPrice, &it.Quantity,
			&it.ProductSpecifications, &totalPrice); err != nil {
			return err
		}
		it.OrderID = o.ID
		if it.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return fmt.Errorf("parse unit price: %w", err)
		}
		if it.TotalPrice, err = decimal.NewFromString(totalPrice); err != nil {
			return fmt.Errorf("parse total price: %w", err)
		}
		items = append(items, &it)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	o.Items = items
	return nil
}

// scanOrder maps one orders row into the aggregate through its total
// reconstruction factory. Items are attached separately.
func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		id, customerID, customerName, customerEmail    string
		shippingAddress, billingAddress, status        string
		totalAmount, shippingFee, taxAmount, final     string
		orderDate                                      time.Time
		confirmed, paid, shipped, delivered, cancelled *time.Time
		paymentMethod, cancelReason                    string
	)

	err := row.Scan(
		&id, &customerID, &customerName, &customerEmail,
		&shippingAddress, &billingAddress, &status,
		&totalAmount, &shippingFee, &taxAmount, &final,
		&orderDate, &confirmed, &paid, &shipped, &delivered, &cancelled,
		&paymentMethod, &cancelReason,
	)
	if err != nil {
		return nil, err
	}

	total, err := decimal.NewFromString(totalAmount)
	if err != nil {
		return nil, fmt.Errorf("parse total amount: %w", err)
	}
	fee, err := decimal.NewFromString(shippingFee)
	if err != nil {
		return nil, fmt.Errorf("parse shipping fee: %w", err)
	}
	tax, err := decimal.NewFromString(taxAmount)
	if err != nil {
		return nil, fmt.Errorf("parse tax amount: %w", err)
	}
	finalAmount, err := decimal.NewFromString(final)
	if err != nil {
		return nil, fmt.Errorf("parse final amount: %w", err)
	}

	return domain.Restore(
		id, customerID, customerName, customerEmail, shippingAddress, billingAddress,
		domain.Status(status), nil,
		total, fee, tax, finalAmount,
		orderDate, confirmed, paid, shipped, delivered, cancelled,
		paymentMethod, cancelReason,
	), nil
}

func (r *OrderRepository) ensureTables(ctx context.Context) error {
	const stmt = `
		CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			customer_id TEXT NOT NULL,
			customer_name TEXT NOT NULL,
			customer_email TEXT NOT NULL,
			shipping_address TEXT NOT NULL,
			billing_address TEXT NOT NULL,
			status TEXT NOT NULL,
			total_amount NUMERIC NOT NULL,
			shipping_fee NUMERIC NOT NULL,
			tax_amount NUMERIC NOT NULL,
			final_amount NUMERIC NOT NULL,
			order_date TIMESTAMPTZ NOT NULL,
			confirmed_date TIMESTAMPTZ,
			paid_date TIMESTAMPTZ,
			shipped_date TIMESTAMPTZ,
			delivered_date TIMESTAMPTZ,
			cancelled_date TIMESTAMPTZ,
			payment_method TEXT NOT NULL DEFAULT '',
			cancel_reason TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS order_items (
			id TEXT PRIMARY KEY,
			order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id TEXT NOT NULL,
			product_name TEXT NOT NULL,
			unit_price NUMERIC NOT NULL,
			quantity INT NOT NULL,
			specifications TEXT NOT NULL DEFAULT '',
			total_price NUMERIC NOT NULL,
			position INT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders (customer_id, order_date DESC);
		CREATE INDEX IF NOT EXISTS idx_orders_status_date ON orders (status, order_date);
	`
	_, err := r.pool.Exec(ctx, stmt)
	return err
}
