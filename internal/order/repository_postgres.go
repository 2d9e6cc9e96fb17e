package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/merakit/storefront-backend/internal/address"
	"github.com/merakit/storefront-backend/internal/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const (
	orderColumns = `id, order_number, user_id, status, subtotal, tax, shipping, total,
        shipping_address, billing_address, payment_status, payment_method, created_at`

	itemColumns = `id, order_id, product_id, vendor_id, product_name, product_image,
        quantity, price, subtotal, status`
)

func (r *PostgresRepository) InsertOrder(ctx context.Context, o Order) (Order, error) {
	shipJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return Order{}, err
	}
	billJSON, err := json.Marshal(o.BillingAddress)
	if err != nil {
		return Order{}, err
	}

	err = r.db.QueryRowContext(ctx, `
        INSERT INTO orders (order_number, user_id, status, subtotal, tax, shipping, total,
                            shipping_address, billing_address, payment_status, payment_method, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NOW())
        RETURNING id, created_at`,
		o.OrderNumber, o.UserID, o.Status, o.Subtotal, o.Tax, o.Shipping, o.Total,
		shipJSON, billJSON, o.PaymentStatus, o.PaymentMethod).
		Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return Order{}, domain.NewRemoteError("insert", "orders", err)
	}
	return o, nil
}

// InsertItems writes all snapshots inside one transaction. order_items is a
// single table, so this stays within the store's transactional guarantees.
func (r *PostgresRepository) InsertItems(ctx context.Context, orderID int, items []LineItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewRemoteError("insert", "order_items", err)
	}
	defer tx.Rollback()

	for _, it := range items {
		_, err := tx.ExecContext(ctx, `
            INSERT INTO order_items (order_id, product_id, vendor_id, product_name, product_image,
                                     quantity, price, subtotal, status)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			orderID, it.ProductID, it.VendorID, it.ProductName, it.ProductImage,
			it.Quantity, it.Price, it.Subtotal, it.Status)
		if err != nil {
			return domain.NewRemoteError("insert", "order_items", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.NewRemoteError("insert", "order_items", err)
	}
	return nil
}

func (r *PostgresRepository) ListItems(ctx context.Context, orderID int) ([]LineItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, domain.NewRemoteError("select", "order_items", err)
	}
	defer rows.Close()

	out := make([]LineItem, 0)
	for rows.Next() {
		var it LineItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.VendorID, &it.ProductName,
			&it.ProductImage, &it.Quantity, &it.Price, &it.Subtotal, &it.Status); err != nil {
			return nil, domain.NewRemoteError("scan", "order_items", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewRemoteError("select", "order_items", err)
	}
	return out, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}

	o.Items, err = r.ListItems(ctx, o.ID)
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, domain.NewRemoteError("select", "orders", err)
	}
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewRemoteError("select", "orders", err)
	}

	for i := range out {
		items, err := r.ListItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var o Order
	var shipJSON, billJSON []byte
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.Subtotal, &o.Tax,
		&o.Shipping, &o.Total, &shipJSON, &billJSON, &o.PaymentStatus, &o.PaymentMethod, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return Order{}, err
	}
	if err != nil {
		return Order{}, domain.NewRemoteError("scan", "orders", err)
	}
	if err := json.Unmarshal(shipJSON, &o.ShippingAddress); err != nil {
		o.ShippingAddress = address.Address{}
	}
	if err := json.Unmarshal(billJSON, &o.BillingAddress); err != nil {
		o.BillingAddress = address.Address{}
	}
	return o, nil
}

// PostgresSagaRepository persists placement progress in order_sagas.
type PostgresSagaRepository struct {
	db *sql.DB
}

func NewPostgresSagaRepository(db *sql.DB) *PostgresSagaRepository {
	return &PostgresSagaRepository{db: db}
}

func (r *PostgresSagaRepository) Create(ctx context.Context, rec SagaRecord) error {
	var key sql.NullString
	if rec.IdempotencyKey != "" {
		key = sql.NullString{String: rec.IdempotencyKey, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO order_sagas (order_id, idempotency_key, state, updated_at)
        VALUES ($1, $2, $3, NOW())`,
		rec.OrderID, key, string(rec.State))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateIdempotencyKey
		}
		return domain.NewRemoteError("insert", "order_sagas", err)
	}
	return nil
}

func (r *PostgresSagaRepository) SetState(ctx context.Context, orderID int, state SagaState) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE order_sagas SET state = $1, updated_at = NOW() WHERE order_id = $2`,
		string(state), orderID)
	if err != nil {
		return domain.NewRemoteError("update", "order_sagas", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresSagaRepository) Get(ctx context.Context, orderID int) (SagaRecord, error) {
	var rec SagaRecord
	var key sql.NullString
	var state string
	err := r.db.QueryRowContext(ctx,
		`SELECT order_id, idempotency_key, state, updated_at FROM order_sagas WHERE order_id = $1`,
		orderID).Scan(&rec.OrderID, &key, &state, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return SagaRecord{}, ErrNotFound
	}
	if err != nil {
		return SagaRecord{}, domain.NewRemoteError("select", "order_sagas", err)
	}
	rec.IdempotencyKey = key.String
	rec.State = SagaState(state)
	return rec, nil
}

func (r *PostgresSagaRepository) FindOrderIDByKey(ctx context.Context, key string) (int, bool, error) {
	if key == "" {
		return 0, false, nil
	}

	var orderID int
	err := r.db.QueryRowContext(ctx,
		`SELECT order_id FROM order_sagas WHERE idempotency_key = $1`, key).Scan(&orderID)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, domain.NewRemoteError("select", "order_sagas", err)
	}
	return orderID, true, nil
}
