package cart

import (
	"context"
	"database/sql"

	"github.com/merakit/storefront-backend/internal/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const (
	// upsertQuery relies on the UNIQUE(user_id, product_id) index: concurrent
	// adds for the same product both land on the same row instead of racing
	// a read-then-write into duplicates.
	upsertQuery = `
        INSERT INTO cart_items (user_id, product_id, quantity, created_at, updated_at)
        VALUES ($1, $2, $3, NOW(), NOW())
        ON CONFLICT (user_id, product_id)
        DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
        RETURNING id, user_id, product_id, quantity`

	listQuery = `
        SELECT ci.id, ci.user_id, ci.product_id, ci.quantity,
               p.id, p.vendor_id, p.name, p.price, p.image_url, p.inventory_count, p.status
        FROM cart_items ci
        JOIN products p ON p.id = ci.product_id
        WHERE ci.user_id = $1
        ORDER BY ci.id`

	joinOneQuery = `
        SELECT ci.id, ci.user_id, ci.product_id, ci.quantity,
               p.id, p.vendor_id, p.name, p.price, p.image_url, p.inventory_count, p.status
        FROM cart_items ci
        JOIN products p ON p.id = ci.product_id
        WHERE ci.id = $1`
)

func (r *PostgresRepository) Upsert(ctx context.Context, userID, productID, delta int) (LineItem, error) {
	var item LineItem
	err := r.db.QueryRowContext(ctx, upsertQuery, userID, productID, delta).
		Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity)
	if err != nil {
		return LineItem{}, domain.NewRemoteError("upsert", "cart_items", err)
	}
	// rejoin the product snapshot for the emitted item
	return r.getJoined(ctx, item.ID)
}

func (r *PostgresRepository) SetQuantity(ctx context.Context, userID, itemID, quantity int) (LineItem, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`,
		quantity, itemID, userID)
	if err != nil {
		return LineItem{}, domain.NewRemoteError("update", "cart_items", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return LineItem{}, ErrItemNotFound
	}
	return r.getJoined(ctx, itemID)
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, userID, itemID int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		return domain.NewRemoteError("delete", "cart_items", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return domain.NewRemoteError("delete", "cart_items", err)
	}
	return nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int) ([]LineItem, error) {
	rows, err := r.db.QueryContext(ctx, listQuery, userID)
	if err != nil {
		return nil, domain.NewRemoteError("select", "cart_items", err)
	}
	defer rows.Close()

	out := make([]LineItem, 0)
	for rows.Next() {
		item, err := scanJoined(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewRemoteError("select", "cart_items", err)
	}
	return out, nil
}

func (r *PostgresRepository) getJoined(ctx context.Context, itemID int) (LineItem, error) {
	var item LineItem
	err := r.db.QueryRowContext(ctx, joinOneQuery, itemID).
		Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity,
			&item.Product.ID, &item.Product.VendorID, &item.Product.Name, &item.Product.Price,
			&item.Product.ImageURL, &item.Product.InventoryCount, &item.Product.Status)
	if err == sql.ErrNoRows {
		return LineItem{}, ErrItemNotFound
	}
	if err != nil {
		return LineItem{}, domain.NewRemoteError("select", "cart_items", err)
	}
	return item, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJoined(rows rowScanner) (LineItem, error) {
	var item LineItem
	err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity,
		&item.Product.ID, &item.Product.VendorID, &item.Product.Name, &item.Product.Price,
		&item.Product.ImageURL, &item.Product.InventoryCount, &item.Product.Status)
	if err != nil {
		return LineItem{}, domain.NewRemoteError("scan", "cart_items", err)
	}
	return item, nil
}
