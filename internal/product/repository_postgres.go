package product

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/merakit/storefront-backend/internal/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

const productColumns = `id, vendor_id, name, price, image_url, inventory_count, status`

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE status = $1 ORDER BY id`, StatusActive)
	if err != nil {
		return nil, domain.NewRemoteError("select", "products", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Product, error) {
	var p Product
	err := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.VendorID, &p.Name, &p.Price, &p.ImageURL, &p.InventoryCount, &p.Status)
	if err == sql.ErrNoRows {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, domain.NewRemoteError("select", "products", err)
	}
	return p, nil
}

func (r *PostgresRepository) ListByIDs(ctx context.Context, ids []int) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products
         WHERE id = ANY($1::int[])
         ORDER BY array_position($1::int[], id)`, pq.Array(ids))
	if err != nil {
		return nil, domain.NewRemoteError("select", "products", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func scanProducts(rows *sql.Rows) ([]Product, error) {
	out := make([]Product, 0)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.VendorID, &p.Name, &p.Price, &p.ImageURL, &p.InventoryCount, &p.Status); err != nil {
			return nil, domain.NewRemoteError("scan", "products", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewRemoteError("select", "products", err)
	}
	return out, nil
}
