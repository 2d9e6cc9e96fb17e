package address

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/merakit/storefront-backend/internal/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int) ([]Saved, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, address FROM addresses WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, domain.NewRemoteError("select", "addresses", err)
	}
	defer rows.Close()

	out := make([]Saved, 0)
	for rows.Next() {
		var s Saved
		var raw []byte
		if err := rows.Scan(&s.ID, &s.UserID, &raw); err != nil {
			return nil, domain.NewRemoteError("scan", "addresses", err)
		}
		if err := json.Unmarshal(raw, &s.Address); err != nil {
			return nil, domain.NewRemoteError("scan", "addresses", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewRemoteError("select", "addresses", err)
	}
	return out, nil
}

func (r *PostgresRepository) Create(ctx context.Context, userID int, a Address) (Saved, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return Saved{}, err
	}

	s := Saved{UserID: userID, Address: a}
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO addresses (user_id, address, created_at) VALUES ($1, $2, NOW()) RETURNING id`,
		userID, raw).Scan(&s.ID)
	if err != nil {
		return Saved{}, domain.NewRemoteError("insert", "addresses", err)
	}
	return s, nil
}
