package user

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

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Profile, error) {
	var p Profile
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, full_name, role, avatar_url FROM profiles WHERE id = $1`, id).
		Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.AvatarURL)
	if err == sql.ErrNoRows {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, domain.NewRemoteError("select", "profiles", err)
	}
	return p, nil
}
