package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scolaria/class_admin/internal/model"
	"github.com/scolaria/class_admin/internal/repository/base"
)

type UserRepository struct {
	*base.Repository
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(pool)}
}

// GetByID fetches a user by id, returning nil when it does not exist.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `
		SELECT id, role, display_name, establishment_id, created_at
		FROM users
		WHERE id = $1
	`

	var u model.User
	err := r.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.Role,
		&u.DisplayName,
		&u.EstablishmentID,
		&u.CreatedAt,
	)

	if err != nil {
		if base.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &u, nil
}
