package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scolaria/class_admin/internal/model"
	"github.com/scolaria/class_admin/internal/repository/base"
)

const classColumns = `id, name, level, state, establishment_id, moderator_id,
	activation_code, reject_reason, motif_code, deactivate_comment, created_at, updated_at`

type ClassRepository struct {
	*base.Repository
}

func NewClassRepository(pool *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{Repository: base.NewRepository(pool)}
}

// Create inserts a class. The caller is expected to have forced the
// initial lifecycle state; the column has no default on purpose.
func (r *ClassRepository) Create(ctx context.Context, c *model.ClassRecord) error {
	query := `
		INSERT INTO classes (id, name, level, state, establishment_id, moderator_id, activation_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.QueryRow(
		ctx, query,
		c.ID,
		c.Name,
		c.Level,
		c.State,
		c.EstablishmentID,
		c.ModeratorID,
		c.ActivationCode,
	).Scan(&c.CreatedAt)

	if err != nil {
		return fmt.Errorf("create class: %w", err)
	}

	return nil
}

// GetByID fetches a class by id, returning nil when it does not exist.
func (r *ClassRepository) GetByID(ctx context.Context, id string) (*model.ClassRecord, error) {
	query := `SELECT ` + classColumns + ` FROM classes WHERE id = $1`

	c, err := scanClass(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get class: %w", err)
	}

	return c, nil
}

// List returns classes visible to the scope: administrators see all,
// establishments see their own, professors see active classes plus any
// class they hold rights on.
func (r *ClassRepository) List(ctx context.Context, scope model.ClassScope) ([]*model.ClassRecord, error) {
	var (
		query string
		args  []any
	)

	switch scope.Role {
	case model.RoleEtablissement:
		if scope.EstablishmentID != nil {
			query = `SELECT ` + classColumns + ` FROM classes WHERE establishment_id = $1 ORDER BY created_at DESC`
			args = []any{*scope.EstablishmentID}
		} else {
			query = `SELECT ` + classColumns + ` FROM classes ORDER BY created_at DESC`
		}
	case model.RoleProfesseur:
		query = `
			SELECT ` + classColumns + `
			FROM classes
			WHERE state = $1
			   OR id IN (SELECT class_id FROM publication_rights WHERE user_id = $2)
			ORDER BY created_at DESC
		`
		args = []any{model.ClassStateActive, scope.UserID}
	default:
		query = `SELECT ` + classColumns + ` FROM classes ORDER BY created_at DESC`
	}

	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	defer rows.Close()

	var classes []*model.ClassRecord
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, fmt.Errorf("scan class: %w", err)
		}
		classes = append(classes, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate classes: %w", err)
	}

	return classes, nil
}

// Approve moves a pending class to active. The WHERE clause on the current
// state is the transition's server-side guard: concurrent transitions race
// on it and the loser affects zero rows.
func (r *ClassRepository) Approve(ctx context.Context, id string) (int64, error) {
	query := `
		UPDATE classes
		SET state = $1, updated_at = now()
		WHERE id = $2 AND state = $3
	`

	affected, err := r.ExecAffected(ctx, query, model.ClassStateActive, id, model.ClassStatePending)
	if err != nil {
		return 0, fmt.Errorf("approve class: %w", err)
	}

	return affected, nil
}

// Reject moves a pending class to rejected, recording the reason.
func (r *ClassRepository) Reject(ctx context.Context, id, reason string) (int64, error) {
	query := `
		UPDATE classes
		SET state = $1, reject_reason = $2, updated_at = now()
		WHERE id = $3 AND state = $4
	`

	affected, err := r.ExecAffected(ctx, query, model.ClassStateRejected, reason, id, model.ClassStatePending)
	if err != nil {
		return 0, fmt.Errorf("reject class: %w", err)
	}

	return affected, nil
}

// Deactivate moves an active class to inactive, recording the motif code
// and optional comment.
func (r *ClassRepository) Deactivate(ctx context.Context, id string, motif model.Motif, comment string) (int64, error) {
	query := `
		UPDATE classes
		SET state = $1, motif_code = $2, deactivate_comment = $3, updated_at = now()
		WHERE id = $4 AND state = $5
	`

	affected, err := r.ExecAffected(ctx, query, model.ClassStateInactive, motif, comment, id, model.ClassStateActive)
	if err != nil {
		return 0, fmt.Errorf("deactivate class: %w", err)
	}

	return affected, nil
}

// Delete removes a class. Rights and requests referencing it go with it
// via ON DELETE CASCADE.
func (r *ClassRepository) Delete(ctx context.Context, id string) (int64, error) {
	query := `DELETE FROM classes WHERE id = $1`

	affected, err := r.ExecAffected(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("delete class: %w", err)
	}

	return affected, nil
}

func scanClass(row pgx.Row) (*model.ClassRecord, error) {
	var c model.ClassRecord
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Level,
		&c.State,
		&c.EstablishmentID,
		&c.ModeratorID,
		&c.ActivationCode,
		&c.RejectReason,
		&c.MotifCode,
		&c.DeactivateComment,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
