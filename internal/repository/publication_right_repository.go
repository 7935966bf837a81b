package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scolaria/class_admin/internal/model"
	"github.com/scolaria/class_admin/internal/repository/base"
)

type PublicationRightRepository struct {
	*base.Repository
}

func NewPublicationRightRepository(pool *pgxpool.Pool) *PublicationRightRepository {
	return &PublicationRightRepository{Repository: base.NewRepository(pool)}
}

// Upsert creates or fully replaces the (user, class) right record. Both
// flags are always written together: grants carry full-replace semantics.
func (r *PublicationRightRepository) Upsert(ctx context.Context, right *model.PublicationRight) error {
	query := `
		INSERT INTO publication_rights (user_id, class_id, can_publish, can_moderate)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, class_id)
		DO UPDATE SET can_publish = EXCLUDED.can_publish, can_moderate = EXCLUDED.can_moderate
		RETURNING granted_at
	`

	err := r.QueryRow(
		ctx, query,
		right.UserID,
		right.ClassID,
		right.CanPublish,
		right.CanModerate,
	).Scan(&right.GrantedAt)

	if err != nil {
		return fmt.Errorf("upsert publication right: %w", err)
	}

	return nil
}

// Get fetches the right record for a (user, class) pair. Absence is not an
// error: it returns a zero-capability record, the registry's default-deny.
func (r *PublicationRightRepository) Get(ctx context.Context, userID, classID string) (model.PublicationRight, error) {
	query := `
		SELECT user_id, class_id, can_publish, can_moderate, granted_at
		FROM publication_rights
		WHERE user_id = $1 AND class_id = $2
	`

	var right model.PublicationRight
	err := r.QueryRow(ctx, query, userID, classID).Scan(
		&right.UserID,
		&right.ClassID,
		&right.CanPublish,
		&right.CanModerate,
		&right.GrantedAt,
	)

	if err != nil {
		if base.IsNoRows(err) {
			return model.PublicationRight{UserID: userID, ClassID: classID}, nil
		}
		return model.PublicationRight{}, fmt.Errorf("get publication right: %w", err)
	}

	return right, nil
}

// Delete removes the right record. Deleting an absent record is not an
// error, so revoke is idempotent.
func (r *PublicationRightRepository) Delete(ctx context.Context, userID, classID string) error {
	query := `
		DELETE FROM publication_rights
		WHERE user_id = $1 AND class_id = $2
	`

	if _, err := r.ExecAffected(ctx, query, userID, classID); err != nil {
		return fmt.Errorf("delete publication right: %w", err)
	}

	return nil
}

// ListByClass returns every right record attached to a class.
func (r *PublicationRightRepository) ListByClass(ctx context.Context, classID string) ([]*model.PublicationRight, error) {
	query := `
		SELECT user_id, class_id, can_publish, can_moderate, granted_at
		FROM publication_rights
		WHERE class_id = $1
		ORDER BY granted_at DESC
	`

	rows, err := r.Query(ctx, query, classID)
	if err != nil {
		return nil, fmt.Errorf("list class rights: %w", err)
	}
	defer rows.Close()

	var rights []*model.PublicationRight
	for rows.Next() {
		var right model.PublicationRight
		err := rows.Scan(
			&right.UserID,
			&right.ClassID,
			&right.CanPublish,
			&right.CanModerate,
			&right.GrantedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan publication right: %w", err)
		}
		rights = append(rights, &right)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rights: %w", err)
	}

	return rights, nil
}

// ListClassIDsByUser returns the ids of every class the user holds any
// rights on.
func (r *PublicationRightRepository) ListClassIDsByUser(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT class_id
		FROM publication_rights
		WHERE user_id = $1
		ORDER BY granted_at DESC
	`

	rows, err := r.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list user classes: %w", err)
	}
	defer rows.Close()

	var classIDs []string
	for rows.Next() {
		var classID string
		if err := rows.Scan(&classID); err != nil {
			return nil, fmt.Errorf("scan class id: %w", err)
		}
		classIDs = append(classIDs, classID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate class ids: %w", err)
	}

	return classIDs, nil
}
