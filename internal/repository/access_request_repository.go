package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scolaria/class_admin/internal/model"
	"github.com/scolaria/class_admin/internal/repository/base"
)

type AccessRequestRepository struct {
	*base.Repository
}

func NewAccessRequestRepository(pool *pgxpool.Pool) *AccessRequestRepository {
	return &AccessRequestRepository{Repository: base.NewRepository(pool)}
}

// Create inserts a request in the pending state.
func (r *AccessRequestRepository) Create(ctx context.Context, req *model.AccessRequest) error {
	query := `
		INSERT INTO access_requests (id, class_id, requester_id, state, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.QueryRow(
		ctx, query,
		req.ID,
		req.ClassID,
		req.RequesterID,
		req.State,
		req.Note,
	).Scan(&req.CreatedAt)

	if err != nil {
		return fmt.Errorf("create access request: %w", err)
	}

	return nil
}

// GetByID fetches a request by id, returning nil when it does not exist.
func (r *AccessRequestRepository) GetByID(ctx context.Context, id string) (*model.AccessRequest, error) {
	query := `
		SELECT id, class_id, requester_id, state, note, created_at, decided_at
		FROM access_requests
		WHERE id = $1
	`

	var req model.AccessRequest
	err := r.QueryRow(ctx, query, id).Scan(
		&req.ID,
		&req.ClassID,
		&req.RequesterID,
		&req.State,
		&req.Note,
		&req.CreatedAt,
		&req.DecidedAt,
	)

	if err != nil {
		if base.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get access request: %w", err)
	}

	return &req, nil
}

// ListByClass returns all requests attached to a class, newest first.
func (r *AccessRequestRepository) ListByClass(ctx context.Context, classID string) ([]*model.AccessRequest, error) {
	query := `
		SELECT id, class_id, requester_id, state, note, created_at, decided_at
		FROM access_requests
		WHERE class_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.Query(ctx, query, classID)
	if err != nil {
		return nil, fmt.Errorf("list access requests: %w", err)
	}
	defer rows.Close()

	var requests []*model.AccessRequest
	for rows.Next() {
		var req model.AccessRequest
		err := rows.Scan(
			&req.ID,
			&req.ClassID,
			&req.RequesterID,
			&req.State,
			&req.Note,
			&req.CreatedAt,
			&req.DecidedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan access request: %w", err)
		}
		requests = append(requests, &req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}

	return requests, nil
}

// CountPendingByClass counts requests still awaiting a decision. Only
// pending requests feed the badge shown to approvers.
func (r *AccessRequestRepository) CountPendingByClass(ctx context.Context, classID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM access_requests
		WHERE class_id = $1 AND state = $2
	`

	var count int
	err := r.QueryRow(ctx, query, classID, model.RequestStatePending).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending requests: %w", err)
	}

	return count, nil
}

// Decide moves a pending request to its terminal state. The WHERE clause
// on the pending state keeps terminal requests immutable.
func (r *AccessRequestRepository) Decide(ctx context.Context, id string, to model.AccessRequestState) (int64, error) {
	query := `
		UPDATE access_requests
		SET state = $1, decided_at = now()
		WHERE id = $2 AND state = $3
	`

	affected, err := r.ExecAffected(ctx, query, to, id, model.RequestStatePending)
	if err != nil {
		return 0, fmt.Errorf("decide access request: %w", err)
	}

	return affected, nil
}
