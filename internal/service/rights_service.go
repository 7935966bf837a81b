package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/scolaria/class_admin/internal/model"
)

// RightsStore is the persistence surface of the publication-rights
// registry.
type RightsStore interface {
	Upsert(ctx context.Context, right *model.PublicationRight) error
	Get(ctx context.Context, userID, classID string) (model.PublicationRight, error)
	Delete(ctx context.Context, userID, classID string) error
	ListByClass(ctx context.Context, classID string) ([]*model.PublicationRight, error)
	ListClassIDsByUser(ctx context.Context, userID string) ([]string, error)
}

// UserStore resolves user ids to role-bearing records.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

type RightsService struct {
	rights  RightsStore
	classes ClassStore
	users   UserStore
	logger  *zap.Logger
}

func NewRightsService(rights RightsStore, classes ClassStore, users UserStore, logger *zap.Logger) *RightsService {
	return &RightsService{
		rights:  rights,
		classes: classes,
		users:   users,
		logger:  logger,
	}
}

// Grant upserts the (user, class) right record with full-replace
// semantics. Only professeur-role users may hold publication rights; the
// policy is enforced here at the boundary, not in the data model.
func (s *RightsService) Grant(ctx context.Context, userID, classID string, canPublish, canModerate bool) (*model.PublicationRight, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if user == nil {
		return nil, fmt.Errorf("%w: user %s", model.ErrNotFound, userID)
	}

	if !user.IsProfesseur() {
		return nil, fmt.Errorf("%w: user %s has role %q", model.ErrInvalidRole, userID, user.Role)
	}

	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("get class: %w", err)
	}

	if class == nil {
		return nil, fmt.Errorf("%w: class %s", model.ErrNotFound, classID)
	}

	right := &model.PublicationRight{
		UserID:      userID,
		ClassID:     classID,
		CanPublish:  canPublish,
		CanModerate: canModerate,
	}

	if err := s.rights.Upsert(ctx, right); err != nil {
		return nil, fmt.Errorf("upsert right: %w", err)
	}

	s.logger.Info("Publication rights granted",
		zap.String("user_id", userID),
		zap.String("class_id", classID),
		zap.Bool("can_publish", canPublish),
		zap.Bool("can_moderate", canModerate),
	)

	return right, nil
}

// BulkGrant applies Grant to each user in turn, collecting per-user
// outcomes instead of aborting on the first failure. Partial success is
// reported, never masked.
func (s *RightsService) BulkGrant(ctx context.Context, classID string, userIDs []string, canPublish, canModerate bool) (*model.BulkGrantSummary, error) {
	summary := &model.BulkGrantSummary{}

	for _, userID := range userIDs {
		if _, err := s.Grant(ctx, userID, classID, canPublish, canModerate); err != nil {
			summary.Failed = append(summary.Failed, model.BulkGrantFailure{
				UserID: userID,
				Reason: err.Error(),
			})
			continue
		}
		summary.Succeeded = append(summary.Succeeded, userID)
	}

	s.logger.Info("Bulk grant finished",
		zap.String("class_id", classID),
		zap.Int("succeeded", len(summary.Succeeded)),
		zap.Int("failed", len(summary.Failed)),
	)

	return summary, nil
}

// Revoke removes the right record. Revoking an absent record is not an
// error.
func (s *RightsService) Revoke(ctx context.Context, userID, classID string) error {
	if err := s.rights.Delete(ctx, userID, classID); err != nil {
		return fmt.Errorf("revoke right: %w", err)
	}

	s.logger.Info("Publication rights revoked",
		zap.String("user_id", userID),
		zap.String("class_id", classID),
	)

	return nil
}

// Get returns the right record for a (user, class) pair. Absence yields a
// zero-capability record, never an error.
func (s *RightsService) Get(ctx context.Context, userID, classID string) (model.PublicationRight, error) {
	right, err := s.rights.Get(ctx, userID, classID)
	if err != nil {
		return model.PublicationRight{}, fmt.Errorf("get right: %w", err)
	}

	return right, nil
}

// ListUsersForClass returns every right record attached to a class.
func (s *RightsService) ListUsersForClass(ctx context.Context, classID string) ([]*model.PublicationRight, error) {
	rights, err := s.rights.ListByClass(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("list class rights: %w", err)
	}

	return rights, nil
}

// ListClassesForUser returns the ids of every class the user holds rights
// on.
func (s *RightsService) ListClassesForUser(ctx context.Context, userID string) ([]string, error) {
	classIDs, err := s.rights.ListClassIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user classes: %w", err)
	}

	return classIDs, nil
}
