package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scolaria/class_admin/internal/lifecycle"
	"github.com/scolaria/class_admin/internal/model"
)

var validate = validator.New()

// ClassStore is the persistence surface the class service needs.
type ClassStore interface {
	Create(ctx context.Context, c *model.ClassRecord) error
	GetByID(ctx context.Context, id string) (*model.ClassRecord, error)
	List(ctx context.Context, scope model.ClassScope) ([]*model.ClassRecord, error)
	Approve(ctx context.Context, id string) (int64, error)
	Reject(ctx context.Context, id, reason string) (int64, error)
	Deactivate(ctx context.Context, id string, motif model.Motif, comment string) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type ClassService struct {
	classes ClassStore
	rights  RightsStore
	users   UserStore
	logger  *zap.Logger
}

func NewClassService(classes ClassStore, rights RightsStore, users UserStore, logger *zap.Logger) *ClassService {
	return &ClassService{
		classes: classes,
		rights:  rights,
		users:   users,
		logger:  logger,
	}
}

// CreateClassInput carries the fields of a class creation.
type CreateClassInput struct {
	Name            string `validate:"required"`
	Level           string `validate:"required"`
	ActivationCode  string `validate:"required,len=6,numeric"`
	EstablishmentID *string
	ModeratorID     *string
	CreatorID       string `validate:"required"`
}

// Create persists a new class in the approval queue and grants the creator
// full publication rights on it. This is the only automatic grant in the
// system; every other grant is an explicit action.
func (s *ClassService) Create(ctx context.Context, input CreateClassInput) (*model.ClassRecord, error) {
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %s", model.ErrValidation, err)
	}

	creator, err := s.users.GetByID(ctx, input.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("get creator: %w", err)
	}

	if creator == nil {
		return nil, fmt.Errorf("%w: user %s", model.ErrNotFound, input.CreatorID)
	}

	// The creator receives the automatic grant below, and only professeur
	// and administrateur users may hold publication rights.
	if creator.Role != model.RoleProfesseur && creator.Role != model.RoleAdministrateur {
		return nil, fmt.Errorf("%w: user %s has role %q", model.ErrInvalidRole, input.CreatorID, creator.Role)
	}

	class := &model.ClassRecord{
		ID:              uuid.NewString(),
		Name:            input.Name,
		Level:           input.Level,
		State:           lifecycle.Initial(),
		EstablishmentID: input.EstablishmentID,
		ModeratorID:     input.ModeratorID,
		ActivationCode:  input.ActivationCode,
	}

	if err := s.classes.Create(ctx, class); err != nil {
		return nil, fmt.Errorf("create class: %w", err)
	}

	right := &model.PublicationRight{
		UserID:      input.CreatorID,
		ClassID:     class.ID,
		CanPublish:  true,
		CanModerate: true,
	}

	if err := s.rights.Upsert(ctx, right); err != nil {
		return nil, fmt.Errorf("grant creator rights: %w", err)
	}

	s.logger.Info("Class created",
		zap.String("class_id", class.ID),
		zap.String("creator_id", input.CreatorID),
	)

	return class, nil
}

// GetByID fetches a class.
func (s *ClassService) GetByID(ctx context.Context, id string) (*model.ClassRecord, error) {
	class, err := s.classes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get class: %w", err)
	}

	if class == nil {
		return nil, fmt.Errorf("%w: class %s", model.ErrNotFound, id)
	}

	return class, nil
}

// List returns classes visible to the scope.
func (s *ClassService) List(ctx context.Context, scope model.ClassScope) ([]*model.ClassRecord, error) {
	classes, err := s.classes.List(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}

	return classes, nil
}

// Approve moves a pending class to active.
func (s *ClassService) Approve(ctx context.Context, id string) (*model.ClassRecord, error) {
	if err := s.checkTransition(ctx, id, lifecycle.ActionApprove); err != nil {
		return nil, err
	}

	affected, err := s.classes.Approve(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("approve class: %w", err)
	}

	if affected == 0 {
		// The conditional update lost a race with a concurrent transition.
		return nil, fmt.Errorf("%w: class %s is no longer pending", model.ErrInvalidTransition, id)
	}

	s.logger.Info("Class approved", zap.String("class_id", id))

	return s.GetByID(ctx, id)
}

// Reject moves a pending class to rejected. The reason is required and
// recorded with the class.
func (s *ClassService) Reject(ctx context.Context, id, reason string) (*model.ClassRecord, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: reject reason is required", model.ErrValidation)
	}

	if err := s.checkTransition(ctx, id, lifecycle.ActionReject); err != nil {
		return nil, err
	}

	affected, err := s.classes.Reject(ctx, id, reason)
	if err != nil {
		return nil, fmt.Errorf("reject class: %w", err)
	}

	if affected == 0 {
		return nil, fmt.Errorf("%w: class %s is no longer pending", model.ErrInvalidTransition, id)
	}

	s.logger.Info("Class rejected",
		zap.String("class_id", id),
		zap.String("reason", reason),
	)

	return s.GetByID(ctx, id)
}

// Deactivate moves an active class to inactive under a motif from the
// closed registry, with an optional free-text comment.
func (s *ClassService) Deactivate(ctx context.Context, id string, motif model.Motif, comment string) (*model.ClassRecord, error) {
	if !motif.IsKnown() {
		return nil, fmt.Errorf("%w: unknown motif %q", model.ErrValidation, motif)
	}

	if err := s.checkTransition(ctx, id, lifecycle.ActionDeactivate); err != nil {
		return nil, err
	}

	affected, err := s.classes.Deactivate(ctx, id, motif, comment)
	if err != nil {
		return nil, fmt.Errorf("deactivate class: %w", err)
	}

	if affected == 0 {
		return nil, fmt.Errorf("%w: class %s is no longer active", model.ErrInvalidTransition, id)
	}

	s.logger.Info("Class deactivated",
		zap.String("class_id", id),
		zap.String("motif", string(motif)),
	)

	return s.GetByID(ctx, id)
}

// Delete removes a class together with its rights and requests.
func (s *ClassService) Delete(ctx context.Context, id string) error {
	affected, err := s.classes.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete class: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("%w: class %s", model.ErrNotFound, id)
	}

	s.logger.Info("Class deleted", zap.String("class_id", id))

	return nil
}

// checkTransition verifies the class exists and the lifecycle permits the
// action from its current state.
func (s *ClassService) checkTransition(ctx context.Context, id string, action lifecycle.Action) error {
	class, err := s.classes.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get class: %w", err)
	}

	if class == nil {
		return fmt.Errorf("%w: class %s", model.ErrNotFound, id)
	}

	if _, err := lifecycle.Transition(class.State, action); err != nil {
		return err
	}

	return nil
}
