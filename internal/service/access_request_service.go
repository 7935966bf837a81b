package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scolaria/class_admin/internal/model"
)

// AccessRequestStore is the persistence surface of the access-request
// workflow.
type AccessRequestStore interface {
	Create(ctx context.Context, req *model.AccessRequest) error
	GetByID(ctx context.Context, id string) (*model.AccessRequest, error)
	ListByClass(ctx context.Context, classID string) ([]*model.AccessRequest, error)
	CountPendingByClass(ctx context.Context, classID string) (int, error)
	Decide(ctx context.Context, id string, to model.AccessRequestState) (int64, error)
}

type AccessRequestService struct {
	requests AccessRequestStore
	classes  ClassStore
	logger   *zap.Logger
}

func NewAccessRequestService(requests AccessRequestStore, classes ClassStore, logger *zap.Logger) *AccessRequestService {
	return &AccessRequestService{
		requests: requests,
		classes:  classes,
		logger:   logger,
	}
}

// SubmitAccessRequestInput carries a join attempt against a class.
type SubmitAccessRequestInput struct {
	ClassID     string `validate:"required"`
	Token       string `validate:"required,len=6,numeric"`
	RequesterID string `validate:"required"`
	Note        string
}

// Submit validates the activation token against the class and records a
// pending request for an authorized actor to decide.
func (s *AccessRequestService) Submit(ctx context.Context, input SubmitAccessRequestInput) (*model.AccessRequest, error) {
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %s", model.ErrValidation, err)
	}

	class, err := s.classes.GetByID(ctx, input.ClassID)
	if err != nil {
		return nil, fmt.Errorf("get class: %w", err)
	}

	if class == nil {
		return nil, fmt.Errorf("%w: class %s", model.ErrNotFound, input.ClassID)
	}

	if input.Token != class.ActivationCode {
		return nil, fmt.Errorf("%w: activation code does not match", model.ErrValidation)
	}

	request := &model.AccessRequest{
		ID:          uuid.NewString(),
		ClassID:     input.ClassID,
		RequesterID: input.RequesterID,
		State:       model.RequestStatePending,
		Note:        input.Note,
	}

	if err := s.requests.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	s.logger.Info("Access request submitted",
		zap.String("request_id", request.ID),
		zap.String("class_id", input.ClassID),
		zap.String("requester_id", input.RequesterID),
	)

	return request, nil
}

// Decide moves a pending request to approved or denied. Terminal requests
// are immutable: re-application needs a new request. The decision touches
// only the request itself; it does not grant publication rights.
func (s *AccessRequestService) Decide(ctx context.Context, id string, approve bool) (*model.AccessRequest, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}

	if request == nil {
		return nil, fmt.Errorf("%w: request %s", model.ErrNotFound, id)
	}

	if !request.IsPending() {
		return nil, fmt.Errorf("%w: request %s is already %s", model.ErrInvalidTransition, id, request.State)
	}

	to := model.RequestStateDenied
	if approve {
		to = model.RequestStateApproved
	}

	affected, err := s.requests.Decide(ctx, id, to)
	if err != nil {
		return nil, fmt.Errorf("decide request: %w", err)
	}

	if affected == 0 {
		return nil, fmt.Errorf("%w: request %s was decided concurrently", model.ErrInvalidTransition, id)
	}

	s.logger.Info("Access request decided",
		zap.String("request_id", id),
		zap.String("state", string(to)),
	)

	return s.requests.GetByID(ctx, id)
}

// ListByClass returns all requests attached to a class.
func (s *AccessRequestService) ListByClass(ctx context.Context, classID string) ([]*model.AccessRequest, error) {
	requests, err := s.requests.ListByClass(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	return requests, nil
}

// CountPending counts the requests still awaiting a decision for a class.
func (s *AccessRequestService) CountPending(ctx context.Context, classID string) (int, error) {
	count, err := s.requests.CountPendingByClass(ctx, classID)
	if err != nil {
		return 0, fmt.Errorf("count pending requests: %w", err)
	}

	return count, nil
}
