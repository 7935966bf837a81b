package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/scolaria/class_admin/internal/model"
)

// fakeAPI is an in-memory stand-in for the remote service.
type fakeAPI struct {
	mu sync.Mutex

	classes       []model.ClassRecord
	userClasses   map[string][]string
	pendingCounts map[string]int

	listErr     error
	rightsErr   error
	failPending map[string]bool
	mutationErr error

	listCalls  int
	countCalls int
}

func newFakeAPI(classes ...model.ClassRecord) *fakeAPI {
	return &fakeAPI{
		classes:       classes,
		userClasses:   make(map[string][]string),
		pendingCounts: make(map[string]int),
		failPending:   make(map[string]bool),
	}
}

func (f *fakeAPI) ListClasses(_ context.Context, _ model.Role) ([]model.ClassRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.ClassRecord, len(f.classes))
	copy(out, f.classes)
	return out, nil
}

func (f *fakeAPI) ListUserClasses(_ context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rightsErr != nil {
		return nil, f.rightsErr
	}
	return f.userClasses[userID], nil
}

func (f *fakeAPI) CountPendingRequests(_ context.Context, classID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countCalls++
	if f.failPending[classID] {
		return 0, errors.New("count unavailable")
	}
	return f.pendingCounts[classID], nil
}

func (f *fakeAPI) ApproveClass(_ context.Context, classID string) (*model.ClassRecord, error) {
	return f.setState(classID, model.ClassStateActive)
}

func (f *fakeAPI) RejectClass(_ context.Context, classID, _ string) (*model.ClassRecord, error) {
	return f.setState(classID, model.ClassStateRejected)
}

func (f *fakeAPI) DeactivateClass(_ context.Context, classID string, _ model.Motif, _ string) (*model.ClassRecord, error) {
	return f.setState(classID, model.ClassStateInactive)
}

func (f *fakeAPI) DeleteClass(_ context.Context, classID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutationErr != nil {
		return f.mutationErr
	}
	kept := f.classes[:0]
	for _, c := range f.classes {
		if c.ID != classID {
			kept = append(kept, c)
		}
	}
	f.classes = kept
	return nil
}

func (f *fakeAPI) GrantRight(_ context.Context, userID, classID string, canPublish, canModerate bool) (*model.PublicationRight, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutationErr != nil {
		return nil, f.mutationErr
	}
	f.userClasses[userID] = append(f.userClasses[userID], classID)
	return &model.PublicationRight{UserID: userID, ClassID: classID, CanPublish: canPublish, CanModerate: canModerate}, nil
}

func (f *fakeAPI) RevokeRight(_ context.Context, userID, classID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutationErr != nil {
		return f.mutationErr
	}
	kept := f.userClasses[userID][:0]
	for _, id := range f.userClasses[userID] {
		if id != classID {
			kept = append(kept, id)
		}
	}
	f.userClasses[userID] = kept
	return nil
}

func (f *fakeAPI) BulkGrantRights(_ context.Context, classID string, userIDs []string, _, _ bool) (*model.BulkGrantSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutationErr != nil {
		return nil, f.mutationErr
	}
	summary := &model.BulkGrantSummary{}
	for _, userID := range userIDs {
		f.userClasses[userID] = append(f.userClasses[userID], classID)
		summary.Succeeded = append(summary.Succeeded, userID)
	}
	return summary, nil
}

func (f *fakeAPI) SubmitAccessRequest(_ context.Context, classID, _, note string) (*model.AccessRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutationErr != nil {
		return nil, f.mutationErr
	}
	f.pendingCounts[classID]++
	return &model.AccessRequest{
		ID:      uuid.NewString(),
		ClassID: classID,
		State:   model.RequestStatePending,
		Note:    note,
	}, nil
}

func (f *fakeAPI) DecideAccessRequest(_ context.Context, requestID string, approve bool) (*model.AccessRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutationErr != nil {
		return nil, f.mutationErr
	}
	state := model.RequestStateDenied
	if approve {
		state = model.RequestStateApproved
	}
	return &model.AccessRequest{ID: requestID, State: state}, nil
}

func (f *fakeAPI) setState(classID string, to model.ClassState) (*model.ClassRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutationErr != nil {
		return nil, f.mutationErr
	}
	for i := range f.classes {
		if f.classes[i].ID == classID {
			f.classes[i].State = to
			clone := f.classes[i]
			return &clone, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakeAPI) calls() (list, count int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, f.countCalls
}
