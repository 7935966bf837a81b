package service

import (
	"context"
	"sync"
	"time"

	"github.com/scolaria/class_admin/internal/model"
)

// In-memory stores backing the service tests.

type memClassStore struct {
	mu      sync.Mutex
	classes map[string]*model.ClassRecord
}

func newMemClassStore() *memClassStore {
	return &memClassStore{classes: make(map[string]*model.ClassRecord)}
}

func (s *memClassStore) Create(_ context.Context, c *model.ClassRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.CreatedAt = time.Now()
	clone := *c
	s.classes[c.ID] = &clone
	return nil
}

func (s *memClassStore) GetByID(_ context.Context, id string) (*model.ClassRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.classes[id]
	if !ok {
		return nil, nil
	}
	clone := *c
	return &clone, nil
}

func (s *memClassStore) List(_ context.Context, _ model.ClassScope) ([]*model.ClassRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.ClassRecord
	for _, c := range s.classes {
		clone := *c
		out = append(out, &clone)
	}
	return out, nil
}

func (s *memClassStore) Approve(_ context.Context, id string) (int64, error) {
	return s.conditionalUpdate(id, model.ClassStatePending, func(c *model.ClassRecord) {
		c.State = model.ClassStateActive
	})
}

func (s *memClassStore) Reject(_ context.Context, id, reason string) (int64, error) {
	return s.conditionalUpdate(id, model.ClassStatePending, func(c *model.ClassRecord) {
		c.State = model.ClassStateRejected
		c.RejectReason = reason
	})
}

func (s *memClassStore) Deactivate(_ context.Context, id string, motif model.Motif, comment string) (int64, error) {
	return s.conditionalUpdate(id, model.ClassStateActive, func(c *model.ClassRecord) {
		c.State = model.ClassStateInactive
		c.MotifCode = string(motif)
		c.DeactivateComment = comment
	})
}

func (s *memClassStore) Delete(_ context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.classes[id]; !ok {
		return 0, nil
	}
	delete(s.classes, id)
	return 1, nil
}

func (s *memClassStore) conditionalUpdate(id string, expect model.ClassState, apply func(*model.ClassRecord)) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.classes[id]
	if !ok || c.State != expect {
		return 0, nil
	}
	apply(c)
	now := time.Now()
	c.UpdatedAt = &now
	return 1, nil
}

type memRightsStore struct {
	mu     sync.Mutex
	rights map[string]model.PublicationRight
}

func newMemRightsStore() *memRightsStore {
	return &memRightsStore{rights: make(map[string]model.PublicationRight)}
}

func rightKey(userID, classID string) string {
	return userID + "|" + classID
}

func (s *memRightsStore) Upsert(_ context.Context, right *model.PublicationRight) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	right.GrantedAt = time.Now()
	s.rights[rightKey(right.UserID, right.ClassID)] = *right
	return nil
}

func (s *memRightsStore) Get(_ context.Context, userID, classID string) (model.PublicationRight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	right, ok := s.rights[rightKey(userID, classID)]
	if !ok {
		return model.PublicationRight{UserID: userID, ClassID: classID}, nil
	}
	return right, nil
}

func (s *memRightsStore) Delete(_ context.Context, userID, classID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rights, rightKey(userID, classID))
	return nil
}

func (s *memRightsStore) ListByClass(_ context.Context, classID string) ([]*model.PublicationRight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.PublicationRight
	for _, right := range s.rights {
		if right.ClassID == classID {
			clone := right
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *memRightsStore) ListClassIDsByUser(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, right := range s.rights {
		if right.UserID == userID {
			out = append(out, right.ClassID)
		}
	}
	return out, nil
}

type memUserStore struct {
	users map[string]*model.User
}

func newMemUserStore(users ...*model.User) *memUserStore {
	s := &memUserStore{users: make(map[string]*model.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *memUserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	clone := *u
	return &clone, nil
}

type memRequestStore struct {
	mu       sync.Mutex
	requests map[string]*model.AccessRequest
}

func newMemRequestStore() *memRequestStore {
	return &memRequestStore{requests: make(map[string]*model.AccessRequest)}
}

func (s *memRequestStore) Create(_ context.Context, req *model.AccessRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req.CreatedAt = time.Now()
	clone := *req
	s.requests[req.ID] = &clone
	return nil
}

func (s *memRequestStore) GetByID(_ context.Context, id string) (*model.AccessRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, nil
	}
	clone := *req
	return &clone, nil
}

func (s *memRequestStore) ListByClass(_ context.Context, classID string) ([]*model.AccessRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.AccessRequest
	for _, req := range s.requests {
		if req.ClassID == classID {
			clone := *req
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *memRequestStore) CountPendingByClass(_ context.Context, classID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, req := range s.requests {
		if req.ClassID == classID && req.State == model.RequestStatePending {
			count++
		}
	}
	return count, nil
}

func (s *memRequestStore) Decide(_ context.Context, id string, to model.AccessRequestState) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok || req.State != model.RequestStatePending {
		return 0, nil
	}
	req.State = to
	now := time.Now()
	req.DecidedAt = &now
	return 1, nil
}
