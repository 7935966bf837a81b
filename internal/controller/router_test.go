package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scolaria/class_admin/internal/model"
	"github.com/scolaria/class_admin/internal/service"
)

const testSecret = "router-test-secret"

// Minimal in-memory stores behind the real services, so the tests cover
// routing, auth and error mapping end to end without a database.

type stubClassStore struct {
	classes map[string]*model.ClassRecord
	rights  *stubRightsStore
}

func (s *stubClassStore) Create(_ context.Context, c *model.ClassRecord) error {
	clone := *c
	s.classes[c.ID] = &clone
	return nil
}

func (s *stubClassStore) GetByID(_ context.Context, id string) (*model.ClassRecord, error) {
	c, ok := s.classes[id]
	if !ok {
		return nil, nil
	}
	clone := *c
	return &clone, nil
}

func (s *stubClassStore) List(_ context.Context, scope model.ClassScope) ([]*model.ClassRecord, error) {
	var out []*model.ClassRecord
	for _, c := range s.classes {
		if !s.visible(c, scope) {
			continue
		}
		clone := *c
		out = append(out, &clone)
	}
	return out, nil
}

// visible mirrors the scoping the SQL repository applies: administrators
// see everything, establishments their own classes, professors active
// classes plus those they hold rights on.
func (s *stubClassStore) visible(c *model.ClassRecord, scope model.ClassScope) bool {
	switch scope.Role {
	case model.RoleAdministrateur:
		return true
	case model.RoleEtablissement:
		if scope.EstablishmentID == nil {
			return true
		}
		return c.EstablishmentID != nil && *c.EstablishmentID == *scope.EstablishmentID
	case model.RoleProfesseur:
		if c.State == model.ClassStateActive {
			return true
		}
		_, ok := s.rights.rights[scope.UserID+"|"+c.ID]
		return ok
	}
	return false
}

func (s *stubClassStore) Approve(_ context.Context, id string) (int64, error) {
	return s.update(id, model.ClassStatePending, func(c *model.ClassRecord) {
		c.State = model.ClassStateActive
	})
}

func (s *stubClassStore) Reject(_ context.Context, id, reason string) (int64, error) {
	return s.update(id, model.ClassStatePending, func(c *model.ClassRecord) {
		c.State = model.ClassStateRejected
		c.RejectReason = reason
	})
}

func (s *stubClassStore) Deactivate(_ context.Context, id string, motif model.Motif, comment string) (int64, error) {
	return s.update(id, model.ClassStateActive, func(c *model.ClassRecord) {
		c.State = model.ClassStateInactive
		c.MotifCode = string(motif)
		c.DeactivateComment = comment
	})
}

func (s *stubClassStore) Delete(_ context.Context, id string) (int64, error) {
	if _, ok := s.classes[id]; !ok {
		return 0, nil
	}
	delete(s.classes, id)
	return 1, nil
}

func (s *stubClassStore) update(id string, expect model.ClassState, apply func(*model.ClassRecord)) (int64, error) {
	c, ok := s.classes[id]
	if !ok || c.State != expect {
		return 0, nil
	}
	apply(c)
	return 1, nil
}

type stubRightsStore struct {
	rights map[string]model.PublicationRight
}

func (s *stubRightsStore) Upsert(_ context.Context, right *model.PublicationRight) error {
	right.GrantedAt = time.Now()
	s.rights[right.UserID+"|"+right.ClassID] = *right
	return nil
}

func (s *stubRightsStore) Get(_ context.Context, userID, classID string) (model.PublicationRight, error) {
	right, ok := s.rights[userID+"|"+classID]
	if !ok {
		return model.PublicationRight{UserID: userID, ClassID: classID}, nil
	}
	return right, nil
}

func (s *stubRightsStore) Delete(_ context.Context, userID, classID string) error {
	delete(s.rights, userID+"|"+classID)
	return nil
}

func (s *stubRightsStore) ListByClass(_ context.Context, classID string) ([]*model.PublicationRight, error) {
	var out []*model.PublicationRight
	for _, right := range s.rights {
		if right.ClassID == classID {
			clone := right
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *stubRightsStore) ListClassIDsByUser(_ context.Context, userID string) ([]string, error) {
	var out []string
	for _, right := range s.rights {
		if right.UserID == userID {
			out = append(out, right.ClassID)
		}
	}
	return out, nil
}

type stubUserStore struct {
	users map[string]*model.User
}

func (s *stubUserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	clone := *u
	return &clone, nil
}

type stubRequestStore struct {
	requests map[string]*model.AccessRequest
}

func (s *stubRequestStore) Create(_ context.Context, req *model.AccessRequest) error {
	clone := *req
	s.requests[req.ID] = &clone
	return nil
}

func (s *stubRequestStore) GetByID(_ context.Context, id string) (*model.AccessRequest, error) {
	req, ok := s.requests[id]
	if !ok {
		return nil, nil
	}
	clone := *req
	return &clone, nil
}

func (s *stubRequestStore) ListByClass(_ context.Context, classID string) ([]*model.AccessRequest, error) {
	var out []*model.AccessRequest
	for _, req := range s.requests {
		if req.ClassID == classID {
			clone := *req
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *stubRequestStore) CountPendingByClass(_ context.Context, classID string) (int, error) {
	count := 0
	for _, req := range s.requests {
		if req.ClassID == classID && req.State == model.RequestStatePending {
			count++
		}
	}
	return count, nil
}

func (s *stubRequestStore) Decide(_ context.Context, id string, to model.AccessRequestState) (int64, error) {
	req, ok := s.requests[id]
	if !ok || req.State != model.RequestStatePending {
		return 0, nil
	}
	req.State = to
	now := time.Now()
	req.DecidedAt = &now
	return 1, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	rights := &stubRightsStore{rights: make(map[string]model.PublicationRight)}
	classes := &stubClassStore{classes: make(map[string]*model.ClassRecord), rights: rights}
	users := &stubUserStore{users: map[string]*model.User{
		"prof-1":  {ID: "prof-1", Role: model.RoleProfesseur},
		"prof-2":  {ID: "prof-2", Role: model.RoleProfesseur},
		"dir-1":   {ID: "dir-1", Role: model.RoleEtablissement},
		"admin-1": {ID: "admin-1", Role: model.RoleAdministrateur},
	}}
	requests := &stubRequestStore{requests: make(map[string]*model.AccessRequest)}

	handler := NewHandler(
		service.NewClassService(classes, rights, users, logger),
		service.NewRightsService(rights, classes, users, logger),
		service.NewAccessRequestService(requests, classes, logger),
		logger,
	)

	engine := gin.New()
	RegisterRoutes(engine, handler, testSecret)
	return engine
}

func signToken(t *testing.T, userID string, role model.Role) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doRequest(t *testing.T, engine *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	return recorder
}

func TestHealthIsOpen(t *testing.T) {
	engine := newTestRouter(t)

	resp := doRequest(t, engine, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestAuthRequired(t *testing.T) {
	engine := newTestRouter(t)

	resp := doRequest(t, engine, http.MethodGet, "/classes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = doRequest(t, engine, http.MethodGet, "/classes", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuthRejectsForeignSignature(t *testing.T) {
	engine := newTestRouter(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "admin-1",
		"role":    string(model.RoleAdministrateur),
	})
	signed, err := token.SignedString([]byte("some-other-secret"))
	require.NoError(t, err)

	resp := doRequest(t, engine, http.MethodGet, "/classes", signed, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestClassLifecycleOverHTTP(t *testing.T) {
	engine := newTestRouter(t)
	profToken := signToken(t, "prof-1", model.RoleProfesseur)
	dirToken := signToken(t, "dir-1", model.RoleEtablissement)

	resp := doRequest(t, engine, http.MethodPost, "/classes", profToken, gin.H{
		"name":            "CM2 A",
		"level":           "CM2",
		"activation_code": "245801",
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	var created model.ClassRecord
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	assert.Equal(t, model.ClassStatePending, created.State)

	resp = doRequest(t, engine, http.MethodPost, "/classes/"+created.ID+"/approve", dirToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var approved model.ClassRecord
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &approved))
	assert.Equal(t, model.ClassStateActive, approved.State)

	// Approving twice maps the transition failure to 409.
	resp = doRequest(t, engine, http.MethodPost, "/classes/"+created.ID+"/approve", dirToken, nil)
	assert.Equal(t, http.StatusConflict, resp.Code)
}

// The scope query parameter must not widen visibility past the JWT role.
func TestListClassesScopeCannotEscalate(t *testing.T) {
	engine := newTestRouter(t)
	creatorToken := signToken(t, "prof-1", model.RoleProfesseur)
	otherToken := signToken(t, "prof-2", model.RoleProfesseur)
	adminToken := signToken(t, "admin-1", model.RoleAdministrateur)

	resp := doRequest(t, engine, http.MethodPost, "/classes", creatorToken, gin.H{
		"name":            "3e B",
		"level":           "3e",
		"activation_code": "518203",
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	listAs := func(token, query string) []model.ClassRecord {
		resp := doRequest(t, engine, http.MethodGet, "/classes"+query, token, nil)
		require.Equal(t, http.StatusOK, resp.Code)
		var classes []model.ClassRecord
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &classes))
		return classes
	}

	// The creator holds rights on the pending class; another professor
	// does not, and requesting a wider scope changes nothing.
	assert.Len(t, listAs(creatorToken, ""), 1)
	assert.Empty(t, listAs(otherToken, ""))
	assert.Empty(t, listAs(otherToken, "?scope=administrateur"))
	assert.Empty(t, listAs(otherToken, "?scope=etablissement"))

	// An administrator sees everything, and may narrow.
	assert.Len(t, listAs(adminToken, ""), 1)
	assert.Empty(t, listAs(adminToken, "?scope=professeur"))
}

func TestCreateClassValidationOverHTTP(t *testing.T) {
	engine := newTestRouter(t)
	token := signToken(t, "prof-1", model.RoleProfesseur)

	resp := doRequest(t, engine, http.MethodPost, "/classes", token, gin.H{
		"name":            "CM2 A",
		"level":           "CM2",
		"activation_code": "24x801",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestRejectRequiresReason(t *testing.T) {
	engine := newTestRouter(t)
	token := signToken(t, "dir-1", model.RoleEtablissement)

	resp := doRequest(t, engine, http.MethodPost, "/classes/any/reject", token, gin.H{})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestGetClassNotFound(t *testing.T) {
	engine := newTestRouter(t)
	token := signToken(t, "admin-1", model.RoleAdministrateur)

	resp := doRequest(t, engine, http.MethodGet, "/classes/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGrantRightRoleMapping(t *testing.T) {
	engine := newTestRouter(t)
	profToken := signToken(t, "prof-1", model.RoleProfesseur)
	adminToken := signToken(t, "admin-1", model.RoleAdministrateur)

	resp := doRequest(t, engine, http.MethodPost, "/classes", profToken, gin.H{
		"name":            "6e A",
		"level":           "6e",
		"activation_code": "245801",
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	var created model.ClassRecord
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))

	// Granting to a non-professeur maps to 403.
	resp = doRequest(t, engine, http.MethodPost, "/rights/dir-1/"+created.ID+"?canPublish=true", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = doRequest(t, engine, http.MethodPost, "/rights/prof-1/"+created.ID+"?canPublish=true&canModerate=true", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = doRequest(t, engine, http.MethodDelete, "/rights/prof-1/"+created.ID, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.Code)
}

func TestAccessRequestFlowOverHTTP(t *testing.T) {
	engine := newTestRouter(t)
	profToken := signToken(t, "prof-1", model.RoleProfesseur)
	dirToken := signToken(t, "dir-1", model.RoleEtablissement)

	resp := doRequest(t, engine, http.MethodPost, "/classes", profToken, gin.H{
		"name":            "5e B",
		"level":           "5e",
		"activation_code": "610348",
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	var created model.ClassRecord
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))

	// Wrong activation code maps to 422.
	resp = doRequest(t, engine, http.MethodPost, "/access-requests", profToken, gin.H{
		"class_id": created.ID,
		"token":    "000000",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = doRequest(t, engine, http.MethodPost, "/access-requests", profToken, gin.H{
		"class_id": created.ID,
		"token":    "610348",
		"note":     "joining as co-teacher",
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	var request model.AccessRequest
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &request))
	assert.Equal(t, model.RequestStatePending, request.State)

	resp = doRequest(t, engine, http.MethodPost, "/access-requests/"+request.ID+"/deny", dirToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var decided model.AccessRequest
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &decided))
	assert.Equal(t, model.RequestStateDenied, decided.State)

	// Denied is terminal.
	resp = doRequest(t, engine, http.MethodPost, "/access-requests/"+request.ID+"/approve", dirToken, nil)
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestBulkGrantOverHTTP(t *testing.T) {
	engine := newTestRouter(t)
	profToken := signToken(t, "prof-1", model.RoleProfesseur)
	adminToken := signToken(t, "admin-1", model.RoleAdministrateur)

	resp := doRequest(t, engine, http.MethodPost, "/classes", profToken, gin.H{
		"name":            "4e A",
		"level":           "4e",
		"activation_code": "903214",
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	var created model.ClassRecord
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))

	resp = doRequest(t, engine, http.MethodPost, "/classes/"+created.ID+"/rights/bulk", adminToken, gin.H{
		"user_ids":    []string{"prof-1", "dir-1", "ghost"},
		"can_publish": true,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var summary model.BulkGrantSummary
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &summary))
	assert.Equal(t, []string{"prof-1"}, summary.Succeeded)
	assert.Len(t, summary.Failed, 2)
}
