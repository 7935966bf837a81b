package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/scolaria/class_admin/internal/capability"
	"github.com/scolaria/class_admin/internal/model"
)

var validate = validator.New()

// Service is the remote API surface the dashboard consumes.
// *client.Client satisfies it.
type Service interface {
	ListClasses(ctx context.Context, scope model.Role) ([]model.ClassRecord, error)
	ListUserClasses(ctx context.Context, userID string) ([]string, error)
	CountPendingRequests(ctx context.Context, classID string) (int, error)

	ApproveClass(ctx context.Context, classID string) (*model.ClassRecord, error)
	RejectClass(ctx context.Context, classID, reason string) (*model.ClassRecord, error)
	DeactivateClass(ctx context.Context, classID string, motif model.Motif, comment string) (*model.ClassRecord, error)
	DeleteClass(ctx context.Context, classID string) error
	GrantRight(ctx context.Context, userID, classID string, canPublish, canModerate bool) (*model.PublicationRight, error)
	RevokeRight(ctx context.Context, userID, classID string) error
	BulkGrantRights(ctx context.Context, classID string, userIDs []string, canPublish, canModerate bool) (*model.BulkGrantSummary, error)
	SubmitAccessRequest(ctx context.Context, classID, token, note string) (*model.AccessRequest, error)
	DecideAccessRequest(ctx context.Context, requestID string, approve bool) (*model.AccessRequest, error)
}

// Viewer identifies the actor a snapshot is computed for. The role is
// always passed in explicitly; the dashboard never reads it from ambient
// state.
type Viewer struct {
	UserID string
	Role   model.Role
}

// Row is one class as the viewer sees it: the record plus the resolved
// action set.
type Row struct {
	Class        model.ClassRecord
	Decision     capability.Decision
	HasRights    bool
	PendingCount int
}

// Snapshot is a fully resolved dashboard page.
type Snapshot struct {
	Viewer   Viewer
	Filter   model.ClassFilter
	Rows     []Row
	Total    int
	LoadedAt time.Time
}

const defaultPageSize = 20

// Controller orchestrates dashboard loads: role-scoped class fetch,
// concurrent per-class auxiliary fetches, capability resolution, and
// filtering. Every mutation goes through the remote service and is
// followed by a full reload; nothing is merged optimistically.
type Controller struct {
	api    Service
	cache  *snapshotCache
	logger *zap.Logger
}

func NewController(api Service, cacheTTL time.Duration, logger *zap.Logger) *Controller {
	return &Controller{
		api:    api,
		cache:  newSnapshotCache(cacheTTL),
		logger: logger,
	}
}

// Subscribe registers a callback invoked with each cache key dropped by an
// invalidation.
func (c *Controller) Subscribe(fn func(key string)) {
	c.cache.subscribe(fn)
}

// Load returns the dashboard snapshot for the viewer, serving from cache
// when fresh enough and collapsing concurrent loads of the same key.
func (c *Controller) Load(ctx context.Context, viewer Viewer, filter model.ClassFilter) (*Snapshot, error) {
	key := cacheKey(viewer, filter)

	if snapshot, ok := c.cache.get(key); ok {
		return snapshot, nil
	}

	return c.cache.load(key, func() (*Snapshot, error) {
		return c.buildSnapshot(ctx, viewer, filter)
	})
}

func (c *Controller) buildSnapshot(ctx context.Context, viewer Viewer, filter model.ClassFilter) (*Snapshot, error) {
	// The class list is the one fetch whose failure fails the load.
	classes, err := c.api.ListClasses(ctx, viewer.Role)
	if err != nil {
		return nil, fmt.Errorf("load classes: %w", err)
	}

	hasRights := c.loadViewerRights(ctx, viewer)
	counts := c.loadPendingCounts(ctx, viewer, classes, hasRights)

	rows := make([]Row, 0, len(classes))
	for i, class := range classes {
		rows = append(rows, Row{
			Class:        class,
			Decision:     capability.Resolve(viewer.Role, class.State, hasRights[class.ID], counts[i]),
			HasRights:    hasRights[class.ID],
			PendingCount: counts[i],
		})
	}

	rows, total := applyFilter(rows, filter)

	return &Snapshot{
		Viewer:   viewer,
		Filter:   filter,
		Rows:     rows,
		Total:    total,
		LoadedAt: time.Now(),
	}, nil
}

// loadViewerRights resolves which classes a professor viewer holds rights
// on. A failure degrades to no rights rather than failing the load.
func (c *Controller) loadViewerRights(ctx context.Context, viewer Viewer) map[string]bool {
	hasRights := make(map[string]bool)

	if viewer.Role != model.RoleProfesseur {
		return hasRights
	}

	classIDs, err := c.api.ListUserClasses(ctx, viewer.UserID)
	if err != nil {
		c.logger.Warn("Rights lookup failed, defaulting to none",
			zap.String("user_id", viewer.UserID),
			zap.Error(err),
		)
		return hasRights
	}

	for _, id := range classIDs {
		hasRights[id] = true
	}

	return hasRights
}

// loadPendingCounts fans out one pending-count fetch per class the viewer
// may manage. Per-item failures default that class to zero; they never
// fail the batch.
func (c *Controller) loadPendingCounts(ctx context.Context, viewer Viewer, classes []model.ClassRecord, hasRights map[string]bool) []int {
	counts := make([]int, len(classes))

	var wg sync.WaitGroup
	for i, class := range classes {
		if !needsPendingCount(viewer, class, hasRights) {
			continue
		}

		wg.Add(1)
		go func(i int, classID string) {
			defer wg.Done()

			count, err := c.api.CountPendingRequests(ctx, classID)
			if err != nil {
				c.logger.Warn("Pending count fetch failed, defaulting to zero",
					zap.String("class_id", classID),
					zap.Error(err),
				)
				return
			}

			counts[i] = count
		}(i, class.ID)
	}
	wg.Wait()

	return counts
}

// needsPendingCount checks if the viewer would see a badge on the class
func needsPendingCount(viewer Viewer, class model.ClassRecord, hasRights map[string]bool) bool {
	switch viewer.Role {
	case model.RoleAdministrateur, model.RoleEtablissement:
		return true
	case model.RoleProfesseur:
		return class.State == model.ClassStateActive && hasRights[class.ID]
	}
	return false
}

func applyFilter(rows []Row, filter model.ClassFilter) ([]Row, int) {
	filtered := make([]Row, 0, len(rows))
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	for _, row := range rows {
		if filter.State != "" && row.Class.State != filter.State {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(row.Class.Name), search) &&
			!strings.Contains(strings.ToLower(row.Class.Level), search) {
			continue
		}
		filtered = append(filtered, row)
	}

	total := len(filtered)

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	start := (page - 1) * pageSize
	if start >= total {
		return []Row{}, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return filtered[start:end], total
}

func cacheKey(viewer Viewer, filter model.ClassFilter) string {
	return fmt.Sprintf("%s|%s|%s|%s|%d|%d",
		viewer.UserID,
		viewer.Role,
		filter.State,
		strings.ToLower(filter.Search),
		filter.Page,
		filter.PageSize,
	)
}
