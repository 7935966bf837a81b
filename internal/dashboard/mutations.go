package dashboard

import (
	"context"
	"fmt"

	"github.com/scolaria/class_admin/internal/model"
)

// Every mutator follows the same contract: call the remote service, and
// on success invalidate the cache and reload the viewer's snapshot so the
// UI reflects authoritative server state. A failed mutation leaves the
// previously loaded state untouched.

// Approve moves a pending class to active and reloads.
func (c *Controller) Approve(ctx context.Context, viewer Viewer, filter model.ClassFilter, classID string) (*Snapshot, error) {
	if _, err := c.api.ApproveClass(ctx, classID); err != nil {
		return nil, err
	}

	return c.reload(ctx, viewer, filter)
}

// Reject moves a pending class to rejected and reloads.
func (c *Controller) Reject(ctx context.Context, viewer Viewer, filter model.ClassFilter, classID, reason string) (*Snapshot, error) {
	if _, err := c.api.RejectClass(ctx, classID, reason); err != nil {
		return nil, err
	}

	return c.reload(ctx, viewer, filter)
}

// Deactivate moves an active class to inactive and reloads.
func (c *Controller) Deactivate(ctx context.Context, viewer Viewer, filter model.ClassFilter, classID string, motif model.Motif, comment string) (*Snapshot, error) {
	if _, err := c.api.DeactivateClass(ctx, classID, motif, comment); err != nil {
		return nil, err
	}

	return c.reload(ctx, viewer, filter)
}

// Delete removes a class and reloads.
func (c *Controller) Delete(ctx context.Context, viewer Viewer, filter model.ClassFilter, classID string) (*Snapshot, error) {
	if err := c.api.DeleteClass(ctx, classID); err != nil {
		return nil, err
	}

	return c.reload(ctx, viewer, filter)
}

// Grant upserts a publication right and reloads.
func (c *Controller) Grant(ctx context.Context, viewer Viewer, filter model.ClassFilter, userID, classID string, canPublish, canModerate bool) (*Snapshot, error) {
	if _, err := c.api.GrantRight(ctx, userID, classID, canPublish, canModerate); err != nil {
		return nil, err
	}

	return c.reload(ctx, viewer, filter)
}

// Revoke removes a publication right and reloads.
func (c *Controller) Revoke(ctx context.Context, viewer Viewer, filter model.ClassFilter, userID, classID string) (*Snapshot, error) {
	if err := c.api.RevokeRight(ctx, userID, classID); err != nil {
		return nil, err
	}

	return c.reload(ctx, viewer, filter)
}

// BulkGrant grants rights to several users and reloads. The summary is
// returned alongside the snapshot so partial failures stay visible.
func (c *Controller) BulkGrant(ctx context.Context, viewer Viewer, filter model.ClassFilter, classID string, userIDs []string, canPublish, canModerate bool) (*model.BulkGrantSummary, *Snapshot, error) {
	summary, err := c.api.BulkGrantRights(ctx, classID, userIDs, canPublish, canModerate)
	if err != nil {
		return nil, nil, err
	}

	snapshot, err := c.reload(ctx, viewer, filter)
	if err != nil {
		return summary, nil, err
	}

	return summary, snapshot, nil
}

// SubmitAccessRequest submits a join attempt. Only the token format is
// checked here; matching it against the activation code is the remote
// service's job.
func (c *Controller) SubmitAccessRequest(ctx context.Context, viewer Viewer, filter model.ClassFilter, classID, token, note string) (*Snapshot, error) {
	if err := validate.Var(token, "required,len=6,numeric"); err != nil {
		return nil, fmt.Errorf("%w: activation token must be 6 digits", model.ErrValidation)
	}

	if _, err := c.api.SubmitAccessRequest(ctx, classID, token, note); err != nil {
		return nil, err
	}

	return c.reload(ctx, viewer, filter)
}

// DecideAccessRequest approves or denies a pending request and reloads.
func (c *Controller) DecideAccessRequest(ctx context.Context, viewer Viewer, filter model.ClassFilter, requestID string, approve bool) (*Snapshot, error) {
	if _, err := c.api.DecideAccessRequest(ctx, requestID, approve); err != nil {
		return nil, err
	}

	return c.reload(ctx, viewer, filter)
}

func (c *Controller) reload(ctx context.Context, viewer Viewer, filter model.ClassFilter) (*Snapshot, error) {
	c.cache.invalidateAll()
	return c.Load(ctx, viewer, filter)
}
