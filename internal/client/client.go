package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/scolaria/class_admin/internal/model"
)

// Client consumes the class-administration API over HTTP/JSON. Failures
// come back as the typed taxonomy: business-rule rejections keep their
// kind, everything transport-shaped collapses into model.ErrRemote. The
// client never retries; refresh is a caller decision.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, bearerToken string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   bearerToken,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateClassParams carries the fields of POST /classes.
type CreateClassParams struct {
	Name            string  `json:"name"`
	Level           string  `json:"level"`
	ActivationCode  string  `json:"activation_code"`
	EstablishmentID *string `json:"establishment_id,omitempty"`
	ModeratorID     *string `json:"moderator_id,omitempty"`
}

// ListClasses fetches the classes visible to the given scope.
func (c *Client) ListClasses(ctx context.Context, scope model.Role) ([]model.ClassRecord, error) {
	query := url.Values{"scope": {string(scope)}}

	var classes []model.ClassRecord
	if err := c.do(ctx, http.MethodGet, "/classes", query, nil, &classes); err != nil {
		return nil, err
	}

	return classes, nil
}

// CreateClass registers a new class; it enters the approval queue.
func (c *Client) CreateClass(ctx context.Context, params CreateClassParams) (*model.ClassRecord, error) {
	var class model.ClassRecord
	if err := c.do(ctx, http.MethodPost, "/classes", nil, params, &class); err != nil {
		return nil, err
	}

	return &class, nil
}

// ApproveClass moves a pending class to active.
func (c *Client) ApproveClass(ctx context.Context, classID string) (*model.ClassRecord, error) {
	var class model.ClassRecord
	if err := c.do(ctx, http.MethodPost, "/classes/"+classID+"/approve", nil, nil, &class); err != nil {
		return nil, err
	}

	return &class, nil
}

// RejectClass moves a pending class to rejected with a required reason.
func (c *Client) RejectClass(ctx context.Context, classID, reason string) (*model.ClassRecord, error) {
	body := map[string]string{"reason": reason}

	var class model.ClassRecord
	if err := c.do(ctx, http.MethodPost, "/classes/"+classID+"/reject", nil, body, &class); err != nil {
		return nil, err
	}

	return &class, nil
}

// DeactivateClass moves an active class to inactive under a motif code.
func (c *Client) DeactivateClass(ctx context.Context, classID string, motif model.Motif, comment string) (*model.ClassRecord, error) {
	body := map[string]string{
		"motif_code": string(motif),
		"comment":    comment,
	}

	var class model.ClassRecord
	if err := c.do(ctx, http.MethodPost, "/classes/"+classID+"/deactivate", nil, body, &class); err != nil {
		return nil, err
	}

	return &class, nil
}

// DeleteClass removes a class.
func (c *Client) DeleteClass(ctx context.Context, classID string) error {
	return c.do(ctx, http.MethodDelete, "/classes/"+classID, nil, nil, nil)
}

// GrantRight upserts the (user, class) publication-right record.
func (c *Client) GrantRight(ctx context.Context, userID, classID string, canPublish, canModerate bool) (*model.PublicationRight, error) {
	query := url.Values{
		"canPublish":  {strconv.FormatBool(canPublish)},
		"canModerate": {strconv.FormatBool(canModerate)},
	}

	var right model.PublicationRight
	if err := c.do(ctx, http.MethodPost, "/rights/"+userID+"/"+classID, query, nil, &right); err != nil {
		return nil, err
	}

	return &right, nil
}

// RevokeRight removes the (user, class) right record; revoking an absent
// record succeeds.
func (c *Client) RevokeRight(ctx context.Context, userID, classID string) error {
	return c.do(ctx, http.MethodDelete, "/rights/"+userID+"/"+classID, nil, nil, nil)
}

// ListClassRights fetches every right record attached to a class.
func (c *Client) ListClassRights(ctx context.Context, classID string) ([]model.PublicationRight, error) {
	var rights []model.PublicationRight
	if err := c.do(ctx, http.MethodGet, "/rights/"+classID+"/users", nil, nil, &rights); err != nil {
		return nil, err
	}

	return rights, nil
}

// ListUserClasses fetches the ids of every class the user holds rights on.
func (c *Client) ListUserClasses(ctx context.Context, userID string) ([]string, error) {
	var classIDs []string
	if err := c.do(ctx, http.MethodGet, "/rights/"+userID+"/classes", nil, nil, &classIDs); err != nil {
		return nil, err
	}

	return classIDs, nil
}

// BulkGrantRights grants rights to several users on one class and returns
// the per-user outcome summary.
func (c *Client) BulkGrantRights(ctx context.Context, classID string, userIDs []string, canPublish, canModerate bool) (*model.BulkGrantSummary, error) {
	body := map[string]any{
		"user_ids":     userIDs,
		"can_publish":  canPublish,
		"can_moderate": canModerate,
	}

	var summary model.BulkGrantSummary
	if err := c.do(ctx, http.MethodPost, "/classes/"+classID+"/rights/bulk", nil, body, &summary); err != nil {
		return nil, err
	}

	return &summary, nil
}

// ListAccessRequests fetches all requests attached to a class.
func (c *Client) ListAccessRequests(ctx context.Context, classID string) ([]model.AccessRequest, error) {
	query := url.Values{"classId": {classID}}

	var requests []model.AccessRequest
	if err := c.do(ctx, http.MethodGet, "/access-requests", query, nil, &requests); err != nil {
		return nil, err
	}

	return requests, nil
}

// CountPendingRequests counts the pending requests of a class. The filter
// runs client-side over the full request list.
func (c *Client) CountPendingRequests(ctx context.Context, classID string) (int, error) {
	requests, err := c.ListAccessRequests(ctx, classID)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, req := range requests {
		if req.IsPending() {
			count++
		}
	}

	return count, nil
}

// SubmitAccessRequest submits a token-backed join attempt for a class.
func (c *Client) SubmitAccessRequest(ctx context.Context, classID, token, note string) (*model.AccessRequest, error) {
	body := map[string]string{
		"class_id": classID,
		"token":    token,
		"note":     note,
	}

	var request model.AccessRequest
	if err := c.do(ctx, http.MethodPost, "/access-requests", nil, body, &request); err != nil {
		return nil, err
	}

	return &request, nil
}

// DecideAccessRequest approves or denies a pending request.
func (c *Client) DecideAccessRequest(ctx context.Context, requestID string, approve bool) (*model.AccessRequest, error) {
	verb := "deny"
	if approve {
		verb = "approve"
	}

	var request model.AccessRequest
	if err := c.do(ctx, http.MethodPost, "/access-requests/"+requestID+"/"+verb, nil, nil, &request); err != nil {
		return nil, err
	}

	return &request, nil
}

type errorReply struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", model.ErrRemote, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return mapStatus(resp.StatusCode, decodeErrorMessage(resp))
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %s", model.ErrRemote, err)
	}

	return nil
}

func decodeErrorMessage(resp *http.Response) string {
	var reply errorReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil || reply.Error == "" {
		return resp.Status
	}
	return reply.Error
}

// mapStatus folds the HTTP status back into the typed failure taxonomy
// the server mapped it from.
func mapStatus(status int, message string) error {
	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", model.ErrNotFound, message)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", model.ErrInvalidTransition, message)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", model.ErrInvalidRole, message)
	case http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", model.ErrValidation, message)
	default:
		return fmt.Errorf("%w: %s", model.ErrRemote, message)
	}
}
