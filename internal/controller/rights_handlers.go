package controller

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/scolaria/class_admin/internal/model"
)

type bulkGrantRequest struct {
	UserIDs     []string `json:"user_ids" binding:"required,min=1"`
	CanPublish  bool     `json:"can_publish"`
	CanModerate bool     `json:"can_moderate"`
}

// GrantRight handles POST /rights/:userId/:classId?canPublish&canModerate.
// Both flags are carried on every call: the upsert replaces the record.
func (h *Handler) GrantRight(c *gin.Context) {
	canPublish, err := strconv.ParseBool(c.DefaultQuery("canPublish", "false"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("%s: canPublish must be a boolean", model.ErrValidation)})
		return
	}

	canModerate, err := strconv.ParseBool(c.DefaultQuery("canModerate", "false"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("%s: canModerate must be a boolean", model.ErrValidation)})
		return
	}

	right, err := h.rights.Grant(c.Request.Context(), c.Param("userId"), c.Param("classId"), canPublish, canModerate)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, right)
}

// RevokeRight handles DELETE /rights/:userId/:classId.
func (h *Handler) RevokeRight(c *gin.Context) {
	if err := h.rights.Revoke(c.Request.Context(), c.Param("userId"), c.Param("classId")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListClassRights handles GET /rights/:id/users.
func (h *Handler) ListClassRights(c *gin.Context) {
	rights, err := h.rights.ListUsersForClass(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if rights == nil {
		rights = []*model.PublicationRight{}
	}

	c.JSON(http.StatusOK, rights)
}

// ListUserClasses handles GET /rights/:id/classes.
func (h *Handler) ListUserClasses(c *gin.Context) {
	classIDs, err := h.rights.ListClassesForUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if classIDs == nil {
		classIDs = []string{}
	}

	c.JSON(http.StatusOK, classIDs)
}

// BulkGrantRights handles POST /classes/:id/rights/bulk.
func (h *Handler) BulkGrantRights(c *gin.Context) {
	var req bulkGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("%s: %s", model.ErrValidation, err)})
		return
	}

	summary, err := h.rights.BulkGrant(c.Request.Context(), c.Param("id"), req.UserIDs, req.CanPublish, req.CanModerate)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
