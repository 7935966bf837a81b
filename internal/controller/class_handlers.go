package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scolaria/class_admin/internal/model"
	"github.com/scolaria/class_admin/internal/service"
)

type createClassRequest struct {
	Name            string  `json:"name" binding:"required"`
	Level           string  `json:"level" binding:"required"`
	ActivationCode  string  `json:"activation_code" binding:"required,len=6,numeric"`
	EstablishmentID *string `json:"establishment_id"`
	ModeratorID     *string `json:"moderator_id"`
}

type rejectClassRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type deactivateClassRequest struct {
	MotifCode string `json:"motif_code" binding:"required"`
	Comment   string `json:"comment"`
}

var scopeRank = map[model.Role]int{
	model.RoleProfesseur:     1,
	model.RoleEtablissement:  2,
	model.RoleAdministrateur: 3,
}

// narrowScope resolves the effective listing role. The query parameter may
// only narrow the authenticated role, never widen it.
func narrowScope(claim, requested model.Role) model.Role {
	if scopeRank[requested] == 0 || scopeRank[requested] > scopeRank[claim] {
		return claim
	}
	return requested
}

// ListClasses handles GET /classes?scope=role.
func (h *Handler) ListClasses(c *gin.Context) {
	role := model.Role(c.GetString(ctxRole))
	if requested := model.Role(c.Query("scope")); requested != "" {
		role = narrowScope(role, requested)
	}

	scope := model.ClassScope{
		Role:   role,
		UserID: c.GetString(ctxUserID),
	}

	if establishmentID := c.GetString(ctxEstablishmentID); establishmentID != "" {
		scope.EstablishmentID = &establishmentID
	}

	classes, err := h.classes.List(c.Request.Context(), scope)
	if err != nil {
		respondError(c, err)
		return
	}

	if classes == nil {
		classes = []*model.ClassRecord{}
	}

	c.JSON(http.StatusOK, classes)
}

// CreateClass handles POST /classes.
func (h *Handler) CreateClass(c *gin.Context) {
	var req createClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("%s: %s", model.ErrValidation, err)})
		return
	}

	class, err := h.classes.Create(c.Request.Context(), toCreateClassInput(req, c.GetString(ctxUserID)))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, class)
}

// GetClass handles GET /classes/:id.
func (h *Handler) GetClass(c *gin.Context) {
	class, err := h.classes.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, class)
}

// ApproveClass handles POST /classes/:id/approve.
func (h *Handler) ApproveClass(c *gin.Context) {
	class, err := h.classes.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, class)
}

// RejectClass handles POST /classes/:id/reject.
func (h *Handler) RejectClass(c *gin.Context) {
	var req rejectClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("%s: %s", model.ErrValidation, err)})
		return
	}

	class, err := h.classes.Reject(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, class)
}

// DeactivateClass handles POST /classes/:id/deactivate.
func (h *Handler) DeactivateClass(c *gin.Context) {
	var req deactivateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("%s: %s", model.ErrValidation, err)})
		return
	}

	class, err := h.classes.Deactivate(c.Request.Context(), c.Param("id"), model.Motif(req.MotifCode), req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, class)
}

// DeleteClass handles DELETE /classes/:id.
func (h *Handler) DeleteClass(c *gin.Context) {
	if err := h.classes.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func toCreateClassInput(req createClassRequest, creatorID string) service.CreateClassInput {
	return service.CreateClassInput{
		Name:            req.Name,
		Level:           req.Level,
		ActivationCode:  req.ActivationCode,
		EstablishmentID: req.EstablishmentID,
		ModeratorID:     req.ModeratorID,
		CreatorID:       creatorID,
	}
}
