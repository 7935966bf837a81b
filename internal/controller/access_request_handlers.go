package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scolaria/class_admin/internal/model"
	"github.com/scolaria/class_admin/internal/service"
)

type submitAccessRequest struct {
	ClassID string `json:"class_id" binding:"required"`
	Token   string `json:"token" binding:"required"`
	Note    string `json:"note"`
}

// ListAccessRequests handles GET /access-requests?classId=.
func (h *Handler) ListAccessRequests(c *gin.Context) {
	classID := c.Query("classId")
	if classID == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("%s: classId is required", model.ErrValidation)})
		return
	}

	requests, err := h.requests.ListByClass(c.Request.Context(), classID)
	if err != nil {
		respondError(c, err)
		return
	}

	if requests == nil {
		requests = []*model.AccessRequest{}
	}

	c.JSON(http.StatusOK, requests)
}

// SubmitAccessRequest handles POST /access-requests.
func (h *Handler) SubmitAccessRequest(c *gin.Context) {
	var req submitAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("%s: %s", model.ErrValidation, err)})
		return
	}

	request, err := h.requests.Submit(c.Request.Context(), service.SubmitAccessRequestInput{
		ClassID:     req.ClassID,
		Token:       req.Token,
		RequesterID: c.GetString(ctxUserID),
		Note:        req.Note,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, request)
}

// ApproveAccessRequest handles POST /access-requests/:id/approve.
func (h *Handler) ApproveAccessRequest(c *gin.Context) {
	request, err := h.requests.Decide(c.Request.Context(), c.Param("id"), true)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, request)
}

// DenyAccessRequest handles POST /access-requests/:id/deny.
func (h *Handler) DenyAccessRequest(c *gin.Context) {
	request, err := h.requests.Decide(c.Request.Context(), c.Param("id"), false)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, request)
}
