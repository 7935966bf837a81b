package controller

import (
	"go.uber.org/zap"

	"github.com/scolaria/class_admin/internal/service"
)

// Handler bundles the HTTP handlers over the domain services.
type Handler struct {
	classes  *service.ClassService
	rights   *service.RightsService
	requests *service.AccessRequestService
	logger   *zap.Logger
}

func NewHandler(
	classes *service.ClassService,
	rights *service.RightsService,
	requests *service.AccessRequestService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		classes:  classes,
		rights:   rights,
		requests: requests,
		logger:   logger,
	}
}
