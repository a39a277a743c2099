package controllers

import (
	"net/http"

	"github.com/poofware/application-service/internal/dtos"
	"github.com/poofware/application-service/internal/services"
	"github.com/poofware/application-service/internal/utils"
)

type HealthController struct {
	svc services.ApplicationService
}

func NewHealthController(s services.ApplicationService) *HealthController {
	return &HealthController{svc: s}
}

func (c *HealthController) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	// The document store is the only external dependency.
	if err := c.svc.Ping(r.Context()); err != nil {
		utils.RespondErrorWithCode(
			w,
			http.StatusServiceUnavailable,
			utils.ErrCodeInternal,
			"Service unhealthy",
			nil,
			err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.HealthCheckResponse{Status: "OK"})
}
