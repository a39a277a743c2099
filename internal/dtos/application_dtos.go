package dtos

import (
	"github.com/poofware/application-service/internal/models"
)

// CreateApplicationResponse carries the link the client uses to resume.
type CreateApplicationResponse struct {
	ResumeURL string `json:"resumeUrl"`
}

// UpdateApplicationRequest is also the body of validateApplication.
type UpdateApplicationRequest struct {
	ID   string          `json:"id" validate:"required"`
	Data models.Document `json:"data"`
}

type ValidateApplicationRequest = UpdateApplicationRequest

type MessageResponse struct {
	Message string `json:"message"`
}

type ValidateApplicationResponse struct {
	Quote int `json:"quote"`
}
