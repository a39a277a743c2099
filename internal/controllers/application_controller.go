package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/poofware/application-service/internal/dtos"
	"github.com/poofware/application-service/internal/models"
	"github.com/poofware/application-service/internal/routes"
	"github.com/poofware/application-service/internal/services"
	"github.com/poofware/application-service/internal/utils"
)

// Public messages. Every failure body is {message, errors?}.
const (
	MsgNoIDProvided        = "No id provided"
	MsgApplicationNotFound = "Application not found"
	MsgApplicationInvalid  = "Application is invalid"
	MsgApplicationUpdated  = "Application updated"
	MsgInvalidPayload      = "Invalid JSON payload"
)

type ApplicationController struct {
	svc services.ApplicationService
}

func NewApplicationController(s services.ApplicationService) *ApplicationController {
	return &ApplicationController{svc: s}
}

var validate = validator.New()

// -----------------------------------------------------------------------------
// POST /api/v1/applications
// -----------------------------------------------------------------------------
func (c *ApplicationController) CreateApplicationHandler(w http.ResponseWriter, r *http.Request) {
	var data models.Document
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, MsgInvalidPayload, nil, err,
		)
		return
	}

	resumeURL, err := c.svc.Start(r.Context(), data)
	if err != nil {
		respondServiceError(w, err, "Failed to create application")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.CreateApplicationResponse{ResumeURL: resumeURL})
}

// -----------------------------------------------------------------------------
// GET /api/v1/applications?id=
// -----------------------------------------------------------------------------
func (c *ApplicationController) GetApplicationHandler(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get(routes.ApplicationIDParam)

	doc, err := c.svc.Fetch(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to get application")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, doc)
}

// -----------------------------------------------------------------------------
// PUT /api/v1/applications
// -----------------------------------------------------------------------------
func (c *ApplicationController) UpdateApplicationHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeIDRequest(w, r)
	if !ok {
		return
	}

	if err := c.svc.Update(r.Context(), req.ID, req.Data); err != nil {
		respondServiceError(w, err, "Failed to update application")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: MsgApplicationUpdated})
}

// -----------------------------------------------------------------------------
// POST /api/v1/applications/validate
// -----------------------------------------------------------------------------
func (c *ApplicationController) ValidateApplicationHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeIDRequest(w, r)
	if !ok {
		return
	}

	quote, err := c.svc.ValidateAndQuote(r.Context(), req.ID, req.Data)
	if err != nil {
		respondServiceError(w, err, "Failed to validate application")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.ValidateApplicationResponse{Quote: quote})
}

// -----------------------------------------------------------------------------
// shared helpers
// -----------------------------------------------------------------------------

func decodeIDRequest(w http.ResponseWriter, r *http.Request) (dtos.UpdateApplicationRequest, bool) {
	var req dtos.UpdateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, MsgInvalidPayload, nil, err,
		)
		return req, false
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeMissingID, MsgNoIDProvided, nil, err,
		)
		return req, false
	}
	return req, true
}

// respondServiceError maps service errors onto the response taxonomy.
// internalMsg is used for anything that is not a client-side failure.
func respondServiceError(w http.ResponseWriter, err error, internalMsg string) {
	var vErr *services.ValidationError
	switch {
	case errors.Is(err, utils.ErrNoIDProvided):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeMissingID, MsgNoIDProvided, nil, err)
	case errors.Is(err, utils.ErrApplicationNotFound):
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, MsgApplicationNotFound, nil, err)
	case errors.As(err, &vErr):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, MsgApplicationInvalid, vErr.Fields, err)
	default:
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, internalMsg, nil, err)
	}
}
