package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-cms-api/internal/dto"
	"github.com/noah-isme/campus-cms-api/internal/models"
	appErrors "github.com/noah-isme/campus-cms-api/pkg/errors"
	"github.com/noah-isme/campus-cms-api/pkg/response"
)

type makeupService interface {
	CreateSession(ctx context.Context, req dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	ListSessions(ctx context.Context, facultyID string) (*dto.SessionListResponse, error)
	GetSession(ctx context.Context, sessionID string) (*dto.SessionDetailResponse, error)
	Activate(ctx context.Context, sessionID string, durationMinutes int) (*dto.CodeStatusResponse, error)
	Deactivate(ctx context.Context, sessionID string) error
	Regenerate(ctx context.Context, sessionID string) (*models.MakeUpSession, error)
	Cancel(ctx context.Context, sessionID string) error
	CodeStatus(ctx context.Context, sessionID string) (*dto.CodeStatusResponse, error)
	AcceptSuggestion(ctx context.Context, suggestionID string) (*models.SchedulingSuggestion, error)
}

// MakeupHandler exposes the make-up session lifecycle endpoints.
type MakeupHandler struct {
	service makeupService
}

// NewMakeupHandler constructs the handler.
func NewMakeupHandler(service makeupService) *MakeupHandler {
	return &MakeupHandler{service: service}
}

// Create godoc
// @Summary Schedule a make-up session
// @Tags Make-up Sessions
// @Accept json
// @Produce json
// @Param payload body dto.CreateSessionRequest true "Session details"
// @Success 201 {object} response.Envelope
// @Router /makeup/sessions [post]
func (h *MakeupHandler) Create(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	result, err := h.service.CreateSession(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List a faculty member's sessions, split by lifecycle
// @Tags Make-up Sessions
// @Produce json
// @Param facultyId query string true "Faculty ID"
// @Success 200 {object} response.Envelope
// @Router /makeup/sessions [get]
func (h *MakeupHandler) List(c *gin.Context) {
	result, err := h.service.ListSessions(c.Request.Context(), c.Query("facultyId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Get godoc
// @Summary Session detail with roster marks and suggestions
// @Tags Make-up Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /makeup/sessions/{id} [get]
func (h *MakeupHandler) Get(c *gin.Context) {
	result, err := h.service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Activate godoc
// @Summary Open the attendance window for a session
// @Tags Remedial Codes
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.ActivateCodeRequest false "Window duration"
// @Success 200 {object} response.Envelope
// @Router /makeup/sessions/{id}/activate [post]
func (h *MakeupHandler) Activate(c *gin.Context) {
	var req dto.ActivateCodeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
			return
		}
	}
	result, err := h.service.Activate(c.Request.Context(), c.Param("id"), req.DurationMinutes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Deactivate godoc
// @Summary Close the attendance window and complete the session
// @Tags Remedial Codes
// @Produce json
// @Param id path string true "Session ID"
// @Success 204 "No Content"
// @Router /makeup/sessions/{id}/deactivate [post]
func (h *MakeupHandler) Deactivate(c *gin.Context) {
	if err := h.service.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Regenerate godoc
// @Summary Replace the remedial code, keeping the current window
// @Tags Remedial Codes
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /makeup/sessions/{id}/regenerate [post]
func (h *MakeupHandler) Regenerate(c *gin.Context) {
	session, err := h.service.Regenerate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Cancel godoc
// @Summary Cancel a session
// @Tags Make-up Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 204 "No Content"
// @Router /makeup/sessions/{id}/cancel [post]
func (h *MakeupHandler) Cancel(c *gin.Context) {
	if err := h.service.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CodeStatus godoc
// @Summary Poll the remedial code validity and countdown
// @Tags Remedial Codes
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /makeup/sessions/{id}/code-status [get]
func (h *MakeupHandler) CodeStatus(c *gin.Context) {
	result, err := h.service.CodeStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// AcceptSuggestion godoc
// @Summary Mark a scheduling suggestion as accepted
// @Tags Make-up Sessions
// @Produce json
// @Param id path string true "Suggestion ID"
// @Success 200 {object} response.Envelope
// @Router /makeup/suggestions/{id}/accept [post]
func (h *MakeupHandler) AcceptSuggestion(c *gin.Context) {
	result, err := h.service.AcceptSuggestion(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
