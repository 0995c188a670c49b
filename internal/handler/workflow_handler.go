package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ducky-ai-hub/gold-tech-courses/internal/dto"
	"github.com/ducky-ai-hub/gold-tech-courses/internal/service"
	appErrors "github.com/ducky-ai-hub/gold-tech-courses/pkg/errors"
	"github.com/ducky-ai-hub/gold-tech-courses/pkg/response"
)

// WorkflowHandler exposes the registration session endpoints backing the
// registration modal.
type WorkflowHandler struct {
	workflow *service.WorkflowService
}

// NewWorkflowHandler constructs WorkflowHandler.
func NewWorkflowHandler(workflow *service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{workflow: workflow}
}

// Open godoc
// @Summary Open a registration session for a course
// @Tags Workflow
// @Accept json
// @Produce json
// @Param payload body dto.OpenSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Router /workflow/sessions [post]
func (h *WorkflowHandler) Open(c *gin.Context) {
	var req dto.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.workflow.Open(c.Request.Context(), req.CourseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Get godoc
// @Summary Get the session state
// @Tags Workflow
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /workflow/sessions/{id} [get]
func (h *WorkflowHandler) Get(c *gin.Context) {
	session, err := h.workflow.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Verify godoc
// @Summary Deliver a verification widget event to the session
// @Tags Workflow
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.VerificationEvent true "Widget event"
// @Success 200 {object} response.Envelope
// @Router /workflow/sessions/{id}/verify [post]
func (h *WorkflowHandler) Verify(c *gin.Context) {
	var event dto.VerificationEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.workflow.DeliverVerification(c.Param("id"), event)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Submit godoc
// @Summary Submit the registration form for the session
// @Tags Workflow
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.RegistrationForm true "Registration form"
// @Success 200 {object} response.Envelope
// @Router /workflow/sessions/{id}/submit [post]
func (h *WorkflowHandler) Submit(c *gin.Context) {
	var form dto.RegistrationForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.workflow.Submit(c.Request.Context(), c.Param("id"), form)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Close godoc
// @Summary Close the session and tear down its challenge
// @Tags Workflow
// @Param id path string true "Session ID"
// @Success 204
// @Router /workflow/sessions/{id} [delete]
func (h *WorkflowHandler) Close(c *gin.Context) {
	if err := h.workflow.Close(c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
