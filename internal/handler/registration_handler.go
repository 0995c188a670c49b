package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ducky-ai-hub/gold-tech-courses/internal/dto"
	"github.com/ducky-ai-hub/gold-tech-courses/internal/models"
	"github.com/ducky-ai-hub/gold-tech-courses/internal/service"
	appErrors "github.com/ducky-ai-hub/gold-tech-courses/pkg/errors"
	"github.com/ducky-ai-hub/gold-tech-courses/pkg/response"
)

// RegistrationHandler exposes the direct registration endpoints used by
// clients that manage their own verification widget lifecycle.
type RegistrationHandler struct {
	registrations *service.RegistrationService
	exports       *service.ExportService
}

// NewRegistrationHandler constructs RegistrationHandler.
func NewRegistrationHandler(registrations *service.RegistrationService, exports *service.ExportService) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations, exports: exports}
}

// Create godoc
// @Summary Submit a course registration
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body dto.CreateRegistrationRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Router /registrations [post]
func (h *RegistrationHandler) Create(c *gin.Context) {
	var req dto.CreateRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	registration, err := h.registrations.Submit(c.Request.Context(), service.SubmitRegistrationRequest{
		CourseID:          req.CourseID,
		FullName:          req.FullName,
		Email:             req.Email,
		Phone:             req.Phone,
		VerificationToken: req.VerificationToken,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewRegistrationResponse(registration))
}

// Export godoc
// @Summary Export registrations as CSV or PDF
// @Tags Registrations
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Param courseId query int false "Filter by course"
// @Param email query string false "Filter by email"
// @Success 200 {file} binary
// @Router /registrations/export [get]
func (h *RegistrationHandler) Export(c *gin.Context) {
	var filter models.RegistrationFilter
	if courseID, err := strconv.Atoi(c.Query("courseId")); err == nil {
		filter.CourseID = courseID
	}
	filter.Email = c.Query("email")

	result, err := h.exports.ExportRegistrations(c.Request.Context(), c.DefaultQuery("format", "csv"), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+result.FileName)
	c.Data(http.StatusOK, result.ContentType, result.Body)
}
