package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ducky-ai-hub/gold-tech-courses/internal/models"
	appErrors "github.com/ducky-ai-hub/gold-tech-courses/pkg/errors"
	"github.com/ducky-ai-hub/gold-tech-courses/pkg/export"
)

// Export formats accepted by the registrations export endpoint.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type registrationLister interface {
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error)
}

// ExportResult carries rendered bytes plus the response metadata.
type ExportResult struct {
	ContentType string
	FileName    string
	Body        []byte
}

// ExportService renders registration listings as downloadable files.
type ExportService struct {
	registrations registrationLister
	csv           *export.CSVExporter
	pdf           *export.PDFExporter
	logger        *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(registrations registrationLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		registrations: registrations,
		csv:           export.NewCSVExporter(),
		pdf:           export.NewPDFExporter(),
		logger:        logger,
	}
}

// ExportRegistrations renders the filtered registrations in the requested
// format. Exports ignore pagination and fetch up to the repository limit.
func (s *ExportService) ExportRegistrations(ctx context.Context, format string, filter models.RegistrationFilter) (*ExportResult, error) {
	if s.registrations == nil {
		return nil, appErrors.ErrConfigurationMissing
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	filter.Page = 1
	filter.PageSize = 200
	registrations, total, err := s.registrations.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not load registrations")
	}

	rows := make([]export.RegistrationRow, 0, len(registrations))
	for _, reg := range registrations {
		rows = append(rows, export.RegistrationRow{
			ID:           reg.ID,
			CourseID:     reg.CourseID,
			FullName:     reg.FullName,
			Email:        reg.Email,
			Phone:        reg.Phone,
			RegisteredAt: reg.CreatedAt,
		})
	}

	stamp := time.Now().Format("2006-01-02")
	var result *ExportResult
	switch format {
	case ExportFormatCSV:
		body, renderErr := s.csv.Render(rows)
		if renderErr != nil {
			return nil, appErrors.Wrap(renderErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not render csv export")
		}
		result = &ExportResult{
			ContentType: "text/csv",
			FileName:    fmt.Sprintf("registrations-%s.csv", stamp),
			Body:        body,
		}
	case ExportFormatPDF:
		body, renderErr := s.pdf.Render(rows, "Course Registrations")
		if renderErr != nil {
			return nil, appErrors.Wrap(renderErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not render pdf export")
		}
		result = &ExportResult{
			ContentType: "application/pdf",
			FileName:    fmt.Sprintf("registrations-%s.pdf", stamp),
			Body:        body,
		}
	}

	s.logger.Info("registrations exported",
		zap.String("format", format),
		zap.Int("rows", len(registrations)),
		zap.Int("total", total))
	return result, nil
}
