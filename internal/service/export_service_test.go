package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ducky-ai-hub/gold-tech-courses/internal/models"
	appErrors "github.com/ducky-ai-hub/gold-tech-courses/pkg/errors"
)

type mockRegistrationLister struct {
	registrations []models.Registration
	lastFilter    models.RegistrationFilter
}

func (m *mockRegistrationLister) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error) {
	m.lastFilter = filter
	return m.registrations, len(m.registrations), nil
}

func TestExportRegistrationsCSV(t *testing.T) {
	lister := &mockRegistrationLister{registrations: []models.Registration{
		{ID: "reg-1", CourseID: 7, FullName: "Jane Doe", Email: "jane@example.com", Phone: "+49 151 1234567", CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)},
	}}
	svc := NewExportService(lister, zap.NewNop())

	result, err := svc.ExportRegistrations(context.Background(), ExportFormatCSV, models.RegistrationFilter{CourseID: 7})
	require.NoError(t, err)

	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.FileName, ".csv"))
	body := string(result.Body)
	assert.Contains(t, body, "jane@example.com")
	assert.Contains(t, body, "Full Name")
	assert.Contains(t, body, "2026-08-01T12:00:00Z")
	assert.Equal(t, 7, lister.lastFilter.CourseID)
}

func TestExportRegistrationsPDF(t *testing.T) {
	lister := &mockRegistrationLister{registrations: []models.Registration{
		{ID: "reg-1", CourseID: 7, FullName: "Jane Doe", Email: "jane@example.com", CreatedAt: time.Now()},
	}}
	svc := NewExportService(lister, zap.NewNop())

	result, err := svc.ExportRegistrations(context.Background(), ExportFormatPDF, models.RegistrationFilter{})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Body), "%PDF"))
}

func TestExportRegistrationsUnknownFormat(t *testing.T) {
	svc := NewExportService(&mockRegistrationLister{}, zap.NewNop())

	_, err := svc.ExportRegistrations(context.Background(), "xlsx", models.RegistrationFilter{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestExportRegistrationsWithoutStore(t *testing.T) {
	svc := NewExportService(nil, zap.NewNop())

	_, err := svc.ExportRegistrations(context.Background(), ExportFormatCSV, models.RegistrationFilter{})
	assert.ErrorIs(t, err, appErrors.ErrConfigurationMissing)
}
