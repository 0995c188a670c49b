package export

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() []RegistrationRow {
	return []RegistrationRow{
		{
			ID:           "7c9f0a1e-52de-4f6a-9e0b-1a2b3c4d5e6f",
			CourseID:     7,
			FullName:     "Jane Doe",
			Email:        "jane@example.com",
			Phone:        "+49 151 1234567",
			RegisteredAt: time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC),
		},
		{
			ID:           "0d4e8b2a-11aa-4bb3-8cc4-5dd6ee7ff889",
			CourseID:     1,
			FullName:     "Max Mustermann",
			Email:        "max@example.com",
			Phone:        "+49 170 7654321",
			RegisteredAt: time.Date(2026, 8, 21, 14, 0, 0, 0, time.UTC),
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	body, err := NewCSVExporter().Render(sampleRows())
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(body))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, registrationColumns, records[0])
	assert.Equal(t, []string{
		"7c9f0a1e-52de-4f6a-9e0b-1a2b3c4d5e6f", "7", "Jane Doe",
		"jane@example.com", "+49 151 1234567", "2026-08-20T09:30:00Z",
	}, records[1])
}

func TestCSVExporterRenderEmpty(t *testing.T) {
	body, err := NewCSVExporter().Render(nil)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(body))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, registrationColumns, records[0])
}

func TestPDFExporterRender(t *testing.T) {
	body, err := NewPDFExporter().Render(sampleRows(), "Course Registrations")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "%PDF"))
	assert.Greater(t, len(body), 500)
}
