package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"
)

// RegistrationRow is one registration record in an operator export.
type RegistrationRow struct {
	ID           string
	CourseID     int
	FullName     string
	Email        string
	Phone        string
	RegisteredAt time.Time
}

var registrationColumns = []string{"ID", "Course ID", "Full Name", "Email", "Phone", "Registered At"}

func (r RegistrationRow) record() []string {
	return []string{
		r.ID,
		strconv.Itoa(r.CourseID),
		r.FullName,
		r.Email,
		r.Phone,
		r.RegisteredAt.UTC().Format(time.RFC3339),
	}
}

// CSVExporter renders registration rows into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes with a header row followed by one
// record per registration.
func (e *CSVExporter) Render(rows []RegistrationRow) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(registrationColumns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row.record()); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
