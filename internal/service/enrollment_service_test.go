package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ducky-ai-hub/gold-tech-courses/internal/models"
	appErrors "github.com/ducky-ai-hub/gold-tech-courses/pkg/errors"
)

type mockCatalog struct {
	courses map[int]*models.Course
	setErr  error
	updates []bool
}

func (m *mockCatalog) FindByID(ctx context.Context, id int) (*models.Course, error) {
	if course, ok := m.courses[id]; ok {
		copied := *course
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCatalog) SetEnrolled(ctx context.Context, id int, enrolled bool) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.updates = append(m.updates, enrolled)
	if course, ok := m.courses[id]; ok {
		course.IsEnrolled = enrolled
	}
	return nil
}

type mockView struct {
	marks       []bool
	invalidated int
}

func (m *mockView) MarkEnrolled(courseID int, enrolled bool) {
	m.marks = append(m.marks, enrolled)
}

func (m *mockView) InvalidateList(ctx context.Context) {
	m.invalidated++
}

func TestEnrollmentCommitSuccess(t *testing.T) {
	catalog := &mockCatalog{courses: map[int]*models.Course{7: {ID: 7}}}
	view := &mockView{}
	svc := NewEnrollmentService(catalog, view, zap.NewNop())

	require.NoError(t, svc.Commit(context.Background(), 7))
	assert.Equal(t, []bool{true}, view.marks)
	assert.Equal(t, []bool{true}, catalog.updates)
	assert.Equal(t, 1, view.invalidated)
}

func TestEnrollmentCommitRevertsOnWriteFailure(t *testing.T) {
	catalog := &mockCatalog{
		courses: map[int]*models.Course{7: {ID: 7, IsEnrolled: false}},
		setErr:  errors.New("connection reset"),
	}
	view := &mockView{}
	svc := NewEnrollmentService(catalog, view, zap.NewNop())

	err := svc.Commit(context.Background(), 7)
	assert.ErrorIs(t, err, appErrors.ErrEnrollmentFailed)

	// Optimistic flip followed by revert to the prior value.
	assert.Equal(t, []bool{true, false}, view.marks)
	assert.Equal(t, 0, view.invalidated)
}

func TestEnrollmentCommitUnknownCourse(t *testing.T) {
	svc := NewEnrollmentService(&mockCatalog{}, &mockView{}, zap.NewNop())

	err := svc.Commit(context.Background(), 42)
	assert.ErrorIs(t, err, appErrors.ErrCourseNotFound)
}
