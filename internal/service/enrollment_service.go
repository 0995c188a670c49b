package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/ducky-ai-hub/gold-tech-courses/internal/models"
	appErrors "github.com/ducky-ai-hub/gold-tech-courses/pkg/errors"
)

type enrollmentCatalog interface {
	FindByID(ctx context.Context, id int) (*models.Course, error)
	SetEnrolled(ctx context.Context, id int, enrolled bool) error
}

// enrollmentView is the locally served projection of the enrollment flag.
// The reconciler flips it optimistically before the durable write lands and
// reverts it when the write fails.
type enrollmentView interface {
	MarkEnrolled(courseID int, enrolled bool)
	InvalidateList(ctx context.Context)
}

// EnrollmentService keeps the displayed enrollment flag consistent with the
// durable store using optimistic update with rollback. It is the only
// mutator of the catalog; every other consumer is read-only.
type EnrollmentService struct {
	catalog enrollmentCatalog
	view    enrollmentView
	logger  *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(catalog enrollmentCatalog, view enrollmentView, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{catalog: catalog, view: view, logger: logger}
}

// Commit marks the course enrolled: the served view first so the UI feels
// instantaneous, then the durable write. A failed durable write reverts the
// view to its prior value and reports a generic enrollment failure. An
// unknown course id is a local logic fault reported as CourseNotFound.
func (s *EnrollmentService) Commit(ctx context.Context, courseID int) error {
	course, err := s.catalog.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Error("enrollment commit for unknown course", zap.Int("course_id", courseID))
			return appErrors.ErrCourseNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	prior := course.IsEnrolled
	if s.view != nil {
		s.view.MarkEnrolled(courseID, true)
	}

	if err := s.catalog.SetEnrolled(ctx, courseID, true); err != nil {
		if s.view != nil {
			s.view.MarkEnrolled(courseID, prior)
		}
		s.logger.Warn("enrollment write failed, reverted optimistic flag",
			zap.Int("course_id", courseID), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrEnrollmentFailed.Code, appErrors.ErrEnrollmentFailed.Status, appErrors.ErrEnrollmentFailed.Message)
	}

	if s.view != nil {
		s.view.InvalidateList(ctx)
	}
	return nil
}
