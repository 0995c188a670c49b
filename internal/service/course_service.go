package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ducky-ai-hub/gold-tech-courses/internal/models"
	appErrors "github.com/ducky-ai-hub/gold-tech-courses/pkg/errors"
)

const catalogCacheKey = "catalog:courses"

type catalogReader interface {
	List(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, id int) (*models.Course, error)
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CourseService serves catalog reads. It layers a Redis cache over the
// store and an in-memory enrollment overlay that the reconciler flips
// optimistically; the overlay is what makes the optimistic update visible
// to readers before the durable write confirms.
type CourseService struct {
	store    catalogReader
	cache    catalogCache
	metrics  *MetricsService
	cacheTTL time.Duration
	logger   *zap.Logger

	mu      sync.RWMutex
	overlay map[int]bool
}

// NewCourseService constructs CourseService. cache may be nil.
func NewCourseService(store catalogReader, cache catalogCache, metrics *MetricsService, cacheTTL time.Duration, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &CourseService{
		store:    store,
		cache:    cache,
		metrics:  metrics,
		cacheTTL: cacheTTL,
		logger:   logger,
		overlay:  make(map[int]bool),
	}
}

// List returns all courses ordered by id ascending, with a flag reporting
// whether the payload came from cache.
func (s *CourseService) List(ctx context.Context) ([]models.Course, bool, error) {
	var courses []models.Course
	if s.cache != nil {
		if err := s.cache.Get(ctx, catalogCacheKey, &courses); err == nil {
			s.metrics.RecordCacheLookup(true)
			return s.applyOverlay(courses), true, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("catalog cache read failed", zap.Error(err))
		}
		s.metrics.RecordCacheLookup(false)
	}

	courses, err := s.store.List(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, catalogCacheKey, courses, s.cacheTTL); err != nil {
			s.logger.Warn("catalog cache write failed", zap.Error(err))
		}
	}
	return s.applyOverlay(courses), false, nil
}

// Get returns one course by id.
func (s *CourseService) Get(ctx context.Context, id int) (*models.Course, error) {
	course, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrCourseNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	s.mu.RLock()
	if enrolled, ok := s.overlay[course.ID]; ok {
		course.IsEnrolled = enrolled
	}
	s.mu.RUnlock()
	return course, nil
}

// MarkEnrolled records the optimistic (or reverted) enrollment flag in the
// served view.
func (s *CourseService) MarkEnrolled(courseID int, enrolled bool) {
	s.mu.Lock()
	s.overlay[courseID] = enrolled
	s.mu.Unlock()
}

// InvalidateList drops the cached course list after a durable enrollment
// write so the next read reflects the store.
func (s *CourseService) InvalidateList(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, catalogCacheKey); err != nil {
		s.logger.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}

func (s *CourseService) applyOverlay(courses []models.Course) []models.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.overlay) == 0 {
		return courses
	}
	for i := range courses {
		if enrolled, ok := s.overlay[courses[i].ID]; ok {
			courses[i].IsEnrolled = enrolled
		}
	}
	return courses
}
