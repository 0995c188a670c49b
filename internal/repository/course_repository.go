package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ducky-ai-hub/gold-tech-courses/internal/models"
)

const courseColumns = `id, title, instructor, instructor_details, price, original_price, promotion_deal,
        image_url, rating, short_description, long_description, learning_objectives, modules,
        duration, skill_level, is_enrolled, status`

// CourseRepository handles persistence of catalog courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns all courses ordered by id ascending.
func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses ORDER BY id ASC", courseColumns)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByID returns a course by its numeric id.
func (r *CourseRepository) FindByID(ctx context.Context, id int) (*models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE id = $1", courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// SetEnrolled performs the point update of the enrollment flag. It is the
// only mutation the registration workflow applies to the catalog.
func (r *CourseRepository) SetEnrolled(ctx context.Context, id int, enrolled bool) error {
	const query = `UPDATE courses SET is_enrolled = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, enrolled)
	if err != nil {
		return fmt.Errorf("set enrolled: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set enrolled rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
