package repository

import (
	"context"
	"database/sql"
	"sync"

	"github.com/ducky-ai-hub/gold-tech-courses/internal/models"
)

// StaticCatalog serves the bundled sample course list when no database is
// configured. Enrollment flags are held in memory only, so they reset on
// restart; this mirrors the sample-data mode of the marketing frontend.
type StaticCatalog struct {
	mu      sync.RWMutex
	courses []models.Course
}

// NewStaticCatalog builds an in-memory catalog seeded with sample courses.
func NewStaticCatalog() *StaticCatalog {
	return &StaticCatalog{courses: sampleCourses()}
}

// List returns the sample courses ordered by id ascending.
func (c *StaticCatalog) List(ctx context.Context) ([]models.Course, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Course, len(c.courses))
	copy(out, c.courses)
	return out, nil
}

// FindByID returns the sample course with the given id.
func (c *StaticCatalog) FindByID(ctx context.Context, id int) (*models.Course, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.courses {
		if c.courses[i].ID == id {
			course := c.courses[i]
			return &course, nil
		}
	}
	return nil, sql.ErrNoRows
}

// SetEnrolled flips the in-memory enrollment flag.
func (c *StaticCatalog) SetEnrolled(ctx context.Context, id int, enrolled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.courses {
		if c.courses[i].ID == id {
			c.courses[i].IsEnrolled = enrolled
			return nil
		}
	}
	return sql.ErrNoRows
}

func strPtr(s string) *string { return &s }

func sampleCourses() []models.Course {
	return []models.Course{
		{
			ID:         1,
			Title:      "Golang Backend Engineering",
			Instructor: "Minh Tran",
			InstructorDetails: models.InstructorDetails{
				Name:      "Minh Tran",
				Title:     "Principal Backend Engineer",
				AvatarURL: "https://picsum.photos/seed/instructor1/200",
				Bio:       "A decade of building high-throughput services for e-commerce platforms.",
			},
			Price:            "$149",
			OriginalPrice:    strPtr("$199"),
			PromotionDeal:    strPtr("Launch Sale"),
			ImageURL:         "https://picsum.photos/seed/course1/640/360",
			Rating:           4.8,
			ShortDescription: "Design and ship production-grade Go services.",
			LongDescription:  "From HTTP fundamentals to deployment, a hands-on path through building reliable backend systems in Go.",
			LearningObjectives: []string{
				"Structure a layered Go service",
				"Model data with PostgreSQL",
				"Instrument and operate services in production",
			},
			Modules: models.CourseModules{
				{Title: "Foundations", Lessons: []models.Lesson{
					{Title: "Project layout", Duration: "18:30"},
					{Title: "HTTP services with gin", Duration: "32:10"},
				}},
				{Title: "Persistence", Lessons: []models.Lesson{
					{Title: "sqlx and migrations", Duration: "27:45"},
				}},
			},
			Duration:   "12h 30m",
			SkillLevel: models.SkillLevelIntermediate,
			Status:     models.CourseStatusAvailable,
		},
		{
			ID:         2,
			Title:      "Practical SQL for Product Teams",
			Instructor: "Lan Pham",
			InstructorDetails: models.InstructorDetails{
				Name:      "Lan Pham",
				Title:     "Data Engineer",
				AvatarURL: "https://picsum.photos/seed/instructor2/200",
				Bio:       "Teaches analysts and engineers to get answers out of relational data.",
			},
			Price:            "Free",
			ImageURL:         "https://picsum.photos/seed/course2/640/360",
			Rating:           4.6,
			ShortDescription: "Query, join and aggregate with confidence.",
			LongDescription:  "A beginner-friendly tour of SQL centered on the questions product teams actually ask.",
			LearningObjectives: []string{
				"Read and write non-trivial joins",
				"Aggregate and window over real datasets",
			},
			Modules: models.CourseModules{
				{Title: "Getting Started", Lessons: []models.Lesson{
					{Title: "SELECT essentials", Duration: "15:00"},
					{Title: "Joins in practice", Duration: "24:20"},
				}},
			},
			Duration:   "6h 15m",
			SkillLevel: models.SkillLevelBeginner,
			Status:     models.CourseStatusAvailable,
		},
		{
			ID:         3,
			Title:      "Cloud Infrastructure with Terraform",
			Instructor: "Duc Nguyen",
			InstructorDetails: models.InstructorDetails{
				Name:      "Duc Nguyen",
				Title:     "Platform Engineer",
				AvatarURL: "https://picsum.photos/seed/instructor3/200",
				Bio:       "Runs infrastructure for a fintech scale-up.",
			},
			Price:            "$99",
			ImageURL:         "https://picsum.photos/seed/course3/640/360",
			Rating:           4.7,
			ShortDescription: "Infrastructure as code from zero to production.",
			LongDescription:  "Provision cloud environments reproducibly and safely with Terraform workflows used by real platform teams.",
			LearningObjectives: []string{
				"Author reusable Terraform modules",
				"Plan and apply changes safely",
			},
			Modules: models.CourseModules{
				{Title: "Core Workflow", Lessons: []models.Lesson{
					{Title: "State and plans", Duration: "21:40"},
				}},
			},
			Duration:   "8h 45m",
			SkillLevel: models.SkillLevelIntermediate,
			Status:     models.CourseStatusAvailable,
		},
		{
			ID:         7,
			Title:      "Distributed Systems Deep Dive",
			Instructor: "An Vo",
			InstructorDetails: models.InstructorDetails{
				Name:      "An Vo",
				Title:     "Staff Engineer",
				AvatarURL: "https://picsum.photos/seed/instructor7/200",
				Bio:       "Works on consensus and replication in large storage systems.",
			},
			Price:            "$249",
			ImageURL:         "https://picsum.photos/seed/course7/640/360",
			Rating:           4.9,
			ShortDescription: "Consensus, replication and failure in the large.",
			LongDescription:  "An advanced course on the algorithms and trade-offs behind reliable distributed systems.",
			LearningObjectives: []string{
				"Reason about consistency models",
				"Design for partial failure",
			},
			Modules: models.CourseModules{
				{Title: "Fundamentals", Lessons: []models.Lesson{
					{Title: "Time and ordering", Duration: "35:00"},
				}},
			},
			Duration:   "16h 00m",
			SkillLevel: models.SkillLevelAdvanced,
			Status:     models.CourseStatusUpcoming,
		},
	}
}
