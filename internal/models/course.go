package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
)

// CourseStatus distinguishes published courses from announced ones.
type CourseStatus string

// Possible course statuses.
const (
	CourseStatusAvailable CourseStatus = "available"
	CourseStatusUpcoming  CourseStatus = "upcoming"
)

// SkillLevel is the difficulty tier shown on course cards.
type SkillLevel string

const (
	SkillLevelBeginner     SkillLevel = "Beginner"
	SkillLevelIntermediate SkillLevel = "Intermediate"
	SkillLevelAdvanced     SkillLevel = "Advanced"
)

// Instructor holds the profile displayed on the course detail page.
type Instructor struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	AvatarURL string `json:"avatar_url"`
	Bio       string `json:"bio"`
}

// Lesson is a single syllabus entry inside a course module.
type Lesson struct {
	Title    string `json:"title"`
	Duration string `json:"duration"`
}

// CourseModule groups lessons under a syllabus heading.
type CourseModule struct {
	Title   string   `json:"title"`
	Lessons []Lesson `json:"lessons"`
}

// CourseModules is stored as a JSONB column.
type CourseModules []CourseModule

// Value implements driver.Valuer.
func (m CourseModules) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *CourseModules) Scan(src interface{}) error {
	return scanJSON(src, m)
}

// InstructorDetails is stored as a JSONB column.
type InstructorDetails Instructor

// Value implements driver.Valuer.
func (d InstructorDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner.
func (d *InstructorDetails) Scan(src interface{}) error {
	return scanJSON(src, d)
}

// Course is a catalog entry. Courses are seeded out of band; the only
// mutation this service performs is flipping IsEnrolled.
type Course struct {
	ID                 int               `db:"id" json:"id"`
	Title              string            `db:"title" json:"title"`
	Instructor         string            `db:"instructor" json:"instructor"`
	InstructorDetails  InstructorDetails `db:"instructor_details" json:"instructor_details"`
	Price              string            `db:"price" json:"price"`
	OriginalPrice      *string           `db:"original_price" json:"original_price,omitempty"`
	PromotionDeal      *string           `db:"promotion_deal" json:"promotion_deal,omitempty"`
	ImageURL           string            `db:"image_url" json:"image_url"`
	Rating             float64           `db:"rating" json:"rating"`
	ShortDescription   string            `db:"short_description" json:"short_description"`
	LongDescription    string            `db:"long_description" json:"long_description"`
	LearningObjectives pq.StringArray    `db:"learning_objectives" json:"learning_objectives"`
	Modules            CourseModules     `db:"modules" json:"modules"`
	Duration           string            `db:"duration" json:"duration"`
	SkillLevel         SkillLevel        `db:"skill_level" json:"skill_level"`
	IsEnrolled         bool              `db:"is_enrolled" json:"is_enrolled"`
	Status             CourseStatus      `db:"status" json:"status"`
}

func scanJSON(src, dest interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
}
