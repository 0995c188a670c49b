package dto

import "github.com/ducky-ai-hub/gold-tech-courses/internal/models"

// InstructorResponse mirrors the instructor profile with camelCase keys.
type InstructorResponse struct {
	Name   string `json:"name"`
	Title  string `json:"title"`
	Avatar string `json:"avatar,omitempty"`
	Bio    string `json:"bio,omitempty"`
}

// LessonResponse is a single lesson inside a module outline.
type LessonResponse struct {
	Title    string `json:"title"`
	Duration string `json:"duration,omitempty"`
}

// ModuleResponse is one section of the course outline.
type ModuleResponse struct {
	Title   string           `json:"title"`
	Lessons []LessonResponse `json:"lessons"`
}

// CourseResponse is the course payload served to the marketing frontend.
type CourseResponse struct {
	ID                 int                 `json:"id"`
	Title              string              `json:"title"`
	Description        string              `json:"description"`
	LongDescription    string              `json:"longDescription,omitempty"`
	Instructor         string              `json:"instructor"`
	InstructorDetails  *InstructorResponse `json:"instructorDetails,omitempty"`
	Duration           string              `json:"duration"`
	Level              string              `json:"level"`
	Image              string              `json:"image,omitempty"`
	Price              string              `json:"price"`
	OriginalPrice      *string             `json:"originalPrice,omitempty"`
	PromotionDeal      *string             `json:"promotionDeal,omitempty"`
	Rating             float64             `json:"rating"`
	Status             string              `json:"status"`
	LearningObjectives []string            `json:"learningObjectives,omitempty"`
	Modules            []ModuleResponse    `json:"modules,omitempty"`
	IsEnrolled         bool                `json:"isEnrolled"`
}

// NewCourseResponse maps a stored course onto the frontend payload shape.
func NewCourseResponse(c *models.Course) *CourseResponse {
	resp := &CourseResponse{
		ID:                 c.ID,
		Title:              c.Title,
		Description:        c.ShortDescription,
		LongDescription:    c.LongDescription,
		Instructor:         c.Instructor,
		Duration:           c.Duration,
		Level:              string(c.SkillLevel),
		Image:              c.ImageURL,
		Price:              c.Price,
		OriginalPrice:      c.OriginalPrice,
		PromotionDeal:      c.PromotionDeal,
		Rating:             c.Rating,
		Status:             string(c.Status),
		LearningObjectives: []string(c.LearningObjectives),
		IsEnrolled:         c.IsEnrolled,
	}
	if c.InstructorDetails.Name != "" {
		resp.InstructorDetails = &InstructorResponse{
			Name:   c.InstructorDetails.Name,
			Title:  c.InstructorDetails.Title,
			Avatar: c.InstructorDetails.AvatarURL,
			Bio:    c.InstructorDetails.Bio,
		}
	}
	for _, m := range c.Modules {
		mod := ModuleResponse{Title: m.Title, Lessons: make([]LessonResponse, 0, len(m.Lessons))}
		for _, l := range m.Lessons {
			mod.Lessons = append(mod.Lessons, LessonResponse{Title: l.Title, Duration: l.Duration})
		}
		resp.Modules = append(resp.Modules, mod)
	}
	return resp
}

// NewCourseListResponse maps a course slice, keeping catalog order.
func NewCourseListResponse(courses []models.Course) []CourseResponse {
	out := make([]CourseResponse, 0, len(courses))
	for i := range courses {
		out = append(out, *NewCourseResponse(&courses[i]))
	}
	return out
}
