package dto

import (
	"time"

	"github.com/ducky-ai-hub/gold-tech-courses/internal/models"
)

// CreateRegistrationRequest is the direct registration endpoint payload.
type CreateRegistrationRequest struct {
	CourseID          int    `json:"courseId" binding:"required"`
	FullName          string `json:"fullName" binding:"required"`
	Email             string `json:"email" binding:"required"`
	Phone             string `json:"phone" binding:"required"`
	VerificationToken string `json:"verificationToken"`
}

// RegistrationResponse is the stored registration without the idempotency key.
type RegistrationResponse struct {
	ID        string    `json:"id"`
	CourseID  int       `json:"courseId"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewRegistrationResponse maps a stored registration onto the API shape.
func NewRegistrationResponse(r *models.Registration) *RegistrationResponse {
	return &RegistrationResponse{
		ID:        r.ID,
		CourseID:  r.CourseID,
		FullName:  r.FullName,
		Email:     r.Email,
		Phone:     r.Phone,
		CreatedAt: r.CreatedAt,
	}
}
