package models

import "time"

// Registration is the durable record of a course registration. Registrations
// are anonymous and keyed only by the submitted email; (course_id, email) is
// unique, as is the idempotency key used to deduplicate retried submissions.
type Registration struct {
	ID             string    `db:"id" json:"id"`
	CourseID       int       `db:"course_id" json:"course_id"`
	FullName       string    `db:"full_name" json:"full_name"`
	Email          string    `db:"email" json:"email"`
	Phone          string    `db:"phone" json:"phone"`
	IdempotencyKey string    `db:"idempotency_key" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// RegistrationFilter provides filters for listing registrations.
type RegistrationFilter struct {
	CourseID int
	Email    string
	Page     int
	PageSize int
}
