package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ducky-ai-hub/gold-tech-courses/internal/models"
)

// pgUniqueViolation is the SQLSTATE reported for unique constraint breaches.
const pgUniqueViolation = "23505"

// ErrDuplicateRegistration signals an existing (course_id, email) pair.
var ErrDuplicateRegistration = errors.New("duplicate registration")

// RegistrationRepository handles persistence of course registrations.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs the repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Create persists a registration. A unique violation on (course_id, email)
// surfaces as ErrDuplicateRegistration; a violation on the idempotency key
// means the same attempt was already stored, and the stored row is returned
// instead of an error.
func (r *RegistrationRepository) Create(ctx context.Context, registration *models.Registration) error {
	if registration.ID == "" {
		registration.ID = uuid.NewString()
	}
	if registration.CreatedAt.IsZero() {
		registration.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO registrations (id, course_id, full_name, email, phone, idempotency_key, created_at)
        VALUES (:id, :course_id, :full_name, :email, :phone, :idempotency_key, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, registration); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			if strings.Contains(pqErr.Constraint, "idempotency") {
				stored, lookupErr := r.FindByIdempotencyKey(ctx, registration.IdempotencyKey)
				if lookupErr != nil {
					return fmt.Errorf("replay lookup: %w", lookupErr)
				}
				*registration = *stored
				return nil
			}
			return ErrDuplicateRegistration
		}
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

// FindByIdempotencyKey returns the registration stored for a given key.
func (r *RegistrationRepository) FindByIdempotencyKey(ctx context.Context, key string) (*models.Registration, error) {
	const query = `SELECT id, course_id, full_name, email, phone, idempotency_key, created_at
        FROM registrations WHERE idempotency_key = $1`
	var registration models.Registration
	if err := r.db.GetContext(ctx, &registration, query, key); err != nil {
		return nil, err
	}
	return &registration, nil
}

// List returns registrations filtered by the provided criteria.
func (r *RegistrationRepository) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error) {
	base := "FROM registrations"
	var conditions []string
	var args []interface{}

	if filter.CourseID > 0 {
		conditions = append(conditions, fmt.Sprintf("course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.Email != "" {
		conditions = append(conditions, fmt.Sprintf("email = $%d", len(args)+1))
		args = append(args, filter.Email)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, course_id, full_name, email, phone, idempotency_key, created_at
        %s ORDER BY created_at DESC LIMIT %d OFFSET %d`, base+clause, size, offset)

	var registrations []models.Registration
	if err := r.db.SelectContext(ctx, &registrations, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}
	return registrations, total, nil
}
