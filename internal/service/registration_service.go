package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ducky-ai-hub/gold-tech-courses/internal/models"
	appErrors "github.com/ducky-ai-hub/gold-tech-courses/pkg/errors"
)

type verificationConsumer interface {
	Consume(ctx context.Context, token string) error
}

type enrollmentCommitter interface {
	Commit(ctx context.Context, courseID int) error
}

// SubmitRegistrationRequest describes one user-initiated submit action.
type SubmitRegistrationRequest struct {
	CourseID          int    `json:"course_id" validate:"required,gt=0"`
	FullName          string `json:"full_name" validate:"required"`
	Email             string `json:"email" validate:"required,email"`
	Phone             string `json:"phone" validate:"required"`
	VerificationToken string `json:"verification_token"`
}

// RegistrationService performs exactly one durable write per submit action.
// The idempotency key is generated here, once per attempt, so transport
// retries inside the attempt stay deduplicated server-side while a fresh
// attempt always carries a fresh key.
type RegistrationService struct {
	backend     RegistrationBackend
	gate        verificationConsumer
	enrollments enrollmentCommitter
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewRegistrationService constructs RegistrationService.
func NewRegistrationService(backend RegistrationBackend, gate verificationConsumer, enrollments enrollmentCommitter, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		backend:     backend,
		gate:        gate,
		enrollments: enrollments,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
}

// Submit validates the request, consumes the verification token, performs
// the registration write and, on success only, commits the enrollment flag.
// A missing token fails fast without any network call.
func (s *RegistrationService) Submit(ctx context.Context, req SubmitRegistrationRequest) (*models.Registration, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	if req.VerificationToken == "" {
		s.metrics.RecordRegistration("verification_required")
		return nil, appErrors.ErrVerificationRequired
	}
	if err := s.gate.Consume(ctx, req.VerificationToken); err != nil {
		s.metrics.RecordRegistration("verification_required")
		return nil, err
	}

	attempt := BackendRequest{
		CourseID:          req.CourseID,
		FullName:          req.FullName,
		Email:             req.Email,
		Phone:             req.Phone,
		VerificationToken: req.VerificationToken,
		IdempotencyKey:    uuid.NewString(),
	}

	registration, err := s.backend.Submit(ctx, attempt)
	if err != nil {
		if errors.Is(err, appErrors.ErrAlreadyRegistered) {
			s.metrics.RecordRegistration("duplicate")
		} else {
			s.metrics.RecordRegistration("failed")
		}
		return nil, err
	}

	// The durable registration write proves uniqueness; only now may the
	// enrollment flag flip.
	if err := s.enrollments.Commit(ctx, req.CourseID); err != nil {
		s.metrics.RecordRegistration("enrollment_failed")
		return nil, err
	}

	s.metrics.RecordRegistration("succeeded")
	s.logger.Info("registration completed", zap.Int("course_id", req.CourseID))
	return registration, nil
}
