package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ducky-ai-hub/gold-tech-courses/internal/models"
	appErrors "github.com/ducky-ai-hub/gold-tech-courses/pkg/errors"
)

type mockConsumer struct {
	consumed []string
	err      error
}

func (m *mockConsumer) Consume(ctx context.Context, token string) error {
	m.consumed = append(m.consumed, token)
	return m.err
}

type mockBackend struct {
	reqs []BackendRequest
	err  error
}

func (m *mockBackend) Submit(ctx context.Context, req BackendRequest) (*models.Registration, error) {
	m.reqs = append(m.reqs, req)
	if m.err != nil {
		return nil, m.err
	}
	return &models.Registration{ID: "reg-1", CourseID: req.CourseID, Email: req.Email, IdempotencyKey: req.IdempotencyKey}, nil
}

type mockCommitter struct {
	committed []int
	err       error
}

func (m *mockCommitter) Commit(ctx context.Context, courseID int) error {
	m.committed = append(m.committed, courseID)
	return m.err
}

func validSubmitRequest() SubmitRegistrationRequest {
	return SubmitRegistrationRequest{
		CourseID:          7,
		FullName:          "Jane Doe",
		Email:             "jane@example.com",
		Phone:             "+49 151 1234567",
		VerificationToken: "tok-1",
	}
}

func TestRegistrationSubmitSuccess(t *testing.T) {
	backend := &mockBackend{}
	gate := &mockConsumer{}
	committer := &mockCommitter{}
	svc := NewRegistrationService(backend, gate, committer, nil, validator.New(), zap.NewNop())

	registration, err := svc.Submit(context.Background(), validSubmitRequest())
	require.NoError(t, err)
	assert.Equal(t, 7, registration.CourseID)
	assert.Equal(t, []string{"tok-1"}, gate.consumed)
	assert.Equal(t, []int{7}, committer.committed)
}

func TestRegistrationSubmitMissingTokenFailsFast(t *testing.T) {
	backend := &mockBackend{}
	gate := &mockConsumer{}
	svc := NewRegistrationService(backend, gate, &mockCommitter{}, nil, validator.New(), zap.NewNop())

	req := validSubmitRequest()
	req.VerificationToken = ""
	_, err := svc.Submit(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrVerificationRequired)
	assert.Empty(t, gate.consumed)
	assert.Empty(t, backend.reqs)
}

func TestRegistrationSubmitRejectedToken(t *testing.T) {
	backend := &mockBackend{}
	gate := &mockConsumer{err: appErrors.Clone(appErrors.ErrVerificationRequired, "verification token invalid, please verify again")}
	svc := NewRegistrationService(backend, gate, &mockCommitter{}, nil, validator.New(), zap.NewNop())

	_, err := svc.Submit(context.Background(), validSubmitRequest())
	assert.ErrorIs(t, err, appErrors.ErrVerificationRequired)
	assert.Empty(t, backend.reqs)
}

func TestRegistrationSubmitInvalidPayload(t *testing.T) {
	svc := NewRegistrationService(&mockBackend{}, &mockConsumer{}, &mockCommitter{}, nil, validator.New(), zap.NewNop())

	req := validSubmitRequest()
	req.Email = "not-an-email"
	_, err := svc.Submit(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestRegistrationIdempotencyKeyPerAttempt(t *testing.T) {
	backend := &mockBackend{}
	svc := NewRegistrationService(backend, &mockConsumer{}, &mockCommitter{}, nil, validator.New(), zap.NewNop())

	_, err := svc.Submit(context.Background(), validSubmitRequest())
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), validSubmitRequest())
	require.NoError(t, err)

	require.Len(t, backend.reqs, 2)
	assert.NotEmpty(t, backend.reqs[0].IdempotencyKey)
	assert.NotEmpty(t, backend.reqs[1].IdempotencyKey)
	assert.NotEqual(t, backend.reqs[0].IdempotencyKey, backend.reqs[1].IdempotencyKey)
}

func TestRegistrationDuplicateSkipsEnrollment(t *testing.T) {
	backend := &mockBackend{err: appErrors.ErrAlreadyRegistered}
	committer := &mockCommitter{}
	svc := NewRegistrationService(backend, &mockConsumer{}, committer, nil, validator.New(), zap.NewNop())

	_, err := svc.Submit(context.Background(), validSubmitRequest())
	assert.ErrorIs(t, err, appErrors.ErrAlreadyRegistered)
	assert.Empty(t, committer.committed)
}

func TestRegistrationBackendFailureSkipsEnrollment(t *testing.T) {
	backend := &mockBackend{err: appErrors.ErrSubmissionFailed}
	committer := &mockCommitter{}
	svc := NewRegistrationService(backend, &mockConsumer{}, committer, nil, validator.New(), zap.NewNop())

	_, err := svc.Submit(context.Background(), validSubmitRequest())
	assert.ErrorIs(t, err, appErrors.ErrSubmissionFailed)
	assert.Empty(t, committer.committed)
}

func TestRegistrationEnrollmentFailureSurfaces(t *testing.T) {
	committer := &mockCommitter{err: appErrors.ErrEnrollmentFailed}
	svc := NewRegistrationService(&mockBackend{}, &mockConsumer{}, committer, nil, validator.New(), zap.NewNop())

	_, err := svc.Submit(context.Background(), validSubmitRequest())
	assert.ErrorIs(t, err, appErrors.ErrEnrollmentFailed)
	assert.Equal(t, []int{7}, committer.committed)
}
