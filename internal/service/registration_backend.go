package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ducky-ai-hub/gold-tech-courses/internal/models"
	"github.com/ducky-ai-hub/gold-tech-courses/internal/repository"
	appErrors "github.com/ducky-ai-hub/gold-tech-courses/pkg/errors"
)

// BackendRequest is the payload handed to a registration backend. The
// verification token and idempotency key are write-only artifacts of the
// call; they never travel back toward the render layer.
type BackendRequest struct {
	CourseID          int
	FullName          string
	Email             string
	Phone             string
	VerificationToken string
	IdempotencyKey    string
}

// RegistrationBackend performs the durable registration write. The three
// implementations are mutually exclusive strategies selected once at
// startup: a remote function endpoint, a direct table insert, or an
// explicit disabled mode when neither is configured.
type RegistrationBackend interface {
	Submit(ctx context.Context, req BackendRequest) (*models.Registration, error)
}

// remotePayload mirrors the wire contract of the registration function.
type remotePayload struct {
	CourseID     int    `json:"course_id"`
	Email        string `json:"email"`
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	CaptchaToken string `json:"captchaToken"`
	IdemKey      string `json:"idemKey"`
}

type remoteErrorBody struct {
	Message string `json:"message"`
}

// RemoteBackend submits registrations to a hosted function endpoint which
// owns uniqueness and captcha verification server-side.
type RemoteBackend struct {
	endpoint string
	anonKey  string
	client   *http.Client
	logger   *zap.Logger
}

// NewRemoteBackend constructs the remote-function backend.
func NewRemoteBackend(endpoint, anonKey string, logger *zap.Logger) *RemoteBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteBackend{
		endpoint: endpoint,
		anonKey:  anonKey,
		client:   &http.Client{Timeout: 15 * time.Second},
		logger:   logger,
	}
}

// Submit POSTs the registration and classifies the response. Any 2xx is
// success; 409 maps to the duplicate error; everything else becomes a
// submission failure carrying the server message when one is parsable.
// Transport failures are safe to retry because the idempotency key
// deduplicates on the server.
func (b *RemoteBackend) Submit(ctx context.Context, req BackendRequest) (*models.Registration, error) {
	payload, err := json.Marshal(remotePayload{
		CourseID:     req.CourseID,
		Email:        req.Email,
		FullName:     req.FullName,
		Phone:        req.Phone,
		CaptchaToken: req.VerificationToken,
		IdemKey:      req.IdempotencyKey,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode registration payload")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build registration request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if b.anonKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+b.anonKey)
	}

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrSubmissionFailed.Code, appErrors.ErrSubmissionFailed.Status, appErrors.ErrSubmissionFailed.Message)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &models.Registration{
			CourseID:       req.CourseID,
			FullName:       req.FullName,
			Email:          req.Email,
			Phone:          req.Phone,
			IdempotencyKey: req.IdempotencyKey,
			CreatedAt:      time.Now().UTC(),
		}, nil
	}

	if resp.StatusCode == http.StatusConflict {
		return nil, appErrors.ErrAlreadyRegistered
	}

	// Only the HTTP status drives classification; the body message is
	// display-safe text at best.
	message := appErrors.ErrSubmissionFailed.Message
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if readErr == nil {
		var parsed remoteErrorBody
		if json.Unmarshal(body, &parsed) == nil && parsed.Message != "" {
			message = parsed.Message
		}
	}
	b.logger.Warn("registration endpoint rejected submission",
		zap.Int("status", resp.StatusCode))
	return nil, appErrors.Clone(appErrors.ErrSubmissionFailed, message)
}

// registrationStore is the subset of the registration repository the table
// backend needs.
type registrationStore interface {
	Create(ctx context.Context, registration *models.Registration) error
}

// TableBackend inserts registrations directly into the local store. The
// repository resolves idempotency-key replays to the stored row and reports
// (course, email) duplicates distinctly.
type TableBackend struct {
	repo   registrationStore
	logger *zap.Logger
}

// NewTableBackend constructs the direct-insert backend.
func NewTableBackend(repo registrationStore, logger *zap.Logger) *TableBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TableBackend{repo: repo, logger: logger}
}

// Submit writes the registration row.
func (b *TableBackend) Submit(ctx context.Context, req BackendRequest) (*models.Registration, error) {
	registration := &models.Registration{
		CourseID:       req.CourseID,
		FullName:       req.FullName,
		Email:          req.Email,
		Phone:          req.Phone,
		IdempotencyKey: req.IdempotencyKey,
	}
	if err := b.repo.Create(ctx, registration); err != nil {
		if errors.Is(err, repository.ErrDuplicateRegistration) {
			return nil, appErrors.ErrAlreadyRegistered
		}
		return nil, appErrors.Wrap(err, appErrors.ErrSubmissionFailed.Code, appErrors.ErrSubmissionFailed.Status, appErrors.ErrSubmissionFailed.Message)
	}
	return registration, nil
}

// DisabledBackend refuses submissions when no registration backend is
// configured. The error is operator-facing, not a form error.
type DisabledBackend struct{}

// NewDisabledBackend constructs the disabled backend.
func NewDisabledBackend() *DisabledBackend {
	return &DisabledBackend{}
}

// Submit always reports missing configuration.
func (b *DisabledBackend) Submit(ctx context.Context, req BackendRequest) (*models.Registration, error) {
	return nil, appErrors.ErrConfigurationMissing
}
