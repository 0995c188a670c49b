package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ducky-ai-hub/gold-tech-courses/internal/models"
	"github.com/ducky-ai-hub/gold-tech-courses/internal/repository"
	appErrors "github.com/ducky-ai-hub/gold-tech-courses/pkg/errors"
)

func backendRequest() BackendRequest {
	return BackendRequest{
		CourseID:          7,
		FullName:          "Jane Doe",
		Email:             "jane@example.com",
		Phone:             "+49 151 1234567",
		VerificationToken: "tok-1",
		IdempotencyKey:    "idem-1",
	}
}

func TestRemoteBackendSuccess(t *testing.T) {
	var received remotePayload
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	backend := NewRemoteBackend(server.URL, "anon-key", zap.NewNop())
	registration, err := backend.Submit(context.Background(), backendRequest())
	require.NoError(t, err)

	assert.Equal(t, 7, registration.CourseID)
	assert.Equal(t, "idem-1", registration.IdempotencyKey)
	assert.Equal(t, "Bearer anon-key", auth)
	assert.Equal(t, "tok-1", received.CaptchaToken)
	assert.Equal(t, "idem-1", received.IdemKey)
	assert.Equal(t, "jane@example.com", received.Email)
}

func TestRemoteBackendConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	backend := NewRemoteBackend(server.URL, "", zap.NewNop())
	_, err := backend.Submit(context.Background(), backendRequest())
	assert.ErrorIs(t, err, appErrors.ErrAlreadyRegistered)
}

func TestRemoteBackendServerErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "captcha rejected"})
	}))
	defer server.Close()

	backend := NewRemoteBackend(server.URL, "", zap.NewNop())
	_, err := backend.Submit(context.Background(), backendRequest())
	require.ErrorIs(t, err, appErrors.ErrSubmissionFailed)
	assert.Contains(t, err.Error(), "captcha rejected")
}

func TestRemoteBackendTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	backend := NewRemoteBackend(server.URL, "", zap.NewNop())
	_, err := backend.Submit(context.Background(), backendRequest())
	assert.ErrorIs(t, err, appErrors.ErrSubmissionFailed)
}

type mockRegistrationStore struct {
	err     error
	created *models.Registration
}

func (m *mockRegistrationStore) Create(ctx context.Context, registration *models.Registration) error {
	if m.err != nil {
		return m.err
	}
	registration.ID = "stored"
	m.created = registration
	return nil
}

func TestTableBackendSuccess(t *testing.T) {
	store := &mockRegistrationStore{}
	backend := NewTableBackend(store, zap.NewNop())

	registration, err := backend.Submit(context.Background(), backendRequest())
	require.NoError(t, err)
	assert.Equal(t, "stored", registration.ID)
	assert.Equal(t, "idem-1", store.created.IdempotencyKey)
}

func TestTableBackendDuplicate(t *testing.T) {
	backend := NewTableBackend(&mockRegistrationStore{err: repository.ErrDuplicateRegistration}, zap.NewNop())

	_, err := backend.Submit(context.Background(), backendRequest())
	assert.ErrorIs(t, err, appErrors.ErrAlreadyRegistered)
}

func TestDisabledBackend(t *testing.T) {
	backend := NewDisabledBackend()

	_, err := backend.Submit(context.Background(), backendRequest())
	assert.ErrorIs(t, err, appErrors.ErrConfigurationMissing)
}
