package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ducky-ai-hub/gold-tech-courses/internal/models"
	"github.com/ducky-ai-hub/gold-tech-courses/pkg/config"
	appErrors "github.com/ducky-ai-hub/gold-tech-courses/pkg/errors"
)

func mockGateConfig() config.VerificationConfig {
	return config.VerificationConfig{
		ChallengeTTL:    time.Minute,
		MockVerifyDelay: 5 * time.Millisecond,
	}
}

func waitForToken(t *testing.T, tokens <-chan string) string {
	t.Helper()
	select {
	case token := <-tokens:
		return token
	case <-time.After(2 * time.Second):
		t.Fatal("no verification token delivered")
		return ""
	}
}

func TestVerificationModeSelection(t *testing.T) {
	withKey := NewVerificationService(config.VerificationConfig{SiteKey: "key"}, config.EnvProduction, zap.NewNop())
	assert.Equal(t, models.VerificationModeTurnstile, withKey.Mode())

	dev := NewVerificationService(config.VerificationConfig{}, config.EnvDevelopment, zap.NewNop())
	assert.Equal(t, models.VerificationModeMock, dev.Mode())

	prod := NewVerificationService(config.VerificationConfig{}, config.EnvProduction, zap.NewNop())
	assert.Equal(t, models.VerificationModeDisabled, prod.Mode())
}

func TestVerificationDisabledRefusesChallenge(t *testing.T) {
	gate := NewVerificationService(config.VerificationConfig{}, config.EnvProduction, zap.NewNop())

	_, err := gate.OpenChallenge("session", ChallengeCallbacks{})
	assert.ErrorIs(t, err, appErrors.ErrConfigurationMissing)
}

func TestVerificationMockIssuesToken(t *testing.T) {
	gate := NewVerificationService(mockGateConfig(), config.EnvDevelopment, zap.NewNop())
	tokens := make(chan string, 1)

	_, err := gate.OpenChallenge("session", ChallengeCallbacks{OnVerified: func(token string) { tokens <- token }})
	require.NoError(t, err)

	token := waitForToken(t, tokens)
	assert.NotEmpty(t, token)
	assert.NoError(t, gate.Consume(context.Background(), token))
}

func TestVerificationTokenSingleUse(t *testing.T) {
	gate := NewVerificationService(mockGateConfig(), config.EnvDevelopment, zap.NewNop())
	tokens := make(chan string, 1)

	_, err := gate.OpenChallenge("session", ChallengeCallbacks{OnVerified: func(token string) { tokens <- token }})
	require.NoError(t, err)
	token := waitForToken(t, tokens)

	require.NoError(t, gate.Consume(context.Background(), token))
	assert.ErrorIs(t, gate.Consume(context.Background(), token), appErrors.ErrVerificationRequired)
}

func TestVerificationUnknownTokenRejected(t *testing.T) {
	gate := NewVerificationService(mockGateConfig(), config.EnvDevelopment, zap.NewNop())

	err := gate.Consume(context.Background(), "never-issued")
	assert.ErrorIs(t, err, appErrors.ErrVerificationRequired)
}

func TestVerificationReopenInvalidatesPriorToken(t *testing.T) {
	gate := NewVerificationService(mockGateConfig(), config.EnvDevelopment, zap.NewNop())
	tokens := make(chan string, 2)
	callbacks := ChallengeCallbacks{OnVerified: func(token string) { tokens <- token }}

	_, err := gate.OpenChallenge("session", callbacks)
	require.NoError(t, err)
	first := waitForToken(t, tokens)

	_, err = gate.OpenChallenge("session", callbacks)
	require.NoError(t, err)
	second := waitForToken(t, tokens)

	assert.ErrorIs(t, gate.Consume(context.Background(), first), appErrors.ErrVerificationRequired)
	assert.NoError(t, gate.Consume(context.Background(), second))
}

func TestVerificationFailChallengeInvalidatesToken(t *testing.T) {
	gate := NewVerificationService(mockGateConfig(), config.EnvDevelopment, zap.NewNop())
	tokens := make(chan string, 1)
	errored := make(chan struct{}, 1)

	_, err := gate.OpenChallenge("session", ChallengeCallbacks{
		OnVerified: func(token string) { tokens <- token },
		OnError:    func() { errored <- struct{}{} },
	})
	require.NoError(t, err)
	token := waitForToken(t, tokens)

	gate.FailChallenge("session", false)
	select {
	case <-errored:
	case <-time.After(time.Second):
		t.Fatal("error callback not delivered")
	}
	assert.ErrorIs(t, gate.Consume(context.Background(), token), appErrors.ErrVerificationRequired)
}

func TestVerificationCloseChallengeDropsToken(t *testing.T) {
	gate := NewVerificationService(mockGateConfig(), config.EnvDevelopment, zap.NewNop())
	tokens := make(chan string, 1)

	_, err := gate.OpenChallenge("session", ChallengeCallbacks{OnVerified: func(token string) { tokens <- token }})
	require.NoError(t, err)
	token := waitForToken(t, tokens)

	gate.CloseChallenge("session")
	assert.ErrorIs(t, gate.Consume(context.Background(), token), appErrors.ErrVerificationRequired)
}

func TestVerificationTokenExpiry(t *testing.T) {
	cfg := mockGateConfig()
	cfg.ChallengeTTL = 20 * time.Millisecond
	gate := NewVerificationService(cfg, config.EnvDevelopment, zap.NewNop())
	tokens := make(chan string, 1)
	expired := make(chan struct{}, 1)

	_, err := gate.OpenChallenge("session", ChallengeCallbacks{
		OnVerified: func(token string) { tokens <- token },
		OnExpired:  func() { expired <- struct{}{} },
	})
	require.NoError(t, err)
	token := waitForToken(t, tokens)

	select {
	case <-expired:
	case <-time.After(2 * time.Second):
		t.Fatal("expiry callback not delivered")
	}
	assert.ErrorIs(t, gate.Consume(context.Background(), token), appErrors.ErrVerificationRequired)
}

func TestVerificationTurnstileTokenDelivery(t *testing.T) {
	cfg := config.VerificationConfig{SiteKey: "site-key", ChallengeTTL: time.Minute}
	gate := NewVerificationService(cfg, config.EnvProduction, zap.NewNop())
	tokens := make(chan string, 1)

	_, err := gate.OpenChallenge("session", ChallengeCallbacks{OnVerified: func(token string) { tokens <- token }})
	require.NoError(t, err)

	require.NoError(t, gate.CompleteChallenge("session", "widget-token"))
	assert.Equal(t, "widget-token", waitForToken(t, tokens))

	// Without a secret key there is no siteverify round trip.
	assert.NoError(t, gate.Consume(context.Background(), "widget-token"))
}

func TestVerificationCompleteWithoutChallenge(t *testing.T) {
	gate := NewVerificationService(mockGateConfig(), config.EnvDevelopment, zap.NewNop())

	err := gate.CompleteChallenge("missing", "tok")
	assert.ErrorIs(t, err, appErrors.ErrSessionNotFound)
}

func siteverifyGate(t *testing.T, siteverifyURL string) (*VerificationService, string) {
	t.Helper()
	cfg := config.VerificationConfig{
		SiteKey:       "site-key",
		SecretKey:     "secret-key",
		SiteverifyURL: siteverifyURL,
		ChallengeTTL:  time.Minute,
	}
	gate := NewVerificationService(cfg, config.EnvProduction, zap.NewNop())
	tokens := make(chan string, 1)

	_, err := gate.OpenChallenge("session", ChallengeCallbacks{OnVerified: func(token string) { tokens <- token }})
	require.NoError(t, err)
	require.NoError(t, gate.CompleteChallenge("session", "widget-token"))
	return gate, waitForToken(t, tokens)
}

func TestVerificationSiteverifyAccepts(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	gate, token := siteverifyGate(t, srv.URL)
	require.NoError(t, gate.Consume(context.Background(), token))
	assert.Equal(t, "secret-key", form.Get("secret"))
	assert.Equal(t, "widget-token", form.Get("response"))
}

func TestVerificationSiteverifyRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	}))
	defer srv.Close()

	gate, token := siteverifyGate(t, srv.URL)
	assert.ErrorIs(t, gate.Consume(context.Background(), token), appErrors.ErrVerificationRequired)
}

func TestVerificationSiteverifyTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	gate, token := siteverifyGate(t, srv.URL)
	assert.ErrorIs(t, gate.Consume(context.Background(), token), appErrors.ErrSubmissionFailed)
}

func TestVerificationSiteverifyMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	gate, token := siteverifyGate(t, srv.URL)
	assert.ErrorIs(t, gate.Consume(context.Background(), token), appErrors.ErrSubmissionFailed)
}
