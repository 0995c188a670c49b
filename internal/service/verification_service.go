package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ducky-ai-hub/gold-tech-courses/internal/models"
	"github.com/ducky-ai-hub/gold-tech-courses/pkg/config"
	appErrors "github.com/ducky-ai-hub/gold-tech-courses/pkg/errors"
)

// ChallengeCallbacks is the callback set registered when a challenge is
// opened. It is bound to that one challenge instance and torn down with it,
// so concurrent sessions never share a callback slot.
type ChallengeCallbacks struct {
	OnVerified func(token string)
	OnError    func()
	OnExpired  func()
}

type challenge struct {
	id          string
	sessionID   string
	callbacks   ChallengeCallbacks
	mockTimer   *time.Timer
	expiryTimer *time.Timer
}

type tokenRecord struct {
	sessionID string
	expiresAt time.Time
	used      bool
}

// VerificationService is the gate that produces proof-of-humanity tokens
// before a registration submission is allowed. With a Turnstile site key it
// brokers widget-issued tokens; without one it runs a mock provider in
// development and reports itself disabled in production.
type VerificationService struct {
	cfg    config.VerificationConfig
	env    string
	client *http.Client
	logger *zap.Logger

	mu         sync.Mutex
	challenges map[string]*challenge
	tokens     map[string]*tokenRecord
	now        func() time.Time
}

// NewVerificationService constructs the gate.
func NewVerificationService(cfg config.VerificationConfig, env string, logger *zap.Logger) *VerificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ChallengeTTL <= 0 {
		cfg.ChallengeTTL = 4 * time.Minute
	}
	if cfg.MockVerifyDelay <= 0 {
		cfg.MockVerifyDelay = 500 * time.Millisecond
	}
	return &VerificationService{
		cfg:        cfg,
		env:        env,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
		challenges: make(map[string]*challenge),
		tokens:     make(map[string]*tokenRecord),
		now:        time.Now,
	}
}

// Mode reports which provider backs the gate. Absence of a site key is an
// explicit disabled state in production rather than a silent pass-through.
func (s *VerificationService) Mode() models.VerificationMode {
	if s.cfg.SiteKey != "" {
		return models.VerificationModeTurnstile
	}
	if s.env == config.EnvProduction {
		return models.VerificationModeDisabled
	}
	return models.VerificationModeMock
}

// SiteKey exposes the public widget key for the render layer.
func (s *VerificationService) SiteKey() string {
	return s.cfg.SiteKey
}

// OpenChallenge starts a fresh challenge for the session, tearing down any
// prior instance first. Tokens are single-use and time-bound, so at most one
// challenge is live per session. The call returns immediately; outcomes
// arrive through the callbacks.
func (s *VerificationService) OpenChallenge(sessionID string, callbacks ChallengeCallbacks) (string, error) {
	mode := s.Mode()
	if mode == models.VerificationModeDisabled {
		return "", appErrors.ErrConfigurationMissing
	}

	s.mu.Lock()
	s.teardownLocked(sessionID)

	ch := &challenge{
		id:        uuid.NewString(),
		sessionID: sessionID,
		callbacks: callbacks,
	}
	s.challenges[sessionID] = ch

	if mode == models.VerificationModeMock {
		ch.mockTimer = time.AfterFunc(s.cfg.MockVerifyDelay, func() {
			s.issueToken(sessionID, ch.id, "mock-"+uuid.NewString())
		})
	}
	s.mu.Unlock()

	s.logger.Debug("challenge opened",
		zap.String("session_id", sessionID),
		zap.String("mode", string(mode)))
	return ch.id, nil
}

// CompleteChallenge delivers a widget-issued token for the session's active
// challenge. Used by the Turnstile callback path.
func (s *VerificationService) CompleteChallenge(sessionID, token string) error {
	if token == "" {
		return appErrors.Clone(appErrors.ErrValidation, "verification token is empty")
	}
	s.mu.Lock()
	ch, ok := s.challenges[sessionID]
	s.mu.Unlock()
	if !ok {
		return appErrors.Clone(appErrors.ErrSessionNotFound, "no active challenge for session")
	}
	s.issueToken(sessionID, ch.id, token)
	return nil
}

// FailChallenge invalidates the session's held token after a widget error
// or expiry signal. The user has to re-verify; there is no auto-retry.
func (s *VerificationService) FailChallenge(sessionID string, expired bool) {
	s.mu.Lock()
	ch, ok := s.challenges[sessionID]
	if ok {
		s.invalidateTokensLocked(sessionID)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	if expired {
		if ch.callbacks.OnExpired != nil {
			ch.callbacks.OnExpired()
		}
	} else if ch.callbacks.OnError != nil {
		ch.callbacks.OnError()
	}
}

// CloseChallenge releases the session's challenge and tokens. Called on
// every session exit path so no widget instance or token outlives the modal.
func (s *VerificationService) CloseChallenge(sessionID string) {
	s.mu.Lock()
	s.teardownLocked(sessionID)
	s.mu.Unlock()
}

// Consume validates a token and marks it used; a token can satisfy exactly
// one submission. When a secret key is configured the token is additionally
// verified against the provider's siteverify endpoint.
func (s *VerificationService) Consume(ctx context.Context, token string) error {
	s.mu.Lock()
	rec, ok := s.tokens[token]
	switch {
	case !ok, rec.used:
		s.mu.Unlock()
		return appErrors.Clone(appErrors.ErrVerificationRequired, "verification token invalid, please verify again")
	case s.now().After(rec.expiresAt):
		delete(s.tokens, token)
		s.mu.Unlock()
		return appErrors.Clone(appErrors.ErrVerificationRequired, "verification expired, please verify again")
	}
	rec.used = true
	s.mu.Unlock()

	if s.cfg.SecretKey == "" || s.Mode() != models.VerificationModeTurnstile {
		return nil
	}
	return s.siteverify(ctx, token)
}

func (s *VerificationService) issueToken(sessionID, challengeID, token string) {
	s.mu.Lock()
	ch, ok := s.challenges[sessionID]
	if !ok || ch.id != challengeID {
		// Challenge was replaced or closed while the token was in flight.
		s.mu.Unlock()
		return
	}
	s.invalidateTokensLocked(sessionID)
	s.tokens[token] = &tokenRecord{sessionID: sessionID, expiresAt: s.now().Add(s.cfg.ChallengeTTL)}
	ch.expiryTimer = time.AfterFunc(s.cfg.ChallengeTTL, func() {
		s.expireToken(sessionID, challengeID, token)
	})
	cb := ch.callbacks.OnVerified
	s.mu.Unlock()

	if cb != nil {
		cb(token)
	}
}

func (s *VerificationService) expireToken(sessionID, challengeID, token string) {
	s.mu.Lock()
	rec, ok := s.tokens[token]
	if !ok || rec.used {
		s.mu.Unlock()
		return
	}
	delete(s.tokens, token)
	ch, active := s.challenges[sessionID]
	var cb func()
	if active && ch.id == challengeID {
		cb = ch.callbacks.OnExpired
	}
	s.mu.Unlock()

	if cb != nil {
		cb()
	}
}

func (s *VerificationService) teardownLocked(sessionID string) {
	ch, ok := s.challenges[sessionID]
	if !ok {
		return
	}
	if ch.mockTimer != nil {
		ch.mockTimer.Stop()
	}
	if ch.expiryTimer != nil {
		ch.expiryTimer.Stop()
	}
	s.invalidateTokensLocked(sessionID)
	delete(s.challenges, sessionID)
}

func (s *VerificationService) invalidateTokensLocked(sessionID string) {
	for token, rec := range s.tokens {
		if rec.sessionID == sessionID {
			delete(s.tokens, token)
		}
	}
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

func (s *VerificationService) siteverify(ctx context.Context, token string) error {
	form := url.Values{}
	form.Set("secret", s.cfg.SecretKey)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.SiteverifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrSubmissionFailed.Code, appErrors.ErrSubmissionFailed.Status, "could not reach verification provider")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrSubmissionFailed.Code, appErrors.ErrSubmissionFailed.Status, "could not reach verification provider")
	}
	defer resp.Body.Close()

	var result siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return appErrors.Wrap(err, appErrors.ErrSubmissionFailed.Code, appErrors.ErrSubmissionFailed.Status, "could not read verification response")
	}
	if !result.Success {
		s.logger.Warn("siteverify rejected token", zap.Strings("error_codes", result.ErrorCodes))
		return appErrors.Clone(appErrors.ErrVerificationRequired, "verification rejected, please verify again")
	}
	return nil
}
