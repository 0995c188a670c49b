package service

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ducky-ai-hub/gold-tech-courses/internal/dto"
	"github.com/ducky-ai-hub/gold-tech-courses/internal/models"
	appErrors "github.com/ducky-ai-hub/gold-tech-courses/pkg/errors"
)

// challengeGate is the verification surface the workflow drives.
type challengeGate interface {
	Mode() models.VerificationMode
	SiteKey() string
	OpenChallenge(sessionID string, callbacks ChallengeCallbacks) (string, error)
	CompleteChallenge(sessionID, token string) error
	FailChallenge(sessionID string, expired bool)
	CloseChallenge(sessionID string)
}

// registrationSubmitter runs one full submission attempt.
type registrationSubmitter interface {
	Submit(ctx context.Context, req SubmitRegistrationRequest) (*models.Registration, error)
}

// workflowCatalog checks the target course exists before a session opens.
type workflowCatalog interface {
	Get(ctx context.Context, id int) (*models.Course, error)
}

type workflowSession struct {
	id       string
	courseID int
	state    models.WorkflowState
	token    string
	failure  *appErrors.Error

	// attempt fences late submission results after the session moved on.
	attempt int
}

// WorkflowService holds the per-session registration state machine:
// AWAITING_VERIFICATION until the gate hands over a token, READY once one is
// held, SUBMITTING for the single in-flight attempt, then SUCCEEDED or
// FAILED. A failed session drops its token and reopens the challenge, so the
// user re-verifies before trying again.
type WorkflowService struct {
	gate      challengeGate
	submitter registrationSubmitter
	catalog   workflowCatalog
	metrics   *MetricsService
	logger    *zap.Logger

	mu       sync.Mutex
	sessions map[string]*workflowSession
}

// NewWorkflowService constructs the workflow controller.
func NewWorkflowService(gate challengeGate, submitter registrationSubmitter, catalog workflowCatalog, metrics *MetricsService, logger *zap.Logger) *WorkflowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkflowService{
		gate:      gate,
		submitter: submitter,
		catalog:   catalog,
		metrics:   metrics,
		logger:    logger,
		sessions:  make(map[string]*workflowSession),
	}
}

// Open starts a registration session for a course and requests a fresh
// verification challenge. With the gate disabled the session still opens so
// the client can render the configuration error, but it can never submit.
func (s *WorkflowService) Open(ctx context.Context, courseID int) (*dto.WorkflowSessionResponse, error) {
	if _, err := s.catalog.Get(ctx, courseID); err != nil {
		return nil, err
	}

	// Without a usable gate the session stays Idle: no challenge is
	// requested and submission is refused with the configuration error.
	state := models.WorkflowStateAwaitingVerification
	if s.gate.Mode() == models.VerificationModeDisabled {
		state = models.WorkflowStateIdle
	}
	sess := &workflowSession{
		id:       uuid.NewString(),
		courseID: courseID,
		state:    state,
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	if s.gate.Mode() != models.VerificationModeDisabled {
		if _, err := s.gate.OpenChallenge(sess.id, s.callbacksFor(sess.id)); err != nil {
			s.mu.Lock()
			delete(s.sessions, sess.id)
			s.mu.Unlock()
			return nil, err
		}
		s.metrics.RecordChallenge(string(s.gate.Mode()))
	}

	s.logger.Info("workflow session opened",
		zap.String("session_id", sess.id),
		zap.Int("course_id", courseID),
		zap.String("verification_mode", string(s.gate.Mode())))
	return s.viewOf(sess.id)
}

// Get returns the session's externally visible state.
func (s *WorkflowService) Get(sessionID string) (*dto.WorkflowSessionResponse, error) {
	return s.viewOf(sessionID)
}

// DeliverVerification routes a widget callback event into the session's
// challenge. Token events move the session to READY through the gate; error
// and expiry events clear any held token.
func (s *WorkflowService) DeliverVerification(sessionID string, event dto.VerificationEvent) (*dto.WorkflowSessionResponse, error) {
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return nil, appErrors.ErrSessionNotFound
	}

	switch event.Event {
	case dto.VerificationEventVerified:
		if err := s.gate.CompleteChallenge(sessionID, event.Token); err != nil {
			return nil, err
		}
	case dto.VerificationEventError:
		s.gate.FailChallenge(sessionID, false)
	case dto.VerificationEventExpired:
		s.gate.FailChallenge(sessionID, true)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown verification event")
	}
	return s.viewOf(sessionID)
}

// Submit runs one registration attempt for the session. Rejections for a
// missing token, empty fields, or an attempt already in flight leave the
// session state untouched. A backend failure moves the session to FAILED,
// drops the token, and reopens the challenge for a retry.
func (s *WorkflowService) Submit(ctx context.Context, sessionID string, form dto.RegistrationForm) (*dto.WorkflowSessionResponse, error) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return nil, appErrors.ErrSessionNotFound
	}

	if s.gate.Mode() == models.VerificationModeDisabled {
		s.mu.Unlock()
		return nil, appErrors.ErrConfigurationMissing
	}

	switch sess.state {
	case models.WorkflowStateSubmitting:
		s.mu.Unlock()
		return nil, appErrors.ErrSubmissionInFlight
	case models.WorkflowStateSucceeded:
		s.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrValidation, "registration already completed for this session")
	}

	if strings.TrimSpace(form.FullName) == "" || strings.TrimSpace(form.Email) == "" || strings.TrimSpace(form.Phone) == "" {
		s.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrValidation, "full name, email and phone are required")
	}
	if sess.token == "" {
		s.mu.Unlock()
		return nil, appErrors.ErrVerificationRequired
	}

	token := sess.token
	courseID := sess.courseID
	sess.state = models.WorkflowStateSubmitting
	sess.failure = nil
	sess.attempt++
	attempt := sess.attempt
	s.mu.Unlock()

	_, err := s.submitter.Submit(ctx, SubmitRegistrationRequest{
		CourseID:          courseID,
		FullName:          form.FullName,
		Email:             form.Email,
		Phone:             form.Phone,
		VerificationToken: token,
	})

	s.mu.Lock()
	sess, ok = s.sessions[sessionID]
	if !ok {
		// Session was closed while the attempt ran; its result is moot.
		s.mu.Unlock()
		return nil, appErrors.ErrSessionNotFound
	}
	if sess.attempt != attempt {
		view := s.viewLocked(sess)
		s.mu.Unlock()
		return view, nil
	}

	if err != nil {
		sess.state = models.WorkflowStateFailed
		sess.failure = appErrors.FromError(err)
		sess.token = ""
		s.mu.Unlock()

		// The consumed token cannot be reused, so hand the user a fresh
		// challenge before the next attempt.
		if _, openErr := s.gate.OpenChallenge(sessionID, s.callbacksFor(sessionID)); openErr != nil {
			s.logger.Warn("could not reopen challenge after failed attempt",
				zap.String("session_id", sessionID), zap.Error(openErr))
		}
		s.logger.Warn("registration attempt failed",
			zap.String("session_id", sessionID),
			zap.Int("course_id", courseID),
			zap.Error(err))
		return nil, err
	}

	sess.state = models.WorkflowStateSucceeded
	sess.token = ""
	s.mu.Unlock()

	s.gate.CloseChallenge(sessionID)
	s.logger.Info("registration attempt succeeded",
		zap.String("session_id", sessionID),
		zap.Int("course_id", courseID))
	return s.viewOf(sessionID)
}

// Close tears down the session and its challenge. Closing is valid in any
// state; transient verification state never outlives the session.
func (s *WorkflowService) Close(sessionID string) error {
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	if !ok {
		return appErrors.ErrSessionNotFound
	}

	s.gate.CloseChallenge(sessionID)
	s.logger.Debug("workflow session closed", zap.String("session_id", sessionID))
	return nil
}

func (s *WorkflowService) callbacksFor(sessionID string) ChallengeCallbacks {
	return ChallengeCallbacks{
		OnVerified: func(token string) { s.handleVerified(sessionID, token) },
		OnError:    func() { s.handleChallengeFailure(sessionID) },
		OnExpired:  func() { s.handleChallengeFailure(sessionID) },
	}
}

func (s *WorkflowService) handleVerified(sessionID, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	switch sess.state {
	case models.WorkflowStateAwaitingVerification, models.WorkflowStateReady, models.WorkflowStateFailed:
		sess.token = token
		sess.state = models.WorkflowStateReady
	}
}

func (s *WorkflowService) handleChallengeFailure(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	sess.token = ""
	if sess.state == models.WorkflowStateReady {
		sess.state = models.WorkflowStateAwaitingVerification
	}
}

func (s *WorkflowService) viewOf(sessionID string) (*dto.WorkflowSessionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, appErrors.ErrSessionNotFound
	}
	return s.viewLocked(sess), nil
}

func (s *WorkflowService) viewLocked(sess *workflowSession) *dto.WorkflowSessionResponse {
	mode := s.gate.Mode()
	view := &dto.WorkflowSessionResponse{
		SessionID:        sess.id,
		CourseID:         sess.courseID,
		State:            string(sess.state),
		TokenHeld:        sess.token != "",
		VerificationMode: string(mode),
	}
	if mode == models.VerificationModeTurnstile {
		view.SiteKey = s.gate.SiteKey()
	}
	if sess.failure != nil {
		view.Failure = &dto.WorkflowFailure{Code: sess.failure.Code, Message: sess.failure.Message}
	}
	return view
}
