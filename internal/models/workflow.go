package models

// WorkflowState enumerates the externally visible states of one
// registration session.
type WorkflowState string

// State transitions are owned by the workflow service; handlers and the
// render layer only ever read these values.
const (
	WorkflowStateIdle                 WorkflowState = "IDLE"
	WorkflowStateAwaitingVerification WorkflowState = "AWAITING_VERIFICATION"
	WorkflowStateReady                WorkflowState = "READY"
	WorkflowStateSubmitting           WorkflowState = "SUBMITTING"
	WorkflowStateSucceeded            WorkflowState = "SUCCEEDED"
	WorkflowStateFailed               WorkflowState = "FAILED"
)

// VerificationMode reports which challenge provider backs a session.
type VerificationMode string

const (
	VerificationModeTurnstile VerificationMode = "turnstile"
	VerificationModeMock      VerificationMode = "mock"
	VerificationModeDisabled  VerificationMode = "disabled"
)
