package dto

// OpenSessionRequest starts a registration session for one course.
type OpenSessionRequest struct {
	CourseID int `json:"courseId" binding:"required"`
}

// RegistrationForm carries the fields the user fills in the modal.
type RegistrationForm struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// Verification event kinds delivered by the challenge widget.
const (
	VerificationEventVerified = "verified"
	VerificationEventError    = "error"
	VerificationEventExpired  = "expired"
)

// VerificationEvent relays a widget callback to the session's challenge.
type VerificationEvent struct {
	Event string `json:"event" binding:"required"`
	Token string `json:"token"`
}

// WorkflowFailure is the user-facing failure attached to a failed session.
type WorkflowFailure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WorkflowSessionResponse is the externally visible session state. The
// verification token itself never appears here.
type WorkflowSessionResponse struct {
	SessionID        string           `json:"sessionId"`
	CourseID         int              `json:"courseId"`
	State            string           `json:"state"`
	TokenHeld        bool             `json:"tokenHeld"`
	VerificationMode string           `json:"verificationMode"`
	SiteKey          string           `json:"siteKey,omitempty"`
	Failure          *WorkflowFailure `json:"failure,omitempty"`
}
