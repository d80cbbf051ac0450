package seclog

// Severity buckets for security events.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

// Event types emitted by the auth core.
const (
	EventAccountCompromised = "ACCOUNT_COMPROMISED"
	EventUnauthorizedAccess = "UNAUTHORIZED_ACCESS"
	EventMaliciousActivity  = "MALICIOUS_ACTIVITY"

	EventRateLimitExceeded   = "RATE_LIMIT_EXCEEDED"
	EventAccountLocked       = "ACCOUNT_LOCKED"
	EventSuspiciousLogin     = "SUSPICIOUS_LOGIN"
	EventMultipleFailedLogin = "MULTIPLE_FAILED_LOGINS"

	EventAuthFailure             = "AUTH_FAILURE"
	EventInvalidToken            = "INVALID_TOKEN"
	EventPasswordResetRequested  = "PASSWORD_RESET_REQUESTED"
	EventEmailVerificationFailed = "EMAIL_VERIFICATION_FAILED"

	EventLoginSuccess         = "LOGIN_SUCCESS"
	EventLogout               = "LOGOUT"
	EventEmailVerified        = "EMAIL_VERIFIED"
	EventPasswordResetSuccess = "PASSWORD_RESET_SUCCESS"
	EventRegistrationSuccess  = "REGISTRATION_SUCCESS"

	EventSecurityAlert = "SECURITY_ALERT"
)

var severityByType = map[string]Severity{
	EventAccountCompromised: SeverityCritical,
	EventUnauthorizedAccess: SeverityCritical,
	EventMaliciousActivity:  SeverityCritical,

	EventRateLimitExceeded:   SeverityHigh,
	EventAccountLocked:       SeverityHigh,
	EventSuspiciousLogin:     SeverityHigh,
	EventMultipleFailedLogin: SeverityHigh,
	EventSecurityAlert:       SeverityHigh,

	EventAuthFailure:             SeverityMedium,
	EventInvalidToken:            SeverityMedium,
	EventPasswordResetRequested:  SeverityMedium,
	EventEmailVerificationFailed: SeverityMedium,

	EventLoginSuccess:         SeverityLow,
	EventLogout:               SeverityLow,
	EventEmailVerified:        SeverityLow,
	EventPasswordResetSuccess: SeverityLow,
	EventRegistrationSuccess:  SeverityLow,
}

// SeverityOf resolves severity from the static table. Unrecognized event
// types default to INFO.
func SeverityOf(eventType string) Severity {
	if s, ok := severityByType[eventType]; ok {
		return s
	}
	return SeverityInfo
}
