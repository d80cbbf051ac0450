package constant

// Defaults applied by config.Load when a value is absent from both the
// environment and the env file.
const (
	DefaultPort                  = "8080"
	DefaultAccessTokenExpiryMin  = 60
	DefaultRefreshTokenExpiryMin = 10080 // 7 days

	DefaultMinPasswordLength = 8
	DefaultBcryptCost        = 10

	DefaultMaxLoginAttempts       = 5
	DefaultLockoutDurationMinutes = 15

	DefaultRateLimitWindowMs    = 900000 // 15 minutes
	DefaultRateLimitMaxRequests = 5

	DefaultLogFilePath      = "logs/security.log"
	DefaultLogMaxSizeMB     = 10
	DefaultLogRetentionDays = 30

	DefaultAlertWindowMinutes       = 60
	DefaultAlertFailedLoginsPerHour = 50
	DefaultAlertRateLimitPerHour    = 100
	DefaultAlertLockoutsPerHour     = 10

	DefaultRedisAddr = "localhost:6379"
)

// Token lifetimes for the single-use tokens delivered over email.
const (
	VerificationTokenTTLHours = 24
	ResetTokenTTLHours        = 1
)

// Token kinds carried in the token_type claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Rate-limited actions. The limiter key is action + ":" + client IP.
const (
	ActionLogin         = "login"
	ActionRegister      = "register"
	ActionRefresh       = "refresh"
	ActionLogout        = "logout"
	ActionPasswordReset = "password_reset"
)
