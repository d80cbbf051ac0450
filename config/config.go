package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	authconstant "github.com/Cryptovee252/my-best-life-platform-sub001/pkg/constant"
)

// Config is the full configuration surface of the auth core. Values come
// from the environment, with config/.env.dev or config/.env.prod (chosen
// by ENV) as a fallback layer; explicit environment variables win.
type Config struct {
	Env  string
	Port string

	DBURL     string
	RedisAddr string

	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessExpiryMin    int
	RefreshExpiryMin   int

	MinPasswordLength int
	RequireUppercase  bool
	RequireLowercase  bool
	RequireNumbers    bool
	RequireSymbols    bool
	BcryptCost        int

	MaxLoginAttempts       int
	LockoutDurationMinutes int

	RateLimitWindowMs    int
	RateLimitMaxRequests int

	AuditLoggingEnabled bool
	LogFilePath         string
	LogMaxSizeMB        int
	LogRetentionDays    int

	AlertWindowMinutes       int
	AlertFailedLoginsPerHour int
	AlertRateLimitPerHour    int
	AlertLockoutsPerHour     int
	AlertWebhookURL          string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	AppBaseURL   string
}

// Load reads configuration and terminates the process when a required key
// (database URL, token signing secrets) is missing. Secrets are never
// defaulted: a process without them must not come up.
func Load() *Config {
	env := getEnv("ENV", "development")

	envFile := "config/.env.dev"
	if env == "production" {
		envFile = "config/.env.prod"
	}
	// Missing file is fine; everything can come from the environment.
	_ = godotenv.Load(envFile)

	return &Config{
		Env:  env,
		Port: getEnv("PORT", authconstant.DefaultPort),

		DBURL:     mustGetEnv("DB_URL"),
		RedisAddr: getEnv("REDIS_ADDR", authconstant.DefaultRedisAddr),

		AccessTokenSecret:  mustGetEnv("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: mustGetEnv("REFRESH_TOKEN_SECRET"),
		AccessExpiryMin:    getEnvAsInt("ACCESS_TOKEN_EXPIRY", authconstant.DefaultAccessTokenExpiryMin),
		RefreshExpiryMin:   getEnvAsInt("REFRESH_TOKEN_EXPIRY", authconstant.DefaultRefreshTokenExpiryMin),

		MinPasswordLength: getEnvAsInt("MIN_PASSWORD_LENGTH", authconstant.DefaultMinPasswordLength),
		RequireUppercase:  getEnvAsBool("REQUIRE_UPPERCASE", true),
		RequireLowercase:  getEnvAsBool("REQUIRE_LOWERCASE", true),
		RequireNumbers:    getEnvAsBool("REQUIRE_NUMBERS", true),
		RequireSymbols:    getEnvAsBool("REQUIRE_SYMBOLS", true),
		BcryptCost:        getEnvAsInt("BCRYPT_COST", authconstant.DefaultBcryptCost),

		MaxLoginAttempts:       getEnvAsInt("MAX_LOGIN_ATTEMPTS", authconstant.DefaultMaxLoginAttempts),
		LockoutDurationMinutes: getEnvAsInt("LOCKOUT_DURATION_MINUTES", authconstant.DefaultLockoutDurationMinutes),

		RateLimitWindowMs:    getEnvAsInt("RATE_LIMIT_WINDOW_MS", authconstant.DefaultRateLimitWindowMs),
		RateLimitMaxRequests: getEnvAsInt("RATE_LIMIT_MAX_REQUESTS", authconstant.DefaultRateLimitMaxRequests),

		AuditLoggingEnabled: getEnvAsBool("ENABLE_AUDIT_LOGGING", false),
		LogFilePath:         getEnv("LOG_FILE_PATH", authconstant.DefaultLogFilePath),
		LogMaxSizeMB:        getEnvAsInt("LOG_MAX_SIZE_MB", authconstant.DefaultLogMaxSizeMB),
		LogRetentionDays:    getEnvAsInt("SECURITY_LOG_RETENTION_DAYS", authconstant.DefaultLogRetentionDays),

		AlertWindowMinutes:       getEnvAsInt("ALERT_WINDOW_MINUTES", authconstant.DefaultAlertWindowMinutes),
		AlertFailedLoginsPerHour: getEnvAsInt("ALERT_FAILED_LOGINS_PER_HOUR", authconstant.DefaultAlertFailedLoginsPerHour),
		AlertRateLimitPerHour:    getEnvAsInt("ALERT_RATE_LIMIT_PER_HOUR", authconstant.DefaultAlertRateLimitPerHour),
		AlertLockoutsPerHour:     getEnvAsInt("ALERT_LOCKOUTS_PER_HOUR", authconstant.DefaultAlertLockoutsPerHour),
		AlertWebhookURL:          getEnv("ALERT_WEBHOOK_URL", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@mybestlife.app"),
		AppBaseURL:   getEnv("APP_BASE_URL", "http://localhost:"+getEnv("PORT", authconstant.DefaultPort)),
	}
}

func getEnv(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func mustGetEnv(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	log.Fatalf("Missing required config: %s", key)
	return ""
}

func getEnvAsInt(key string, fallback int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return fallback
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %d", key, fallback)
		return fallback
	}
	return val
}

func getEnvAsBool(key string, fallback bool) bool {
	valStr := os.Getenv(key)
	if valStr == "" {
		return fallback
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %t", key, fallback)
		return fallback
	}
	return val
}
