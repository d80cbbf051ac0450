package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Cryptovee252/my-best-life-platform-sub001/internal/auth/dto"
	"github.com/Cryptovee252/my-best-life-platform-sub001/internal/auth/service"
	autherror "github.com/Cryptovee252/my-best-life-platform-sub001/internal/errors"
)

// AuthHandler is the thin HTTP boundary over UserService. It parses
// input, stamps request metadata, and maps domain errors to status codes.
type AuthHandler struct {
	userService *service.UserService
}

func NewAuthHandler(userService *service.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// writeError maps the error taxonomy onto HTTP statuses: validation 400,
// authentication 401, unverified 403, conflict 409, locked 423, rate
// limit 429, everything else 500 with a generic body.
func writeError(c *fiber.Ctx, err error) error {
	var lockedErr *autherror.AccountLockedError
	if errors.As(err, &lockedErr) {
		return c.Status(fiber.StatusLocked).JSON(fiber.Map{
			"error":         "Account temporarily locked due to repeated failed logins",
			"lockout_until": lockedErr.Until,
		})
	}

	var rateErr *autherror.RateLimitError
	if errors.As(err, &rateErr) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":       "Too many requests, please try again later",
			"retry_after": int(rateErr.RetryAfter.Seconds()),
		})
	}

	var weakErr *autherror.WeakPasswordError
	if errors.As(err, &weakErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":        "Password does not meet requirements",
			"requirements": weakErr.Violations,
		})
	}

	switch {
	case errors.Is(err, autherror.ErrInvalidEmail):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, autherror.ErrEmailAlreadyInUse),
		errors.Is(err, autherror.ErrUsernameAlreadyInUse):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, autherror.ErrInvalidCredentials),
		errors.Is(err, autherror.ErrInvalidRefreshToken):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, autherror.ErrEmailNotVerified):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Please verify your email address before logging in"})
	case errors.Is(err, autherror.ErrInvalidOrExpiredToken):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input dto.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	input.IPAddress = c.IP()

	out, err := h.userService.Register(c.Context(), input)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful. Please check your email to verify your account.",
		"user":    out.User,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	input.IPAddress = c.IP()
	input.UserAgent = string(c.Request().Header.UserAgent())

	out, err := h.userService.Login(c.Context(), input)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(out)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input dto.RefreshInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	input.IPAddress = c.IP()

	tokens, err := h.userService.Refresh(c.Context(), input)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(tokens)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token := bearerToken(c)
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing bearer token"})
	}

	if err := h.userService.Logout(c.Context(), token, c.IP()); err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Logged out"})
}

func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		var input dto.VerifyEmailInput
		if err := c.BodyParser(&input); err == nil {
			token = input.Token
		}
	}
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing verification token"})
	}

	user, err := h.userService.VerifyEmail(c.Context(), token)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Email verified successfully",
		"user":    user,
	})
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var input dto.ForgotPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	input.IPAddress = c.IP()

	if err := h.userService.RequestPasswordReset(c.Context(), input); err != nil {
		// The generic success body below is only for the unknown-email
		// case; limiter and storage failures still surface.
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "If an account exists for that email, a password reset link has been sent.",
	})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var input dto.ResetPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	input.IPAddress = c.IP()

	if err := h.userService.ResetPassword(c.Context(), input); err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Password reset successfully"})
}

func bearerToken(c *fiber.Ctx) string {
	auth := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
