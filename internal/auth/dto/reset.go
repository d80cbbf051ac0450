package dto

type VerifyEmailInput struct {
	Token string `json:"token"`
}

type ForgotPasswordInput struct {
	Email     string `json:"email"`
	IPAddress string `json:"-"`
}

type ResetPasswordInput struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
	IPAddress   string `json:"-"`
}
