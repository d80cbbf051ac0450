package dto

type RegisterInput struct {
	Name      string `json:"name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone,omitempty"`
	IPAddress string `json:"-"`
}

// RegisterOutput carries the new identity plus the verification token the
// caller needs for the verification email. The token is never serialized
// into HTTP responses.
type RegisterOutput struct {
	User              UserOutput `json:"user"`
	VerificationToken string     `json:"-"`
}
