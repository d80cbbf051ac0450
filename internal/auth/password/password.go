// Package password implements the credential policy engine: strength
// validation against configurable rules and bcrypt hashing/verification.
package password

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Rules is the set of recognized password policy options.
type Rules struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireNumbers   bool
	RequireSymbols   bool
}

const symbolSet = `!@#$%^&*(),.?":{}|<>`

// Validate returns one message per violated rule. An empty slice means the
// password satisfies every enabled rule.
func Validate(pw string, r Rules) []string {
	var violations []string

	if len(pw) < r.MinLength {
		violations = append(violations, fmt.Sprintf("Password must be at least %d characters long", r.MinLength))
	}

	var hasUpper, hasLower, hasNumber, hasSymbol bool
	for _, c := range pw {
		switch {
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsDigit(c):
			hasNumber = true
		}
		if strings.ContainsRune(symbolSet, c) {
			hasSymbol = true
		}
	}

	if r.RequireUppercase && !hasUpper {
		violations = append(violations, "Password must contain at least one uppercase letter")
	}
	if r.RequireLowercase && !hasLower {
		violations = append(violations, "Password must contain at least one lowercase letter")
	}
	if r.RequireNumbers && !hasNumber {
		violations = append(violations, "Password must contain at least one number")
	}
	if r.RequireSymbols && !hasSymbol {
		violations = append(violations, "Password must contain at least one special character")
	}

	return violations
}

// Hasher wraps bcrypt with a configurable cost factor. bcrypt salts each
// hash itself and compares in constant time.
type Hasher struct {
	Cost int
}

func NewHasher(cost int) Hasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return Hasher{Cost: cost}
}

func (h Hasher) Hash(pw string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(pw), h.Cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

func (h Hasher) Verify(pw, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(pw)) == nil
}
