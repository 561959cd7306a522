package users

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"

	"github.com/trainhub/trainhub/internal/shared"
)

// MsgPasswordTooLong is returned for passwords bcrypt cannot hash.
const MsgPasswordTooLong = "password: Ensure this field has no more than 72 bytes."

// HashPassword derives the stored bcrypt hash for a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", shared.Validation(MsgPasswordTooLong)
		}
		return "", fmt.Errorf("users: hash password: %w", err)
	}
	return string(hash), nil
}

// NormalizeUsername applies NFKC so visually identical usernames collide.
func NormalizeUsername(username string) string {
	return norm.NFKC.String(username)
}
