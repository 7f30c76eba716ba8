package services

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"

	"github.com/anjaswicak/test-fullstack/internal/apperr"
	"github.com/anjaswicak/test-fullstack/internal/models"
	"github.com/anjaswicak/test-fullstack/internal/textutil"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 64
)

var errUsernameLength = apperr.Validation(
	fmt.Sprintf("username must be between %d and %d characters", minUsernameLength, maxUsernameLength))

// canonicalUsername is the stored form of a username. Every lookup and write
// goes through it.
func canonicalUsername(raw string) string {
	return norm.NFC.String(strings.TrimSpace(raw))
}

func normalizeUsername(raw string) (string, error) {
	name := canonicalUsername(raw)
	if n := textutil.Length(name); n < minUsernameLength || n > maxUsernameLength {
		return "", errUsernameLength
	}
	return name, nil
}

func hashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrPasswordRequired
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

// normalizeContent returns post content ready for storage, or a validation
// error when it is blank or longer than a post may be.
func normalizeContent(raw string) (string, error) {
	content := textutil.NormalizeContent(raw)
	if content == "" {
		return "", ErrContentRequired
	}
	if textutil.Length(content) > models.MaxPostLength {
		return "", ErrContentTooLong
	}
	return content, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
