// Package validation checks account credentials before they reach the
// database.
package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MaxUsernameLength = 150
	MaxEmailLength    = 254
)

var (
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	ErrPasswordTooLong    = fmt.Errorf("password must not exceed %d characters", MaxPasswordLength)
	ErrPasswordNumeric    = errors.New("password can't be entirely numeric")
	ErrPasswordCommon     = errors.New("password is too common")
	ErrPasswordSimilar    = errors.New("password is too similar to the username")
	ErrUsernameRequired   = errors.New("username is required")
	ErrUsernameTooLong    = fmt.Errorf("username must not exceed %d characters", MaxUsernameLength)
	ErrUsernameCharacters = errors.New("username may contain only letters, numbers, and @/./+/-/_ characters")
	ErrEmailInvalid       = errors.New("invalid email format")
	ErrEmailTooLong       = fmt.Errorf("email must not exceed %d characters", MaxEmailLength)
)

var commonPasswords = []string{
	"password", "password1", "qwertyuiop", "12345678", "123456789",
	"iloveyou", "sunshine", "princess", "football", "baseball",
	"welcome1", "letmein1", "blogicum",
}

// ValidatePassword applies the signup password policy. username may be empty.
func ValidatePassword(password, username string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if n > MaxPasswordLength {
		return ErrPasswordTooLong
	}

	numeric := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			numeric = false
			break
		}
	}
	if numeric {
		return ErrPasswordNumeric
	}

	lower := strings.ToLower(password)
	if slices.Contains(commonPasswords, lower) {
		return ErrPasswordCommon
	}
	if username != "" && strings.Contains(lower, strings.ToLower(username)) {
		return ErrPasswordSimilar
	}
	return nil
}

// ValidateUsername checks the characters and length allowed in a username.
func ValidateUsername(username string) error {
	if username == "" {
		return ErrUsernameRequired
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return ErrUsernameTooLong
	}
	if !usernamePattern.MatchString(username) {
		return ErrUsernameCharacters
	}
	return nil
}

// ValidateEmail accepts a bare address. An empty email is allowed.
func ValidateEmail(email string) error {
	if email == "" {
		return nil
	}
	if len(email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return ErrEmailInvalid
	}
	return nil
}
