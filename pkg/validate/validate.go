// Package validate sanitizes and constrains untrusted text before it is
// accepted into the domain model or sent over the wire. Functions report
// rejections as errors and never panic on malformed input.
package validate

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var (
	ErrURLRequired      = errors.New("url is required")
	ErrURLInvalid       = errors.New("invalid url format")
	ErrSchemeNotAllowed = errors.New("only http and https urls are allowed")
	ErrHostBlocked      = errors.New("private or localhost urls are not allowed")
	ErrCategoryInvalid  = errors.New("category can only contain letters, numbers, spaces, hyphens and underscores")
	ErrUsernameTooShort = errors.New("username must be at least 3 characters long")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters long")
	ErrPasswordTooWeak  = errors.New("password must contain at least one uppercase letter, one lowercase letter and one number")
)

const (
	// MaxTextLen bounds any free-text field after sanitization.
	MaxTextLen = 1000
	// MaxDescriptionLen bounds a link description.
	MaxDescriptionLen = 500
	// MaxCategoryLen bounds a category label.
	MaxCategoryLen = 50
	// MaxUsernameLen bounds a username.
	MaxUsernameLen = 50
	// MaxTags caps the number of tags kept per link.
	MaxTags = 10
)

var (
	schemePrefix  = regexp.MustCompile(`(?i)^https?://`)
	categoryRe    = regexp.MustCompile(`^[a-zA-Z0-9\s\-_]+$`)
	angleBrackets = strings.NewReplacer("<", "", ">", "")

	// Loopback, private-network and link-local hosts. Links pointing at
	// them are rejected outright rather than stored.
	blockedHosts = []*regexp.Regexp{
		regexp.MustCompile(`^localhost$`),
		regexp.MustCompile(`^127\.`),
		regexp.MustCompile(`^192\.168\.`),
		regexp.MustCompile(`^10\.`),
		regexp.MustCompile(`^172\.(1[6-9]|2[0-9]|3[01])\.`),
		regexp.MustCompile(`^169\.254\.`),
		regexp.MustCompile(`^0\.0\.0\.0$`),
		regexp.MustCompile(`^::1$`),
		regexp.MustCompile(`^fe80:`),
	}
)

// URL trims the input, prefixes https:// when no scheme is present, parses
// it and returns the fully qualified URL. Only http and https schemes are
// accepted, and hosts on the blocked set are rejected.
func URL(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", ErrURLRequired
	}

	full := trimmed
	if !schemePrefix.MatchString(trimmed) {
		full = "https://" + trimmed
	}

	parsed, err := url.Parse(full)
	if err != nil {
		return "", ErrURLInvalid
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", ErrSchemeNotAllowed
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return "", ErrURLInvalid
	}
	for _, pattern := range blockedHosts {
		if pattern.MatchString(host) {
			return "", ErrHostBlocked
		}
	}

	return parsed.String(), nil
}

// Text returns a best-effort safe version of the input: trimmed, with
// angle brackets stripped and truncated to MaxTextLen. It never rejects;
// empty input yields an empty string.
func Text(input string) string {
	return TextMax(input, MaxTextLen)
}

// TextMax is Text with a caller-chosen length bound.
func TextMax(input string, max int) string {
	cleaned := angleBrackets.Replace(strings.TrimSpace(input))
	return Truncate(cleaned, max)
}

// Tags splits a comma-separated tag list, sanitizes each entry, drops
// empty ones, keeps at most MaxTags in original order and rejoins them
// with ", ". It never rejects.
func Tags(input string) string {
	if input == "" {
		return ""
	}

	var kept []string
	for _, raw := range strings.Split(input, ",") {
		tag := Text(raw)
		if tag == "" {
			continue
		}
		kept = append(kept, tag)
		if len(kept) == MaxTags {
			break
		}
	}

	return strings.Join(kept, ", ")
}

// Category sanitizes and validates a category label. Empty input is valid
// and maps to the absent category.
func Category(input string) (string, error) {
	sanitized := TextMax(input, MaxCategoryLen)
	if sanitized == "" {
		return "", nil
	}
	if !categoryRe.MatchString(sanitized) {
		return "", ErrCategoryInvalid
	}
	return sanitized, nil
}

// Credentials sanitizes the username and checks the minimum constraints
// shared by login and registration. It returns the sanitized username.
// The password is length-checked only, never altered.
func Credentials(username, password string) (string, error) {
	sanitized := TextMax(username, MaxUsernameLen)
	if len(sanitized) < 3 {
		return "", ErrUsernameTooShort
	}
	if len(password) < 6 {
		return "", ErrPasswordTooShort
	}
	return sanitized, nil
}

// RegistrationCredentials applies the Credentials checks plus the password
// strength rule required for new accounts.
func RegistrationCredentials(username, password string) (string, error) {
	sanitized, err := Credentials(username, password)
	if err != nil {
		return "", err
	}

	var hasLower, hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasLower || !hasUpper || !hasDigit {
		return "", ErrPasswordTooWeak
	}

	return sanitized, nil
}

// Truncate cuts s to at most max runes without splitting a multi-byte
// character.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
