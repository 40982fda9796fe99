package csrf

import (
	"crypto/rand"
	"encoding/base64"
)

const TokenLength = 32 // bytes

// Double-submit names. The cookie is intentionally readable by page scripts:
// AJAX callers copy its value into the header, form posts into the hidden
// field.
const (
	CookieName = "csrftoken"
	HeaderName = "X-CSRFToken"
	FormField  = "csrfmiddlewaretoken"
)

// GenerateToken creates a cryptographically secure random token
func GenerateToken() (string, error) {
	bytes := make([]byte, TokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

// ValidateToken compares the cookie token with the submitted token
func ValidateToken(cookieToken, submittedToken string) bool {
	if cookieToken == "" || submittedToken == "" {
		return false
	}
	return cookieToken == submittedToken
}
