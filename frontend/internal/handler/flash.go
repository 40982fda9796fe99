package handler

import (
	"encoding/base64"
	"net/http"
)

// Flash cookies carry one-shot messages across a redirect. Values are base64
// encoded so punctuation and markup survive cookie transport; consuming a
// flash expires the cookie immediately.
const (
	flashCookieError   = "flash_error"
	flashCookieSuccess = "flash_success"
	emailPrefillCookie = "email_prefill"

	flashMaxAge = 300 // seconds; enough to survive the redirect
)

func (h *Handler) setFlash(w http.ResponseWriter, name, value string) {
	encoded := base64.StdEncoding.EncodeToString([]byte(value))
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    encoded,
		Path:     "/",
		MaxAge:   flashMaxAge,
		HttpOnly: true,
		Secure:   h.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// consumeFlash reads and clears a flash cookie. Undecodable values are
// dropped silently; a garbled flash is not worth an error page.
func (h *Handler) consumeFlash(w http.ResponseWriter, r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	decoded, err := base64.StdEncoding.DecodeString(cookie.Value)
	if err != nil {
		return ""
	}
	return string(decoded)
}

// redirectWithFlash sets one flash cookie and redirects with 303 See Other.
func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, targetURL, cookieName, message string) {
	h.setFlash(w, cookieName, message)
	http.Redirect(w, r, targetURL, http.StatusSeeOther)
}
