package handler

import (
	"html/template"
	"io"
	"net/http"

	"github.com/Mecho90/BuildingManagement/shared/logger"
	mw "github.com/Mecho90/BuildingManagement/shared/middleware"
)

func (h *Handler) LoginGetHandler(w http.ResponseWriter, r *http.Request) {
	h.renderTemplate(w, r, "login.html", nil)
}

func (h *Handler) LoginPostHandler(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	resp, err := h.APIClient.Login(email, password)
	if err != nil {
		logger.Log.Error("during login API call", "error", err)
		h.setFlash(w, flashCookieError, "Internal error: backend unavailable.")
		h.setFlash(w, emailPrefillCookie, email)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		h.setFlash(w, flashCookieError, template.HTMLEscapeString(string(bodyBytes)))
		h.setFlash(w, emailPrefillCookie, email)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	// Success: Forward cookies from the backend response to the user's browser
	for _, cookie := range resp.Cookies() {
		http.SetCookie(w, cookie)
	}

	http.Redirect(w, r, safeNext(r.FormValue("next"), "/"), http.StatusSeeOther)
}

func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	// Best effort; the cookie is cleared regardless of what the backend says.
	if err := h.APIClient.Logout(r); err != nil {
		logger.Log.Warn("during logout API call", "error", err)
	}

	cookie := &http.Cookie{
		Path:     "/",
		Name:     mw.AccessTokenCookie,
		Value:    "",
		MaxAge:   -1, // Expire immediately
		HttpOnly: true,
		Secure:   h.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, cookie)

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
