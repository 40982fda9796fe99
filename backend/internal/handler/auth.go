package handler

import (
	"net/http"

	"github.com/Mecho90/BuildingManagement/shared/api"
	"github.com/Mecho90/BuildingManagement/shared/domain"
	mw "github.com/Mecho90/BuildingManagement/shared/middleware"
	"github.com/Mecho90/BuildingManagement/shared/utils"
)

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body api.LoginRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	token, err := h.auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     mw.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.JwtTTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	utils.WriteJSON(w, http.StatusOK, api.LoginResponse{Message: "Logged in", AccessToken: token})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     mw.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	utils.WriteJSON(w, http.StatusOK, api.LogoutResponse{Message: "Logged out"})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		utils.WriteErrorAndStatusCode(w, errNotAuthorized)
		return
	}
	utils.WriteJSON(w, http.StatusOK, userResponse(*user))
}

// CreateUser provisions an account. Admin only; there is no self-service
// registration.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var body api.CreateUserRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	user := domain.User{
		Email:     body.Email,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Admin:     body.Admin,
	}
	id, err := h.auth.CreateUser(r.Context(), user, body.Password)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	user.Id = id
	utils.WriteJSON(w, http.StatusCreated, userResponse(user))
}

func userResponse(u domain.User) api.UserResponse {
	return api.UserResponse{
		Id:        u.Id,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Admin:     u.Admin,
	}
}
