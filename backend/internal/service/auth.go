package service

import (
	"context"
	"net/http"
	"strings"

	"github.com/Mecho90/BuildingManagement/shared/domain"
	"github.com/Mecho90/BuildingManagement/shared/errors"
	"github.com/Mecho90/BuildingManagement/shared/logger"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	CreateUser(ctx context.Context, user domain.User, password string) (int64, error)
}

type Auth struct {
	storage AuthStorage
	jwt     Jwt
}

type AuthStorage interface {
	SaveUser(ctx context.Context, user domain.User) (int64, error)
	UserByEmail(ctx context.Context, email string) (domain.User, error)
}

type Jwt interface {
	NewToken(user domain.User) (string, error)
}

func NewAuth(storage AuthStorage, jwt Jwt) *Auth {
	return &Auth{storage: storage, jwt: jwt}
}

// Login verifies the credentials and returns an access token. Unknown
// emails and wrong passwords answer identically so accounts cannot be
// enumerated.
func (a *Auth) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(email)

	user, err := a.storage.UserByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return "", &errors.ErrorWithStatusCode{Message: "Invalid credentials", StatusCode: http.StatusUnauthorized}
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(password)); err != nil {
		logger.Log.Debug("password verification failed", "email", email)
		return "", &errors.ErrorWithStatusCode{Message: "Invalid credentials", StatusCode: http.StatusUnauthorized}
	}

	token, err := a.jwt.NewToken(user)
	if err != nil {
		logger.Log.Error("failed to create jwt token", "user_id", user.Id, "error", err)
		return "", err
	}
	return token, nil
}

// CreateUser provisions an account with a bcrypt password hash. There is no
// self-service registration; admins call this.
func (a *Auth) CreateUser(ctx context.Context, user domain.User, password string) (int64, error) {
	user.Email = strings.ToLower(user.Email)

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return 0, err
	}
	user.PassHash = string(passHash)

	return a.storage.SaveUser(ctx, user)
}
