package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/Mecho90/BuildingManagement/shared/domain"
	internal_errors "github.com/Mecho90/BuildingManagement/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- Mocks ---

type mockAuthStorage struct {
	userByEmailFunc func(ctx context.Context, email string) (domain.User, error)

	savedUsers []domain.User
	queried    []string
}

func (m *mockAuthStorage) SaveUser(ctx context.Context, user domain.User) (int64, error) {
	m.savedUsers = append(m.savedUsers, user)
	return int64(len(m.savedUsers)), nil
}

func (m *mockAuthStorage) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	m.queried = append(m.queried, email)
	if m.userByEmailFunc != nil {
		return m.userByEmailFunc(ctx, email)
	}
	return domain.User{}, internal_errors.New("User not found", http.StatusNotFound)
}

type mockJwt struct {
	newTokenFunc func(user domain.User) (string, error)
}

func (m *mockJwt) NewToken(user domain.User) (string, error) {
	if m.newTokenFunc != nil {
		return m.newTokenFunc(user)
	}
	return "signed.jwt.token", nil
}

// --- Helpers ---

func hashedUser(t *testing.T, email, password string) domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return domain.User{Id: 42, Email: email, FirstName: "Dana", LastName: "Smith", PassHash: string(hash)}
}

// --- Tests ---

func TestLoginIssuesToken(t *testing.T) {
	user := hashedUser(t, "dana@example.com", "correct horse")
	storage := &mockAuthStorage{
		userByEmailFunc: func(ctx context.Context, email string) (domain.User, error) {
			return user, nil
		},
	}
	jwt := &mockJwt{
		newTokenFunc: func(u domain.User) (string, error) {
			assert.Equal(t, int64(42), u.Id)
			return "signed.jwt.token", nil
		},
	}
	service := NewAuth(storage, jwt)

	token, err := service.Login(context.Background(), "Dana@Example.COM", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "signed.jwt.token", token)
	assert.Equal(t, []string{"dana@example.com"}, storage.queried, "lookup uses the lowercased email")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	user := hashedUser(t, "dana@example.com", "correct horse")

	t.Run("unknown email", func(t *testing.T) {
		service := NewAuth(&mockAuthStorage{}, &mockJwt{})

		_, err := service.Login(context.Background(), "nobody@example.com", "whatever")
		requireStatusError(t, err, http.StatusUnauthorized, "Invalid credentials")
	})

	t.Run("wrong password", func(t *testing.T) {
		storage := &mockAuthStorage{
			userByEmailFunc: func(ctx context.Context, email string) (domain.User, error) {
				return user, nil
			},
		}
		service := NewAuth(storage, &mockJwt{})

		_, err := service.Login(context.Background(), "dana@example.com", "wrong horse")
		requireStatusError(t, err, http.StatusUnauthorized, "Invalid credentials")
	})
}

func TestLoginStorageErrorIsNotUnauthorized(t *testing.T) {
	storage := &mockAuthStorage{
		userByEmailFunc: func(ctx context.Context, email string) (domain.User, error) {
			return domain.User{}, errors.New("connection refused")
		},
	}
	service := NewAuth(storage, &mockJwt{})

	_, err := service.Login(context.Background(), "dana@example.com", "correct horse")
	require.Error(t, err)
	assert.NotEqual(t, http.StatusUnauthorized, internal_errors.StatusCode(err),
		"infrastructure trouble must not look like bad credentials")
}

func TestCreateUserHashesPassword(t *testing.T) {
	storage := &mockAuthStorage{}
	service := NewAuth(storage, &mockJwt{})

	id, err := service.CreateUser(context.Background(), domain.User{
		Email: "Nora@Example.com", FirstName: "Nora", LastName: "Lind",
	}, "s3cret pass")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	require.Len(t, storage.savedUsers, 1)
	saved := storage.savedUsers[0]
	assert.Equal(t, "nora@example.com", saved.Email)
	assert.NotContains(t, saved.PassHash, "s3cret", "plaintext never reaches storage")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.PassHash), []byte("s3cret pass")))
}
