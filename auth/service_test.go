package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-charging/models"
	"fleet-charging/repositories/base"
)

type fakeUserRepo struct {
	users map[string]*models.User
	seq   uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (r *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, base.NewEntityNotFoundError("users", "id")
}

func (r *fakeUserRepo) GetByUsername(username string) (*models.User, error) {
	if u, ok := r.users[username]; ok {
		return u, nil
	}
	return nil, base.NewEntityNotFoundError("users", username)
}

func (r *fakeUserRepo) Create(user *models.User) (*models.User, error) {
	r.seq++
	user.ID = r.seq
	r.users[user.Username] = user
	return user, nil
}

func TestRegisterAndLogin(t *testing.T) {
	svc := NewService(newFakeUserRepo(), "test-secret", time.Hour)

	user, err := svc.Register("Operator", "hunter2", "")
	require.NoError(t, err)
	assert.Equal(t, "operator", user.Username)
	assert.Equal(t, RoleUser, user.Role)
	assert.NotEqual(t, "hunter2", user.PasswordHash)

	token, loggedIn, err := svc.Login("operator", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, RoleUser, claims.Role)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	svc := NewService(newFakeUserRepo(), "test-secret", time.Hour)

	_, err := svc.Register("operator", "hunter2", "")
	require.NoError(t, err)

	_, err = svc.Register("operator", "other", "")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := NewService(newFakeUserRepo(), "test-secret", time.Hour)

	_, err := svc.Register("operator", "hunter2", "")
	require.NoError(t, err)

	_, _, err = svc.Login("operator", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login("nobody", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	repo := newFakeUserRepo()
	issuer := NewService(repo, "secret-a", time.Hour)
	verifier := NewService(repo, "secret-b", time.Hour)

	_, err := issuer.Register("operator", "hunter2", RoleAdmin)
	require.NoError(t, err)
	token, _, err := issuer.Login("operator", "hunter2")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := NewService(newFakeUserRepo(), "test-secret", -time.Minute)

	_, err := svc.Register("operator", "hunter2", "")
	require.NoError(t, err)
	token, _, err := svc.Login("operator", "hunter2")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
