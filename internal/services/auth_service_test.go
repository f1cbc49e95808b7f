package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/dana-ai-api/internal/models"
	"github.com/yukikurage/dana-ai-api/internal/repository"
	"github.com/yukikurage/dana-ai-api/internal/tenancy"
	"github.com/yukikurage/dana-ai-api/internal/utils"
	"gorm.io/gorm"
)

func TestAuthService_SignupWithOrganization(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repository.NewUserRepository(db), "secret", time.Hour)

	user, err := svc.Signup(bg, SignupInput{
		Username:         "alice",
		Email:            "alice@example.com",
		Password:         "password123",
		OrganizationName: "Acme",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "password123", user.PasswordHash)

	var member models.OrganizationMember
	require.NoError(t, db.Preload("Organization").Where("user_id = ?", user.ID).First(&member).Error)
	assert.Equal(t, tenancy.RoleOwner, member.Role)
	assert.True(t, member.IsAccepted())
	assert.Equal(t, "Acme", member.Organization.Name)
	assert.Equal(t, user.ID, member.Organization.OwnerID)
}

func TestAuthService_SignupValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repository.NewUserRepository(db), "secret", time.Hour)

	_, err := svc.Signup(bg, SignupInput{Username: "bob", Password: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = svc.Signup(bg, SignupInput{Username: "  ", Password: "password123"})
	assert.ErrorIs(t, err, ErrUsernameRequired)

	_, err = svc.Signup(bg, SignupInput{Username: "bob", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Signup(bg, SignupInput{Username: "bob", Password: "password123"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

// staleUserRepository answers every username lookup with "not found", as a
// concurrent signup that has not committed yet would.
type staleUserRepository struct {
	repository.UserRepository
}

func (staleUserRepository) FindByUsername(context.Context, string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func TestAuthService_SignupConcurrentUsernameIsConflict(t *testing.T) {
	db := newTestDB(t)
	newTestUser(t, db, "dave")
	svc := NewAuthService(staleUserRepository{repository.NewUserRepository(db)}, "secret", time.Hour)

	_, err := svc.Signup(bg, SignupInput{Username: "dave", Password: "password123"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.Signup(bg, SignupInput{Username: "dave", Password: "password123", OrganizationName: "Acme"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	var orgs int64
	require.NoError(t, db.Model(&models.Organization{}).Count(&orgs).Error)
	assert.Zero(t, orgs)
}

func TestAuthService_LoginAndToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repository.NewUserRepository(db), "secret", time.Hour)

	created, err := svc.Signup(bg, SignupInput{Username: "carol", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Login(bg, LoginInput{Username: "carol", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(bg, LoginInput{Username: "nobody", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	user, err := svc.Login(bg, LoginInput{Username: "carol", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	token, err := svc.IssueToken(user)
	require.NoError(t, err)
	userID, err := utils.ParseToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestAuthService_GetUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repository.NewUserRepository(db), "secret", time.Hour)

	user := newTestUser(t, db, "dave")
	found, err := svc.GetUser(bg, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "dave", found.Username)

	_, err = svc.GetUser(bg, user.ID+100)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
