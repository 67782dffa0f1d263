package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/app"
	"github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/domain"
)

func newAuth() (*app.AuthService, *fakeUsers, *fakeSessions) {
	users, sessions := &fakeUsers{}, &fakeSessions{}
	return app.NewAuthService(users, sessions, time.Hour).WithHashCost(bcrypt.MinCost), users, sessions
}

func TestRegister_SignsInAndHashes(t *testing.T) {
	auth, users, sessions := newAuth()
	ctx := context.Background()

	s, err := auth.Register(ctx, domain.RegisterInput{UserName: " ann ", Password: "secret1", FirstName: "Ann", LastName: "Lee"})
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)
	assert.Equal(t, "ann", s.UserName)
	assert.Equal(t, "Ann Lee", s.DisplayName())
	assert.Equal(t, time.Hour, sessions.ttls[s.Token])

	u := users.users["ann"]
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")))

	_, err = auth.Register(ctx, domain.RegisterInput{UserName: "ann", Password: "another"})
	assert.ErrorIs(t, err, domain.ErrAlreadyRegistered)
}

func TestRegister_Validation(t *testing.T) {
	auth, _, _ := newAuth()
	_, err := auth.Register(context.Background(), domain.RegisterInput{UserName: "bob", Password: "123", Email: "nope"})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, map[string]string{"password": "min", "email": "email"}, ve.Fields)
}

func TestLogin(t *testing.T) {
	auth, _, _ := newAuth()
	ctx := context.Background()
	_, err := auth.Register(ctx, domain.RegisterInput{UserName: "ann", Password: "secret1"})
	require.NoError(t, err)

	s, err := auth.Login(ctx, domain.LoginInput{UserName: "ann", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "ann", s.DisplayName())

	_, err = auth.Login(ctx, domain.LoginInput{UserName: "ann", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = auth.Login(ctx, domain.LoginInput{UserName: "ghost", Password: "secret1"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticateAndLogout(t *testing.T) {
	auth, _, _ := newAuth()
	ctx := context.Background()
	s, err := auth.Register(ctx, domain.RegisterInput{UserName: "ann", Password: "secret1"})
	require.NoError(t, err)

	got, err := auth.Authenticate(ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.Token, got.Token)
	assert.Equal(t, s.UserID, got.UserID)

	require.NoError(t, auth.Logout(ctx, s.Token))
	_, err = auth.Authenticate(ctx, s.Token)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)

	_, err = auth.Authenticate(ctx, "")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	assert.NoError(t, auth.Logout(ctx, ""))
	assert.NoError(t, auth.Logout(ctx, "unknown"))
}
