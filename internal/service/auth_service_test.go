package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"uny-compass-be/internal/dto"
	"uny-compass-be/internal/pkg/apperror"
	"uny-compass-be/internal/pkg/logger"
	"uny-compass-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	svc    IAuthService
	tokens ITokenService
	email  *fakeEmail
	events *fakeEventPublisher
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	_, factory := newTestDB(t)
	f := &authFixture{
		tokens: NewTokenService("test-secret", time.Hour),
		email:  &fakeEmail{},
		events: &fakeEventPublisher{},
	}
	f.svc = NewAuthService(factory, f.tokens, f.email, f.events, logger.NewNopLogger(), time.Hour)
	return f
}

func (f *authFixture) register(t *testing.T, username, email, password string) *dto.AuthResponse {
	t.Helper()
	res, err := f.svc.Register(context.Background(), &dto.RegisterRequest{Username: username, Email: email, Password: password})
	require.NoError(t, err)
	return res
}

func TestRegister(t *testing.T) {
	f := newAuthFixture(t)

	res := f.register(t, "ada", "ada@hunter.cuny.edu", "secret1")

	assert.NotZero(t, res.User.Id)
	assert.Equal(t, "ada", res.User.Username)
	assert.Equal(t, "ada@hunter.cuny.edu", res.User.Email)

	claims, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.Id, claims.UserId)
	assert.Equal(t, "ada", claims.Username)

	assert.Eventually(t, func() bool {
		types := f.events.types()
		return len(types) == 1 && types[0] == events.UserRegistered
	}, time.Second, 10*time.Millisecond)
}

func TestRegisterValidation(t *testing.T) {
	f := newAuthFixture(t)

	tests := []struct {
		name    string
		req     dto.RegisterRequest
		message string
	}{
		{"missing username", dto.RegisterRequest{Email: "a@b.co", Password: "secret1"}, "Username, email, and password are required"},
		{"blank email", dto.RegisterRequest{Username: "a", Email: "  ", Password: "secret1"}, "Username, email, and password are required"},
		{"short password", dto.RegisterRequest{Username: "a", Email: "a@b.co", Password: "12345"}, "Password must be at least 6 characters long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Register(context.Background(), &tt.req)
			appErr, ok := apperror.As(err)
			require.True(t, ok)
			assert.Equal(t, apperror.KindValidation, appErr.Kind)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "ada", "ada@hunter.cuny.edu", "secret1")

	for _, req := range []dto.RegisterRequest{
		{Username: "ada", Email: "other@hunter.cuny.edu", Password: "secret1"},
		{Username: "other", Email: "ada@hunter.cuny.edu", Password: "secret1"},
	} {
		_, err := f.svc.Register(context.Background(), &req)
		assert.True(t, apperror.Is(err, apperror.KindConflict))
		assert.Equal(t, "Username or email already exists", err.(*apperror.Error).Message)
	}
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	registered := f.register(t, "ada", "ada@hunter.cuny.edu", "secret1")

	byName, err := f.svc.Login(context.Background(), &dto.LoginRequest{Username: "ada", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.Id, byName.User.Id)

	byEmail, err := f.svc.Login(context.Background(), &dto.LoginRequest{Username: "ada@hunter.cuny.edu", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.Id, byEmail.User.Id)
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "ada", "ada@hunter.cuny.edu", "secret1")

	_, wrongPassword := f.svc.Login(context.Background(), &dto.LoginRequest{Username: "ada", Password: "nope123"})
	_, unknownUser := f.svc.Login(context.Background(), &dto.LoginRequest{Username: "grace", Password: "secret1"})

	for _, err := range []error{wrongPassword, unknownUser} {
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, apperror.KindAuth, appErr.Kind)
		assert.Equal(t, "Invalid credentials", appErr.Message)
	}

	_, err := f.svc.Login(context.Background(), &dto.LoginRequest{Username: "ada"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestUpdateProfile(t *testing.T) {
	f := newAuthFixture(t)
	ada := f.register(t, "ada", "ada@hunter.cuny.edu", "secret1")
	f.register(t, "grace", "grace@hunter.cuny.edu", "secret1")

	_, err := f.svc.UpdateProfile(context.Background(), ada.User.Id, &dto.UpdateProfileRequest{Email: "grace@hunter.cuny.edu"})
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	// keeping your own email is not a conflict
	res, err := f.svc.UpdateProfile(context.Background(), ada.User.Id, &dto.UpdateProfileRequest{Email: "ada@hunter.cuny.edu"})
	require.NoError(t, err)
	assert.Equal(t, "ada@hunter.cuny.edu", res.User.Email)

	res, err = f.svc.UpdateProfile(context.Background(), ada.User.Id, &dto.UpdateProfileRequest{Email: "lovelace@hunter.cuny.edu"})
	require.NoError(t, err)
	assert.Equal(t, "lovelace@hunter.cuny.edu", res.User.Email)

	profile, err := f.svc.GetProfile(context.Background(), ada.User.Id)
	require.NoError(t, err)
	assert.Equal(t, "lovelace@hunter.cuny.edu", profile.User.Email)

	_, err = f.svc.GetProfile(context.Background(), 9999)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestUpdatePassword(t *testing.T) {
	f := newAuthFixture(t)
	ada := f.register(t, "ada", "ada@hunter.cuny.edu", "secret1")
	ctx := context.Background()

	err := f.svc.UpdatePassword(ctx, ada.User.Id, &dto.UpdatePasswordRequest{CurrentPassword: "wrong1", NewPassword: "secret2"})
	assert.True(t, apperror.Is(err, apperror.KindAuth))

	err = f.svc.UpdatePassword(ctx, ada.User.Id, &dto.UpdatePasswordRequest{CurrentPassword: "secret1", NewPassword: "123"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	require.NoError(t, f.svc.UpdatePassword(ctx, ada.User.Id, &dto.UpdatePasswordRequest{CurrentPassword: "secret1", NewPassword: "secret2"}))

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Username: "ada", Password: "secret2"})
	assert.NoError(t, err)
}

func TestPasswordResetFlow(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "ada", "ada@hunter.cuny.edu", "secret1")
	ctx := context.Background()

	require.NoError(t, f.svc.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "ada@hunter.cuny.edu"}))
	// unknown addresses are not revealed
	require.NoError(t, f.svc.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "nobody@hunter.cuny.edu"}))

	var token string
	require.Eventually(t, func() bool {
		token = f.email.tokenFor("ada@hunter.cuny.edu")
		return token != ""
	}, time.Second, 10*time.Millisecond)
	assert.Empty(t, f.email.tokenFor("nobody@hunter.cuny.edu"))

	require.NoError(t, f.svc.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: token, NewPassword: "secret2"}))

	_, err := f.svc.Login(ctx, &dto.LoginRequest{Username: "ada", Password: "secret2"})
	assert.NoError(t, err)

	err = f.svc.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: token, NewPassword: "secret3"})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid or expired reset token", appErr.Message)

	err = f.svc.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: "does-not-exist", NewPassword: "secret3"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestConcurrentResetsConsumeTokenOnce(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "ada", "ada@hunter.cuny.edu", "secret1")
	ctx := context.Background()

	require.NoError(t, f.svc.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "ada@hunter.cuny.edu"}))
	var token string
	require.Eventually(t, func() bool {
		token = f.email.tokenFor("ada@hunter.cuny.edu")
		return token != ""
	}, time.Second, 10*time.Millisecond)

	passwords := []string{"secret2", "secret3"}
	errs := make([]error, len(passwords))
	var wg sync.WaitGroup
	for i, pw := range passwords {
		wg.Add(1)
		go func(i int, pw string) {
			defer wg.Done()
			errs[i] = f.svc.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: token, NewPassword: pw})
		}(i, pw)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperror.Is(err, apperror.KindValidation))
	}
	assert.Equal(t, 1, succeeded)
}

func TestExpiredResetToken(t *testing.T) {
	_, factory := newTestDB(t)
	email := &fakeEmail{}
	svc := NewAuthService(factory, NewTokenService("test-secret", time.Hour), email, nil, logger.NewNopLogger(), time.Nanosecond)
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterRequest{Username: "ada", Email: "ada@hunter.cuny.edu", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, svc.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "ada@hunter.cuny.edu"}))

	var token string
	require.Eventually(t, func() bool {
		token = email.tokenFor("ada@hunter.cuny.edu")
		return token != ""
	}, time.Second, 10*time.Millisecond)

	err = svc.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: token, NewPassword: "secret2"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestLogoutPublishesEvent(t *testing.T) {
	f := newAuthFixture(t)

	require.NoError(t, f.svc.Logout(context.Background(), 42))

	assert.Eventually(t, func() bool {
		types := f.events.types()
		return len(types) == 1 && types[0] == events.UserLogout
	}, time.Second, 10*time.Millisecond)
}
