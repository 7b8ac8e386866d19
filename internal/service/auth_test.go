package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"storefront-client/internal/apiclient"
	"storefront-client/internal/fakeapi"
	"storefront-client/internal/models"
	"storefront-client/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginFulfilled(t *testing.T) {
	env := newEnv(t)
	env.api.SeedUser(models.User{Email: "ann@example.com", IsVerified: true}, "pw")
	a := env.app(t)
	rec := record(a)

	assert.Equal(t, state.StatusIdle, a.Auth.Tracker().Status(OpLogin))
	_, err := a.Auth.Login(context.Background(), apiclient.Credentials{Email: "ann@example.com", Password: "pw"})
	require.NoError(t, err)

	assert.Equal(t, []state.Status{state.StatusPending, state.StatusFulfilled}, rec.statuses("auth", OpLogin))
	u, ok := a.Auth.CurrentUser()
	require.True(t, ok)
	assert.True(t, u.IsVerified)
	assert.Equal(t, "ann@example.com", u.Email)
}

func TestLoginRejected(t *testing.T) {
	env := newEnv(t)
	env.api.SeedUser(models.User{Email: "ann@example.com", IsVerified: true}, "pw")
	a := env.app(t)

	_, err := a.Auth.Login(context.Background(), apiclient.Credentials{Email: "ann@example.com", Password: "wrong"})
	require.Error(t, err)

	res := a.Auth.Tracker().Resource(OpLogin)
	assert.Equal(t, state.StatusRejected, res.Status)
	var apiErr *apiclient.APIError
	require.True(t, errors.As(res.Err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	_, ok := a.Auth.CurrentUser()
	assert.False(t, ok)
}

func TestLoginPendingUntilResponse(t *testing.T) {
	env := newEnv(t)
	env.api.SeedUser(models.User{Email: "ann@example.com"}, "pw")
	a := env.app(t)
	gate := env.api.Hold("POST /auth/login")

	done := make(chan error, 1)
	go func() {
		_, err := a.Auth.Login(context.Background(), apiclient.Credentials{Email: "ann@example.com", Password: "pw"})
		done <- err
	}()

	waitEntered(t, gate)
	assert.Equal(t, state.StatusPending, a.Auth.Tracker().Status(OpLogin))
	assert.NoError(t, a.Auth.Tracker().Err(OpLogin))

	gate.Release()
	require.NoError(t, <-done)
	assert.Equal(t, state.StatusFulfilled, a.Auth.Tracker().Status(OpLogin))
}

func TestLoginValidationSendsNothing(t *testing.T) {
	env := newEnv(t)
	a := env.app(t)

	_, err := a.Auth.Login(context.Background(), apiclient.Credentials{Password: "pw"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, state.StatusIdle, a.Auth.Tracker().Status(OpLogin))
	assert.Zero(t, env.api.Calls("POST /auth/login"))
}

func TestSignupThenVerify(t *testing.T) {
	env := newEnv(t)
	a := env.app(t)
	ctx := context.Background()

	_, err := a.Auth.Signup(ctx, apiclient.SignupRequest{Name: "Ann", Email: "ann@example.com", Password: "pw"})
	require.NoError(t, err)
	u, ok := a.Auth.CurrentUser()
	require.True(t, ok)
	assert.False(t, u.IsVerified)
	assert.Equal(t, "ann@example.com", u.Email)

	_, err = a.Auth.VerifyOTP(ctx, "000000")
	assert.Error(t, err)
	assert.Equal(t, state.StatusRejected, a.Auth.Tracker().Status(OpVerifyOTP))

	_, err = a.Auth.VerifyOTP(ctx, fakeapi.OTP)
	require.NoError(t, err)
	u, _ = a.Auth.CurrentUser()
	assert.True(t, u.IsVerified)
	assert.NoError(t, a.Auth.Tracker().Err(OpVerifyOTP))
}

func TestVerifyWithoutUser(t *testing.T) {
	env := newEnv(t)
	a := env.app(t)

	_, err := a.Auth.VerifyOTP(context.Background(), fakeapi.OTP)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, state.StatusIdle, a.Auth.Tracker().Status(OpVerifyOTP))
}

func TestPasswordReset(t *testing.T) {
	env := newEnv(t)
	u := env.api.SeedUser(models.User{Email: "ann@example.com", IsVerified: true}, "old")
	a := env.app(t)
	ctx := context.Background()

	_, err := a.Auth.ForgotPassword(ctx, "nobody@example.com")
	assert.Error(t, err)
	assert.Equal(t, state.StatusRejected, a.Auth.Tracker().Status(OpForgotPassword))

	_, err = a.Auth.ForgotPassword(ctx, "ann@example.com")
	require.NoError(t, err)

	_, err = a.Auth.ResetPassword(ctx, apiclient.ResetPasswordRequest{UserID: u.ID, Token: fakeapi.ResetToken, Password: "new"})
	require.NoError(t, err)

	_, err = a.Auth.Login(ctx, apiclient.Credentials{Email: "ann@example.com", Password: "new"})
	assert.NoError(t, err)
}

func TestCheckAuthFailureBeforeFirstCheckClearsUser(t *testing.T) {
	env := newEnv(t)
	a, _ := env.signedIn(t, models.User{})
	ctx := context.Background()

	env.api.FailNext("GET /auth/check", http.StatusInternalServerError)
	_, err := a.Auth.CheckAuth(ctx)
	require.Error(t, err)

	_, ok := a.Auth.CurrentUser()
	assert.False(t, ok)
	assert.True(t, a.Auth.AuthChecked())
}

func TestCheckAuthFailureAfterCheckKeepsUser(t *testing.T) {
	env := newEnv(t)
	a, u := env.signedIn(t, models.User{})
	ctx := context.Background()

	_, err := a.Auth.CheckAuth(ctx)
	require.NoError(t, err)

	env.api.FailNext("GET /auth/check", http.StatusBadGateway)
	_, err = a.Auth.CheckAuth(ctx)
	require.Error(t, err)

	got, ok := a.Auth.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, u.ID, got.ID)
}

func TestLogoutClearsEvenWhenServerFails(t *testing.T) {
	env := newEnv(t)
	a, _ := env.signedIn(t, models.User{})
	ctx := context.Background()
	p := env.api.SeedProduct(models.Product{Title: "mug"})
	_, err := a.Cart.Add(ctx, p.ID, 1)
	require.NoError(t, err)

	env.api.FailNext("POST /auth/logout", http.StatusInternalServerError)
	err = a.Auth.Logout(ctx)
	require.Error(t, err)

	assert.Equal(t, state.StatusRejected, a.Auth.Tracker().Status(OpLogout))
	_, ok := a.Auth.CurrentUser()
	assert.False(t, ok)
	assert.Empty(t, a.Cart.Items())

	_, err = a.Auth.CheckAuth(ctx)
	assert.Error(t, err, "session cookie must be gone")
}

func TestLogoutResetsAuthOperations(t *testing.T) {
	env := newEnv(t)
	a, _ := env.signedIn(t, models.User{})

	require.Equal(t, state.StatusFulfilled, a.Auth.Tracker().Status(OpLogin))
	require.NoError(t, a.Auth.Logout(context.Background()))

	assert.Equal(t, state.StatusIdle, a.Auth.Tracker().Status(OpLogin))
	assert.Equal(t, state.StatusFulfilled, a.Auth.Tracker().Status(OpLogout))
	assert.True(t, a.Auth.AuthChecked())
}
