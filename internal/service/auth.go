package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"storefront-client/internal/apiclient"
	"storefront-client/internal/models"
	"storefront-client/internal/state"
	"storefront-client/internal/util"

	"go.uber.org/zap"
)

// Auth operations.
const (
	OpSignup         = "signup"
	OpLogin          = "login"
	OpVerifyOTP      = "verify-otp"
	OpResendOTP      = "resend-otp"
	OpForgotPassword = "forgot-password"
	OpResetPassword  = "reset-password"
	OpCheckAuth      = "check-auth"
	OpLogout         = "logout"
)

type AuthAPI interface {
	Signup(ctx context.Context, req apiclient.SignupRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req apiclient.Credentials) (*models.AuthResponse, error)
	VerifyOTP(ctx context.Context, req apiclient.VerifyOTPRequest) (*models.AuthResponse, error)
	ResendOTP(ctx context.Context, req apiclient.ResendOTPRequest) (*models.AuthResponse, error)
	ForgotPassword(ctx context.Context, req apiclient.ForgotPasswordRequest) (*models.AuthResponse, error)
	ResetPassword(ctx context.Context, req apiclient.ResetPasswordRequest) (*models.AuthResponse, error)
	CheckAuth(ctx context.Context) (*models.AuthResponse, error)
	Logout(ctx context.Context) error
	ClearSession()
}

// Auth tracks the signed-in user.
type Auth struct {
	tracker *state.Tracker
	api     AuthAPI
	logger  *zap.Logger

	user     *models.User
	checked  bool
	onLogout []func()
	onChange []func()
}

func NewAuth(api AuthAPI) *Auth {
	return &Auth{
		tracker: state.NewTracker("auth",
			OpSignup, OpLogin, OpVerifyOTP, OpResendOTP,
			OpForgotPassword, OpResetPassword, OpCheckAuth, OpLogout),
		api:    api,
		logger: util.Named("auth"),
	}
}

func (a *Auth) Tracker() *state.Tracker { return a.tracker }

// OnLogout registers fn to run after every logout, successful or not.
func (a *Auth) OnLogout(fn func()) {
	a.tracker.Mutate(func() { a.onLogout = append(a.onLogout, fn) })
}

// OnChange registers fn to run after the user is replaced outside a tracked
// operation, such as a profile update.
func (a *Auth) OnChange(fn func()) {
	a.tracker.Mutate(func() { a.onChange = append(a.onChange, fn) })
}

// CurrentUser returns a copy of the signed-in user.
func (a *Auth) CurrentUser() (models.User, bool) {
	var (
		u  models.User
		ok bool
	)
	a.tracker.Read(func() {
		if a.user != nil {
			u, ok = *a.user, true
		}
	})
	return u, ok
}

// AuthChecked reports whether a check-auth call has completed since start.
func (a *Auth) AuthChecked() bool {
	var checked bool
	a.tracker.Read(func() { checked = a.checked })
	return checked
}

func (a *Auth) Signup(ctx context.Context, req apiclient.SignupRequest) (*models.AuthResponse, error) {
	if err := requireField("email", req.Email); err != nil {
		return nil, err
	}
	if err := requireField("password", req.Password); err != nil {
		return nil, err
	}

	return state.Run(ctx, a.tracker, OpSignup, func(ctx context.Context) (*models.AuthResponse, error) {
		return a.api.Signup(ctx, req)
	}, func(resp *models.AuthResponse) {
		// A fresh account stays unverified until the OTP is confirmed.
		u := models.User{Name: req.Name, Email: req.Email}
		if resp.User != nil {
			u = *resp.User
		}
		a.user = &u
	})
}

func (a *Auth) Login(ctx context.Context, creds apiclient.Credentials) (*models.AuthResponse, error) {
	if err := requireField("email", creds.Email); err != nil {
		return nil, err
	}
	if err := requireField("password", creds.Password); err != nil {
		return nil, err
	}

	return state.Run(ctx, a.tracker, OpLogin, func(ctx context.Context) (*models.AuthResponse, error) {
		return a.api.Login(ctx, creds)
	}, func(resp *models.AuthResponse) {
		if resp.User != nil {
			u := *resp.User
			a.user = &u
		}
	})
}

// VerifyOTP confirms the one-time password for the signed-in user.
func (a *Auth) VerifyOTP(ctx context.Context, otp string) (*models.AuthResponse, error) {
	if err := requireField("otp", otp); err != nil {
		return nil, err
	}
	userID, err := currentUserID(a)
	if err != nil {
		return nil, err
	}

	return state.Run(ctx, a.tracker, OpVerifyOTP, func(ctx context.Context) (*models.AuthResponse, error) {
		return a.api.VerifyOTP(ctx, apiclient.VerifyOTPRequest{UserID: userID, OTP: otp})
	}, func(resp *models.AuthResponse) {
		if resp.User != nil {
			u := *resp.User
			a.user = &u
		} else if a.user != nil {
			a.user.IsVerified = true
		}
	})
}

func (a *Auth) ResendOTP(ctx context.Context) (*models.AuthResponse, error) {
	u, ok := a.CurrentUser()
	if !ok {
		return nil, ErrNotAuthenticated
	}

	return state.Run(ctx, a.tracker, OpResendOTP, func(ctx context.Context) (*models.AuthResponse, error) {
		return a.api.ResendOTP(ctx, apiclient.ResendOTPRequest{UserID: u.ID, Email: u.Email})
	}, nil)
}

func (a *Auth) ForgotPassword(ctx context.Context, email string) (*models.AuthResponse, error) {
	if err := requireField("email", email); err != nil {
		return nil, err
	}

	return state.Run(ctx, a.tracker, OpForgotPassword, func(ctx context.Context) (*models.AuthResponse, error) {
		return a.api.ForgotPassword(ctx, apiclient.ForgotPasswordRequest{Email: email})
	}, nil)
}

func (a *Auth) ResetPassword(ctx context.Context, req apiclient.ResetPasswordRequest) (*models.AuthResponse, error) {
	for field, value := range map[string]string{"userId": req.UserID, "token": req.Token, "password": req.Password} {
		if err := requireField(field, value); err != nil {
			return nil, err
		}
	}

	return state.Run(ctx, a.tracker, OpResetPassword, func(ctx context.Context) (*models.AuthResponse, error) {
		return a.api.ResetPassword(ctx, req)
	}, nil)
}

// CheckAuth asks the server who owns the session cookie. A failure only
// drops the user when no check has completed yet, so a flaky check does not
// sign out a rehydrated user.
func (a *Auth) CheckAuth(ctx context.Context) (*models.AuthResponse, error) {
	return state.RunSettled(ctx, a.tracker, OpCheckAuth, func(ctx context.Context) (*models.AuthResponse, error) {
		return a.api.CheckAuth(ctx)
	}, func(resp *models.AuthResponse) {
		a.user = nil
		if resp.User != nil {
			u := *resp.User
			a.user = &u
		}
		a.checked = true
	}, func(error) {
		if !a.checked {
			a.user = nil
		}
		a.checked = true
	})
}

// Logout ends the session. The local user and session cookie are cleared
// whatever the server answers.
func (a *Auth) Logout(ctx context.Context) error {
	_, err := state.RunSettled(ctx, a.tracker, OpLogout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.api.Logout(ctx)
	}, func(struct{}) {
		a.user = nil
		a.checked = true
	}, func(error) {
		a.user = nil
		a.checked = true
	})
	a.api.ClearSession()

	var hooks []func()
	a.tracker.Read(func() { hooks = a.onLogout })
	for _, fn := range hooks {
		fn()
	}

	if errors.Is(err, state.ErrSuperseded) {
		a.tracker.Mutate(func() {
			a.user = nil
			a.checked = true
		})
		return err
	}
	if err != nil {
		a.logger.Warn("Server logout failed, session cleared locally", zap.Error(err))
		return err
	}

	for _, op := range []string{OpSignup, OpLogin, OpVerifyOTP, OpResendOTP, OpForgotPassword, OpResetPassword} {
		a.tracker.Reset(op)
	}
	return nil
}

// refresh replaces the current user after a profile update.
func (a *Auth) refresh(u models.User) {
	var (
		changed bool
		hooks   []func()
	)
	a.tracker.Mutate(func() {
		if a.user != nil && a.user.ID == u.ID {
			a.user = &u
			changed = true
			hooks = a.onChange
		}
	})
	if !changed {
		return
	}
	for _, fn := range hooks {
		fn()
	}
}

type authSnapshot struct {
	User *models.User `json:"user"`
}

func (a *Auth) Snapshot() any {
	var snap authSnapshot
	a.tracker.Read(func() {
		if a.user != nil {
			u := *a.user
			snap.User = &u
		}
	})
	return snap
}

func (a *Auth) Restore(raw json.RawMessage) error {
	var snap authSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("decode auth snapshot: %w", err)
	}
	a.tracker.Mutate(func() { a.user = snap.User })
	return nil
}
