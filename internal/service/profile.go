package service

import (
	"context"

	"storefront-client/internal/apiclient"
	"storefront-client/internal/models"
	"storefront-client/internal/state"
)

type ProfileAPI interface {
	FetchProfile(ctx context.Context) (models.User, error)
	UpdateProfile(ctx context.Context, in apiclient.UserUpdate) (models.User, error)
}

// Profile is the signed-in user's own account page. Updates are pushed back
// into Auth so the rest of the app sees the new name and email.
type Profile struct {
	tracker *state.Tracker
	api     ProfileAPI
	auth    *Auth

	user *models.User
}

func NewProfile(api ProfileAPI, auth *Auth) *Profile {
	return &Profile{
		tracker: state.NewTracker("profile", OpFetch, OpUpdate),
		api:     api,
		auth:    auth,
	}
}

func (p *Profile) Tracker() *state.Tracker { return p.tracker }

func (p *Profile) Fetch(ctx context.Context) (models.User, error) {
	return state.Run(ctx, p.tracker, OpFetch, p.api.FetchProfile, func(u models.User) {
		p.user = &u
	})
}

func (p *Profile) Update(ctx context.Context, name, email string) (models.User, error) {
	if err := requireField("email", email); err != nil {
		return models.User{}, err
	}

	in := apiclient.UserUpdate{Name: &name, Email: &email}
	u, err := state.Run(ctx, p.tracker, OpUpdate, func(ctx context.Context) (models.User, error) {
		return p.api.UpdateProfile(ctx, in)
	}, func(u models.User) {
		p.user = &u
	})
	if err == nil && p.auth != nil {
		p.auth.refresh(u)
	}
	return u, err
}

func (p *Profile) User() (models.User, bool) {
	var (
		out models.User
		ok  bool
	)
	p.tracker.Read(func() {
		if p.user != nil {
			out, ok = *p.user, true
		}
	})
	return out, ok
}
