package service

import (
	"context"

	"storefront-client/internal/apiclient"
	"storefront-client/internal/models"
	"storefront-client/internal/state"
)

type AdminUserAPI interface {
	FetchUsers(ctx context.Context) (models.UserList, error)
	FetchUser(ctx context.Context, id string) (models.User, error)
	UpdateUser(ctx context.Context, id string, in apiclient.UserUpdate) (models.User, error)
	DeleteUser(ctx context.Context, id string) (models.User, error)
}

// AdminUsers is the back-office user list. Blocking a user clears its
// verified flag; the server refuses unverified users on their next check.
type AdminUsers struct {
	tracker *state.Tracker
	api     AdminUserAPI

	users    []models.User
	total    int
	selected *models.User
}

func NewAdminUsers(api AdminUserAPI) *AdminUsers {
	return &AdminUsers{
		tracker: state.NewTracker("admin-users",
			OpFetchAll, OpFetchByID, OpUpdate, OpDelete, OpBlock, OpUnblock),
		api: api,
	}
}

func (a *AdminUsers) Tracker() *state.Tracker { return a.tracker }

func (a *AdminUsers) FetchAll(ctx context.Context) ([]models.User, error) {
	list, err := state.Run(ctx, a.tracker, OpFetchAll, a.api.FetchUsers, func(list models.UserList) {
		a.users = list.Users
		a.total = list.Total
	})
	return list.Users, err
}

func (a *AdminUsers) FetchByID(ctx context.Context, id string) (models.User, error) {
	if err := requireField("id", id); err != nil {
		return models.User{}, err
	}

	return state.Run(ctx, a.tracker, OpFetchByID, func(ctx context.Context) (models.User, error) {
		return a.api.FetchUser(ctx, id)
	}, func(u models.User) {
		a.selected = &u
	})
}

func (a *AdminUsers) Update(ctx context.Context, id string, in apiclient.UserUpdate) (models.User, error) {
	if err := requireField("id", id); err != nil {
		return models.User{}, err
	}

	return state.Run(ctx, a.tracker, OpUpdate, func(ctx context.Context) (models.User, error) {
		return a.api.UpdateUser(ctx, id, in)
	}, func(u models.User) {
		a.replace(u)
	})
}

func (a *AdminUsers) Delete(ctx context.Context, id string) (models.User, error) {
	if err := requireField("id", id); err != nil {
		return models.User{}, err
	}

	return state.Run(ctx, a.tracker, OpDelete, func(ctx context.Context) (models.User, error) {
		return a.api.DeleteUser(ctx, id)
	}, func(models.User) {
		a.users = state.Remove(a.users, id)
		if a.selected != nil && a.selected.ID == id {
			a.selected = nil
		}
	})
}

func (a *AdminUsers) Block(ctx context.Context, id string) (models.User, error) {
	return a.setVerified(ctx, OpBlock, id, false)
}

func (a *AdminUsers) Unblock(ctx context.Context, id string) (models.User, error) {
	return a.setVerified(ctx, OpUnblock, id, true)
}

func (a *AdminUsers) setVerified(ctx context.Context, op, id string, verified bool) (models.User, error) {
	if err := requireField("id", id); err != nil {
		return models.User{}, err
	}

	return state.Run(ctx, a.tracker, op, func(ctx context.Context) (models.User, error) {
		return a.api.UpdateUser(ctx, id, apiclient.UserUpdate{IsVerified: &verified})
	}, func(models.User) {
		// Flip the flag on the listed record; the response body is not
		// relied upon.
		for i := range a.users {
			if a.users[i].ID == id {
				a.users[i].IsVerified = verified
			}
		}
		if a.selected != nil && a.selected.ID == id {
			a.selected.IsVerified = verified
		}
	})
}

// replace is called with the tracker lock held.
func (a *AdminUsers) replace(u models.User) {
	a.users = state.Upsert(a.users, u)
	if a.selected != nil && a.selected.ID == u.ID {
		a.selected = &u
	}
}

func (a *AdminUsers) Users() []models.User {
	var out []models.User
	a.tracker.Read(func() { out = cloneSlice(a.users) })
	return out
}

func (a *AdminUsers) Total() int {
	var n int
	a.tracker.Read(func() { n = a.total })
	return n
}

func (a *AdminUsers) Selected() (models.User, bool) {
	var (
		out models.User
		ok  bool
	)
	a.tracker.Read(func() {
		if a.selected != nil {
			out, ok = *a.selected, true
		}
	})
	return out, ok
}
