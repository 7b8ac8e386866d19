// Package service holds the domain containers. Each container owns one
// state.Tracker with a resource per operation and the collections those
// operations maintain.
package service

import (
	"errors"
	"fmt"
	"strings"

	"storefront-client/internal/models"
	"storefront-client/internal/state"
)

var (
	// ErrValidation marks a presence check that failed before any request
	// was sent. No resource changes state.
	ErrValidation = errors.New("validation failed")

	// ErrNotAuthenticated is returned by operations that act on behalf of
	// the current user when there is none.
	ErrNotAuthenticated = errors.New("no authenticated user")
)

// Operation names shared across containers.
const (
	OpFetch          = "fetch"
	OpFetchList      = "fetch-list"
	OpFetchAll       = "fetch-all"
	OpFetchByID      = "fetch-by-id"
	OpFetchByUser    = "fetch-by-user"
	OpFetchByProduct = "fetch-by-product"
	OpSearch         = "search"
	OpCreate         = "create"
	OpAdd            = "add"
	OpUpdate         = "update"
	OpUpdateQuantity = "update-quantity"
	OpUpdateStatus   = "update-status"
	OpDelete         = "delete"
	OpResetForUser   = "reset-for-user"
	OpBlock          = "block"
	OpUnblock        = "unblock"
	OpLoad           = "load"
)

// Container is implemented by every domain container.
type Container interface {
	Tracker() *state.Tracker
}

// UserSource yields the signed-in user for containers scoped to one.
type UserSource interface {
	CurrentUser() (models.User, bool)
}

func requireField(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrValidation, name)
	}
	return nil
}

func currentUserID(users UserSource) (string, error) {
	u, ok := users.CurrentUser()
	if !ok || u.ID == "" {
		return "", ErrNotAuthenticated
	}
	return u.ID, nil
}

func cloneSlice[T any](items []T) []T {
	if items == nil {
		return nil
	}
	return append([]T(nil), items...)
}
