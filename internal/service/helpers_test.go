package service

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"storefront-client/internal/apiclient"
	"storefront-client/internal/fakeapi"
	"storefront-client/internal/models"
	"storefront-client/internal/state"

	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type testEnv struct {
	api *fakeapi.Server
	url string
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	api := fakeapi.New()
	srv := httptest.NewServer(api.Router())
	t.Cleanup(srv.Close)
	return &testEnv{api: api, url: srv.URL}
}

// app returns a fresh client state with its own cookie jar.
func (e *testEnv) app(t *testing.T) *App {
	t.Helper()
	client, err := apiclient.New(apiclient.Config{BaseURL: e.url, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return NewApp(client)
}

// signedIn seeds a verified shopper and logs a fresh app in as them.
func (e *testEnv) signedIn(t *testing.T, u models.User) (*App, models.User) {
	t.Helper()
	if u.Email == "" {
		u.Email = "shopper@example.com"
	}
	u.IsVerified = true
	u = e.api.SeedUser(u, "secret")

	a := e.app(t)
	_, err := a.Auth.Login(context.Background(), apiclient.Credentials{Email: u.Email, Password: "secret"})
	require.NoError(t, err)
	return a, u
}

// recorder collects every transition of one app.
type recorder struct {
	mu  sync.Mutex
	got []state.Transition
}

func record(a *App) *recorder {
	r := &recorder{}
	a.Observe(func(tr state.Transition) {
		r.mu.Lock()
		r.got = append(r.got, tr)
		r.mu.Unlock()
	})
	return r
}

// statuses returns the sequence of target statuses for one operation.
func (r *recorder) statuses(container, op string) []state.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []state.Status
	for _, tr := range r.got {
		if tr.Container == container && tr.Operation == op {
			out = append(out, tr.To)
		}
	}
	return out
}

func waitEntered(t *testing.T, g *fakeapi.Gate) {
	t.Helper()
	select {
	case <-g.Entered:
	case <-time.After(waitFor):
		t.Fatal("request never reached the server")
	}
}
