package session_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/husseinbouik/taskman/internal/api"
	"github.com/husseinbouik/taskman/internal/apitest"
	"github.com/husseinbouik/taskman/internal/db"
	"github.com/husseinbouik/taskman/internal/models"
	"github.com/husseinbouik/taskman/internal/session"
)

type env struct {
	server  *apitest.Server
	storage *db.DB
	store   *session.Store
	client  *api.Client
}

func newEnv(t *testing.T) *env {
	t.Helper()

	server := apitest.New()
	t.Cleanup(server.Close)
	server.AddUser("alice", "alice@example.com", "secret")

	storage, err := db.New(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	e := &env{server: server, storage: storage}
	e.client = api.New(server.BaseURL(), 5*time.Second, api.TokenFunc(func() string {
		if e.store == nil {
			return ""
		}
		return e.store.Token()
	}))

	e.store, err = session.NewStore(e.client, storage)
	require.NoError(t, err)
	return e
}

func TestStore_LoginEstablishesSession(t *testing.T) {
	e := newEnv(t)
	require.Nil(t, e.store.Current())
	require.Empty(t, e.store.Token())

	sess, err := e.store.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)

	current := e.store.Current()
	require.NotNil(t, current)
	require.NotEmpty(t, current.Token)
	require.Equal(t, "alice", current.User.Username)
	require.Equal(t, current.Token, e.store.Token())
}

func TestStore_FailedLoginLeavesSessionUntouched(t *testing.T) {
	e := newEnv(t)

	_, err := e.store.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	before := e.store.Current()

	_, err = e.store.Login(context.Background(), "alice", "wrong")
	require.ErrorIs(t, err, session.ErrAuthFailed)
	require.Equal(t, before, e.store.Current())
}

func TestStore_Logout(t *testing.T) {
	e := newEnv(t)

	_, err := e.store.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	e.store.Logout()
	require.Nil(t, e.store.Current())
	require.Empty(t, e.store.Token())

	// Idempotent
	e.store.Logout()
	require.Nil(t, e.store.Current())
}

func TestStore_SessionSurvivesRestart(t *testing.T) {
	e := newEnv(t)

	sess, err := e.store.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	// A second store over the same storage stands in for a restart
	reopened, err := session.NewStore(e.client, e.storage)
	require.NoError(t, err)

	current := reopened.Current()
	require.NotNil(t, current)
	require.Equal(t, sess.Token, current.Token)
	require.Equal(t, "alice", current.User.Username)
}

func TestStore_LogoutClearsDurableState(t *testing.T) {
	e := newEnv(t)

	_, err := e.store.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	e.store.Logout()

	reopened, err := session.NewStore(e.client, e.storage)
	require.NoError(t, err)
	require.Nil(t, reopened.Current())
}

func TestStore_SubscribersNotified(t *testing.T) {
	e := newEnv(t)

	var changes []*models.Session
	e.store.Subscribe(func(s *models.Session) {
		changes = append(changes, s)
	})

	_, err := e.store.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	e.store.Logout()

	require.Len(t, changes, 2)
	require.NotNil(t, changes[0])
	require.Equal(t, "alice", changes[0].User.Username)
	require.Nil(t, changes[1])
}

func TestStore_InvalidateDropsSession(t *testing.T) {
	e := newEnv(t)

	_, err := e.store.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	e.store.Invalidate()
	require.Nil(t, e.store.Current())
	require.Empty(t, e.store.Token())
}
