package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SessionStore {
	t.Helper()
	store, err := OpenSessionStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSessionStoreSaveLoad(t *testing.T) {
	store := openTestStore(t)

	e := NewEngine(WithRand(fixedRand(0.5)))
	e.AddQubit()
	e.ApplyGate("X", 1)
	e.ApplyError(0, ErrorBitFlip)

	sess, err := store.Save("bell attempt", e.State())
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, 2, sess.NumQubits)

	got, err := store.Load(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "bell attempt", got.Name)
	assert.Equal(t, e.State(), got.State)
	assert.Equal(t, sess.CreatedAt.UnixNano(), got.CreatedAt.UnixNano())
}

func TestSessionStoreUpdateAndLatest(t *testing.T) {
	store := openTestStore(t)

	first, err := store.Save("first", InitialState())
	require.NoError(t, err)
	second, err := store.Save("second", InitialState())
	require.NoError(t, err)

	latest, err := store.Latest()
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	e := NewEngine()
	e.ApplyGate("H", 0)
	e.AddQubit()
	require.NoError(t, store.Update(first.ID, e.State()))

	latest, err = store.Latest()
	require.NoError(t, err)
	assert.Equal(t, first.ID, latest.ID)
	assert.Equal(t, 2, latest.NumQubits)
	assert.Equal(t, e.State().History, latest.State.History)

	sessions, err := store.List()
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, first.ID, sessions[0].ID)
	assert.Equal(t, second.ID, sessions[1].ID)
}

func TestSessionStoreNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Load("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = store.Latest()
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, store.Update("missing", InitialState()), ErrSessionNotFound)
	assert.ErrorIs(t, store.Delete("missing"), ErrSessionNotFound)
}

func TestSessionStoreDelete(t *testing.T) {
	store := openTestStore(t)

	sess, err := store.Save("scratch", InitialState())
	require.NoError(t, err)
	require.NoError(t, store.Delete(sess.ID))

	_, err = store.Load(sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	sessions, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestSessionStoreOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sessions.db")

	store, err := OpenSessionStore(path)
	require.NoError(t, err)
	sess, err := store.Save("persisted", InitialState())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := OpenSessionStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Name)
}
