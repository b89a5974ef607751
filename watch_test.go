package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchCircuitReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bell.qasm")
	require.NoError(t, os.WriteFile(path, []byte("qreg q[2];\nh q[0];\n"), 0o644))

	type load struct {
		c   *Circuit
		err error
	}
	loads := make(chan load, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- WatchCircuit(ctx, path, log.New(io.Discard), func(c *Circuit, err error) {
			loads <- load{c, err}
		})
	}()

	next := func() load {
		t.Helper()
		select {
		case l := <-loads:
			return l
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for a circuit load")
			return load{}
		}
	}

	first := next()
	require.NoError(t, first.err)
	assert.Len(t, first.c.Gates, 1)

	require.NoError(t, os.WriteFile(path, []byte("qreg q[2];\nh q[0];\ncx q[0], q[1];\n"), 0o644))
	second := next()
	require.NoError(t, second.err)
	assert.Len(t, second.c.Gates, 2)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestWatchCircuitMissingDirectory(t *testing.T) {
	err := WatchCircuit(context.Background(), filepath.Join(t.TempDir(), "gone", "c.qasm"), log.New(io.Discard),
		func(*Circuit, error) {})
	assert.Error(t, err)
}
