package cmd

import (
	"bytes"
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for a writer and a reader goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestMain_WatchRepeatsCallOnFileChange(t *testing.T) {
	te := newTestEnv(t)
	var stdout, stderr syncBuffer
	te.Stdout = &stdout
	te.Stderr = &stderr

	addr := serveRPC(t, echoParams)
	require.NoError(t, os.WriteFile("note.txt", []byte("v1"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan int, 1)
	go func() {
		done <- Main(ctx, te.Environment, []string{"--watch", addr, "echo", "note=@note.txt"})
	}()

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(stderr.String()), []byte("Watching 1 file(s)"))
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, `{"note":"v1"}`, stdout.String())

	require.NoError(t, os.WriteFile("note.txt", []byte("v2"), 0o644))

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(stdout.String()), []byte(`{"note":"v2"}`))
	}, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, stderr.String(), "File changed:")

	cancel()
	select {
	case code := <-done:
		assert.Equal(t, ExitSuccess, code)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestMain_WatchWithoutFiles(t *testing.T) {
	te := newTestEnv(t)
	addr := serveRPC(t, echoParams)

	code := Main(context.Background(), te.Environment, []string{"-w", addr, "echo", "a=1"})

	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, `{"a":"1"}`, te.stdout.String())
	assert.Contains(t, te.stderr.String(), "jsonrpc: warning: --watch: no file items to watch")
}

func TestMain_WatchKeepsWatchingAfterFailedRead(t *testing.T) {
	te := newTestEnv(t)
	var stdout, stderr syncBuffer
	te.Stdout = &stdout
	te.Stderr = &stderr

	addr := serveRPC(t, echoParams)
	require.NoError(t, os.WriteFile("data.json", []byte(`{nope`), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan int, 1)
	go func() {
		done <- Main(ctx, te.Environment, []string{"--watch", addr, "echo", "d:=@data.json"})
	}()

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(stderr.String()), []byte("Watching 1 file(s)"))
	}, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, stderr.String(), "jsonrpc: error:")
	assert.Empty(t, stdout.String())

	require.NoError(t, os.WriteFile("data.json", []byte(`{"ok":true}`), 0o644))

	require.Eventually(t, func() bool {
		return stdout.String() == `{"d":{"ok":true}}`
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case code := <-done:
		assert.Equal(t, ExitSuccess, code)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
