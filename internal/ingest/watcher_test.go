package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWatcher_TriggersOnCaptureFile(t *testing.T) {
	dir := t.TempDir()
	d := NewDirDiscoverer(dir, ".txt", true)
	w := NewWatcher(d, 100*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func() { calls.Add(1) })
	}()

	// let the watch register
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "SMB-NTLMv2-SSP-10.0.0.5.txt"), []byte("a::B:1\n"), 0o600))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	d := NewDirDiscoverer(dir, ".txt", true)
	w := NewWatcher(d, 50*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func() { calls.Add(1) })
	}()

	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Responder-Session.log"), []byte("noise\n"), 0o600))
	time.Sleep(400 * time.Millisecond)

	cancel()
	<-done
	assert.Equal(t, int32(0), calls.Load())
}
