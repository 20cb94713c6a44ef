package profiles

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	store := NewStore(path)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- store.Watch(ctx, 20*time.Millisecond) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	content := "profiles:\n  - name: Web ports\n    command: nmap -p 80,443 %s\n"
	// The watcher registers asynchronously; keep writing until it notices.
	assert.Eventually(t, func() bool {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return false
		}
		_, err := store.Get("Web ports")
		return err == nil
	}, 5*time.Second, 100*time.Millisecond)

	p, err := store.Get("Web ports")
	require.NoError(t, err)
	assert.Equal(t, "nmap -p 80,443 %s", p.Command)
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "profiles.yaml"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- store.Watch(ctx, 10*time.Millisecond) }()

	other := "profiles:\n  - name: Stray\n    command: nmap %s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte(other), 0o600))
	time.Sleep(100 * time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	_, err := store.Get("Stray")
	assert.Error(t, err)
}

func TestWatchWithoutPath(t *testing.T) {
	assert.NoError(t, NewStore("").Watch(context.Background(), 0))
}
