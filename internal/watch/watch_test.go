package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/suykerbuyk/padroles/internal/audit"
	"github.com/suykerbuyk/padroles/internal/corpus"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRun_AuditsWrittenRecords(t *testing.T) {
	dir := t.TempDir()
	results := make(chan audit.Result, 8)
	w := New(corpus.Default(dir), 50*time.Millisecond, func(r audit.Result) { results <- r })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte(`{}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.json"), []byte(`{"id": "e"}`), 0o644))

	select {
	case res := <-results:
		assert.Equal(t, "empty.json", res.File)
		assert.Equal(t, audit.NoMessages, res.Outcome)
	case <-time.After(5 * time.Second):
		t.Fatal("no audit result")
	}

	select {
	case res := <-results:
		t.Fatalf("unexpected extra result for %s", res.File)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestRun_MissingRoot(t *testing.T) {
	w := New(corpus.Default(filepath.Join(t.TempDir(), "missing")), 0, nil)
	err := w.Run(context.Background())
	assert.Error(t, err)
}
