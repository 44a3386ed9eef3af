package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	dirs  []string
	calls chan string
}

func newRecorder() *recorder {
	return &recorder{calls: make(chan string, 32)}
}

func (r *recorder) rescan(_ context.Context, dir string) error {
	r.mu.Lock()
	r.dirs = append(r.dirs, dir)
	r.mu.Unlock()
	r.calls <- dir
	return nil
}

func startWatcher(t *testing.T, root string, opts Options) (*recorder, context.CancelFunc) {
	t.Helper()
	rec := newRecorder()
	w, err := New(nil, opts, rec.rescan)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := w.Watch(root); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Close()
	})
	return rec, cancel
}

func waitFor(t *testing.T, rec *recorder, want string) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case dir := <-rec.calls:
			if dir == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for rescan of %s", want)
		}
	}
}

func expectQuiet(t *testing.T, rec *recorder, d time.Duration) {
	t.Helper()
	select {
	case dir := <-rec.calls:
		t.Fatalf("unexpected rescan of %s", dir)
	case <-time.After(d):
	}
}

func TestRescanAfterFileChange(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	rec, _ := startWatcher(t, root, Options{Debounce: 50 * time.Millisecond})

	if err := os.WriteFile(filepath.Join(sub, "model.zip"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, rec, sub)
}

func TestBurstIsDebounced(t *testing.T) {
	root := t.TempDir()
	rec, _ := startWatcher(t, root, Options{Debounce: 150 * time.Millisecond})

	for _, name := range []string{"a.zip", "a.jpg", "b.zip", "b.png"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	waitFor(t, rec, root)
	expectQuiet(t, rec, 400*time.Millisecond)
}

func TestIndexWritesIgnored(t *testing.T) {
	root := t.TempDir()
	rec, _ := startWatcher(t, root, Options{Debounce: 30 * time.Millisecond})

	if err := os.WriteFile(filepath.Join(root, "index.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".index.json.123.tmp"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	expectQuiet(t, rec, 300*time.Millisecond)
}

func TestNewDirectoryIsWatched(t *testing.T) {
	root := t.TempDir()
	rec, _ := startWatcher(t, root, Options{Debounce: 30 * time.Millisecond})

	fresh := filepath.Join(root, "fresh")
	if err := os.Mkdir(fresh, 0o755); err != nil {
		t.Fatal(err)
	}
	waitFor(t, rec, fresh)

	// give the new watch a moment, then change something inside it
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(fresh, "x.zip"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, rec, fresh)
}

func TestIgnoreRules(t *testing.T) {
	opts := Options{}
	opts.setDefaults()
	cases := map[string]bool{
		"/d/index.json":        true,
		"/d/INDEX.JSON":        true,
		"/d/.index.json.1.tmp": true,
		"/d/download.part":     true,
		"/d/model.zip":         false,
		"/d/model preview.jpg": false,
		"/d/.DS_Store":         true,
		"/d/archive.tmp.zip":   false,
	}
	for path, want := range cases {
		if got := opts.ignoreFile(path); got != want {
			t.Errorf("ignoreFile(%q) = %v, want %v", path, got, want)
		}
	}
	if !opts.skipDir("/root", "/root/.cache") || opts.skipDir("/root", "/root") {
		t.Fatal("hidden directory rules wrong")
	}
	opts.FollowHidden = true
	if opts.skipDir("/root", "/root/.cache") {
		t.Fatal("follow hidden not honored")
	}
}

func TestNewRequiresRescan(t *testing.T) {
	if _, err := New(nil, Options{}, nil); err == nil {
		t.Fatal("expected error without rescan func")
	}
}
