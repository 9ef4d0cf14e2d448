package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeDoc(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func waitChanged(t *testing.T, w *Watcher, timeout time.Duration) bool {
	t.Helper()
	select {
	case <-w.Changed():
		return true
	case <-time.After(timeout):
		return false
	}
}

func TestWatcherSeesWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "network.json")
	writeDoc(t, path, `{"nodes": []}`)

	w, err := New(path, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	writeDoc(t, path, `{"nodes": [{"id": "a", "type": "major"}]}`)

	if !waitChanged(t, w, 3*time.Second) {
		t.Fatal("no change notification after write")
	}
}

func TestWatcherSeesAtomicRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "network.json")
	writeDoc(t, path, `{}`)

	w, err := New(path, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	tmp := filepath.Join(dir, "network.json.tmp")
	writeDoc(t, tmp, `{"nodes": []}`)
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	if !waitChanged(t, w, 3*time.Second) {
		t.Fatal("no change notification after atomic rename")
	}
}

func TestWatcherDebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "network.json")
	writeDoc(t, path, `{}`)

	w, err := New(path, WithDebounce(100*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	for i := 0; i < 5; i++ {
		writeDoc(t, path, `{}`)
		time.Sleep(10 * time.Millisecond)
	}

	if !waitChanged(t, w, 3*time.Second) {
		t.Fatal("no notification at all")
	}
	// The burst should have collapsed; allow the window to drain and check
	// no second notification is queued.
	time.Sleep(300 * time.Millisecond)
	select {
	case <-w.Changed():
		t.Error("burst produced more than one notification")
	default:
	}
}

func TestWatcherPollingMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "network.json")
	writeDoc(t, path, `{}`)

	w, err := New(path,
		WithForcePoll(true),
		WithPollInterval(30*time.Millisecond),
		WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Fatal("WithForcePoll did not enable polling mode")
	}

	// Ensure mtime moves even on coarse-grained filesystems.
	time.Sleep(50 * time.Millisecond)
	writeDoc(t, path, `{"nodes": []}`)
	future := time.Now().Add(time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	if !waitChanged(t, w, 3*time.Second) {
		t.Fatal("polling mode missed the change")
	}
}

func TestWatcherForcePollEnv(t *testing.T) {
	t.Setenv(ForcePollEnvVar, "yes")
	path := filepath.Join(t.TempDir(), "network.json")
	writeDoc(t, path, `{}`)

	w, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if !w.IsPolling() {
		t.Errorf("%s should force polling mode", ForcePollEnvVar)
	}
}

func TestStartTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "network.json")
	writeDoc(t, path, `{}`)
	w, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if err := w.Start(); err != ErrAlreadyStarted {
		t.Errorf("second Start = %v, want ErrAlreadyStarted", err)
	}
}

func TestStopIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "network.json")
	writeDoc(t, path, `{}`)
	w, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	w.Stop() // never started
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
}
