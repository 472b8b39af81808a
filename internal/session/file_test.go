package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileBackend_SetGetDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	backend := NewFileBackend(path, 0)
	defer backend.Close()

	if _, err := backend.Get(KeyToken); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound on empty file, got %v", err)
	}

	if err := backend.Set(KeyToken, "T1"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	value, err := backend.Get(KeyToken)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if value != "T1" {
		t.Errorf("expected T1, got %q", value)
	}

	if err := backend.Delete(KeyToken); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := backend.Get(KeyToken); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound after delete, got %v", err)
	}

	// Deleting an absent key is a no-op, not an error
	if err := backend.Delete("missing"); err != nil {
		t.Errorf("delete of missing key should succeed, got %v", err)
	}
}

func TestFileBackend_FilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	backend := NewFileBackend(path, 0)
	defer backend.Close()

	if err := backend.Set(KeyToken, "T1"); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("session file should be 0600, got %o", perm)
	}
}

func TestFileBackend_CorruptFileTreatedAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	backend := NewFileBackend(path, 0)
	defer backend.Close()

	if _, err := backend.Get(KeyToken); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("corrupt file should read as empty, got %v", err)
	}
	if err := backend.Set(KeyToken, "T1"); err != nil {
		t.Errorf("set over a corrupt file should succeed, got %v", err)
	}
}

func TestFileBackend_NotifyExternalChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	local := NewFileBackend(path, 10*time.Millisecond)
	defer local.Close()
	other := NewFileBackend(path, 0) // stands in for another process
	defer other.Close()

	if err := local.Set(KeyToken, "T1"); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	type change struct{ key, value string }
	changes := make(chan change, 8)
	stop := local.Notify(func(key, newValue string) {
		changes <- change{key, newValue}
	})
	defer stop()

	if err := other.Delete(KeyToken); err != nil {
		t.Fatalf("external delete failed: %v", err)
	}

	select {
	case got := <-changes:
		if got.key != KeyToken || got.value != "" {
			t.Errorf("expected token removal event, got %+v", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for external change notification")
	}
}

func TestFileBackend_OwnWritesAreNotReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	backend := NewFileBackend(path, 10*time.Millisecond)
	defer backend.Close()

	changes := make(chan string, 8)
	stop := backend.Notify(func(key, _ string) { changes <- key })
	defer stop()

	if err := backend.Set(KeyToken, "T1"); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	select {
	case key := <-changes:
		t.Errorf("own write was reported as external change: %s", key)
	case <-time.After(100 * time.Millisecond):
	}
}
