package utils

import (
	"errors"
	"io"
	"testing"
)

func TestProcessSafeFileLock(t *testing.T) {
	path := UFS.Dir(t.TempDir()).File("generated.db")

	first := NewProcessSafeFile(path)
	if err := first.Lock(); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer first.Unlock()

	second := NewProcessSafeFile(path)
	err := second.Lock()
	if !errors.Is(err, ErrProcessLockHeld) {
		t.Fatalf("Lock: expected %v, got %v", ErrProcessLockHeld, err)
	}
	if second.Locked() {
		t.Errorf("Locked: expected false after a failed lock")
	}

	if err := first.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if err := second.Lock(); err != nil {
		t.Errorf("Lock: expected lock to be available after unlock, got %v", err)
	}
	second.Unlock()
}

func TestProcessSafeFileLoadSave(t *testing.T) {
	path := UFS.Dir(t.TempDir()).File("generated.db")
	file := NewProcessSafeFile(path)
	defer file.Unlock()

	loaded := false
	if err := file.Load(func(Filename) error { loaded = true; return nil }); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded {
		t.Errorf("Load: callback should not be invoked for a missing file")
	}

	err := file.Save(func(dst Filename) error {
		return UFS.SafeCreate(dst, func(w io.Writer) error {
			_, err := io.WriteString(w, "{}")
			return err
		})
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := file.Load(func(Filename) error { loaded = true; return nil }); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loaded {
		t.Errorf("Load: expected callback to be invoked")
	}
}
