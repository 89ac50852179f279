//go:build !windows

package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/poppolopoppo/icebuilder/internal/base"
)

func CleanPath(in string) string {
	in = filepath.Clean(ToOSPath(in))

	if cleaned, err := filepath.Abs(in); err == nil {
		in = cleaned
	} else {
		base.LogPanicErr(LogUFS, err)
	}

	return in
}

// IsWritable returns false for files the current user can only read, like a locked checkout.
func IsWritable(f Filename) bool {
	return unix.Access(f.String(), unix.W_OK) == nil
}

func SetWritable(f Filename, writable bool) error {
	info, err := f.Info()
	if err != nil {
		return err
	}
	mode := info.Mode().Perm()
	if writable {
		mode |= 0200
	} else {
		mode &^= 0222
	}
	if err = os.Chmod(f.String(), mode); err != nil {
		return fmt.Errorf("ufs: chmod %q: %w", f, err)
	}
	return nil
}
