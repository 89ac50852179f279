//go:build windows

package utils

import (
	"fmt"
	"path/filepath"

	"golang.org/x/sys/windows"

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

func getFileAttributes(f Filename) (*uint16, uint32, error) {
	utf16Path, err := windows.UTF16PtrFromString(f.String())
	if err != nil {
		return nil, 0, err
	}
	attrs, err := windows.GetFileAttributes(utf16Path)
	if err != nil {
		return nil, 0, fmt.Errorf("ufs: get attributes of %q: %w", f, err)
	}
	return utf16Path, attrs, nil
}

// IsWritable returns false for read-only files, like a locked checkout.
func IsWritable(f Filename) bool {
	_, attrs, err := getFileAttributes(f)
	return err == nil && (attrs&windows.FILE_ATTRIBUTE_READONLY) == 0
}

func SetWritable(f Filename, writable bool) error {
	utf16Path, attrs, err := getFileAttributes(f)
	if err != nil {
		return err
	}
	if writable {
		attrs &^= windows.FILE_ATTRIBUTE_READONLY
	} else {
		attrs |= windows.FILE_ATTRIBUTE_READONLY
	}
	if err = windows.SetFileAttributes(utf16Path, attrs); err != nil {
		return fmt.Errorf("ufs: set attributes of %q: %w", f, err)
	}
	return nil
}
