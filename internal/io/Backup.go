package io

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/mholt/archiver/v3"

	"github.com/poppolopoppo/icebuilder/internal/base"

	//lint:ignore ST1001 ignore dot imports warning
	. "github.com/poppolopoppo/icebuilder/utils"
)

var LogBackup = base.NewLogCategory("Backup")

const BACKUP_EXT = ".zip"

/***************************************
 * Backup archive: project files saved before they are rewritten
 ***************************************/

func MakeBackupFilename(dir Directory, now time.Time) Filename {
	return dir.File(fmt.Sprint("icebuilder-backup-", now.Format("20060102-150405"), BACKUP_EXT))
}

// CommonDirectory returns the deepest directory containing every file.
func CommonDirectory(files ...Filename) Directory {
	if len(files) == 0 {
		return Directory{}
	}
	common := files[0].Dirname
	for _, f := range files[1:] {
		for !f.IsIn(common) {
			parent := common.Parent()
			if parent.Equals(common) {
				return common
			}
			common = parent
		}
	}
	return common
}

func newBackupZip() *archiver.Zip {
	return &archiver.Zip{
		CompressionLevel:     flate.DefaultCompression,
		FileMethod:           archiver.Deflate,
		SelectiveCompression: true,
		OverwriteExisting:    true,
		MkdirAll:             true,
	}
}

// CreateBackupArchive stores files with their path relative to root, missing files are skipped.
func CreateBackupArchive(dst Filename, root Directory, files ...Filename) (archived FileSet, err error) {
	benchmark := base.LogBenchmark(LogBackup, "backup %d files in %q", len(files), dst)
	defer benchmark.Close()

	for _, f := range files {
		if !f.IsIn(root) {
			return nil, fmt.Errorf("backup: %q is not in %q", f, root)
		}
	}

	z := newBackupZip()
	err = UFS.Create(dst, func(w io.Writer) error {
		if err := z.Create(w); err != nil {
			return err
		}
		defer z.Close()

		for _, f := range files {
			info, err := f.Info()
			if os.IsNotExist(err) {
				base.LogVerbose(LogBackup, "skipped missing file %q", f)
				continue
			} else if err != nil {
				return err
			}

			if err := UFS.Open(f, func(r io.Reader) error {
				return z.Write(archiver.File{
					FileInfo: archiver.FileInfo{
						FileInfo:   info,
						CustomName: filepath.ToSlash(f.Relative(root)),
					},
					ReadCloser: archiver.ReadFakeCloser{Reader: r},
				})
			}); err != nil {
				return err
			}

			base.LogVeryVerbose(LogBackup, "archived %q", f)
			archived.Append(f)
		}
		return nil
	})
	return
}

// ListBackupArchive returns the relative paths stored in an archive.
func ListBackupArchive(src Filename) (entries []string, err error) {
	err = newBackupZip().Walk(src.String(), func(f archiver.File) error {
		if header, ok := f.Header.(zip.FileHeader); ok && !f.IsDir() {
			entries = append(entries, header.Name)
		}
		return nil
	})
	return
}

// RestoreBackupArchive writes back every archived file under root.
func RestoreBackupArchive(src Filename, root Directory) (restored FileSet, err error) {
	benchmark := base.LogBenchmark(LogBackup, "restore %q in %q", src, root)
	defer benchmark.Close()

	err = newBackupZip().Walk(src.String(), func(f archiver.File) error {
		if f.IsDir() {
			return nil
		}

		// f.Name() is only the basename, the relative path lives in the zip header
		header, ok := f.Header.(zip.FileHeader)
		if !ok {
			return fmt.Errorf("backup: unexpected header %T in %q", f.Header, src)
		}
		if strings.HasPrefix(header.Name, "../") || filepath.IsAbs(header.Name) {
			return fmt.Errorf("backup: invalid path %q in %q", header.Name, src)
		}

		dst := root.AbsoluteFile(header.Name)
		base.LogVerbose(LogBackup, "restore %q", dst)
		if err := UFS.SafeCreate(dst, func(w io.Writer) error {
			_, err := io.Copy(w, f)
			return err
		}); err != nil {
			return err
		}
		restored.Append(dst)
		return nil
	})
	return
}
