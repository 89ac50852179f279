package utils

import (
	"errors"
	"fmt"
	"sync"

	"github.com/danjacques/gofslock/fslock"

	"github.com/poppolopoppo/icebuilder/internal/base"
)

/***************************************
 * ProcessSafeFile: only 1 process is allowed to open the file at the same time
 ***************************************/

var ErrProcessLockHeld = errors.New("file is already locked by another process")

type ProcessSafeFile struct {
	Path Filename

	barrier    sync.Mutex
	globalLock fslock.Handle
}

func NewProcessSafeFile(path Filename) *ProcessSafeFile {
	return &ProcessSafeFile{Path: path}
}

func (x *ProcessSafeFile) LockPath() string {
	return x.Path.String() + ".lock"
}
func (x *ProcessSafeFile) Locked() bool {
	x.barrier.Lock()
	defer x.barrier.Unlock()
	return x.globalLock != nil
}

func (x *ProcessSafeFile) Lock() (err error) {
	x.barrier.Lock()
	defer x.barrier.Unlock()
	base.AssertIn(x.globalLock, nil)

	UFS.Mkdir(x.Path.Dirname)

	base.LogTrace(LogUFS, "locking file %q", x.Path)
	x.globalLock, err = fslock.Lock(x.LockPath())
	switch err {
	case nil:
		return nil
	case fslock.ErrLockHeld:
		x.globalLock = nil
		return fmt.Errorf("%q: %w", x.Path, ErrProcessLockHeld)
	default:
		x.globalLock = nil
		return err
	}
}
func (x *ProcessSafeFile) Unlock() error {
	x.barrier.Lock()
	defer x.barrier.Unlock()

	if x.globalLock == nil {
		return nil
	}

	base.LogTrace(LogUFS, "unlocking file %q", x.Path)
	err := x.globalLock.Unlock()
	x.globalLock = nil
	return err
}

// Load opens the locked file when it exists, a missing file is not an error.
func (x *ProcessSafeFile) Load(read func(Filename) error) error {
	if !x.Locked() {
		if err := x.Lock(); err != nil {
			return err
		}
	}
	if !x.Path.Exists() {
		base.LogVerbose(LogUFS, "%q does not exist yet", x.Path)
		return nil
	}

	benchmark := base.LogBenchmark(LogUFS, "loading %q...", x.Path)
	defer benchmark.Close()
	return read(x.Path)
}
func (x *ProcessSafeFile) Save(write func(Filename) error) error {
	if !x.Locked() {
		return fmt.Errorf("%q: saving without holding the process lock", x.Path)
	}

	benchmark := base.LogBenchmark(LogUFS, "saving %q...", x.Path)
	defer benchmark.Close()
	return write(x.Path)
}
