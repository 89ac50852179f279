package slice

import (
	"fmt"
	"io"

	"golang.org/x/exp/slices"

	"github.com/poppolopoppo/icebuilder/internal/base"

	//lint:ignore ST1001 ignore dot imports warning
	. "github.com/poppolopoppo/icebuilder/utils"
)

var LogTracker = base.NewLogCategory("Tracker")

/***************************************
 * GeneratedFileTracker
 ***************************************/

// GeneratedFileTracker remembers, for each project, the files generated by the last reconciliation.
// It is not thread-safe: callers serialize accesses to a project.
type GeneratedFileTracker struct {
	Generated map[string]GeneratedFileSet

	// file deletion, can be replaced for testing
	RemoveFile func(Filename) error

	dirty bool
}

func NewGeneratedFileTracker() *GeneratedFileTracker {
	return &GeneratedFileTracker{
		Generated:  make(map[string]GeneratedFileSet),
		RemoveFile: UFS.Remove,
	}
}

func (x *GeneratedFileTracker) Dirty() bool { return x.dirty }

// Add records a baseline for a project, replacing any previous one.
func (x *GeneratedFileTracker) Add(project string, generated GeneratedFileSet) {
	base.LogVerbose(LogTracker, "add baseline of %q with %d generated files", project, generated.Len())
	x.Generated[project] = generated
	x.dirty = true
}

// Remove drops the baseline of a project without deleting files.
func (x *GeneratedFileTracker) Remove(project string) {
	if _, ok := x.Generated[project]; ok {
		base.LogVerbose(LogTracker, "remove baseline of %q", project)
		delete(x.Generated, project)
		x.dirty = true
	}
}

// Reap deletes the files of every Slice item whose generated set changed, then records the new baseline.
// Deletion is conservative: all old outputs of a changed item are deleted, even when some are still expected.
func (x *GeneratedFileTracker) Reap(project string, generated GeneratedFileSet, remover ProjectItemRemover) {
	if generated == nil {
		generated = GeneratedFileSet{}
	}

	if oldGenerated, ok := x.Generated[project]; ok {
		if oldGenerated.Fingerprint() == generated.Fingerprint() {
			base.LogTrace(LogTracker, "%q: generated files did not change", project)
			return
		}

		for _, key := range oldGenerated.Keys() {
			oldFiles := oldGenerated[key]
			if newFiles, ok := generated[key]; !ok {
				base.LogVerbose(LogTracker, "%q: %q is not generated anymore", project, key)
				x.DeleteItems(remover, oldFiles...)
			} else if len(base.NewSet(oldFiles...).SymmetricDifference(base.NewSet(newFiles...))) > 0 {
				base.LogVerbose(LogTracker, "%q: generated files of %q changed", project, key)
				x.DeleteItems(remover, oldFiles...)
			}
		}
	}

	x.Generated[project] = generated
	x.dirty = true
}

// DeleteItems removes project items and files, failures are logged and ignored.
func (x *GeneratedFileTracker) DeleteItems(remover ProjectItemRemover, files ...Filename) {
	for _, f := range files {
		if !base.IsNil(remover) {
			if removed, err := remover.RemoveItem(f); err != nil {
				base.LogVerbose(LogTracker, "failed to remove project item %q: %v", f, err)
			} else if removed {
				base.LogVeryVerbose(LogTracker, "removed project item %q", f)
			}
		}

		if f.Exists() {
			if err := x.RemoveFile(f); err != nil {
				base.LogVerbose(LogTracker, "failed to delete %q: %v", f, err)
			} else {
				base.LogInfo(LogTracker, "deleted stale generated file %q", f)
			}
		}
	}
}

// Contains checks if a path was generated for this project.
func (x *GeneratedFileTracker) Contains(project string, path Filename) bool {
	if generated, ok := x.Generated[project]; ok {
		return generated.Contains(path)
	}
	return false
}

func (x *GeneratedFileTracker) ContainsProject(project string) bool {
	_, ok := x.Generated[project]
	return ok
}

func (x *GeneratedFileTracker) Get(project string) (GeneratedFileSet, bool) {
	generated, ok := x.Generated[project]
	return generated, ok
}

func (x *GeneratedFileTracker) Projects() []string {
	keys := base.Keys(x.Generated)
	slices.Sort(keys)
	return keys
}

func (x *GeneratedFileTracker) Clear() {
	if len(x.Generated) > 0 {
		x.Generated = make(map[string]GeneratedFileSet)
		x.dirty = true
	}
}

/***************************************
 * Persistence
 ***************************************/

type GeneratedFileTrackerDatabase struct {
	*GeneratedFileTracker
	Compression []base.CompressionOptionFunc

	file *ProcessSafeFile
}

// LoadGeneratedFileTracker locks the database for this process, a missing or corrupt database gives an empty tracker.
func LoadGeneratedFileTracker(path Filename, compression ...base.CompressionOptionFunc) (*GeneratedFileTrackerDatabase, error) {
	db := &GeneratedFileTrackerDatabase{
		GeneratedFileTracker: NewGeneratedFileTracker(),
		Compression:          compression,
		file:                 NewProcessSafeFile(path),
	}

	err := db.file.Load(func(src Filename) error {
		return UFS.OpenBuffered(src, db.Deserialize)
	})

	switch {
	case err == nil:
		db.dirty = false
	case db.file.Locked():
		base.LogWarning(LogTracker, "ignoring corrupted database %q: %v", path, err)
		db.GeneratedFileTracker.Generated = make(map[string]GeneratedFileSet)
		db.dirty = true
		err = nil
	}
	return db, err
}

func (x *GeneratedFileTrackerDatabase) Path() Filename { return x.file.Path }

func (x *GeneratedFileTrackerDatabase) Serialize(dst io.Writer) error {
	compressed := base.NewCompressedWriter(dst, x.Compression...)
	if err := base.JsonSerialize(&x.Generated, compressed); err != nil {
		compressed.Close()
		return fmt.Errorf("serialize generated files: %w", err)
	}
	return compressed.Close()
}
func (x *GeneratedFileTrackerDatabase) Deserialize(src io.Reader) error {
	compressed := base.NewCompressedReader(src, x.Compression...)
	defer compressed.Close()

	generated := make(map[string]GeneratedFileSet)
	if err := base.JsonDeserialize(&generated, compressed); err != nil {
		return fmt.Errorf("deserialize generated files: %w", err)
	}
	x.Generated = generated
	return nil
}

// Save writes the database when it was modified, the process lock is kept.
func (x *GeneratedFileTrackerDatabase) Save() error {
	if !x.dirty {
		base.LogTrace(LogTracker, "skipped saving unmodified database %q", x.file.Path)
		return nil
	}
	err := x.file.Save(func(dst Filename) error {
		return UFS.SafeCreate(dst, x.Serialize)
	})
	if err == nil {
		x.dirty = false
	}
	return err
}

func (x *GeneratedFileTrackerDatabase) Close() error {
	return x.file.Unlock()
}
