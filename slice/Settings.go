package slice

import (
	"fmt"

	"github.com/poppolopoppo/icebuilder/internal/base"

	//lint:ignore ST1001 ignore dot imports warning
	. "github.com/poppolopoppo/icebuilder/utils"
)

type SettingsStorage interface {
	PropertyStorage
	Path() Filename
}

// ProjectSettings is the facade over the properties edited by the property page.
// Load has no side effect, only Save writes to the project.
type ProjectSettings struct {
	OutputDir          string
	IncludeDirectories string
	AdditionalOptions  string

	storage       SettingsStorage
	sourceControl SourceControlProvider
	writes        int
}

func NewProjectSettings(storage SettingsStorage, sourceControl SourceControlProvider) *ProjectSettings {
	if base.IsNil(sourceControl) {
		sourceControl = DummySourceControl{}
	}
	return &ProjectSettings{
		storage:       storage,
		sourceControl: sourceControl,
	}
}

func normalizeIncludeDirectories(in string) string {
	return base.NewStringSet(base.SplitList(in)...).Join(";")
}

func (x *ProjectSettings) Load() (err error) {
	if x.OutputDir, err = x.storage.GetProperty(PROPERTY_OUTPUT_DIR); err != nil {
		return
	}
	if x.IncludeDirectories, err = x.storage.GetProperty(PROPERTY_INCLUDE_DIRECTORIES); err != nil {
		return
	}
	x.IncludeDirectories = normalizeIncludeDirectories(x.IncludeDirectories)
	x.AdditionalOptions, err = x.storage.GetProperty(PROPERTY_ADDITIONAL_OPTIONS)
	return
}

// Save only writes the properties which differ from the values stored in the project.
func (x *ProjectSettings) Save() error {
	x.writes = 0
	return base.AnyError(
		x.setPropertyIfChanged(PROPERTY_OUTPUT_DIR, x.OutputDir, nil),
		x.setPropertyIfChanged(PROPERTY_INCLUDE_DIRECTORIES, normalizeIncludeDirectories(x.IncludeDirectories), normalizeIncludeDirectories),
		x.setPropertyIfChanged(PROPERTY_ADDITIONAL_OPTIONS, x.AdditionalOptions, nil))
}

// Writes returns how many properties were written by the last call to Save.
func (x *ProjectSettings) Writes() int { return x.writes }

func (x *ProjectSettings) IncludeDirectoryList() []string {
	return base.SplitList(x.IncludeDirectories)
}
func (x *ProjectSettings) SetIncludeDirectoryList(dirs ...string) {
	x.IncludeDirectories = base.NewStringSet(dirs...).Join(";")
}

func (x *ProjectSettings) setPropertyIfChanged(name, value string, normalize func(string) string) error {
	stored, err := x.storage.GetProperty(name)
	if err != nil {
		return err
	}
	if normalize != nil {
		stored = normalize(stored)
	}
	if stored == value {
		return nil
	}
	return x.setProperty(name, value)
}

func (x *ProjectSettings) setProperty(name, value string) error {
	projectFile := x.storage.Path()
	if err := EnsureFileIsCheckedOut(x.sourceControl, projectFile); err != nil {
		return err
	}

	base.LogVerbose(LogSlice, "set property %s = %q in %q", name, value, projectFile)
	if err := x.storage.SetProperty(name, value); err != nil {
		return fmt.Errorf("set property %q in %q: %w", name, projectFile, err)
	}
	x.writes++
	return nil
}
