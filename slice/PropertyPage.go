package slice

import (
	"fmt"
	"sync"

	"github.com/poppolopoppo/icebuilder/internal/base"

	//lint:ignore ST1001 ignore dot imports warning
	. "github.com/poppolopoppo/icebuilder/utils"
)

const (
	PROPERTY_PAGE_TITLE = "Slice Compile"
	PROPERTY_PAGE_GUID  = "1E2800FE-37C5-4FD3-BC2E-969342EE08AF"
	PROPERTY_PAGE_ORDER = 3
)

// ProjectChangedEvent is fired by the host when a project file was modified outside of the page.
type ProjectChangedEvent = base.ConcurrentEvent[Project]

type PageInfo struct {
	Title string
}

/***************************************
 * PropertyPage
 ***************************************/

// PropertyPage is the "Slice Compile" page of the project properties.
type PropertyPage struct {
	OutputDir          string
	IncludeDirectories base.StringSet
	AdditionalOptions  string

	Project  Project
	Settings *ProjectSettings

	sourceControl  SourceControlProvider
	projectChanged base.MutableEvent[Project]
	onChanged      base.DelegateHandle

	barrier sync.Mutex
	dirty   bool
}

func NewPropertyPage(sourceControl SourceControlProvider, projectChanged base.MutableEvent[Project]) *PropertyPage {
	return &PropertyPage{
		sourceControl:  sourceControl,
		projectChanged: projectChanged,
	}
}

func (x *PropertyPage) SetObjects(p Project) error {
	x.unsubscribe()

	x.barrier.Lock()
	x.Project = p
	x.Settings = NewProjectSettings(p, x.sourceControl)
	err := x.loadSettings()
	x.barrier.Unlock()

	if err != nil {
		UnexpectedExceptionWarning(err)
		return err
	}

	// the event is never locked while holding the page barrier
	if !base.IsNil(x.projectChanged) {
		handle := x.projectChanged.Add(x.onProjectChanged)
		x.barrier.Lock()
		x.onChanged = handle
		x.barrier.Unlock()
	}
	return nil
}

func (x *PropertyPage) unsubscribe() {
	x.barrier.Lock()
	handle := x.onChanged
	x.onChanged = 0
	x.barrier.Unlock()

	if handle != 0 && !base.IsNil(x.projectChanged) {
		x.projectChanged.Remove(handle)
	}
}

func (x *PropertyPage) loadSettings() error {
	if err := x.Settings.Load(); err != nil {
		return fmt.Errorf("load settings of %q: %w", x.Project.Name(), err)
	}
	x.OutputDir = x.Settings.OutputDir
	x.IncludeDirectories = base.NewStringSet(x.Settings.IncludeDirectoryList()...)
	x.AdditionalOptions = x.Settings.AdditionalOptions
	x.dirty = false
	return nil
}

// onProjectChanged reloads the page, unless the user has pending modifications.
func (x *PropertyPage) onProjectChanged(p Project) error {
	x.barrier.Lock()
	defer x.barrier.Unlock()

	if x.Settings == nil || x.dirty || ProjectId(p) != ProjectId(x.Project) {
		return nil
	}
	base.LogVerbose(LogSlice, "%s: project changed, reload property page", p.Name())
	return x.loadSettings()
}

func (x *PropertyPage) SetOutputDir(value string) {
	x.barrier.Lock()
	defer x.barrier.Unlock()
	if x.OutputDir != value {
		x.OutputDir = value
		x.dirty = true
	}
}
func (x *PropertyPage) SetIncludeDirectories(values ...string) {
	x.barrier.Lock()
	defer x.barrier.Unlock()
	values = base.RemoveUnless(func(s string) bool { return len(s) > 0 }, values...)
	if dirs := base.NewStringSet(values...); !dirs.Equals(x.IncludeDirectories) {
		x.IncludeDirectories = dirs
		x.dirty = true
	}
}
func (x *PropertyPage) SetAdditionalOptions(value string) {
	x.barrier.Lock()
	defer x.barrier.Unlock()
	if x.AdditionalOptions != value {
		x.AdditionalOptions = value
		x.dirty = true
	}
}

func (x *PropertyPage) IsPageDirty() bool {
	x.barrier.Lock()
	defer x.barrier.Unlock()
	return x.dirty
}

// Apply saves the page then the project when a property was written.
func (x *PropertyPage) Apply() error {
	x.barrier.Lock()
	settings, project := x.Settings, x.Project
	if settings == nil {
		x.barrier.Unlock()
		return nil
	}
	settings.OutputDir = x.OutputDir
	settings.IncludeDirectories = x.IncludeDirectories.Join(";")
	settings.AdditionalOptions = x.AdditionalOptions
	x.barrier.Unlock()

	// saving the project fires ProjectChanged, which needs the barrier
	err := settings.Save()
	if err == nil && settings.Writes() > 0 {
		err = project.Save()
	}
	if err != nil {
		UnexpectedExceptionWarning(err)
		return err
	}

	x.barrier.Lock()
	x.dirty = false
	x.barrier.Unlock()
	return nil
}

// Deactivate discards the settings session.
func (x *PropertyPage) Deactivate() {
	x.unsubscribe()

	x.barrier.Lock()
	defer x.barrier.Unlock()
	x.Settings = nil
	x.Project = nil
	x.dirty = false
}

func (x *PropertyPage) GetPageInfo() PageInfo {
	return PageInfo{Title: PROPERTY_PAGE_TITLE}
}

/***************************************
 * PageMetadataProvider
 ***************************************/

type PageMetadata struct {
	Name                      string
	PageGuid                  string
	PageOrder                 int
	HasConfigurationCondition bool
}

var SliceCompilePageMetadata = PageMetadata{
	Name:                      PROPERTY_PAGE_TITLE,
	PageGuid:                  PROPERTY_PAGE_GUID,
	PageOrder:                 PROPERTY_PAGE_ORDER,
	HasConfigurationCondition: false,
}

// PageMetadataProvider exposes the property page to project designers of Slice projects.
type PageMetadataProvider struct{}

func (PageMetadataProvider) AppliesTo() string { return SLICE_ITEM_TYPE }

func (PageMetadataProvider) GetPages() base.Future[[]PageMetadata] {
	return base.MakeFutureLiteral([]PageMetadata{SliceCompilePageMetadata})
}
