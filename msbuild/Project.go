package msbuild

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/poppolopoppo/icebuilder/internal/base"
	internal_io "github.com/poppolopoppo/icebuilder/internal/io"
	"github.com/poppolopoppo/icebuilder/slice"

	//lint:ignore ST1001 ignore dot imports warning
	. "github.com/poppolopoppo/icebuilder/utils"
)

const (
	VCXPROJ_EXT = ".vcxproj"
	CSPROJ_EXT  = ".csproj"
	FILTERS_EXT = ".filters"
)

func ProjectTypeFromExt(ext string) slice.ProjectType {
	switch strings.ToLower(ext) {
	case VCXPROJ_EXT:
		return slice.PROJECT_CPP
	case CSPROJ_EXT:
		return slice.PROJECT_CSHARP
	default:
		return slice.PROJECT_NONE
	}
}

func IsProjectFile(f Filename) bool {
	return ProjectTypeFromExt(f.Ext()) != slice.PROJECT_NONE
}

/***************************************
 * ProjectFile: a .vcxproj or a .csproj loaded from disk
 ***************************************/

type ProjectFile struct {
	SolutionDir Directory
	// Changed is fired after the project was saved or reloaded from disk.
	Changed base.MutableEvent[slice.Project]

	path        Filename
	projectType slice.ProjectType
	document    *Document
	filters     *Document
	timestamp   time.Time
	active      slice.Configuration

	evaluated    map[slice.Configuration]*evaluatedProperties
	dirty        bool
	filtersDirty bool
}

func LoadProject(path Filename) (*ProjectFile, error) {
	x := &ProjectFile{
		SolutionDir: path.Dirname,
		path:        path,
		projectType: ProjectTypeFromExt(path.Ext()),
	}
	if err := x.load(); err != nil {
		return nil, err
	}
	if cfgs := x.Configurations(); len(cfgs) > 0 {
		x.active = cfgs[0]
	}
	return x, nil
}

func (x *ProjectFile) load() error {
	benchmark := base.LogBenchmark(LogMsBuild, "loading %q...", x.path)
	defer benchmark.Close()

	document, err := LoadDocument(x.path)
	if err != nil {
		return err
	}
	if document.Root.Name != "Project" {
		return fmt.Errorf("msbuild: %q is not a project, root element is <%s>", x.path, document.Root.Name)
	}

	var filters *Document
	if filtersFile := x.FiltersPath(); x.projectType == slice.PROJECT_CPP && filtersFile.Exists() {
		if filters, err = LoadDocument(filtersFile); err != nil {
			return err
		}
	}

	if x.timestamp, err = GetModificationTime(x.path); err != nil {
		return err
	}

	x.document = document
	x.filters = filters
	x.evaluated = nil
	x.dirty = false
	x.filtersDirty = false
	return nil
}

func (x *ProjectFile) Name() string            { return x.path.TrimExt() }
func (x *ProjectFile) Path() Filename          { return x.path }
func (x *ProjectFile) FiltersPath() Filename   { return x.path.ReplaceExt(x.path.Ext() + FILTERS_EXT) }
func (x *ProjectFile) Dir() Directory          { return x.path.Dirname }
func (x *ProjectFile) Type() slice.ProjectType { return x.projectType }
func (x *ProjectFile) Document() *Document     { return x.document }
func (x *ProjectFile) Filters() *Document      { return x.filters }
func (x *ProjectFile) Dirty() bool             { return x.dirty || x.filtersDirty }
func (x *ProjectFile) String() string          { return x.path.String() }
func (x *ProjectFile) IsSdkStyle() bool        { _, ok := x.document.Root.Attr("Sdk"); return ok }
func (x *ProjectFile) setDirty()               { x.dirty = true; x.evaluated = nil }
func (x *ProjectFile) root() *Element          { return x.document.Root }
func (x *ProjectFile) itemInclude(f Filename) string {
	return strings.ReplaceAll(f.Relative(x.Dir()), "/", `\`)
}
func (x *ProjectFile) resolveInclude(include string) Filename {
	return x.Dir().AbsoluteFile(include)
}

// IceBuilderEnabled checks for Slice items, IceBuilder imports, property groups or packages.
func (x *ProjectFile) IceBuilderEnabled() bool {
	if x.projectType == slice.PROJECT_NONE {
		return false
	}
	enabled := false
	x.root().Walk(func(parent, it *Element) bool {
		switch it.Name {
		case slice.SLICE_ITEM_TYPE:
			enabled = parent.Name == "ItemGroup"
		case "Import":
			project := strings.ToLower(it.AttrOrEmpty("Project"))
			enabled = strings.Contains(project, "icebuilder")
		case "PropertyGroup":
			enabled = it.AttrOrEmpty("Label") == slice.PROPERTY_GROUP_LABEL
		case "PackageReference":
			enabled = strings.EqualFold(it.AttrOrEmpty("Include"), slice.ICEBUILDER_NUGET_PACKAGE)
		case "ProjectTypeGuids":
			enabled = strings.Contains(strings.ToUpper(it.Text), slice.ICEBUILDER_PROJECT_FLAVOR_GUID)
		}
		return !enabled
	})
	if !enabled {
		if packages, err := LoadPackagesConfig(x.Dir()); err == nil {
			enabled = packages.Contains(slice.ICEBUILDER_NUGET_PACKAGE)
		}
	}
	return enabled
}

// Reload reads the project from disk when it was modified, unsaved modifications are kept.
func (x *ProjectFile) Reload() error {
	if x.Dirty() {
		base.LogTrace(LogMsBuild, "%s: keep unsaved modifications instead of reloading", x.Name())
		return nil
	}
	if timestamp, err := GetModificationTime(x.path); err == nil && timestamp.Equal(x.timestamp) {
		return nil
	}

	base.LogVerbose(LogMsBuild, "%s: reload modified project %q", x.Name(), x.path)
	if err := x.load(); err != nil {
		return err
	}
	return x.fireChanged()
}

func (x *ProjectFile) Save() error {
	if !x.Dirty() {
		base.LogTrace(LogMsBuild, "%s: skipped saving unmodified project", x.Name())
		return nil
	}
	if x.dirty {
		if err := x.document.SaveTo(x.path); err != nil {
			return err
		}
		x.dirty = false
	}
	if x.filtersDirty && x.filters != nil {
		if err := x.filters.SaveTo(x.FiltersPath()); err != nil {
			return err
		}
		x.filtersDirty = false
	}
	if timestamp, err := GetModificationTime(x.path); err == nil {
		x.timestamp = timestamp
	}
	return x.fireChanged()
}

func (x *ProjectFile) fireChanged() error {
	if !base.IsNil(x.Changed) {
		return x.Changed.Invoke(x)
	}
	return nil
}

/***************************************
 * Configurations
 ***************************************/

var reConfigurationCondition = regexp.MustCompile(`'\$\(Configuration\)\|\$\(Platform\)'\s*==\s*'([^']+)'`)

func (x *ProjectFile) Configurations() (result []slice.Configuration) {
	add := func(cfg slice.Configuration) {
		for _, it := range result {
			if it == cfg {
				return
			}
		}
		result = append(result, cfg)
	}

	x.root().Walk(func(parent, it *Element) bool {
		if it.Name == "ProjectConfiguration" && parent.Name == "ItemGroup" {
			add(slice.MakeConfiguration(it.AttrOrEmpty("Include")))
		}
		return true
	})
	if len(result) > 0 {
		return
	}

	x.root().Walk(func(parent, it *Element) bool {
		if match := reConfigurationCondition.FindStringSubmatch(it.AttrOrEmpty("Condition")); match != nil {
			add(slice.MakeConfiguration(match[1]))
		}
		return true
	})
	if len(result) > 0 {
		return
	}

	platform := "AnyCPU"
	if x.projectType == slice.PROJECT_CPP {
		platform = "Win32"
	}
	return []slice.Configuration{{Name: "Debug", Platform: platform}, {Name: "Release", Platform: platform}}
}

func (x *ProjectFile) ActiveConfiguration() slice.Configuration {
	return x.active
}

func (x *ProjectFile) SetActiveConfiguration(cfg slice.Configuration) error {
	for _, it := range x.Configurations() {
		if it == cfg {
			x.active = cfg
			return nil
		}
	}
	return fmt.Errorf("%s: unknown configuration %q", x.Name(), cfg)
}

/***************************************
 * Properties
 ***************************************/

// evaluatedProperties follows MSBuild property evaluation: groups are visited in document order,
// so a property referencing itself sees its previous definition.
type evaluatedProperties struct {
	project *ProjectFile
	raw     map[string]string
	values  map[string]string
}

func (x *evaluatedProperties) Expand(template string) (string, error) {
	return expandProperties(template, x.values), nil
}
func (x *evaluatedProperties) Exists(path string) bool {
	path = ToOSPath(path)
	_, err := os.Stat(x.project.Dir().AbsoluteFile(path).String())
	return err == nil
}

var reProperty = regexp.MustCompile(`\$\(([A-Za-z_][\w]*)\)`)

func expandProperties(template string, values map[string]string) string {
	if !strings.Contains(template, "$(") {
		return template
	}
	return reProperty.ReplaceAllStringFunc(template, func(macro string) string {
		name := macro[2 : len(macro)-1]
		if value, ok := values[strings.ToLower(name)]; ok {
			return value
		}
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		return ""
	})
}

func withTrailingSeparator(dir Directory) string {
	return dir.String() + string(OSPathSeparator)
}

func (x *ProjectFile) reservedProperties(cfg slice.Configuration) map[string]string {
	return map[string]string{
		"configuration":            cfg.Name,
		"platform":                 cfg.Platform,
		"projectdir":               withTrailingSeparator(x.Dir()),
		"projectname":              x.Name(),
		"projectfilename":          x.path.Basename,
		"projectext":               x.path.Ext(),
		"projectpath":              x.path.String(),
		"solutiondir":              withTrailingSeparator(x.SolutionDir),
		"msbuildprojectdirectory":  x.Dir().String(),
		"msbuildprojectname":       x.Name(),
		"msbuildprojectfile":       x.path.Basename,
		"msbuildprojectfullpath":   x.path.String(),
		"msbuildthisfiledirectory": withTrailingSeparator(x.Dir()),
	}
}

func (x *ProjectFile) evaluate(cfg slice.Configuration) (*evaluatedProperties, error) {
	if props, ok := x.evaluated[cfg]; ok {
		return props, nil
	}

	props := &evaluatedProperties{
		project: x,
		raw:     make(map[string]string),
		values:  x.reservedProperties(cfg),
	}

	var err error
	x.root().Walk(func(parent, group *Element) bool {
		if group.Name != "PropertyGroup" || err != nil {
			return err == nil
		}
		var enabled bool
		if enabled, err = EvaluateCondition(group.AttrOrEmpty("Condition"), props); err != nil || !enabled {
			return err == nil
		}
		for _, it := range group.Elements() {
			if enabled, err = EvaluateCondition(it.AttrOrEmpty("Condition"), props); err != nil {
				return false
			}
			if enabled {
				key := strings.ToLower(it.Name)
				props.raw[key] = it.Text
				props.values[key] = expandProperties(it.Text, props.values)
			}
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("%s: evaluate %v: %w", x.Name(), cfg, err)
	}

	if x.evaluated == nil {
		x.evaluated = make(map[slice.Configuration]*evaluatedProperties)
	}
	x.evaluated[cfg] = props
	return props, nil
}

func (x *ProjectFile) GetConfigurationProperty(cfg slice.Configuration, name string) (string, error) {
	props, err := x.evaluate(cfg)
	if err != nil {
		return "", err
	}
	return props.raw[strings.ToLower(name)], nil
}

// GetEvaluatedProperty returns the value of a property in the active configuration.
func (x *ProjectFile) GetEvaluatedProperty(name string) (string, error) {
	props, err := x.evaluate(x.active)
	if err != nil {
		return "", err
	}
	return props.values[strings.ToLower(name)], nil
}

func (x *ProjectFile) Evaluate(cfg slice.Configuration, template string) (string, error) {
	props, err := x.evaluate(cfg)
	if err != nil {
		return "", err
	}
	return expandProperties(template, props.values), nil
}

func isUnconditioned(it *Element) bool {
	_, ok := it.Attr("Condition")
	return !ok
}

// findPropertyDefinition returns the last unconditioned definition, which wins at evaluation.
func (x *ProjectFile) findPropertyDefinition(name string) (group *Element, property *Element) {
	for _, it := range x.root().ChildrenNamed("PropertyGroup") {
		if !isUnconditioned(it) {
			continue
		}
		for _, child := range it.Elements() {
			if strings.EqualFold(child.Name, name) && isUnconditioned(child) {
				group, property = it, child
			}
		}
	}
	return
}

func (x *ProjectFile) GetProperty(name string) (string, error) {
	if _, property := x.findPropertyDefinition(name); property != nil {
		return property.Text, nil
	}
	return "", nil
}

// SetProperty updates the existing definition or adds it to the "IceBuilder" property group.
func (x *ProjectFile) SetProperty(name, value string) error {
	group, property := x.findPropertyDefinition(name)
	switch {
	case property != nil && len(value) == 0:
		group.RemoveChild(property)
	case property != nil:
		if property.Text == value {
			return nil
		}
		property.Text = value
	case len(value) == 0:
		return nil
	default:
		x.IceBuilderPropertyGroup(true).SetChildText(name, value)
	}

	base.LogVeryVerbose(LogMsBuild, "%s: set property %s = %q", x.Name(), name, value)
	x.setDirty()
	return nil
}

// IceBuilderPropertyGroup returns the labeled property group, which is created after the "Globals" group when missing.
func (x *ProjectFile) IceBuilderPropertyGroup(create bool) *Element {
	var insertAfter *Element
	for _, it := range x.root().ChildrenNamed("PropertyGroup") {
		switch it.AttrOrEmpty("Label") {
		case slice.PROPERTY_GROUP_LABEL:
			return it
		case "Globals":
			insertAfter = it
		default:
			if insertAfter == nil && isUnconditioned(it) {
				insertAfter = it
			}
		}
	}
	if !create {
		return nil
	}

	group := NewElement("PropertyGroup", internal_io.XmlAttr{Name: "Label", Value: slice.PROPERTY_GROUP_LABEL})
	if i, ok := x.root().IndexOf(insertAfter); ok {
		x.root().InsertChild(i+1, group)
	} else {
		x.root().InsertChild(0, group)
	}
	x.setDirty()
	return group
}
