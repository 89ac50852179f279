package slice

import (
	"errors"
	"io"
	"regexp"
	"testing"

	//lint:ignore ST1001 ignore dot imports warning
	. "github.com/poppolopoppo/icebuilder/utils"
)

/***************************************
 * fakeProject implements the host interfaces in memory
 ***************************************/

var (
	debugWin32   = MakeConfiguration("Debug|Win32")
	releaseWin32 = MakeConfiguration("Release|Win32")
)

type fakeReference struct {
	name     string
	hintPath string
	hasHint  bool
}

func (x *fakeReference) Name() string             { return x.name }
func (x *fakeReference) HintPath() (string, bool) { return x.hintPath, x.hasHint }
func (x *fakeReference) SetHintPath(value string) { x.hintPath, x.hasHint = value, true }
func (x *fakeReference) RemoveHintPath()          { x.hintPath, x.hasHint = "", false }

type fakeProject struct {
	name        string
	dir         Directory
	projectType ProjectType
	enabled     bool

	properties     map[string]string
	cfgProperties  map[Configuration]map[string]string
	configurations []Configuration
	active         Configuration

	sliceItems []string
	items      map[Filename]GeneratedItemKind
	excluded   map[Filename][]Configuration
	removed    []Filename
	references []*fakeReference

	propertyReads  int
	propertyWrites int
	saves          int
	reloads        int
	failSave       error
	legacy         bool
	changed        *ProjectChangedEvent
}

func newFakeProject(t *testing.T, projectType ProjectType, sliceItems ...string) *fakeProject {
	return &fakeProject{
		name:           "Hello",
		dir:            MakeDirectory(t.TempDir()),
		projectType:    projectType,
		enabled:        true,
		properties:     make(map[string]string),
		cfgProperties:  make(map[Configuration]map[string]string),
		configurations: []Configuration{debugWin32, releaseWin32},
		active:         debugWin32,
		sliceItems:     sliceItems,
		items:          make(map[Filename]GeneratedItemKind),
		excluded:       make(map[Filename][]Configuration),
	}
}

func (x *fakeProject) setConfigurationProperty(cfg Configuration, name, value string) {
	props, ok := x.cfgProperties[cfg]
	if !ok {
		props = make(map[string]string)
		x.cfgProperties[cfg] = props
	}
	props[name] = value
}

func (x *fakeProject) Name() string            { return x.name }
func (x *fakeProject) Path() Filename          { return x.dir.File(x.name + ".vcxproj") }
func (x *fakeProject) Dir() Directory          { return x.dir }
func (x *fakeProject) Type() ProjectType       { return x.projectType }
func (x *fakeProject) IceBuilderEnabled() bool { return x.enabled }
func (x *fakeProject) Reload() error           { x.reloads++; return nil }
func (x *fakeProject) Save() error {
	x.saves++
	if x.failSave == nil && x.changed != nil {
		return x.changed.Invoke(x)
	}
	return x.failSave
}

func (x *fakeProject) GetProperty(name string) (string, error) {
	x.propertyReads++
	return x.properties[name], nil
}
func (x *fakeProject) SetProperty(name, value string) error {
	x.propertyWrites++
	x.properties[name] = value
	return nil
}

func (x *fakeProject) Configurations() []Configuration    { return x.configurations }
func (x *fakeProject) ActiveConfiguration() Configuration { return x.active }
func (x *fakeProject) GetConfigurationProperty(cfg Configuration, name string) (string, error) {
	if props, ok := x.cfgProperties[cfg]; ok {
		if value, ok := props[name]; ok {
			return value, nil
		}
	}
	return x.properties[name], nil
}

var reFakeMacro = regexp.MustCompile(`\$\((\w+)\)`)

func (x *fakeProject) Evaluate(cfg Configuration, template string) (string, error) {
	for i := 0; i < 8 && reFakeMacro.MatchString(template); i++ {
		template = reFakeMacro.ReplaceAllStringFunc(template, func(macro string) string {
			name := reFakeMacro.FindStringSubmatch(macro)[1]
			switch name {
			case "Configuration":
				return cfg.Name
			case "Platform":
				return cfg.Platform
			case "ProjectDir":
				return x.dir.String() + "/"
			default:
				value, _ := x.GetConfigurationProperty(cfg, name)
				return value
			}
		})
	}
	return template, nil
}

func (x *fakeProject) SliceItems() ([]string, error) { return x.sliceItems, nil }
func (x *fakeProject) AddSliceItem(f Filename) error {
	x.sliceItems = append(x.sliceItems, f.Relative(x.dir))
	return nil
}
func (x *fakeProject) HasItem(f Filename) bool {
	_, ok := x.items[f]
	return ok
}
func (x *fakeProject) AddItem(f Filename, kind GeneratedItemKind) error {
	x.items[f] = kind
	return nil
}
func (x *fakeProject) RemoveItem(f Filename) (bool, error) {
	if _, ok := x.items[f]; ok {
		delete(x.items, f)
		x.removed = append(x.removed, f)
		return true, nil
	}
	return false, nil
}
func (x *fakeProject) ExcludeFileInConfiguration(f Filename, cfg Configuration) error {
	x.excluded[f] = append(x.excluded[f], cfg)
	return nil
}

func (x *fakeProject) AssemblyReferences() (result []AssemblyReference) {
	for _, it := range x.references {
		result = append(result, it)
	}
	return
}
func (x *fakeProject) UpgradeProjectImports() bool { return x.legacy }
func (x *fakeProject) UpgradeProjectProperties(cpp bool) bool {
	modified := false
	for legacy, name := range LegacyPropertyNames {
		if value, ok := x.properties[legacy]; ok {
			delete(x.properties, legacy)
			x.properties[name] = value
			modified = true
		}
	}
	return modified
}
func (x *fakeProject) RemoveIceBuilderFromProject(bool) bool {
	modified := x.legacy
	x.legacy = false
	return modified
}
func (x *fakeProject) UpgradeProjectItems(bool) bool { return false }

func touchFile(t *testing.T, f Filename) {
	t.Helper()
	if err := UFS.Create(f, func(io.Writer) error { return nil }); err != nil {
		t.Fatal(err)
	}
}

/***************************************
 * Tests
 ***************************************/

func TestProjectTypeFromGuid(t *testing.T) {
	for guid, expected := range map[string]ProjectType{
		CPP_PROJECT_GUID:                         PROJECT_CPP,
		CPP_STOREAPP_PROJECT_GUID:                PROJECT_CPP,
		"{fae04ec0-301f-11d3-bf4b-00c04f79efbc}": PROJECT_CSHARP,
		UNLOADED_PROJECT_GUID:                    PROJECT_NONE,
	} {
		if got := ProjectTypeFromGuid(guid); got != expected {
			t.Errorf("ProjectTypeFromGuid(%s): expected %v, got %v", guid, expected, got)
		}
	}
}

func TestProjectTypeText(t *testing.T) {
	for _, it := range ProjectTypes() {
		var parsed ProjectType
		if err := parsed.UnmarshalText([]byte(it.String())); err != nil || parsed != it {
			t.Errorf("ProjectType: expected %v, got %v (%v)", it, parsed, err)
		}
	}
	var invalid ProjectType
	if err := invalid.Set("java"); err == nil {
		t.Errorf("ProjectType.Set: expected an error")
	}
}

func TestConfiguration(t *testing.T) {
	cfg := MakeConfiguration("Release|x64")
	if cfg.Name != "Release" || cfg.Platform != "x64" {
		t.Errorf("MakeConfiguration: unexpected %#v", cfg)
	}
	if cfg.String() != "Release|x64" {
		t.Errorf("Configuration.String: expected Release|x64, got %v", cfg)
	}
	if MakeConfiguration("Debug").String() != "Debug" {
		t.Errorf("Configuration.String: expected Debug without platform")
	}
}

func TestIsIceBuilderEnabled(t *testing.T) {
	p := newFakeProject(t, PROJECT_CSHARP)
	if got := IsIceBuilderEnabled(p); got != PROJECT_CSHARP {
		t.Errorf("IsIceBuilderEnabled: expected %v, got %v", PROJECT_CSHARP, got)
	}
	p.enabled = false
	if got := IsIceBuilderEnabled(p); got != PROJECT_NONE {
		t.Errorf("IsIceBuilderEnabled: expected %v, got %v", PROJECT_NONE, got)
	}
	if got := IsIceBuilderEnabled(nil); got != PROJECT_NONE {
		t.Errorf("IsIceBuilderEnabled(nil): expected %v, got %v", PROJECT_NONE, got)
	}
}

func TestIsSliceFileName(t *testing.T) {
	for name, expected := range map[string]bool{
		"Hello.ice":       true,
		`slice\Hello.ice`: true,
		"Hello.ICE.cs":    false,
		"Hello.cpp":       false,
		"":                false,
	} {
		if got := IsSliceFileName(name); got != expected {
			t.Errorf("IsSliceFileName(%q): expected %v, got %v", name, expected, got)
		}
	}
}

var errFakeSave = errors.New("project file is locked")
