package slice

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/poppolopoppo/icebuilder/internal/base"

	//lint:ignore ST1001 ignore dot imports warning
	. "github.com/poppolopoppo/icebuilder/utils"
)

/***************************************
 * ProjectType
 ***************************************/

type ProjectType byte

const (
	PROJECT_NONE ProjectType = iota
	PROJECT_CPP
	PROJECT_CSHARP
)

func ProjectTypes() []ProjectType {
	return []ProjectType{PROJECT_NONE, PROJECT_CPP, PROJECT_CSHARP}
}

func ProjectTypeFromGuid(guid string) ProjectType {
	switch strings.ToUpper(guid) {
	case CPP_PROJECT_GUID, CPP_STOREAPP_PROJECT_GUID:
		return PROJECT_CPP
	case CSHARP_PROJECT_GUID:
		return PROJECT_CSHARP
	default:
		return PROJECT_NONE
	}
}

func (x ProjectType) String() string {
	switch x {
	case PROJECT_NONE:
		return "NONE"
	case PROJECT_CPP:
		return "CPP"
	case PROJECT_CSHARP:
		return "CSHARP"
	default:
		base.UnexpectedValue(x)
		return ""
	}
}
func (x ProjectType) Description() string {
	switch x {
	case PROJECT_NONE:
		return "project without Slice support"
	case PROJECT_CPP:
		return "Visual C++ project, compiled with slice2cpp"
	case PROJECT_CSHARP:
		return "C# project, compiled with slice2cs"
	default:
		base.UnexpectedValue(x)
		return ""
	}
}
func (x *ProjectType) Set(in string) error {
	for _, it := range ProjectTypes() {
		if strings.EqualFold(it.String(), in) {
			*x = it
			return nil
		}
	}
	return base.MakeUnexpectedValueError(x, in)
}
func (x ProjectType) MarshalText() ([]byte, error) {
	return []byte(x.String()), nil
}
func (x *ProjectType) UnmarshalText(data []byte) error {
	return x.Set(string(data))
}

/***************************************
 * Configuration
 ***************************************/

type Configuration struct {
	Name     string
	Platform string
}

func MakeConfiguration(displayName string) Configuration {
	if name, platform, ok := strings.Cut(displayName, "|"); ok {
		return Configuration{Name: name, Platform: platform}
	}
	return Configuration{Name: displayName}
}

// String returns the display name, like "Debug|Win32".
func (x Configuration) String() string {
	if len(x.Platform) == 0 {
		return x.Name
	}
	return fmt.Sprint(x.Name, "|", x.Platform)
}
func (x Configuration) Equals(o Configuration) bool {
	return x == o
}

/***************************************
 * GeneratedItemKind
 ***************************************/

type GeneratedItemKind byte

const (
	GENERATED_SOURCE GeneratedItemKind = iota
	GENERATED_HEADER
	GENERATED_CSHARP
)

func (x GeneratedItemKind) String() string {
	switch x {
	case GENERATED_SOURCE:
		return "SOURCE"
	case GENERATED_HEADER:
		return "HEADER"
	case GENERATED_CSHARP:
		return "CSHARP"
	default:
		base.UnexpectedValue(x)
		return ""
	}
}

// ItemType is the MSBuild item type used to reference a generated file.
func (x GeneratedItemKind) ItemType() string {
	switch x {
	case GENERATED_SOURCE:
		return "ClCompile"
	case GENERATED_HEADER:
		return "ClInclude"
	case GENERATED_CSHARP:
		return "Compile"
	default:
		base.UnexpectedValue(x)
		return ""
	}
}

// Filter is the solution explorer folder of generated C++ files.
func (x GeneratedItemKind) Filter() string {
	switch x {
	case GENERATED_SOURCE:
		return "Source Files"
	case GENERATED_HEADER:
		return "Header Files"
	default:
		return ""
	}
}

/***************************************
 * Project model consumed from the host
 ***************************************/

type PropertyStorage interface {
	// GetProperty returns the unevaluated value of a property, or "" when it is not defined.
	GetProperty(name string) (string, error)
	// SetProperty writes a property in the "IceBuilder" property group.
	SetProperty(name, value string) error
}

type ConfigurationProvider interface {
	Configurations() []Configuration
	ActiveConfiguration() Configuration
	// GetConfigurationProperty returns the raw value of a property as seen by one configuration.
	GetConfigurationProperty(cfg Configuration, name string) (string, error)
}

type Evaluator interface {
	// Evaluate expands $(Macro) placeholders in the context of a configuration.
	Evaluate(cfg Configuration, template string) (string, error)
}

type EvaluatorFunc func(Configuration, string) (string, error)

func (fn EvaluatorFunc) Evaluate(cfg Configuration, template string) (string, error) {
	return fn(cfg, template)
}

type ProjectItemRemover interface {
	// RemoveItem drops the item referencing a file, returns false when the project had none.
	RemoveItem(f Filename) (bool, error)
}

type ItemStorage interface {
	ProjectItemRemover
	// SliceItems lists the Slice inputs, as project relative item names.
	SliceItems() ([]string, error)
	AddSliceItem(f Filename) error
	HasItem(f Filename) bool
	AddItem(f Filename, kind GeneratedItemKind) error
	ExcludeFileInConfiguration(f Filename, cfg Configuration) error
}

type Project interface {
	PropertyStorage
	ConfigurationProvider
	ItemStorage
	Evaluator

	Name() string
	Path() Filename
	Dir() Directory
	Type() ProjectType
	IceBuilderEnabled() bool

	// Reload drops cached evaluations, so property reads see the content on disk.
	Reload() error
	Save() error
}

// ProjectId returns the key of a project in the generated file tracker.
func ProjectId(p Project) string {
	return p.Path().String()
}

// IsIceBuilderEnabled returns the project type when Slice files can be compiled by the project.
func IsIceBuilderEnabled(p Project) ProjectType {
	if base.IsNil(p) {
		return PROJECT_NONE
	}
	if t := p.Type(); t != PROJECT_NONE && p.IceBuilderEnabled() {
		return t
	}
	return PROJECT_NONE
}

func IsSliceFileName(name string) bool {
	return len(name) > 0 && filepath.Ext(ToOSPath(name)) == SLICE_EXT
}

func (cfg Configuration) evaluateDirectory(p Project, template string) (Directory, error) {
	evaluated, err := p.Evaluate(cfg, template)
	if err != nil {
		return Directory{}, fmt.Errorf("evaluate %q for %v: %w", template, cfg, err)
	}
	return p.Dir().AbsoluteFolder(evaluated), nil
}
