package msbuild

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/poppolopoppo/icebuilder/internal/base"
	internal_io "github.com/poppolopoppo/icebuilder/internal/io"
	"github.com/poppolopoppo/icebuilder/slice"

	//lint:ignore ST1001 ignore dot imports warning
	. "github.com/poppolopoppo/icebuilder/utils"
)

const (
	PACKAGES_CONFIG = "packages.config"

	// version installed by the upgrade when a project had no IceBuilder package
	ICEBUILDER_NUGET_VERSION   = "5.0.9"
	ICEBUILDER_NUGET_FRAMEWORK = "native"
)

var ErrNuGetNotFound = errors.New("nuget: command not found in PATH")

/***************************************
 * packages.config
 ***************************************/

type PackageDescriptor struct {
	Id              string
	Version         string
	TargetFramework string
}

type PackagesConfig struct {
	Path     Filename
	Packages []PackageDescriptor
}

func LoadPackagesConfig(dir Directory) (PackagesConfig, error) {
	config := PackagesConfig{Path: dir.File(PACKAGES_CONFIG)}
	if !config.Path.Exists() {
		return config, nil
	}

	document, err := LoadDocument(config.Path)
	if err != nil {
		return config, err
	}
	for _, it := range document.Root.ChildrenNamed("package") {
		config.Packages = append(config.Packages, PackageDescriptor{
			Id:              it.AttrOrEmpty("id"),
			Version:         it.AttrOrEmpty("version"),
			TargetFramework: it.AttrOrEmpty("targetFramework"),
		})
	}
	return config, nil
}

func (x *PackagesConfig) Find(id string) (*PackageDescriptor, bool) {
	for i, it := range x.Packages {
		if strings.EqualFold(it.Id, id) {
			return &x.Packages[i], true
		}
	}
	return nil, false
}

func (x *PackagesConfig) Contains(id string) bool {
	_, ok := x.Find(id)
	return ok
}

// Add returns false when the package was already listed.
func (x *PackagesConfig) Add(pkg PackageDescriptor) bool {
	if it, ok := x.Find(pkg.Id); ok {
		if it.Version == pkg.Version {
			return false
		}
		*it = pkg
		return true
	}
	x.Packages = append(x.Packages, pkg)
	return true
}

func (x *PackagesConfig) Document() *Document {
	root := NewElement("packages")
	for _, it := range x.Packages {
		attrs := []internal_io.XmlAttr{
			{Name: "id", Value: it.Id},
			{Name: "version", Value: it.Version},
		}
		if len(it.TargetFramework) > 0 {
			attrs = append(attrs, internal_io.XmlAttr{Name: "targetFramework", Value: it.TargetFramework})
		}
		root.AddChild(NewElement("package", attrs...))
	}
	return NewDocument(root)
}

func (x *PackagesConfig) Save() error {
	return x.Document().SaveTo(x.Path)
}

/***************************************
 * PackageManager: installs the IceBuilder package in project files
 ***************************************/

type NuGetPackageManager struct {
	// Version is the version written for new package references.
	Version string
	// Restore runs the nuget/dotnet command line when set.
	RunRestore    bool
	SourceControl SourceControlProvider
}

func NewNuGetPackageManager(scm SourceControlProvider) *NuGetPackageManager {
	return &NuGetPackageManager{Version: ICEBUILDER_NUGET_VERSION, SourceControl: scm}
}

func asProjectFile(p slice.Project) (*ProjectFile, error) {
	if project, ok := p.(*ProjectFile); ok {
		return project, nil
	}
	return nil, fmt.Errorf("nuget: unsupported project %T", p)
}

func (x *NuGetPackageManager) packageReference(project *ProjectFile, packageId string) *Element {
	var result *Element
	project.root().Walk(func(parent, it *Element) bool {
		if it.Name == "PackageReference" && strings.EqualFold(it.AttrOrEmpty("Include"), packageId) {
			result = it
		}
		return result == nil
	})
	return result
}

func (x *NuGetPackageManager) IsPackageInstalled(p slice.Project, packageId string) bool {
	project, err := asProjectFile(p)
	if err != nil {
		return false
	}
	if x.packageReference(project, packageId) != nil {
		return true
	}
	packages, err := LoadPackagesConfig(project.Dir())
	return err == nil && packages.Contains(packageId)
}

// InstallLatestPackage adds a PackageReference to SDK style projects, others use packages.config with explicit imports.
func (x *NuGetPackageManager) InstallLatestPackage(p slice.Project, packageId string) error {
	project, err := asProjectFile(p)
	if err != nil {
		return err
	}
	if project.IsSdkStyle() || project.packageReferenceStyle() {
		return x.installPackageReference(project, packageId)
	}
	return x.installPackagesConfig(project, packageId)
}

func (x *ProjectFile) packageReferenceStyle() bool {
	style, _ := x.GetProperty("RestoreProjectStyle")
	return strings.EqualFold(style, "PackageReference")
}

func (x *NuGetPackageManager) installPackageReference(project *ProjectFile, packageId string) error {
	if it := x.packageReference(project, packageId); it != nil {
		if version, _ := it.Attr("Version"); version == x.Version {
			return nil
		}
		it.SetAttr("Version", x.Version)
	} else {
		itemGroupFor(project.document, "PackageReference").AddChild(NewElement("PackageReference",
			internal_io.XmlAttr{Name: "Include", Value: packageId},
			internal_io.XmlAttr{Name: "Version", Value: x.Version}))
	}
	base.LogVerbose(LogMsBuild, "%s: added package reference %s %s", project.Name(), packageId, x.Version)
	project.setDirty()
	return nil
}

func (x *NuGetPackageManager) installPackagesConfig(project *ProjectFile, packageId string) error {
	packages, err := LoadPackagesConfig(project.Dir())
	if err != nil {
		return err
	}

	framework := ICEBUILDER_NUGET_FRAMEWORK
	if project.Type() == slice.PROJECT_CSHARP {
		framework = ""
	}
	if packages.Add(PackageDescriptor{Id: packageId, Version: x.Version, TargetFramework: framework}) {
		if x.SourceControl != nil {
			if err := EnsureFileIsCheckedOut(x.SourceControl, packages.Path); err != nil {
				return err
			}
		}
		if err := packages.Save(); err != nil {
			return err
		}
	}

	buildDir := fmt.Sprintf(`$(SolutionDir)packages\%s.%s\build\`, packageId, x.Version)
	for _, ext := range []string{".props", ".targets"} {
		target := buildDir + packageId + ext
		if project.hasImport(target) {
			continue
		}
		importElt := NewElement("Import",
			internal_io.XmlAttr{Name: "Project", Value: target},
			internal_io.XmlAttr{Name: "Condition", Value: fmt.Sprintf("Exists('%s')", target)})
		if ext == ".props" {
			project.root().InsertChild(0, importElt)
		} else {
			project.root().AddChild(importElt)
		}
		project.setDirty()
	}

	base.LogVerbose(LogMsBuild, "%s: installed %s %s with %s", project.Name(), packageId, x.Version, PACKAGES_CONFIG)
	return nil
}

func (x *ProjectFile) hasImport(target string) (found bool) {
	x.root().Walk(func(parent, it *Element) bool {
		found = it.Name == "Import" && strings.EqualFold(it.AttrOrEmpty("Project"), target)
		return !found
	})
	return
}

// Restore downloads the packages of a project, it does nothing unless RunRestore is set.
func (x *NuGetPackageManager) Restore(ctx context.Context, p slice.Project) error {
	if !x.RunRestore {
		return nil
	}
	project, err := asProjectFile(p)
	if err != nil {
		return err
	}

	var executable string
	var args []string
	if project.IsSdkStyle() {
		executable, args = "dotnet", []string{"restore", project.Path().String()}
	} else {
		executable, args = "nuget", []string{"restore", project.Path().String(),
			"-SolutionDirectory", project.SolutionDir.String(), "-NonInteractive"}
	}

	path, err := exec.LookPath(executable)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNuGetNotFound, err)
	}

	// interrupts are handled by canceling ctx, not by the child process
	return internal_io.RunProcess(ctx, MakeFilename(path), args,
		internal_io.OptionProcessWorkingDir(project.Dir()),
		internal_io.OptionProcessNewProcessGroup,
		internal_io.OptionProcessCaptureOutputIf(base.IsLogLevelActive(base.LOG_VERBOSE)),
		internal_io.OptionProcessOutput(func(line string) error {
			base.LogInfo(LogMsBuild, "%s: %s", executable, line)
			return nil
		}))
}

// OnBatchEnd invokes fn immediately, packages are installed synchronously.
func (x *NuGetPackageManager) OnBatchEnd(fn func()) {
	fn()
}
