package msbuild

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/poppolopoppo/icebuilder/slice"

	//lint:ignore ST1001 ignore dot imports warning
	. "github.com/poppolopoppo/icebuilder/utils"
)

func TestPackagesConfig(t *testing.T) {
	dir := MakeDirectory(t.TempDir())

	config, err := LoadPackagesConfig(dir)
	if err != nil || len(config.Packages) != 0 {
		t.Fatalf("LoadPackagesConfig: expected an empty list without packages.config, got %v (%v)", config.Packages, err)
	}

	if !config.Add(PackageDescriptor{Id: "zeroc.ice.net", Version: "3.7.10"}) {
		t.Errorf("Add: expected a new package to be added")
	}
	if config.Add(PackageDescriptor{Id: "ZeroC.Ice.Net", Version: "3.7.10"}) {
		t.Errorf("Add: expected an identical package to be ignored")
	}
	if !config.Add(PackageDescriptor{Id: "zeroc.ice.net", Version: "3.7.11", TargetFramework: "net45"}) {
		t.Errorf("Add: expected a new version to replace the previous one")
	}
	if err := config.Save(); err != nil {
		t.Fatal(err)
	}

	reloaded, err := LoadPackagesConfig(dir)
	if err != nil {
		t.Fatal(err)
	}
	if pkg, ok := reloaded.Find("zeroc.ice.net"); !ok || pkg.Version != "3.7.11" || pkg.TargetFramework != "net45" {
		t.Errorf("LoadPackagesConfig: expected zeroc.ice.net 3.7.11, got %v", reloaded.Packages)
	}
	if reloaded.Contains(slice.ICEBUILDER_NUGET_PACKAGE) {
		t.Errorf("Contains: expected %s to be missing", slice.ICEBUILDER_NUGET_PACKAGE)
	}
}

func TestNuGetInstallPackagesConfig(t *testing.T) {
	dir := MakeDirectory(t.TempDir())
	p := writeTestProject(t, dir, "Hello.vcxproj", testCppProject)
	nuget := NewNuGetPackageManager(nil)

	if nuget.IsPackageInstalled(p, slice.ICEBUILDER_NUGET_PACKAGE) {
		t.Errorf("IsPackageInstalled: expected the package to be missing")
	}
	for i := 0; i < 2; i++ {
		if err := nuget.InstallLatestPackage(p, slice.ICEBUILDER_NUGET_PACKAGE); err != nil {
			t.Fatal(err)
		}
	}
	if !nuget.IsPackageInstalled(p, slice.ICEBUILDER_NUGET_PACKAGE) {
		t.Errorf("InstallLatestPackage: expected the package to be installed")
	}

	props, targets := 0, 0
	for i, it := range p.root().ChildrenNamed("Import") {
		switch it.AttrOrEmpty("Project") {
		case `$(SolutionDir)packages\zeroc.icebuilder.msbuild.5.0.9\build\zeroc.icebuilder.msbuild.props`:
			props++
			if i != 0 {
				t.Errorf("InstallLatestPackage: expected props to be imported first")
			}
		case `$(SolutionDir)packages\zeroc.icebuilder.msbuild.5.0.9\build\zeroc.icebuilder.msbuild.targets`:
			targets++
			if condition := it.AttrOrEmpty("Condition"); condition != `Exists('`+it.AttrOrEmpty("Project")+`')` {
				t.Errorf("InstallLatestPackage: unexpected import condition %q", condition)
			}
		}
	}
	if props != 1 || targets != 1 {
		t.Errorf("InstallLatestPackage: expected one props and one targets import, got %d and %d", props, targets)
	}

	config, _ := LoadPackagesConfig(dir)
	if pkg, ok := config.Find(slice.ICEBUILDER_NUGET_PACKAGE); !ok || pkg.TargetFramework != ICEBUILDER_NUGET_FRAMEWORK {
		t.Errorf("InstallLatestPackage: expected a native package, got %v", config.Packages)
	}
}

func TestNuGetInstallPackageReference(t *testing.T) {
	dir := MakeDirectory(t.TempDir())
	p := writeTestProject(t, dir, "Hello.csproj", `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
  </PropertyGroup>
</Project>`)

	nuget := NewNuGetPackageManager(nil)
	nuget.Version = "5.0.10"
	if err := nuget.InstallLatestPackage(p, slice.ICEBUILDER_NUGET_PACKAGE); err != nil {
		t.Fatal(err)
	}
	reference := nuget.packageReference(p, slice.ICEBUILDER_NUGET_PACKAGE)
	if reference == nil || reference.AttrOrEmpty("Version") != "5.0.10" {
		t.Fatalf("InstallLatestPackage: expected a package reference, got %v", reference)
	}
	if !p.IceBuilderEnabled() {
		t.Errorf("InstallLatestPackage: expected the project to be enabled")
	}
	if _, err := os.Stat(dir.File(PACKAGES_CONFIG).String()); !os.IsNotExist(err) {
		t.Errorf("InstallLatestPackage: expected no packages.config for SDK style projects")
	}
}

func TestNuGetRestore(t *testing.T) {
	dir := MakeDirectory(t.TempDir())
	p := writeTestProject(t, dir, "Hello.vcxproj", testCppProject)

	nuget := NewNuGetPackageManager(nil)
	if err := nuget.Restore(context.Background(), p); err != nil {
		t.Errorf("Restore: expected nothing to be done by default, got %v", err)
	}

	t.Setenv("PATH", t.TempDir())
	nuget.RunRestore = true
	if err := nuget.Restore(context.Background(), p); !errors.Is(err, ErrNuGetNotFound) {
		t.Errorf("Restore: expected %v, got %v", ErrNuGetNotFound, err)
	}

	called := false
	nuget.OnBatchEnd(func() { called = true })
	if !called {
		t.Errorf("OnBatchEnd: expected the callback to be invoked")
	}
}
