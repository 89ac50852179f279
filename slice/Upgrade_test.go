package slice

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type fakePackageManager struct {
	installed  map[string]bool
	restoreErr error
	installErr error
	restores   int

	holdBatchEnd bool
	batchEnd     func()
}

func newFakePackageManager() *fakePackageManager {
	return &fakePackageManager{installed: make(map[string]bool)}
}

func (x *fakePackageManager) IsPackageInstalled(p Project, packageId string) bool {
	return x.installed[p.Name()+"/"+packageId]
}
func (x *fakePackageManager) InstallLatestPackage(p Project, packageId string) error {
	if x.installErr != nil {
		return x.installErr
	}
	x.installed[p.Name()+"/"+packageId] = true
	return nil
}
func (x *fakePackageManager) Restore(context.Context, Project) error {
	x.restores++
	return x.restoreErr
}
func (x *fakePackageManager) OnBatchEnd(fn func()) {
	if x.holdBatchEnd {
		x.batchEnd = fn
		return
	}
	fn()
}

type fakeUpgradeProgress struct {
	reports  []string
	finished int
}

func (x *fakeUpgradeProgress) ReportProgress(project string, index int) {
	x.reports = append(x.reports, fmt.Sprint(index, ":", project))
}
func (x *fakeUpgradeProgress) Finished() { x.finished++ }

func newUpgradableProjects(t *testing.T, names ...string) (projects []Project) {
	for _, name := range names {
		p := newFakeProject(t, PROJECT_CPP, "Hello.ice")
		p.name = name
		p.legacy = true
		projects = append(projects, p)
	}
	return
}

func TestTryUpgrade(t *testing.T) {
	projects := newUpgradableProjects(t, "A", "B")
	projects[1].(*fakeProject).enabled = false

	upgradable := TryUpgrade(projects)
	if len(upgradable) != 1 {
		t.Fatalf("TryUpgrade: expected 1 project, got %v", upgradable)
	}
	if _, ok := upgradable["A"]; !ok {
		t.Errorf("TryUpgrade: expected project A, got %v", upgradable)
	}
}

func TestUpgrade(t *testing.T) {
	projects := newUpgradableProjects(t, "C", "A", "B")
	nuget := newFakePackageManager()
	nuget.restoreErr = errors.New("offline")
	progress := &fakeUpgradeProgress{}

	upgraded, err := Upgrade(context.Background(), TryUpgrade(projects), nuget, progress, DirectDispatcher{}).Join().Get()
	if err != nil {
		t.Fatal(err)
	}
	if upgraded != 3 {
		t.Errorf("Upgrade: expected 3 projects, got %d", upgraded)
	}
	if fmt.Sprint(progress.reports) != "[1:A 2:B 3:C]" {
		t.Errorf("ReportProgress: unexpected order %v", progress.reports)
	}
	if progress.finished != 1 {
		t.Errorf("Finished: expected 1 call, got %d", progress.finished)
	}
	for _, it := range projects {
		p := it.(*fakeProject)
		if p.saves != 1 || p.legacy {
			t.Errorf("%s: expected the project to be upgraded and saved once, got %d saves", p.name, p.saves)
		}
		if !nuget.IsPackageInstalled(p, ICEBUILDER_NUGET_PACKAGE) {
			t.Errorf("%s: expected %s to be installed", p.name, ICEBUILDER_NUGET_PACKAGE)
		}
	}
	if nuget.restores != 3 {
		t.Errorf("Restore: expected 3 calls, got %d", nuget.restores)
	}

	// already upgraded projects are not saved again
	upgraded, err = Upgrade(context.Background(), TryUpgrade(projects), nuget, progress, DirectDispatcher{}).Join().Get()
	if err != nil || upgraded != 3 {
		t.Errorf("Upgrade: expected 3 projects, got %d (%v)", upgraded, err)
	}
	if p := projects[0].(*fakeProject); p.saves != 1 {
		t.Errorf("Upgrade: expected no save without modification, got %d", p.saves)
	}
}

func TestUpgradeContinuesAfterFailure(t *testing.T) {
	projects := newUpgradableProjects(t, "A", "B")
	projects[0].(*fakeProject).failSave = errFakeSave
	progress := &fakeUpgradeProgress{}

	upgraded, err := Upgrade(context.Background(), TryUpgrade(projects), newFakePackageManager(), progress, DirectDispatcher{}).Join().Get()
	if !errors.Is(err, errFakeSave) {
		t.Errorf("Upgrade: expected %v, got %v", errFakeSave, err)
	}
	if upgraded != 1 {
		t.Errorf("Upgrade: expected 1 upgraded project, got %d", upgraded)
	}
	if len(progress.reports) != 2 || progress.finished != 1 {
		t.Errorf("Upgrade: expected every project to be reported, got %v", progress.reports)
	}
}

func TestUpgradeCanceled(t *testing.T) {
	projects := newUpgradableProjects(t, "A", "B")
	progress := &fakeUpgradeProgress{}
	dispatcher := NewChannelDispatcher()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	future := Upgrade(ctx, TryUpgrade(projects), newFakePackageManager(), progress, dispatcher)
	dispatcher.Pump(future.Done())

	upgraded, err := future.Join().Get()
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Upgrade: expected %v, got %v", context.Canceled, err)
	}
	if upgraded != 0 || len(progress.reports) != 0 {
		t.Errorf("Upgrade: expected no project to be upgraded, got %d", upgraded)
	}
	if progress.finished != 1 {
		t.Errorf("Finished: expected to be reported even when canceled, got %d", progress.finished)
	}
	for _, it := range projects {
		if p := it.(*fakeProject); !p.legacy || p.saves != 0 {
			t.Errorf("%s: expected the project to be left untouched", p.name)
		}
	}
}

func TestUpgradeWithChannelDispatcher(t *testing.T) {
	projects := newUpgradableProjects(t, "A", "B", "C")
	progress := &fakeUpgradeProgress{}
	dispatcher := NewChannelDispatcher()

	future := Upgrade(context.Background(), TryUpgrade(projects), newFakePackageManager(), progress, dispatcher)
	dispatcher.Pump(future.Done())

	if upgraded, err := future.Join().Get(); err != nil || upgraded != 3 {
		t.Errorf("Upgrade: expected 3 projects, got %d (%v)", upgraded, err)
	}
	if fmt.Sprint(progress.reports) != "[1:A 2:B 3:C]" || progress.finished != 1 {
		t.Errorf("Upgrade: unexpected progress %v (finished %d)", progress.reports, progress.finished)
	}
}

func TestUpgradeReferencesHintPath(t *testing.T) {
	p := newFakeProject(t, PROJECT_CSHARP, "Hello.ice")
	ice := &fakeReference{name: "Ice", hintPath: `$(IceAssembliesDir)\Ice.dll`, hasHint: true}
	glacier := &fakeReference{name: "Glacier2", hintPath: `C:\Ice\Glacier2.dll`, hasHint: true}
	system := &fakeReference{name: "System.Xml", hintPath: `$(IceAssembliesDir)\System.Xml.dll`, hasHint: true}
	p.references = []*fakeReference{ice, glacier, system}

	if !UpgradeReferencesHintPath(p, `packages\zeroc.ice.net.3.7.10\lib\net45`) {
		t.Errorf("UpgradeReferencesHintPath: expected a modification")
	}
	if expected := `packages\zeroc.ice.net.3.7.10\lib\net45\Ice.dll`; ice.hintPath != expected {
		t.Errorf("Ice: expected %q, got %q", expected, ice.hintPath)
	}
	if glacier.hintPath != `C:\Ice\Glacier2.dll` || system.hintPath != `$(IceAssembliesDir)\System.Xml.dll` {
		t.Errorf("UpgradeReferencesHintPath: expected other references to be left untouched")
	}

	ice.hintPath = `$(IceAssembliesDir)\Ice.dll`
	if !UpgradeReferencesHintPath(p, "assemblies") {
		t.Errorf("UpgradeReferencesHintPath: expected a modification")
	}
	if _, ok := ice.HintPath(); ok {
		t.Errorf("Ice: expected the hint path to be removed, got %q", ice.hintPath)
	}
	if UpgradeReferencesHintPath(p, "assemblies") {
		t.Errorf("UpgradeReferencesHintPath: expected no modification the second time")
	}
}

func TestUpgradeFinishedAfterNuGetBatch(t *testing.T) {
	projects := newUpgradableProjects(t, "A")
	nuget := newFakePackageManager()
	nuget.holdBatchEnd = true
	progress := &fakeUpgradeProgress{}

	upgraded, err := Upgrade(context.Background(), TryUpgrade(projects), nuget, progress, DirectDispatcher{}).Join().Get()
	if err != nil || upgraded != 1 {
		t.Fatalf("Upgrade: expected 1 project, got %d (%v)", upgraded, err)
	}
	if progress.finished != 0 {
		t.Errorf("Finished: expected to wait for the end of the NuGet batch, got %d calls", progress.finished)
	}
	if nuget.batchEnd == nil {
		t.Fatal("OnBatchEnd: expected a callback to be registered")
	}

	nuget.batchEnd()
	if progress.finished != 1 {
		t.Errorf("Finished: expected 1 call after the NuGet batch, got %d", progress.finished)
	}
}
