package slice

import (
	"testing"

	//lint:ignore ST1001 ignore dot imports warning
	. "github.com/poppolopoppo/icebuilder/utils"
)

func TestBuilderCSharpAddSliceFile(t *testing.T) {
	p := newFakeProject(t, PROJECT_CSHARP)
	p.properties[PROPERTY_OUTPUT_DIR] = "generated"
	scm := &lockedSourceControl{}
	builder := NewBuilder(NewGeneratedFileTracker(), scm)

	if err := builder.ProjectLoaded(p); err != nil {
		t.Fatal(err)
	}
	if err := builder.AddSliceFile(p, p.dir.File("Hello.ice")); err != nil {
		t.Fatal(err)
	}

	generated := p.dir.File("generated", "Hello.cs")
	if kind, ok := p.items[generated]; !ok || kind != GENERATED_CSHARP {
		t.Errorf("AddSliceFile: expected %v to be referenced, got %v", generated, p.items)
	}
	if generated.Exists() {
		t.Errorf("AddSliceFile: expected the temporary %v to be removed", generated)
	}
	if !p.dir.Folder("generated").Exists() {
		t.Errorf("AddSliceFile: expected the output directory to be created")
	}
	if !scm.checkouts.Contains(p.Path()) {
		t.Errorf("AddSliceFile: expected %v to be checked out", p.Path())
	}
	if !builder.Tracker.Contains(ProjectId(p), generated) {
		t.Errorf("AddSliceFile: expected %v to be tracked", generated)
	}
}

func TestBuilderCSharpKeepsExistingFile(t *testing.T) {
	p := newFakeProject(t, PROJECT_CSHARP, "Hello.ice")
	generated := p.dir.File("Hello.cs")
	touchFile(t, generated)

	builder := NewBuilder(NewGeneratedFileTracker(), nil)
	if err := builder.SetupGenerated(p); err != nil {
		t.Fatal(err)
	}
	if !generated.Exists() {
		t.Errorf("SetupGenerated: expected %v to be kept", generated)
	}
	if !p.HasItem(generated) {
		t.Errorf("SetupGenerated: expected %v to be referenced", generated)
	}
}

func TestBuilderAddSliceFileCollision(t *testing.T) {
	p := newFakeProject(t, PROJECT_CSHARP)
	touchFile(t, p.dir.File("Hello.cs"))

	builder := NewBuilder(NewGeneratedFileTracker(), nil)
	if err := builder.AddSliceFile(p, p.dir.File("Hello.ice")); err == nil {
		t.Errorf("AddSliceFile: expected a collision")
	}
	if len(p.sliceItems) != 0 || len(p.items) != 0 {
		t.Errorf("AddSliceFile: expected the project to be left untouched")
	}
}

func TestBuilderCppPartitioned(t *testing.T) {
	p := newFakeProject(t, PROJECT_CPP, "Hello.ice")
	p.setConfigurationProperty(debugWin32, PROPERTY_OUTPUT_DIR, "debug")
	p.setConfigurationProperty(releaseWin32, PROPERTY_OUTPUT_DIR, "release")

	builder := NewBuilder(NewGeneratedFileTracker(), nil)
	if err := builder.SetupGenerated(p); err != nil {
		t.Fatal(err)
	}
	if p.reloads != 1 {
		t.Errorf("SetupGenerated: expected the project to be reloaded once, got %d", p.reloads)
	}

	debugSource := p.dir.File("debug", "Hello.cpp")
	releaseHeader := p.dir.File("release", "Hello.h")
	if p.items[debugSource] != GENERATED_SOURCE || p.items[releaseHeader] != GENERATED_HEADER {
		t.Errorf("SetupGenerated: unexpected items %v", p.items)
	}
	if cfgs := p.excluded[debugSource]; len(cfgs) != 1 || cfgs[0] != releaseWin32 {
		t.Errorf("SetupGenerated: expected %v to be excluded from %v, got %v", debugSource, releaseWin32, cfgs)
	}
	if cfgs := p.excluded[releaseHeader]; len(cfgs) != 1 || cfgs[0] != debugWin32 {
		t.Errorf("SetupGenerated: expected %v to be excluded from %v, got %v", releaseHeader, debugWin32, cfgs)
	}
	if !p.dir.Folder("release").Exists() {
		t.Errorf("SetupGenerated: expected output directories to be created")
	}

	// switching to a single output directory reaps the partitioned files
	for _, f := range []Filename{debugSource, releaseHeader} {
		touchFile(t, f)
	}
	p.cfgProperties = make(map[Configuration]map[string]string)
	p.properties[PROPERTY_OUTPUT_DIR] = "generated"

	if err := builder.SetupGenerated(p); err != nil {
		t.Fatal(err)
	}
	for _, f := range []Filename{debugSource, releaseHeader} {
		if f.Exists() || p.HasItem(f) {
			t.Errorf("SetupGenerated: expected %v to be reaped", f)
		}
	}
	if !p.HasItem(p.dir.File("generated", "Hello.cpp")) {
		t.Errorf("SetupGenerated: expected generated/Hello.cpp to be referenced")
	}
}

func TestBuilderIgnoresDisabledProject(t *testing.T) {
	p := newFakeProject(t, PROJECT_CPP, "Hello.ice")
	p.enabled = false

	builder := NewBuilder(NewGeneratedFileTracker(), nil)
	if err := builder.ProjectLoaded(p); err != nil {
		t.Fatal(err)
	}
	if err := builder.SetupGenerated(p); err != nil {
		t.Fatal(err)
	}
	if len(p.items) != 0 || builder.Tracker.ContainsProject(ProjectId(p)) {
		t.Errorf("SetupGenerated: expected a disabled project to be ignored")
	}

	p.enabled = true
	if err := builder.ProjectLoaded(p); err != nil {
		t.Fatal(err)
	}
	builder.ProjectUnloaded(p)
	if builder.Tracker.ContainsProject(ProjectId(p)) {
		t.Errorf("ProjectUnloaded: expected the baseline to be dropped")
	}
}
