package slice

import (
	"testing"

	"github.com/poppolopoppo/icebuilder/internal/base"
)

func TestPropertyPageApply(t *testing.T) {
	p := newFakeProject(t, PROJECT_CPP)
	p.properties[PROPERTY_OUTPUT_DIR] = "generated"
	p.properties[PROPERTY_INCLUDE_DIRECTORIES] = "include"

	page := NewPropertyPage(nil, nil)
	if err := page.SetObjects(p); err != nil {
		t.Fatal(err)
	}
	if page.OutputDir != "generated" || !page.IncludeDirectories.Equals(base.NewStringSet("include")) {
		t.Errorf("SetObjects: unexpected page %v %v", page.OutputDir, page.IncludeDirectories)
	}
	if page.IsPageDirty() {
		t.Errorf("SetObjects: expected a clean page")
	}

	// no write, no save
	if err := page.Apply(); err != nil {
		t.Fatal(err)
	}
	if p.saves != 0 {
		t.Errorf("Apply: expected no save, got %d", p.saves)
	}

	page.SetOutputDir("generated")
	if page.IsPageDirty() {
		t.Errorf("SetOutputDir: expected an identical value to keep the page clean")
	}

	page.SetIncludeDirectories("include", "", "slice", "include")
	page.SetAdditionalOptions("--checksum")
	if !page.IsPageDirty() {
		t.Fatalf("SetIncludeDirectories: expected a dirty page")
	}
	if err := page.Apply(); err != nil {
		t.Fatal(err)
	}
	if p.saves != 1 {
		t.Errorf("Apply: expected 1 save, got %d", p.saves)
	}
	if got := p.properties[PROPERTY_INCLUDE_DIRECTORIES]; got != "include;slice" {
		t.Errorf("Apply: expected include;slice, got %q", got)
	}
	if p.properties[PROPERTY_ADDITIONAL_OPTIONS] != "--checksum" {
		t.Errorf("Apply: expected --checksum, got %q", p.properties[PROPERTY_ADDITIONAL_OPTIONS])
	}
	if page.IsPageDirty() {
		t.Errorf("Apply: expected a clean page")
	}

	if info := page.GetPageInfo(); info.Title != PROPERTY_PAGE_TITLE {
		t.Errorf("GetPageInfo: expected %q, got %q", PROPERTY_PAGE_TITLE, info.Title)
	}
}

func TestPropertyPageSaveFailure(t *testing.T) {
	p := newFakeProject(t, PROJECT_CSHARP)
	p.failSave = errFakeSave

	page := NewPropertyPage(nil, nil)
	if err := page.SetObjects(p); err != nil {
		t.Fatal(err)
	}
	page.SetOutputDir("generated")
	if err := page.Apply(); err != errFakeSave {
		t.Errorf("Apply: expected %v, got %v", errFakeSave, err)
	}
	if !page.IsPageDirty() {
		t.Errorf("Apply: expected the page to stay dirty after a failure")
	}
}

func TestPropertyPageProjectChanged(t *testing.T) {
	p := newFakeProject(t, PROJECT_CSHARP)
	other := newFakeProject(t, PROJECT_CSHARP)

	var projectChanged ProjectChangedEvent
	page := NewPropertyPage(nil, &projectChanged)
	if err := page.SetObjects(p); err != nil {
		t.Fatal(err)
	}
	if !projectChanged.Bound() {
		t.Fatalf("SetObjects: expected the page to listen to project changes")
	}

	p.properties[PROPERTY_OUTPUT_DIR] = "generated"
	if err := projectChanged.Invoke(other); err != nil {
		t.Fatal(err)
	}
	if page.OutputDir != "" {
		t.Errorf("ProjectChanged: expected changes of another project to be ignored, got %q", page.OutputDir)
	}

	if err := projectChanged.Invoke(p); err != nil {
		t.Fatal(err)
	}
	if page.OutputDir != "generated" {
		t.Errorf("ProjectChanged: expected the page to be reloaded, got %q", page.OutputDir)
	}

	page.SetAdditionalOptions("--tie")
	p.properties[PROPERTY_OUTPUT_DIR] = "other"
	if err := projectChanged.Invoke(p); err != nil {
		t.Fatal(err)
	}
	if page.OutputDir != "generated" || page.AdditionalOptions != "--tie" {
		t.Errorf("ProjectChanged: expected pending modifications to be kept")
	}

	page.Deactivate()
	if projectChanged.Bound() {
		t.Errorf("Deactivate: expected the page to stop listening to project changes")
	}
	if err := page.Apply(); err != nil {
		t.Errorf("Apply: expected a deactivated page to do nothing, got %v", err)
	}
}

func TestPropertyPageApplyFiresProjectChanged(t *testing.T) {
	var projectChanged ProjectChangedEvent
	p := newFakeProject(t, PROJECT_CSHARP)
	p.changed = &projectChanged

	page := NewPropertyPage(nil, &projectChanged)
	if err := page.SetObjects(p); err != nil {
		t.Fatal(err)
	}
	defer page.Deactivate()

	page.SetOutputDir("generated")
	if err := page.Apply(); err != nil {
		t.Fatal(err)
	}
	if p.saves != 1 || page.IsPageDirty() {
		t.Errorf("Apply: expected 1 save and a clean page, got %d save(s)", p.saves)
	}
	if page.OutputDir != "generated" {
		t.Errorf("Apply: expected generated, got %q", page.OutputDir)
	}
}

func TestPageMetadataProvider(t *testing.T) {
	provider := PageMetadataProvider{}
	if provider.AppliesTo() != SLICE_ITEM_TYPE {
		t.Errorf("AppliesTo: expected %q, got %q", SLICE_ITEM_TYPE, provider.AppliesTo())
	}
	pages, err := provider.GetPages().Join().Get()
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 1 || pages[0] != SliceCompilePageMetadata {
		t.Errorf("GetPages: unexpected %v", pages)
	}
}
