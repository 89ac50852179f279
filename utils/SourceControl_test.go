package utils

import (
	"io"
	"os"
	"testing"
)

type fakeSourceControl struct {
	DummySourceControl
	inRepository bool
	checkedOut   bool
	checkOuts    int
}

func (x *fakeSourceControl) IsInRepository(Filename) bool { return x.inRepository }
func (x *fakeSourceControl) IsCheckedOut(Filename) bool   { return x.checkedOut }
func (x *fakeSourceControl) CheckOut(Filename) error {
	x.checkOuts++
	x.checkedOut = true
	return nil
}

func TestEnsureFileIsCheckedOut(t *testing.T) {
	f := MakeFilename("project.vcxproj")
	for _, tc := range []struct {
		name         string
		inRepository bool
		checkedOut   bool
		expected     int
	}{
		{"untracked", false, false, 0},
		{"checked out", true, true, 0},
		{"read-only", true, false, 1},
	} {
		scm := &fakeSourceControl{inRepository: tc.inRepository, checkedOut: tc.checkedOut}
		if err := EnsureFileIsCheckedOut(scm, f); err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
		if scm.checkOuts != tc.expected {
			t.Errorf("%s: expected %d check out, got %d", tc.name, tc.expected, scm.checkOuts)
		}
	}
}

func TestGetSourceControlProviderDummy(t *testing.T) {
	dir := UFS.Dir(t.TempDir())
	scm := GetSourceControlProvider(dir)
	if _, ok := scm.(*GitSourceControl); ok {
		t.Skip("temporary directory is inside a git repository")
	}

	f := dir.File("project.csproj")
	if err := UFS.Create(f, func(io.Writer) error { return nil }); err != nil {
		t.Fatal(err)
	}
	if scm.IsInRepository(f) {
		t.Errorf("IsInRepository: expected false outside of a repository")
	}
	status := SourceControlFileStatus{Path: f}
	if err := scm.GetFileStatus(&status); err != nil || !status.State.Ignored() {
		t.Errorf("GetFileStatus: expected IGNORED, got %v (%v)", status.State, err)
	}
}

func TestGitSourceControlCheckOut(t *testing.T) {
	dir := UFS.Dir(t.TempDir())
	UFS.Mkdir(dir.Folder(".git"))

	git, err := NewGitSourceControl(dir)
	if err != nil {
		t.Skipf("git is not available: %v", err)
	}

	f := dir.File("project.vcxproj")
	if err := UFS.Create(f, func(io.Writer) error { return nil }); err != nil {
		t.Fatal(err)
	}
	if err := SetWritable(f, false); err != nil {
		t.Fatal(err)
	}
	if os.Geteuid() != 0 && git.IsCheckedOut(f) {
		t.Errorf("IsCheckedOut: expected read-only file to be checked in")
	}
	if err := git.CheckOut(f); err != nil {
		t.Fatal(err)
	}
	if !git.IsCheckedOut(f) {
		t.Errorf("IsCheckedOut: expected file to be writable after check out")
	}
}

func TestSourceControlStateText(t *testing.T) {
	for _, it := range GetSourceControlStates() {
		var parsed SourceControlState
		if err := parsed.UnmarshalText([]byte(it.String())); err != nil || parsed != it {
			t.Errorf("SourceControlState: expected %v, got %v (%v)", it, parsed, err)
		}
	}
}
