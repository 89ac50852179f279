package slice

import (
	"errors"
	"strings"
	"testing"
)

func TestCollisionCSharp(t *testing.T) {
	p := newFakeProject(t, PROJECT_CSHARP)
	p.properties[PROPERTY_OUTPUT_DIR] = "generated"
	sliceFile := p.dir.File("Hello.ice")

	if err := CheckGeneratedFileIsValid(p, sliceFile); err != nil {
		t.Errorf("CheckGeneratedFileIsValid: expected no collision, got %v", err)
	}
	if p.dir.Folder("generated").Exists() {
		t.Errorf("CheckGeneratedFileIsValid: expected no output directory to be created")
	}

	touchFile(t, p.dir.File("generated", "Hello.cs"))

	err := CheckGeneratedFileIsValid(p, sliceFile)
	var collision *CollisionError
	if !errors.As(err, &collision) {
		t.Fatalf("CheckGeneratedFileIsValid: expected a collision, got %v", err)
	}
	if len(collision.Existing) != 1 || collision.Existing[0] != "generated/Hello.cs" || collision.Adding != "Hello.ice" {
		t.Errorf("CollisionError: unexpected %#v", collision)
	}
	if !strings.HasPrefix(err.Error(), "A file named 'generated/Hello.cs' already exists.") {
		t.Errorf("CollisionError: unexpected message %q", err)
	}
	if len(p.sliceItems) != 0 || len(p.items) != 0 || p.propertyWrites != 0 {
		t.Errorf("CheckGeneratedFileIsValid: expected the project to be left untouched")
	}
}

func TestCollisionCppPerConfiguration(t *testing.T) {
	p := newFakeProject(t, PROJECT_CPP)
	p.setConfigurationProperty(debugWin32, PROPERTY_OUTPUT_DIR, "debug")
	p.setConfigurationProperty(releaseWin32, PROPERTY_OUTPUT_DIR, "release")
	sliceFile := p.dir.File("slice", "Hello.ice")

	touchFile(t, p.dir.File("release", "Hello.h"))

	err := CheckGeneratedFileIsValid(p, sliceFile)
	var collision *CollisionError
	if !errors.As(err, &collision) {
		t.Fatalf("CheckGeneratedFileIsValid: expected a collision, got %v", err)
	}
	if collision.Configuration == nil || *collision.Configuration != releaseWin32 {
		t.Errorf("CollisionError: expected configuration %v, got %v", releaseWin32, collision.Configuration)
	}
	expected := "A file named 'release/Hello.cpp' or 'release/Hello.h' already exists.\n" +
		"If you want to add 'slice/Hello.ice' first remove 'release/Hello.cpp' and 'release/Hello.h'."
	if collision.Error() != expected {
		t.Errorf("CollisionError: expected %q, got %q", expected, collision.Error())
	}

	touchFile(t, p.dir.File("debug", "Hello.cpp"))

	err = CheckGeneratedFileIsValid(p, sliceFile)
	var collisions CollisionErrors
	if !errors.As(err, &collisions) || len(collisions) != 2 {
		t.Fatalf("CheckGeneratedFileIsValid: expected 2 collisions, got %v", err)
	}
	if !errors.Is(err, collisions[0]) {
		t.Errorf("CollisionErrors: expected to unwrap each collision")
	}
}

func TestCollisionCppHeaderOutputDir(t *testing.T) {
	p := newFakeProject(t, PROJECT_CPP)
	p.properties[PROPERTY_HEADER_OUTPUT_DIR] = "include"
	p.properties[PROPERTY_HEADER_EXT] = ".hpp"

	// header outputs are only checked in the header output directory
	touchFile(t, p.dir.File("Hello.hpp"))
	if err := CheckGeneratedFileIsValid(p, p.dir.File("Hello.ice")); err != nil {
		t.Errorf("CheckGeneratedFileIsValid: expected no collision, got %v", err)
	}

	touchFile(t, p.dir.File("include", "Hello.hpp"))
	if err := CheckGeneratedFileIsValid(p, p.dir.File("Hello.ice")); err == nil {
		t.Errorf("CheckGeneratedFileIsValid: expected a collision with include/Hello.hpp")
	}
}

func TestCollisionUnsupportedProject(t *testing.T) {
	p := newFakeProject(t, PROJECT_NONE)
	if err := CheckGeneratedFileIsValid(p, p.dir.File("Hello.ice")); err == nil {
		t.Errorf("CheckGeneratedFileIsValid: expected an error for %v", PROJECT_NONE)
	}
}
