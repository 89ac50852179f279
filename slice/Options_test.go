package slice

import (
	"errors"
	"testing"

	"github.com/poppolopoppo/icebuilder/internal/hal"

	//lint:ignore ST1001 ignore dot imports warning
	. "github.com/poppolopoppo/icebuilder/utils"
)

func makeFakeIceHome(t *testing.T) Directory {
	t.Helper()
	iceHome := MakeDirectory(t.TempDir())
	touchFile(t, NewCompiler(iceHome).Executable(PROJECT_CPP))
	return iceHome
}

func TestOptionsFallbackOnEnvironment(t *testing.T) {
	iceHome := makeFakeIceHome(t)
	t.Setenv(hal.ICE_HOME_ENV, iceHome.String())

	options, err := LoadOptions(MakeDirectory(t.TempDir()).File("options.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !options.IceHome.Equals(iceHome) {
		t.Errorf("LoadOptions: expected %v, got %v", iceHome, options.IceHome)
	}
	if options.AutoBuilding.Get() {
		t.Errorf("LoadOptions: expected auto building to be disabled by default")
	}
}

func TestOptionsRoundTrip(t *testing.T) {
	t.Setenv(hal.ICE_HOME_ENV, makeFakeIceHome(t).String())
	store := MakeDirectory(t.TempDir()).File("options.json")
	iceHome := makeFakeIceHome(t)

	options := &Options{}
	if err := options.SetIceHome(iceHome); err != nil {
		t.Fatal(err)
	}
	options.SetAutoBuilding(true)
	if err := options.Save(store); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadOptions(store)
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.IceHome.Equals(iceHome) || !loaded.AutoBuilding.Get() {
		t.Errorf("LoadOptions: expected %v, got %v", options, loaded)
	}
}

func TestOptionsInvalidIceHome(t *testing.T) {
	options := &Options{}
	invalid := MakeDirectory(t.TempDir())
	if err := options.SetIceHome(invalid); !errors.Is(err, ErrInvalidIceHome) {
		t.Errorf("SetIceHome: expected %v, got %v", ErrInvalidIceHome, err)
	}
	if options.IceHome.Valid() {
		t.Errorf("SetIceHome: expected an invalid Ice home to be rejected")
	}
	if IsValidIceHome(Directory{}) {
		t.Errorf("IsValidIceHome: expected false for an empty directory")
	}
}

func TestOptionsPageApply(t *testing.T) {
	iceHome := makeFakeIceHome(t)
	t.Setenv(hal.ICE_HOME_ENV, iceHome.String())
	store := MakeDirectory(t.TempDir()).File("options.json")

	page := NewOptionsPage(store)
	if err := page.Activate(); err != nil {
		t.Fatal(err)
	}
	if !page.IceHome.Equals(iceHome) {
		t.Errorf("Activate: expected %v, got %v", iceHome, page.IceHome)
	}

	page.IceHome = MakeDirectory(t.TempDir())
	page.AutoBuilding = true
	if err := page.Apply(); !errors.Is(err, ErrInvalidIceHome) {
		t.Errorf("Apply: expected %v, got %v", ErrInvalidIceHome, err)
	}

	loaded, err := LoadOptions(store)
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.IceHome.Equals(iceHome) {
		t.Errorf("Apply: expected Ice home to be kept as %v, got %v", iceHome, loaded.IceHome)
	}
	if !loaded.AutoBuilding.Get() {
		t.Errorf("Apply: expected auto building to be saved")
	}
}
