package slice

import (
	"errors"
	"fmt"

	"github.com/poppolopoppo/icebuilder/internal/base"
	"github.com/poppolopoppo/icebuilder/internal/hal"

	//lint:ignore ST1001 ignore dot imports warning
	. "github.com/poppolopoppo/icebuilder/utils"
)

var LogOptions = base.NewLogCategory("Options")

const OPTIONS_OBJECT = "IceBuilder"

var ErrInvalidIceHome = errors.New("invalid Ice home directory")

// Options are global and persisted per user.
type Options struct {
	IceHome      Directory
	AutoBuilding BoolVar
}

func GetOptionsFile() Filename {
	return UFS.Config.File("options.json")
}

// IsValidIceHome checks that the directory contains a Slice compiler.
func IsValidIceHome(iceHome Directory) bool {
	if !iceHome.Valid() {
		return false
	}
	for _, t := range []ProjectType{PROJECT_CPP, PROJECT_CSHARP} {
		if NewCompiler(iceHome).Executable(t).Exists() {
			return true
		}
	}
	return false
}

// LoadOptions reads the options file, a missing Ice home falls back to the installation found on the host.
func LoadOptions(src Filename) (*Options, error) {
	options := &Options{}

	pmp, err := LoadPersistentMap(src)
	if err != nil {
		return options, err
	}

	iceHome := base.NoneOption[Directory]()
	if pmp.HasData(OPTIONS_OBJECT, "IceHome") {
		var persisted Directory
		if err := pmp.LoadData(OPTIONS_OBJECT, "IceHome", &persisted); err == nil && persisted.Valid() {
			iceHome = base.NewOption(persisted)
		}
	}
	options.IceHome = iceHome.OrElse(hal.FindIceHome).GetOrElse(Directory{})

	if pmp.HasData(OPTIONS_OBJECT, "AutoBuilding") {
		if err := pmp.LoadData(OPTIONS_OBJECT, "AutoBuilding", &options.AutoBuilding); err != nil {
			return options, err
		}
	}
	return options, nil
}

func (x *Options) Save(dst Filename) error {
	pmp, err := LoadPersistentMap(dst)
	if err != nil {
		base.LogWarning(LogOptions, "overwriting invalid options file %q: %v", dst, err)
		pmp = NewPersistentMap()
	}
	pmp.StoreData(OPTIONS_OBJECT, "IceHome", &x.IceHome)
	pmp.StoreData(OPTIONS_OBJECT, "AutoBuilding", &x.AutoBuilding)
	return pmp.SaveTo(dst)
}

// SetIceHome only accepts directories containing a Slice compiler.
func (x *Options) SetIceHome(iceHome Directory) error {
	if !IsValidIceHome(iceHome) {
		return fmt.Errorf("%w: %q does not contain %s", ErrInvalidIceHome, iceHome, NewCompiler(iceHome).Executable(PROJECT_CPP))
	}
	x.IceHome = iceHome
	return nil
}
func (x *Options) SetAutoBuilding(enabled bool) {
	x.AutoBuilding = BoolVar(enabled)
}

/***************************************
 * OptionsPage
 ***************************************/

// OptionsPage edits the global options, changes are only persisted by Apply.
type OptionsPage struct {
	IceHome      Directory
	AutoBuilding bool

	options *Options
	store   Filename
}

func NewOptionsPage(store Filename) *OptionsPage {
	return &OptionsPage{store: store}
}

func (x *OptionsPage) Options() *Options { return x.options }

func (x *OptionsPage) Activate() error {
	options, err := LoadOptions(x.store)
	if err != nil {
		UnexpectedExceptionWarning(err)
		return err
	}
	x.options = options
	x.IceHome = options.IceHome
	x.AutoBuilding = options.AutoBuilding.Get()
	return nil
}

// Apply persists the page, an invalid Ice home cancels the apply but auto building is still saved.
func (x *OptionsPage) Apply() error {
	if x.options == nil {
		if err := x.Activate(); err != nil {
			return err
		}
	}

	applyErr := x.options.SetIceHome(x.IceHome)
	x.options.SetAutoBuilding(x.AutoBuilding)

	if err := x.options.Save(x.store); err != nil {
		UnexpectedExceptionWarning(err)
		return err
	}
	if applyErr != nil {
		base.LogWarning(LogOptions, "%v", applyErr)
	}
	return applyErr
}

// UnexpectedExceptionWarning reports host failures caught by page handlers.
func UnexpectedExceptionWarning(err error) {
	base.LogWarning(LogSlice, "The operation has thrown an unexpected exception:\n%v", err)
}
