package utils

import (
	"flag"
	"fmt"
	"io"
	"sort"

	"github.com/poppolopoppo/icebuilder/internal/base"
)

var LogPersistent = base.NewLogCategory("Persistent")

type PersistentVar interface {
	fmt.Stringer
	flag.Value
}

type PersistentData interface {
	PinData() map[string]string
	LoadData(object string, property string, value PersistentVar) error
	StoreData(object string, property string, value PersistentVar)
}

// PersistentMap stores string values indexed by object then property, like "Options.IceHome".
type PersistentMap struct {
	Data map[string]map[string]string
}

func NewPersistentMap() *PersistentMap {
	return &PersistentMap{
		Data: make(map[string]map[string]string),
	}
}
func (pmp *PersistentMap) Len() (result int) {
	for _, vars := range pmp.Data {
		result += len(vars)
	}
	return
}
func (pmp *PersistentMap) PinData() (result map[string]string) {
	result = make(map[string]string, len(pmp.Data))
	for object, it := range pmp.Data {
		for property, value := range it {
			result[fmt.Sprint(object, `.`, property)] = value
		}
	}
	return
}
func (pmp *PersistentMap) Keys() (result []string) {
	for key := range pmp.PinData() {
		result = append(result, key)
	}
	sort.Strings(result)
	return
}
func (pmp *PersistentMap) HasData(name string, property string) bool {
	if object, ok := pmp.Data[name]; ok {
		_, ok = object[property]
		return ok
	}
	return false
}
func (pmp *PersistentMap) LoadData(name string, property string, dst PersistentVar) error {
	if object, ok := pmp.Data[name]; ok {
		if value, ok := object[property]; ok {
			base.LogDebug(LogPersistent, "load object property %s.%s = %v", name, property, value)
			return dst.Set(value)
		} else {
			err := fmt.Errorf("object %q has no property %q", name, property)
			base.LogWarningVerbose(LogPersistent, "load(%s.%s): %v", name, property, err)
			return err
		}

	} else {
		err := fmt.Errorf("object '%s' not found", name)
		base.LogWarningVerbose(LogPersistent, "load(%s.%s): %v", name, property, err)
		return err
	}
}
func (pmp *PersistentMap) StoreData(name string, property string, dst PersistentVar) {
	base.LogDebug(LogPersistent, "store in %s.%s = %v", name, property, dst)
	object, ok := pmp.Data[name]
	if !ok {
		object = make(map[string]string)
		pmp.Data[name] = object
	}
	object[property] = dst.String()
}
func (pmp *PersistentMap) Serialize(dst io.Writer) error {
	if err := base.JsonSerialize(&pmp.Data, dst, base.OptionJsonPrettyPrint(true)); err == nil {
		base.LogDebug(LogPersistent, "saved %d vars from config to disk", pmp.Len())
		return nil
	} else {
		return fmt.Errorf("failed to serialize config: %v", err)
	}
}
func (pmp *PersistentMap) Deserialize(src io.Reader) error {
	if err := base.JsonDeserialize(&pmp.Data, src); err == nil {
		base.LogVerbose(LogPersistent, "loaded %d vars from disk to config", pmp.Len())
		return nil
	} else {
		return fmt.Errorf("failed to deserialize config: %v", err)
	}
}

/***************************************
 * Persistent file
 ***************************************/

// LoadPersistentMap returns an empty map when the file does not exist yet.
func LoadPersistentMap(src Filename) (*PersistentMap, error) {
	pmp := NewPersistentMap()
	if !src.Exists() {
		base.LogVerbose(LogPersistent, "no config found in %q", src)
		return pmp, nil
	}
	err := UFS.OpenBuffered(src, pmp.Deserialize)
	return pmp, err
}

func (pmp *PersistentMap) SaveTo(dst Filename) error {
	UFS.Mkdir(dst.Dirname)
	return UFS.SafeCreate(dst, pmp.Serialize)
}

/***************************************
 * Persistent variables
 ***************************************/

type BoolVar bool

func (x BoolVar) Get() bool { return bool(x) }
func (x BoolVar) String() string {
	if x {
		return "true"
	}
	return "false"
}
func (x *BoolVar) Set(in string) error {
	switch in {
	case "1", "true", "TRUE", "True", "on", "ON":
		*x = true
	case "0", "false", "FALSE", "False", "off", "OFF", "":
		*x = false
	default:
		return fmt.Errorf("invalid boolean value %q", in)
	}
	return nil
}
func (x BoolVar) Type() string { return "bool" }

type StringVar string

func (x StringVar) Get() string    { return string(x) }
func (x StringVar) String() string { return string(x) }
func (x *StringVar) Set(in string) error {
	*x = StringVar(in)
	return nil
}
func (x StringVar) Type() string { return "string" }
