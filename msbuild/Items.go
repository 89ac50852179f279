package msbuild

import (
	"strings"

	"github.com/poppolopoppo/icebuilder/internal/base"
	internal_io "github.com/poppolopoppo/icebuilder/internal/io"
	"github.com/poppolopoppo/icebuilder/slice"

	//lint:ignore ST1001 ignore dot imports warning
	. "github.com/poppolopoppo/icebuilder/utils"
)

/***************************************
 * Project items
 ***************************************/

type projectItem struct {
	Group   *Element
	Element *Element
}

func (x projectItem) Type() string    { return x.Element.Name }
func (x projectItem) Include() string { return x.Element.AttrOrEmpty("Include") }

func forEachItem(document *Document, each func(projectItem) bool) {
	if document == nil {
		return
	}
	for _, group := range document.Root.ChildrenNamed("ItemGroup") {
		for _, it := range group.Elements() {
			if _, ok := it.Attr("Include"); ok && !each(projectItem{Group: group, Element: it}) {
				return
			}
		}
	}
}

func (x *ProjectFile) findItems(document *Document, f Filename, itemTypes ...string) (result []projectItem) {
	forEachItem(document, func(it projectItem) bool {
		if len(itemTypes) > 0 && !base.Contains(itemTypes, it.Type()) {
			return true
		}
		for _, include := range base.SplitList(it.Include()) {
			if x.resolveInclude(include).Equals(f) {
				result = append(result, it)
				break
			}
		}
		return true
	})
	return
}

// itemGroupFor returns the item group already holding items of this type, or a new one after the last item group.
func itemGroupFor(document *Document, itemType string) *Element {
	root := document.Root
	var lastGroup *Element
	for _, group := range root.ChildrenNamed("ItemGroup") {
		if _, ok := group.Attr("Label"); ok || !isUnconditioned(group) {
			continue
		}
		if group.Child(itemType) != nil {
			return group
		}
		lastGroup = group
	}

	group := NewElement("ItemGroup")
	if i, ok := root.IndexOf(lastGroup); ok {
		root.InsertChild(i+1, group)
	} else if imports := root.ChildrenNamed("Import"); len(imports) > 0 {
		i, _ := root.IndexOf(imports[len(imports)-1])
		root.InsertChild(i, group)
	} else {
		root.AddChild(group)
	}
	return group
}

func (x *ProjectFile) SliceItems() (items []string, err error) {
	forEachItem(x.document, func(it projectItem) bool {
		if it.Type() == slice.SLICE_ITEM_TYPE {
			items = append(items, base.SplitList(it.Include())...)
		}
		return true
	})
	return
}

func (x *ProjectFile) AddSliceItem(f Filename) error {
	if len(x.findItems(x.document, f, slice.SLICE_ITEM_TYPE)) > 0 {
		return nil
	}

	// a legacy item of the same file would compile it twice
	for _, it := range x.findItems(x.document, f, "None", "IceBuilder") {
		it.Group.RemoveChild(it.Element)
	}

	include := x.itemInclude(f)
	base.LogVerbose(LogMsBuild, "%s: add Slice item %q", x.Name(), include)
	itemGroupFor(x.document, slice.SLICE_ITEM_TYPE).AddChild(NewElement(slice.SLICE_ITEM_TYPE,
		internal_io.XmlAttr{Name: "Include", Value: include}))
	x.setDirty()
	return nil
}

// implicitItem is true when a SDK style project compiles the file without any item.
func (x *ProjectFile) implicitItem(f Filename) bool {
	if !x.IsSdkStyle() || !strings.EqualFold(f.Ext(), slice.CSHARP_EXT) || !f.IsIn(x.Dir()) {
		return false
	}
	if value, err := x.GetEvaluatedProperty("EnableDefaultCompileItems"); err == nil && strings.EqualFold(value, "false") {
		return false
	}
	for _, excluded := range []string{"bin", "obj"} {
		if f.IsIn(x.Dir().Folder(excluded)) {
			return false
		}
	}
	return true
}

func (x *ProjectFile) HasItem(f Filename) bool {
	return len(x.findItems(x.document, f)) > 0 || x.implicitItem(f)
}

func (x *ProjectFile) AddItem(f Filename, kind slice.GeneratedItemKind) error {
	if x.HasItem(f) {
		return nil
	}

	include := x.itemInclude(f)
	itemType := kind.ItemType()
	base.LogVerbose(LogMsBuild, "%s: add %s item %q", x.Name(), itemType, include)

	itemGroupFor(x.document, itemType).AddChild(NewElement(itemType, internal_io.XmlAttr{Name: "Include", Value: include}))
	x.setDirty()

	if filter := kind.Filter(); len(filter) > 0 && x.projectType == slice.PROJECT_CPP {
		x.addFilteredItem(itemType, include, filter)
	}
	return nil
}

// ExcludeFileInConfiguration sets ExcludedFromBuild on C++ items of this file, for one configuration.
func (x *ProjectFile) ExcludeFileInConfiguration(f Filename, cfg slice.Configuration) error {
	condition := ConfigurationCondition(cfg.String())
	for _, it := range x.findItems(x.document, f, "ClCompile", "ClInclude") {
		excluded := false
		for _, metadata := range it.Element.ChildrenNamed("ExcludedFromBuild") {
			if metadata.AttrOrEmpty("Condition") == condition {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}

		base.LogVeryVerbose(LogMsBuild, "%s: exclude %q from %v", x.Name(), it.Include(), cfg)
		excludedFromBuild := NewElement("ExcludedFromBuild", internal_io.XmlAttr{Name: "Condition", Value: condition})
		excludedFromBuild.Text = "true"
		it.Element.AddChild(excludedFromBuild)
		x.setDirty()
	}
	return nil
}

// RemoveItem drops generated file items, Slice inputs are never removed.
func (x *ProjectFile) RemoveItem(f Filename) (bool, error) {
	removed := false
	for _, it := range x.findItems(x.document, f) {
		if it.Type() == slice.SLICE_ITEM_TYPE {
			continue
		}
		it.Group.RemoveChild(it.Element)
		removeEmptyItemGroup(x.document, it.Group)
		x.setDirty()
		removed = true
	}
	for _, it := range x.findItems(x.filters, f) {
		it.Group.RemoveChild(it.Element)
		removeEmptyItemGroup(x.filters, it.Group)
		x.filtersDirty = true
	}
	return removed, nil
}

func removeEmptyItemGroup(document *Document, group *Element) {
	if len(group.Elements()) == 0 {
		document.Root.RemoveChild(group)
	}
}

/***************************************
 * Filters
 ***************************************/

var filterExtensions = map[string]string{
	slice.GENERATED_SOURCE.Filter(): "cpp;c;cc;cxx;def;odl;idl;hpj;bat;asm;asmx",
	slice.GENERATED_HEADER.Filter(): "h;hh;hpp;hxx;hm;inl;inc;xsd",
}

func (x *ProjectFile) filterGuid(name string) string {
	return strings.ToUpper(base.StringFingerprint(x.path.Basename + "|" + name).Guid())
}

func (x *ProjectFile) ensureFilter(name string) {
	found := false
	forEachItem(x.filters, func(it projectItem) bool {
		found = it.Type() == "Filter" && strings.EqualFold(it.Include(), name)
		return !found
	})
	if found {
		return
	}

	filter := NewElement("Filter", internal_io.XmlAttr{Name: "Include", Value: name})
	filter.SetChildText("UniqueIdentifier", x.filterGuid(name))
	if extensions, ok := filterExtensions[name]; ok {
		filter.SetChildText("Extensions", extensions)
	}
	itemGroupFor(x.filters, "Filter").AddChild(filter)
}

func (x *ProjectFile) addFilteredItem(itemType, include, filter string) {
	if x.filters == nil {
		x.filters = NewProjectDocument("4.0")
	}
	x.ensureFilter(filter)

	item := NewElement(itemType, internal_io.XmlAttr{Name: "Include", Value: include})
	item.SetChildText("Filter", filter)
	itemGroupFor(x.filters, itemType).AddChild(item)
	x.filtersDirty = true
}
