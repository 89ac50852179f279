package msbuild

import (
	"strings"

	"github.com/poppolopoppo/icebuilder/internal/base"
	"github.com/poppolopoppo/icebuilder/slice"
)

// Properties which pointed to the props and targets of the legacy IceBuilder extension.
var legacyIceBuilderProperties = []string{
	"IceBuilderCppProps",
	"IceBuilderCppTargets",
	"IceBuilderCsharpProps",
	"IceBuilderCsharpTargets",
}

/***************************************
 * Assembly references
 ***************************************/

type assemblyReference struct {
	project *ProjectFile
	element *Element
}

// Name is the assembly name, without version or culture.
func (x assemblyReference) Name() string {
	name, _, _ := strings.Cut(x.element.AttrOrEmpty("Include"), ",")
	return strings.TrimSpace(name)
}
func (x assemblyReference) HintPath() (string, bool) {
	return x.element.ChildText("HintPath")
}
func (x assemblyReference) SetHintPath(value string) {
	if current, ok := x.HintPath(); !ok || current != value {
		x.element.SetChildText("HintPath", value)
		x.project.setDirty()
	}
}
func (x assemblyReference) RemoveHintPath() {
	if hintPath := x.element.Child("HintPath"); hintPath != nil {
		x.element.RemoveChild(hintPath)
		x.project.setDirty()
	}
}

func (x *ProjectFile) AssemblyReferences() (result []slice.AssemblyReference) {
	forEachItem(x.document, func(it projectItem) bool {
		if it.Type() == "Reference" {
			result = append(result, assemblyReference{project: x, element: it.Element})
		}
		return true
	})
	return
}

/***************************************
 * Legacy project upgrade
 ***************************************/

func isLegacyIceBuilderImport(project string) bool {
	project = strings.ToLower(project)
	if strings.Contains(project, strings.ToLower(slice.ICEBUILDER_NUGET_PACKAGE)) {
		return false
	}
	if strings.Contains(project, "icebuilder") {
		return true
	}
	for _, it := range legacyIceBuilderProperties {
		if strings.Contains(project, "$("+strings.ToLower(it)+")") {
			return true
		}
	}
	return false
}

// UpgradeProjectImports removes imports of the legacy extension, package imports are kept.
func (x *ProjectFile) UpgradeProjectImports() bool {
	modified := false
	var visit func(parent *Element)
	visit = func(parent *Element) {
		for _, it := range parent.Elements() {
			switch it.Name {
			case "Import":
				if isLegacyIceBuilderImport(it.AttrOrEmpty("Project")) {
					base.LogVerbose(LogMsBuild, "%s: remove legacy import %q", x.Name(), it.AttrOrEmpty("Project"))
					parent.RemoveChild(it)
					modified = true
				}
			case "ImportGroup":
				visit(it)
			}
		}
	}
	visit(x.root())

	if modified {
		x.setDirty()
	}
	return modified
}

// UpgradeProjectProperties renames IceBuilder* properties to their SliceCompile* equivalent.
func (x *ProjectFile) UpgradeProjectProperties(cpp bool) bool {
	modified := false
	for _, group := range x.root().ChildrenNamed("PropertyGroup") {
		for _, it := range group.Elements() {
			name, ok := slice.LegacyPropertyNames[it.Name]
			if !ok {
				continue
			}
			if !cpp && (name == slice.PROPERTY_HEADER_OUTPUT_DIR || name == slice.PROPERTY_HEADER_EXT || name == slice.PROPERTY_SOURCE_EXT) {
				base.LogVerbose(LogMsBuild, "%s: remove C++ only property %s", x.Name(), it.Name)
				group.RemoveChild(it)
			} else {
				base.LogVerbose(LogMsBuild, "%s: rename property %s to %s", x.Name(), it.Name, name)
				it.Name = name
			}
			modified = true
		}
		if len(group.Elements()) == 0 && group.AttrOrEmpty("Label") != slice.PROPERTY_GROUP_LABEL {
			x.root().RemoveChild(group)
		}
	}

	if modified {
		x.setDirty()
	}
	return modified
}

// RemoveIceBuilderFromProject removes legacy properties, and the project flavor unless it is kept.
func (x *ProjectFile) RemoveIceBuilderFromProject(keepProjectFlavor bool) bool {
	modified := false
	for _, group := range x.root().ChildrenNamed("PropertyGroup") {
		for _, it := range group.Elements() {
			switch {
			case base.Contains(legacyIceBuilderProperties, it.Name):
				base.LogVerbose(LogMsBuild, "%s: remove legacy property %s", x.Name(), it.Name)
				group.RemoveChild(it)
				modified = true

			case it.Name == "ProjectTypeGuids" && !keepProjectFlavor:
				guids := base.SplitList(it.Text)
				kept := base.RemoveUnless(func(guid string) bool {
					return !strings.EqualFold(guid, slice.ICEBUILDER_PROJECT_FLAVOR_GUID)
				}, guids...)
				if len(kept) == len(base.SplitList(it.Text)) {
					continue
				}
				base.LogVerbose(LogMsBuild, "%s: remove IceBuilder project flavor", x.Name())
				if len(kept) > 0 {
					it.Text = strings.Join(kept, ";")
				} else {
					group.RemoveChild(it)
				}
				modified = true
			}
		}
	}

	if modified {
		x.setDirty()
	}
	return modified
}

// UpgradeProjectItems converts legacy Slice items to SliceCompile items.
func (x *ProjectFile) UpgradeProjectItems(cpp bool) bool {
	modified := false
	forEachItem(x.document, func(it projectItem) bool {
		switch it.Type() {
		case "IceBuilder":
		case "None":
			if !slice.IsSliceFileName(it.Include()) {
				return true
			}
		default:
			return true
		}
		base.LogVerbose(LogMsBuild, "%s: convert %s item %q to %s", x.Name(), it.Type(), it.Include(), slice.SLICE_ITEM_TYPE)
		it.Element.Name = slice.SLICE_ITEM_TYPE
		modified = true
		return true
	})

	if cpp && x.filters != nil {
		forEachItem(x.filters, func(it projectItem) bool {
			if (it.Type() == "None" || it.Type() == "IceBuilder") && slice.IsSliceFileName(it.Include()) {
				it.Element.Name = slice.SLICE_ITEM_TYPE
				x.filtersDirty = true
			}
			return true
		})
	}

	if modified {
		x.setDirty()
	}
	return modified
}
