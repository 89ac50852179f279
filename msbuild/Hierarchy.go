package msbuild

import (
	"github.com/poppolopoppo/icebuilder/internal/base"
	"github.com/poppolopoppo/icebuilder/slice"
)

// Project hierarchy: the root node is the project, every item is a child node.

func (x *ProjectFile) hierarchyItems() (items []projectItem) {
	forEachItem(x.document, func(it projectItem) bool {
		items = append(items, it)
		return true
	})
	return
}

func (x *ProjectFile) hierarchyItem(node slice.HierarchyNode) (projectItem, bool) {
	items := x.hierarchyItems()
	if node == slice.HIERARCHY_ROOT || int(node) > len(items) {
		return projectItem{}, false
	}
	return items[node-1], true
}

func (x *ProjectFile) Children(node slice.HierarchyNode) (children []slice.HierarchyNode) {
	if node != slice.HIERARCHY_ROOT {
		return nil
	}
	for i := range x.hierarchyItems() {
		children = append(children, slice.HierarchyNode(i+1))
	}
	return
}

func (x *ProjectFile) NestedProject(slice.HierarchyNode) (slice.Hierarchy, bool) {
	return nil, false
}

func (x *ProjectFile) StringProperty(node slice.HierarchyNode, key slice.HierarchyProperty) (string, bool) {
	if node == slice.HIERARCHY_ROOT {
		switch key {
		case slice.HIERARCHY_NAME:
			return x.Name(), true
		case slice.HIERARCHY_FULL_PATH:
			return x.path.String(), true
		}
		return "", false
	}

	item, ok := x.hierarchyItem(node)
	if !ok {
		return "", false
	}
	switch key {
	case slice.HIERARCHY_NAME:
		return item.Include(), true
	case slice.HIERARCHY_FULL_PATH:
		return x.resolveInclude(item.Include()).String(), true
	}
	return "", false
}

func (x *ProjectFile) GuidProperty(node slice.HierarchyNode, key slice.HierarchyProperty) (string, bool) {
	if node != slice.HIERARCHY_ROOT {
		return "", false
	}
	switch key {
	case slice.HIERARCHY_TYPE_GUID:
		switch x.projectType {
		case slice.PROJECT_CPP:
			return slice.CPP_PROJECT_GUID, true
		case slice.PROJECT_CSHARP:
			return slice.CSHARP_PROJECT_GUID, true
		}
	case slice.HIERARCHY_PROJECT_GUID:
		if guid, err := x.GetProperty("ProjectGuid"); err == nil && len(guid) > 0 {
			return guid, true
		}
		// SDK style projects have no GUID, derive one from the project path
		return base.StringFingerprint(x.path.String()).Guid(), true
	}
	return "", false
}
