package slice

import (
	"github.com/poppolopoppo/icebuilder/internal/base"
)

type HierarchyNode uint32

const HIERARCHY_ROOT HierarchyNode = 0

type HierarchyProperty byte

const (
	HIERARCHY_NAME HierarchyProperty = iota
	HIERARCHY_TYPE_GUID
	HIERARCHY_PROJECT_GUID
	HIERARCHY_FULL_PATH
)

func (x HierarchyProperty) String() string {
	switch x {
	case HIERARCHY_NAME:
		return "NAME"
	case HIERARCHY_TYPE_GUID:
		return "TYPE_GUID"
	case HIERARCHY_PROJECT_GUID:
		return "PROJECT_GUID"
	case HIERARCHY_FULL_PATH:
		return "FULL_PATH"
	default:
		base.UnexpectedValue(x)
		return ""
	}
}

// Hierarchy is the tree of a solution or a project, as displayed by the solution explorer.
type Hierarchy interface {
	Children(node HierarchyNode) []HierarchyNode
	// NestedProject returns the hierarchy of the project behind a node, if any.
	NestedProject(node HierarchyNode) (Hierarchy, bool)
	StringProperty(node HierarchyNode, key HierarchyProperty) (string, bool)
	GuidProperty(node HierarchyNode, key HierarchyProperty) (string, bool)
}

// GetSliceItems lists the names of Slice files found in a hierarchy, nested projects included.
func GetSliceItems(h Hierarchy) (items []string) {
	getSliceItems(h, HIERARCHY_ROOT, &items)
	return
}

func getSliceItems(h Hierarchy, node HierarchyNode, items *[]string) {
	if nested, ok := h.NestedProject(node); ok {
		getSliceItems(nested, HIERARCHY_ROOT, items)
		return
	}

	for _, child := range h.Children(node) {
		if name, ok := h.StringProperty(child, HIERARCHY_NAME); ok && IsSliceFileName(name) {
			*items = append(*items, name)
		}
		getSliceItems(h, child, items)
	}
}

// GetSubProjects lists every project hierarchy nested in h, solution folders are walked recursively.
func GetSubProjects(h Hierarchy) (projects []Hierarchy) {
	getSubProjects(h, HIERARCHY_ROOT, &projects)
	return
}

func getSubProjects(h Hierarchy, node HierarchyNode, projects *[]Hierarchy) {
	for _, child := range h.Children(node) {
		if nested, ok := h.NestedProject(child); ok {
			if guid, ok := nested.GuidProperty(HIERARCHY_ROOT, HIERARCHY_TYPE_GUID); ok && guid == SOLUTION_FOLDER_GUID {
				getSubProjects(nested, HIERARCHY_ROOT, projects)
				continue
			}
			*projects = append(*projects, nested)
			getSubProjects(nested, HIERARCHY_ROOT, projects)
		} else {
			getSubProjects(h, child, projects)
		}
	}
}

// GetProjects returns the loaded projects of a hierarchy, unloaded projects are skipped.
func GetProjects(h Hierarchy) (projects []Project) {
	for _, it := range GetSubProjects(h) {
		if guid, ok := it.GuidProperty(HIERARCHY_ROOT, HIERARCHY_TYPE_GUID); ok && guid == UNLOADED_PROJECT_GUID {
			continue
		}
		if p, ok := it.(Project); ok {
			projects = append(projects, p)
		}
	}
	return
}
