package msbuild

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/poppolopoppo/icebuilder/internal/base"
	"github.com/poppolopoppo/icebuilder/slice"

	//lint:ignore ST1001 ignore dot imports warning
	. "github.com/poppolopoppo/icebuilder/utils"
)

const SOLUTION_EXT = ".sln"

type SolutionEntry struct {
	Name        string
	TypeGuid    string
	ProjectGuid string
	Parent      string
	Path        Filename
	// solution configuration display name -> project configuration
	ProjectConfigurations map[string]slice.Configuration
}

func (x *SolutionEntry) IsFolder() bool {
	return strings.EqualFold(x.TypeGuid, slice.SOLUTION_FOLDER_GUID)
}

/***************************************
 * Solution: a .sln file, exposed as a hierarchy of projects and folders
 ***************************************/

type Solution struct {
	Path           Filename
	Entries        []*SolutionEntry
	Configurations []slice.Configuration

	// Loader opens project files, LoadProject is used when nil.
	Loader func(Filename) (*ProjectFile, error)

	active   slice.Configuration
	projects map[string]slice.Hierarchy
}

var (
	reSolutionProject        = regexp.MustCompile(`^Project\("(\{[^}]+\})"\)\s*=\s*"([^"]*)"\s*,\s*"([^"]*)"\s*,\s*"(\{[^}]+\})"`)
	reSolutionSection        = regexp.MustCompile(`^GlobalSection\((\w+)\)`)
	reSolutionKeyValue       = regexp.MustCompile(`^(.+?)\s*=\s*(.+)$`)
	reProjectConfigurationTo = regexp.MustCompile(`^(\{[^}]+\})\.(.+)\.ActiveCfg$`)
)

func LoadSolution(path Filename) (*Solution, error) {
	solution := &Solution{Path: path}
	if err := UFS.OpenBuffered(path, solution.Deserialize); err != nil {
		return nil, fmt.Errorf("msbuild: failed to parse solution %q: %w", path, err)
	}
	if len(solution.Configurations) > 0 {
		solution.active = solution.Configurations[0]
	}
	return solution, nil
}

func (x *Solution) Deserialize(src io.Reader) error {
	var section string
	entries := make(map[string]*SolutionEntry)

	scanner := bufio.NewScanner(src)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case len(line) == 0 || strings.HasPrefix(line, "#"):
		case strings.HasPrefix(line, "Project("):
			match := reSolutionProject.FindStringSubmatch(line)
			if match == nil {
				return fmt.Errorf("line %d: invalid project declaration %q", lineNo, line)
			}
			entry := &SolutionEntry{
				TypeGuid:              strings.ToUpper(match[1]),
				Name:                  match[2],
				ProjectGuid:           strings.ToUpper(match[4]),
				ProjectConfigurations: make(map[string]slice.Configuration),
			}
			if !entry.IsFolder() {
				entry.Path = x.Path.Dirname.AbsoluteFile(match[3])
			}
			x.Entries = append(x.Entries, entry)
			entries[entry.ProjectGuid] = entry

		case strings.HasPrefix(line, "GlobalSection("):
			if match := reSolutionSection.FindStringSubmatch(line); match != nil {
				section = match[1]
			}
		case line == "EndGlobalSection":
			section = ""

		default:
			match := reSolutionKeyValue.FindStringSubmatch(line)
			if match == nil {
				continue
			}
			key, value := strings.TrimSpace(match[1]), strings.TrimSpace(match[2])
			switch section {
			case "SolutionConfigurationPlatforms":
				x.Configurations = append(x.Configurations, slice.MakeConfiguration(key))
			case "ProjectConfigurationPlatforms":
				if cfg := reProjectConfigurationTo.FindStringSubmatch(key); cfg != nil {
					if entry, ok := entries[strings.ToUpper(cfg[1])]; ok {
						entry.ProjectConfigurations[cfg[2]] = slice.MakeConfiguration(value)
					}
				}
			case "NestedProjects":
				if entry, ok := entries[strings.ToUpper(key)]; ok {
					entry.Parent = strings.ToUpper(value)
				}
			}
		}
	}
	return scanner.Err()
}

func (x *Solution) Name() string { return x.Path.TrimExt() }

func (x *Solution) ActiveConfiguration() slice.Configuration { return x.active }

// SetActiveConfiguration also selects the matching configuration of every loaded project.
func (x *Solution) SetActiveConfiguration(cfg slice.Configuration) error {
	if !base.Contains(x.Configurations, cfg) {
		return fmt.Errorf("solution %s: unknown configuration %q", x.Name(), cfg)
	}
	x.active = cfg
	for i, entry := range x.Entries {
		if project, ok := x.projects[entry.ProjectGuid].(*ProjectFile); ok {
			if err := x.selectProjectConfiguration(x.Entries[i], project); err != nil {
				return err
			}
		}
	}
	return nil
}

func (x *Solution) selectProjectConfiguration(entry *SolutionEntry, project *ProjectFile) error {
	if cfg, ok := entry.ProjectConfigurations[x.active.String()]; ok {
		return project.SetActiveConfiguration(cfg)
	}
	if len(x.active.Name) > 0 {
		if err := project.SetActiveConfiguration(x.active); err != nil {
			base.LogVeryVerbose(LogMsBuild, "%s: %v", x.Name(), err)
		}
	}
	return nil
}

func (x *Solution) entry(node slice.HierarchyNode) (*SolutionEntry, bool) {
	if node == slice.HIERARCHY_ROOT || int(node) > len(x.Entries) {
		return nil, false
	}
	return x.Entries[node-1], true
}

func (x *Solution) childrenOf(parent string) (children []slice.HierarchyNode) {
	for i, it := range x.Entries {
		if it.Parent == parent {
			children = append(children, slice.HierarchyNode(i+1))
		}
	}
	return
}

func (x *Solution) loadProject(entry *SolutionEntry) slice.Hierarchy {
	if x.projects == nil {
		x.projects = make(map[string]slice.Hierarchy)
	}
	if project, ok := x.projects[entry.ProjectGuid]; ok {
		return project
	}

	loader := x.Loader
	if loader == nil {
		loader = LoadProject
	}

	var result slice.Hierarchy
	if project, err := loader(entry.Path); err == nil {
		project.SolutionDir = x.Path.Dirname
		if err := x.selectProjectConfiguration(entry, project); err != nil {
			base.LogWarning(LogMsBuild, "%s: %v", x.Name(), err)
		}
		result = project
	} else {
		base.LogWarning(LogMsBuild, "%s: project %q is unloaded: %v", x.Name(), entry.Name, err)
		result = unloadedProject{name: entry.Name}
	}
	x.projects[entry.ProjectGuid] = result
	return result
}

// Projects returns the loaded projects of the solution, folders are walked recursively.
func (x *Solution) Projects() (result []*ProjectFile) {
	for _, it := range slice.GetProjects(x) {
		if project, ok := it.(*ProjectFile); ok {
			result = append(result, project)
		}
	}
	return
}

func (x *Solution) Children(node slice.HierarchyNode) []slice.HierarchyNode {
	if node == slice.HIERARCHY_ROOT {
		var roots []slice.HierarchyNode
		for i, it := range x.Entries {
			if _, nested := x.findEntry(it.Parent); !nested {
				roots = append(roots, slice.HierarchyNode(i+1))
			}
		}
		return roots
	}
	return nil
}

func (x *Solution) findEntry(guid string) (*SolutionEntry, bool) {
	if len(guid) == 0 {
		return nil, false
	}
	for _, it := range x.Entries {
		if it.ProjectGuid == guid {
			return it, true
		}
	}
	return nil, false
}

func (x *Solution) NestedProject(node slice.HierarchyNode) (slice.Hierarchy, bool) {
	entry, ok := x.entry(node)
	if !ok {
		return nil, false
	}
	if entry.IsFolder() {
		return solutionFolder{solution: x, entry: entry}, true
	}
	return x.loadProject(entry), true
}

func (x *Solution) StringProperty(node slice.HierarchyNode, key slice.HierarchyProperty) (string, bool) {
	if node == slice.HIERARCHY_ROOT {
		switch key {
		case slice.HIERARCHY_NAME:
			return x.Name(), true
		case slice.HIERARCHY_FULL_PATH:
			return x.Path.String(), true
		}
		return "", false
	}
	entry, ok := x.entry(node)
	if !ok {
		return "", false
	}
	switch key {
	case slice.HIERARCHY_NAME:
		return entry.Name, true
	case slice.HIERARCHY_FULL_PATH:
		return entry.Path.String(), entry.Path.Valid()
	}
	return "", false
}

func (x *Solution) GuidProperty(node slice.HierarchyNode, key slice.HierarchyProperty) (string, bool) {
	entry, ok := x.entry(node)
	if !ok {
		return "", false
	}
	switch key {
	case slice.HIERARCHY_TYPE_GUID:
		return entry.TypeGuid, true
	case slice.HIERARCHY_PROJECT_GUID:
		return entry.ProjectGuid, true
	}
	return "", false
}

/***************************************
 * Solution folders and unloaded projects
 ***************************************/

type solutionFolder struct {
	solution *Solution
	entry    *SolutionEntry
}

func (x solutionFolder) Children(node slice.HierarchyNode) []slice.HierarchyNode {
	if node == slice.HIERARCHY_ROOT {
		return x.solution.childrenOf(x.entry.ProjectGuid)
	}
	return nil
}
func (x solutionFolder) NestedProject(node slice.HierarchyNode) (slice.Hierarchy, bool) {
	return x.solution.NestedProject(node)
}
func (x solutionFolder) StringProperty(node slice.HierarchyNode, key slice.HierarchyProperty) (string, bool) {
	if node == slice.HIERARCHY_ROOT {
		if key == slice.HIERARCHY_NAME {
			return x.entry.Name, true
		}
		return "", false
	}
	return x.solution.StringProperty(node, key)
}
func (x solutionFolder) GuidProperty(node slice.HierarchyNode, key slice.HierarchyProperty) (string, bool) {
	if node == slice.HIERARCHY_ROOT {
		switch key {
		case slice.HIERARCHY_TYPE_GUID:
			return slice.SOLUTION_FOLDER_GUID, true
		case slice.HIERARCHY_PROJECT_GUID:
			return x.entry.ProjectGuid, true
		}
		return "", false
	}
	return x.solution.GuidProperty(node, key)
}

type unloadedProject struct {
	name string
}

func (unloadedProject) Children(slice.HierarchyNode) []slice.HierarchyNode { return nil }
func (unloadedProject) NestedProject(slice.HierarchyNode) (slice.Hierarchy, bool) {
	return nil, false
}
func (x unloadedProject) StringProperty(node slice.HierarchyNode, key slice.HierarchyProperty) (string, bool) {
	if node == slice.HIERARCHY_ROOT && key == slice.HIERARCHY_NAME {
		return x.name, true
	}
	return "", false
}
func (unloadedProject) GuidProperty(node slice.HierarchyNode, key slice.HierarchyProperty) (string, bool) {
	if node == slice.HIERARCHY_ROOT && key == slice.HIERARCHY_TYPE_GUID {
		return slice.UNLOADED_PROJECT_GUID, true
	}
	return "", false
}
