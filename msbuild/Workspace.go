package msbuild

import (
	"fmt"
	"strings"

	"github.com/poppolopoppo/icebuilder/internal/base"
	"github.com/poppolopoppo/icebuilder/slice"

	//lint:ignore ST1001 ignore dot imports warning
	. "github.com/poppolopoppo/icebuilder/utils"
)

/***************************************
 * Workspace: every solution and project opened by a command
 ***************************************/

type Workspace struct {
	// ProjectChanged is fired after any project of the workspace was saved or reloaded.
	ProjectChanged slice.ProjectChangedEvent

	Solutions []*Solution
	projects  map[string]*ProjectFile
	order     []*ProjectFile
}

func NewWorkspace() *Workspace {
	return &Workspace{projects: make(map[string]*ProjectFile)}
}

// LoadProject returns the project already opened from this path, or loads it.
func (x *Workspace) LoadProject(path Filename) (*ProjectFile, error) {
	key := strings.ToLower(path.String())
	if project, ok := x.projects[key]; ok {
		return project, nil
	}

	project, err := LoadProject(path)
	if err != nil {
		return nil, err
	}
	project.Changed = &x.ProjectChanged

	x.projects[key] = project
	x.order = append(x.order, project)
	return project, nil
}

func (x *Workspace) LoadSolution(path Filename) (*Solution, error) {
	solution, err := LoadSolution(path)
	if err != nil {
		return nil, err
	}
	solution.Loader = x.LoadProject
	x.Solutions = append(x.Solutions, solution)

	// load projects now, they are listed in solution order
	solution.Projects()
	return solution, nil
}

// Open accepts solutions, project files, or directories searched recursively for solutions first and projects otherwise.
func (x *Workspace) Open(paths ...string) error {
	for _, it := range paths {
		if err := x.open(it); err != nil {
			return err
		}
	}
	return nil
}

func (x *Workspace) open(path string) error {
	if dir := MakeDirectory(path); dir.Exists() {
		return x.openDirectory(dir)
	}

	file := MakeFilename(path)
	if !file.Exists() {
		return fmt.Errorf("msbuild: %q does not exist", path)
	}
	switch {
	case strings.EqualFold(file.Ext(), SOLUTION_EXT):
		_, err := x.LoadSolution(file)
		return err
	case IsProjectFile(file):
		_, err := x.LoadProject(file)
		return err
	default:
		return fmt.Errorf("msbuild: %q is neither a solution nor a project", path)
	}
}

func (x *Workspace) openDirectory(dir Directory) error {
	var solutions, projects FileSet
	err := dir.MatchFilesRec(func(f Filename) error {
		if strings.EqualFold(f.Ext(), SOLUTION_EXT) {
			solutions.Append(f)
		} else if IsProjectFile(f) {
			projects.Append(f)
		}
		return nil
	}, MakeGlobRegexp("*"+SOLUTION_EXT, "*"+VCXPROJ_EXT, "*"+CSPROJ_EXT))
	if err != nil {
		return err
	}

	solutions.Sort()
	projects.Sort()

	if len(solutions) > 0 {
		for _, it := range solutions {
			if _, err := x.LoadSolution(it); err != nil {
				return err
			}
		}
		return nil
	}

	if len(projects) == 0 {
		base.LogWarning(LogMsBuild, "no solution or project found in %q", dir)
	}
	for _, it := range projects {
		if _, err := x.LoadProject(it); err != nil {
			return err
		}
	}
	return nil
}

// Projects returns every loaded project, in load order.
func (x *Workspace) Projects() []*ProjectFile {
	return x.order
}

// SliceProjects returns the projects as seen by the reconciliation engine.
func (x *Workspace) SliceProjects() []slice.Project {
	result := make([]slice.Project, len(x.order))
	for i, it := range x.order {
		result[i] = it
	}
	return result
}

// SaveAll writes every modified project.
func (x *Workspace) SaveAll() error {
	var errs []error
	for _, it := range x.order {
		if it.Dirty() {
			errs = append(errs, it.Save())
		}
	}
	return base.AnyError(errs...)
}
