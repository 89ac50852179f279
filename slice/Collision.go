package slice

import (
	"fmt"
	"strings"

	"github.com/poppolopoppo/icebuilder/internal/base"

	//lint:ignore ST1001 ignore dot imports warning
	. "github.com/poppolopoppo/icebuilder/utils"
)

// CollisionError reports generated files which would overwrite files authored manually.
type CollisionError struct {
	Configuration *Configuration
	Existing      []string
	Adding        string
}

func (x *CollisionError) Error() string {
	switch len(x.Existing) {
	case 1:
		return fmt.Sprintf("A file named '%s' already exists.\nIf you want to add '%s' first remove '%s'.",
			x.Existing[0], x.Adding, x.Existing[0])
	case 2:
		return fmt.Sprintf("A file named '%s' or '%s' already exists.\nIf you want to add '%s' first remove '%s' and '%s'.",
			x.Existing[0], x.Existing[1], x.Adding, x.Existing[0], x.Existing[1])
	default:
		return fmt.Sprintf("Files named '%s' already exist.\nIf you want to add '%s' first remove them.",
			strings.Join(x.Existing, "', '"), x.Adding)
	}
}

type CollisionErrors []*CollisionError

func (x CollisionErrors) Error() string {
	messages := make([]string, len(x))
	for i, err := range x {
		if err.Configuration != nil {
			messages[i] = fmt.Sprintf("%v: %v", err.Configuration, err)
		} else {
			messages[i] = err.Error()
		}
	}
	return strings.Join(messages, "\n")
}
func (x CollisionErrors) Unwrap() []error {
	errs := make([]error, len(x))
	for i, err := range x {
		errs[i] = err
	}
	return errs
}

// CheckGeneratedFileIsValid checks that adding a Slice file won't overwrite an existing file.
// It never creates or deletes anything.
func CheckGeneratedFileIsValid(p Project, sliceFile Filename) error {
	relativeTo := func(f Filename) string {
		return f.Relative(p.Dir())
	}

	switch t := p.Type(); t {
	case PROJECT_CSHARP:
		outputDir, err := GetCSharpOutputDir(p)
		if err != nil {
			return err
		}

		generatedSource := outputDir.File(generatedItemPath(sliceFile.Basename, CSHARP_EXT))
		if generatedSource.Exists() {
			err := &CollisionError{
				Existing: []string{relativeTo(generatedSource)},
				Adding:   relativeTo(sliceFile),
			}
			base.LogVerbose(LogSlice, "%s: %v", p.Name(), err)
			return err
		}

	case PROJECT_CPP:
		active := p.ActiveConfiguration()
		sourceExt, err := getEvaluatedProperty(p, active, PROPERTY_SOURCE_EXT, DEFAULT_CPP_SOURCE_EXT)
		if err != nil {
			return err
		}
		headerExt, err := getEvaluatedProperty(p, active, PROPERTY_HEADER_EXT, DEFAULT_CPP_HEADER_EXT)
		if err != nil {
			return err
		}

		var collisions CollisionErrors
		for _, cfg := range p.Configurations() {
			outputDir, err := cfg.evaluateDirectory(p, MACRO_OUTPUT_DIR)
			if err != nil {
				return err
			}

			headerOutputDir := outputDir
			if evaluated, err := p.Evaluate(cfg, MACRO_HEADER_OUTPUT_DIR); err != nil {
				return err
			} else if len(evaluated) > 0 {
				headerOutputDir = p.Dir().AbsoluteFolder(evaluated)
			}

			generatedSource := outputDir.File(generatedItemPath(sliceFile.Basename, sourceExt))
			generatedHeader := headerOutputDir.File(generatedItemPath(sliceFile.Basename, headerExt))

			if generatedSource.Exists() || generatedHeader.Exists() {
				cfg := cfg
				collisions = append(collisions, &CollisionError{
					Configuration: &cfg,
					Existing:      []string{relativeTo(generatedSource), relativeTo(generatedHeader)},
					Adding:        relativeTo(sliceFile),
				})
			}
		}

		switch len(collisions) {
		case 0:
		case 1:
			base.LogVerbose(LogSlice, "%s: %v", p.Name(), collisions)
			return collisions[0]
		default:
			base.LogVerbose(LogSlice, "%s: %v", p.Name(), collisions)
			return collisions
		}

	default:
		return fmt.Errorf("project %q of type %v can't compile Slice files", p.Name(), t)
	}
	return nil
}
