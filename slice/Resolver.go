package slice

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/poppolopoppo/icebuilder/internal/base"

	//lint:ignore ST1001 ignore dot imports warning
	. "github.com/poppolopoppo/icebuilder/utils"
)

/***************************************
 * GeneratedFileSet
 ***************************************/

// GeneratedFileSet maps a Slice item name to the ordered set of files generated from it.
type GeneratedFileSet map[string]FileSet

func (x GeneratedFileSet) Keys() []string {
	keys := maps.Keys(x)
	slices.Sort(keys)
	return keys
}
func (x GeneratedFileSet) Len() (count int) {
	for _, files := range x {
		count += files.Len()
	}
	return
}
func (x GeneratedFileSet) Contains(f Filename) bool {
	for _, files := range x {
		if files.Contains(f) {
			return true
		}
	}
	return false
}

// Files returns every generated file, sorted.
func (x GeneratedFileSet) Files() (result FileSet) {
	for _, key := range x.Keys() {
		result.AppendUniq(x[key]...)
	}
	result.Sort()
	return
}

// Fingerprint only depends on the content of the set, not on map ordering.
func (x GeneratedFileSet) Fingerprint() base.Fingerprint {
	sb := strings.Builder{}
	for _, key := range x.Keys() {
		sb.WriteString(key)
		sb.WriteRune('=')
		sb.WriteString(x[key].Join(";"))
		sb.WriteRune('\n')
	}
	return base.StringFingerprint(sb.String())
}

/***************************************
 * CppGeneratedFiles
 ***************************************/

type CppGeneratedFileSet struct {
	Configuration Configuration
	Filename      string
	Headers       FileSet
	Sources       FileSet
}

type CppGeneratedFiles struct {
	// Partitioned is true when configurations disagree on output directories,
	// FileSets then hold one entry per configuration and per Slice item.
	Partitioned bool
	FileSets    []CppGeneratedFileSet
}

func (x CppGeneratedFiles) Empty() bool { return len(x.FileSets) == 0 }

func (x CppGeneratedFiles) Configurations() (result []Configuration) {
	for _, it := range x.FileSets {
		if !slices.Contains(result, it.Configuration) {
			result = append(result, it.Configuration)
		}
	}
	return
}

// Flatten unions headers and sources of every configuration per Slice item.
func (x CppGeneratedFiles) Flatten() GeneratedFileSet {
	generated := make(GeneratedFileSet, len(x.FileSets))
	for _, fileset := range x.FileSets {
		files := generated[fileset.Filename]
		files.AppendUniq(fileset.Headers...)
		files.AppendUniq(fileset.Sources...)
		generated[fileset.Filename] = files
	}
	return generated
}

/***************************************
 * Output directories
 ***************************************/

type CppOutputDirs struct {
	Configuration   Configuration
	OutputDir       Directory
	HeaderOutputDir Directory
}

// getRawOutputDir returns the unevaluated output directory seen by a configuration,
// header directory falls back on the output directory when empty.
func getRawOutputDir(p ConfigurationProvider, cfg Configuration, isHeader bool) (outputDir string, err error) {
	if isHeader {
		if outputDir, err = p.GetConfigurationProperty(cfg, PROPERTY_HEADER_OUTPUT_DIR); err != nil {
			return
		}
	}
	if len(outputDir) == 0 {
		outputDir, err = p.GetConfigurationProperty(cfg, PROPERTY_OUTPUT_DIR)
	}
	return
}

func getEvaluatedProperty(p Project, cfg Configuration, name, defaultValue string) (string, error) {
	value, err := p.Evaluate(cfg, fmt.Sprintf("$(%s)", name))
	if err != nil {
		return "", fmt.Errorf("evaluate property %q of %q: %w", name, p.Name(), err)
	}
	if len(value) == 0 {
		return defaultValue, nil
	}
	return value, nil
}

// IsCppPartitioned checks if configurations evaluate to different output directories.
func IsCppPartitioned(p Project) (bool, error) {
	_, partitioned, err := getCppOutputDirsPerConfiguration(p)
	return partitioned, err
}

func getCppOutputDirsPerConfiguration(p Project) (dirs []CppOutputDirs, partitioned bool, err error) {
	var outputDirectories, headerOutputDirectories base.StringSet
	for _, cfg := range p.Configurations() {
		var it CppOutputDirs
		if it, err = GetCppOutputDirs(p, cfg); err != nil {
			return
		}
		outputDirectories.AppendUniq(it.OutputDir.String())
		headerOutputDirectories.AppendUniq(it.HeaderOutputDir.String())
		dirs = append(dirs, it)
	}
	partitioned = outputDirectories.Len() > 1 || headerOutputDirectories.Len() > 1
	return
}

func GetCppOutputDirs(p Project, cfg Configuration) (result CppOutputDirs, err error) {
	result.Configuration = cfg

	var outputDir, headerOutputDir string
	if outputDir, err = getRawOutputDir(p, cfg, false); err != nil {
		return
	}
	if headerOutputDir, err = getRawOutputDir(p, cfg, true); err != nil {
		return
	}

	if result.OutputDir, err = cfg.evaluateDirectory(p, outputDir); err != nil {
		return
	}
	result.HeaderOutputDir, err = cfg.evaluateDirectory(p, headerOutputDir)
	return
}

func GetCSharpOutputDir(p Project) (Directory, error) {
	cfg := p.ActiveConfiguration()
	outputDir, err := getEvaluatedProperty(p, cfg, PROPERTY_OUTPUT_DIR, DEFAULT_OUTPUT_DIR)
	if err != nil {
		return Directory{}, err
	}
	return p.Dir().AbsoluteFolder(outputDir), nil
}

func generatedItemPath(sliceName string, ext string) string {
	basename := filepath.Base(ToOSPath(sliceName))
	return strings.TrimSuffix(basename, filepath.Ext(basename)) + ext
}

/***************************************
 * Resolvers
 ***************************************/

func ResolveCppGeneratedFiles(p Project) (result CppGeneratedFiles, err error) {
	items, err := p.SliceItems()
	if err != nil || len(items) == 0 {
		return
	}

	var perConfiguration []CppOutputDirs
	if perConfiguration, result.Partitioned, err = getCppOutputDirsPerConfiguration(p); err != nil {
		return
	}

	active := p.ActiveConfiguration()
	sourceExt, err := getEvaluatedProperty(p, active, PROPERTY_SOURCE_EXT, DEFAULT_CPP_SOURCE_EXT)
	if err != nil {
		return
	}
	headerExt, err := getEvaluatedProperty(p, active, PROPERTY_HEADER_EXT, DEFAULT_CPP_HEADER_EXT)
	if err != nil {
		return
	}

	if !result.Partitioned {
		var dirs CppOutputDirs
		if dirs, err = GetCppOutputDirs(p, active); err != nil {
			return
		}
		perConfiguration = []CppOutputDirs{dirs}
	}

	for _, dirs := range perConfiguration {
		cfg := dirs.Configuration
		base.LogTrace(LogSlice, "%s: %v generates C++ sources in %q and headers in %q", p.Name(), cfg, dirs.OutputDir, dirs.HeaderOutputDir)

		for _, item := range items {
			result.FileSets = append(result.FileSets, CppGeneratedFileSet{
				Configuration: cfg,
				Filename:      item,
				Sources:       NewFileSet(dirs.OutputDir.AbsoluteFile(generatedItemPath(item, sourceExt))),
				Headers:       NewFileSet(dirs.HeaderOutputDir.AbsoluteFile(generatedItemPath(item, headerExt))),
			})
		}
	}
	return
}

func ResolveCSharpGeneratedFiles(p Project) (GeneratedFileSet, error) {
	items, err := p.SliceItems()
	if err != nil || len(items) == 0 {
		return GeneratedFileSet{}, err
	}

	outputDir, err := GetCSharpOutputDir(p)
	if err != nil {
		return nil, err
	}

	generated := make(GeneratedFileSet, len(items))
	for _, item := range items {
		generated[item] = NewFileSet(outputDir.AbsoluteFile(generatedItemPath(item, CSHARP_EXT)))
	}
	return generated, nil
}

// ResolveGeneratedFiles returns the flattened set of any IceBuilder project.
func ResolveGeneratedFiles(p Project) (GeneratedFileSet, error) {
	switch t := p.Type(); t {
	case PROJECT_CPP:
		generated, err := ResolveCppGeneratedFiles(p)
		if err != nil {
			return nil, err
		}
		return generated.Flatten(), nil
	case PROJECT_CSHARP:
		return ResolveCSharpGeneratedFiles(p)
	default:
		return nil, fmt.Errorf("project %q of type %v can't generate Slice files", p.Name(), t)
	}
}
