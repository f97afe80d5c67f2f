package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/kustoq/internal/expr"
	"github.com/roach88/kustoq/internal/querydef"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No definition files found
	ErrCodeLoadFailed  = "E004" // YAML or CUE load failed
	ErrCodeNotFound    = "E005" // Path or query not found
	ErrCodeBuildFailed = "E006" // Definition does not compile to a query
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeCatalog     = "E008" // Catalog open/read/write error
	ErrCodeTemplate    = "E009" // Template parse/render error
	ErrCodeBadFlag     = "E010" // Malformed flag value
	ErrCodeLint        = "E011" // Lint warning under --strict

	// Definition errors
	ErrCodeDefinition    = "E101" // Malformed definition document
	ErrCodeDuplicateName = "E102" // Two definitions share a name

	// Query construction errors
	ErrCodeUnsupportedLiteral  = "E201"
	ErrCodeInvalidOperand      = "E202"
	ErrCodeEmptyProjection     = "E203"
	ErrCodeEmptyAggregation    = "E204"
	ErrCodeUnsupportedJoinKind = "E205"
	ErrCodeInvalidArgument     = "E206"
)

// MapErrorToCode maps a library error to a CLI error code.
func MapErrorToCode(err error) string {
	switch expr.CodeOf(err) {
	case expr.ErrCodeUnsupportedLiteralType:
		return ErrCodeUnsupportedLiteral
	case expr.ErrCodeInvalidOperand:
		return ErrCodeInvalidOperand
	case expr.ErrCodeEmptyProjection:
		return ErrCodeEmptyProjection
	case expr.ErrCodeEmptyAggregation:
		return ErrCodeEmptyAggregation
	case expr.ErrCodeUnsupportedJoinKind:
		return ErrCodeUnsupportedJoinKind
	case expr.ErrCodeInvalidArgument:
		return ErrCodeInvalidArgument
	}

	var defErr *querydef.Error
	if errors.As(err, &defErr) {
		return ErrCodeDefinition
	}
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	return ErrCodeGeneric
}

// LoadedDefinition is a definition plus the file it came from.
type LoadedDefinition struct {
	querydef.Definition
	Source string
}

// LoadResult contains the definitions found under a path.
type LoadResult struct {
	Definitions []LoadedDefinition
	FileCount   int
}

// Find returns the definition with the given name.
func (r *LoadResult) Find(name string) (LoadedDefinition, bool) {
	for _, d := range r.Definitions {
		if d.Name == name {
			return d, true
		}
	}
	return LoadedDefinition{}, false
}

// LoadError represents an error that occurred while loading definitions.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDefinitions loads query definitions from a file or a directory.
//
// A file is decoded by extension: .yaml/.yml as YAML documents, .cue as a
// standalone CUE file. A directory contributes every YAML file in it, plus
// its CUE package when it has .cue files. Subdirectories are not scanned.
func LoadDefinitions(path string) (*LoadResult, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("path not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing path: %v", err)}
	}

	result := &LoadResult{}
	if !info.IsDir() {
		defs, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		result.FileCount = 1
		if err := result.add(path, defs); err != nil {
			return nil, err
		}
		return result, nil
	}

	yamlFiles, cueFiles, err := FindDefinitionFiles(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(yamlFiles) == 0 && len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no YAML or CUE files found in %s", path)}
	}
	result.FileCount = len(yamlFiles) + len(cueFiles)

	for _, f := range yamlFiles {
		defs, err := querydef.LoadYAML(f)
		if err != nil {
			return nil, convertLoadError(err)
		}
		if err := result.add(f, defs); err != nil {
			return nil, err
		}
	}

	if len(cueFiles) > 0 {
		defs, err := querydef.LoadCUE(path)
		if err != nil {
			return nil, convertLoadError(err)
		}
		if err := result.add(path, defs); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func loadFile(path string) ([]querydef.Definition, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		defs, err := querydef.LoadYAML(path)
		if err != nil {
			return nil, convertLoadError(err)
		}
		return defs, nil
	case ".cue":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}
		}
		defs, err := querydef.ParseCUE(data, path)
		if err != nil {
			return nil, convertLoadError(err)
		}
		return defs, nil
	default:
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("unsupported file type %q: want .yaml, .yml or .cue", filepath.Ext(path))}
	}
}

func (r *LoadResult) add(source string, defs []querydef.Definition) error {
	for _, d := range defs {
		if prev, ok := r.Find(d.Name); ok {
			return &LoadError{
				Code:    ErrCodeDuplicateName,
				Message: fmt.Sprintf("query %q is defined in both %s and %s", d.Name, prev.Source, source),
			}
		}
		r.Definitions = append(r.Definitions, LoadedDefinition{Definition: d, Source: source})
	}
	return nil
}

// FindDefinitionFiles lists the YAML and CUE files directly inside dir,
// sorted by name.
func FindDefinitionFiles(dir string) (yamlFiles, cueFiles []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		p := filepath.Join(dir, e.Name())
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			yamlFiles = append(yamlFiles, p)
		case ".cue":
			cueFiles = append(cueFiles, p)
		}
	}
	sort.Strings(yamlFiles)
	sort.Strings(cueFiles)
	return yamlFiles, cueFiles, nil
}

// convertLoadError converts a querydef error to a LoadError with position
// info.
func convertLoadError(err error) *LoadError {
	var defErr *querydef.Error
	if errors.As(err, &defErr) {
		if defErr.Pos.IsValid() {
			return &LoadError{
				Code:    ErrCodeDefinition,
				Message: fmt.Sprintf("%s: %s", defErr.Field, defErr.Message),
				Pos:     defErr.Pos,
			}
		}
		return &LoadError{Code: ErrCodeDefinition, Message: err.Error()}
	}
	return &LoadError{
		Code:    ErrCodeLoadFailed,
		Message: err.Error(),
	}
}
