package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/daoism/internal/mapping"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeWriteFailed = "E007" // File write error

	// Catalog definition errors
	ErrCodeEntity    = "E101" // Entity table or role attribute
	ErrCodeAttribute = "E102" // Attribute column, type or category
	ErrCodeQuery     = "E103" // Named query entity or text

	// Runtime errors
	ErrCodeScenario = "E201" // Scenario could not be loaded or explained
	ErrCodeDatabase = "E202" // Connection or statement failure
	ErrCodeArgs     = "E203" // Bad flag or argument value
)

// LoadError is a catalog loading problem with its CUE position.
type LoadError struct {
	Code    string
	Field   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadCatalogDir loads every CUE file in dir and converts all definition
// errors to LoadErrors. The catalog is nil when the directory itself could
// not be loaded.
func LoadCatalogDir(dir string) (*mapping.Catalog, []*LoadError) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []*LoadError{{Code: ErrCodeNotFound, Message: fmt.Sprintf("catalog directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []*LoadError{{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing catalog directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []*LoadError{{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []*LoadError{{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(files) == 0 {
		return nil, []*LoadError{{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	cat, errs := mapping.LoadAll(dir)
	out := make([]*LoadError, 0, len(errs))
	for _, err := range errs {
		out = append(out, convertCatalogError(err))
	}
	if cat == nil && len(out) > 0 && out[0].Code == ErrCodeGeneric {
		out[0].Code = ErrCodeLoadFailed
	}
	return cat, out
}

// FindCUEFiles returns the .cue files directly inside dir.
func FindCUEFiles(dir string) ([]string, error) {
	return filepath.Glob(filepath.Join(dir, "*.cue"))
}

func convertCatalogError(err error) *LoadError {
	var ce *mapping.CompileError
	if errors.As(err, &ce) {
		return &LoadError{
			Code:    MapFieldToErrorCode(ce.Field),
			Field:   ce.Field,
			Message: ce.Message,
			Pos:     ce.Pos,
		}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
}

// MapFieldToErrorCode maps a catalog field path such as
// "entity.VServer.attributes.host.type" to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case strings.HasPrefix(field, "entity.") && strings.Contains(field, ".attributes."):
		return ErrCodeAttribute
	case strings.HasPrefix(field, "entity."):
		return ErrCodeEntity
	case strings.HasPrefix(field, "query."):
		return ErrCodeQuery
	default:
		return ErrCodeGeneric
	}
}
