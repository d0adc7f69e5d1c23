package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/roach88/statecore/internal/chart"
	"github.com/roach88/statecore/internal/compiler"
)

// Error code constants, shared by all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No scenario files found
	ErrCodeLoadFailed  = "E004" // Chart, trace or scenario could not be parsed
	ErrCodeNotFound    = "E005" // Path or trace not found
	ErrCodeBuildFailed = "E006" // Definition rejected by the compiler
	ErrCodeWriteFailed = "E007" // Database or file write error
)

// LoadError is a chart loading failure tagged with an error code.
type LoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// loadDefinition reads a .yaml, .yml or .cue chart definition.
func loadDefinition(path string) (*compiler.Definition, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("chart not found: %s", path)}
	}
	def, err := compiler.LoadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("failed to load %s", path), Err: err}
	}
	return def, nil
}

// loadChart reads and compiles a chart definition. Definition errors are
// reported as ErrCodeBuildFailed wrapping compiler.ValidationErrors.
func loadChart(path string) (*chart.Chart, error) {
	def, err := loadDefinition(path)
	if err != nil {
		return nil, err
	}
	c, err := compiler.Compile(def)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("failed to compile %s", path), Err: err}
	}
	return c, nil
}

// loadFailure converts a loadChart error into command output.
func loadFailure(f *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return commandError(f, loadErr.Code, loadErr.Message, loadErr.Err)
	}
	return commandError(f, ErrCodeGeneric, "failed to load chart", err)
}

// requireStates checks that every name is a state of c.
func requireStates(c *chart.Chart, names ...string) error {
	for _, name := range names {
		if _, ok := c.StateFor(name); !ok {
			return &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("unknown state %q in chart %s", name, c.Name())}
		}
	}
	return nil
}
