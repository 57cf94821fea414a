package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/cohortcheck/internal/cohort"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeReadFailed  = "E002" // Input could not be read
	ErrCodeUnsupported = "E003" // Unsupported input file type
	ErrCodeLoadFailed  = "E004" // CUE compile failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE value not concrete or not exportable

	// Expression errors
	ErrCodeDecode     = "E101" // Cohort expression does not decode
	ErrCodeRuleFailed = "E102" // A rule failed while checking

	// Configuration errors
	ErrCodeConfig      = "E201" // Config file invalid
	ErrCodeUnknownRule = "E202" // Unknown rule name in --disable or config
	ErrCodeInvalidFlag = "E203" // Flag value invalid

	// SQL errors
	ErrCodeRender    = "E301" // Template could not be rendered
	ErrCodeTranslate = "E302" // SQL could not be translated
	ErrCodePatterns  = "E303" // Pattern table could not be loaded
	ErrCodeCodeset   = "E304" // Concept set SQL could not be built
)

// LoadError represents an error that occurred while loading an input file.
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

// LoadExpression reads a cohort expression from path. The format follows
// the extension: .json, .yaml/.yml or .cue.
func LoadExpression(path string) (*cohort.CohortExpression, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("expression file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}

	var expr *cohort.CohortExpression
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		expr, err = cohort.Parse(data)
	case ".yaml", ".yml":
		expr, err = cohort.ParseYAML(data)
	case ".cue":
		var jsonData []byte
		jsonData, err = exportCUE(path, data)
		if err != nil {
			return nil, err
		}
		expr, err = cohort.Parse(jsonData)
	default:
		return nil, &LoadError{Code: ErrCodeUnsupported, Message: fmt.Sprintf("unsupported expression file type %q (want .json, .yaml, .yml or .cue)", ext)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeDecode, Message: fmt.Sprintf("%s: %v", path, err)}
	}
	return expr, nil
}

// exportCUE evaluates a CUE file and exports it as JSON. A top-level
// "expression" field is exported on its own, so a CUE file may carry
// definitions and helper values next to the expression.
func exportCUE(path string, data []byte) ([]byte, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("compiling CUE: %v", err), Pos: firstPos(err)}
	}

	if inner := value.LookupPath(cue.ParsePath("expression")); inner.Exists() {
		value = inner
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err), Pos: firstPos(err)}
	}
	out, err := value.MarshalJSON()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("exporting CUE value: %v", err), Pos: firstPos(err)}
	}
	return out, nil
}

// firstPos returns the position of the first CUE error, if any.
func firstPos(err error) token.Pos {
	for _, e := range cueerrors.Errors(err) {
		if pos := e.Position(); pos.IsValid() {
			return pos
		}
	}
	return token.NoPos
}

// readInput reads a SQL input file, or stdin when path is "-".
func readInput(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if errors.Is(err, fs.ErrNotExist) {
		return "", &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("file not found: %s", path)}
	}
	if err != nil {
		return "", &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}
	return string(data), nil
}

// loadFailure reports a load error through f and returns the matching
// ExitError. Input problems are command errors.
func loadFailure(f *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return f.Fail(ExitCommandError, loadErr.Code, loadErr.Message, nil)
	}
	return f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
}
