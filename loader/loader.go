// Package loader reads ledger files from disk and resolves include directives.
//
// Includes are spliced recursively into a single ast.File, with relative paths
// resolved from the directory of the including file. Structural problems --
// an unreadable file, a missing include target, or an include cycle -- fail
// the whole load: no partial file is ever returned. Syntax errors inside any
// file are collected and returned alongside the merged file instead.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/robinvdvleuten/beansql/ast"
	"github.com/robinvdvleuten/beansql/parser"
)

// StructuralError is a fatal load failure: the source could not be read or the
// include graph is malformed. It aborts the load, unlike syntax errors which
// are accumulated per line.
type StructuralError struct {
	Path    string
	Message string
	Err     error
}

func (e *StructuralError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *StructuralError) Unwrap() error { return e.Err }

// Result is a fully loaded ledger source tree: the merged file plus every
// syntax error encountered across all included files, in splice order.
type Result struct {
	File         *ast.File
	SyntaxErrors []*parser.SyntaxError

	// Files lists the absolute paths that were read, root first. Used by the
	// watch loop and the snapshot fingerprint.
	Files []string
}

// Loader reads and parses ledger files.
type Loader struct{}

// New creates a Loader.
func New() *Loader {
	return &Loader{}
}

// Load reads the ledger at path, recursively splicing includes. A directory
// path loads every *.bean file directly inside it, in lexical order. Returns
// a StructuralError if any file cannot be read or the includes form a cycle.
func (l *Loader) Load(ctx context.Context, path string) (*Result, error) {
	state := &loadState{
		inProgress: make(map[string]bool),
		result:     &Result{},
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, &StructuralError{Path: path, Message: "failed to read source", Err: err}
	}
	if info.IsDir() {
		return l.loadDir(ctx, state, path)
	}

	file, err := state.load(ctx, path)
	if err != nil {
		return nil, err
	}
	state.result.File = file
	return state.result, nil
}

func (l *Loader) loadDir(ctx context.Context, state *loadState, dir string) (*Result, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.bean"))
	if err != nil {
		return nil, &StructuralError{Path: dir, Message: "failed to list directory", Err: err}
	}
	if len(paths) == 0 {
		return nil, &StructuralError{Path: dir, Message: "no *.bean files in directory"}
	}
	sort.Strings(paths)

	merged := &ast.File{}
	for _, path := range paths {
		file, err := state.load(ctx, path)
		if err != nil {
			return nil, err
		}
		merged.Directives = append(merged.Directives, file.Directives...)
		merged.Options = append(merged.Options, file.Options...)
	}
	state.result.File = merged
	return state.result, nil
}

// LoadBytes parses in-memory source (stdin, tests). Includes are resolved
// relative to the current directory.
func (l *Loader) LoadBytes(ctx context.Context, filename string, src []byte) (*Result, error) {
	state := &loadState{
		inProgress: make(map[string]bool),
		result:     &Result{},
	}
	file, err := state.parse(ctx, filename, ".", src)
	if err != nil {
		return nil, err
	}
	state.result.File = file
	return state.result, nil
}

// loadState tracks the include stack during recursive loading. inProgress
// holds the files currently being expanded; re-entering one is a cycle.
type loadState struct {
	inProgress map[string]bool
	result     *Result
}

func (s *loadState) load(ctx context.Context, path string) (*ast.File, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, &StructuralError{Path: path, Message: "failed to resolve path", Err: err}
	}

	if s.inProgress[absPath] {
		return nil, &StructuralError{Path: path, Message: "include cycle detected"}
	}
	s.inProgress[absPath] = true
	defer delete(s.inProgress, absPath)

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, &StructuralError{Path: path, Message: "failed to read file", Err: err}
	}
	s.result.Files = append(s.result.Files, absPath)

	return s.parse(ctx, path, filepath.Dir(absPath), data)
}

func (s *loadState) parse(ctx context.Context, path, baseDir string, data []byte) (*ast.File, error) {
	file, syntaxErrs := parser.ParseContext(ctx, path, data)
	s.result.SyntaxErrors = append(s.result.SyntaxErrors, syntaxErrs...)

	if len(file.Includes) == 0 {
		return file, nil
	}

	merged := &ast.File{Options: file.Options}

	// Splice each included stream at the line of its include directive, so
	// the merged stream preserves source order across file boundaries. That
	// order is the tie-break for same-date directives during booking.
	rest := file.Directives
	for _, inc := range file.Includes {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		for len(rest) > 0 && rest[0].Position().Line < inc.Pos.Line {
			merged.Directives = append(merged.Directives, rest[0])
			rest = rest[1:]
		}

		includePath := inc.Filename
		if !filepath.IsAbs(includePath) {
			includePath = filepath.Join(baseDir, includePath)
		}

		included, err := s.load(ctx, includePath)
		if err != nil {
			var serr *StructuralError
			if errors.As(err, &serr) {
				return nil, err
			}
			return nil, &StructuralError{Path: path, Message: "failed to load include", Err: err}
		}

		merged.Directives = append(merged.Directives, included.Directives...)
		merged.Options = append(merged.Options, included.Options...)
	}
	merged.Directives = append(merged.Directives, rest...)

	return merged, nil
}
