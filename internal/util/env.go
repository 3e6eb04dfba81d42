package util

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/loog-project/diffy/pkg/diffy"
)

// DocumentEnv is the environment filter expressions are evaluated against.
//
//	All()
//	IDs("config.yaml", "values.yaml")
//	Has("spec.replicas") && Get("spec.replicas") > 1
type DocumentEnv struct {
	// ID of the document being committed.
	ID string
	// Source the document was read from.
	Source string
	// Doc is the document as plain data, see [diffy.ToAny].
	Doc any
}

// NewDocumentEnv returns the environment for the given document.
func NewDocumentEnv(id, source string, value diffy.Value) DocumentEnv {
	return DocumentEnv{
		ID:     id,
		Source: source,
		Doc:    diffy.ToAny(value),
	}
}

// CompileFilter compiles a boolean filter expression over [DocumentEnv].
func CompileFilter(expression string) (*vm.Program, error) {
	prog, err := expr.Compile(expression, expr.Env(DocumentEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", expression, err)
	}
	return prog, nil
}

// RunFilter evaluates a program compiled by [CompileFilter].
func RunFilter(prog *vm.Program, env DocumentEnv) (bool, error) {
	out, err := expr.Run(prog, env)
	if err != nil {
		return false, err
	}
	pass, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("filter returned %T, want bool", out)
	}
	return pass, nil
}

func (e DocumentEnv) All() bool {
	return true
}

func (e DocumentEnv) None() bool {
	return false
}

func (e DocumentEnv) IDs(vals ...string) bool {
	if len(vals) == 0 {
		return true
	}
	for _, val := range vals {
		if val == e.ID {
			return true
		}
	}
	return false
}

// Has reports whether the dotted path exists in the document.
func (e DocumentEnv) Has(path string) bool {
	_, ok := e.lookup(path)
	return ok
}

// Get returns the value at the dotted path, or nil if there is none.
func (e DocumentEnv) Get(path string) any {
	v, _ := e.lookup(path)
	return v
}

func (e DocumentEnv) lookup(path string) (any, bool) {
	cur := e.Doc
	if path == "" {
		return cur, cur != nil
	}
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
