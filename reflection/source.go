package reflection

import (
	"go/ast"
	"go/parser"
	"go/token"
	"runtime"
	"strconv"
	"sync"
)

type parsedFile struct {
	fset *token.FileSet
	file *ast.File
	err  error
}

// files caches parsed source files by path.
var files sync.Map

func parseSource(path string) (*token.FileSet, *ast.File, error) {
	if cached, ok := files.Load(path); ok {
		p := cached.(*parsedFile)

		return p.fset, p.file, p.err
	}

	fset := token.NewFileSet()
	// Comments are not attached to the tree without parser.ParseComments.
	file, err := parser.ParseFile(fset, path, nil, parser.SkipObjectResolution)

	actual, _ := files.LoadOrStore(path, &parsedFile{fset: fset, file: file, err: err})
	p := actual.(*parsedFile)

	return p.fset, p.file, p.err
}

// sourceArguments locates the function starting at pc in its source file and
// returns its parameter names. It only succeeds when a function declared on
// that line has exactly n parameters.
func sourceArguments(pc uintptr, n int) ([]string, bool) {
	f := runtime.FuncForPC(pc)
	if f == nil {
		return nil, false
	}

	path, line := f.FileLine(f.Entry())
	if path == "" || line == 0 {
		return nil, false
	}

	fset, file, err := parseSource(path)
	if err != nil || file == nil {
		return nil, false
	}

	var found []string

	ast.Inspect(file, func(node ast.Node) bool {
		if found != nil {
			return false
		}

		var ft *ast.FuncType

		switch fn := node.(type) {
		case *ast.FuncDecl:
			ft = fn.Type
		case *ast.FuncLit:
			ft = fn.Type
		default:
			return true
		}

		if fset.Position(ft.Pos()).Line != line {
			return true
		}

		if names := paramNames(ft); len(names) == n {
			found = names

			return false
		}

		return true
	})

	return found, found != nil
}

func paramNames(ft *ast.FuncType) []string {
	names := []string{}
	if ft.Params == nil {
		return names
	}

	for _, field := range ft.Params.List {
		if len(field.Names) == 0 {
			names = append(names, "arg"+strconv.Itoa(len(names)))

			continue
		}

		for _, ident := range field.Names {
			names = append(names, ident.Name)
		}
	}

	return names
}
