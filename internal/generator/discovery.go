package generator

import (
	"fmt"
	"go/ast"
	"go/token"
	"strings"

	"golang.org/x/tools/go/packages"
)

// directiveMarker marks a type declaration for builder generation. Arguments
// follow on the same line: prefix=<P> sets the setter-name prefix for this
// type, debug enables the per-file diagnostic trace.
const directiveMarker = "//buildergen:builder"

// loadDir loads the Go package(s) for a directory.
func loadDir(dir string) ([]*packages.Package, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedDeps | packages.NeedFiles | packages.NeedCompiledGoFiles,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, "./")
	if err != nil {
		return nil, err
	}
	var result []*packages.Package
	for _, p := range pkgs {
		if len(p.Errors) > 0 {
			return nil, p.Errors[0]
		}
		result = append(result, p)
	}
	return result, nil
}

// directive holds the parsed arguments of one builder marker.
type directive struct {
	Prefix    string
	HasPrefix bool // distinguishes prefix="" from no prefix argument
	Debug     bool
}

// markedType is a type declaration carrying the builder marker.
type markedType struct {
	Name string
	Spec *ast.TypeSpec
	Dir  directive
	Pos  token.Position
}

// scanDirectives walks the package syntax for type declarations whose doc
// comment carries the builder marker, in source order. A malformed directive
// is reported and its declaration skipped. A marker on a grouped declaration
// with several specs is ambiguous and reported, since prefix and debug bind
// to a single type.
func (g *generator) scanDirectives() []markedType {
	var marked []markedType
	for _, file := range g.pkg.Syntax {
		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			if len(gd.Specs) > 1 {
				if _, ok := directiveLine(gd.Doc); ok {
					pos := g.pkg.Fset.Position(gd.Pos())
					g.diag.errorf(pos, "%s on a grouped type declaration, mark each type inside the group instead", directiveMarker)
				}
			}
			for _, spec := range gd.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				line, ok := directiveLine(ts.Doc)
				if !ok && len(gd.Specs) == 1 {
					// for an ungrouped declaration the doc sits on the GenDecl
					line, ok = directiveLine(gd.Doc)
				}
				if !ok {
					continue
				}
				pos := g.pkg.Fset.Position(ts.Pos())
				dir, err := parseDirective(line)
				if err != nil {
					g.diag.errorf(pos, "%s: %v", ts.Name.Name, err)
					continue
				}
				marked = append(marked, markedType{Name: ts.Name.Name, Spec: ts, Dir: dir, Pos: pos})
			}
		}
	}
	return marked
}

// directiveLine returns the marker line from a doc comment, if present.
func directiveLine(doc *ast.CommentGroup) (string, bool) {
	if doc == nil {
		return "", false
	}
	for _, c := range doc.List {
		if c.Text == directiveMarker || strings.HasPrefix(c.Text, directiveMarker+" ") {
			return c.Text, true
		}
	}
	return "", false
}

// parseDirective parses the arguments following the marker.
func parseDirective(line string) (directive, error) {
	var d directive
	args := strings.Fields(strings.TrimPrefix(line, directiveMarker))
	for _, arg := range args {
		switch {
		case arg == "debug":
			d.Debug = true
		case strings.HasPrefix(arg, "prefix="):
			d.Prefix = strings.TrimPrefix(arg, "prefix=")
			d.HasPrefix = true
		default:
			return d, fmt.Errorf("unknown %s argument %q", directiveMarker, arg)
		}
	}
	return d, nil
}
