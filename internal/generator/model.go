package generator

import (
	"fmt"
	"go/parser"
	"go/token"
	"go/types"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
)

// target is the extracted shape of one eligible marked declaration. It is
// built once, handed to the emitter, and discarded.
type target struct {
	Name        string // short type name
	PkgName     string
	PkgPath     string
	Pos         token.Position
	BuilderName string // JvmBuilder_<Name>
	FileName    string // JvmBuilder_<Name>.go
	TypeParams  []typeParam
	Fields      []field
	Debug       bool
}

// typeParam mirrors one declared type parameter onto the builder. An
// unbounded parameter carries the empty interface and is emitted as any.
type typeParam struct {
	Name       string
	Constraint types.Type
}

// field describes one target struct field, in declaration order.
type field struct {
	Name     string
	Type     types.Type
	Nullable bool   // pointer-typed on the target; stored as-is, no wrapper
	Default  string // declared default as Go expression text ("" = required)
	Setter   string
	VarName  string // unexported builder field holding the optional value
}

// buildTarget validates eligibility and resolves the model for one marked
// declaration. Any error here means report-and-skip for this declaration.
func (g *generator) buildTarget(m markedType) (*target, error) {
	if m.Spec.Assign.IsValid() {
		return nil, fmt.Errorf("declaration is a type alias, %s requires a struct type definition", directiveMarker)
	}
	obj := g.pkg.Types.Scope().Lookup(m.Name)
	if obj == nil {
		return nil, fmt.Errorf("type not found in package %s", g.pkg.Name)
	}
	named, ok := obj.Type().(*types.Named)
	if !ok {
		return nil, fmt.Errorf("declaration is not a defined type, %s requires a struct type definition", directiveMarker)
	}
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return nil, fmt.Errorf("declaration is not a struct type, %s requires a struct type definition", directiveMarker)
	}

	prefix := g.cfg.Prefix
	if m.Dir.HasPrefix {
		prefix = m.Dir.Prefix
	}
	t := &target{
		Name:        m.Name,
		PkgName:     g.pkg.Name,
		PkgPath:     g.pkg.PkgPath,
		Pos:         m.Pos,
		BuilderName: "JvmBuilder_" + m.Name,
		FileName:    "JvmBuilder_" + m.Name + ".go",
		Debug:       m.Dir.Debug,
	}
	for i := 0; i < named.TypeParams().Len(); i++ {
		tp := named.TypeParams().At(i)
		t.TypeParams = append(t.TypeParams, typeParam{Name: tp.Obj().Name(), Constraint: tp.Constraint()})
	}

	setters := map[string]string{} // setter name -> field name
	vars := map[string]string{}    // builder field name -> field name
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		def, err := defaultExpr(reflect.StructTag(st.Tag(i)), f.Type())
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name(), err)
		}
		fld := field{
			Name:    f.Name(),
			Type:    f.Type(),
			Default: def,
			Setter:  setterName(prefix, f.Name()),
			VarName: lowerFirst(f.Name()),
		}
		_, fld.Nullable = f.Type().(*types.Pointer)
		if fld.Setter == "Build" || fld.Setter == "MustBuild" {
			return nil, fmt.Errorf("field %s: setter name %s collides with the builder's %s method", f.Name(), fld.Setter, fld.Setter)
		}
		if prev, ok := setters[fld.Setter]; ok {
			return nil, fmt.Errorf("field %s: setter name %s collides with field %s", f.Name(), fld.Setter, prev)
		}
		if prev, ok := vars[fld.VarName]; ok {
			return nil, fmt.Errorf("field %s: builder field name %s collides with field %s", f.Name(), fld.VarName, prev)
		}
		setters[fld.Setter] = f.Name()
		vars[fld.VarName] = f.Name()
		t.Fields = append(t.Fields, fld)
	}
	return t, nil
}

// setterName derives the generated setter name: the field name itself when no
// prefix applies, else prefix plus the capitalized field name.
func setterName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	if r := []rune(name); len(r) > 0 && unicode.IsUpper(r[0]) {
		return prefix + name
	}
	return prefix + inflect.Camelize(name)
}

// defaultExpr resolves the builder tag of one field to a Go expression, or ""
// when the field declares no default. The tag value is expression text, except
// that for string-kind fields a bare value is taken as the literal string
// content.
func defaultExpr(tag reflect.StructTag, ft types.Type) (string, error) {
	v, ok := tag.Lookup("builder")
	if !ok {
		return "", nil
	}
	expr, ok := strings.CutPrefix(v, "default=")
	if !ok {
		return "", fmt.Errorf("unsupported builder tag %q, expected builder:\"default=<expr>\"", v)
	}
	if expr == "" {
		return "", fmt.Errorf("empty default expression in builder tag")
	}
	if isStringKind(ft) && !isStringLit(expr) {
		return strconv.Quote(expr), nil
	}
	if _, err := parser.ParseExpr(expr); err != nil {
		return "", fmt.Errorf("default expression %q does not parse: %w", expr, err)
	}
	return expr, nil
}

func isStringKind(t types.Type) bool {
	b, ok := t.Underlying().(*types.Basic)
	return ok && b.Info()&types.IsString != 0
}

func isStringLit(expr string) bool {
	if len(expr) < 2 || expr[0] != '"' {
		return false
	}
	_, err := strconv.Unquote(expr)
	return err == nil
}
