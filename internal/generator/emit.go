package generator

import (
	"bytes"
	"fmt"
	"go/types"

	"github.com/dave/jennifer/jen"
	"golang.org/x/tools/imports"
)

// emitter renders Go type references relative to the target's package.
type emitter struct {
	pkgPath string
}

// emit synthesizes the builder source for one target: the builder struct, a
// constructor, one fluent setter per field, Build and MustBuild. Output is a
// pure function of the model, so regenerating an unchanged declaration yields
// byte-identical bytes.
func (g *generator) emit(t *target) ([]byte, error) {
	e := &emitter{pkgPath: t.PkgPath}

	// resolve every referenced type up front so failures surface before any
	// code is assembled
	for _, fl := range t.Fields {
		if _, err := e.typeExpr(fl.Type); err != nil {
			return nil, fmt.Errorf("field %s: %w", fl.Name, err)
		}
	}
	tps, err := e.typeParamDecls(t)
	if err != nil {
		return nil, err
	}
	builderRef := func() *jen.Statement { return instantiate(t, t.BuilderName) }
	targetRef := func() *jen.Statement { return instantiate(t, t.Name) }
	fieldType := func(fl field) jen.Code {
		c, _ := e.typeExpr(fl.Type)
		return c
	}
	recv := func() *jen.Statement { return jen.Id("b").Op("*").Add(builderRef()) }

	f := jen.NewFilePathName(t.PkgPath, t.PkgName)
	f.HeaderComment(fmt.Sprintf("Code generated by %s; DO NOT EDIT.", g.cfg.Command))
	f.HeaderComment("buildergen " + g.cfg.Version)

	f.Commentf("%s accumulates field values for %s before construction.", t.BuilderName, t.Name)
	decl := f.Type().Id(t.BuilderName)
	if len(tps) > 0 {
		decl.Types(tps...)
	}
	decl.StructFunc(func(grp *jen.Group) {
		for _, fl := range t.Fields {
			st := grp.Id(fl.VarName)
			if !fl.Nullable {
				st.Op("*")
			}
			st.Add(fieldType(fl))
		}
	})

	f.Commentf("New%s returns a builder with every field unset.", t.BuilderName)
	ctor := f.Func().Id("New" + t.BuilderName)
	if len(tps) > 0 {
		ctor.Types(tps...)
	}
	ctor.Params().Op("*").Add(builderRef()).Block(
		jen.Return(jen.Op("&").Add(builderRef()).Values()),
	)

	for _, fl := range t.Fields {
		setter := f.Func().Params(recv()).Id(fl.Setter).Params(jen.Id("v").Add(fieldType(fl))).Op("*").Add(builderRef())
		assign := jen.Id("b").Dot(fl.VarName).Op("=")
		if !fl.Nullable {
			assign.Op("&")
		}
		setter.Block(
			assign.Id("v"),
			jen.Return(jen.Id("b")),
		)
	}

	f.Commentf("Build constructs a %s from the collected fields.", t.Name)
	f.Func().Params(recv()).Id("Build").Params().Params(targetRef(), jen.Error()).BlockFunc(func(grp *jen.Group) {
		for _, fl := range t.Fields {
			if fl.Default != "" || fl.Nullable {
				continue
			}
			grp.If(jen.Id("b").Dot(fl.VarName).Op("==").Nil()).Block(
				jen.Return(targetRef().Values(), jen.Qual("fmt", "Errorf").Call(
					jen.Lit("buildergen: required field %q of "+t.Name+" is not set"),
					jen.Lit(fl.Name),
				)),
			)
		}
		grp.Id("out").Op(":=").Add(targetRef()).ValuesFunc(func(vg *jen.Group) {
			for _, fl := range t.Fields {
				if fl.Default != "" {
					continue
				}
				v := vg.Id(fl.Name).Op(":")
				if !fl.Nullable {
					v.Op("*")
				}
				v.Id("b").Dot(fl.VarName)
			}
		})
		for _, fl := range t.Fields {
			if fl.Default == "" {
				continue
			}
			grp.Id("out").Dot(fl.Name).Op("=").Id(fl.Default)
			set := jen.Id("out").Dot(fl.Name).Op("=")
			if !fl.Nullable {
				set.Op("*")
			}
			grp.If(jen.Id("b").Dot(fl.VarName).Op("!=").Nil()).Block(
				set.Id("b").Dot(fl.VarName),
			)
		}
		grp.Return(jen.Id("out"), jen.Nil())
	})

	f.Commentf("MustBuild is like Build but panics when Build would return an error.")
	f.Func().Params(recv()).Id("MustBuild").Params().Add(targetRef()).Block(
		jen.List(jen.Id("out"), jen.Id("err")).Op(":=").Id("b").Dot("Build").Call(),
		jen.If(jen.Id("err").Op("!=").Nil()).Block(jen.Panic(jen.Id("err"))),
		jen.Return(jen.Id("out")),
	)

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, err
	}
	// default expressions are spliced in as raw text, so their imports are
	// unknown to jennifer; goimports fills them in
	src, err := imports.Process(t.FileName, buf.Bytes(), nil)
	if err != nil {
		return nil, fmt.Errorf("format generated source: %w", err)
	}
	return src, nil
}

// instantiate renders <name> with the target's type arguments re-applied.
func instantiate(t *target, name string) *jen.Statement {
	s := jen.Id(name)
	if len(t.TypeParams) > 0 {
		var args []jen.Code
		for _, tp := range t.TypeParams {
			args = append(args, jen.Id(tp.Name))
		}
		s.Types(args...)
	}
	return s
}

// typeParamDecls renders the target's type parameter list with constraints.
func (e *emitter) typeParamDecls(t *target) ([]jen.Code, error) {
	var out []jen.Code
	for _, tp := range t.TypeParams {
		c, err := e.constraintExpr(tp.Constraint)
		if err != nil {
			return nil, fmt.Errorf("type parameter %s: %w", tp.Name, err)
		}
		out = append(out, jen.Id(tp.Name).Add(c))
	}
	return out, nil
}

// constraintExpr renders a type parameter bound; an unbounded parameter
// becomes any.
func (e *emitter) constraintExpr(t types.Type) (*jen.Statement, error) {
	if iface, ok := t.Underlying().(*types.Interface); ok && iface.Empty() {
		return jen.Any(), nil
	}
	if _, ok := t.(*types.Interface); ok {
		return nil, fmt.Errorf("cannot reference inline constraint %s, declare a named constraint instead", t)
	}
	return e.typeExpr(t)
}

// typeExpr converts a go/types type into a referenceable jennifer expression,
// qualified relative to the target package.
func (e *emitter) typeExpr(t types.Type) (*jen.Statement, error) {
	switch t := t.(type) {
	case *types.Alias:
		return e.namedExpr(t.Obj(), nil)
	case *types.Basic:
		if t.Kind() == types.UnsafePointer {
			return jen.Qual("unsafe", "Pointer"), nil
		}
		if t.Kind() == types.Invalid {
			return nil, fmt.Errorf("invalid type")
		}
		return jen.Id(t.Name()), nil
	case *types.Pointer:
		elem, err := e.typeExpr(t.Elem())
		if err != nil {
			return nil, err
		}
		return jen.Op("*").Add(elem), nil
	case *types.Slice:
		elem, err := e.typeExpr(t.Elem())
		if err != nil {
			return nil, err
		}
		return jen.Index().Add(elem), nil
	case *types.Array:
		elem, err := e.typeExpr(t.Elem())
		if err != nil {
			return nil, err
		}
		return jen.Index(jen.Lit(int(t.Len()))).Add(elem), nil
	case *types.Map:
		key, err := e.typeExpr(t.Key())
		if err != nil {
			return nil, err
		}
		elem, err := e.typeExpr(t.Elem())
		if err != nil {
			return nil, err
		}
		return jen.Map(key).Add(elem), nil
	case *types.Chan:
		elem, err := e.typeExpr(t.Elem())
		if err != nil {
			return nil, err
		}
		switch t.Dir() {
		case types.SendOnly:
			return jen.Chan().Op("<-").Add(elem), nil
		case types.RecvOnly:
			return jen.Op("<-").Chan().Add(elem), nil
		default:
			return jen.Chan().Add(elem), nil
		}
	case *types.Signature:
		return e.funcExpr(t)
	case *types.Named:
		var args []types.Type
		for i := 0; i < t.TypeArgs().Len(); i++ {
			args = append(args, t.TypeArgs().At(i))
		}
		return e.namedExpr(t.Obj(), args)
	case *types.TypeParam:
		return jen.Id(t.Obj().Name()), nil
	case *types.Interface:
		if t.Empty() {
			return jen.Any(), nil
		}
		return nil, fmt.Errorf("cannot reference anonymous interface type %s", t)
	case *types.Struct:
		return nil, fmt.Errorf("cannot reference anonymous struct type %s", t)
	default:
		return nil, fmt.Errorf("unsupported type %s", t)
	}
}

func (e *emitter) namedExpr(obj *types.TypeName, args []types.Type) (*jen.Statement, error) {
	var s *jen.Statement
	switch {
	case obj.Pkg() == nil:
		// predeclared: error, any, comparable
		s = jen.Id(obj.Name())
	case obj.Pkg().Path() != e.pkgPath && !obj.Exported():
		return nil, fmt.Errorf("type %s.%s is not exported and cannot be referenced from generated code", obj.Pkg().Path(), obj.Name())
	default:
		s = jen.Qual(obj.Pkg().Path(), obj.Name())
	}
	if len(args) > 0 {
		var targs []jen.Code
		for _, a := range args {
			c, err := e.typeExpr(a)
			if err != nil {
				return nil, err
			}
			targs = append(targs, c)
		}
		s.Types(targs...)
	}
	return s, nil
}

func (e *emitter) funcExpr(sig *types.Signature) (*jen.Statement, error) {
	var params []jen.Code
	for i := 0; i < sig.Params().Len(); i++ {
		pt := sig.Params().At(i).Type()
		if sig.Variadic() && i == sig.Params().Len()-1 {
			elem, err := e.typeExpr(pt.(*types.Slice).Elem())
			if err != nil {
				return nil, err
			}
			params = append(params, jen.Op("...").Add(elem))
			continue
		}
		c, err := e.typeExpr(pt)
		if err != nil {
			return nil, err
		}
		params = append(params, c)
	}
	s := jen.Func().Params(params...)
	switch sig.Results().Len() {
	case 0:
	case 1:
		r, err := e.typeExpr(sig.Results().At(0).Type())
		if err != nil {
			return nil, err
		}
		s.Add(r)
	default:
		var results []jen.Code
		for i := 0; i < sig.Results().Len(); i++ {
			r, err := e.typeExpr(sig.Results().At(i).Type())
			if err != nil {
				return nil, err
			}
			results = append(results, r)
		}
		s.Params(results...)
	}
	return s, nil
}
