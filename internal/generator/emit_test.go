package generator

import (
	"go/types"
	"testing"

	"github.com/stretchr/testify/require"
)

func pointTarget() *target {
	return &target{
		Name:        "Point",
		PkgName:     "basic",
		PkgPath:     "example.com/basic",
		BuilderName: "JvmBuilder_Point",
		FileName:    "JvmBuilder_Point.go",
		Fields: []field{
			{Name: "X", Type: types.Typ[types.Int], Setter: "X", VarName: "x"},
			{Name: "Y", Type: types.Typ[types.Int], Setter: "Y", VarName: "y", Default: "0"},
		},
	}
}

func TestEmitPlainBuilder(t *testing.T) {
	g := &generator{cfg: Config{Command: "buildergen", Version: "test"}}
	src, err := g.emit(pointTarget())
	require.NoError(t, err)

	s := string(src)
	require.Contains(t, s, "// Code generated by buildergen; DO NOT EDIT.")
	require.Contains(t, s, "// buildergen test")
	require.Contains(t, s, "type JvmBuilder_Point struct {")
	require.Contains(t, s, "x *int")
	require.Contains(t, s, "b.x = &v")
	require.Contains(t, s, `fmt.Errorf("buildergen: required field %q of Point is not set", "X")`)
	require.Contains(t, s, "out := Point{X: *b.x}")
	require.Contains(t, s, "out.Y = 0")
	require.Contains(t, s, "if b.y != nil {")
	require.Contains(t, s, "return out, nil")
}

func TestEmitIsPureFunctionOfModel(t *testing.T) {
	g := &generator{cfg: Config{Command: "buildergen", Version: "test"}}
	first, err := g.emit(pointTarget())
	require.NoError(t, err)
	second, err := g.emit(pointTarget())
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestEmitNullableField(t *testing.T) {
	g := &generator{cfg: Config{Command: "buildergen", Version: "test"}}
	tgt := &target{
		Name:        "Profile",
		PkgName:     "p",
		PkgPath:     "example.com/p",
		BuilderName: "JvmBuilder_Profile",
		FileName:    "JvmBuilder_Profile.go",
		Fields: []field{
			{Name: "Nick", Type: types.NewPointer(types.Typ[types.String]), Setter: "Nick", VarName: "nick", Nullable: true},
		},
	}
	src, err := g.emit(tgt)
	require.NoError(t, err)

	s := string(src)
	// a nullable field is stored as-is, set as-is, and never checked
	require.Contains(t, s, "nick *string")
	require.Contains(t, s, "b.nick = v")
	require.Contains(t, s, "out := Profile{Nick: b.nick}")
	require.NotContains(t, s, "required field")
	require.NotContains(t, s, `"fmt"`)
}

func TestEmitDefaultExpressionImports(t *testing.T) {
	g := &generator{cfg: Config{Command: "buildergen", Version: "test"}}
	durT := types.NewNamed(
		types.NewTypeName(0, types.NewPackage("time", "time"), "Duration", nil),
		types.Typ[types.Int64], nil,
	)
	tgt := &target{
		Name:        "Job",
		PkgName:     "j",
		PkgPath:     "example.com/j",
		BuilderName: "JvmBuilder_Job",
		FileName:    "JvmBuilder_Job.go",
		Fields: []field{
			{Name: "Wait", Type: durT, Setter: "Wait", VarName: "wait", Default: "30 * time.Second"},
		},
	}
	src, err := g.emit(tgt)
	require.NoError(t, err)

	s := string(src)
	require.Contains(t, s, `"time"`)
	require.Contains(t, s, "out.Wait = 30 * time.Second")
}

func TestEmitUnreferenceableTypes(t *testing.T) {
	g := &generator{cfg: Config{Command: "buildergen", Version: "test"}}

	t.Run("anonymous struct field", func(t *testing.T) {
		tgt := pointTarget()
		tgt.Fields[0].Type = types.NewStruct(nil, nil)
		_, err := g.emit(tgt)
		require.ErrorContains(t, err, "field X: cannot reference anonymous struct type")
	})

	t.Run("unexported type from another package", func(t *testing.T) {
		hidden := types.NewNamed(
			types.NewTypeName(0, types.NewPackage("example.com/other", "other"), "secret", nil),
			types.Typ[types.Int], nil,
		)
		tgt := pointTarget()
		tgt.Fields[0].Type = hidden
		_, err := g.emit(tgt)
		require.ErrorContains(t, err, "is not exported and cannot be referenced")
	})
}

func TestEmitGenericBuilder(t *testing.T) {
	g := &generator{cfg: Config{Command: "buildergen", Version: "test"}}
	anyType := types.Universe.Lookup("any").Type()
	comparableType := types.Universe.Lookup("comparable").Type()
	kParam := types.NewTypeParam(types.NewTypeName(0, nil, "K", nil), comparableType)
	vParam := types.NewTypeParam(types.NewTypeName(0, nil, "V", nil), anyType)
	tgt := &target{
		Name:        "Pair",
		PkgName:     "g",
		PkgPath:     "example.com/g",
		BuilderName: "JvmBuilder_Pair",
		FileName:    "JvmBuilder_Pair.go",
		TypeParams: []typeParam{
			{Name: "K", Constraint: comparableType},
			{Name: "V", Constraint: anyType},
		},
		Fields: []field{
			{Name: "Key", Type: kParam, Setter: "Key", VarName: "key"},
			{Name: "Value", Type: vParam, Setter: "Value", VarName: "value"},
		},
	}
	src, err := g.emit(tgt)
	require.NoError(t, err)

	s := string(src)
	require.Contains(t, s, "type JvmBuilder_Pair[K comparable, V any] struct {")
	require.Contains(t, s, "func NewJvmBuilder_Pair[K comparable, V any]() *JvmBuilder_Pair[K, V] {")
	require.Contains(t, s, "func (b *JvmBuilder_Pair[K, V]) Key(v K) *JvmBuilder_Pair[K, V] {")
	require.Contains(t, s, "Pair[K, V]{Key: *b.key, Value: *b.value}")
}

func TestEmitInstantiatedFieldType(t *testing.T) {
	g := &generator{cfg: Config{Command: "buildergen", Version: "test"}}
	pkg := types.NewPackage("example.com/coll", "coll")
	comparableType := types.Universe.Lookup("comparable").Type()
	anyType := types.Universe.Lookup("any").Type()
	kParam := types.NewTypeParam(types.NewTypeName(0, pkg, "K", nil), comparableType)
	vParam := types.NewTypeParam(types.NewTypeName(0, pkg, "V", nil), anyType)
	table := types.NewNamed(types.NewTypeName(0, pkg, "Table", nil), types.NewStruct(nil, nil), nil)
	table.SetTypeParams([]*types.TypeParam{kParam, vParam})
	inst, err := types.Instantiate(nil, table, []types.Type{types.Typ[types.Int], types.Typ[types.String]}, false)
	require.NoError(t, err)

	tgt := &target{
		Name:        "Index",
		PkgName:     "idx",
		PkgPath:     "example.com/idx",
		BuilderName: "JvmBuilder_Index",
		FileName:    "JvmBuilder_Index.go",
		Fields: []field{
			{Name: "Rows", Type: inst, Setter: "Rows", VarName: "rows"},
		},
	}
	src, err := g.emit(tgt)
	require.NoError(t, err)

	s := string(src)
	require.Contains(t, s, "rows *coll.Table[int, string]")
	require.Contains(t, s, "func (b *JvmBuilder_Index) Rows(v coll.Table[int, string]) *JvmBuilder_Index {")
}
