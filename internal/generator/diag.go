package generator

import (
	"fmt"
	"go/token"
	"io"

	"github.com/davecgh/go-spew/spew"
)

// reporter is the diagnostic channel for a run. Errors carry the source
// position of the offending declaration so tooling can jump to it.
type reporter struct {
	w io.Writer
	n int
}

func (r *reporter) errorf(pos token.Position, format string, args ...any) {
	r.n++
	fmt.Fprintf(r.w, "%s: buildergen: %s\n", pos, fmt.Sprintf(format, args...))
}

// failf reports an error that has no source position, e.g. a -type name that
// matched nothing.
func (r *reporter) failf(format string, args ...any) {
	r.n++
	fmt.Fprintf(r.w, "buildergen: %s\n", fmt.Sprintf(format, args...))
}

func (r *reporter) errors() int { return r.n }

// debugView is the trimmed model shape dumped by the debug trace. Dumping the
// target itself would drag the whole go/types object graph along.
type debugView struct {
	Builder    string
	File       string
	TypeParams []string
	Setters    []string
	Required   []string
	Defaulted  []string
}

// tracef emits the optional diagnostic trace for one generated file.
func (r *reporter) tracef(t *target, outPath string) {
	fmt.Fprintf(r.w, "%s: buildergen: note: package %s: writing %s to %s\n", t.Pos, t.PkgName, t.FileName, outPath)
	v := debugView{Builder: t.BuilderName, File: t.FileName}
	for _, tp := range t.TypeParams {
		v.TypeParams = append(v.TypeParams, tp.Name)
	}
	for _, fl := range t.Fields {
		v.Setters = append(v.Setters, fl.Setter)
		if fl.Default == "" {
			v.Required = append(v.Required, fl.Name)
		} else {
			v.Defaulted = append(v.Defaulted, fl.Name)
		}
	}
	spew.Fdump(r.w, v)
}
