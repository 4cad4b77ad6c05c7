package generator

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode"

	"golang.org/x/tools/go/packages"
)

// Config holds generation settings for the builder generator.
type Config struct {
	Dir       string    // directory of the package to scan ("." relative to where command invoked)
	Types     []string  // marked type names to generate for (empty = all marked types)
	Prefix    string    // default setter-name prefix; a directive prefix= argument wins
	OutputDir string    // directory for generated files (empty = the source package directory)
	Debug     bool      // force the per-file diagnostic trace on
	Command   string    // full invocation command line
	Version   string    // buildergen build version
	Diag      io.Writer // diagnostic sink; defaults to os.Stderr
}

// generator holds transient state while processing one package.
type generator struct {
	cfg  Config
	diag *reporter
	pkg  *packages.Package
}

// Run generates builder files for every eligible marked declaration in the
// configured package. Every ineligible declaration is reported individually;
// Run keeps going and returns a single aggregate error at the end.
func Run(cfg Config) error {
	w := cfg.Diag
	if w == nil {
		w = os.Stderr
	}
	return (&generator{cfg: cfg, diag: &reporter{w: w}}).run()
}

func (g *generator) run() error {
	absDir, err := filepath.Abs(g.cfg.Dir)
	if err != nil {
		return err
	}
	pkgs, err := loadDir(absDir)
	if err != nil {
		return err
	}
	if len(pkgs) == 0 {
		return fmt.Errorf("no packages found in %s", absDir)
	}
	g.pkg = pkgs[0]

	marked := g.scanDirectives()
	if len(g.cfg.Types) > 0 {
		marked = g.filterTypes(marked)
	}
	for _, m := range marked {
		g.process(m, absDir)
	}
	if n := g.diag.errors(); n > 0 {
		return fmt.Errorf("generation failed with %d error(s)", n)
	}
	return nil
}

// process runs select -> extract -> emit -> write for one marked declaration.
// Failures abort this declaration only.
func (g *generator) process(m markedType, srcDir string) {
	t, err := g.buildTarget(m)
	if err != nil {
		g.diag.errorf(m.Pos, "%s: %v", m.Name, err)
		return
	}
	src, err := g.emit(t)
	if err != nil {
		g.diag.errorf(m.Pos, "%s: %v", m.Name, err)
		return
	}
	outDir := srcDir
	if g.cfg.OutputDir != "" {
		outDir = g.cfg.OutputDir
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			g.diag.errorf(m.Pos, "%s: %v", m.Name, err)
			return
		}
	}
	outPath := filepath.Join(outDir, t.FileName)
	if err := os.WriteFile(outPath, src, 0o644); err != nil {
		g.diag.errorf(m.Pos, "%s: %v", m.Name, err)
		return
	}
	if t.Debug || g.cfg.Debug {
		g.diag.tracef(t, outPath)
	}
}

// filterTypes keeps only the marked declarations named in cfg.Types and
// reports names that match no marked declaration.
func (g *generator) filterTypes(marked []markedType) []markedType {
	byName := make(map[string]markedType, len(marked))
	for _, m := range marked {
		byName[m.Name] = m
	}
	var keep []markedType
	for _, name := range g.cfg.Types {
		m, ok := byName[name]
		if !ok {
			g.diag.failf("type %s: not found or not marked with %s", name, directiveMarker)
			continue
		}
		keep = append(keep, m)
	}
	return keep
}

// lowerFirst derives an unexported name: a leading run of upper-case runes is
// lowered as one unit, keeping the rune that starts the next word
// (URL -> url, URLPath -> urlPath, Name -> name).
func lowerFirst(s string) string {
	r := []rune(s)
	n := 0
	for n < len(r) && unicode.IsUpper(r[n]) {
		n++
	}
	if n > 1 && n < len(r) {
		n--
	}
	for i := 0; i < n; i++ {
		r[i] = unicode.ToLower(r[i])
	}
	return string(r)
}
