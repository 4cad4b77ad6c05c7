package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"buildergen/internal/generator"
)

// deriveVersion inspects build info for module version or vcs revision.
// preference order: module semantic version -> short commit hash -> "devel".
func deriveVersion() string {
	if bi, ok := debug.ReadBuildInfo(); ok {
		if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			return bi.Main.Version
		}
		var revision string
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				revision = s.Value
				break
			}
		}
		if len(revision) >= 12 { // short hash for readability
			return revision[:12]
		}
		if revision != "" {
			return revision
		}
	}
	return "devel"
}

func main() {
	var typesCSV string
	var dir string
	var prefix string
	var output string
	var debugFlag bool
	flag.StringVar(&typesCSV, "type", "", "Comma-separated list of marked type names to generate for (empty = all marked types)")
	flag.StringVar(&dir, "dir", ".", "Directory of the package to scan for //buildergen:builder directives")
	flag.StringVar(&prefix, "prefix", "", "Default setter-name prefix, overridden per type by the directive's prefix= argument")
	flag.StringVar(&output, "output", "", "Directory for generated files (empty = alongside the source package)")
	flag.BoolVar(&debugFlag, "debug", false, "Emit a diagnostic trace for every generated file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nBuildergen generates fluent builders for structs marked //buildergen:builder.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s -dir=./model -type=Point,ServerConfig -prefix=With\n", os.Args[0])
	}
	flag.Parse()

	var typeNames []string
	if typesCSV != "" {
		for p := range strings.SplitSeq(typesCSV, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				typeNames = append(typeNames, p)
			}
		}
	}

	// build a simplified canonical command representation instead of raw argv (which may include build cache paths)
	cmdParts := []string{"buildergen"}
	if len(typeNames) > 0 {
		cmdParts = append(cmdParts, "-type="+strings.Join(typeNames, ","))
	}
	if dir != "." {
		cmdParts = append(cmdParts, "-dir="+dir)
	}
	if prefix != "" {
		cmdParts = append(cmdParts, "-prefix="+prefix)
	}
	if output != "" {
		cmdParts = append(cmdParts, "-output="+output)
	}
	if debugFlag {
		cmdParts = append(cmdParts, "-debug")
	}
	displayCmd := strings.Join(cmdParts, " ")
	buildVersion := deriveVersion()
	cfg := generator.Config{
		Dir:       dir,
		Types:     typeNames,
		Prefix:    prefix,
		OutputDir: output,
		Debug:     debugFlag,
		Command:   displayCmd,
		Version:   buildVersion,
	}
	if err := generator.Run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "buildergen: %v\n", err)
		os.Exit(1)
	}
}
