// Command pfbwt is the top-level CLI entrypoint named in §6 of the
// specification: prefix-free-parsing BWT/SA/marker-array construction over
// large biological text collections. Subcommand wiring and help text are
// the only things this package owns; all algorithmic work lives in the
// library packages at the repository root (parser, pfbwt, markerwriter,
// rlewindow, markeralign, markermerge).
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// main is separated from run so tests can drive the app without touching
// the process's real argv, mirroring the teacher's poly/main.go split.
func main() {
	run(os.Args)
}

func run(args []string) {
	app := application()
	if err := app.Run(args); err != nil {
		fmt.Fprintf(os.Stderr, "pfbwt: %v\n", err)
		os.Exit(1)
	}
}

// application defines the full command tree described in SPEC_FULL.md §5.
func application() *cli.App {
	return &cli.App{
		Name:  "pfbwt",
		Usage: "construct the BWT (and optionally SA/RLSA) of large genomic text collections via prefix-free parsing, with an aligned variant marker array",
		Commands: []*cli.Command{
			buildCommand(),
			mergeCommand(),
			scanVCFCommand(),
			alignMarkersCommand(),
			mergeMPSCommand(),
			dumpMPSCommand(),
			mpsToMACommand(),
		},
	}
}
