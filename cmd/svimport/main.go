package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/xplshn/svimport/pkg/cli"
	"github.com/xplshn/svimport/pkg/config"
	"github.com/xplshn/svimport/pkg/diag"
	"github.com/xplshn/svimport/pkg/ir"
	"github.com/xplshn/svimport/pkg/pipeline"
)

// errFailed is returned once diagnostics have been printed.
var errFailed = pipeline.ErrFailed

type options struct {
	output      string
	configPath  string
	fingerprint bool
	locations   bool
	maxErrors   int
	noColor     bool
	verbose     bool
}

func main() {
	app := cli.NewApp("svimport")
	app.Synopsis = "[options] <input.sv> ..."
	app.Description = "Lowers a SystemVerilog subset to Moore hardware IR. Every module of every input is checked, lowered and printed in textual form."
	app.Authors = []string{"xplshn"}
	app.Repository = "<https://github.com/xplshn/svimport>"

	var opts options
	fs := app.FlagSet
	fs.String(&opts.output, "output", "o", "-", "Write the IR to <file> ('-' for stdout).", "file")
	fs.String(&opts.configPath, "config", "c", "", "Load features and warnings from a YAML or CUE project file.", "file")
	fs.Bool(&opts.fingerprint, "fingerprint", "", false, "Print an xxhash fingerprint after every module.")
	fs.Bool(&opts.locations, "locations", "", false, "Annotate every op with its source location.")
	fs.Int(&opts.maxErrors, "max-errors", "", 20, "Stop lowering after <n> errors (0 for no limit).", "n")
	fs.Bool(&opts.noColor, "no-color", "", false, "Disable coloured diagnostics.")
	fs.Bool(&opts.verbose, "verbose", "v", false, "Log the pipeline stages.")

	cfg := config.NewConfig()
	cfg.SetupFlagGroups(fs)

	app.Action = func(inputs []string) error {
		level := slog.LevelWarn
		if opts.verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		// The project file is the baseline; command-line flags override it.
		if opts.configPath != "" {
			if err := cfg.LoadFile(opts.configPath); err != nil {
				return err
			}
			logger.Debug("loaded project file", "path", opts.configPath)
		}
		if fs.Lookup("max-errors").Changed || opts.configPath == "" {
			cfg.MaxErrors = opts.maxErrors
		}
		if err := cfg.ProcessFlags(fs.Visit); err != nil {
			return err
		}
		cfg.Color = cfg.Color && !opts.noColor && term.IsTerminal(int(os.Stderr.Fd()))

		if len(inputs) == 0 {
			return errors.New("no input files")
		}
		return run(cfg, opts, inputs, logger)
	}

	if err := app.Run(os.Args[1:]); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "svimport: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(cfg *config.Config, opts options, inputs []string, logger *slog.Logger) error {
	srcs, err := pipeline.ReadFiles(inputs)
	if err != nil {
		return err
	}
	bag := diag.NewBag()
	mods, err := pipeline.Compile(cfg, srcs, bag, logger)
	diag.Render(os.Stderr, bag, cfg.Color)
	if err != nil {
		return errFailed
	}

	out, closeOut, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer closeOut()

	printer := &ir.Printer{Locations: opts.locations}
	for _, mod := range mods {
		if err := printer.Print(out, mod); err != nil {
			return fmt.Errorf("writing %s: %w", opts.output, err)
		}
		if opts.fingerprint {
			fmt.Fprintf(out, "// fingerprint @%s: %016x\n", mod.Name, ir.Fingerprint(mod))
		}
	}
	return nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
