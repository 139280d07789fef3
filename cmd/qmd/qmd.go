package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/signadot/qmd-format/go-qmd/ast"
	"github.com/signadot/qmd-format/go-qmd/parse"

	"github.com/scott-cotton/cli"
)

// ErrDiagnostics is returned when the input parsed but produced error
// level diagnostics.
var ErrDiagnostics = errors.New("input has errors")

func qmdMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	defer func() {
		if cfg.CloseOut != nil {
			cfg.CloseOut()
		}
	}()
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if cfg.N && cfg.J {
		return fmt.Errorf("%w: must specify at most one of -n[ative] -j[son]", cli.ErrUsage)
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}

// readInput joins the contents of the file arguments, or reads stdin
// when none are given.
func readInput(args []string) ([]byte, error) {
	if len(args) == 0 {
		return io.ReadAll(os.Stdin)
	}
	var data []byte
	for i, arg := range args {
		d, err := os.ReadFile(arg)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			data = append(data, '\n')
		}
		data = append(data, d...)
	}
	return data, nil
}

// loadDoc runs the parse and build stages, returning the document
// together with all diagnostics from both.
func loadDoc(cfg *MainConfig, args []string) (*ast.Doc, []*parse.Diagnostic, error) {
	data, err := readInput(args)
	if err != nil {
		return nil, nil, err
	}
	res, err := parse.Parse(data, cfg.parseOpts()...)
	if err != nil {
		return nil, nil, err
	}
	doc, buildDiags := ast.Build(res)
	diags := append(res.Diags, buildDiags...)
	return doc, diags, nil
}

// reportDiags prints diagnostics to stderr and returns ErrDiagnostics
// when any is error level.
func reportDiags(diags []*parse.Diagnostic) error {
	hasErr := false
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d)
		if d.Severity == parse.Error {
			hasErr = true
		}
	}
	if hasErr {
		return ErrDiagnostics
	}
	return nil
}
