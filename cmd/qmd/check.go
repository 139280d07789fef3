package main

import (
	"fmt"

	"github.com/signadot/qmd-format/go-qmd/parse"

	"github.com/scott-cotton/cli"
)

func qmdCheck(cfg *CheckConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Check.Parse(cc, args)
	if err != nil {
		return err
	}
	_, diags, err := loadDoc(cfg.MainConfig, args)
	if err != nil {
		return err
	}
	if cfg.Quiet {
		for _, d := range diags {
			if d.Severity == parse.Error {
				return ErrDiagnostics
			}
		}
		return nil
	}
	if err := reportDiags(diags); err != nil {
		return err
	}
	fmt.Fprintln(cc.Out, "ok")
	return nil
}
