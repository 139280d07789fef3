package main

import (
	"github.com/signadot/qmd-format/go-qmd/encode"
	"github.com/signadot/qmd-format/go-qmd/filter"

	"github.com/scott-cotton/cli"
)

func qmdView(cfg *ViewConfig, cc *cli.Context, args []string) error {
	args, err := cfg.View.Parse(cc, args)
	if err != nil {
		return err
	}
	doc, diags, err := loadDoc(cfg.MainConfig, args)
	if err != nil {
		return err
	}
	if !cfg.Raw {
		doc = filter.Default().Apply(doc)
	}
	if err := encode.Encode(doc, cc.Out, cfg.encOpts(cc.Out)...); err != nil {
		return err
	}
	return reportDiags(diags)
}
