package main

import (
	"github.com/signadot/qmd-format/go-qmd/ast"
	"github.com/signadot/qmd-format/go-qmd/encode"

	"github.com/scott-cotton/cli"
)

func qmdMeta(cfg *MetaConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Meta.Parse(cc, args)
	if err != nil {
		return err
	}
	doc, diags, err := loadDoc(cfg.MainConfig, args)
	if err != nil {
		return err
	}
	hdr := &ast.Doc{Meta: doc.Meta}
	if err := encode.Encode(hdr, cc.Out, cfg.encOpts(cc.Out)...); err != nil {
		return err
	}
	return reportDiags(diags)
}
