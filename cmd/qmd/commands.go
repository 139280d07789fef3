package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, []*cli.Opt{
		&cli.Opt{
			Name:        "o",
			Description: "output file (default stdout)",
			Type:        cli.NamedFuncOpt(cfg.outOpt, "(filepath)"),
		},
		&cli.Opt{
			Name:        "O",
			Aliases:     []string{"ofmt"},
			Description: "output format: native/n, json/j",
			Type:        cli.NamedFuncOpt(cfg.fmtFunc(&cfg.OutFormat), "(format)"),
		}}...)

	return cli.NewCommandAt(&cfg.Main, "qmd").
		WithSynopsis("qmd [opts] command [opts]").
		WithDescription(mainUsage).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return qmdMain(cfg, cc, args)
		}).
		WithSubs(
			ViewCommand(cfg),
			CheckCommand(cfg),
			MetaCommand(cfg))
}

func ViewCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ViewConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("view").
		WithAliases("v").
		WithSynopsis("view [--raw] [files]").
		WithDescription("Parse documents and print the resulting pandoc document.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return qmdView(cfg, cc, args)
		})
	cfg.View = cmd
	return cmd
}

func CheckCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &CheckConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("check").
		WithAliases("c").
		WithSynopsis("check [-q] [files]").
		WithDescription("Parse documents and report diagnostics without output.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return qmdCheck(cfg, cc, args)
		})
	cfg.Check = cmd
	return cmd
}

func MetaCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &MetaConfig{MainConfig: mainCfg}
	cmd := cli.NewCommand("meta").
		WithAliases("m").
		WithSynopsis("meta [files]").
		WithDescription("Print only document metadata.").
		WithRun(func(cc *cli.Context, args []string) error {
			return qmdMeta(cfg, cc, args)
		})
	cfg.Meta = cmd
	return cmd
}

const mainUsage = `qmd parses quarto flavored markdown and emits a
pandoc document in native or json form.

With no output format option, the native form is used.  Input is read
from the file arguments, or from stdin when none are given.
`
