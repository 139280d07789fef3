package main

import (
	"fmt"
	"io"
	"os"

	"github.com/signadot/qmd-format/go-qmd/encode"
	"github.com/signadot/qmd-format/go-qmd/format"
	"github.com/signadot/qmd-format/go-qmd/parse"

	"github.com/scott-cotton/cli"
)

type MainConfig struct {
	Color bool `cli:"name=color desc='encode with color'"`

	N bool `cli:"name=n aliases=native desc='output in pandoc native format'"`
	J bool `cli:"name=j aliases=json desc='output in pandoc json format'"`

	Workers int `cli:"name=workers desc='inline parse worker count'"`
	Depth   int `cli:"name=depth desc='maximum block nesting depth'"`

	OutFormat *format.Format

	Out      string
	CloseOut func() error

	Main *cli.Command
}

func (cfg *MainConfig) fmtFunc(fp **format.Format) cli.FuncOpt {
	return cli.FuncOpt(func(_ *cli.Context, v string) (any, error) {
		f, err := format.ParseFormat(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		*fp = &f
		return f, nil
	})
}

func (cfg *MainConfig) parseOpts() []parse.ParseOption {
	res := []parse.ParseOption{}
	if cfg.Workers > 0 {
		res = append(res, parse.InlineWorkers(cfg.Workers))
	}
	if cfg.Depth > 0 {
		res = append(res, parse.MaxDepth(cfg.Depth))
	}
	return res
}

func (cfg *MainConfig) encOpts(w io.Writer) []encode.EncodeOption {
	var fmat format.Format
	switch {
	case cfg.N:
		fmat = format.NativeFormat
	case cfg.J:
		fmat = format.JSONFormat
	}
	if cfg.OutFormat != nil {
		fmat = *cfg.OutFormat
	}
	res := []encode.EncodeOption{
		encode.EncodeFormat(fmat),
	}
	if cfg.Color {
		res = append(res, encode.EncodeColors(encode.NewColors()))
		return res
	}
	colorsSet := false
	for _, opt := range cfg.Main.Opts {
		if opt.Name != "color" {
			continue
		}
		colorsSet = opt.Value != nil
		break
	}
	if colorsSet {
		return res
	}
	if c := encode.AutoColors(w); c != nil {
		res = append(res, encode.EncodeColors(c))
	}
	return res
}

func (cfg *MainConfig) outOpt(cc *cli.Context, a string) (any, error) {
	cfg.Out = a
	if a == "-" {
		return nil, nil
	}
	f, err := os.OpenFile(cfg.Out, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	cc.Out = f
	cfg.CloseOut = f.Close
	return nil, nil
}

type ViewConfig struct {
	*MainConfig

	Raw bool `cli:"name=raw desc='skip the default filter passes'"`

	View *cli.Command
}

type CheckConfig struct {
	*MainConfig

	Quiet bool `cli:"name=q desc='suppress diagnostic output'"`

	Check *cli.Command
}

type MetaConfig struct {
	*MainConfig

	Meta *cli.Command
}
