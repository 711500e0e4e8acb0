// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Command glfront is the shader front-end CLI.
//
// Usage:
//
//	glfront preprocess [-config file] [-D NAME=VALUE]... <input>
//	glfront config <file>
//
// Examples:
//
//	glfront preprocess shader.frag             # Print the preprocessed tokens
//	glfront preprocess -D N=4 shader.comp      # Predefine N before reading
//	glfront preprocess -config unit.toml a.vert
//	glfront config unit.yaml                   # Print the applied config as JSON
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"github.com/urfave/cli/v2"

	"github.com/gogpu/glfront"
	"github.com/gogpu/glfront/config"
	"github.com/gogpu/glfront/ir"
	"github.com/gogpu/glfront/pp"
	"github.com/gogpu/glfront/report"
)

const glfrontVersion = "0.1.0-dev"

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newApp(w io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "glfront"
	app.Usage = "GLSL/HLSL shader front end"
	app.Version = glfrontVersion
	app.Writer = w
	app.Flags = []cli.Flag{
		&cli.IntFlag{
			Name:  "verbose",
			Usage: "log verbosity (0 quiet, 1 info, 2 debug)",
		},
	}
	app.Before = func(c *cli.Context) error {
		commonlog.Configure(c.Int("verbose"), nil)
		return nil
	}
	app.Commands = []*cli.Command{
		{
			Name:      "preprocess",
			Usage:     "Preprocess a shader and print the resulting tokens",
			ArgsUsage: "<input>",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "config",
					Usage: "TOML or YAML unit configuration",
				},
				&cli.StringSliceFlag{
					Name:    "define",
					Aliases: []string{"D"},
					Usage:   "predefine a macro as NAME=VALUE (VALUE defaults to 1)",
				},
			},
			Action: runPreprocess,
		},
		{
			Name:      "config",
			Usage:     "Load a unit configuration and print the resulting report as JSON",
			ArgsUsage: "<file>",
			Action:    runConfig,
		},
	}
	return app
}

func runPreprocess(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("preprocess: expected exactly one input file")
	}
	input := c.Args().First()

	source, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}

	opts, err := unitOptions(c.String("config"), input)
	if err != nil {
		return err
	}
	for _, def := range c.StringSlice("define") {
		name, value, ok := strings.Cut(def, "=")
		if !ok {
			value = "1"
		}
		if opts.Defines == nil {
			opts.Defines = make(map[string]string)
		}
		opts.Defines[name] = value
	}

	unit, err := glfront.NewUnit(opts, input, string(source))
	if err != nil {
		var list pp.Errors
		if errors.As(err, &list) {
			return errors.New(strings.TrimRight(list.FormatAll(string(source)), "\n"))
		}
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, glfront.Render(unit.Tokens))
	return err
}

// unitOptions loads the config file when given; otherwise the stage is
// taken from the input's extension.
func unitOptions(path, input string) (*config.Options, error) {
	if path != "" {
		return config.Load(path)
	}
	opts := config.Default()
	ext := strings.TrimPrefix(filepath.Ext(input), ".")
	if _, ok := ir.ParseStage(ext); ok {
		opts.Stage = ext
	}
	if ext == "hlsl" {
		opts.Source = "hlsl"
	}
	return opts, nil
}

func runConfig(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("config: expected exactly one config file")
	}
	opts, err := config.Load(c.Args().First())
	if err != nil {
		return err
	}
	in, err := opts.NewIntermediate()
	if err != nil {
		return err
	}
	data, err := report.MarshalJSON(report.Build(in))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(data))
	return err
}
