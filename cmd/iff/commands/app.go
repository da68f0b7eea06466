package commands

import (
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-pantheon/fabrica-iff/codec"
	"github.com/urfave/cli/v2"
)

// NewApp creates the iff CLI app.
func NewApp() *cli.App {
	app := cli.NewApp()
	app.Name = "iff"
	app.Usage = "Inspect and build IFF chunk streams (little-endian size fields)"
	app.EnableBashCompletion = true
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "log why a chunk sequence ended",
		},
	}

	app.Commands = []*cli.Command{
		NewDumpCommand(),
		NewPackCommand(),
		NewUnpackCommand(),
	}

	return app
}

// codecOptions maps the global flags onto codec options.
func codecOptions(c *cli.Context) []codec.Option {
	level := log.LevelInfo
	if c.Bool("verbose") {
		level = log.LevelDebug
	}

	logger := log.NewFilter(log.NewStdLogger(c.App.ErrWriter), log.FilterLevel(level))

	return []codec.Option{
		codec.WithLogger(logger),
	}
}
