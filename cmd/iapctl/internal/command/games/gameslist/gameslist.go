// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package gameslist implements the "games list" command.
package gameslist

import (
	"context"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/iapctl/cmd/iapctl/internal/iapctlcmd"
	"github.com/bufdev/iapctl/internal/iapctl/iapctlcatalog"
	"github.com/bufdev/iapctl/internal/pkg/cliio"
	"github.com/spf13/pflag"
)

// formatFlagName is the flag name for the output format.
const formatFlagName = "format"

// NewCommand returns a new games list command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "List the games in the game catalog",
		Args:  appcmd.NoArgs,
		Run: builder.NewRunFunc(
			func(ctx context.Context, container appext.Container) error {
				return run(ctx, container, flags)
			},
		),
		BindFlags: flags.Bind,
	}
}

type flags struct {
	// Dir is the iapctl directory containing iapctl.yaml.
	Dir string
	// Format is the output format (table, csv, json).
	Format string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Dir, iapctlcmd.DirFlagName, ".", iapctlcmd.DirFlagUsage)
	flagSet.StringVar(&f.Format, formatFlagName, "table", "Output format (table, csv, json)")
}

func run(_ context.Context, container appext.Container, flags *flags) error {
	format, err := cliio.ParseFormat(flags.Format)
	if err != nil {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	_, catalog, err := iapctlcmd.ReadConfigAndCatalog(flags.Dir)
	if err != nil {
		return err
	}
	return cliio.Write(
		container.Stdout(),
		format,
		[]string{"name", "package_id"},
		catalog.Games,
		func(game iapctlcatalog.Game) []string {
			return []string{game.Name, game.PackageID}
		},
	)
}
