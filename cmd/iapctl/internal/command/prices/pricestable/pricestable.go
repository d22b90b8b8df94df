// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package pricestable implements the "prices table" command.
package pricestable

import (
	"context"
	"errors"
	"fmt"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/iapctl/cmd/iapctl/internal/iapctlcmd"
	"github.com/bufdev/iapctl/internal/iapctl/iapctlnormalize"
	"github.com/bufdev/iapctl/internal/pkg/cliio"
	"github.com/spf13/pflag"
)

const (
	// formatFlagName is the flag name for the output format.
	formatFlagName = "format"
	// gameFlagName is the flag name for the game.
	gameFlagName = "game"
	// refreshFlagName is the flag name for bypassing the cache.
	refreshFlagName = "refresh"
)

// NewCommand returns a new prices table command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Display a game's price range per country in the home currency",
		Long: `Display a game's price range per country in the home currency.

Each row converts the lowest and highest local-currency price with the rate of
each card network. Countries without a price range or without an exchange rate
are omitted. The table is served from the cache while fresh.`,
		Args: appcmd.NoArgs,
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
	// Game is the game name or package ID query.
	Game string
	// Refresh bypasses the cache.
	Refresh bool
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Dir, iapctlcmd.DirFlagName, ".", iapctlcmd.DirFlagUsage)
	flagSet.StringVar(&f.Format, formatFlagName, "table", "Output format (table, csv, json)")
	flagSet.StringVar(&f.Game, gameFlagName, "", "The game name or package ID")
	flagSet.BoolVar(&f.Refresh, refreshFlagName, false, "Refetch even if the cached table is fresh")
}

func run(ctx context.Context, container appext.Container, flags *flags) (retErr error) {
	format, err := cliio.ParseFormat(flags.Format)
	if err != nil {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	if flags.Game == "" {
		return appcmd.NewInvalidArgumentErrorf("--%s is required", gameFlagName)
	}
	config, catalog, err := iapctlcmd.ReadConfigAndCatalog(flags.Dir)
	if err != nil {
		return err
	}
	game, ok := catalog.FindGame(flags.Game)
	if !ok {
		return fmt.Errorf("no game matching %q in %s", flags.Game, config.GamesFilePath)
	}
	store, err := iapctlcmd.NewStore(ctx, container, config)
	if err != nil {
		return err
	}
	defer func() {
		retErr = errors.Join(retErr, store.Close())
	}()
	rows, err := iapctlcmd.NewUpdater(container, config, catalog, store).PriceTable(ctx, game, flags.Refresh)
	if err != nil {
		return err
	}
	return cliio.Write(container.Stdout(), format, iapctlnormalize.Headers(), rows, iapctlnormalize.ToRow)
}
