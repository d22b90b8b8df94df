// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package pricesfetch implements the "prices fetch" command.
package pricesfetch

import (
	"context"
	"fmt"
	"strconv"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/iapctl/cmd/iapctl/internal/iapctlcmd"
	"github.com/bufdev/iapctl/internal/iapctl/iapctlcatalog"
	"github.com/bufdev/iapctl/internal/iapctl/iapctlprices"
	"github.com/bufdev/iapctl/internal/pkg/cliio"
	"github.com/spf13/pflag"
)

const (
	// formatFlagName is the flag name for the output format.
	formatFlagName = "format"
	// gameFlagName is the flag name for the game to fetch.
	gameFlagName = "game"
)

// NewCommand returns a new prices fetch command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Fetch raw local-currency price ranges for every catalog country",
		Long: `Fetch raw local-currency price ranges for every catalog country.

--game matches a catalog game by name or package ID. Without --game, every
catalog game is fetched. The cache is not used. Countries without a price
range are listed with empty prices.`,
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
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Dir, iapctlcmd.DirFlagName, ".", iapctlcmd.DirFlagUsage)
	flagSet.StringVar(&f.Format, formatFlagName, "table", "Output format (table, csv, json)")
	flagSet.StringVar(&f.Game, gameFlagName, "", "The game name or package ID, all catalog games if empty")
}

func run(ctx context.Context, container appext.Container, flags *flags) error {
	format, err := cliio.ParseFormat(flags.Format)
	if err != nil {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	config, catalog, err := iapctlcmd.ReadConfigAndCatalog(flags.Dir)
	if err != nil {
		return err
	}
	games := catalog.Games
	if flags.Game != "" {
		game, ok := catalog.FindGame(flags.Game)
		if !ok {
			return fmt.Errorf("no game matching %q in %s", flags.Game, config.GamesFilePath)
		}
		games = []iapctlcatalog.Game{game}
	}
	records := iapctlcmd.NewPricesFetcher(container, config).FetchAll(ctx, games, catalog.Countries)
	return cliio.Write(
		container.Stdout(),
		format,
		[]string{"game_name", "country_code", "lowest", "highest"},
		records,
		func(record *iapctlprices.Record) []string {
			return []string{
				record.GameName,
				record.CountryCode,
				formatPrice(record.Lowest),
				formatPrice(record.Highest),
			}
		},
	)
}

func formatPrice(price *float64) string {
	if price == nil {
		return ""
	}
	return strconv.FormatFloat(*price, 'f', -1, 64)
}
