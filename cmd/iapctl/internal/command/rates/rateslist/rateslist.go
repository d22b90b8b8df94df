// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package rateslist implements the "rates list" command.
package rateslist

import (
	"context"
	"errors"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/iapctl/cmd/iapctl/internal/iapctlcmd"
	"github.com/bufdev/iapctl/internal/iapctl/iapctlrates"
	"github.com/bufdev/iapctl/internal/pkg/cliio"
	"github.com/spf13/pflag"
)

const (
	// formatFlagName is the flag name for the output format.
	formatFlagName = "format"
	// currencyFlagName is the flag name for the currencies to fetch.
	currencyFlagName = "currency"
	// refreshFlagName is the flag name for bypassing the cache.
	refreshFlagName = "refresh"
)

// NewCommand returns a new rates list command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "List exchange rates into the home currency by card network",
		Long: `List exchange rates into the home currency by card network.

Without --currency, the rates of every catalog currency are listed, served from
the cache while fresh. With --currency, the given currencies are fetched directly
and the cache is not used. --currency all fetches every currency available at
the rate source.`,
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
	// Currencies are the currency codes to fetch directly.
	Currencies []string
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
	flagSet.StringSliceVar(&f.Currencies, currencyFlagName, nil, "Currency codes to fetch directly, or all")
	flagSet.BoolVar(&f.Refresh, refreshFlagName, false, "Refetch even if the cached rates are fresh")
}

func run(ctx context.Context, container appext.Container, flags *flags) (retErr error) {
	format, err := cliio.ParseFormat(flags.Format)
	if err != nil {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	if len(flags.Currencies) > 0 && flags.Refresh {
		return appcmd.NewInvalidArgumentErrorf("--%s has no effect with --%s", refreshFlagName, currencyFlagName)
	}
	config, catalog, err := iapctlcmd.ReadConfigAndCatalog(flags.Dir)
	if err != nil {
		return err
	}
	var table iapctlrates.Table
	if len(flags.Currencies) > 0 {
		table, err = iapctlcmd.NewRatesFetcher(container, config).Fetch(ctx, flags.Currencies)
		if err != nil {
			return err
		}
	} else {
		store, err := iapctlcmd.NewStore(ctx, container, config)
		if err != nil {
			return err
		}
		defer func() {
			retErr = errors.Join(retErr, store.Close())
		}()
		table, err = iapctlcmd.NewUpdater(container, config, catalog, store).CurrencyRates(ctx, flags.Refresh)
		if err != nil {
			return err
		}
	}
	headers := []string{"currency_code", "currency_display_name", "last_updated"}
	for _, cardNetwork := range iapctlrates.CardNetworks {
		headers = append(headers, string(cardNetwork))
	}
	return cliio.Write(
		container.Stdout(),
		format,
		headers,
		table,
		func(record *iapctlrates.Record) []string {
			row := []string{record.CurrencyCode, record.CurrencyDisplayName, record.LastUpdated.String()}
			for _, cardNetwork := range iapctlrates.CardNetworks {
				row = append(row, record.Rates[cardNetwork])
			}
			return row
		},
	)
}
