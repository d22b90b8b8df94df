// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package configinit implements the "config init" command, which writes a
// commented iapctl.yaml with the default catalog paths, a SQLite cache under
// cache/, and a 72h freshness window.
package configinit

import (
	"context"
	"fmt"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/iapctl/cmd/iapctl/internal/iapctlcmd"
	"github.com/bufdev/iapctl/internal/iapctl/iapctlconfig"
	"github.com/spf13/pflag"
)

// NewCommand returns a new config init command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Write a default iapctl.yaml to the --dir directory",
		Long: `Write a default iapctl.yaml to the --dir directory.

The file sets version v1 and home_currency TWD, reads the catalogs from
countries.csv (country_name, country_code, currency_code, currency_display_name)
and games.csv (name, package_id) next to it, and caches fetched tables in
cache/iapctl.db for 72h. The rates, playstore, cache.postgres, and fetch sections
are written commented out with their defaults. Fails if iapctl.yaml already exists.`,
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
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Dir, iapctlcmd.DirFlagName, ".", iapctlcmd.DirFlagUsage)
}

func run(_ context.Context, container appext.Container, flags *flags) error {
	filePath, err := iapctlconfig.InitConfig(flags.Dir)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(container.Stdout(), "%s\n", filePath)
	return err
}
