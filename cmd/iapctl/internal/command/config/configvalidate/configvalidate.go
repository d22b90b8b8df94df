// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package configvalidate implements the "config validate" command.
package configvalidate

import (
	"context"
	"fmt"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/iapctl/cmd/iapctl/internal/iapctlcmd"
	"github.com/spf13/pflag"
)

// NewCommand returns a new config validate command that validates the
// configuration file and the catalogs it references.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Validate the configuration file and catalogs",
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
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Dir, iapctlcmd.DirFlagName, ".", iapctlcmd.DirFlagUsage)
}

func run(_ context.Context, container appext.Container, flags *flags) error {
	_, catalog, err := iapctlcmd.ReadConfigAndCatalog(flags.Dir)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(
		container.Stdout(),
		"%d countries, %d currencies, %d games\n",
		len(catalog.Countries),
		len(catalog.Currencies()),
		len(catalog.Games),
	)
	return err
}
