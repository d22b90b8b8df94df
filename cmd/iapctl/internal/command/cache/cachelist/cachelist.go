// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package cachelist implements the "cache list" command.
package cachelist

import (
	"context"
	"errors"
	"strconv"
	"time"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/iapctl/cmd/iapctl/internal/iapctlcmd"
	"github.com/bufdev/iapctl/internal/iapctl/iapctlcache"
	"github.com/bufdev/iapctl/internal/iapctl/iapctlconfig"
	"github.com/bufdev/iapctl/internal/pkg/cliio"
	"github.com/spf13/pflag"
)

// formatFlagName is the flag name for the output format.
const formatFlagName = "format"

// NewCommand returns a new cache list command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "List cached tables and whether they are fresh",
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

func run(ctx context.Context, container appext.Container, flags *flags) (retErr error) {
	format, err := cliio.ParseFormat(flags.Format)
	if err != nil {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	config, err := iapctlconfig.ReadConfig(flags.Dir)
	if err != nil {
		return err
	}
	store, err := iapctlcmd.NewStore(ctx, container, config)
	if err != nil {
		return err
	}
	defer func() {
		retErr = errors.Join(retErr, store.Close())
	}()
	keyInfos, err := iapctlcmd.NewCache(config, store).Keys(ctx)
	if err != nil {
		return err
	}
	return cliio.Write(
		container.Stdout(),
		format,
		[]string{"key", "stored_at", "size", "fresh"},
		keyInfos,
		func(keyInfo iapctlcache.KeyInfo) []string {
			return []string{
				keyInfo.Key,
				keyInfo.StoredAt.Local().Format(time.RFC3339),
				strconv.Itoa(keyInfo.Size),
				strconv.FormatBool(keyInfo.Fresh),
			}
		},
	)
}
