// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package cacheclear implements the "cache clear" command.
package cacheclear

import (
	"context"
	"errors"
	"fmt"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/iapctl/cmd/iapctl/internal/iapctlcmd"
	"github.com/bufdev/iapctl/internal/iapctl/iapctlconfig"
	"github.com/spf13/pflag"
)

// keyFlagName is the flag name for the keys to clear.
const keyFlagName = "key"

// NewCommand returns a new cache clear command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Remove cached tables so they are refetched on next use",
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
	// Keys are the keys to clear. All keys are cleared if empty.
	Keys []string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Dir, iapctlcmd.DirFlagName, ".", iapctlcmd.DirFlagUsage)
	flagSet.StringArrayVar(&f.Keys, keyFlagName, nil, "The cache key to clear, such as currency_rates or a game name, all keys if not set")
}

func run(ctx context.Context, container appext.Container, flags *flags) (retErr error) {
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
	cache := iapctlcmd.NewCache(config, store)
	keys := flags.Keys
	if len(keys) == 0 {
		keyInfos, err := cache.Keys(ctx)
		if err != nil {
			return err
		}
		for _, keyInfo := range keyInfos {
			keys = append(keys, keyInfo.Key)
		}
	}
	for _, key := range keys {
		if err := cache.Delete(ctx, key); err != nil {
			return err
		}
		container.Logger().Info("cleared cache key", "key", key)
		if _, err := fmt.Fprintf(container.Stdout(), "%s\n", key); err != nil {
			return err
		}
	}
	return nil
}
