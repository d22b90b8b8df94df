// Copyright 2026 Peter Edge
//
// All rights reserved.

package main

import (
	"context"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/iapctl/cmd/iapctl/internal/command/cache"
	"github.com/bufdev/iapctl/cmd/iapctl/internal/command/config"
	"github.com/bufdev/iapctl/cmd/iapctl/internal/command/games"
	"github.com/bufdev/iapctl/cmd/iapctl/internal/command/prices"
	"github.com/bufdev/iapctl/cmd/iapctl/internal/command/rates"
)

func main() {
	appcmd.Main(context.Background(), newRootCommand("iapctl"))
}

// newRootCommand creates the root iapctl command with all sub-commands.
func newRootCommand(name string) *appcmd.Command {
	builder := appext.NewBuilder(name)
	return &appcmd.Command{
		Use:                 name,
		Short:               "Compare in-app purchase prices across countries in the home currency",
		BindPersistentFlags: builder.BindRoot,
		SubCommands: []*appcmd.Command{
			cache.NewCommand("cache", builder),
			config.NewCommand("config", builder),
			games.NewCommand("games", builder),
			prices.NewCommand("prices", builder),
			rates.NewCommand("rates", builder),
		},
	}
}
