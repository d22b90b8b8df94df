// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package config implements the "config" command group, which manages
// iapctl.yaml in the --dir directory: the home currency, the country and game
// catalog files, the rate source and Play Store settings, the cache driver and
// freshness window, and fetch concurrency.
package config

import (
	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/iapctl/cmd/iapctl/internal/command/config/configedit"
	"github.com/bufdev/iapctl/cmd/iapctl/internal/command/config/configinit"
	"github.com/bufdev/iapctl/cmd/iapctl/internal/command/config/configvalidate"
)

// NewCommand returns a new config command group.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Manage iapctl.yaml, the catalog, cache, and fetch settings",
		SubCommands: []*appcmd.Command{
			configinit.NewCommand("init", builder),
			configedit.NewCommand("edit", builder),
			configvalidate.NewCommand("validate", builder),
		},
	}
}
