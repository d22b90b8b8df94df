// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package cache implements the "cache" command group.
package cache

import (
	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/iapctl/cmd/iapctl/internal/command/cache/cacheclear"
	"github.com/bufdev/iapctl/cmd/iapctl/internal/command/cache/cachelist"
)

// NewCommand returns a new cache command group.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Inspect and clear cached tables",
		SubCommands: []*appcmd.Command{
			cachelist.NewCommand("list", builder),
			cacheclear.NewCommand("clear", builder),
		},
	}
}
