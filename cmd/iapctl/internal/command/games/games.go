// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package games implements the "games" command group.
package games

import (
	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/iapctl/cmd/iapctl/internal/command/games/gameslist"
)

// NewCommand returns a new games command group.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Inspect the game catalog",
		SubCommands: []*appcmd.Command{
			gameslist.NewCommand("list", builder),
		},
	}
}
