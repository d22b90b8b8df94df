// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package rates implements the "rates" command group.
package rates

import (
	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/iapctl/cmd/iapctl/internal/command/rates/ratescurrencies"
	"github.com/bufdev/iapctl/cmd/iapctl/internal/command/rates/rateslist"
)

// NewCommand returns a new rates command group.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Inspect card network exchange rates",
		SubCommands: []*appcmd.Command{
			rateslist.NewCommand("list", builder),
			ratescurrencies.NewCommand("currencies", builder),
		},
	}
}
