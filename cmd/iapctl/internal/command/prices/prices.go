// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package prices implements the "prices" command group.
package prices

import (
	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/iapctl/cmd/iapctl/internal/command/prices/pricesfetch"
	"github.com/bufdev/iapctl/cmd/iapctl/internal/command/prices/pricestable"
)

// NewCommand returns a new prices command group.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Fetch and compare in-app purchase prices",
		SubCommands: []*appcmd.Command{
			pricesfetch.NewCommand("fetch", builder),
			pricestable.NewCommand("table", builder),
		},
	}
}
