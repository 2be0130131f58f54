// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/invctl/invctl/internal/config"
	"github.com/invctl/invctl/internal/inventory"
	"github.com/invctl/invctl/internal/meta"
)

// hqCommandAction parses the inventory directory and lists the resulting
// hosts with their group memberships and, optionally, resolved variables.
func hqCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "hq") {
		return nil
	}

	config.Config.Namespace = "hq"

	inv, err := BuildInventory(ctx, cmd)
	if err != nil {
		return err
	}

	dataset := hostDataset(inv, cmd.Bool("vars"))

	al := BuildAttrs(cmd, "name", "groups")
	if cmd.Bool("vars") {
		al = BuildAttrs(cmd, "name", "groups", "vars")
	}

	return EmitDataset(dataset, al, cmd, nil)
}

// hostDataset flattens the inventory's hosts into output rows. Group lists
// render comma-joined; resolved vars ride along when requested.
func hostDataset(inv *inventory.Inventory, withVars bool) []map[string]any {
	dataset := make([]map[string]any, 0)

	for _, host := range inv.Hosts() {
		row := map[string]any{
			"name":   host.Name,
			"groups": strings.Join(inv.GroupsOf(host.Name), ","),
		}
		if withVars {
			if vars, err := inv.ResolvedVars(host.Name); err == nil {
				row["vars"] = vars
			}
		}
		dataset = append(dataset, row)
	}

	return dataset
}

// hqCommandBuilder constructs the cli.Command for "hq", wiring metadata,
// flags, and action/validator handlers.
func hqCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "hq",
		Usage:     "host query",
		UsageText: "invctl hq [InvDir[::group]] [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "vars",
				Usage: "include resolved host variables",
				Value: false,
			},
			tldrFlag,
		}, NewGlobalFlags("hq")...),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, cmd)
		},
		Action: hqCommandAction,
	}
}
