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

// gqCommandAction parses the inventory directory and lists the resulting
// groups with member hosts and child groups.
func gqCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "gq") {
		return nil
	}

	config.Config.Namespace = "gq"

	inv, err := BuildInventory(ctx, cmd)
	if err != nil {
		return err
	}

	dataset := groupDataset(inv, cmd.Bool("empty"))

	al := BuildAttrs(cmd, "name", "hosts", "children")

	return EmitDataset(dataset, al, cmd, nil)
}

// groupDataset flattens the inventory's groups into output rows. Empty
// groups are skipped unless asked for.
func groupDataset(inv *inventory.Inventory, includeEmpty bool) []map[string]any {
	dataset := make([]map[string]any, 0)

	for _, group := range inv.Groups() {
		if !includeEmpty && len(group.Hosts) == 0 && len(group.Children) == 0 {
			continue
		}
		dataset = append(dataset, map[string]any{
			"name":     group.Name,
			"hosts":    strings.Join(group.Hosts, ","),
			"children": strings.Join(group.Children, ","),
		})
	}

	return dataset
}

// gqCommandBuilder constructs the cli.Command for "gq", wiring metadata,
// flags, and action/validator handlers.
func gqCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "gq",
		Usage:     "group query",
		UsageText: "invctl gq [InvDir[::group]] [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "empty",
				Usage: "include groups with no hosts or children",
				Value: false,
			},
			tldrFlag,
		}, NewGlobalFlags("gq")...),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, cmd)
		},
		Action: gqCommandAction,
	}
}
