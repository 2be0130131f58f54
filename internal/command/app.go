// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/invctl/invctl/internal/config"
	"github.com/invctl/invctl/internal/meta"
	"github.com/invctl/invctl/internal/util"
)

// invDirCommands are the subcommands whose first positional argument is an
// inventory directory spec (dir or dir::group).
var invDirCommands = map[string]bool{
	"hq": true,
	"gq": true,
	"tq": true,
	"ci": true,
}

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {

	// Save the CWD at startup and then defer restoring it so we're tidy.
	sd, _ := os.Getwd()
	defer func() {
		if err := os.Chdir(sd); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to restore directory: %v\n", err)
		}
	}()

	// The arg[1] immediately following the binary (arg[0]) is the invctl
	// subcommand and also represents the namespace key to be used when
	// retrieving config values. arg[1] could be -h/--help, so ignore it if it
	// appears to be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	cfg, _ := config.Load() //nolint
	cfg.Namespace = ns
	meta := meta.Meta{
		Args:        args,
		Config:      cfg,
		Context:     ctx,
		StartingDir: sd,
	}

	// See if the arg immediately following the command might be an inventory
	// directory spec. If it begins with - it's a flag and the CWD is the
	// inventory directory. Only the inventory-walking commands take the
	// positional at all.
	if invDirCommands[ns] && len(args) > 2 && !strings.HasPrefix(args[2], "-") {
		if dir, group, err := util.ParseInvDir(args[2]); err == nil {
			meta.InvDir = dir
			meta.Group = group
		} else {
			return nil, fmt.Errorf("failed to parse inventory dir (%s): %w", args[2], err)
		}
	} else {
		meta.InvDir = sd
	}

	app := &cli.Command{
		Name:  "invctl",
		Usage: "Inventory Control",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "invctl version info",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		vqCommandBuilder(meta),
		hqCommandBuilder(meta),
		gqCommandBuilder(meta),
		tqCommandBuilder(meta),
		lqCommandBuilder(meta),
		ciCommandBuilder(meta),
		completionCommandBuilder(meta),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app, nil
}
