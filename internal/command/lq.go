// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/invctl/invctl/internal/config"
	"github.com/invctl/invctl/internal/jerakia"
	"github.com/invctl/invctl/internal/meta"
)

// lqCommandAction looks up one or more namespace/key terms against a
// Jerakia server and emits the payloads.
func lqCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "lq") {
		return nil
	}

	config.Config.Namespace = "lq"

	terms := cmd.Args().Slice()
	if len(terms) == 0 {
		return fmt.Errorf("no lookup terms given")
	}

	options := []jerakia.Option{jerakia.FromConfig()}
	if policy := cmd.String("policy"); policy != "" {
		options = append(options, func(ctx context.Context, c *jerakia.Client) error {
			c.Policy = policy
			return nil
		})
	}
	if token := cmd.String("token"); token != "" {
		options = append(options, func(ctx context.Context, c *jerakia.Client) error {
			c.Token = token
			return nil
		})
	}

	client, err := jerakia.New(ctx, options...)
	if err != nil {
		return err
	}

	dataset := make([]map[string]any, 0, len(terms))
	for _, term := range terms {
		response, err := client.Lookup(term, nil)
		if err != nil {
			return err
		}
		dataset = append(dataset, map[string]any{
			"term":    term,
			"found":   response.Found,
			"payload": response.Payload,
		})
	}

	al := BuildAttrs(cmd, "term", "found", "payload")

	return EmitDataset(dataset, al, cmd, nil)
}

// lqCommandBuilder constructs the cli.Command for "lq", wiring metadata,
// flags, and action/validator handlers.
func lqCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "lq",
		Usage:     "lookup query",
		UsageText: "invctl lq namespace/key [namespace/key ...] [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:  "policy",
				Usage: "lookup policy. Overrides the config",
				Sources: cli.NewValueSourceChain(
					cli.EnvVar("INVCTL_JERAKIA_POLICY"),
				),
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "authentication token. Overrides the config",
				Sources: cli.NewValueSourceChain(
					cli.EnvVar("INVCTL_JERAKIA_TOKEN"),
				),
			},
			tldrFlag,
		}, NewGlobalFlags("lq")...),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, cmd)
		},
		Action: lqCommandAction,
	}
}
