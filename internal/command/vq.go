// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"os"
	"reflect"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/invctl/invctl/internal/config"
	"github.com/invctl/invctl/internal/meta"
	"github.com/invctl/invctl/internal/report"
)

// undefinedMarker is what text output shows for a name the context does not
// define. Structured output carries defined=false instead.
const undefinedMarker = "(undefined)"

// vqCommandAction resolves a variable list against an execution context
// document and emits one record per name, in list order.
func vqCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	// Bail out early if we're just dumping tldr.
	if ShortCircuitTLDR(ctx, cmd, "vq") {
		return nil
	}

	config.Config.Namespace = "vq"

	if DumpSchemaIfRequested(cmd, reflect.TypeOf(report.Record{})) {
		return nil
	}

	// The built-in magic-variable list unless a list file is named. A list
	// file failing validation (empty or duplicate name) is fatal before any
	// record is emitted.
	list := report.Builtin()
	if path := cmd.String("list"); path != "" {
		var err error
		list, err = report.LoadList(path)
		if err != nil {
			return err
		}
	}

	contextPath := cmd.String("context")
	if err := checkContextSource(contextPath, term.IsTerminal(int(os.Stdin.Fd()))); err != nil {
		return err
	}

	execCtx, err := report.LoadContext(contextPath, os.Stdin)
	if err != nil {
		return err
	}

	records := report.Report(list, execCtx)
	log.Debugf("vq: %d records from %d names", len(records), len(list))

	al := BuildAttrs(cmd, "category", "name", "value", "defined")

	// Text output shows the marker in the value column. json/yaml keep the
	// native value and the defined attribute.
	postProcess := func(dataset []map[string]interface{}) error {
		markUndefined(dataset)
		return nil
	}

	return EmitDataset(records, al, cmd, postProcess)
}

// checkContextSource rejects the stdin default when the terminal is
// interactive, so a bare vq fails fast instead of blocking on a read that
// will never arrive.
func checkContextSource(path string, interactiveStdin bool) error {
	if path == "-" && interactiveStdin {
		return errors.New("no context document: name one with --context FILE or pipe it on stdin")
	}
	return nil
}

// markUndefined replaces the value of undefined records with the marker for
// tabular rendering.
func markUndefined(dataset []map[string]interface{}) {
	for _, row := range dataset {
		if defined, ok := row["defined"].(bool); ok && !defined {
			row["value"] = undefinedMarker
		}
	}
}

// vqCommandBuilder constructs the cli.Command for "vq", wiring metadata,
// flags, and action/validator handlers.
func vqCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "vq",
		Usage:     "variable query",
		UsageText: "invctl vq [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			NewContextFlag("vq", meta.Config.Source),
			NewListFlag("vq", meta.Config.Source),
			schemaFlag,
			tldrFlag,
		}, NewGlobalFlags("vq")...),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, cmd)
		},
		Action: vqCommandAction,
	}
}
