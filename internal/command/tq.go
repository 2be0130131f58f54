// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/hashicorp/go-tfe"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/invctl/invctl/internal/config"
	"github.com/invctl/invctl/internal/differ"
	"github.com/invctl/invctl/internal/inventory"
	"github.com/invctl/invctl/internal/meta"
	"github.com/invctl/invctl/internal/source"
	"github.com/invctl/invctl/internal/tfstate"
)

// tqDefaultAttrs specifies the default attributes displayed for state
// snapshots in the "tq --list" output.
var tqDefaultAttrs = []string{".id", "serial", "created-at"}

// tqSource is the subset of a terraform source document tq needs to address
// backends and stacks directly.
type tqSource struct {
	Backends map[string]map[string]any `yaml:"backends"`
	Stacks   []struct {
		Backend string `yaml:"backend"`
		Name    string `yaml:"name"`
	} `yaml:"stacks"`
}

// tqCommandAction builds inventory hosts from terraform state. With --list
// it lists state snapshots instead; with --diff it compares two snapshots.
func tqCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "tq") {
		return nil
	}

	config.Config.Namespace = "tq"

	if DumpSchemaIfRequested(cmd, reflect.TypeOf((*tfe.StateVersion)(nil)).Elem()) {
		return nil
	}

	files, err := terraformSourceFiles(m.InvDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no terraform sources found in %s", m.InvDir)
	}

	// Snapshot modes address a backend and stack directly.
	if cmd.Bool("list") || cmd.Bool("diff") {
		be, stack, err := resolveStack(ctx, files, cmd.String("stack"))
		if err != nil {
			return err
		}

		if cmd.Bool("diff") {
			states, diffErr := diffStates(ctx, cmd, be, stack)
			if diffErr != nil {
				log.Errorf("diff error: %v", diffErr)
				return diffErr
			}
			if states == nil {
				return nil
			}
			return differ.Diff(ctx, cmd, states)
		}

		versions, err := be.Snapshots(stack)
		if err != nil {
			return err
		}
		al := BuildAttrs(cmd, tqDefaultAttrs...)
		return EmitJSONAPISlice(versions, al, cmd)
	}

	// Default mode parses the terraform sources into a fresh inventory.
	inv := inventory.New()
	for _, file := range files {
		if err := source.Parse(ctx, inv, file); err != nil {
			return err
		}
	}

	al := BuildAttrs(cmd, "name", "groups")
	if cmd.Bool("vars") {
		al = BuildAttrs(cmd, "name", "groups", "vars")
	}

	return EmitDataset(hostDataset(inv, cmd.Bool("vars")), al, cmd, nil)
}

// terraformSourceFiles returns the terraform-plugin source files of an
// inventory directory, in lexical order.
func terraformSourceFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.y*ml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	var files []string
	for _, path := range matches {
		doc, err := source.Load(path)
		if err != nil {
			log.Warnf("skipping %s: %v", path, err)
			continue
		}
		if source.PluginOf(doc) == "terraform" {
			files = append(files, path)
		}
	}

	return files, nil
}

// resolveStack picks the backend and stack path the snapshot modes operate
// on. An explicit --stack narrows the choice; otherwise exactly one stack
// must match across the terraform sources.
func resolveStack(ctx context.Context, files []string, want string) (tfstate.Backend, string, error) {
	type candidate struct {
		be    tfstate.Backend
		stack string
	}
	var candidates []candidate

	for _, file := range files {
		doc, err := source.Load(file)
		if err != nil {
			return nil, "", err
		}

		var parsed tqSource
		data, err := yaml.Marshal(doc)
		if err != nil {
			return nil, "", err
		}
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return nil, "", fmt.Errorf("failed to parse %s: %w", file, err)
		}

		backends := make(map[string]tfstate.Backend, len(parsed.Backends))
		for name, definition := range parsed.Backends {
			be, err := tfstate.New(ctx, name, definition)
			if err != nil {
				return nil, "", err
			}
			backends[name] = be
		}

		for _, stack := range parsed.Stacks {
			name := stack.Backend
			if name == "" {
				name = "local"
			}
			be, ok := backends[name]
			if !ok {
				return nil, "", fmt.Errorf("%s: stack references unknown backend: %s", file, name)
			}

			pattern := stack.Name
			if pattern == "" {
				pattern = ".*"
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, "", fmt.Errorf("%s: invalid stack name pattern %s: %w", file, pattern, err)
			}

			paths, err := be.Stacks()
			if err != nil {
				return nil, "", err
			}
			for _, path := range paths {
				if !re.MatchString(path) {
					continue
				}
				if want != "" && path != want {
					continue
				}
				candidates = append(candidates, candidate{be: be, stack: path})
			}
		}
	}

	switch len(candidates) {
	case 0:
		if want != "" {
			return nil, "", fmt.Errorf("stack not found: %s", want)
		}
		return nil, "", fmt.Errorf("no stacks found")
	case 1:
		return candidates[0].be, candidates[0].stack, nil
	default:
		stacks := make([]string, 0, len(candidates))
		for _, c := range candidates {
			stacks = append(stacks, c.stack)
		}
		return nil, "", fmt.Errorf("multiple stacks match, pick one with --stack: %s", strings.Join(stacks, ", "))
	}
}

// diffStates fetches the two snapshots named by the --diff arguments. With
// no arguments the last two snapshots are compared; a single "+" argument
// opens the interactive picker.
func diffStates(ctx context.Context, cmd *cli.Command, be tfstate.Backend, stack string) ([][]byte, error) {
	svSpecs := []string{"CSV~1", "CSV~0"}

	diffArgs := differ.ParseDiffArgs(ctx, cmd)

	switch len(diffArgs) {
	case 0:
		// No args, so use the last two snapshots.
	case 1:
		if strings.HasPrefix(diffArgs[0], "+") {
			versions, err := be.Snapshots(stack)
			if err != nil {
				return nil, fmt.Errorf("failed to get snapshot list: %w", err)
			}

			selected := differ.SelectStateVersions(versions)
			log.Debugf("selected: %d", len(selected))

			if len(selected) == 0 {
				return nil, nil
			} else if len(selected) == 2 {
				svSpecs[0] = selected[1].ID
				svSpecs[1] = selected[0].ID
			}
		} else {
			svSpecs[0] = diffArgs[0]
		}
	case 2:
		svSpecs = diffArgs
	}

	passphrase := cmd.String("passphrase")

	states := make([][]byte, 2)
	for i, spec := range svSpecs {
		doc, err := be.State(stack, spec)
		if err != nil {
			return nil, err
		}
		if states[i], err = tfstate.MaybeDecrypt(doc, passphrase); err != nil {
			return nil, err
		}
	}

	return states, nil
}

// tqCommandBuilder constructs the cli.Command for "tq", wiring metadata,
// flags, and action/validator handlers.
func tqCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "tq",
		Usage:     "terraform query",
		UsageText: "invctl tq [InvDir[::group]] [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "diff",
				Usage: "find difference between state snapshots",
				Value: false,
			},
			&cli.StringFlag{
				Name:   "diff_filter",
				Hidden: true,
				Value:  "check_results",
			},
			&cli.BoolFlag{
				Name:  "list",
				Usage: "list state snapshots",
				Value: false,
			},
			&cli.StringFlag{
				Name:  "stack",
				Usage: "stack path for --list and --diff",
			},
			&cli.BoolFlag{
				Name:  "vars",
				Usage: "include resolved host variables",
				Value: false,
			},
			schemaFlag,
			passphraseFlag,
			tldrFlag,
		}, NewGlobalFlags("tq")...),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, cmd)
		},
		Action: tqCommandAction,
	}
}
