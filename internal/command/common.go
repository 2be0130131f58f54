// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"reflect"

	"github.com/hashicorp/jsonapi"
	"github.com/urfave/cli/v3"

	"github.com/invctl/invctl/internal/attrs"
	"github.com/invctl/invctl/internal/inventory"
	"github.com/invctl/invctl/internal/meta"
	"github.com/invctl/invctl/internal/output"
	"github.com/invctl/invctl/internal/source"
)

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList) {
	//nolint:errcheck
	{
		for _, d := range defaults {
			al.Set(d)
		}
		if extras := cmd.String("attrs"); extras != "" {
			al.Set(extras)
		}
		al.SetGlobalTransformSpec()
	}
	return
}

// DumpSchemaIfRequested writes the JSON schema for the provided type to stdout
// when --schema is set, and returns true if it handled the request.
func DumpSchemaIfRequested(cmd *cli.Command, t reflect.Type) bool {
	if cmd.Bool("schema") {
		output.DumpSchema("", t, nil)
		return true
	}
	return false
}

// EmitDataset marshals a dataset as JSON and passes it to the common output
// routine.
func EmitDataset(dataset any, al attrs.AttrList, cmd *cli.Command, postProcess func([]map[string]interface{}) error) error {
	encoded, err := json.Marshal(dataset)
	if err != nil {
		return fmt.Errorf("failed to marshal dataset: %w", err)
	}

	var raw bytes.Buffer
	raw.Write(encoded)
	output.SliceDiceSpit(raw, al, cmd, "", os.Stdout, postProcess)
	return nil
}

// EmitJSONAPISlice marshals a slice as JSONAPI and passes it to the common
// output routine.
func EmitJSONAPISlice(results any, al attrs.AttrList, cmd *cli.Command) error {
	var raw bytes.Buffer
	if err := jsonapi.MarshalPayload(&raw, results); err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	output.SliceDiceSpit(raw, al, cmd, "data", os.Stdout, nil)
	return nil
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// BuildInventory parses the inventory directory from the command's meta and
// returns the resulting inventory. A ::group scope in the directory spec
// narrows the result to that group's member hosts.
func BuildInventory(ctx context.Context, cmd *cli.Command) (*inventory.Inventory, error) {
	m := GetMeta(cmd)

	inv := inventory.New()
	if err := source.ParseDir(ctx, inv, m.InvDir); err != nil {
		return nil, err
	}

	if m.Group != "" {
		scope, ok := inv.Group(m.Group)
		if !ok {
			return nil, fmt.Errorf("group not found in inventory: %s", m.Group)
		}
		keep := make(map[string]bool, len(scope.Hosts))
		for _, h := range scope.Hosts {
			keep[h] = true
		}
		for _, host := range inv.Hosts() {
			if !keep[host.Name] {
				inv.RemoveHost(host.Name)
			}
		}
	}

	return inv, nil
}

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr invctl <subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "invctl", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}
