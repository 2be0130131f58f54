// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"

	"github.com/invctl/invctl/internal/compose"
	"github.com/invctl/invctl/internal/inventory"
)

type staticDocument struct {
	Hosts  map[string]map[string]any `yaml:"hosts"`
	Groups map[string]struct {
		Hosts    []string       `yaml:"hosts"`
		Children []string       `yaml:"children"`
		Vars     map[string]any `yaml:"vars"`
	} `yaml:"groups"`
	Constructed compose.Options `yaml:"constructed"`
}

// parseStatic applies literal host and group declarations. Hosts outside
// any group land in ungrouped; every host is a member of all.
func parseStatic(ctx context.Context, inv *inventory.Inventory, doc map[string]any, path string) error {
	var parsed staticDocument
	if err := remarshal(doc, &parsed); err != nil {
		return err
	}

	var added []string

	for _, name := range sortedKeys(parsed.Hosts) {
		inv.AddHost(name)
		inv.AddHostToGroup(name, "all")
		for _, key := range sortedKeys(parsed.Hosts[name]) {
			inv.SetHostVar(name, key, parsed.Hosts[name][key])
		}
		added = append(added, name)
	}

	for _, name := range sortedKeys(parsed.Groups) {
		group := parsed.Groups[name]
		inv.AddGroup(name)
		for _, host := range group.Hosts {
			inv.AddHostToGroup(host, name)
			inv.AddHostToGroup(host, "all")
			added = append(added, host)
		}
		for _, child := range group.Children {
			inv.AddChild(name, child)
		}
		for _, key := range sortedKeys(group.Vars) {
			inv.SetGroupVar(name, key, group.Vars[key])
		}
	}

	// Hosts that ended up in no named group are ungrouped.
	for _, name := range added {
		if groups := inv.GroupsOf(name); len(groups) <= 1 {
			inv.AddHostToGroup(name, "ungrouped")
		}
	}

	return parsed.Constructed.ApplyTo(inv, dedupe(added)...)
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	var result []string
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		result = append(result, n)
	}
	return result
}
