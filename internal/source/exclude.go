// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"

	"github.com/invctl/invctl/internal/inventory"
	"github.com/invctl/invctl/internal/log"
)

type excludeDocument struct {
	ExcludeHosts  []string `yaml:"exclude_hosts"`
	ExcludeGroups []string `yaml:"exclude_groups"`
}

// parseExclude removes hosts and groups from the inventory already built by
// earlier sources. Patterns are exact matches. Excluding a group removes
// its member hosts as well.
func parseExclude(ctx context.Context, inv *inventory.Inventory, doc map[string]any, path string) error {
	var parsed excludeDocument
	if err := remarshal(doc, &parsed); err != nil {
		return err
	}

	for _, name := range parsed.ExcludeGroups {
		group, ok := inv.Group(name)
		if !ok {
			continue
		}
		log.Debugf("excluded hosts from group %s: %v", name, group.Hosts)
		inv.RemoveGroup(name, true)
	}

	for _, name := range parsed.ExcludeHosts {
		if _, ok := inv.Host(name); !ok {
			continue
		}
		log.Debugf("excluded host: %s", name)
		inv.RemoveHost(name)
	}

	return nil
}
