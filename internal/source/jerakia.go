// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/invctl/invctl/internal/cacheutil"
	"github.com/invctl/invctl/internal/compose"
	"github.com/invctl/invctl/internal/inventory"
	"github.com/invctl/invctl/internal/jerakia"
	"github.com/invctl/invctl/internal/log"
)

type jerakiaDocument struct {
	Keys            map[string]string `yaml:"keys"`
	Cache           bool              `yaml:"cache"`
	Strict          *bool             `yaml:"strict"`
	compose.Options `yaml:",inline"`
}

// parseJerakia enriches every host already in the inventory with variables
// looked up from a Jerakia server. Run it from a zzz_-prefixed source file
// so every host has been declared first.
func parseJerakia(ctx context.Context, inv *inventory.Inventory, doc map[string]any, path string) error {
	var parsed jerakiaDocument
	if err := remarshal(doc, &parsed); err != nil {
		return err
	}

	strict := parsed.Strict == nil || *parsed.Strict

	client, err := jerakia.New(ctx, jerakia.FromConfig(), jerakia.FromDefinition(doc))
	if err != nil {
		return err
	}

	cache := parsed.Cache
	if value := os.Getenv("INVCTL_JERAKIA_CACHE"); value != "" {
		cache = value == "true" || value == "1" || value == "t"
	}

	var touched []string

	for _, host := range inv.Hosts() {
		vars, err := lookupHostVars(client, inv, host.Name, parsed.Keys, cache)
		if err != nil {
			if strict {
				return fmt.Errorf("jerakia lookup for host %s: %w", host.Name, err)
			}
			log.Warnf("jerakia lookup for host %s skipped: %v", host.Name, err)
			continue
		}

		for _, key := range sortedKeys(vars) {
			inv.SetHostVar(host.Name, key, vars[key])
		}
		touched = append(touched, host.Name)
	}

	return parsed.Options.ApplyTo(inv, touched...)
}

// lookupHostVars resolves every configured key for one host, via the cache
// when enabled.
func lookupHostVars(client *jerakia.Client, inv *inventory.Inventory, host string, keys map[string]string, cache bool) (map[string]any, error) {
	sub := []string{"jerakia", client.Host}

	if cache {
		if entry, ok := cacheutil.Read(sub, host); ok {
			var vars map[string]any
			if err := json.Unmarshal(entry.Data, &vars); err == nil {
				log.Debugf("jerakia cache hit for %s", host)
				return vars, nil
			}
		}
	}

	hostVars, err := inv.Context(host)
	if err != nil {
		return nil, err
	}

	vars := make(map[string]any, len(keys))
	for _, name := range sortedKeys(keys) {
		response, err := client.Lookup(keys[name], hostVars)
		if err != nil {
			return nil, err
		}
		vars[name] = response.Payload
	}

	if cache {
		if data, err := json.Marshal(vars); err == nil {
			if err := cacheutil.Write(sub, host, data); err != nil {
				log.Debugf("jerakia cache write for %s failed: %v", host, err)
			}
		}
	}

	return vars, nil
}
