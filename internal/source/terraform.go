// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/invctl/invctl/internal/compose"
	"github.com/invctl/invctl/internal/inventory"
	"github.com/invctl/invctl/internal/log"
	"github.com/invctl/invctl/internal/tfstate"
)

type terraformDocument struct {
	Backends map[string]map[string]any `yaml:"backends"`
	Stacks   []struct {
		Backend string `yaml:"backend"`
		Name    string `yaml:"name"`
		Driver  string `yaml:"driver"`
	} `yaml:"stacks"`
	InventoryGroup     string `yaml:"inventory_group"`
	InventorySubGroups *bool  `yaml:"inventory_sub_groups"`
	Strict             *bool  `yaml:"strict"`
	Passphrase         string `yaml:"passphrase"`
	compose.Options    `yaml:",inline"`
}

// parseTerraform builds inventory hosts from terraform state. Each stack
// entry names a backend, a regex over the backend's stack paths, and an
// optional resource driver.
func parseTerraform(ctx context.Context, inv *inventory.Inventory, doc map[string]any, path string) error {
	var parsed terraformDocument
	if err := remarshal(doc, &parsed); err != nil {
		return err
	}

	strict := parsed.Strict == nil || *parsed.Strict
	subGroups := parsed.InventorySubGroups == nil || *parsed.InventorySubGroups

	backends := make(map[string]tfstate.Backend, len(parsed.Backends))
	for _, name := range sortedKeys(parsed.Backends) {
		be, err := tfstate.New(ctx, name, parsed.Backends[name])
		if err != nil {
			return err
		}
		backends[name] = be
	}

	if parsed.InventoryGroup != "" {
		inv.AddGroup(parsed.InventoryGroup)
	}

	var added []string

	for _, stack := range parsed.Stacks {
		backendName := stack.Backend
		if backendName == "" {
			backendName = "local"
		}
		be, ok := backends[backendName]
		if !ok {
			return fmt.Errorf("%s: stack references unknown backend: %s", path, backendName)
		}

		pattern := stack.Name
		if pattern == "" {
			pattern = ".*"
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("%s: invalid stack name pattern %s: %w", path, pattern, err)
		}

		paths, err := be.Stacks()
		if err != nil {
			return err
		}

		driverName := stack.Driver
		if driverName == "" {
			driverName, _ = parsed.Backends[backendName]["driver"].(string)
		}
		driver, err := driverFor(driverName)
		if err != nil {
			return err
		}

		for _, stackPath := range paths {
			if !re.MatchString(stackPath) {
				continue
			}

			state, err := be.State(stackPath, "")
			if err != nil {
				return err
			}
			state, err = tfstate.MaybeDecrypt(state, parsed.Passphrase)
			if err != nil {
				return err
			}

			hosts, err := driver(state)
			if err != nil {
				return err
			}
			log.Debugf("stack %s: driver %s produced %d hosts", stackPath, driverName, len(hosts))

			for _, host := range hosts {
				name := host.Name
				if strict {
					name = normalizeHostname(name)
				}

				if _, exists := inv.Host(name); exists {
					log.Warnf("duplicate host from stack %s skipped: %s", stackPath, name)
					continue
				}

				inv.AddHost(name)
				inv.AddHostToGroup(name, "all")
				for _, key := range sortedKeys(host.Vars) {
					inv.SetHostVar(name, key, host.Vars[key])
				}

				// Stack context rides along as host vars.
				inv.SetHostVar(name, "terraform_stack", stackPath)
				inv.SetHostVar(name, "terraform_driver", driverName)

				for _, group := range host.Groups {
					if group == "" {
						continue
					}
					inv.AddHostToGroup(name, group)
				}

				if parsed.InventoryGroup != "" {
					if subGroups {
						subgroup := strings.NewReplacer("/", "_", "-", "_").Replace(stackPath)
						inv.AddHostToGroup(name, subgroup)
						inv.AddChild(parsed.InventoryGroup, subgroup)
					} else {
						inv.AddHostToGroup(name, parsed.InventoryGroup)
					}
				}

				added = append(added, name)
			}
		}
	}

	return parsed.Options.ApplyTo(inv, added...)
}
