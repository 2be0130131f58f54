// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// driverHost is one host extracted from a state document.
type driverHost struct {
	Name   string
	Groups []string
	Vars   map[string]any
}

// driver extracts hosts from a raw state document.
type driver func(state []byte) ([]driverHost, error)

func driverFor(name string) (driver, error) {
	switch name {
	case "", "ansible_host":
		return ansibleHostDriver, nil
	case "libvirt_domain":
		return nil, fmt.Errorf("unsupported terraform driver: %s", name)
	default:
		return nil, fmt.Errorf("unknown terraform driver: %s", name)
	}
}

// ansibleHostDriver reads ansible_host resources written by the
// nbering/ansible provider. Each instance carries inventory_hostname,
// groups, and vars attributes.
func ansibleHostDriver(state []byte) ([]driverHost, error) {
	if !gjson.ValidBytes(state) {
		return nil, fmt.Errorf("state document is not valid json")
	}

	var hosts []driverHost

	resources := gjson.GetBytes(state, "resources")
	resources.ForEach(func(_, resource gjson.Result) bool {
		if resource.Get("type").String() != "ansible_host" {
			return true
		}
		resource.Get("instances").ForEach(func(_, instance gjson.Result) bool {
			attrs := instance.Get("attributes")
			if !attrs.Exists() {
				return true
			}

			host := driverHost{
				Name: attrs.Get("inventory_hostname").String(),
				Vars: map[string]any{},
			}
			if host.Name == "" {
				return true
			}

			attrs.Get("groups").ForEach(func(_, group gjson.Result) bool {
				host.Groups = append(host.Groups, group.String())
				return true
			})

			// Provider vars are strings holding json values. Decode
			// where possible, keep the raw string otherwise.
			attrs.Get("vars").ForEach(func(key, value gjson.Result) bool {
				var decoded any
				if err := json.Unmarshal([]byte(value.String()), &decoded); err != nil {
					decoded = value.String()
				}
				host.Vars[key.String()] = decoded
				return true
			})

			hosts = append(hosts, host)
			return true
		})
		return true
	})

	return hosts, nil
}
