// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package compose

import (
	"fmt"
	"strings"

	"github.com/invctl/invctl/internal/inventory"
	"github.com/invctl/invctl/internal/log"
)

// KeyedGroup derives group membership from the value of an expression,
// one group per distinct value.
type KeyedGroup struct {
	Key       string `yaml:"key"`
	Prefix    string `yaml:"prefix"`
	Separator string `yaml:"separator"`
}

// Options are the constructed behaviors shared by sources that synthesize
// hosts: composed vars, expression-driven groups and keyed groups. With
// Strict set, expression failures are fatal; otherwise they are logged
// and skipped.
type Options struct {
	Compose     map[string]string `yaml:"compose"`
	Groups      map[string]string `yaml:"groups"`
	KeyedGroups []KeyedGroup      `yaml:"keyed_groups"`
	Strict      bool              `yaml:"strict_expressions"`
}

// Apply evaluates the constructed behaviors for every host in the
// inventory. Compose runs first so composed vars are visible to the group
// expressions.
func (o Options) Apply(inv *inventory.Inventory) error {
	if len(o.Compose) == 0 && len(o.Groups) == 0 && len(o.KeyedGroups) == 0 {
		return nil
	}

	for _, host := range inv.Hosts() {
		if err := o.applyHost(inv, host.Name); err != nil {
			return err
		}
	}
	return nil
}

// ApplyTo evaluates the constructed behaviors for the named hosts only.
// Sources use this to construct over the hosts they contributed without
// touching the rest of the inventory.
func (o Options) ApplyTo(inv *inventory.Inventory, hosts ...string) error {
	if len(o.Compose) == 0 && len(o.Groups) == 0 && len(o.KeyedGroups) == 0 {
		return nil
	}

	for _, host := range hosts {
		if err := o.applyHost(inv, host); err != nil {
			return err
		}
	}
	return nil
}

func (o Options) applyHost(inv *inventory.Inventory, host string) error {
	vars, err := inv.Context(host)
	if err != nil {
		return err
	}

	for name, expression := range o.Compose {
		value, err := Eval(expression, vars)
		if err != nil {
			if o.Strict {
				return fmt.Errorf("compose %s for host %s: %w", name, host, err)
			}
			log.Warnf("compose %s skipped for host %s: %v", name, host, err)
			continue
		}
		inv.SetHostVar(host, name, value)
		vars[name] = value
	}

	for group, expression := range o.Groups {
		member, err := EvalBool(expression, vars)
		if err != nil {
			if o.Strict {
				return fmt.Errorf("group %s for host %s: %w", group, host, err)
			}
			log.Warnf("group %s skipped for host %s: %v", group, host, err)
			continue
		}
		if member {
			inv.AddHostToGroup(host, group)
		}
	}

	for _, kg := range o.KeyedGroups {
		value, err := Eval(kg.Key, vars)
		if err != nil {
			if o.Strict {
				return fmt.Errorf("keyed group %s for host %s: %w", kg.Key, host, err)
			}
			log.Warnf("keyed group %s skipped for host %s: %v", kg.Key, host, err)
			continue
		}

		sep := kg.Separator
		if sep == "" {
			sep = "_"
		}

		for _, key := range keyValues(value) {
			name := key
			if kg.Prefix != "" {
				name = kg.Prefix + sep + key
			}
			inv.AddHostToGroup(host, name)
		}
	}

	return nil
}

// keyValues normalizes a keyed-group expression result to group name
// fragments. Lists contribute one group per element; nil contributes none.
func keyValues(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return []string{sanitize(v)}
	case []any:
		var result []string
		for _, item := range v {
			result = append(result, keyValues(item)...)
		}
		return result
	default:
		return []string{sanitize(fmt.Sprintf("%v", v))}
	}
}

// sanitize replaces characters that are not valid in group names.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}
