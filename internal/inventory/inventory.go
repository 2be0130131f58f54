// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"fmt"
	"strings"

	"github.com/invctl/invctl/internal/log"
)

// Host is a single inventory host and its variables.
type Host struct {
	Name string
	Vars map[string]any
}

// Group is a named collection of hosts and child groups with its own
// variables.
type Group struct {
	Name     string
	Vars     map[string]any
	Hosts    []string
	Children []string
}

// Inventory is an ordered collection of hosts and groups. Order is
// insertion order: sources parsed earlier contribute entries ahead of
// sources parsed later.
type Inventory struct {
	hosts      map[string]*Host
	hostOrder  []string
	groups     map[string]*Group
	groupOrder []string
}

// New returns an empty inventory with the conventional "all" and
// "ungrouped" groups predeclared.
func New() *Inventory {
	inv := &Inventory{
		hosts:  make(map[string]*Host),
		groups: make(map[string]*Group),
	}
	inv.AddGroup("all")
	inv.AddGroup("ungrouped")
	return inv
}

// AddHost adds a host by name and returns it. If the host already exists
// the existing host is returned unchanged: the first declaration wins and
// the duplicate is reported with a warning.
func (inv *Inventory) AddHost(name string) *Host {
	if h, ok := inv.hosts[name]; ok {
		log.Warnf("duplicate host skipped: name=%s", name)
		return h
	}
	h := &Host{Name: name, Vars: make(map[string]any)}
	inv.hosts[name] = h
	inv.hostOrder = append(inv.hostOrder, name)
	return h
}

// AddGroup adds a group by name and returns it. Adding an existing group
// is a no-op returning the existing group.
func (inv *Inventory) AddGroup(name string) *Group {
	if g, ok := inv.groups[name]; ok {
		return g
	}
	g := &Group{Name: name, Vars: make(map[string]any)}
	inv.groups[name] = g
	inv.groupOrder = append(inv.groupOrder, name)
	return g
}

// AddHostToGroup places a host in a group, creating either as needed. A
// host is listed at most once per group.
func (inv *Inventory) AddHostToGroup(host, group string) {
	if _, ok := inv.hosts[host]; !ok {
		inv.AddHost(host)
	}
	g := inv.AddGroup(group)
	for _, existing := range g.Hosts {
		if existing == host {
			return
		}
	}
	g.Hosts = append(g.Hosts, host)
}

// AddChild records a parent/child relationship between two groups,
// creating either as needed.
func (inv *Inventory) AddChild(parent, child string) {
	p := inv.AddGroup(parent)
	inv.AddGroup(child)
	for _, existing := range p.Children {
		if existing == child {
			return
		}
	}
	p.Children = append(p.Children, child)
}

// SetHostVar sets a variable on a host, creating the host as needed.
func (inv *Inventory) SetHostVar(host, key string, value any) {
	h, ok := inv.hosts[host]
	if !ok {
		h = inv.AddHost(host)
	}
	h.Vars[key] = value
}

// SetGroupVar sets a variable on a group, creating the group as needed.
func (inv *Inventory) SetGroupVar(group, key string, value any) {
	inv.AddGroup(group).Vars[key] = value
}

// Host returns the named host.
func (inv *Inventory) Host(name string) (*Host, bool) {
	h, ok := inv.hosts[name]
	return h, ok
}

// Group returns the named group.
func (inv *Inventory) Group(name string) (*Group, bool) {
	g, ok := inv.groups[name]
	return g, ok
}

// Hosts returns all hosts in insertion order.
func (inv *Inventory) Hosts() []*Host {
	result := make([]*Host, 0, len(inv.hostOrder))
	for _, name := range inv.hostOrder {
		result = append(result, inv.hosts[name])
	}
	return result
}

// Groups returns all groups in insertion order.
func (inv *Inventory) Groups() []*Group {
	result := make([]*Group, 0, len(inv.groupOrder))
	for _, name := range inv.groupOrder {
		result = append(result, inv.groups[name])
	}
	return result
}

// GroupsOf returns the names of the groups a host is a member of, in group
// insertion order.
func (inv *Inventory) GroupsOf(host string) []string {
	var result []string
	for _, name := range inv.groupOrder {
		for _, member := range inv.groups[name].Hosts {
			if member == host {
				result = append(result, name)
				break
			}
		}
	}
	return result
}

// RemoveHost removes a host and detaches it from every group that lists
// it. Removing an unknown host is a no-op.
func (inv *Inventory) RemoveHost(name string) {
	if _, ok := inv.hosts[name]; !ok {
		return
	}
	delete(inv.hosts, name)
	inv.hostOrder = remove(inv.hostOrder, name)
	for _, g := range inv.groups {
		g.Hosts = remove(g.Hosts, name)
	}
}

// RemoveGroup removes a group. When cascade is true the group's member
// hosts are removed from the inventory as well; otherwise they are merely
// detached. Child relationships referencing the group are dropped either
// way.
func (inv *Inventory) RemoveGroup(name string, cascade bool) {
	g, ok := inv.groups[name]
	if !ok {
		return
	}
	if cascade {
		for _, host := range append([]string{}, g.Hosts...) {
			inv.RemoveHost(host)
		}
	}
	delete(inv.groups, name)
	inv.groupOrder = remove(inv.groupOrder, name)
	for _, other := range inv.groups {
		other.Children = remove(other.Children, name)
	}
}

// GroupsDict returns a mapping from group name to member host names,
// mirroring the engine's groups magic variable.
func (inv *Inventory) GroupsDict() map[string]any {
	result := make(map[string]any, len(inv.groups))
	for _, name := range inv.groupOrder {
		members := inv.groups[name].Hosts
		list := make([]any, 0, len(members))
		for _, m := range members {
			list = append(list, m)
		}
		result[name] = list
	}
	return result
}

// ResolvedVars returns the effective variables for a host: group vars in
// group insertion order, overridden by the host's own vars.
func (inv *Inventory) ResolvedVars(host string) (map[string]any, error) {
	h, ok := inv.hosts[host]
	if !ok {
		return nil, fmt.Errorf("unknown host: %s", host)
	}

	result := make(map[string]any)
	for _, name := range inv.GroupsOf(host) {
		for k, v := range inv.groups[name].Vars {
			result[k] = v
		}
	}
	for k, v := range h.Vars {
		result[k] = v
	}
	return result, nil
}

// Context builds an execution context for a host: the host's resolved vars
// plus the inventory magic variables.
func (inv *Inventory) Context(host string) (map[string]any, error) {
	vars, err := inv.ResolvedVars(host)
	if err != nil {
		return nil, err
	}

	short := host
	if i := strings.Index(host, "."); i > 0 {
		short = host[:i]
	}

	vars["inventory_hostname"] = host
	vars["inventory_hostname_short"] = short
	vars["group_names"] = inv.GroupsOf(host)
	vars["groups"] = inv.GroupsDict()
	return vars, nil
}

func remove(s []string, value string) []string {
	result := s[:0]
	for _, v := range s {
		if v != value {
			result = append(result, v)
		}
	}
	return result
}
