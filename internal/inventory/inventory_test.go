// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_PredeclaredGroups(t *testing.T) {
	inv := New()

	_, ok := inv.Group("all")
	assert.True(t, ok)
	_, ok = inv.Group("ungrouped")
	assert.True(t, ok)
	assert.Empty(t, inv.Hosts())
}

func TestAddHost_FirstDeclarationWins(t *testing.T) {
	inv := New()

	first := inv.AddHost("web-1")
	first.Vars["port"] = 80

	second := inv.AddHost("web-1")

	assert.Same(t, first, second)
	assert.Equal(t, 80, second.Vars["port"])
	assert.Len(t, inv.Hosts(), 1)
}

func TestHosts_InsertionOrder(t *testing.T) {
	inv := New()
	inv.AddHost("zebra")
	inv.AddHost("alpha")
	inv.AddHost("mango")

	var names []string
	for _, h := range inv.Hosts() {
		names = append(names, h.Name)
	}
	assert.Equal(t, []string{"zebra", "alpha", "mango"}, names)
}

func TestAddHostToGroup(t *testing.T) {
	inv := New()
	inv.AddHostToGroup("web-1", "webservers")
	inv.AddHostToGroup("web-1", "webservers")

	g, ok := inv.Group("webservers")
	require.True(t, ok)
	assert.Equal(t, []string{"web-1"}, g.Hosts)

	_, ok = inv.Host("web-1")
	assert.True(t, ok)
}

func TestAddChild(t *testing.T) {
	inv := New()
	inv.AddChild("prod", "webservers")
	inv.AddChild("prod", "webservers")

	g, ok := inv.Group("prod")
	require.True(t, ok)
	assert.Equal(t, []string{"webservers"}, g.Children)

	_, ok = inv.Group("webservers")
	assert.True(t, ok)
}

func TestSetVars(t *testing.T) {
	inv := New()
	inv.SetHostVar("web-1", "ansible_host", "10.0.0.5")
	inv.SetGroupVar("webservers", "http_port", 8080)

	h, _ := inv.Host("web-1")
	assert.Equal(t, "10.0.0.5", h.Vars["ansible_host"])

	g, _ := inv.Group("webservers")
	assert.Equal(t, 8080, g.Vars["http_port"])
}

func TestRemoveHost_DetachesFromGroups(t *testing.T) {
	inv := New()
	inv.AddHostToGroup("web-1", "webservers")
	inv.AddHostToGroup("web-2", "webservers")

	inv.RemoveHost("web-1")

	_, ok := inv.Host("web-1")
	assert.False(t, ok)
	g, _ := inv.Group("webservers")
	assert.Equal(t, []string{"web-2"}, g.Hosts)
}

func TestRemoveGroup_Cascade(t *testing.T) {
	inv := New()
	inv.AddHostToGroup("web-1", "webservers")
	inv.AddHostToGroup("web-2", "webservers")
	inv.AddHostToGroup("db-1", "databases")

	inv.RemoveGroup("webservers", true)

	_, ok := inv.Group("webservers")
	assert.False(t, ok)
	_, ok = inv.Host("web-1")
	assert.False(t, ok)
	_, ok = inv.Host("web-2")
	assert.False(t, ok)
	_, ok = inv.Host("db-1")
	assert.True(t, ok)
}

func TestRemoveGroup_NoCascadeKeepsHosts(t *testing.T) {
	inv := New()
	inv.AddHostToGroup("web-1", "webservers")

	inv.RemoveGroup("webservers", false)

	_, ok := inv.Group("webservers")
	assert.False(t, ok)
	_, ok = inv.Host("web-1")
	assert.True(t, ok)
}

func TestRemoveGroup_DropsChildReferences(t *testing.T) {
	inv := New()
	inv.AddChild("prod", "webservers")

	inv.RemoveGroup("webservers", false)

	g, _ := inv.Group("prod")
	assert.Empty(t, g.Children)
}

func TestGroupsOf(t *testing.T) {
	inv := New()
	inv.AddHostToGroup("web-1", "webservers")
	inv.AddHostToGroup("web-1", "prod")
	inv.AddHostToGroup("web-2", "webservers")

	assert.Equal(t, []string{"webservers", "prod"}, inv.GroupsOf("web-1"))
	assert.Equal(t, []string{"webservers"}, inv.GroupsOf("web-2"))
	assert.Empty(t, inv.GroupsOf("absent"))
}

func TestGroupsDict(t *testing.T) {
	inv := New()
	inv.AddHostToGroup("web-1", "webservers")
	inv.AddHostToGroup("web-2", "webservers")

	dict := inv.GroupsDict()

	assert.Equal(t, []any{"web-1", "web-2"}, dict["webservers"])
	assert.Equal(t, []any{}, dict["all"])
}

func TestResolvedVars_GroupThenHostPrecedence(t *testing.T) {
	inv := New()
	inv.AddHostToGroup("web-1", "webservers")
	inv.SetGroupVar("webservers", "http_port", 80)
	inv.SetGroupVar("webservers", "tier", "web")
	inv.SetHostVar("web-1", "http_port", 8080)

	vars, err := inv.ResolvedVars("web-1")
	require.NoError(t, err)
	assert.Equal(t, 8080, vars["http_port"])
	assert.Equal(t, "web", vars["tier"])
}

func TestResolvedVars_UnknownHost(t *testing.T) {
	inv := New()
	_, err := inv.ResolvedVars("absent")
	assert.Error(t, err)
}

func TestContext_MagicVariables(t *testing.T) {
	inv := New()
	inv.AddHostToGroup("web-1.example.com", "webservers")
	inv.SetHostVar("web-1.example.com", "ansible_host", "10.0.0.5")

	ctx, err := inv.Context("web-1.example.com")
	require.NoError(t, err)

	assert.Equal(t, "web-1.example.com", ctx["inventory_hostname"])
	assert.Equal(t, "web-1", ctx["inventory_hostname_short"])
	assert.Equal(t, []string{"webservers"}, ctx["group_names"])
	assert.Contains(t, ctx["groups"].(map[string]any), "webservers")
	assert.Equal(t, "10.0.0.5", ctx["ansible_host"])
}
