// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invctl/invctl/internal/inventory"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParse_StaticDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "hosts.yml", `
hosts:
  lonely.example.com:
    role: spare
groups:
  webservers:
    hosts:
      - web1.example.com
      - web2.example.com
    vars:
      http_port: 8080
  frontend:
    children:
      - webservers
`)

	inv := inventory.New()
	require.NoError(t, Parse(context.Background(), inv, path))

	_, ok := inv.Host("web1.example.com")
	assert.True(t, ok)

	group, ok := inv.Group("webservers")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"web1.example.com", "web2.example.com"}, group.Hosts)
	assert.Equal(t, 8080, group.Vars["http_port"])

	frontend, ok := inv.Group("frontend")
	require.True(t, ok)
	assert.Contains(t, frontend.Children, "webservers")

	assert.Contains(t, inv.GroupsOf("lonely.example.com"), "ungrouped")
	assert.NotContains(t, inv.GroupsOf("web1.example.com"), "ungrouped")
	assert.Contains(t, inv.GroupsOf("web1.example.com"), "all")
}

func TestParse_UnsupportedPlugin(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "weird.yml", "plugin: cobbler\n")

	inv := inventory.New()
	err := Parse(context.Background(), inv, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported plugin: cobbler")
}

func TestParseDir_LexicalOrder(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "aaa_hosts.yml", `
hosts:
  keep.example.com: {}
  drop.example.com: {}
`)
	writeSource(t, dir, "zzz_exclude.yml", `
plugin: exclude
exclude_hosts:
  - drop.example.com
`)
	writeSource(t, dir, "notes.txt", "not an inventory source\n")

	inv := inventory.New()
	require.NoError(t, ParseDir(context.Background(), inv, dir))

	_, ok := inv.Host("keep.example.com")
	assert.True(t, ok)
	_, ok = inv.Host("drop.example.com")
	assert.False(t, ok)
}

func TestParseExclude_GroupCascade(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "010_hosts.yml", `
groups:
  legacy:
    hosts:
      - old1.example.com
      - old2.example.com
  current:
    hosts:
      - new1.example.com
`)
	writeSource(t, dir, "990_exclude.yml", `
plugin: exclude
exclude_groups:
  - legacy
`)

	inv := inventory.New()
	require.NoError(t, ParseDir(context.Background(), inv, dir))

	_, ok := inv.Group("legacy")
	assert.False(t, ok)
	_, ok = inv.Host("old1.example.com")
	assert.False(t, ok)
	_, ok = inv.Host("new1.example.com")
	assert.True(t, ok)
}

func TestParseInclude(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "extra.yml", `
hosts:
  extra.example.com: {}
`)
	path := writeSource(t, dir, "main.yml", `
plugin: include
files:
  - extra.yml
  - missing.yml
`)

	inv := inventory.New()
	require.NoError(t, Parse(context.Background(), inv, path))

	_, ok := inv.Host("extra.example.com")
	assert.True(t, ok)
}

func TestParse_ComposedVarsAndGroups(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "hosts.yml", `
hosts:
  app1.example.com:
    env: prod
  app2.example.com:
    env: dev
constructed:
  compose:
    display: format("%s (%s)", inventory_hostname, env)
  groups:
    production: env == "prod"
`)

	inv := inventory.New()
	require.NoError(t, Parse(context.Background(), inv, path))

	host, ok := inv.Host("app1.example.com")
	require.True(t, ok)
	assert.Equal(t, "app1.example.com (prod)", host.Vars["display"])

	production, ok := inv.Group("production")
	require.True(t, ok)
	assert.Equal(t, []string{"app1.example.com"}, production.Hosts)
}

func TestParse_LiteralAndConstructedGroups(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "hosts.yml", `
hosts:
  app1.example.com:
    env: prod
groups:
  appservers:
    hosts:
      - app1.example.com
constructed:
  groups:
    production: env == "prod"
`)

	inv := inventory.New()
	require.NoError(t, Parse(context.Background(), inv, path))

	appservers, ok := inv.Group("appservers")
	require.True(t, ok)
	assert.Equal(t, []string{"app1.example.com"}, appservers.Hosts)

	production, ok := inv.Group("production")
	require.True(t, ok)
	assert.Equal(t, []string{"app1.example.com"}, production.Hosts)
}

func TestHandlersRegistered(t *testing.T) {
	for _, plugin := range []string{"static", "exclude", "include", "terraform", "jerakia"} {
		assert.NotNil(t, handlers[plugin], plugin)
	}
}
