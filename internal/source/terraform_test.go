// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invctl/invctl/internal/inventory"
)

const stateWithHosts = `{
  "serial": 3,
  "resources": [
    {
      "type": "aws_instance",
      "instances": [{"attributes": {"id": "i-abc123"}}]
    },
    {
      "type": "ansible_host",
      "instances": [
        {
          "attributes": {
            "inventory_hostname": "web_1",
            "groups": ["webservers"],
            "vars": {"port": "8080", "labels": "[\"a\",\"b\"]"}
          }
        },
        {
          "attributes": {
            "inventory_hostname": "db-1",
            "groups": [],
            "vars": {}
          }
        }
      ]
    }
  ]
}`

func writeTerraformSource(t *testing.T, stateDir string, extra string) string {
	t.Helper()
	dir := t.TempDir()
	doc := fmt.Sprintf(`
plugin: terraform
backends:
  local:
    type: local
    dir: %s
stacks:
  - backend: local
    driver: ansible_host
%s`, stateDir, extra)
	return writeSource(t, dir, "terraform.yml", doc)
}

func TestParseTerraform_LocalBackend(t *testing.T) {
	stateDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(stateDir, "prod-web.tfstate"), []byte(stateWithHosts), 0o644))

	inv := inventory.New()
	path := writeTerraformSource(t, stateDir, "inventory_group: terraform\n")
	require.NoError(t, Parse(context.Background(), inv, path))

	// Strict hostnames replace underscores.
	host, ok := inv.Host("web-1")
	require.True(t, ok)
	assert.Equal(t, float64(8080), host.Vars["port"])
	assert.Equal(t, []any{"a", "b"}, host.Vars["labels"])
	assert.Equal(t, "prod-web.tfstate", host.Vars["terraform_stack"])
	assert.Equal(t, "ansible_host", host.Vars["terraform_driver"])

	_, ok = inv.Host("db-1")
	assert.True(t, ok)

	webservers, ok := inv.Group("webservers")
	require.True(t, ok)
	assert.Contains(t, webservers.Hosts, "web-1")

	top, ok := inv.Group("terraform")
	require.True(t, ok)
	assert.Contains(t, top.Children, "prod_web.tfstate")

	sub, ok := inv.Group("prod_web.tfstate")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"web-1", "db-1"}, sub.Hosts)
}

func TestParseTerraform_StrictDisabled(t *testing.T) {
	stateDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(stateDir, "prod.tfstate"), []byte(stateWithHosts), 0o644))

	inv := inventory.New()
	path := writeTerraformSource(t, stateDir, "strict: false\n")
	require.NoError(t, Parse(context.Background(), inv, path))

	_, ok := inv.Host("web_1")
	assert.True(t, ok)
	_, ok = inv.Host("web-1")
	assert.False(t, ok)
}

func TestParseTerraform_DuplicateAcrossStacks(t *testing.T) {
	stateDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(stateDir, "aaa.tfstate"), []byte(stateWithHosts), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(stateDir, "bbb.tfstate"), []byte(stateWithHosts), 0o644))

	inv := inventory.New()
	path := writeTerraformSource(t, stateDir, "")
	require.NoError(t, Parse(context.Background(), inv, path))

	// First stack wins; the later declaration is skipped.
	host, ok := inv.Host("web-1")
	require.True(t, ok)
	assert.Equal(t, "aaa.tfstate", host.Vars["terraform_stack"])
}

func TestParseTerraform_StackNamePattern(t *testing.T) {
	stateDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(stateDir, "prod.tfstate"), []byte(stateWithHosts), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(stateDir, "dev.tfstate"), []byte(stateWithHosts), 0o644))

	dir := t.TempDir()
	doc := fmt.Sprintf(`
plugin: terraform
backends:
  local:
    type: local
    dir: %s
stacks:
  - backend: local
    name: "^prod"
    driver: ansible_host
`, stateDir)
	path := writeSource(t, dir, "terraform.yml", doc)

	inv := inventory.New()
	require.NoError(t, Parse(context.Background(), inv, path))

	host, ok := inv.Host("web-1")
	require.True(t, ok)
	assert.Equal(t, "prod.tfstate", host.Vars["terraform_stack"])
}

func TestParseTerraform_UnknownBackend(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "terraform.yml", `
plugin: terraform
stacks:
  - backend: missing
`)

	inv := inventory.New()
	err := Parse(context.Background(), inv, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend: missing")
}

func TestDriverFor(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		wantErr string
	}{
		{name: "default", driver: ""},
		{name: "ansible host", driver: "ansible_host"},
		{name: "libvirt", driver: "libvirt_domain", wantErr: "unsupported terraform driver"},
		{name: "unknown", driver: "bogus", wantErr: "unknown terraform driver"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver, err := driverFor(tt.driver)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, driver)
		})
	}
}

func TestAnsibleHostDriver(t *testing.T) {
	hosts, err := ansibleHostDriver([]byte(stateWithHosts))
	require.NoError(t, err)
	require.Len(t, hosts, 2)

	assert.Equal(t, "web_1", hosts[0].Name)
	assert.Equal(t, []string{"webservers"}, hosts[0].Groups)
	assert.Equal(t, float64(8080), hosts[0].Vars["port"])

	assert.Equal(t, "db-1", hosts[1].Name)
	assert.Empty(t, hosts[1].Groups)
}

func TestAnsibleHostDriver_InvalidJSON(t *testing.T) {
	_, err := ansibleHostDriver([]byte("not json"))
	require.Error(t, err)
}
