// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invctl/invctl/internal/inventory"
)

func buildTestInventory() *inventory.Inventory {
	inv := inventory.New()
	inv.AddHost("web1.example.com")
	inv.AddHostToGroup("web1.example.com", "all")
	inv.AddHostToGroup("web1.example.com", "webservers")
	inv.SetHostVar("web1.example.com", "http_port", 8080)
	inv.AddHost("db1.example.com")
	inv.AddHostToGroup("db1.example.com", "all")
	inv.AddHostToGroup("db1.example.com", "ungrouped")
	return inv
}

func TestHostDataset(t *testing.T) {
	dataset := hostDataset(buildTestInventory(), false)
	require.Len(t, dataset, 2)

	assert.Equal(t, "web1.example.com", dataset[0]["name"])
	assert.Contains(t, dataset[0]["groups"], "webservers")
	assert.NotContains(t, dataset[0], "vars")

	assert.Equal(t, "db1.example.com", dataset[1]["name"])
	assert.Contains(t, dataset[1]["groups"], "ungrouped")
}

func TestHostDataset_WithVars(t *testing.T) {
	dataset := hostDataset(buildTestInventory(), true)
	require.Len(t, dataset, 2)

	vars, ok := dataset[0]["vars"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 8080, vars["http_port"])
}

func TestGroupDataset_SkipsEmptyGroups(t *testing.T) {
	inv := buildTestInventory()
	inv.AddGroup("spare")

	dataset := groupDataset(inv, false)
	for _, row := range dataset {
		assert.NotEqual(t, "spare", row["name"])
	}

	dataset = groupDataset(inv, true)
	names := make([]string, 0, len(dataset))
	for _, row := range dataset {
		names = append(names, row["name"].(string))
	}
	assert.Contains(t, names, "spare")
}

func TestGroupDataset_JoinsMembers(t *testing.T) {
	dataset := groupDataset(buildTestInventory(), false)

	var all map[string]any
	for _, row := range dataset {
		if row["name"] == "all" {
			all = row
		}
	}
	require.NotNil(t, all)
	assert.Equal(t, "web1.example.com,db1.example.com", all["hosts"])
}
