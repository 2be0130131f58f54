// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package report

// Category labels used by the builtin list. Entries sharing a category are
// kept contiguous so grouped output stays readable.
const (
	CategoryPaths     = "Paths"
	CategoryFlags     = "Command-line flags"
	CategoryLoop      = "Loop context"
	CategoryPlay      = "Play context"
	CategoryRole      = "Role context"
	CategoryMisc      = "Misc"
	CategoryInventory = "Inventory"
)

// Builtin returns the fixed, compile-time list of well-known engine
// variables, grouped by category. The list is authored here and never
// computed at runtime.
func Builtin() List {
	return List{
		{Name: "ansible_search_path", Category: CategoryPaths},
		{Name: "playbook_dir", Category: CategoryPaths},
		{Name: "role_path", Category: CategoryPaths},

		{Name: "ansible_check_mode", Category: CategoryFlags},
		{Name: "ansible_diff_mode", Category: CategoryFlags},
		{Name: "ansible_forks", Category: CategoryFlags},
		{Name: "ansible_inventory_sources", Category: CategoryFlags},
		{Name: "ansible_limit", Category: CategoryFlags},
		{Name: "ansible_run_tags", Category: CategoryFlags},
		{Name: "ansible_skip_tags", Category: CategoryFlags},
		{Name: "ansible_verbosity", Category: CategoryFlags},

		{Name: "ansible_loop", Category: CategoryLoop},
		{Name: "ansible_loop_var", Category: CategoryLoop},
		{Name: "ansible_index_var", Category: CategoryLoop},

		{Name: "ansible_play_batch", Category: CategoryPlay},
		{Name: "ansible_play_hosts", Category: CategoryPlay},
		{Name: "ansible_play_hosts_all", Category: CategoryPlay},
		{Name: "ansible_play_name", Category: CategoryPlay},
		{Name: "ansible_play_role_names", Category: CategoryPlay},
		{Name: "ansible_role_names", Category: CategoryPlay},

		{Name: "ansible_collection_name", Category: CategoryRole},
		{Name: "ansible_role_name", Category: CategoryRole},
		{Name: "ansible_parent_role_names", Category: CategoryRole},
		{Name: "ansible_parent_role_paths", Category: CategoryRole},
		{Name: "role_name", Category: CategoryRole},

		{Name: "ansible_config_file", Category: CategoryMisc},
		{Name: "ansible_dependent_role_names", Category: CategoryMisc},
		{Name: "ansible_version", Category: CategoryMisc},
		{Name: "omit", Category: CategoryMisc},

		{Name: "group_names", Category: CategoryInventory},
		{Name: "groups", Category: CategoryInventory},
		{Name: "inventory_hostname", Category: CategoryInventory},
		{Name: "inventory_hostname_short", Category: CategoryInventory},
		{Name: "inventory_dir", Category: CategoryInventory},
		{Name: "inventory_file", Category: CategoryInventory},
	}
}
