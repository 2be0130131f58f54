// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invctl/invctl/internal/inventory"
)

func TestEval(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		vars       map[string]any
		want       any
		wantErr    bool
	}{
		{
			name:       "string_literal",
			expression: `"hello"`,
			want:       "hello",
		},
		{
			name:       "variable_reference",
			expression: "ansible_host",
			vars:       map[string]any{"ansible_host": "10.0.0.5"},
			want:       "10.0.0.5",
		},
		{
			name:       "string_interpolation",
			expression: `"${tier}-${env}"`,
			vars:       map[string]any{"tier": "web", "env": "prod"},
			want:       "web-prod",
		},
		{
			name:       "arithmetic",
			expression: "port + 1",
			vars:       map[string]any{"port": 8080},
			want:       int64(8081),
		},
		{
			name:       "function_call",
			expression: "upper(tier)",
			vars:       map[string]any{"tier": "web"},
			want:       "WEB",
		},
		{
			name:       "index_via_vars",
			expression: `vars["ansible_host"]`,
			vars:       map[string]any{"ansible_host": "10.0.0.5"},
			want:       "10.0.0.5",
		},
		{
			name:       "nested_map_access",
			expression: "network.address",
			vars: map[string]any{
				"network": map[string]any{"address": "10.0.0.9"},
			},
			want: "10.0.0.9",
		},
		{
			name:       "try_fallback",
			expression: `try(missing, "fallback")`,
			vars:       map[string]any{},
			want:       "fallback",
		},
		{
			name:       "parse_error",
			expression: "((",
			wantErr:    true,
		},
		{
			name:       "unknown_variable",
			expression: "nope",
			vars:       map[string]any{"other": 1},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Eval(tt.expression, tt.vars)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalBool(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		vars       map[string]any
		want       bool
	}{
		{name: "true_literal", expression: "true", want: true},
		{name: "false_literal", expression: "false", want: false},
		{name: "comparison", expression: "port > 80", vars: map[string]any{"port": 8080}, want: true},
		{name: "empty_string", expression: `""`, want: false},
		{name: "nonempty_string", expression: `"web"`, want: true},
		{name: "zero_number", expression: "0", want: false},
		{
			name:       "contains_membership",
			expression: `contains(tags, "prod")`,
			vars:       map[string]any{"tags": []any{"prod", "web"}},
			want:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvalBool(tt.expression, tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptions_Compose(t *testing.T) {
	inv := inventory.New()
	inv.SetHostVar("web-1", "tier", "web")
	inv.SetHostVar("web-1", "env", "prod")

	opts := Options{
		Compose: map[string]string{
			"deployment": `"${tier}-${env}"`,
		},
	}

	require.NoError(t, opts.Apply(inv))

	h, _ := inv.Host("web-1")
	assert.Equal(t, "web-prod", h.Vars["deployment"])
}

func TestOptions_Groups(t *testing.T) {
	inv := inventory.New()
	inv.SetHostVar("web-1", "tier", "web")
	inv.SetHostVar("db-1", "tier", "db")

	opts := Options{
		Groups: map[string]string{
			"webservers": `tier == "web"`,
		},
	}

	require.NoError(t, opts.Apply(inv))

	g, ok := inv.Group("webservers")
	require.True(t, ok)
	assert.Equal(t, []string{"web-1"}, g.Hosts)
}

func TestOptions_KeyedGroups(t *testing.T) {
	inv := inventory.New()
	inv.SetHostVar("web-1", "env", "prod")
	inv.SetHostVar("db-1", "env", "staging")

	opts := Options{
		KeyedGroups: []KeyedGroup{
			{Key: "env", Prefix: "env"},
		},
	}

	require.NoError(t, opts.Apply(inv))

	g, ok := inv.Group("env_prod")
	require.True(t, ok)
	assert.Equal(t, []string{"web-1"}, g.Hosts)

	g, ok = inv.Group("env_staging")
	require.True(t, ok)
	assert.Equal(t, []string{"db-1"}, g.Hosts)
}

func TestOptions_KeyedGroups_ListValue(t *testing.T) {
	inv := inventory.New()
	inv.SetHostVar("web-1", "roles", []any{"app", "cache"})

	opts := Options{
		KeyedGroups: []KeyedGroup{
			{Key: "roles", Prefix: "role", Separator: "-"},
		},
	}

	require.NoError(t, opts.Apply(inv))

	_, ok := inv.Group("role-app")
	assert.True(t, ok)
	_, ok = inv.Group("role-cache")
	assert.True(t, ok)
}

func TestOptions_StrictFailsOnError(t *testing.T) {
	inv := inventory.New()
	inv.AddHost("web-1")

	opts := Options{
		Strict:  true,
		Compose: map[string]string{"x": "undefined_name"},
	}

	assert.Error(t, opts.Apply(inv))
}

func TestOptions_NonStrictSkipsOnError(t *testing.T) {
	inv := inventory.New()
	inv.SetHostVar("web-1", "tier", "web")

	opts := Options{
		Compose: map[string]string{
			"bad":  "undefined_name",
			"good": "upper(tier)",
		},
	}

	require.NoError(t, opts.Apply(inv))

	h, _ := inv.Host("web-1")
	assert.Equal(t, "WEB", h.Vars["good"])
	assert.NotContains(t, h.Vars, "bad")
}

func TestOptions_ComposedVarsVisibleToGroups(t *testing.T) {
	inv := inventory.New()
	inv.SetHostVar("web-1", "tier", "web")

	opts := Options{
		Compose: map[string]string{"tier_upper": "upper(tier)"},
		Groups:  map[string]string{"loud": `tier_upper == "WEB"`},
	}

	require.NoError(t, opts.Apply(inv))

	g, ok := inv.Group("loud")
	require.True(t, ok)
	assert.Equal(t, []string{"web-1"}, g.Hosts)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "us-east_1a", sanitize("us-east 1a"))
	assert.Equal(t, "plain", sanitize("plain"))
}
