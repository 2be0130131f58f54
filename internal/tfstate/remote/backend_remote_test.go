// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package remote

import (
	"context"
	"errors"
	"testing"

	tfe "github.com/hashicorp/go-tfe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDefinition(t *testing.T) {
	be, err := New(context.Background(), WithName("hcp"), FromDefinition(map[string]any{
		"type":         "remote",
		"hostname":     "tfe.example.com",
		"organization": "acme",
		"token":        "t0ken",
	}))
	require.NoError(t, err)

	assert.Equal(t, "tfe.example.com", be.Host())
	org, err := be.Org()
	require.NoError(t, err)
	assert.Equal(t, "acme", org)
	assert.Equal(t, "remote", be.Type())
}

func TestHost_DefaultsToCloud(t *testing.T) {
	be, err := New(context.Background(), FromDefinition(map[string]any{}))
	require.NoError(t, err)
	assert.Equal(t, "app.terraform.io", be.Host())
}

func TestOrg_MissingIsError(t *testing.T) {
	be, err := New(context.Background(), FromDefinition(map[string]any{}))
	require.NoError(t, err)

	_, err = be.Org()
	assert.ErrorIs(t, err, ErrOrganizationNotSet)
}

func TestToken_EnvPrecedence(t *testing.T) {
	be, err := New(context.Background(), FromDefinition(map[string]any{
		"hostname": "tfe.example.com",
		"token":    "from-definition",
	}))
	require.NoError(t, err)

	t.Setenv("TF_TOKEN_tfe_example_com", "from-host-env")
	t.Setenv("TF_TOKEN", "from-env")

	token, err := be.Token()
	require.NoError(t, err)
	assert.Equal(t, "from-host-env", token)
}

func TestToken_FallsBackToDefinition(t *testing.T) {
	be, err := New(context.Background(), FromDefinition(map[string]any{
		"hostname": "tfe.example.com",
		"token":    "from-definition",
	}))
	require.NoError(t, err)

	t.Setenv("TF_TOKEN_tfe_example_com", "")
	t.Setenv("TF_TOKEN", "")

	token, err := be.Token()
	require.NoError(t, err)
	assert.Equal(t, "from-definition", token)
}

func TestFriendlyTFE_Unauthorized(t *testing.T) {
	err := FriendlyTFE(tfe.ErrUnauthorized, ErrorContext{
		Host:      "tfe.example.com",
		Operation: "list workspaces",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication failed (401)")
	assert.Contains(t, err.Error(), "TF_TOKEN_tfe_example_com")
}

func TestFriendlyTFE_WorkspaceNotFound(t *testing.T) {
	err := FriendlyTFE(tfe.ErrResourceNotFound, ErrorContext{
		Host:      "tfe.example.com",
		Org:       "acme",
		Workspace: "prod",
		Operation: "list state versions",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `workspace "prod" not found`)
}

func TestFriendlyTFE_UnknownErrorWrapped(t *testing.T) {
	sentinel := errors.New("boom")
	err := FriendlyTFE(sentinel, ErrorContext{Host: "h", Org: "o", Workspace: "w"})

	assert.ErrorIs(t, err, sentinel)
}

func TestFriendlyTFE_NilPassesThrough(t *testing.T) {
	assert.NoError(t, FriendlyTFE(nil, ErrorContext{}))
}
