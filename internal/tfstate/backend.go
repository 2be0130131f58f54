// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tfstate

import (
	"context"
	"fmt"

	tfe "github.com/hashicorp/go-tfe"

	"github.com/invctl/invctl/internal/tfstate/consul"
	"github.com/invctl/invctl/internal/tfstate/local"
	"github.com/invctl/invctl/internal/tfstate/remote"
	"github.com/invctl/invctl/internal/tfstate/s3"
)

// Backend is the contract every state store honors. Snapshots are described
// with tfe.StateVersion regardless of the store, so downstream code (spec
// resolution, diffing, the picker) works the same against all of them.
type Backend interface {
	// Stacks returns the state paths the backend holds, lexical order.
	Stacks() ([]string, error)

	// Snapshots returns the snapshots of one stack, most recent first.
	Snapshots(path string) ([]*tfe.StateVersion, error)

	// State returns the raw state document of a stack at the snapshot
	// identified by spec. An empty spec means the current snapshot.
	State(path string, spec string) ([]byte, error)

	String() string
	Type() string
}

// New builds a Backend from a named backend definition, dispatching on its
// type key. The definition is the raw mapping from the source file.
func New(ctx context.Context, name string, definition map[string]any) (Backend, error) {
	beType, _ := definition["type"].(string)

	switch beType {
	case "", "local":
		return local.New(ctx, local.WithName(name), local.FromDefinition(definition))
	case "consul":
		return consul.New(ctx, consul.WithName(name), consul.FromDefinition(definition))
	case "s3":
		return s3.New(ctx, s3.WithName(name), s3.FromDefinition(definition))
	case "remote":
		return remote.New(ctx, remote.WithName(name), remote.FromDefinition(definition))
	default:
		return nil, fmt.Errorf("backend %s: unsupported type: %s", name, beType)
	}
}
