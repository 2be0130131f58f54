// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/invctl/invctl/internal/log"
)

type Option = func(ctx context.Context, be *BackendRemote) error

// FromDefinition populates the backend from a raw backend definition mapping.
func FromDefinition(definition map[string]any) Option {
	return func(ctx context.Context, be *BackendRemote) error {
		data, err := yaml.Marshal(definition)
		if err != nil {
			return fmt.Errorf("failed to marshal backend definition: %w", err)
		}
		if err := yaml.Unmarshal(data, be); err != nil {
			return fmt.Errorf("failed to unmarshal backend definition: %w", err)
		}

		log.Debugf("remote FromDefinition(): host=%s org=%s", be.Host(), be.Organization)

		return nil
	}
}

// New returns a BackendRemote that implements the tfstate Backend interface.
func New(ctx context.Context, options ...Option) (*BackendRemote, error) {
	options = append([]Option{WithDefaults()}, options...)

	be := &BackendRemote{Ctx: ctx}

	for _, opt := range options {
		if err := opt(ctx, be); err != nil {
			return nil, err
		}
	}

	return be, nil
}

func WithDefaults() Option {
	return func(ctx context.Context, be *BackendRemote) error {
		return nil
	}
}

func WithName(name string) Option {
	return func(ctx context.Context, be *BackendRemote) error {
		be.Name = name
		return nil
	}
}
