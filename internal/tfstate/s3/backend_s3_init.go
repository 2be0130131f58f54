// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package s3

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/invctl/invctl/internal/log"
)

type Option = func(ctx context.Context, be *BackendS3) error

// FromDefinition populates the backend from a raw backend definition mapping.
func FromDefinition(definition map[string]any) Option {
	return func(ctx context.Context, be *BackendS3) error {
		data, err := yaml.Marshal(definition)
		if err != nil {
			return fmt.Errorf("failed to marshal backend definition: %w", err)
		}
		if err := yaml.Unmarshal(data, be); err != nil {
			return fmt.Errorf("failed to unmarshal backend definition: %w", err)
		}

		if be.Bucket == "" {
			return fmt.Errorf("s3 backend requires a bucket")
		}

		log.Debugf("s3 FromDefinition(): bucket=%s prefix=%s", be.Bucket, be.Prefix)

		return nil
	}
}

// New returns a BackendS3 that implements the tfstate Backend interface.
func New(ctx context.Context, options ...Option) (*BackendS3, error) {
	options = append([]Option{WithDefaults()}, options...)

	be := &BackendS3{Ctx: ctx}

	for _, opt := range options {
		if err := opt(ctx, be); err != nil {
			return nil, err
		}
	}

	return be, nil
}

func WithDefaults() Option {
	return func(ctx context.Context, be *BackendS3) error {
		return nil
	}
}

func WithName(name string) Option {
	return func(ctx context.Context, be *BackendS3) error {
		be.Name = name
		return nil
	}
}
