// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/invctl/invctl/internal/log"
)

type Option = func(ctx context.Context, be *BackendLocal) error

// FromDefinition populates the backend from a raw backend definition mapping.
func FromDefinition(definition map[string]any) Option {
	return func(ctx context.Context, be *BackendLocal) error {
		data, err := yaml.Marshal(definition)
		if err != nil {
			return fmt.Errorf("failed to marshal backend definition: %w", err)
		}
		if err := yaml.Unmarshal(data, be); err != nil {
			return fmt.Errorf("failed to unmarshal backend definition: %w", err)
		}

		// Is dir a relative or absolute path?
		if !filepath.IsAbs(be.Dir) {
			cwd, _ := os.Getwd()
			be.Dir = filepath.Join(cwd, be.Dir)
		}

		log.Debugf("local FromDefinition(): dir = %s", be.Dir)

		stat, err := os.Stat(be.Dir)
		if err != nil {
			return fmt.Errorf("failed to stat backend dir %s: %w", be.Dir, err)
		}
		if !stat.IsDir() {
			return fmt.Errorf("backend dir is not a directory: %s", be.Dir)
		}

		return nil
	}
}

// New returns a BackendLocal that implements the tfstate Backend interface.
func New(ctx context.Context, options ...Option) (*BackendLocal, error) {
	options = append([]Option{WithDefaults()}, options...)

	be := &BackendLocal{Ctx: ctx}

	for _, opt := range options {
		if err := opt(ctx, be); err != nil {
			return nil, err
		}
	}

	return be, nil
}

func WithDefaults() Option {
	return func(ctx context.Context, be *BackendLocal) error {
		cwd, _ := os.Getwd()
		be.Dir = cwd
		return nil
	}
}

func WithName(name string) Option {
	return func(ctx context.Context, be *BackendLocal) error {
		be.Name = name
		return nil
	}
}
