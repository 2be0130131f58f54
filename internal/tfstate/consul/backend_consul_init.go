// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package consul

import (
	"context"
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	"gopkg.in/yaml.v3"

	"github.com/invctl/invctl/internal/log"
)

type Option = func(ctx context.Context, be *BackendConsul) error

// FromDefinition populates the backend from a raw backend definition mapping.
func FromDefinition(definition map[string]any) Option {
	return func(ctx context.Context, be *BackendConsul) error {
		data, err := yaml.Marshal(definition)
		if err != nil {
			return fmt.Errorf("failed to marshal backend definition: %w", err)
		}
		if err := yaml.Unmarshal(data, be); err != nil {
			return fmt.Errorf("failed to unmarshal backend definition: %w", err)
		}
		return nil
	}
}

// New returns a BackendConsul that implements the tfstate Backend interface.
func New(ctx context.Context, options ...Option) (*BackendConsul, error) {
	options = append([]Option{WithDefaults()}, options...)

	be := &BackendConsul{Ctx: ctx}

	for _, opt := range options {
		if err := opt(ctx, be); err != nil {
			return nil, err
		}
	}

	if be.Token == "" {
		be.Token = os.Getenv("CONSUL_HTTP_TOKEN")
	}

	be.client = resty.New().SetBaseURL(be.URL)
	if be.Token != "" {
		be.client.SetHeader("X-Consul-Token", be.Token)
	}

	log.Debugf("consul backend: url=%s prefix=%s", be.URL, be.Prefix)

	return be, nil
}

func WithDefaults() Option {
	return func(ctx context.Context, be *BackendConsul) error {
		be.URL = "http://127.0.0.1:8500"
		if addr := os.Getenv("CONSUL_HTTP_ADDR"); addr != "" {
			be.URL = addr
		}
		return nil
	}
}

func WithName(name string) Option {
	return func(ctx context.Context, be *BackendConsul) error {
		be.Name = name
		return nil
	}
}
