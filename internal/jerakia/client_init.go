// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package jerakia

import (
	"context"
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	"gopkg.in/yaml.v3"

	"github.com/invctl/invctl/internal/config"
	"github.com/invctl/invctl/internal/log"
)

type Option = func(ctx context.Context, c *Client) error

// FromConfig pulls the jerakia section of the invctl config file.
func FromConfig() Option {
	return func(ctx context.Context, c *Client) error {
		settings := map[string]*string{
			"jerakia.protocol": &c.Protocol,
			"jerakia.host":     &c.Host,
			"jerakia.port":     &c.Port,
			"jerakia.version":  &c.Version,
			"jerakia.policy":   &c.Policy,
			"jerakia.token":    &c.Token,
		}
		for key, target := range settings {
			if value, err := config.GetString(key); err == nil && value != "" {
				*target = value
			}
		}
		return nil
	}
}

// FromDefinition populates the client from a raw source definition mapping.
func FromDefinition(definition map[string]any) Option {
	return func(ctx context.Context, c *Client) error {
		data, err := yaml.Marshal(definition)
		if err != nil {
			return fmt.Errorf("failed to marshal jerakia definition: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to unmarshal jerakia definition: %w", err)
		}
		return nil
	}
}

// New returns a configured Client. Settings resolve defaults first, then
// options (config file, source definition), then INVCTL_JERAKIA_* env
// overrides.
func New(ctx context.Context, options ...Option) (*Client, error) {
	options = append([]Option{WithDefaults()}, options...)

	c := &Client{Ctx: ctx}

	for _, opt := range options {
		if err := opt(ctx, c); err != nil {
			return nil, err
		}
	}

	overrides := map[string]*string{
		"INVCTL_JERAKIA_PROTOCOL": &c.Protocol,
		"INVCTL_JERAKIA_HOST":     &c.Host,
		"INVCTL_JERAKIA_PORT":     &c.Port,
		"INVCTL_JERAKIA_VERSION":  &c.Version,
		"INVCTL_JERAKIA_POLICY":   &c.Policy,
		"INVCTL_JERAKIA_TOKEN":    &c.Token,
	}
	for env, target := range overrides {
		if value := os.Getenv(env); value != "" {
			*target = value
		}
	}

	if c.http == nil {
		c.http = resty.New().SetBaseURL(fmt.Sprintf("%s://%s:%s", c.Protocol, c.Host, c.Port))
	}

	log.Debugf("jerakia client: %s", c)

	return c, nil
}

func WithDefaults() Option {
	return func(ctx context.Context, c *Client) error {
		c.Protocol = "http"
		c.Host = "127.0.0.1"
		c.Port = "9843"
		c.Version = "1"
		c.Policy = "default"
		return nil
	}
}

// WithBaseURL points the client at an explicit server URL. Used by tests.
func WithBaseURL(url string) Option {
	return func(ctx context.Context, c *Client) error {
		c.http = resty.New().SetBaseURL(url)
		return nil
	}
}
