// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package jerakia

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/invctl/invctl/internal/driller"
	"github.com/invctl/invctl/internal/log"
)

// Client queries a Jerakia lookup server.
type Client struct {
	Ctx      context.Context
	Protocol string            `yaml:"protocol"`
	Host     string            `yaml:"host"`
	Port     string            `yaml:"port"`
	Version  string            `yaml:"version"`
	Policy   string            `yaml:"policy"`
	Token    string            `yaml:"token"`
	Scope    map[string]string `yaml:"scope"`

	http *resty.Client
}

// Response is the body of a successful lookup.
type Response struct {
	Found   bool   `json:"found"`
	Payload any    `json:"payload"`
	Status  string `json:"status"`
}

// Lookup resolves one namespace/key term against the server. The scope is
// built from vars (typically a host's resolved variables plus magic vars).
func (c *Client) Lookup(term string, vars map[string]any) (*Response, error) {
	namespace, key, err := SplitTerm(term)
	if err != nil {
		return nil, err
	}

	if c.Token == "" {
		return nil, fmt.Errorf("no token configured for jerakia")
	}

	params := c.scope(vars)
	params["namespace"] = namespace
	params["policy"] = c.Policy

	resp, err := c.http.R().
		SetContext(c.Ctx).
		SetQueryParams(params).
		SetHeader("X-Authentication", c.Token).
		SetHeader("Content-Type", "application/json").
		Get("/v" + c.Version + "/lookup/" + key)
	if err != nil {
		return nil, fmt.Errorf("lookup %s failed: %w", term, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("lookup %s failed: %s: %s", term, resp.Status(), resp.Body())
	}

	var result Response
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse lookup response for %s: %w", term, err)
	}

	log.Tracef("jerakia lookup: term=%s params=%v", term, params)

	return &result, nil
}

// SplitTerm splits a namespace/key lookup term. The key is the last path
// segment; everything before it is the namespace. A term with no namespace
// is an error.
func SplitTerm(term string) (string, string, error) {
	parts := strings.Split(term, "/")
	if len(parts) < 2 || parts[0] == "" {
		return "", "", fmt.Errorf("no namespace given for lookup of key %s", term)
	}
	key := parts[len(parts)-1]
	namespace := strings.Join(parts[:len(parts)-1], "/")
	return namespace, key, nil
}

// scope resolves the configured scope dot paths against the variables and
// returns them as metadata_* params. Lists flatten to comma separated
// values; mappings flatten to their comma separated keys.
func (c *Client) scope(vars map[string]any) map[string]string {
	params := make(map[string]string)
	if len(c.Scope) == 0 {
		return params
	}

	doc, err := json.Marshal(vars)
	if err != nil {
		return params
	}

	for name, path := range c.Scope {
		value := driller.Driller(string(doc), path)
		if !value.Exists() {
			log.Warnf("jerakia scope %s: cannot find key %s", name, path)
			continue
		}
		params["metadata_"+name] = flatten(value)
	}

	return params
}

func flatten(value gjson.Result) string {
	switch {
	case value.IsArray():
		var parts []string
		for _, item := range value.Array() {
			parts = append(parts, item.String())
		}
		return strings.Join(parts, ",")
	case value.IsObject():
		var keys []string
		value.ForEach(func(key, _ gjson.Result) bool {
			keys = append(keys, key.String())
			return true
		})
		return strings.Join(keys, ",")
	default:
		return value.String()
	}
}

func (c *Client) String() string {
	return fmt.Sprintf("%s://%s:%s policy=%s", c.Protocol, c.Host, c.Port, c.Policy)
}
