// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package consul

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	tfe "github.com/hashicorp/go-tfe"

	"github.com/invctl/invctl/internal/log"
)

// BackendConsul serves state from a Consul KV tree. The KV store holds a
// single value per key, so every stack has exactly one snapshot and only the
// current-snapshot specs resolve.
type BackendConsul struct {
	Ctx    context.Context
	Name   string
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Prefix string `yaml:"prefix"`

	client *resty.Client
}

// kvEntry is the shape of one element of a /v1/kv response.
type kvEntry struct {
	Key         string `json:"Key"`
	Value       string `json:"Value"`
	ModifyIndex int64  `json:"ModifyIndex"`
}

// Stacks lists the keys under the configured prefix.
func (be *BackendConsul) Stacks() ([]string, error) {
	resp, err := be.client.R().
		SetContext(be.Ctx).
		SetQueryParam("keys", "true").
		Get("/v1/kv/" + strings.TrimPrefix(be.Prefix, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to list keys under %s: %w", be.Prefix, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to list keys under %s: %s", be.Prefix, resp.Status())
	}

	var keys []string
	if err := json.Unmarshal(resp.Body(), &keys); err != nil {
		return nil, fmt.Errorf("failed to parse key list: %w", err)
	}

	// Directory placeholders end with a slash and hold no state.
	var stacks []string
	for _, k := range keys {
		if strings.HasSuffix(k, "/") {
			continue
		}
		stacks = append(stacks, k)
	}

	return stacks, nil
}

// Snapshots returns the single snapshot the KV store holds for a stack. The
// ModifyIndex stands in for a version id.
func (be *BackendConsul) Snapshots(path string) ([]*tfe.StateVersion, error) {
	entry, doc, err := be.fetch(path)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Serial int64 `json:"serial"`
	}
	_ = json.Unmarshal(doc, &parsed)

	return []*tfe.StateVersion{{
		ID:     fmt.Sprintf("%s@%d", path, entry.ModifyIndex),
		Serial: parsed.Serial,
	}}, nil
}

// State returns the current state document for a stack. Consul keeps no
// history, so any spec other than the current snapshot is an error.
func (be *BackendConsul) State(path string, spec string) ([]byte, error) {
	if spec != "" && !strings.EqualFold(spec, "CSV~0") && spec != "0" {
		return nil, fmt.Errorf("consul backend keeps a single snapshot; spec %s cannot resolve", spec)
	}

	_, doc, err := be.fetch(path)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// fetch reads one KV entry and decodes its base64 value.
func (be *BackendConsul) fetch(path string) (*kvEntry, []byte, error) {
	resp, err := be.client.R().
		SetContext(be.Ctx).
		Get("/v1/kv/" + strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get key %s: %w", path, err)
	}
	if resp.IsError() {
		return nil, nil, fmt.Errorf("failed to get key %s: %s", path, resp.Status())
	}

	var entries []kvEntry
	if err := json.Unmarshal(resp.Body(), &entries); err != nil {
		return nil, nil, fmt.Errorf("failed to parse KV response: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil, fmt.Errorf("no value at key: %s", path)
	}

	doc, err := base64.StdEncoding.DecodeString(entries[0].Value)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode value at %s: %w", path, err)
	}

	log.Debugf("consul fetch: key=%s bytes=%d", path, len(doc))
	return &entries[0], doc, nil
}

func (be *BackendConsul) String() string {
	return fmt.Sprintf("consul %s (%s/%s)", be.Name, be.URL, be.Prefix)
}

func (be *BackendConsul) Type() string {
	return "consul"
}
