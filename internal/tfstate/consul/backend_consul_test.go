// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package consul

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKVServer(t *testing.T, state map[string][]byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path[len("/v1/kv/"):]

		if r.URL.Query().Get("keys") == "true" {
			var keys []string
			for k := range state {
				keys = append(keys, k)
			}
			keys = append(keys, "tf/") // directory placeholder
			_ = json.NewEncoder(w).Encode(keys)
			return
		}

		doc, ok := state[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{{
			"Key":         key,
			"Value":       base64.StdEncoding.EncodeToString(doc),
			"ModifyIndex": 42,
		}})
	}))
}

func TestStacks_SkipsDirectoryPlaceholders(t *testing.T) {
	srv := newKVServer(t, map[string][]byte{
		"tf/prod": []byte(`{"serial":3}`),
	})
	defer srv.Close()

	be, err := New(context.Background(), WithName("kv"), FromDefinition(map[string]any{
		"type":   "consul",
		"url":    srv.URL,
		"prefix": "tf/",
	}))
	require.NoError(t, err)

	stacks, err := be.Stacks()
	require.NoError(t, err)
	assert.Equal(t, []string{"tf/prod"}, stacks)
}

func TestSnapshots_SingleEntryWithSerial(t *testing.T) {
	srv := newKVServer(t, map[string][]byte{
		"tf/prod": []byte(`{"serial":7,"resources":[]}`),
	})
	defer srv.Close()

	be, err := New(context.Background(), FromDefinition(map[string]any{"url": srv.URL}))
	require.NoError(t, err)

	versions, err := be.Snapshots("tf/prod")
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, "tf/prod@42", versions[0].ID)
	assert.Equal(t, int64(7), versions[0].Serial)
}

func TestState_CurrentOnly(t *testing.T) {
	doc := []byte(`{"serial":7,"resources":[]}`)
	srv := newKVServer(t, map[string][]byte{"tf/prod": doc})
	defer srv.Close()

	be, err := New(context.Background(), FromDefinition(map[string]any{"url": srv.URL}))
	require.NoError(t, err)

	got, err := be.State("tf/prod", "")
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	got, err = be.State("tf/prod", "CSV~0")
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	_, err = be.State("tf/prod", "CSV~1")
	assert.Error(t, err)
}

func TestState_MissingKey(t *testing.T) {
	srv := newKVServer(t, map[string][]byte{})
	defer srv.Close()

	be, err := New(context.Background(), FromDefinition(map[string]any{"url": srv.URL}))
	require.NoError(t, err)

	_, err = be.State("tf/absent", "")
	assert.Error(t, err)
}
