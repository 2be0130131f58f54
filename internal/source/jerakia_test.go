// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invctl/invctl/internal/inventory"
)

func newLookupServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"found": true, "payload": "vim", "status": "ok"}`)
	}))
	t.Cleanup(server.Close)
	return server
}

func jerakiaSource(t *testing.T, server *httptest.Server, extra string) string {
	t.Helper()
	parsed, err := url.Parse(server.URL)
	require.NoError(t, err)

	dir := t.TempDir()
	doc := fmt.Sprintf(`
plugin: jerakia
host: %s
port: %s
token: test:secret
keys:
  editor: common/editor
%s`, parsed.Hostname(), parsed.Port(), extra)
	return writeSource(t, dir, "zzz_jerakia.yml", doc)
}

func TestParseJerakia_SetsHostVars(t *testing.T) {
	server := newLookupServer(t, nil)
	path := jerakiaSource(t, server, "")

	inv := inventory.New()
	inv.AddHost("web1.example.com")
	inv.AddHostToGroup("web1.example.com", "all")

	require.NoError(t, Parse(context.Background(), inv, path))

	host, ok := inv.Host("web1.example.com")
	require.True(t, ok)
	assert.Equal(t, "vim", host.Vars["editor"])
}

func TestParseJerakia_BadTermStrict(t *testing.T) {
	server := newLookupServer(t, nil)
	path := jerakiaSource(t, server, "")

	dir := t.TempDir()
	parsed, err := url.Parse(server.URL)
	require.NoError(t, err)
	path = writeSource(t, dir, "zzz_jerakia.yml", fmt.Sprintf(`
plugin: jerakia
host: %s
port: %s
token: test:secret
keys:
  editor: editor
`, parsed.Hostname(), parsed.Port()))

	inv := inventory.New()
	inv.AddHost("web1.example.com")

	err = Parse(context.Background(), inv, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no namespace given")
}

func TestParseJerakia_BadTermLenient(t *testing.T) {
	server := newLookupServer(t, nil)
	parsed, err := url.Parse(server.URL)
	require.NoError(t, err)

	dir := t.TempDir()
	path := writeSource(t, dir, "zzz_jerakia.yml", fmt.Sprintf(`
plugin: jerakia
host: %s
port: %s
token: test:secret
strict: false
keys:
  editor: editor
`, parsed.Hostname(), parsed.Port()))

	inv := inventory.New()
	inv.AddHost("web1.example.com")

	require.NoError(t, Parse(context.Background(), inv, path))

	host, _ := inv.Host("web1.example.com")
	assert.NotContains(t, host.Vars, "editor")
}

func TestParseJerakia_CacheAvoidsSecondLookup(t *testing.T) {
	var hits atomic.Int64
	server := newLookupServer(t, &hits)
	path := jerakiaSource(t, server, "cache: true\n")

	t.Setenv("INVCTL_CACHE_DIR", t.TempDir())

	inv := inventory.New()
	inv.AddHost("web1.example.com")
	require.NoError(t, Parse(context.Background(), inv, path))
	require.Equal(t, int64(1), hits.Load())

	inv = inventory.New()
	inv.AddHost("web1.example.com")
	require.NoError(t, Parse(context.Background(), inv, path))
	assert.Equal(t, int64(1), hits.Load())

	host, _ := inv.Host("web1.example.com")
	assert.Equal(t, "vim", host.Vars["editor"])
}
