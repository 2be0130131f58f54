// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"github.com/invctl/invctl/internal/cacheutil"
	"github.com/invctl/invctl/internal/config"
)

// CacheReader reads the cached document for the given key, if present. The
// cache is organized first by the backend hostname and then by the
// organization name. The key is hashed and used as the filename.
func CacheReader(be *BackendRemote, key string) (*cacheutil.Entry, bool) {
	org, _ := be.Org()
	sub := []string{be.Host(), org}
	return cacheutil.Read(sub, key)
}

func CacheWriter(be *BackendRemote, key string, data []byte) error {
	org, _ := be.Org()
	sub := []string{be.Host(), org}
	return cacheutil.Write(sub, key, data)
}

func PurgeCache() error {
	cleanHours, _ := config.GetInt("cache.clean")
	return cacheutil.Purge(cleanHours)
}
