// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package s3

import (
	"github.com/invctl/invctl/internal/cacheutil"
	"github.com/invctl/invctl/internal/config"
)

// CacheReader reads the cached body of one object version, if present. The
// cache is organized by bucket and key, with the version id hashed into the
// filename.
func CacheReader(be *BackendS3, path, versionID string) (*cacheutil.Entry, bool) {
	sub := []string{be.Bucket, path}
	return cacheutil.Read(sub, versionID)
}

func CacheWriter(be *BackendS3, path, versionID string, data []byte) error {
	sub := []string{be.Bucket, path}
	return cacheutil.Write(sub, versionID, data)
}

func PurgeCache() error {
	cleanHours, _ := config.GetInt("cache.clean")
	return cacheutil.Purge(cleanHours)
}
