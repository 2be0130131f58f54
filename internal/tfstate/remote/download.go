// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/invctl/invctl/internal/log"
)

// download fetches a state document from its hosted URL, consulting the
// on-disk cache first. Hosted state URLs are stable per state version, so
// the URL itself is the cache key.
func (be *BackendRemote) download(url string) ([]byte, error) {
	if err := PurgeCache(); err != nil {
		log.WithError(err).Warnf("failed to purge cache")
	}

	if entry, ok := CacheReader(be, url); ok {
		log.Debugf("cache hit: %s", entry.Path)
		return entry.Data, nil
	}

	req, err := http.NewRequestWithContext(be.Ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	token, err := be.Token()
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download state: %s", resp.Status)
	}

	var doc bytes.Buffer
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if err := CacheWriter(be, url, doc.Bytes()); err != nil {
		log.WithError(err).Warnf("failed to write state to cache")
	}

	return doc.Bytes(), nil
}
