// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"path/filepath"

	"github.com/invctl/invctl/internal/inventory"
	"github.com/invctl/invctl/internal/log"
)

type includeDocument struct {
	Files   []string `yaml:"files"`
	Plugins []string `yaml:"plugins"`
}

// parseInclude pulls other source files into the inventory. A file naming
// its own plugin is dispatched directly; otherwise the candidate plugins
// are tried in order. Files no handler accepts are skipped with a warning,
// never fatally.
func parseInclude(ctx context.Context, inv *inventory.Inventory, doc map[string]any, path string) error {
	var parsed includeDocument
	if err := remarshal(doc, &parsed); err != nil {
		return err
	}

	candidates := parsed.Plugins
	if len(candidates) == 0 {
		candidates = []string{"static"}
	}

	for _, file := range parsed.Files {
		// Relative includes resolve against the including file.
		if !filepath.IsAbs(file) {
			file = filepath.Join(filepath.Dir(path), file)
		}

		included, err := Load(file)
		if err != nil {
			log.Warnf("include %s: skipped: %v", file, err)
			continue
		}

		names := candidates
		if plugin, _ := included["plugin"].(string); plugin != "" {
			names = []string{plugin}
		}

		accepted := false
		for _, name := range names {
			handler, ok := handlers[name]
			if !ok {
				continue
			}
			if err := handler(ctx, inv, included, file); err != nil {
				log.Debugf("include %s: plugin %s rejected: %v", file, name, err)
				continue
			}
			log.Debugf("include %s: plugin %s accepted", file, name)
			accepted = true
			break
		}

		if !accepted {
			log.Warnf("include %s: no plugin accepted the file", file)
		}
	}

	return nil
}
