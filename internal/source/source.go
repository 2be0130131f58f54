// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/invctl/invctl/internal/inventory"
	"github.com/invctl/invctl/internal/log"
)

// Handler applies one parsed source document to the inventory.
type Handler func(ctx context.Context, inv *inventory.Inventory, doc map[string]any, path string) error

// handlers maps plugin names to their implementations. Registration
// happens in init because the include handler dispatches back through
// this map.
var handlers = map[string]Handler{}

func init() {
	handlers["static"] = parseStatic
	handlers["exclude"] = parseExclude
	handlers["include"] = parseInclude
	handlers["terraform"] = parseTerraform
	handlers["jerakia"] = parseJerakia
}

// Parse reads one source file and dispatches it on its plugin key.
func Parse(ctx context.Context, inv *inventory.Inventory, path string) error {
	doc, err := Load(path)
	if err != nil {
		return err
	}

	plugin := PluginOf(doc)
	handler, ok := handlers[plugin]
	if !ok {
		return fmt.Errorf("%s: unsupported plugin: %s", path, plugin)
	}

	log.Debugf("source %s: plugin=%s", path, plugin)

	return handler(ctx, inv, doc, path)
}

// ParseDir processes every .yml/.yaml file in a directory in lexical
// order. zzz_-prefixed sources therefore run last, after every host has
// been declared.
func ParseDir(ctx context.Context, inv *inventory.Inventory, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read inventory dir %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yml" && ext != ".yaml" {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, name := range files {
		if err := Parse(ctx, inv, filepath.Join(dir, name)); err != nil {
			return err
		}
	}

	return nil
}

// Load reads one source file into its raw document form.
func Load(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file %s: %w", path, err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse source file %s: %w", path, err)
	}

	return doc, nil
}

// PluginOf names the handler a document is dispatched to.
func PluginOf(doc map[string]any) string {
	plugin, _ := doc["plugin"].(string)
	if plugin == "" {
		return "static"
	}
	return plugin
}

// remarshal converts a raw document into a typed one via a YAML round
// trip, so every handler declares its options as a plain tagged struct.
func remarshal(doc map[string]any, target any) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal source document: %w", err)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to unmarshal source document: %w", err)
	}
	return nil
}

// sortedKeys returns map keys in lexical order so host and group
// declarations from mappings land in the inventory deterministically.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// normalizeHostname applies strict hostname normalization.
func normalizeHostname(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}
