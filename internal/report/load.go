// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// listDocument is the on-disk shape of a user-supplied variable list. Names
// are grouped under their category to keep the file readable; the flattened
// List preserves document order.
type listDocument []struct {
	Category string   `yaml:"category"`
	Names    []string `yaml:"names"`
}

// ParseList parses a YAML list document and validates the result. A parse
// error or a validation failure (empty or duplicate name) is a load-time
// error.
func ParseList(data []byte) (List, error) {
	var doc listDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse variable list: %w", err)
	}

	var list List
	for _, group := range doc {
		for _, name := range group.Names {
			list = append(list, Entry{Name: name, Category: group.Category})
		}
	}

	if err := list.Validate(); err != nil {
		return nil, err
	}

	return list, nil
}

// LoadList reads and parses a variable list file.
func LoadList(path string) (List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read variable list: %w", err)
	}
	return ParseList(data)
}

// LoadContext reads a context document from a file, or from r when path is
// "-". The document is YAML or JSON; either way it must be a mapping from
// variable names to arbitrary values.
func LoadContext(path string, r io.Reader) (Context, error) {
	var data []byte
	var err error

	if path == "-" {
		data, err = io.ReadAll(r)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read context document: %w", err)
	}

	var ctx Context
	if err := yaml.Unmarshal(data, &ctx); err != nil {
		return nil, fmt.Errorf("failed to parse context document: %w", err)
	}

	if ctx == nil {
		ctx = Context{}
	}

	return ctx, nil
}
