// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"

	"github.com/invctl/invctl/internal/log"
)

// Entry pairs a variable name with the category it is grouped under. The
// category is a documentation label only and carries no runtime behavior.
type Entry struct {
	Name     string `yaml:"name" json:"name"`
	Category string `yaml:"category" json:"category"`
}

// List is an ordered sequence of entries. Order is significant because
// readers rely on category grouping, so a List is never reordered.
type List []Entry

// Context is the read-only key-value mapping a List is resolved against.
// It is supplied per invocation and never mutated by this package.
type Context map[string]any

// Record is the result of resolving one entry against a Context. A Record
// with Defined=false marks a name that had no entry in the context.
type Record struct {
	Name     string `yaml:"name" json:"name"`
	Category string `yaml:"category" json:"category"`
	Value    any    `yaml:"value" json:"value"`
	Defined  bool   `yaml:"defined" json:"defined"`
}

// Validate rejects empty names and duplicate names. Duplicates are a
// configuration authoring error and are surfaced at load time, never at
// reporting time.
func (l List) Validate() error {
	seen := make(map[string]struct{}, len(l))
	for i, entry := range l {
		if entry.Name == "" {
			return fmt.Errorf("empty variable name at index %d", i)
		}
		if _, dup := seen[entry.Name]; dup {
			return fmt.Errorf("duplicate variable name: %s", entry.Name)
		}
		seen[entry.Name] = struct{}{}
	}
	return nil
}

// Names returns the variable names in list order.
func (l List) Names() []string {
	names := make([]string, 0, len(l))
	for _, entry := range l {
		names = append(names, entry.Name)
	}
	return names
}

// Report resolves each entry of the list against the context and returns
// exactly one Record per entry, in list order. Values are carried in their
// native shape with no coercion. A missing name yields an undefined Record
// and never aborts the pass.
func Report(list List, ctx Context) []Record {
	records := make([]Record, 0, len(list))

	for _, entry := range list {
		value, defined := ctx[entry.Name]
		if !defined {
			log.Tracef("undefined variable: name=%s", entry.Name)
		}
		records = append(records, Record{
			Name:     entry.Name,
			Category: entry.Category,
			Value:    value,
			Defined:  defined,
		})
	}

	return records
}
