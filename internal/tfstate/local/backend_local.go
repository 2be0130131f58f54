// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package local

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tfe "github.com/hashicorp/go-tfe"

	"github.com/invctl/invctl/internal/log"
	"github.com/invctl/invctl/internal/svutil"
)

// BackendLocal serves state from a directory of .tfstate files. Snapshots of
// a stack are the sibling files sharing the stack filename as a prefix, so
// terraform.tfstate.backup and timestamped copies count.
type BackendLocal struct {
	Ctx  context.Context
	Name string
	Dir  string `yaml:"dir" validate:"dir"`
}

// Stacks walks Dir and returns the relative paths of every .tfstate file,
// lexical order.
func (be *BackendLocal) Stacks() ([]string, error) {
	var stacks []string

	err := filepath.WalkDir(be.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".tfstate") {
			return nil
		}
		rel, err := filepath.Rel(be.Dir, path)
		if err != nil {
			return err
		}
		stacks = append(stacks, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", be.Dir, err)
	}

	sort.Strings(stacks)
	return stacks, nil
}

// Snapshots globs the stack file and its derivatives, parses each for its
// serial, and returns minimal tfe.StateVersion descriptors with ID as
// filename, CreatedAt from the file timestamp, and Serial from the document.
// Most recent first.
func (be *BackendLocal) Snapshots(path string) ([]*tfe.StateVersion, error) {
	files, err := filepath.Glob(filepath.Join(be.Dir, path) + "*")
	if err != nil {
		return nil, err
	}

	type fileInfo struct {
		path string
		mod  int64
	}
	var infos []fileInfo
	for _, f := range files {
		stat, err := os.Stat(f)
		if err != nil || stat.IsDir() {
			continue
		}
		infos = append(infos, fileInfo{f, stat.ModTime().UnixNano()})
	}
	// Sort by mod time, descending
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].mod > infos[j].mod
	})

	var versions []*tfe.StateVersion
	for _, info := range infos {
		f, err := os.Open(info.path)
		if err != nil {
			continue
		}

		stat, err := f.Stat()
		if err != nil {
			f.Close()
			continue
		}

		// We care about just grabbing serial out of the doc.
		var doc struct {
			Serial int64 `json:"serial"`
		}
		dec := json.NewDecoder(f)
		if err := dec.Decode(&doc); err != nil {
			f.Close()
			continue
		}
		f.Close()

		versions = append(versions, &tfe.StateVersion{
			ID:        filepath.Base(info.path),
			CreatedAt: stat.ModTime(),
			Serial:    doc.Serial,
			// We're stealing this attribute and using it as the full path to state.
			JSONDownloadURL: info.path,
		})
	}

	return versions, nil
}

// State resolves the snapshot spec against the stack's snapshots and returns
// the matching document.
func (be *BackendLocal) State(path string, spec string) ([]byte, error) {
	candidates, err := be.Snapshots(path)
	if err != nil {
		return nil, err
	}

	specs := []string{}
	if spec != "" {
		specs = append(specs, spec)
	}
	versions, err := svutil.Resolve(candidates, specs...)
	if err != nil {
		return nil, err
	}
	log.Debugf("versions: %v", versions)

	body, err := os.ReadFile(versions[0].JSONDownloadURL)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	return body, nil
}

func (be *BackendLocal) String() string {
	return fmt.Sprintf("local %s (%s)", be.Name, be.Dir)
}

func (be *BackendLocal) Type() string {
	return "local"
}
