// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"context"

	"github.com/invctl/invctl/internal/config"
)

// InvDirSpec holds the resolved inventory directory and optional group
// scope used when parsing sources.
type InvDirSpec struct {
	InvDir string
	Group  string
}

// Meta contains runtime metadata shared by commands. It carries CLI arguments,
// loaded configuration, context, the resolved inventory directory specification,
// and the starting working directory.
type Meta struct {
	Args    []string
	Config  config.Type
	Context context.Context
	InvDirSpec
	StartingDir string
}
