// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package source parses inventory source files. A source file is YAML with
// a plugin key naming its handler; files without one are static host/group
// declarations. Directories are processed in lexical order, which is why
// sources that must see the full inventory (exclude, jerakia) are
// conventionally named with a zzz_ prefix.
package source
