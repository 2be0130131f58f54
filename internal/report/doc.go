// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package report resolves an ordered, category-grouped list of variable
// names against a read-only execution context, producing exactly one record
// per name. Missing names are marked undefined rather than failing the pass;
// duplicate names in a list are a load-time configuration error.
package report
