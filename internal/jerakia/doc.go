// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package jerakia is a client for the Jerakia lookup server API
// (http://jerakia.io/). Lookup terms are namespace/key paths; the request
// scope is built from host variables through configured dot paths and rides
// along as metadata_* query params.
package jerakia
