// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package svutil offers state version discovery and reading helpers. Given a
// list of state versions, it can find specific versions based on user criteria.
// It can also read state versions from various sources - local file, URL, or
// backend API.
package svutil
