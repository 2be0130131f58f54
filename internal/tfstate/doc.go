// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package tfstate abstracts the stores that hold terraform state documents.
// A Backend enumerates the stacks it holds, lists the snapshots of a stack
// as StateVersion descriptors, and returns the raw state document for a
// snapshot spec. Four stores are supported: a local directory of .tfstate
// files, a Consul KV tree, an S3 bucket with object versioning, and a
// TFE/HCP server.
package tfstate
