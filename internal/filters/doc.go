// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package filters provides filtering capabilities for query result rows.
//
// The package parses filter expressions to select subsets of rows based on
// attribute values. Filters are specified as key-operator-target expressions and
// can be combined using a configurable delimiter (default: comma).
//
// Operators include:
//
//   - = : exact match (supports negation with !=)
//   - ^ : prefix match (supports negation with !^)
//   - ~ : case-insensitive match (supports negation with !~)
//   - < : less than (numeric comparison)
//   - > : greater than (numeric comparison)
//   - @ : contains substring or member (supports negation with !@)
//   - / : regex match (supports negation with !/)
//
// Examples:
//
//   - "name=web-1" : matches rows where name equals "web-1"
//   - "group^db" : matches rows where group starts with "db"
//   - "port>1024" : matches rows where port is greater than 1024
//   - "name!@test" : matches rows where name does not contain "test"
//
// Filter Keys and Attributes:
//
// Filter keys are matched against the OutputKey of attributes (see attrs package).
// Keys prefixed with underscore (_) are reserved for filters applied upstream by
// the data source and are silently ignored by this package.
//
// Filter Parsing:
//
// The BuildFilters function parses a comma-delimited (or custom-delimited) filter
// specification string. Invalid specifications (unsupported operands or malformed
// expressions) are logged as warnings and skipped, allowing partial filter sets
// to be processed.
//
// Filter Application:
//
// The FilterDataset function filters a list of candidate rows, keeping only those
// that match all provided filter expressions. Attributes specified in the attrs
// parameter are used to determine which fields from the row are included
// in the filtered result.
package filters
