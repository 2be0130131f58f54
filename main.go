// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/invctl/invctl/internal/cacheutil"
	"github.com/invctl/invctl/internal/command"
	"github.com/invctl/invctl/internal/config"
	"github.com/invctl/invctl/internal/log"
	"github.com/invctl/invctl/internal/util"
	"github.com/invctl/invctl/internal/version"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain())
}

// invDirCommands are the subcommands whose first positional argument is an
// inventory directory spec.
var invDirCommands = map[string]bool{
	"hq": true,
	"gq": true,
	"tq": true,
	"ci": true,
}

// handleVersion checks for --version/-v and returns whether it was handled.
func handleVersion(args []string) bool {
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return true
		}
	}
	return false
}

// handleNakedCommand appends --help if no command is provided.
func handleNakedCommand(args []string) []string {
	if len(args) <= 1 {
		return append(args, "--help")
	}
	return args
}

// processCommandArgs handles command-specific argument processing.
func processCommandArgs(args []string) []string {
	switch {
	case len(args) > 1 && args[1] == "completion":
		// Short-circuit completion: pass args directly.
		return args
	default:
		args = processSetOnly(args)
		log.Debugf("args after set processing: args=%v", args)

		if len(args) > 1 && invDirCommands[args[1]] {
			args = processInvDirArgs(args)
		}

		return deduplicateFlags(args)
	}
}

// processInvDirArgs makes sure the inventory-walking commands carry an
// explicit inventory directory positional, defaulting to the CWD.
func processInvDirArgs(args []string) []string {
	invDir, _ := os.Getwd()
	if len(args) > 2 {
		if _, _, err := util.ParseInvDir(args[2]); err == nil {
			invDir = args[2]
		}
	}
	if len(args) == 2 {
		args = append(args, invDir)
	} else if args[2] != invDir {
		args = append(args[:2], append([]string{invDir}, args[2:]...)...)
	}
	return args
}

// initAndRunApp initializes the app and runs it, returning the exit code.
func initAndRunApp(args []string) int {
	// Pre-create cache directory when caching is enabled.
	if _, ok, err := cacheutil.EnsureBaseDir(); err != nil && ok {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("cache ensure err: err=%v", err)
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("app init err: err=%v", err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("app run err: err=%v", err)
		return 2
	}

	return 0
}

func realMain() int {
	log.InitLogger()

	args := os.Args
	log.Debugf("args captured: args=%v", args)

	if handleVersion(args) {
		return 0
	}

	args = handleNakedCommand(args)

	// If --help appears anywhere, skip command processing and let the CLI handle it.
	helpFound := false
	for _, a := range args {
		if a == "--help" || a == "-h" {
			helpFound = true
			break
		}
	}

	if !helpFound {
		args = processCommandArgs(args)
	}

	return initAndRunApp(args)
}

// processSetOnly handles the @set logic for all commands, expanding set
// arguments at the @set position.
func processSetOnly(args []string) []string {
	// Look for an explicit @set argument starting from index 2.
	idx := 2
	removeIdx := -1
	set := "defaults"
	for i, a := range args[idx:] {
		if strings.HasPrefix(a, "@") {
			set = a[1:]
			removeIdx = idx + i
			break
		}
	}
	if removeIdx != -1 {
		// Remove the @set argument, then expand the set at its position.
		args = append(args[:removeIdx], args[removeIdx+1:]...)
		args = injectConfigSet(args, args[1]+"."+set, removeIdx)
	}
	return args
}

// injectConfigSet expands a config-defined argument set at insertIdx. Each
// entry may hold several whitespace-separated tokens.
func injectConfigSet(args []string, key string, insertIdx int) []string {
	entries, _ := config.GetStringSlice(key)
	if len(entries) == 0 {
		return args
	}

	var expanded []string
	for _, entry := range entries {
		expanded = append(expanded, strings.Fields(entry)...)
	}

	return append(args[:insertIdx], append(expanded, args[insertIdx:]...)...)
}

// deduplicateFlags keeps only the last occurrence of each repeated flag so
// config-injected defaults can be overridden on the command line. Positional
// arguments are preserved in place.
func deduplicateFlags(args []string) []string {
	if len(args) <= 2 {
		return args
	}

	type token struct {
		key  string // flag name before any =, empty for positionals
		args []string
	}

	var tokens []token
	i := 2
	for i < len(args) {
		a := args[i]
		if !strings.HasPrefix(a, "-") {
			tokens = append(tokens, token{args: []string{a}})
			i++
			continue
		}

		key := a
		if eq := strings.Index(a, "="); eq != -1 {
			key = a[:eq]
			tokens = append(tokens, token{key: key, args: []string{a}})
			i++
			continue
		}

		// A following non-flag argument is this flag's value.
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			tokens = append(tokens, token{key: key, args: []string{a, args[i+1]}})
			i += 2
		} else {
			tokens = append(tokens, token{key: key, args: []string{a}})
			i++
		}
	}

	last := make(map[string]int, len(tokens))
	for idx, t := range tokens {
		if t.key != "" {
			last[t.key] = idx
		}
	}

	result := args[:2:2]
	for idx, t := range tokens {
		if t.key != "" && last[t.key] != idx {
			continue
		}
		result = append(result, t.args...)
	}

	return result
}
