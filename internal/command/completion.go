// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/invctl/invctl/internal/meta"
)

const bashCompletionScript = `# bash completion for invctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_invctl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "vq hq gq tq lq ci completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
  local common="--attrs -a --color -c --filter -f --output -o --sort -s --titles -t --tldr"

    # Determine if an optional InvDir (first non-flag after subcommand) has
		# already been provided
    local have_invdir=0
    local idx=2
    while [[ $idx -lt ${#COMP_WORDS[@]} ]]; do
        local w=${COMP_WORDS[$idx]}
        if [[ $w != -* ]]; then
            have_invdir=1
            break
        fi
        ((idx++))
    done

    case "$cmd" in
    vq)
      local opts="$common --schema --context -C --list -L"
            ;;
        hq)
      local opts="$common --vars"
            ;;
        gq)
      local opts="$common --empty"
            ;;
        tq)
      local opts="$common --schema --diff --diff_filter --list --stack --vars --passphrase"
            ;;
        lq)
      local opts="$common --policy --token"
            ;;
        ci)
            local opts="--context -C --host"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
        return 0
    fi

  # If current token starts with '-', or we've already consumed InvDir, offer flags
  if [[ "$cur" == -* || $have_invdir -eq 1 ]]; then
    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
  fi

  # Otherwise, we're on the (optional) InvDir positional - complete directories
  COMPREPLY=( $(compgen -o dirnames -- "$cur") )
  return 0
}

complete -F _invctl invctl
`

const zshCompletionScript = `#compdef invctl

_invctl() {
  local -a cmds
  cmds=(
    'vq:variable query'
    'hq:host query'
    'gq:group query'
    'tq:terraform query'
    'lq:lookup query'
    'ci:interactive context inspector'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--tldr[show tldr page]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'invctl commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    vq)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '(-C --context)'{-C,--context}'[context document]:file:_files' \
        '(-L --list)'{-L,--list}'[variable list file]:file:_files'
      ;;
    hq)
      _arguments -C \
        $common \
        '--vars[include resolved host variables]' \
        '::InvDir:_directories'
      ;;
    gq)
      _arguments -C \
        $common \
        '--empty[include empty groups]' \
        '::InvDir:_directories'
      ;;
    tq)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '--diff[find difference between state snapshots]' \
        '--diff_filter[filter for diff results]' \
        '--list[list state snapshots]' \
        '--stack[stack path]':stack \
        '--vars[include resolved host variables]' \
        '--passphrase[encrypted state passphrase]' \
        '::InvDir:_directories'
      ;;
    lq)
      _arguments -C \
        $common \
        '--policy[lookup policy]':policy \
        '--token[authentication token]':token \
        '*:term:'
      ;;
    ci)
      _arguments -C \
        '(-C --context)'{-C,--context}'[context document]:file:_files' \
        '--host[host to inspect]':host \
        '::InvDir:_directories'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common '*:directory:_directories'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys
# is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _invctl invctl invctl
`

func completionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(os.Stdout, bashCompletionScript)
	case "zsh":
		fmt.Fprint(os.Stdout, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			fmt.Fprint(os.Stdout, zshCompletionScript)
		case strings.HasSuffix(sh, "bash"):
			fmt.Fprint(os.Stdout, bashCompletionScript)
		default:
			fmt.Fprintln(os.Stderr, "usage: invctl completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func completionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "invctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: completionCommandAction,
	}
}
