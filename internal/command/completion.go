// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/meta"
)

const bashCompletionScript = `# bash completion for crmcache
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_crmcache()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "login logout modules access translate fields date settings cache completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--color -c --filter -F --output -o --titles -t --url -u --storage --deny-on-role-failure --tldr"

    case "$cmd" in
        login)
            local opts="$common --token"
            ;;
        modules)
            local opts="$common --all -A"
            ;;
        translate)
            local opts="$common --module -m --default -d --language -l"
            ;;
        fields)
            local opts="$common --kind -k --language -l --refresh -r"
            ;;
        date)
            local opts="$common --time"
            ;;
        settings)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                COMPREPLY=( $(compgen -W "show set zones" -- "$cur") )
                return 0
            fi
            local opts="$common --format -f --language -l --timezone --currency --username --country"
            ;;
        cache)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                COMPREPLY=( $(compgen -W "ls clear purge" -- "$cur") )
                return 0
            fi
            local opts="$common --hours"
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json yaml" -- "$cur") )
            return 0
            ;;
        --kind|-k)
            COMPREPLY=( $(compgen -W "required list edit" -- "$cur") )
            return 0
            ;;
    esac

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _crmcache crmcache
`

const zshCompletionScript = `#compdef crmcache

_crmcache() {
  local -a cmds
  cmds=(
    'login:store a token and load modules and roles'
    'logout:clear the token, registries and cache'
    'modules:list modules and their screens'
    'access:check a module permission'
    'translate:translate label keys'
    'fields:show cached field metadata'
    'date:format timestamps'
    'settings:show or change device preferences'
    'cache:inspect or prune the cache'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-F --filter)'{-F,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json yaml)'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '(-u --url)'{-u,--url}'[SuiteCRM base URL]:url'
  '--storage[app storage root]:dir:_directories'
  '--deny-on-role-failure[deny access when roles cannot be loaded]'
  '--tldr[show tldr page]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'crmcache commands' cmds
    return
  fi

  case $words[2] in
    login)
      _arguments $common '--token[bearer token]:token'
      ;;
    modules)
      _arguments $common '(-A --all)'{-A,--all}'[include inaccessible modules]'
      ;;
    access)
      _arguments $common '1:module' '2::permission'
      ;;
    translate)
      _arguments $common \
        '(-m --module)'{-m,--module}'[module scope]:module' \
        '(-d --default)'{-d,--default}'[default text]:text' \
        '(-l --language)'{-l,--language}'[language]:language' \
        '*:key'
      ;;
    fields)
      _arguments $common \
        '(-k --kind)'{-k,--kind}'[metadata kind]:kind:(required list edit)' \
        '(-l --language)'{-l,--language}'[language]:language' \
        '(-r --refresh)'{-r,--refresh}'[refetch and diff]' \
        '1:module'
      ;;
    date)
      _arguments $common '--time[include time of day]' '*:timestamp'
      ;;
    settings)
      _arguments '1: :((show set zones))' '*::options:->opts'
      ;;
    cache)
      _arguments '1: :((ls clear purge))' '*::options:->opts'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _crmcache crmcache
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(stdout, bashCompletionScript)
	case "zsh":
		fmt.Fprint(stdout, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			fmt.Fprint(stdout, zshCompletionScript)
		} else if strings.HasSuffix(sh, "bash") {
			fmt.Fprint(stdout, bashCompletionScript)
		} else {
			fmt.Fprintln(os.Stderr, "usage: crmcache completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func CompletionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "crmcache completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
