// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/invctl/invctl/internal/compose"
	"github.com/invctl/invctl/internal/config"
	"github.com/invctl/invctl/internal/driller"
	"github.com/invctl/invctl/internal/meta"
	"github.com/invctl/invctl/internal/report"
)

// ciCommandAction loads an execution context (a document or a host's
// resolved vars) and launches an interactive console to explore it.
func ciCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	config.Config.Namespace = "ci"

	var vars map[string]any

	if host := cmd.String("host"); host != "" {
		inv, err := BuildInventory(ctx, cmd)
		if err != nil {
			return err
		}
		if vars, err = inv.Context(host); err != nil {
			return err
		}
	} else {
		path := cmd.String("context")
		if path == "" || path == "-" {
			return fmt.Errorf("ci needs --context FILE or --host HOST")
		}
		execCtx, err := report.LoadContext(path, nil)
		if err != nil {
			return err
		}
		vars = execCtx
	}

	return runCiConsole(vars)
}

// ciModel is the Bubble Tea model for the ci console.
type ciModel struct {
	input          textinput.Model
	history        []string // Full history for navigation (includes file history)
	sessionHistory []string // Only commands from this session (matches with outputs)
	histIndex      int
	output         []string
	vars           map[string]any
}

func initialCiModel(vars map[string]any) ciModel {
	ti := textinput.New()
	ti.Placeholder = ""
	ti.Focus()
	ti.CharLimit = 2048
	ti.Width = 999
	ti.Prompt = ""
	ti.Cursor.SetMode(cursor.CursorBlink)

	history := loadCiHistory(getCiHistoryFile())

	var output []string
	output = append(output, fmt.Sprintf("Interactive context console loaded. %d variables found.", len(vars)))
	output = append(output, "Type 'help' for syntax, 'exit' or Ctrl+C to quit.")

	return ciModel{
		input:          ti,
		history:        history,
		sessionHistory: []string{},
		histIndex:      -1,
		output:         output,
		vars:           vars,
	}
}

func (m ciModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m ciModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			entry := m.input.Value()
			if strings.TrimSpace(entry) != "" {
				if entry == "exit" || entry == "quit" {
					return m, tea.Quit
				}

				result := evalCiQuery(m.vars, entry)

				m.history = append(m.history, entry)
				m.sessionHistory = append(m.sessionHistory, entry)
				m.histIndex = -1
				m.output = append(m.output, result)
				saveCiHistory(getCiHistoryFile(), m.history)
			}
			m.input.SetValue("")
			return m, nil

		case "up":
			if len(m.history) == 0 {
				return m, nil
			}
			if m.histIndex == -1 {
				m.histIndex = len(m.history) - 1
			} else if m.histIndex > 0 {
				m.histIndex--
			}
			m.input.SetValue(m.history[m.histIndex])
			m.input.CursorEnd()
			return m, nil

		case "down":
			if len(m.history) == 0 {
				return m, nil
			}
			if m.histIndex >= 0 && m.histIndex < len(m.history)-1 {
				m.histIndex++
				m.input.SetValue(m.history[m.histIndex])
				m.input.CursorEnd()
			} else {
				m.histIndex = -1
				m.input.SetValue("")
			}
			return m, nil

		case "ctrl+c", "esc":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ciModel) View() string {
	promptStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00A86B"))

	var lines []string

	// Add the initial welcome messages first
	if len(m.output) >= 2 {
		lines = append(lines, m.output[0])
		lines = append(lines, m.output[1])
	}

	// Add each command from THIS SESSION with its corresponding output
	for i := 0; i < len(m.sessionHistory); i++ {
		lines = append(lines, promptStyle.Render("> ")+m.sessionHistory[i])

		if (i + 2) < len(m.output) {
			lines = append(lines, m.output[i+2])
		}
	}

	// Add current prompt and input
	lines = append(lines, promptStyle.Render("> ")+m.input.View())

	return strings.Join(lines, "\n")
}

// evalCiQuery routes a console entry to the right evaluator and returns the
// rendered result.
func evalCiQuery(vars map[string]any, query string) string {
	if query == "help" {
		return getCiHelp()
	}

	if query == "keys" {
		keys := make([]string, 0, len(vars))
		for k := range vars {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return strings.Join(keys, "\n")
	}

	// Function evaluation mode, forced with a leading / or assumed when the
	// entry carries balanced parentheses.
	if strings.HasPrefix(query, "/") || hasBalancedParens(query) {
		expression := strings.TrimPrefix(query, "/")
		result, err := compose.Eval(expression, vars)
		if err != nil {
			return fmt.Sprintf("Error: %s", err)
		}
		return renderCiValue(result, false)
	}

	// Dot-path queries. A leading . asks for JSON output.
	jsonMode := strings.HasPrefix(query, ".")
	path := strings.TrimPrefix(query, ".")

	doc, err := json.Marshal(vars)
	if err != nil {
		return fmt.Sprintf("Error: %s", err)
	}

	value := driller.Driller(string(doc), path)
	if !value.Exists() {
		return "No results found."
	}

	var decoded any
	if err := json.Unmarshal([]byte(value.Raw), &decoded); err != nil {
		return value.String()
	}
	return renderCiValue(decoded, jsonMode)
}

func renderCiValue(value any, jsonMode bool) string {
	switch value.(type) {
	case nil:
		return "null"
	case map[string]any, []any:
		pretty, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(pretty)
	default:
		if jsonMode {
			encoded, _ := json.Marshal(value)
			return string(encoded)
		}
		return fmt.Sprintf("%v", value)
	}
}

// hasBalancedParens checks if a string has balanced parentheses.
func hasBalancedParens(s string) bool {
	openCount := 0
	closeCount := 0

	for _, char := range s {
		switch char {
		case '(':
			openCount++
		case ')':
			closeCount++
		}
	}

	// Must have at least one pair of parens and they must be balanced
	return openCount > 0 && openCount == closeCount
}

// getCiHelp returns the help text as a string
func getCiHelp() string {
	return `Query syntax:
  Three query modes supported:

  1. Plain output (dot paths)
     ansible_user                     - Value of a variable
     packages.base                    - Nested mapping value
     groups.webservers                - Group member list

  2. JSON output (queries starting with '.')
     .packages                        - Pretty JSON for a mapping
     .groups.webservers               - JSON for a list

  3. Function evaluation (queries starting with '/')
     /coalesce(null, "default")       - Evaluate coalesce function
     /length(groups.webservers)       - List length
     /upper(ansible_user)             - Convert to uppercase
     /keys(vars)                      - All variable names

  Special queries:
     keys                             - List top-level variable names

  Navigation:
     arrows                           - Navigate command history
     Ctrl+C                           - Exit`
}

// getCiHistoryFile returns the path to the ci history file
func getCiHistoryFile() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".invctl_ci_history"
	}
	return filepath.Join(homeDir, ".invctl_ci_history")
}

func loadCiHistory(filename string) []string {
	var history []string

	file, err := os.Open(filename)
	if err != nil {
		return history // Return empty history if file doesn't exist
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			history = append(history, line)
		}
	}

	return history
}

func saveCiHistory(filename string, history []string) {
	// Keep only the last 1000 commands
	maxHistory := 1000
	start := 0
	if len(history) > maxHistory {
		start = len(history) - maxHistory
	}

	file, err := os.Create(filename)
	if err != nil {
		return // Silently fail if we can't save history
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for i := start; i < len(history); i++ {
		fmt.Fprintln(writer, history[i])
	}
	writer.Flush()
}

func runCiConsole(vars map[string]any) error {
	p := tea.NewProgram(initialCiModel(vars))
	_, err := p.Run()
	return err
}

// ciCommandBuilder constructs the cli.Command for "ci" and wires up metadata,
// flags, and the action handler.
func ciCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "ci",
		Hidden:    true,
		Usage:     "context inspector",
		UsageText: "invctl ci [InvDir[::group]] [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "context",
				Aliases: []string{"C"},
				Usage:   "execution context document (YAML or JSON)",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "inspect a host's resolved variables instead of a document",
			},
		}, NewGlobalFlags("ci")...),
		Action: ciCommandAction,
	}
}
