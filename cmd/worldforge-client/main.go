// Package main implements an interactive client for the worldforge server API.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"worldforge/internal/client/commands"
	"worldforge/internal/client/display"
	"worldforge/internal/client/session"

	"github.com/chzyer/readline"
)

func main() {
	apiURL := flag.String("url", "http://localhost:8080", "Server base URL")
	history := flag.String("history", ".worldforge_history", "Readline history file")
	flag.Parse()

	s := session.New(strings.TrimRight(*apiURL, "/"))

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("worldforge"),
		HistoryFile:     *history,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("%sWorldforge Client%s\n", display.Cyan, display.Reset)
	fmt.Printf("%sAPI: %s%s\n", display.Cyan, s.APIBaseURL, display.Reset)
	fmt.Printf("Type 'help' for commands\n\n")

	registry := commands.NewRegistry(s)

	for {
		rl.SetPrompt(buildPrompt(s))

		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" || line == "x" {
			break
		}

		if strings.HasSuffix(line, " -v") {
			s.Verbose = true
			line = strings.TrimSuffix(line, " -v")
		} else {
			s.Verbose = false
		}

		registry.Execute(line)
	}
}

func buildPrompt(s *session.Session) string {
	var parts []string

	if s.Username != "" {
		parts = append(parts, display.Magenta+s.Username+display.Reset)
	}
	if w := s.CurrentWorld; w != nil {
		name := w.Name
		if len(name) > 20 {
			name = name[:20]
		}
		parts = append(parts, fmt.Sprintf("%s%s#%d%s", display.White, name, w.ID, display.Reset))
	}

	prompt := "worldforge"
	if len(parts) > 0 {
		prompt += display.Yellow + " [" + display.Reset +
			strings.Join(parts, display.Yellow+" - "+display.Reset) +
			display.Yellow + "]"
	}
	return display.Prompt(prompt)
}
