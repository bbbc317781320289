package commands

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"worldforge/internal/client/api"
	"worldforge/internal/client/display"
)

func (r *Registry) registerDebugCommands() {
	r.Register(&Command{
		Name:        "health",
		ShortName:   ".",
		Description: "Check server health",
		Usage:       "health",
		Handler:     healthHandler,
	})

	r.Register(&Command{
		Name:        "url",
		ShortName:   "/",
		Description: "Show or switch the server; a switch is kept only if the server answers",
		Usage:       "url [host:port | http(s)://host:port]",
		Handler:     urlHandler,
	})

	r.Register(&Command{
		Name:        "raw",
		ShortName:   ":",
		Description: "Send a request and print its payload; world payloads become the open world",
		Usage:       "raw <method> <path> [json-body]",
		Handler:     rawRequestHandler,
	})

	r.Register(&Command{
		Name:        "clear",
		ShortName:   "-",
		Description: "Clear screen",
		Usage:       "clear",
		Handler:     clearHandler,
	})
}

func healthHandler(s Session, args []string) error {
	resp, err := s.GetClient().Health()
	if err != nil {
		return err
	}

	color := display.Green
	if resp.Storage != "ok" {
		color = display.Yellow
	}
	fmt.Printf("%s %s  storage=%s  server time %s\n",
		display.Paint(color, resp.Status), s.GetAPIBaseURL(), resp.Storage,
		time.Unix(resp.Time, 0).Format(time.RFC3339))
	return nil
}

// normalizeURL accepts a bare host:port and drops any trailing slash
func normalizeURL(raw string) (string, error) {
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("invalid server url: %s", raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

func urlHandler(s Session, args []string) error {
	if len(args) == 0 {
		fmt.Printf("Server: %s\n", s.GetAPIBaseURL())
		return nil
	}

	next, err := normalizeURL(args[0])
	if err != nil {
		return err
	}

	prev := s.GetAPIBaseURL()
	s.SetAPIBaseURL(next)
	if _, err := s.GetClient().Health(); err != nil {
		s.SetAPIBaseURL(prev)
		return fmt.Errorf("%s did not answer, staying on %s: %w", next, prev, err)
	}

	// Worlds and sessions belong to the old server
	s.SetCurrentWorld(nil)
	s.SetAuth("", "", "")
	fmt.Printf("%s\n", display.Paint(display.Cyan, "Server set to "+next))
	return nil
}

func rawRequestHandler(s Session, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: raw <method> <path> [json-body]")
	}

	method := strings.ToUpper(args[0])
	var body any
	if len(args) > 2 {
		if err := json.Unmarshal([]byte(strings.Join(args[2:], " ")), &body); err != nil {
			return fmt.Errorf("body must be JSON: %w", err)
		}
	}

	payload, err := s.GetClient().Payload(method, args[1], body)
	if err != nil {
		return err
	}

	if world, ok := asWorld(args[1], payload); ok {
		s.SetCurrentWorld(world)
		printWorld(world)
		return nil
	}
	if len(payload) > 0 {
		fmt.Println(display.Indent(payload))
	}
	return nil
}

// asWorld decodes a single world returned by a /world route
func asWorld(path string, payload json.RawMessage) (*api.World, bool) {
	if !strings.HasPrefix(strings.TrimPrefix(path, "/"), "world") {
		return nil, false
	}
	var w api.World
	if err := json.Unmarshal(payload, &w); err != nil || w.ID == 0 || w.Eras == nil {
		return nil, false
	}
	return &w, true
}

func clearHandler(s Session, args []string) error {
	fmt.Print("\033[H\033[2J")
	return nil
}
