package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"worldforge/internal/client/api"
	"worldforge/internal/client/display"
)

var errNoWorld = errors.New("no world open (use 'open <id>' or 'new <name>')")

func (r *Registry) registerWorldCommands() {
	r.Register(&Command{
		Name:        "worlds",
		ShortName:   "w",
		Description: "List worlds",
		Usage:       "worlds",
		Handler:     worldsHandler,
	})

	r.Register(&Command{
		Name:        "new",
		ShortName:   "n",
		Description: "Create a world and open it",
		Usage:       "new <name>",
		Handler:     newWorldHandler,
	})

	r.Register(&Command{
		Name:        "open",
		ShortName:   "o",
		Description: "Open a world",
		Usage:       "open <worldId>",
		Handler:     openWorldHandler,
	})

	r.Register(&Command{
		Name:        "show",
		ShortName:   "s",
		Description: "Reload and display the open world",
		Usage:       "show",
		Handler:     showWorldHandler,
	})

	r.Register(&Command{
		Name:        "rename",
		Description: "Rename the open world",
		Usage:       "rename <name>",
		Handler:     renameWorldHandler,
	})

	r.Register(&Command{
		Name:        "era",
		ShortName:   "e",
		Description: "Edit the timeline of the open world",
		Usage:       "era add <start|-> <end|-> <name> | era move <eraId> up|down | era rename <eraId> <name> | era rm <eraId>",
		Handler:     eraHandler,
	})

	r.Register(&Command{
		Name:        "setting",
		ShortName:   "t",
		Description: "Add or remove settings",
		Usage:       "setting add <eraId|-> <name> | setting rm <settingId>",
		Handler:     settingHandler,
	})

	r.Register(&Command{
		Name:        "marker",
		ShortName:   "k",
		Description: "Add or remove timeline markers",
		Usage:       "marker add <year|-> <name> | marker rm <markerId>",
		Handler:     markerHandler,
	})

	r.Register(&Command{
		Name:        "drop",
		ShortName:   "d",
		Description: "Delete the open world",
		Usage:       "drop <worldId>",
		Handler:     dropWorldHandler,
	})

	r.Register(&Command{
		Name:        "op",
		ShortName:   "p",
		Description: "Send any world operation",
		Usage:       "op <operation> [json-fields]",
		Handler:     opHandler,
	})
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id: %s", s)
	}
	return id, nil
}

// optionalInt reads "-" as null
func optionalInt(s string) (any, error) {
	if s == "-" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number: %s", s)
	}
	return n, nil
}

func currentWorld(s Session) (*api.World, error) {
	w := s.GetCurrentWorld()
	if w == nil {
		return nil, errNoWorld
	}
	return w, nil
}

// applyOp runs a world operation and shows the returned world
func applyOp(s Session, op string, fields map[string]any) error {
	world, err := s.GetClient().WorldOp(op, fields)
	if err != nil {
		return err
	}
	s.SetCurrentWorld(world)
	printWorld(world)
	return nil
}

func worldsHandler(s Session, args []string) error {
	worlds, err := s.GetClient().ListWorlds()
	if err != nil {
		return err
	}
	if len(worlds) == 0 {
		fmt.Printf("%sNo worlds yet%s\n", display.Yellow, display.Reset)
		return nil
	}

	fmt.Printf("%sWorlds:%s\n", display.Cyan, display.Reset)
	for _, w := range worlds {
		fmt.Printf("  [#%d] %-30s eras:%d settings:%d markers:%d\n",
			w.ID, w.Name, len(w.Eras), len(w.Settings), len(w.Markers))
	}
	return nil
}

func newWorldHandler(s Session, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: new <name>")
	}
	return applyOp(s, "createWorld", map[string]any{"name": strings.Join(args, " ")})
}

func openWorldHandler(s Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: open <worldId>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	world, err := s.GetClient().GetWorld(id)
	if err != nil {
		return err
	}
	s.SetCurrentWorld(world)
	printWorld(world)
	return nil
}

func showWorldHandler(s Session, args []string) error {
	w, err := currentWorld(s)
	if err != nil {
		return err
	}
	return openWorldHandler(s, []string{strconv.FormatInt(w.ID, 10)})
}

func renameWorldHandler(s Session, args []string) error {
	w, err := currentWorld(s)
	if err != nil {
		return err
	}
	if len(args) < 1 {
		return fmt.Errorf("usage: rename <name>")
	}
	return applyOp(s, "updateWorld", map[string]any{"id": w.ID, "name": strings.Join(args, " ")})
}

func eraHandler(s Session, args []string) error {
	w, err := currentWorld(s)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("usage: era add|move|rename|rm ...")
	}

	switch args[0] {
	case "add":
		if len(args) < 4 {
			return fmt.Errorf("usage: era add <start|-> <end|-> <name>")
		}
		start, err := optionalInt(args[1])
		if err != nil {
			return err
		}
		end, err := optionalInt(args[2])
		if err != nil {
			return err
		}
		return applyOp(s, "createEra", map[string]any{
			"worldId":   w.ID,
			"name":      strings.Join(args[3:], " "),
			"startYear": start,
			"endYear":   end,
		})

	case "move":
		if len(args) != 3 {
			return fmt.Errorf("usage: era move <eraId> up|down")
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		var dir int
		switch args[2] {
		case "up":
			dir = -1
		case "down":
			dir = 1
		default:
			return fmt.Errorf("direction must be up or down")
		}
		return applyOp(s, "moveEra", map[string]any{"id": id, "dir": dir})

	case "rename":
		if len(args) < 3 {
			return fmt.Errorf("usage: era rename <eraId> <name>")
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		return applyOp(s, "updateEra", map[string]any{"id": id, "name": strings.Join(args[2:], " ")})

	case "rm":
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		return applyOp(s, "deleteEra", map[string]any{"id": id})
	}

	return fmt.Errorf("unknown era action: %s", args[0])
}

func settingHandler(s Session, args []string) error {
	w, err := currentWorld(s)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("usage: setting add|rm ...")
	}

	switch args[0] {
	case "add":
		if len(args) < 3 {
			return fmt.Errorf("usage: setting add <eraId|-> <name>")
		}
		eraID, err := optionalInt(args[1])
		if err != nil {
			return err
		}
		return applyOp(s, "createSetting", map[string]any{
			"worldId": w.ID,
			"eraId":   eraID,
			"name":    strings.Join(args[2:], " "),
		})
	case "rm":
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		return applyOp(s, "deleteSetting", map[string]any{"id": id})
	}

	return fmt.Errorf("unknown setting action: %s", args[0])
}

func markerHandler(s Session, args []string) error {
	w, err := currentWorld(s)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("usage: marker add|rm ...")
	}

	switch args[0] {
	case "add":
		if len(args) < 3 {
			return fmt.Errorf("usage: marker add <year|-> <name>")
		}
		year, err := optionalInt(args[1])
		if err != nil {
			return err
		}
		return applyOp(s, "createMarker", map[string]any{
			"worldId": w.ID,
			"year":    year,
			"name":    strings.Join(args[2:], " "),
		})
	case "rm":
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		return applyOp(s, "deleteMarker", map[string]any{"id": id})
	}

	return fmt.Errorf("unknown marker action: %s", args[0])
}

// dropWorldHandler needs the open world's id repeated as confirmation
func dropWorldHandler(s Session, args []string) error {
	w, err := currentWorld(s)
	if err != nil {
		return err
	}
	if len(args) != 1 || args[0] != strconv.FormatInt(w.ID, 10) {
		return fmt.Errorf("confirm with: drop %d", w.ID)
	}

	if err := s.GetClient().DeleteWorld(w.ID); err != nil {
		return err
	}
	s.SetCurrentWorld(nil)
	fmt.Printf("%sWorld #%d deleted%s\n", display.Green, w.ID, display.Reset)
	return nil
}

func opHandler(s Session, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: op <operation> [json-fields]")
	}

	fields := map[string]any{}
	if len(args) > 1 {
		if err := json.Unmarshal([]byte(strings.Join(args[1:], " ")), &fields); err != nil {
			return fmt.Errorf("fields must be a JSON object: %w", err)
		}
	}

	if args[0] == "deleteWorld" {
		id, ok := fields["id"].(float64)
		if !ok {
			return fmt.Errorf("deleteWorld needs an id")
		}
		if err := s.GetClient().DeleteWorld(int64(id)); err != nil {
			return err
		}
		if w := s.GetCurrentWorld(); w != nil && w.ID == int64(id) {
			s.SetCurrentWorld(nil)
		}
		fmt.Printf("%sWorld #%d deleted%s\n", display.Green, int64(id), display.Reset)
		return nil
	}

	return applyOp(s, args[0], fields)
}
