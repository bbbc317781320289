package commands

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"worldforge/internal/client/display"
)

// catalogResources are the collection routes the server mounts
var catalogResources = []string{"races", "creatures", "items", "skills", "armors", "magic-builds", "special-abilities"}

func (r *Registry) registerCatalogCommands() {
	r.Register(&Command{
		Name:        "catalog",
		ShortName:   "c",
		Description: "Browse and edit races and catalog entries",
		Usage: "catalog <resource> [list [query] | get <id> | add <json> | set <id> <json> | rm <id>]\n" +
			"  resources: " + strings.Join(catalogResources, ", "),
		Handler: catalogHandler,
	})
}

func knownResource(name string) bool {
	for _, r := range catalogResources {
		if r == name {
			return true
		}
	}
	return false
}

func parseFields(parts []string) (map[string]any, error) {
	fields := map[string]any{}
	if err := json.Unmarshal([]byte(strings.Join(parts, " ")), &fields); err != nil {
		return nil, fmt.Errorf("fields must be a JSON object: %w", err)
	}
	return fields, nil
}

func catalogHandler(s Session, args []string) error {
	if len(args) < 1 || !knownResource(args[0]) {
		return fmt.Errorf("usage: catalog <resource> ...; resources: %s", strings.Join(catalogResources, ", "))
	}
	resource := args[0]
	action := "list"
	if len(args) > 1 {
		action = args[1]
	}
	c := s.GetClient()

	switch action {
	case "list":
		rows, err := c.ListCatalog(resource, strings.Join(args[min(len(args), 2):], " "))
		if err != nil {
			return err
		}
		printRows(resource, rows)
		return nil

	case "get":
		if len(args) != 3 {
			return fmt.Errorf("usage: catalog %s get <id>", resource)
		}
		id, err := parseID(args[2])
		if err != nil {
			return err
		}
		item, err := c.GetCatalogItem(resource, id)
		if err != nil {
			return err
		}
		display.PrettyPrintJSON(item)
		return nil

	case "add":
		if len(args) < 3 {
			return fmt.Errorf("usage: catalog %s add <json>", resource)
		}
		fields, err := parseFields(args[2:])
		if err != nil {
			return err
		}
		item, err := c.CreateCatalogItem(resource, fields)
		if err != nil {
			return err
		}
		display.PrettyPrintJSON(item)
		return nil

	case "set":
		if len(args) < 4 {
			return fmt.Errorf("usage: catalog %s set <id> <json>", resource)
		}
		id, err := parseID(args[2])
		if err != nil {
			return err
		}
		fields, err := parseFields(args[3:])
		if err != nil {
			return err
		}
		item, err := c.UpdateCatalogItem(resource, id, fields)
		if err != nil {
			return err
		}
		display.PrettyPrintJSON(item)
		return nil

	case "rm":
		if len(args) != 3 {
			return fmt.Errorf("usage: catalog %s rm <id>", resource)
		}
		id, err := parseID(args[2])
		if err != nil {
			return err
		}
		if err := c.DeleteCatalogItem(resource, id); err != nil {
			return err
		}
		fmt.Printf("%sDeleted %s #%d%s\n", display.Green, resource, id, display.Reset)
		return nil
	}

	return fmt.Errorf("unknown catalog action: %s", action)
}

func printRows(resource string, rows []map[string]any) {
	if len(rows) == 0 {
		fmt.Printf("%sNo %s%s\n", display.Yellow, resource, display.Reset)
		return
	}

	fmt.Printf("%s%s:%s\n", display.Cyan, strings.ToUpper(resource[:1])+resource[1:], display.Reset)
	for _, row := range rows {
		extra := make([]string, 0, len(row))
		for k, v := range row {
			switch k {
			case "id", "name", "description", "createdById", "createdAt", "updatedAt":
				continue
			}
			if v != nil {
				extra = append(extra, fmt.Sprintf("%s=%v", k, v))
			}
		}
		sort.Strings(extra)
		fmt.Printf("  [#%v] %-24v %s\n", row["id"], row["name"], strings.Join(extra, " "))
	}
}
