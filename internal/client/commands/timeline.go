package commands

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"worldforge/internal/client/api"
	"worldforge/internal/client/display"
)

// FormatYears renders an open or closed year span
func FormatYears(start, end *int64) string {
	if start == nil && end == nil {
		return ""
	}
	year := func(y *int64) string {
		if y == nil {
			return "?"
		}
		return strconv.FormatInt(*y, 10)
	}
	return year(start) + " .. " + year(end)
}

// FormatWorld renders a world as an indented timeline tree
func FormatWorld(w *api.World) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s (#%d)\n", display.Paint(display.Cyan, w.Name), w.ID)
	if w.Description != "" {
		fmt.Fprintf(&b, "  %s\n", w.Description)
	}

	eraNames := make(map[int64]string, len(w.Eras))
	b.WriteString(display.Paint(display.Yellow, "Timeline:") + "\n")
	if len(w.Eras) == 0 {
		b.WriteString("  (no eras)\n")
	}
	for i, e := range w.Eras {
		eraNames[e.ID] = e.Name
		fmt.Fprintf(&b, "  %2d. [#%d] %s", i+1, e.ID, e.Name)
		if span := FormatYears(e.StartYear, e.EndYear); span != "" {
			b.WriteString("  " + display.Paint(display.White, "("+span+")"))
		}
		b.WriteString("\n")
		if len(e.Governments) > 0 || len(e.Catalysts) > 0 {
			fmt.Fprintf(&b, "      governments: %d, catalysts: %d\n", len(e.Governments), len(e.Catalysts))
		}
	}

	if len(w.Settings) > 0 {
		b.WriteString(display.Paint(display.Yellow, "Settings:") + "\n")
		for _, s := range w.Settings {
			fmt.Fprintf(&b, "  [#%d] %s%s\n", s.ID, s.Name, eraSuffix(s.EraID, eraNames))
		}
	}

	if len(w.Markers) > 0 {
		markers := append([]api.Marker(nil), w.Markers...)
		sort.SliceStable(markers, func(i, j int) bool {
			return yearKey(markers[i].Year) < yearKey(markers[j].Year)
		})
		b.WriteString(display.Paint(display.Yellow, "Markers:") + "\n")
		for _, m := range markers {
			year := "?"
			if m.Year != nil {
				year = strconv.FormatInt(*m.Year, 10)
			}
			fmt.Fprintf(&b, "  [#%d] %6s  %s%s\n", m.ID, year, m.Name, eraSuffix(m.EraID, eraNames))
		}
	}

	return b.String()
}

// printWorld writes FormatWorld to stdout
func printWorld(w *api.World) {
	fmt.Print(FormatWorld(w))
}

func eraSuffix(eraID *int64, names map[int64]string) string {
	if eraID == nil {
		return ""
	}
	if name, ok := names[*eraID]; ok {
		return "  " + display.Paint(display.Magenta, "<"+name+">")
	}
	return fmt.Sprintf("  <era #%d>", *eraID)
}

// yearKey sorts undated markers last
func yearKey(y *int64) int64 {
	if y == nil {
		return int64(^uint64(0) >> 1)
	}
	return *y
}
