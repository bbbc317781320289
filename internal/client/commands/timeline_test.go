package commands

import (
	"strings"
	"testing"

	"worldforge/internal/client/api"

	"github.com/stretchr/testify/assert"
)

func i64(n int64) *int64 { return &n }

func TestFormatYears(t *testing.T) {
	assert.Equal(t, "", FormatYears(nil, nil))
	assert.Equal(t, "0 .. 500", FormatYears(i64(0), i64(500)))
	assert.Equal(t, "? .. 12", FormatYears(nil, i64(12)))
}

func TestFormatWorld(t *testing.T) {
	w := &api.World{
		ID:   1,
		Name: "Eld",
		Eras: []api.Era{
			{ID: 4, Name: "First Age", StartYear: i64(0), EndYear: i64(500)},
			{ID: 5, Name: "Second Age"},
		},
		Settings: []api.Setting{{ID: 7, Name: "Capital", EraID: i64(4)}},
		Markers: []api.Marker{
			{ID: 10, Name: "Undated"},
			{ID: 9, Name: "The Fall", Year: i64(250), EraID: i64(99)},
		},
	}

	out := FormatWorld(w)
	assert.Contains(t, out, "[#4] First Age")
	assert.Contains(t, out, "(0 .. 500)")
	assert.Contains(t, out, "<First Age>")
	assert.Contains(t, out, "<era #99>")
	assert.Less(t, strings.Index(out, "The Fall"), strings.Index(out, "Undated"))

	empty := FormatWorld(&api.World{ID: 2, Name: "Void"})
	assert.Contains(t, empty, "(no eras)")
	assert.NotContains(t, empty, "Markers:")
}
