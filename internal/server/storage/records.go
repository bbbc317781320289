package storage

import "time"

// Opt is one field of a partial update: only fields with Set are written
type Opt[T any] struct {
	Set   bool
	Value T
}

// Some returns a field that will be written
func Some[T any](v T) Opt[T] {
	return Opt[T]{Set: true, Value: v}
}

// args renders the field as the (flag, value) pair consumed by
// "col = CASE WHEN ? THEN ? ELSE col END"
func (o Opt[T]) args() []any {
	return []any{o.Set, o.Value}
}

func patchArgs(fields ...[]any) []any {
	var out []any
	for _, f := range fields {
		out = append(out, f...)
	}
	return out
}

// World is the aggregate root returned to clients, fully hydrated
type World struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedByID *string   `json:"createdById"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Eras        []*Era    `json:"eras"`
	Settings    []Setting `json:"settings"`
	Markers     []Marker  `json:"markers"`
}

// WorldRecord holds the writable columns of a world
type WorldRecord struct {
	Name        string
	Description string
	CreatedByID string
}

// WorldPatch lists the world columns a partial update may touch
type WorldPatch struct {
	Name        Opt[string]
	Description Opt[string]
}

// Era is one period of a world's timeline with its detail subtree
type Era struct {
	ID          int64         `json:"id"`
	WorldID     int64         `json:"worldId"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	StartYear   *int64        `json:"startYear"`
	EndYear     *int64        `json:"endYear"`
	Color       string        `json:"color"`
	OrderIndex  int           `json:"orderIndex"`
	BasicInfo   *EraBasicInfo `json:"basicInfo"`
	Backdrop    *EraBackdrop  `json:"backdrop"`
	Trade       *EraTrade     `json:"trade"`
	Governments []*Government `json:"governments"`
	Catalog     EraCatalog    `json:"catalog"`
	Catalysts   []Catalyst    `json:"catalysts"`
}

// EraRecord holds the writable columns of an era
type EraRecord struct {
	WorldID     int64
	Name        string
	Description string
	StartYear   *int64
	EndYear     *int64
	Color       string
}

// EraPatch lists the era columns a partial update may touch
type EraPatch struct {
	Name        Opt[string]
	Description Opt[string]
	StartYear   Opt[*int64]
	EndYear     Opt[*int64]
	Color       Opt[string]
}

// Setting is a place or backdrop anchored to a world and optionally an era
type Setting struct {
	ID          int64  `json:"id"`
	WorldID     int64  `json:"worldId"`
	EraID       *int64 `json:"eraId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	StartYear   *int64 `json:"startYear"`
	EndYear     *int64 `json:"endYear"`
}

// SettingRecord holds the writable columns of a setting
type SettingRecord struct {
	WorldID     int64
	EraID       *int64
	Name        string
	Description string
	StartYear   *int64
	EndYear     *int64
}

// SettingPatch lists the setting columns a partial update may touch
type SettingPatch struct {
	EraID       Opt[*int64]
	Name        Opt[string]
	Description Opt[string]
	StartYear   Opt[*int64]
	EndYear     Opt[*int64]
}

// Marker is a single event on the world timeline
type Marker struct {
	ID          int64  `json:"id"`
	WorldID     int64  `json:"worldId"`
	EraID       *int64 `json:"eraId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Year        *int64 `json:"year"`
}

// MarkerRecord holds the writable columns of a marker
type MarkerRecord struct {
	WorldID     int64
	EraID       *int64
	Name        string
	Description string
	Year        *int64
}

// MarkerPatch lists the marker columns a partial update may touch
type MarkerPatch struct {
	EraID       Opt[*int64]
	Name        Opt[string]
	Description Opt[string]
	Year        Opt[*int64]
}

// EraBasicInfo is the 1:1 narrative summary of an era
type EraBasicInfo struct {
	EraID   int64  `json:"eraId"`
	Summary string `json:"summary"`
	Tone    string `json:"tone"`
	Themes  string `json:"themes"`
}

// EraBasicInfoPatch lists the basic info columns an upsert may touch
type EraBasicInfoPatch struct {
	Summary Opt[string]
	Tone    Opt[string]
	Themes  Opt[string]
}

// EraBackdrop holds the default environment of an era
type EraBackdrop struct {
	EraID            int64  `json:"eraId"`
	Climate          string `json:"climate"`
	TechnologyLevel  string `json:"technologyLevel"`
	MagicLevel       string `json:"magicLevel"`
	DefaultSettingID *int64 `json:"defaultSettingId"`
}

// EraBackdropPatch lists the backdrop columns an upsert may touch
type EraBackdropPatch struct {
	Climate          Opt[string]
	TechnologyLevel  Opt[string]
	MagicLevel       Opt[string]
	DefaultSettingID Opt[*int64]
}

// EraTrade summarises the economy of an era
type EraTrade struct {
	EraID   int64  `json:"eraId"`
	Summary string `json:"summary"`
	Exports string `json:"exports"`
	Imports string `json:"imports"`
}

// EraTradePatch lists the trade columns an upsert may touch
type EraTradePatch struct {
	Summary Opt[string]
	Exports Opt[string]
	Imports Opt[string]
}

// Government is a ruling power within an era
type Government struct {
	ID          int64     `json:"id"`
	EraID       int64     `json:"eraId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OrderIndex  int       `json:"orderIndex"`
	Regions     []*Region `json:"regions"`
}

// NamedPatch covers entities whose only mutable columns are name and description
type NamedPatch struct {
	Name        Opt[string]
	Description Opt[string]
}

// Region is a territory administered by a government
type Region struct {
	ID           int64      `json:"id"`
	GovernmentID int64      `json:"governmentId"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	OrderIndex   int        `json:"orderIndex"`
	Currencies   []Currency `json:"currencies"`
}

// Currency is one denomination minted in a region
type Currency struct {
	ID         int64    `json:"id"`
	RegionID   int64    `json:"regionId"`
	Name       string   `json:"name"`
	Value      *float64 `json:"value"`
	OrderIndex int      `json:"orderIndex"`
}

// CurrencyInput is one entry of a currency list replacement
type CurrencyInput struct {
	Name  string
	Value *float64
}

// Catalog entry kinds
const (
	KindRace     = "race"
	KindCreature = "creature"
	KindLanguage = "language"
	KindDeity    = "deity"
	KindFaction  = "faction"
)

// CatalogKinds lists every era catalog section
var CatalogKinds = []string{KindRace, KindCreature, KindLanguage, KindDeity, KindFaction}

// EraCatalog groups the era's catalog entries by kind
type EraCatalog struct {
	Races     []CatalogEntry `json:"races"`
	Creatures []CatalogEntry `json:"creatures"`
	Languages []CatalogEntry `json:"languages"`
	Deities   []CatalogEntry `json:"deities"`
	Factions  []CatalogEntry `json:"factions"`
}

func newEraCatalog() EraCatalog {
	return EraCatalog{
		Races:     []CatalogEntry{},
		Creatures: []CatalogEntry{},
		Languages: []CatalogEntry{},
		Deities:   []CatalogEntry{},
		Factions:  []CatalogEntry{},
	}
}

func (c *EraCatalog) add(e CatalogEntry) {
	switch e.Kind {
	case KindRace:
		c.Races = append(c.Races, e)
	case KindCreature:
		c.Creatures = append(c.Creatures, e)
	case KindLanguage:
		c.Languages = append(c.Languages, e)
	case KindDeity:
		c.Deities = append(c.Deities, e)
	case KindFaction:
		c.Factions = append(c.Factions, e)
	}
}

// CatalogEntry is a race, creature, language, deity or faction present in an era
type CatalogEntry struct {
	ID         int64  `json:"id"`
	EraID      int64  `json:"eraId"`
	Kind       string `json:"kind"`
	Name       string `json:"name"`
	Notes      string `json:"notes"`
	OrderIndex int    `json:"orderIndex"`
}

// CatalogEntryInput is one entry of a catalog list replacement
type CatalogEntryInput struct {
	Name  string
	Notes string
}

// Catalyst is a pivotal event that shaped an era
type Catalyst struct {
	ID          int64  `json:"id"`
	EraID       int64  `json:"eraId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Year        *int64 `json:"year"`
	OrderIndex  int    `json:"orderIndex"`
}

// CatalystInput is one entry of a catalyst list replacement
type CatalystInput struct {
	Name        string
	Description string
	Year        *int64
}
