package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// World hydrates one world with its full subtree, or returns ErrNotFound
func (q queries) World(ctx context.Context, id int64) (*World, error) {
	worlds, err := q.hydrateWorlds(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(worlds) == 0 {
		return nil, ErrNotFound
	}
	return worlds[0], nil
}

// Worlds hydrates every world, ordered by id
func (q queries) Worlds(ctx context.Context) ([]*World, error) {
	return q.hydrateWorlds(ctx, nil)
}

// worldTree indexes the nodes of a hydration pass by id
type worldTree struct {
	worlds      []*World
	worldByID   map[int64]*World
	eraByID     map[int64]*Era
	governments map[int64]*Government
	regions     map[int64]*Region
}

// hydrateWorlds loads one world (worldID int64) or all of them (worldID nil)
// with a fixed number of queries, each level ordered by order_index then id.
func (q queries) hydrateWorlds(ctx context.Context, worldID any) ([]*World, error) {
	t := &worldTree{
		worlds:      []*World{},
		worldByID:   make(map[int64]*World),
		eraByID:     make(map[int64]*Era),
		governments: make(map[int64]*Government),
		regions:     make(map[int64]*Region),
	}
	scope := []any{worldID, worldID}

	steps := []struct {
		name string
		fn   func(context.Context, []any) error
	}{
		{"worlds", t.loadWorlds(q)},
		{"eras", t.loadEras(q)},
		{"settings", t.loadSettings(q)},
		{"markers", t.loadMarkers(q)},
		{"era basic info", t.loadBasicInfo(q)},
		{"era backdrops", t.loadBackdrops(q)},
		{"era trade", t.loadTrade(q)},
		{"governments", t.loadGovernments(q)},
		{"regions", t.loadRegions(q)},
		{"currencies", t.loadCurrencies(q)},
		{"era catalog", t.loadCatalog(q)},
		{"catalysts", t.loadCatalysts(q)},
	}

	for _, step := range steps {
		if err := step.fn(ctx, scope); err != nil {
			return nil, fmt.Errorf("hydrate %s: %w", step.name, err)
		}
		if len(t.worlds) == 0 {
			return t.worlds, nil
		}
	}

	return t.worlds, nil
}

// each runs query and hands every row to scan
func (q queries) each(ctx context.Context, query string, args []any, scan func(*sql.Rows) error) error {
	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (t *worldTree) loadWorlds(q queries) func(context.Context, []any) error {
	return func(ctx context.Context, scope []any) error {
		query := `SELECT id, name, description, created_by_id, created_at, updated_at
			FROM worlds WHERE (? IS NULL OR id = ?) ORDER BY id`

		return q.each(ctx, query, scope, func(rows *sql.Rows) error {
			w := &World{Eras: []*Era{}, Settings: []Setting{}, Markers: []Marker{}}
			var createdBy sql.NullString
			if err := rows.Scan(&w.ID, &w.Name, &w.Description, &createdBy, &w.CreatedAt, &w.UpdatedAt); err != nil {
				return err
			}
			if createdBy.Valid {
				w.CreatedByID = &createdBy.String
			}
			t.worlds = append(t.worlds, w)
			t.worldByID[w.ID] = w
			return nil
		})
	}
}

func (t *worldTree) loadEras(q queries) func(context.Context, []any) error {
	return func(ctx context.Context, scope []any) error {
		query := `SELECT id, world_id, name, description, start_year, end_year, color, order_index
			FROM eras WHERE (? IS NULL OR world_id = ?) ORDER BY world_id, order_index, id`

		return q.each(ctx, query, scope, func(rows *sql.Rows) error {
			e := &Era{
				Governments: []*Government{},
				Catalog:     newEraCatalog(),
				Catalysts:   []Catalyst{},
			}
			var start, end sql.NullInt64
			if err := rows.Scan(&e.ID, &e.WorldID, &e.Name, &e.Description, &start, &end, &e.Color, &e.OrderIndex); err != nil {
				return err
			}
			e.StartYear, e.EndYear = intPtr(start), intPtr(end)
			if w, ok := t.worldByID[e.WorldID]; ok {
				w.Eras = append(w.Eras, e)
				t.eraByID[e.ID] = e
			}
			return nil
		})
	}
}

func (t *worldTree) loadSettings(q queries) func(context.Context, []any) error {
	return func(ctx context.Context, scope []any) error {
		query := `SELECT id, world_id, era_id, name, description, start_year, end_year
			FROM settings WHERE (? IS NULL OR world_id = ?) ORDER BY id`

		return q.each(ctx, query, scope, func(rows *sql.Rows) error {
			var s Setting
			var eraID, start, end sql.NullInt64
			if err := rows.Scan(&s.ID, &s.WorldID, &eraID, &s.Name, &s.Description, &start, &end); err != nil {
				return err
			}
			s.EraID, s.StartYear, s.EndYear = intPtr(eraID), intPtr(start), intPtr(end)
			if w, ok := t.worldByID[s.WorldID]; ok {
				w.Settings = append(w.Settings, s)
			}
			return nil
		})
	}
}

func (t *worldTree) loadMarkers(q queries) func(context.Context, []any) error {
	return func(ctx context.Context, scope []any) error {
		query := `SELECT id, world_id, era_id, name, description, year
			FROM markers WHERE (? IS NULL OR world_id = ?) ORDER BY year IS NULL, year, id`

		return q.each(ctx, query, scope, func(rows *sql.Rows) error {
			var m Marker
			var eraID, year sql.NullInt64
			if err := rows.Scan(&m.ID, &m.WorldID, &eraID, &m.Name, &m.Description, &year); err != nil {
				return err
			}
			m.EraID, m.Year = intPtr(eraID), intPtr(year)
			if w, ok := t.worldByID[m.WorldID]; ok {
				w.Markers = append(w.Markers, m)
			}
			return nil
		})
	}
}

func (t *worldTree) loadBasicInfo(q queries) func(context.Context, []any) error {
	return func(ctx context.Context, scope []any) error {
		query := `SELECT b.era_id, b.summary, b.tone, b.themes
			FROM era_basic_info b JOIN eras e ON e.id = b.era_id
			WHERE (? IS NULL OR e.world_id = ?)`

		return q.each(ctx, query, scope, func(rows *sql.Rows) error {
			var b EraBasicInfo
			if err := rows.Scan(&b.EraID, &b.Summary, &b.Tone, &b.Themes); err != nil {
				return err
			}
			if e, ok := t.eraByID[b.EraID]; ok {
				e.BasicInfo = &b
			}
			return nil
		})
	}
}

func (t *worldTree) loadBackdrops(q queries) func(context.Context, []any) error {
	return func(ctx context.Context, scope []any) error {
		query := `SELECT b.era_id, b.climate, b.technology_level, b.magic_level, b.default_setting_id
			FROM era_backdrops b JOIN eras e ON e.id = b.era_id
			WHERE (? IS NULL OR e.world_id = ?)`

		return q.each(ctx, query, scope, func(rows *sql.Rows) error {
			var b EraBackdrop
			var settingID sql.NullInt64
			if err := rows.Scan(&b.EraID, &b.Climate, &b.TechnologyLevel, &b.MagicLevel, &settingID); err != nil {
				return err
			}
			b.DefaultSettingID = intPtr(settingID)
			if e, ok := t.eraByID[b.EraID]; ok {
				e.Backdrop = &b
			}
			return nil
		})
	}
}

func (t *worldTree) loadTrade(q queries) func(context.Context, []any) error {
	return func(ctx context.Context, scope []any) error {
		query := `SELECT tr.era_id, tr.summary, tr.exports, tr.imports
			FROM era_trade tr JOIN eras e ON e.id = tr.era_id
			WHERE (? IS NULL OR e.world_id = ?)`

		return q.each(ctx, query, scope, func(rows *sql.Rows) error {
			var tr EraTrade
			if err := rows.Scan(&tr.EraID, &tr.Summary, &tr.Exports, &tr.Imports); err != nil {
				return err
			}
			if e, ok := t.eraByID[tr.EraID]; ok {
				e.Trade = &tr
			}
			return nil
		})
	}
}

func (t *worldTree) loadGovernments(q queries) func(context.Context, []any) error {
	return func(ctx context.Context, scope []any) error {
		query := `SELECT g.id, g.era_id, g.name, g.description, g.order_index
			FROM era_governments g JOIN eras e ON e.id = g.era_id
			WHERE (? IS NULL OR e.world_id = ?)
			ORDER BY g.era_id, g.order_index, g.id`

		return q.each(ctx, query, scope, func(rows *sql.Rows) error {
			g := &Government{Regions: []*Region{}}
			if err := rows.Scan(&g.ID, &g.EraID, &g.Name, &g.Description, &g.OrderIndex); err != nil {
				return err
			}
			if e, ok := t.eraByID[g.EraID]; ok {
				e.Governments = append(e.Governments, g)
				t.governments[g.ID] = g
			}
			return nil
		})
	}
}

func (t *worldTree) loadRegions(q queries) func(context.Context, []any) error {
	return func(ctx context.Context, scope []any) error {
		query := `SELECT r.id, r.government_id, r.name, r.description, r.order_index
			FROM era_regions r
			JOIN era_governments g ON g.id = r.government_id
			JOIN eras e ON e.id = g.era_id
			WHERE (? IS NULL OR e.world_id = ?)
			ORDER BY r.government_id, r.order_index, r.id`

		return q.each(ctx, query, scope, func(rows *sql.Rows) error {
			r := &Region{Currencies: []Currency{}}
			if err := rows.Scan(&r.ID, &r.GovernmentID, &r.Name, &r.Description, &r.OrderIndex); err != nil {
				return err
			}
			if g, ok := t.governments[r.GovernmentID]; ok {
				g.Regions = append(g.Regions, r)
				t.regions[r.ID] = r
			}
			return nil
		})
	}
}

func (t *worldTree) loadCurrencies(q queries) func(context.Context, []any) error {
	return func(ctx context.Context, scope []any) error {
		query := `SELECT c.id, c.region_id, c.name, c.value, c.order_index
			FROM era_currencies c
			JOIN era_regions r ON r.id = c.region_id
			JOIN era_governments g ON g.id = r.government_id
			JOIN eras e ON e.id = g.era_id
			WHERE (? IS NULL OR e.world_id = ?)
			ORDER BY c.region_id, c.order_index, c.id`

		return q.each(ctx, query, scope, func(rows *sql.Rows) error {
			var c Currency
			var value sql.NullFloat64
			if err := rows.Scan(&c.ID, &c.RegionID, &c.Name, &value, &c.OrderIndex); err != nil {
				return err
			}
			c.Value = floatPtr(value)
			if r, ok := t.regions[c.RegionID]; ok {
				r.Currencies = append(r.Currencies, c)
			}
			return nil
		})
	}
}

func (t *worldTree) loadCatalog(q queries) func(context.Context, []any) error {
	return func(ctx context.Context, scope []any) error {
		query := `SELECT c.id, c.era_id, c.kind, c.name, c.notes, c.order_index
			FROM era_catalog_entries c JOIN eras e ON e.id = c.era_id
			WHERE (? IS NULL OR e.world_id = ?)
			ORDER BY c.era_id, c.kind, c.order_index, c.id`

		return q.each(ctx, query, scope, func(rows *sql.Rows) error {
			var c CatalogEntry
			if err := rows.Scan(&c.ID, &c.EraID, &c.Kind, &c.Name, &c.Notes, &c.OrderIndex); err != nil {
				return err
			}
			if e, ok := t.eraByID[c.EraID]; ok {
				e.Catalog.add(c)
			}
			return nil
		})
	}
}

func (t *worldTree) loadCatalysts(q queries) func(context.Context, []any) error {
	return func(ctx context.Context, scope []any) error {
		query := `SELECT c.id, c.era_id, c.name, c.description, c.year, c.order_index
			FROM era_catalysts c JOIN eras e ON e.id = c.era_id
			WHERE (? IS NULL OR e.world_id = ?)
			ORDER BY c.era_id, c.order_index, c.id`

		return q.each(ctx, query, scope, func(rows *sql.Rows) error {
			var c Catalyst
			var year sql.NullInt64
			if err := rows.Scan(&c.ID, &c.EraID, &c.Name, &c.Description, &year, &c.OrderIndex); err != nil {
				return err
			}
			c.Year = intPtr(year)
			if e, ok := t.eraByID[c.EraID]; ok {
				e.Catalysts = append(e.Catalysts, c)
			}
			return nil
		})
	}
}

func intPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
