package storage

import (
	"context"
	"database/sql"
)

// InsertWorld creates a world and returns its id
func (q queries) InsertWorld(ctx context.Context, record WorldRecord) (int64, error) {
	query := `INSERT INTO worlds (name, description, created_by_id) VALUES (?, ?, ?)`
	return insertID(q.q.ExecContext(ctx, query, record.Name, record.Description, nullString(record.CreatedByID)))
}

// UpdateWorld writes the supplied fields of a world
func (q queries) UpdateWorld(ctx context.Context, id int64, patch WorldPatch) error {
	query := `UPDATE worlds SET
		name = CASE WHEN ? THEN ? ELSE name END,
		description = CASE WHEN ? THEN ? ELSE description END,
		updated_at = CURRENT_TIMESTAMP
	WHERE id = ?`

	args := patchArgs(patch.Name.args(), patch.Description.args(), []any{id})
	return expectRows(q.q.ExecContext(ctx, query, args...))
}

// DeleteWorld removes a world; eras, settings, markers and era details cascade
func (q queries) DeleteWorld(ctx context.Context, id int64) error {
	return expectRows(q.q.ExecContext(ctx, `DELETE FROM worlds WHERE id = ?`, id))
}

// TouchWorld bumps updated_at after a change anywhere in the world subtree
func (q queries) TouchWorld(ctx context.Context, id int64) error {
	return expectRows(q.q.ExecContext(ctx, `UPDATE worlds SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id))
}

// WorldExists reports whether a world row is present
func (q queries) WorldExists(ctx context.Context, id int64) (bool, error) {
	var count int
	err := q.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM worlds WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// WorldSummary is a flat world row used for listings
type WorldSummary struct {
	ID       int64
	Name     string
	Eras     int
	Settings int
	Markers  int
}

// ListWorldSummaries returns every world with child counts, ordered by name
func (q queries) ListWorldSummaries(ctx context.Context) ([]WorldSummary, error) {
	query := `SELECT w.id, w.name,
		(SELECT COUNT(*) FROM eras e WHERE e.world_id = w.id),
		(SELECT COUNT(*) FROM settings s WHERE s.world_id = w.id),
		(SELECT COUNT(*) FROM markers m WHERE m.world_id = w.id)
	FROM worlds w ORDER BY w.name COLLATE NOCASE, w.id`

	rows, err := q.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WorldSummary
	for rows.Next() {
		var w WorldSummary
		if err := rows.Scan(&w.ID, &w.Name, &w.Eras, &w.Settings, &w.Markers); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// ownerWorld runs a single-column lookup returning the owning world id
func (q queries) ownerWorld(ctx context.Context, query string, id int64) (int64, error) {
	var worldID int64
	if err := q.q.QueryRowContext(ctx, query, id).Scan(&worldID); err != nil {
		return 0, classify(err)
	}
	return worldID, nil
}

// EraWorldID returns the world owning an era
func (q queries) EraWorldID(ctx context.Context, eraID int64) (int64, error) {
	return q.ownerWorld(ctx, `SELECT world_id FROM eras WHERE id = ?`, eraID)
}

// SettingWorldID returns the world owning a setting
func (q queries) SettingWorldID(ctx context.Context, settingID int64) (int64, error) {
	return q.ownerWorld(ctx, `SELECT world_id FROM settings WHERE id = ?`, settingID)
}

// MarkerWorldID returns the world owning a marker
func (q queries) MarkerWorldID(ctx context.Context, markerID int64) (int64, error) {
	return q.ownerWorld(ctx, `SELECT world_id FROM markers WHERE id = ?`, markerID)
}

// GovernmentWorldID returns the world owning a government
func (q queries) GovernmentWorldID(ctx context.Context, governmentID int64) (int64, error) {
	return q.ownerWorld(ctx, `SELECT e.world_id FROM era_governments g
		JOIN eras e ON e.id = g.era_id WHERE g.id = ?`, governmentID)
}

// RegionWorldID returns the world owning a region
func (q queries) RegionWorldID(ctx context.Context, regionID int64) (int64, error) {
	return q.ownerWorld(ctx, `SELECT e.world_id FROM era_regions r
		JOIN era_governments g ON g.id = r.government_id
		JOIN eras e ON e.id = g.era_id WHERE r.id = ?`, regionID)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
