package storage

import (
	"context"
)

// InsertSetting creates a setting and returns its id
func (q queries) InsertSetting(ctx context.Context, record SettingRecord) (int64, error) {
	query := `INSERT INTO settings (world_id, era_id, name, description, start_year, end_year)
		VALUES (?, ?, ?, ?, ?, ?)`

	return insertID(q.q.ExecContext(ctx, query,
		record.WorldID, record.EraID, record.Name, record.Description,
		record.StartYear, record.EndYear,
	))
}

// UpdateSetting writes the supplied fields of a setting
func (q queries) UpdateSetting(ctx context.Context, id int64, patch SettingPatch) error {
	query := `UPDATE settings SET
		era_id = CASE WHEN ? THEN ? ELSE era_id END,
		name = CASE WHEN ? THEN ? ELSE name END,
		description = CASE WHEN ? THEN ? ELSE description END,
		start_year = CASE WHEN ? THEN ? ELSE start_year END,
		end_year = CASE WHEN ? THEN ? ELSE end_year END
	WHERE id = ?`

	args := patchArgs(
		patch.EraID.args(),
		patch.Name.args(),
		patch.Description.args(),
		patch.StartYear.args(),
		patch.EndYear.args(),
		[]any{id},
	)
	return expectRows(q.q.ExecContext(ctx, query, args...))
}

// DeleteSetting removes a setting
func (q queries) DeleteSetting(ctx context.Context, id int64) error {
	return expectRows(q.q.ExecContext(ctx, `DELETE FROM settings WHERE id = ?`, id))
}

// InsertMarker creates a timeline marker and returns its id
func (q queries) InsertMarker(ctx context.Context, record MarkerRecord) (int64, error) {
	query := `INSERT INTO markers (world_id, era_id, name, description, year) VALUES (?, ?, ?, ?, ?)`

	return insertID(q.q.ExecContext(ctx, query,
		record.WorldID, record.EraID, record.Name, record.Description, record.Year,
	))
}

// UpdateMarker writes the supplied fields of a marker
func (q queries) UpdateMarker(ctx context.Context, id int64, patch MarkerPatch) error {
	query := `UPDATE markers SET
		era_id = CASE WHEN ? THEN ? ELSE era_id END,
		name = CASE WHEN ? THEN ? ELSE name END,
		description = CASE WHEN ? THEN ? ELSE description END,
		year = CASE WHEN ? THEN ? ELSE year END
	WHERE id = ?`

	args := patchArgs(
		patch.EraID.args(),
		patch.Name.args(),
		patch.Description.args(),
		patch.Year.args(),
		[]any{id},
	)
	return expectRows(q.q.ExecContext(ctx, query, args...))
}

// DeleteMarker removes a marker
func (q queries) DeleteMarker(ctx context.Context, id int64) error {
	return expectRows(q.q.ExecContext(ctx, `DELETE FROM markers WHERE id = ?`, id))
}
