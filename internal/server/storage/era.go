package storage

import (
	"context"
)

// InsertEra appends an era to the end of its world's timeline
func (q queries) InsertEra(ctx context.Context, record EraRecord) (int64, error) {
	query := `INSERT INTO eras (world_id, name, description, start_year, end_year, color, order_index)
		VALUES (?, ?, ?, ?, ?, ?, ` + GroupEras.appendIndex() + `)`

	return insertID(q.q.ExecContext(ctx, query,
		record.WorldID, record.Name, record.Description,
		record.StartYear, record.EndYear, record.Color,
		record.WorldID,
	))
}

// UpdateEra writes the supplied fields of an era; order_index is never touched
func (q queries) UpdateEra(ctx context.Context, id int64, patch EraPatch) error {
	query := `UPDATE eras SET
		name = CASE WHEN ? THEN ? ELSE name END,
		description = CASE WHEN ? THEN ? ELSE description END,
		start_year = CASE WHEN ? THEN ? ELSE start_year END,
		end_year = CASE WHEN ? THEN ? ELSE end_year END,
		color = CASE WHEN ? THEN ? ELSE color END
	WHERE id = ?`

	args := patchArgs(
		patch.Name.args(),
		patch.Description.args(),
		patch.StartYear.args(),
		patch.EndYear.args(),
		patch.Color.args(),
		[]any{id},
	)
	return expectRows(q.q.ExecContext(ctx, query, args...))
}

// DeleteEra removes an era and its details. Settings and markers that
// pointed at it are detached (era_id set to NULL), not deleted.
func (q queries) DeleteEra(ctx context.Context, id int64) error {
	return expectRows(q.q.ExecContext(ctx, `DELETE FROM eras WHERE id = ?`, id))
}
