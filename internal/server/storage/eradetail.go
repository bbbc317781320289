package storage

import (
	"context"
	"fmt"
)

// UpsertEraBasicInfo inserts or patches the era's basic info in one statement
func (q queries) UpsertEraBasicInfo(ctx context.Context, eraID int64, patch EraBasicInfoPatch) error {
	query := `INSERT INTO era_basic_info (era_id, summary, tone, themes) VALUES (?, ?, ?, ?)
	ON CONFLICT(era_id) DO UPDATE SET
		summary = CASE WHEN ? THEN excluded.summary ELSE era_basic_info.summary END,
		tone = CASE WHEN ? THEN excluded.tone ELSE era_basic_info.tone END,
		themes = CASE WHEN ? THEN excluded.themes ELSE era_basic_info.themes END`

	_, err := q.q.ExecContext(ctx, query,
		eraID, patch.Summary.Value, patch.Tone.Value, patch.Themes.Value,
		patch.Summary.Set, patch.Tone.Set, patch.Themes.Set,
	)
	return classify(err)
}

// UpsertEraBackdrop inserts or patches the era's backdrop defaults in one statement
func (q queries) UpsertEraBackdrop(ctx context.Context, eraID int64, patch EraBackdropPatch) error {
	query := `INSERT INTO era_backdrops (era_id, climate, technology_level, magic_level, default_setting_id)
		VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(era_id) DO UPDATE SET
		climate = CASE WHEN ? THEN excluded.climate ELSE era_backdrops.climate END,
		technology_level = CASE WHEN ? THEN excluded.technology_level ELSE era_backdrops.technology_level END,
		magic_level = CASE WHEN ? THEN excluded.magic_level ELSE era_backdrops.magic_level END,
		default_setting_id = CASE WHEN ? THEN excluded.default_setting_id ELSE era_backdrops.default_setting_id END`

	_, err := q.q.ExecContext(ctx, query,
		eraID, patch.Climate.Value, patch.TechnologyLevel.Value, patch.MagicLevel.Value, patch.DefaultSettingID.Value,
		patch.Climate.Set, patch.TechnologyLevel.Set, patch.MagicLevel.Set, patch.DefaultSettingID.Set,
	)
	return classify(err)
}

// UpsertEraTrade inserts or patches the era's trade summary in one statement
func (q queries) UpsertEraTrade(ctx context.Context, eraID int64, patch EraTradePatch) error {
	query := `INSERT INTO era_trade (era_id, summary, exports, imports) VALUES (?, ?, ?, ?)
	ON CONFLICT(era_id) DO UPDATE SET
		summary = CASE WHEN ? THEN excluded.summary ELSE era_trade.summary END,
		exports = CASE WHEN ? THEN excluded.exports ELSE era_trade.exports END,
		imports = CASE WHEN ? THEN excluded.imports ELSE era_trade.imports END`

	_, err := q.q.ExecContext(ctx, query,
		eraID, patch.Summary.Value, patch.Exports.Value, patch.Imports.Value,
		patch.Summary.Set, patch.Exports.Set, patch.Imports.Set,
	)
	return classify(err)
}

// InsertGovernment appends a government to an era
func (q queries) InsertGovernment(ctx context.Context, eraID int64, name, description string) (int64, error) {
	query := `INSERT INTO era_governments (era_id, name, description, order_index)
		VALUES (?, ?, ?, ` + GroupGovernments.appendIndex() + `)`
	return insertID(q.q.ExecContext(ctx, query, eraID, name, description, eraID))
}

// UpdateGovernment writes the supplied fields of a government
func (q queries) UpdateGovernment(ctx context.Context, id int64, patch NamedPatch) error {
	query := `UPDATE era_governments SET
		name = CASE WHEN ? THEN ? ELSE name END,
		description = CASE WHEN ? THEN ? ELSE description END
	WHERE id = ?`
	return expectRows(q.q.ExecContext(ctx, query, patchArgs(patch.Name.args(), patch.Description.args(), []any{id})...))
}

// DeleteGovernment removes a government with its regions and currencies
func (q queries) DeleteGovernment(ctx context.Context, id int64) error {
	return expectRows(q.q.ExecContext(ctx, `DELETE FROM era_governments WHERE id = ?`, id))
}

// GovernmentEraID returns the era owning a government
func (q queries) GovernmentEraID(ctx context.Context, id int64) (int64, error) {
	var eraID int64
	if err := q.q.QueryRowContext(ctx, `SELECT era_id FROM era_governments WHERE id = ?`, id).Scan(&eraID); err != nil {
		return 0, classify(err)
	}
	return eraID, nil
}

// InsertRegion appends a region to a government
func (q queries) InsertRegion(ctx context.Context, governmentID int64, name, description string) (int64, error) {
	query := `INSERT INTO era_regions (government_id, name, description, order_index)
		VALUES (?, ?, ?, ` + GroupRegions.appendIndex() + `)`
	return insertID(q.q.ExecContext(ctx, query, governmentID, name, description, governmentID))
}

// UpdateRegion writes the supplied fields of a region
func (q queries) UpdateRegion(ctx context.Context, id int64, patch NamedPatch) error {
	query := `UPDATE era_regions SET
		name = CASE WHEN ? THEN ? ELSE name END,
		description = CASE WHEN ? THEN ? ELSE description END
	WHERE id = ?`
	return expectRows(q.q.ExecContext(ctx, query, patchArgs(patch.Name.args(), patch.Description.args(), []any{id})...))
}

// DeleteRegion removes a region with its currencies
func (q queries) DeleteRegion(ctx context.Context, id int64) error {
	return expectRows(q.q.ExecContext(ctx, `DELETE FROM era_regions WHERE id = ?`, id))
}

// RegionGovernmentID returns the government owning a region
func (q queries) RegionGovernmentID(ctx context.Context, id int64) (int64, error) {
	var governmentID int64
	if err := q.q.QueryRowContext(ctx, `SELECT government_id FROM era_regions WHERE id = ?`, id).Scan(&governmentID); err != nil {
		return 0, classify(err)
	}
	return governmentID, nil
}

// ReplaceCurrencies swaps a region's denominations for the given list, indexed by position
func (tx *Tx) ReplaceCurrencies(ctx context.Context, regionID int64, list []CurrencyInput) error {
	if _, err := tx.q.ExecContext(ctx, `DELETE FROM era_currencies WHERE region_id = ?`, regionID); err != nil {
		return fmt.Errorf("failed to clear currencies: %w", err)
	}

	query := `INSERT INTO era_currencies (region_id, name, value, order_index) VALUES (?, ?, ?, ?)`
	for i, c := range list {
		if _, err := tx.q.ExecContext(ctx, query, regionID, c.Name, c.Value, i); err != nil {
			return classify(err)
		}
	}
	return nil
}

// ReplaceCatalog swaps one kind of an era's catalog for the given list
func (tx *Tx) ReplaceCatalog(ctx context.Context, eraID int64, kind string, list []CatalogEntryInput) error {
	if _, err := tx.q.ExecContext(ctx, `DELETE FROM era_catalog_entries WHERE era_id = ? AND kind = ?`, eraID, kind); err != nil {
		return fmt.Errorf("failed to clear catalog: %w", err)
	}

	query := `INSERT INTO era_catalog_entries (era_id, kind, name, notes, order_index) VALUES (?, ?, ?, ?, ?)`
	for i, e := range list {
		if _, err := tx.q.ExecContext(ctx, query, eraID, kind, e.Name, e.Notes, i); err != nil {
			return classify(err)
		}
	}
	return nil
}

// ReplaceCatalysts swaps an era's catalyst events for the given list
func (tx *Tx) ReplaceCatalysts(ctx context.Context, eraID int64, list []CatalystInput) error {
	if _, err := tx.q.ExecContext(ctx, `DELETE FROM era_catalysts WHERE era_id = ?`, eraID); err != nil {
		return fmt.Errorf("failed to clear catalysts: %w", err)
	}

	query := `INSERT INTO era_catalysts (era_id, name, description, year, order_index) VALUES (?, ?, ?, ?, ?)`
	for i, c := range list {
		if _, err := tx.q.ExecContext(ctx, query, eraID, c.Name, c.Description, c.Year, i); err != nil {
			return classify(err)
		}
	}
	return nil
}
