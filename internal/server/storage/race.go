package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Race is a playable people with its definition, attributes and slot lists
type Race struct {
	ID               int64             `json:"id"`
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	CreatedByID      *string           `json:"createdById"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
	Definition       *RaceDefinition   `json:"definition"`
	Attributes       *RaceAttributes   `json:"attributes"`
	BonusSkills      []RaceBonusSkill  `json:"bonusSkills"`
	SpecialAbilities []RaceSpecialSlot `json:"specialAbilities"`
}

// RaceRecord holds the writable columns of a race
type RaceRecord struct {
	Name        string
	Description string
	CreatedByID string
}

// RacePatch lists the race columns a partial update may touch
type RacePatch struct {
	Name        Opt[string]
	Description Opt[string]
}

// RaceDefinition is the 1:1 lore block of a race
type RaceDefinition struct {
	Lore      string `json:"lore"`
	Size      string `json:"size"`
	Lifespan  string `json:"lifespan"`
	Languages string `json:"languages"`
}

// RaceDefinitionPatch lists the definition columns an upsert may touch
type RaceDefinitionPatch struct {
	Lore      Opt[string]
	Size      Opt[string]
	Lifespan  Opt[string]
	Languages Opt[string]
}

// RaceAttributes is the 1:1 ability score block of a race
type RaceAttributes struct {
	Strength     *int64 `json:"strength"`
	Dexterity    *int64 `json:"dexterity"`
	Constitution *int64 `json:"constitution"`
	Intelligence *int64 `json:"intelligence"`
	Wisdom       *int64 `json:"wisdom"`
	Charisma     *int64 `json:"charisma"`
	Speed        *int64 `json:"speed"`
}

// RaceAttributesPatch lists the attribute columns an upsert may touch
type RaceAttributesPatch struct {
	Strength     Opt[*int64]
	Dexterity    Opt[*int64]
	Constitution Opt[*int64]
	Intelligence Opt[*int64]
	Wisdom       Opt[*int64]
	Charisma     Opt[*int64]
	Speed        Opt[*int64]
}

// RaceBonusSkill is one slot of a race's bonus skill list
type RaceBonusSkill struct {
	SlotIndex int    `json:"slotIndex"`
	SkillID   int64  `json:"skillId"`
	SkillName string `json:"skillName"`
	Points    *int64 `json:"points"`
}

// BonusSkillInput is one entry of a bonus skill list replacement
type BonusSkillInput struct {
	SkillID int64
	Points  *int64
}

// RaceSpecialSlot is one slot of a race's special ability list
type RaceSpecialSlot struct {
	SlotIndex        int    `json:"slotIndex"`
	SpecialAbilityID int64  `json:"specialAbilityId"`
	Name             string `json:"name"`
}

// CatalogFilter narrows catalog listings
type CatalogFilter struct {
	Query     string // case-insensitive substring of name
	CreatedBy string
}

// nameFilter matches the filter's query as a literal substring of name
const nameFilter = `(? = '' OR name LIKE '%' || ? || '%' ESCAPE '\') AND (? = '' OR created_by_id = ?)`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (f CatalogFilter) args() []any {
	return []any{f.Query, likeEscaper.Replace(f.Query), f.CreatedBy, f.CreatedBy}
}

// InsertRace creates a race and returns its id
func (q queries) InsertRace(ctx context.Context, record RaceRecord) (int64, error) {
	query := `INSERT INTO races (name, description, created_by_id) VALUES (?, ?, ?)`
	return insertID(q.q.ExecContext(ctx, query, record.Name, record.Description, nullString(record.CreatedByID)))
}

// UpdateRace writes the supplied fields of a race
func (q queries) UpdateRace(ctx context.Context, id int64, patch RacePatch) error {
	query := `UPDATE races SET
		name = CASE WHEN ? THEN ? ELSE name END,
		description = CASE WHEN ? THEN ? ELSE description END,
		updated_at = CURRENT_TIMESTAMP
	WHERE id = ?`
	return expectRows(q.q.ExecContext(ctx, query, patchArgs(patch.Name.args(), patch.Description.args(), []any{id})...))
}

// DeleteRace removes a race; definition, attributes and slots cascade
func (q queries) DeleteRace(ctx context.Context, id int64) error {
	return expectRows(q.q.ExecContext(ctx, `DELETE FROM races WHERE id = ?`, id))
}

// UpsertRaceDefinition inserts or patches a race definition in one statement
func (q queries) UpsertRaceDefinition(ctx context.Context, raceID int64, patch RaceDefinitionPatch) error {
	query := `INSERT INTO race_definitions (race_id, lore, size, lifespan, languages) VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(race_id) DO UPDATE SET
		lore = CASE WHEN ? THEN excluded.lore ELSE race_definitions.lore END,
		size = CASE WHEN ? THEN excluded.size ELSE race_definitions.size END,
		lifespan = CASE WHEN ? THEN excluded.lifespan ELSE race_definitions.lifespan END,
		languages = CASE WHEN ? THEN excluded.languages ELSE race_definitions.languages END`

	_, err := q.q.ExecContext(ctx, query,
		raceID, patch.Lore.Value, patch.Size.Value, patch.Lifespan.Value, patch.Languages.Value,
		patch.Lore.Set, patch.Size.Set, patch.Lifespan.Set, patch.Languages.Set,
	)
	return classify(err)
}

// UpsertRaceAttributes inserts or patches race ability scores in one statement
func (q queries) UpsertRaceAttributes(ctx context.Context, raceID int64, patch RaceAttributesPatch) error {
	query := `INSERT INTO race_attributes
		(race_id, strength, dexterity, constitution, intelligence, wisdom, charisma, speed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(race_id) DO UPDATE SET
		strength = CASE WHEN ? THEN excluded.strength ELSE race_attributes.strength END,
		dexterity = CASE WHEN ? THEN excluded.dexterity ELSE race_attributes.dexterity END,
		constitution = CASE WHEN ? THEN excluded.constitution ELSE race_attributes.constitution END,
		intelligence = CASE WHEN ? THEN excluded.intelligence ELSE race_attributes.intelligence END,
		wisdom = CASE WHEN ? THEN excluded.wisdom ELSE race_attributes.wisdom END,
		charisma = CASE WHEN ? THEN excluded.charisma ELSE race_attributes.charisma END,
		speed = CASE WHEN ? THEN excluded.speed ELSE race_attributes.speed END`

	p := patch
	_, err := q.q.ExecContext(ctx, query,
		raceID, p.Strength.Value, p.Dexterity.Value, p.Constitution.Value,
		p.Intelligence.Value, p.Wisdom.Value, p.Charisma.Value, p.Speed.Value,
		p.Strength.Set, p.Dexterity.Set, p.Constitution.Set,
		p.Intelligence.Set, p.Wisdom.Set, p.Charisma.Set, p.Speed.Set,
	)
	return classify(err)
}

// ReplaceBonusSkills swaps a race's bonus skills for the given list; slot i holds list[i]
func (tx *Tx) ReplaceBonusSkills(ctx context.Context, raceID int64, list []BonusSkillInput) error {
	if _, err := tx.q.ExecContext(ctx, `DELETE FROM race_bonus_skills WHERE race_id = ?`, raceID); err != nil {
		return fmt.Errorf("failed to clear bonus skills: %w", err)
	}

	query := `INSERT INTO race_bonus_skills (race_id, slot_index, skill_id, points) VALUES (?, ?, ?, ?)`
	for i, s := range list {
		if _, err := tx.q.ExecContext(ctx, query, raceID, i, s.SkillID, s.Points); err != nil {
			return classify(err)
		}
	}
	return nil
}

// ReplaceSpecialAbilities swaps a race's special abilities for the given ids
func (tx *Tx) ReplaceSpecialAbilities(ctx context.Context, raceID int64, abilityIDs []int64) error {
	if _, err := tx.q.ExecContext(ctx, `DELETE FROM race_special_abilities WHERE race_id = ?`, raceID); err != nil {
		return fmt.Errorf("failed to clear special abilities: %w", err)
	}

	query := `INSERT INTO race_special_abilities (race_id, slot_index, special_ability_id) VALUES (?, ?, ?)`
	for i, id := range abilityIDs {
		if _, err := tx.q.ExecContext(ctx, query, raceID, i, id); err != nil {
			return classify(err)
		}
	}
	return nil
}

// Race hydrates one race, or returns ErrNotFound
func (q queries) Race(ctx context.Context, id int64) (*Race, error) {
	races, err := q.hydrateRaces(ctx, `r.id = ?`, []any{id})
	if err != nil {
		return nil, err
	}
	if len(races) == 0 {
		return nil, ErrNotFound
	}
	return races[0], nil
}

// Races hydrates every race matching the filter, ordered by name
func (q queries) Races(ctx context.Context, filter CatalogFilter) ([]*Race, error) {
	where := `(? = '' OR r.name LIKE '%' || ? || '%' ESCAPE '\') AND (? = '' OR r.created_by_id = ?)`
	return q.hydrateRaces(ctx, where, filter.args())
}

// hydrateRaces loads races selected by a fixed where fragment and their children
func (q queries) hydrateRaces(ctx context.Context, where string, args []any) ([]*Race, error) {
	races := []*Race{}
	byID := make(map[int64]*Race)

	query := `SELECT r.id, r.name, r.description, r.created_by_id, r.created_at, r.updated_at
		FROM races r WHERE ` + where + ` ORDER BY r.name COLLATE NOCASE, r.id`
	err := q.each(ctx, query, args, func(rows *sql.Rows) error {
		r := &Race{BonusSkills: []RaceBonusSkill{}, SpecialAbilities: []RaceSpecialSlot{}}
		var createdBy sql.NullString
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &createdBy, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return err
		}
		if createdBy.Valid {
			r.CreatedByID = &createdBy.String
		}
		races = append(races, r)
		byID[r.ID] = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("hydrate races: %w", err)
	}
	if len(races) == 0 {
		return races, nil
	}

	subset := `SELECT r.id FROM races r WHERE ` + where

	query = `SELECT race_id, lore, size, lifespan, languages FROM race_definitions
		WHERE race_id IN (` + subset + `)`
	err = q.each(ctx, query, args, func(rows *sql.Rows) error {
		var raceID int64
		d := &RaceDefinition{}
		if err := rows.Scan(&raceID, &d.Lore, &d.Size, &d.Lifespan, &d.Languages); err != nil {
			return err
		}
		if r, ok := byID[raceID]; ok {
			r.Definition = d
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("hydrate race definitions: %w", err)
	}

	query = `SELECT race_id, strength, dexterity, constitution, intelligence, wisdom, charisma, speed
		FROM race_attributes WHERE race_id IN (` + subset + `)`
	err = q.each(ctx, query, args, func(rows *sql.Rows) error {
		var raceID int64
		var str, dex, con, intl, wis, cha, speed sql.NullInt64
		if err := rows.Scan(&raceID, &str, &dex, &con, &intl, &wis, &cha, &speed); err != nil {
			return err
		}
		if r, ok := byID[raceID]; ok {
			r.Attributes = &RaceAttributes{
				Strength:     intPtr(str),
				Dexterity:    intPtr(dex),
				Constitution: intPtr(con),
				Intelligence: intPtr(intl),
				Wisdom:       intPtr(wis),
				Charisma:     intPtr(cha),
				Speed:        intPtr(speed),
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("hydrate race attributes: %w", err)
	}

	query = `SELECT b.race_id, b.slot_index, b.skill_id, s.name, b.points
		FROM race_bonus_skills b JOIN skills s ON s.id = b.skill_id
		WHERE b.race_id IN (` + subset + `) ORDER BY b.race_id, b.slot_index`
	err = q.each(ctx, query, args, func(rows *sql.Rows) error {
		var raceID int64
		var b RaceBonusSkill
		var points sql.NullInt64
		if err := rows.Scan(&raceID, &b.SlotIndex, &b.SkillID, &b.SkillName, &points); err != nil {
			return err
		}
		b.Points = intPtr(points)
		if r, ok := byID[raceID]; ok {
			r.BonusSkills = append(r.BonusSkills, b)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("hydrate race bonus skills: %w", err)
	}

	query = `SELECT a.race_id, a.slot_index, a.special_ability_id, s.name
		FROM race_special_abilities a JOIN special_abilities s ON s.id = a.special_ability_id
		WHERE a.race_id IN (` + subset + `) ORDER BY a.race_id, a.slot_index`
	err = q.each(ctx, query, args, func(rows *sql.Rows) error {
		var raceID int64
		var a RaceSpecialSlot
		if err := rows.Scan(&raceID, &a.SlotIndex, &a.SpecialAbilityID, &a.Name); err != nil {
			return err
		}
		if r, ok := byID[raceID]; ok {
			r.SpecialAbilities = append(r.SpecialAbilities, a)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("hydrate race special abilities: %w", err)
	}

	return races, nil
}
