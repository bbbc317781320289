package service

import (
	"context"
	"errors"
	"strings"

	"worldforge/internal/server/core"
	"worldforge/internal/server/storage"
)

// GetRace returns one hydrated race
func (s *Service) GetRace(ctx context.Context, id int64) (*storage.Race, error) {
	race, err := s.store.Race(ctx, id)
	if err != nil {
		return nil, storeError(err, "race")
	}
	return race, nil
}

// ListRaces returns the races matching the filter
func (s *Service) ListRaces(ctx context.Context, filter storage.CatalogFilter) ([]*storage.Race, error) {
	races, err := s.store.Races(ctx, filter)
	if err != nil {
		return nil, storeError(err, "race")
	}
	return races, nil
}

// CreateRace inserts a race with any details supplied, all in one transaction
func (s *Service) CreateRace(ctx context.Context, userID string, req core.RaceRequest) (*storage.Race, error) {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, core.Validation("validation failed", "name is required")
	}

	var race *storage.Race
	err := s.store.WithTx(ctx, func(tx *storage.Tx) error {
		record := storage.RaceRecord{
			Name:        strings.TrimSpace(*req.Name),
			CreatedByID: userID,
		}
		if req.Description != nil {
			record.Description = strings.TrimSpace(*req.Description)
		}

		id, err := tx.InsertRace(ctx, record)
		if err != nil {
			return ownerError(err, "race")
		}
		if err := applyRaceDetails(ctx, tx, id, req); err != nil {
			return err
		}
		race, err = tx.Race(ctx, id)
		return err
	})
	if err != nil {
		return nil, storeError(err, "race")
	}
	return race, nil
}

// UpdateRace patches a race. Lists present in the request replace the stored
// lists; a failure anywhere leaves the race untouched.
func (s *Service) UpdateRace(ctx context.Context, id int64, req core.RaceRequest) (*storage.Race, error) {
	var race *storage.Race
	err := s.store.WithTx(ctx, func(tx *storage.Tx) error {
		patch := storage.RacePatch{
			Name:        optText(req.Name),
			Description: optText(req.Description),
		}
		if err := tx.UpdateRace(ctx, id, patch); err != nil {
			return storeError(err, "race")
		}
		if err := applyRaceDetails(ctx, tx, id, req); err != nil {
			return err
		}
		var err error
		race, err = tx.Race(ctx, id)
		return err
	})
	if err != nil {
		return nil, storeError(err, "race")
	}
	return race, nil
}

// DeleteRace removes a race with its definition, attributes and slots
func (s *Service) DeleteRace(ctx context.Context, id int64) (core.Deleted, error) {
	if err := s.store.DeleteRace(ctx, id); err != nil {
		return core.Deleted{}, storeError(err, "race")
	}
	return core.Deleted{ID: id}, nil
}

func applyRaceDetails(ctx context.Context, tx *storage.Tx, raceID int64, req core.RaceRequest) error {
	if d := req.Definition; d != nil {
		patch := storage.RaceDefinitionPatch{
			Lore:      optText(d.Lore),
			Size:      optText(d.Size),
			Lifespan:  optText(d.Lifespan),
			Languages: optText(d.Languages),
		}
		if err := tx.UpsertRaceDefinition(ctx, raceID, patch); err != nil {
			return storeError(err, "race")
		}
	}

	if a := req.Attributes; a != nil {
		patch := storage.RaceAttributesPatch{
			Strength:     optInt(a.Strength),
			Dexterity:    optInt(a.Dexterity),
			Constitution: optInt(a.Constitution),
			Intelligence: optInt(a.Intelligence),
			Wisdom:       optInt(a.Wisdom),
			Charisma:     optInt(a.Charisma),
			Speed:        optInt(a.Speed),
		}
		if err := tx.UpsertRaceAttributes(ctx, raceID, patch); err != nil {
			return storeError(err, "race")
		}
	}

	if req.BonusSkills != nil {
		list := make([]storage.BonusSkillInput, len(*req.BonusSkills))
		for i, b := range *req.BonusSkills {
			list[i] = storage.BonusSkillInput{SkillID: b.SkillID.Int64(), Points: b.Points.Ptr()}
		}
		if err := tx.ReplaceBonusSkills(ctx, raceID, list); err != nil {
			return slotError(err, "skill")
		}
	}

	if req.SpecialAbilities != nil {
		ids := make([]int64, len(*req.SpecialAbilities))
		for i, id := range *req.SpecialAbilities {
			ids[i] = id.Int64()
		}
		if err := tx.ReplaceSpecialAbilities(ctx, raceID, ids); err != nil {
			return slotError(err, "special ability")
		}
	}

	return nil
}

// slotError names the missing catalog row when a slot references an unknown id
func slotError(err error, what string) error {
	if errors.Is(err, storage.ErrInvalidReference) {
		nf := core.NotFound(what)
		nf.Err = err
		return nf
	}
	return storeError(err, "race")
}
