package service

import (
	"context"
	"strings"

	"worldforge/internal/server/core"
	"worldforge/internal/server/storage"
)

// GetWorld returns one hydrated world
func (s *Service) GetWorld(ctx context.Context, id int64) (*storage.World, error) {
	world, err := s.store.World(ctx, id)
	if err != nil {
		return nil, storeError(err, "world")
	}
	return world, nil
}

// ListWorlds returns every hydrated world
func (s *Service) ListWorlds(ctx context.Context) ([]*storage.World, error) {
	worlds, err := s.store.Worlds(ctx)
	if err != nil {
		return nil, storeError(err, "world")
	}
	return worlds, nil
}

// CreateWorld inserts a world owned by userID
func (s *Service) CreateWorld(ctx context.Context, userID string, req core.CreateWorldRequest) (*storage.World, error) {
	var world *storage.World
	err := s.store.WithTx(ctx, func(tx *storage.Tx) error {
		id, err := tx.InsertWorld(ctx, storage.WorldRecord{
			Name:        strings.TrimSpace(req.Name),
			Description: strings.TrimSpace(req.Description),
			CreatedByID: userID,
		})
		if err != nil {
			return ownerError(err, "world")
		}
		world, err = tx.World(ctx, id)
		return err
	})
	if err != nil {
		return nil, storeError(err, "world")
	}
	return world, nil
}

// UpdateWorld patches a world's name and description
func (s *Service) UpdateWorld(ctx context.Context, req core.UpdateWorldRequest) (*storage.World, error) {
	id := req.ID.Int64()
	return s.withWorld(ctx,
		func(tx *storage.Tx) (int64, error) { return id, nil },
		func(tx *storage.Tx) error {
			patch := storage.WorldPatch{
				Name:        optText(req.Name),
				Description: optText(req.Description),
			}
			return storeError(tx.UpdateWorld(ctx, id, patch), "world")
		},
	)
}

// DeleteWorld removes a world and everything under it
func (s *Service) DeleteWorld(ctx context.Context, req core.IDRequest) (core.Deleted, error) {
	id := req.ID.Int64()
	if err := s.store.DeleteWorld(ctx, id); err != nil {
		return core.Deleted{}, storeError(err, "world")
	}
	return core.Deleted{ID: id}, nil
}

// CreateEra appends an era to a world's timeline
func (s *Service) CreateEra(ctx context.Context, req core.CreateEraRequest) (*storage.World, error) {
	worldID := req.WorldID.Int64()
	return s.withWorld(ctx,
		func(tx *storage.Tx) (int64, error) { return worldID, requireWorld(ctx, tx, worldID) },
		func(tx *storage.Tx) error {
			_, err := tx.InsertEra(ctx, storage.EraRecord{
				WorldID:     worldID,
				Name:        strings.TrimSpace(req.Name),
				Description: strings.TrimSpace(req.Description),
				StartYear:   req.StartYear.Ptr(),
				EndYear:     req.EndYear.Ptr(),
				Color:       strings.TrimSpace(req.Color),
			})
			return storeError(err, "world")
		},
	)
}

// UpdateEra patches an era; its position is left alone
func (s *Service) UpdateEra(ctx context.Context, req core.UpdateEraRequest) (*storage.World, error) {
	id := req.ID.Int64()
	return s.withWorld(ctx,
		func(tx *storage.Tx) (int64, error) {
			worldID, err := tx.EraWorldID(ctx, id)
			return worldID, storeError(err, "era")
		},
		func(tx *storage.Tx) error {
			patch := storage.EraPatch{
				Name:        optText(req.Name),
				Description: optText(req.Description),
				StartYear:   optInt(req.StartYear),
				EndYear:     optInt(req.EndYear),
				Color:       optText(req.Color),
			}
			return storeError(tx.UpdateEra(ctx, id, patch), "era")
		},
	)
}

// MoveEra swaps an era with its neighbour; at either end it changes nothing
func (s *Service) MoveEra(ctx context.Context, req core.MoveRequest) (*storage.World, error) {
	id := req.ID.Int64()
	return s.withWorld(ctx,
		func(tx *storage.Tx) (int64, error) {
			worldID, err := tx.EraWorldID(ctx, id)
			return worldID, storeError(err, "era")
		},
		func(tx *storage.Tx) error {
			_, err := tx.Move(ctx, storage.GroupEras, id, req.Dir)
			return storeError(err, "era")
		},
	)
}

// DeleteEra removes an era with its details and closes the gap in the timeline
func (s *Service) DeleteEra(ctx context.Context, req core.IDRequest) (*storage.World, error) {
	id := req.ID.Int64()
	var worldID int64
	return s.withWorld(ctx,
		func(tx *storage.Tx) (int64, error) {
			var err error
			worldID, err = tx.EraWorldID(ctx, id)
			return worldID, storeError(err, "era")
		},
		func(tx *storage.Tx) error {
			if err := tx.DeleteEra(ctx, id); err != nil {
				return storeError(err, "era")
			}
			return tx.Renumber(ctx, storage.GroupEras, worldID)
		},
	)
}

// CreateSetting adds a setting, optionally pinned to an era of the same world
func (s *Service) CreateSetting(ctx context.Context, req core.CreateSettingRequest) (*storage.World, error) {
	worldID := req.WorldID.Int64()
	return s.withWorld(ctx,
		func(tx *storage.Tx) (int64, error) { return worldID, requireWorld(ctx, tx, worldID) },
		func(tx *storage.Tx) error {
			if err := requireEraIn(ctx, tx, worldID, req.EraID); err != nil {
				return err
			}
			_, err := tx.InsertSetting(ctx, storage.SettingRecord{
				WorldID:     worldID,
				EraID:       req.EraID.Ptr(),
				Name:        strings.TrimSpace(req.Name),
				Description: strings.TrimSpace(req.Description),
				StartYear:   req.StartYear.Ptr(),
				EndYear:     req.EndYear.Ptr(),
			})
			return storeError(err, "setting")
		},
	)
}

// UpdateSetting patches a setting
func (s *Service) UpdateSetting(ctx context.Context, req core.UpdateSettingRequest) (*storage.World, error) {
	id := req.ID.Int64()
	var worldID int64
	return s.withWorld(ctx,
		func(tx *storage.Tx) (int64, error) {
			var err error
			worldID, err = tx.SettingWorldID(ctx, id)
			return worldID, storeError(err, "setting")
		},
		func(tx *storage.Tx) error {
			if err := requireEraIn(ctx, tx, worldID, req.EraID); err != nil {
				return err
			}
			patch := storage.SettingPatch{
				EraID:       optID(req.EraID),
				Name:        optText(req.Name),
				Description: optText(req.Description),
				StartYear:   optInt(req.StartYear),
				EndYear:     optInt(req.EndYear),
			}
			return storeError(tx.UpdateSetting(ctx, id, patch), "setting")
		},
	)
}

// DeleteSetting removes a setting
func (s *Service) DeleteSetting(ctx context.Context, req core.IDRequest) (*storage.World, error) {
	id := req.ID.Int64()
	return s.withWorld(ctx,
		func(tx *storage.Tx) (int64, error) {
			worldID, err := tx.SettingWorldID(ctx, id)
			return worldID, storeError(err, "setting")
		},
		func(tx *storage.Tx) error {
			return storeError(tx.DeleteSetting(ctx, id), "setting")
		},
	)
}

// CreateMarker adds a timeline marker
func (s *Service) CreateMarker(ctx context.Context, req core.CreateMarkerRequest) (*storage.World, error) {
	worldID := req.WorldID.Int64()
	return s.withWorld(ctx,
		func(tx *storage.Tx) (int64, error) { return worldID, requireWorld(ctx, tx, worldID) },
		func(tx *storage.Tx) error {
			if err := requireEraIn(ctx, tx, worldID, req.EraID); err != nil {
				return err
			}
			_, err := tx.InsertMarker(ctx, storage.MarkerRecord{
				WorldID:     worldID,
				EraID:       req.EraID.Ptr(),
				Name:        strings.TrimSpace(req.Name),
				Description: strings.TrimSpace(req.Description),
				Year:        req.Year.Ptr(),
			})
			return storeError(err, "marker")
		},
	)
}

// UpdateMarker patches a marker
func (s *Service) UpdateMarker(ctx context.Context, req core.UpdateMarkerRequest) (*storage.World, error) {
	id := req.ID.Int64()
	var worldID int64
	return s.withWorld(ctx,
		func(tx *storage.Tx) (int64, error) {
			var err error
			worldID, err = tx.MarkerWorldID(ctx, id)
			return worldID, storeError(err, "marker")
		},
		func(tx *storage.Tx) error {
			if err := requireEraIn(ctx, tx, worldID, req.EraID); err != nil {
				return err
			}
			patch := storage.MarkerPatch{
				EraID:       optID(req.EraID),
				Name:        optText(req.Name),
				Description: optText(req.Description),
				Year:        optInt(req.Year),
			}
			return storeError(tx.UpdateMarker(ctx, id, patch), "marker")
		},
	)
}

// DeleteMarker removes a marker
func (s *Service) DeleteMarker(ctx context.Context, req core.IDRequest) (*storage.World, error) {
	id := req.ID.Int64()
	return s.withWorld(ctx,
		func(tx *storage.Tx) (int64, error) {
			worldID, err := tx.MarkerWorldID(ctx, id)
			return worldID, storeError(err, "marker")
		},
		func(tx *storage.Tx) error {
			return storeError(tx.DeleteMarker(ctx, id), "marker")
		},
	)
}

// withWorld runs one mutation of a world subtree in a single transaction.
// owner resolves the world the target belongs to; fn performs the writes.
// The world's updated_at is bumped and the subtree re-read before commit.
func (s *Service) withWorld(ctx context.Context, owner func(*storage.Tx) (int64, error), fn func(*storage.Tx) error) (*storage.World, error) {
	var world *storage.World
	err := s.store.WithTx(ctx, func(tx *storage.Tx) error {
		worldID, err := owner(tx)
		if err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			return err
		}
		if err := tx.TouchWorld(ctx, worldID); err != nil {
			return storeError(err, "world")
		}
		world, err = tx.World(ctx, worldID)
		return err
	})
	if err != nil {
		return nil, storeError(err, "world")
	}
	return world, nil
}

func requireWorld(ctx context.Context, tx *storage.Tx, worldID int64) error {
	ok, err := tx.WorldExists(ctx, worldID)
	if err != nil {
		return core.Internal(err)
	}
	if !ok {
		return core.NotFound("world")
	}
	return nil
}

// requireEraIn checks that an era reference, when given, names an era of worldID
func requireEraIn(ctx context.Context, tx *storage.Tx, worldID int64, eraID core.NullID) error {
	if !eraID.Valid {
		return nil
	}
	owner, err := tx.EraWorldID(ctx, eraID.Int64)
	if err != nil {
		return storeError(err, "era")
	}
	if owner != worldID {
		return core.Validation("era belongs to another world", "eraId must reference an era of the same world")
	}
	return nil
}

func optText(p *string) storage.Opt[string] {
	if p == nil {
		return storage.Opt[string]{}
	}
	return storage.Some(strings.TrimSpace(*p))
}

func optInt(n core.NullInt) storage.Opt[*int64] {
	if !n.Set {
		return storage.Opt[*int64]{}
	}
	return storage.Some(n.Ptr())
}

func optID(n core.NullID) storage.Opt[*int64] {
	if !n.Set {
		return storage.Opt[*int64]{}
	}
	return storage.Some(n.Ptr())
}
