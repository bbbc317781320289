package service

import (
	"context"
	"strings"

	"worldforge/internal/server/core"
	"worldforge/internal/server/storage"
)

func (s *Service) eraOwner(ctx context.Context, eraID int64) func(*storage.Tx) (int64, error) {
	return func(tx *storage.Tx) (int64, error) {
		worldID, err := tx.EraWorldID(ctx, eraID)
		return worldID, storeError(err, "era")
	}
}

func (s *Service) governmentOwner(ctx context.Context, governmentID int64) func(*storage.Tx) (int64, error) {
	return func(tx *storage.Tx) (int64, error) {
		worldID, err := tx.GovernmentWorldID(ctx, governmentID)
		return worldID, storeError(err, "government")
	}
}

func (s *Service) regionOwner(ctx context.Context, regionID int64) func(*storage.Tx) (int64, error) {
	return func(tx *storage.Tx) (int64, error) {
		worldID, err := tx.RegionWorldID(ctx, regionID)
		return worldID, storeError(err, "region")
	}
}

// SaveEraBasicInfo upserts the era's narrative summary
func (s *Service) SaveEraBasicInfo(ctx context.Context, req core.SaveEraBasicInfoRequest) (*storage.World, error) {
	eraID := req.EraID.Int64()
	return s.withWorld(ctx, s.eraOwner(ctx, eraID), func(tx *storage.Tx) error {
		patch := storage.EraBasicInfoPatch{
			Summary: optText(req.Summary),
			Tone:    optText(req.Tone),
			Themes:  optText(req.Themes),
		}
		return storeError(tx.UpsertEraBasicInfo(ctx, eraID, patch), "era")
	})
}

// SaveEraBackdrop upserts the era's backdrop; a default setting must belong to the same world
func (s *Service) SaveEraBackdrop(ctx context.Context, req core.SaveEraBackdropRequest) (*storage.World, error) {
	eraID := req.EraID.Int64()
	owner := s.eraOwner(ctx, eraID)
	var worldID int64

	return s.withWorld(ctx,
		func(tx *storage.Tx) (int64, error) {
			var err error
			worldID, err = owner(tx)
			return worldID, err
		},
		func(tx *storage.Tx) error {
			if req.DefaultSettingID.Valid {
				settingWorld, err := tx.SettingWorldID(ctx, req.DefaultSettingID.Int64)
				if err != nil {
					return storeError(err, "setting")
				}
				if settingWorld != worldID {
					return core.Validation("setting belongs to another world", "defaultSettingId must reference a setting of the same world")
				}
			}
			patch := storage.EraBackdropPatch{
				Climate:          optText(req.Climate),
				TechnologyLevel:  optText(req.TechnologyLevel),
				MagicLevel:       optText(req.MagicLevel),
				DefaultSettingID: optID(req.DefaultSettingID),
			}
			return storeError(tx.UpsertEraBackdrop(ctx, eraID, patch), "era")
		},
	)
}

// SaveEraTrade upserts the era's trade summary
func (s *Service) SaveEraTrade(ctx context.Context, req core.SaveEraTradeRequest) (*storage.World, error) {
	eraID := req.EraID.Int64()
	return s.withWorld(ctx, s.eraOwner(ctx, eraID), func(tx *storage.Tx) error {
		patch := storage.EraTradePatch{
			Summary: optText(req.Summary),
			Exports: optText(req.Exports),
			Imports: optText(req.Imports),
		}
		return storeError(tx.UpsertEraTrade(ctx, eraID, patch), "era")
	})
}

// CreateGovernment appends a government to an era
func (s *Service) CreateGovernment(ctx context.Context, req core.CreateGovernmentRequest) (*storage.World, error) {
	eraID := req.EraID.Int64()
	return s.withWorld(ctx, s.eraOwner(ctx, eraID), func(tx *storage.Tx) error {
		_, err := tx.InsertGovernment(ctx, eraID, strings.TrimSpace(req.Name), strings.TrimSpace(req.Description))
		return storeError(err, "era")
	})
}

// UpdateGovernment patches a government
func (s *Service) UpdateGovernment(ctx context.Context, req core.UpdateNamedRequest) (*storage.World, error) {
	id := req.ID.Int64()
	return s.withWorld(ctx, s.governmentOwner(ctx, id), func(tx *storage.Tx) error {
		patch := storage.NamedPatch{Name: optText(req.Name), Description: optText(req.Description)}
		return storeError(tx.UpdateGovernment(ctx, id, patch), "government")
	})
}

// MoveGovernment swaps a government with its neighbour within the era
func (s *Service) MoveGovernment(ctx context.Context, req core.MoveRequest) (*storage.World, error) {
	id := req.ID.Int64()
	return s.withWorld(ctx, s.governmentOwner(ctx, id), func(tx *storage.Tx) error {
		_, err := tx.Move(ctx, storage.GroupGovernments, id, req.Dir)
		return storeError(err, "government")
	})
}

// DeleteGovernment removes a government with its regions and renumbers the rest
func (s *Service) DeleteGovernment(ctx context.Context, req core.IDRequest) (*storage.World, error) {
	id := req.ID.Int64()
	return s.withWorld(ctx, s.governmentOwner(ctx, id), func(tx *storage.Tx) error {
		eraID, err := tx.GovernmentEraID(ctx, id)
		if err != nil {
			return storeError(err, "government")
		}
		if err := tx.DeleteGovernment(ctx, id); err != nil {
			return storeError(err, "government")
		}
		return tx.Renumber(ctx, storage.GroupGovernments, eraID)
	})
}

// CreateRegion appends a region to a government
func (s *Service) CreateRegion(ctx context.Context, req core.CreateRegionRequest) (*storage.World, error) {
	governmentID := req.GovernmentID.Int64()
	return s.withWorld(ctx, s.governmentOwner(ctx, governmentID), func(tx *storage.Tx) error {
		_, err := tx.InsertRegion(ctx, governmentID, strings.TrimSpace(req.Name), strings.TrimSpace(req.Description))
		return storeError(err, "government")
	})
}

// UpdateRegion patches a region
func (s *Service) UpdateRegion(ctx context.Context, req core.UpdateNamedRequest) (*storage.World, error) {
	id := req.ID.Int64()
	return s.withWorld(ctx, s.regionOwner(ctx, id), func(tx *storage.Tx) error {
		patch := storage.NamedPatch{Name: optText(req.Name), Description: optText(req.Description)}
		return storeError(tx.UpdateRegion(ctx, id, patch), "region")
	})
}

// MoveRegion swaps a region with its neighbour within the government
func (s *Service) MoveRegion(ctx context.Context, req core.MoveRequest) (*storage.World, error) {
	id := req.ID.Int64()
	return s.withWorld(ctx, s.regionOwner(ctx, id), func(tx *storage.Tx) error {
		_, err := tx.Move(ctx, storage.GroupRegions, id, req.Dir)
		return storeError(err, "region")
	})
}

// DeleteRegion removes a region with its currencies and renumbers the rest
func (s *Service) DeleteRegion(ctx context.Context, req core.IDRequest) (*storage.World, error) {
	id := req.ID.Int64()
	return s.withWorld(ctx, s.regionOwner(ctx, id), func(tx *storage.Tx) error {
		governmentID, err := tx.RegionGovernmentID(ctx, id)
		if err != nil {
			return storeError(err, "region")
		}
		if err := tx.DeleteRegion(ctx, id); err != nil {
			return storeError(err, "region")
		}
		return tx.Renumber(ctx, storage.GroupRegions, governmentID)
	})
}

// ReplaceCurrencies swaps a region's denominations for the submitted list
func (s *Service) ReplaceCurrencies(ctx context.Context, req core.ReplaceCurrenciesRequest) (*storage.World, error) {
	if req.Currencies == nil {
		return nil, missingList("currencies")
	}
	regionID := req.RegionID.Int64()
	return s.withWorld(ctx, s.regionOwner(ctx, regionID), func(tx *storage.Tx) error {
		list := make([]storage.CurrencyInput, len(*req.Currencies))
		for i, c := range *req.Currencies {
			list[i] = storage.CurrencyInput{Name: strings.TrimSpace(c.Name), Value: c.Value.Ptr()}
		}
		return storeError(tx.ReplaceCurrencies(ctx, regionID, list), "region")
	})
}

// ReplaceEraCatalog swaps one kind of the era catalog for the submitted list
func (s *Service) ReplaceEraCatalog(ctx context.Context, req core.ReplaceEraCatalogRequest) (*storage.World, error) {
	if req.Entries == nil {
		return nil, missingList("entries")
	}
	eraID := req.EraID.Int64()
	return s.withWorld(ctx, s.eraOwner(ctx, eraID), func(tx *storage.Tx) error {
		list := make([]storage.CatalogEntryInput, len(*req.Entries))
		for i, e := range *req.Entries {
			list[i] = storage.CatalogEntryInput{Name: strings.TrimSpace(e.Name), Notes: strings.TrimSpace(e.Notes)}
		}
		return storeError(tx.ReplaceCatalog(ctx, eraID, req.Kind, list), "era")
	})
}

// ReplaceCatalysts swaps the era's catalyst events for the submitted list
func (s *Service) ReplaceCatalysts(ctx context.Context, req core.ReplaceCatalystsRequest) (*storage.World, error) {
	if req.Catalysts == nil {
		return nil, missingList("catalysts")
	}
	eraID := req.EraID.Int64()
	return s.withWorld(ctx, s.eraOwner(ctx, eraID), func(tx *storage.Tx) error {
		list := make([]storage.CatalystInput, len(*req.Catalysts))
		for i, c := range *req.Catalysts {
			list[i] = storage.CatalystInput{
				Name:        strings.TrimSpace(c.Name),
				Description: strings.TrimSpace(c.Description),
				Year:        c.Year.Ptr(),
			}
		}
		return storeError(tx.ReplaceCatalysts(ctx, eraID, list), "era")
	})
}

// missingList rejects a replace whose list key was left out; an empty list is explicit
func missingList(field string) error {
	return core.Validation("validation failed", field+" is required")
}
