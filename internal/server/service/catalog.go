package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"worldforge/internal/server/core"
	"worldforge/internal/server/storage"
)

// readOnlyFields are echoed back by clients but never written
var readOnlyFields = map[string]bool{
	"id":          true,
	"createdById": true,
	"createdAt":   true,
	"updatedAt":   true,
}

// ListCatalog returns the rows of a flat catalog matching the filter
func (s *Service) ListCatalog(ctx context.Context, t *storage.CatalogTable, filter storage.CatalogFilter) ([]storage.CatalogItem, error) {
	items, err := s.store.CatalogItems(ctx, t, filter)
	if err != nil {
		return nil, storeError(err, entityName(t))
	}
	return items, nil
}

// GetCatalogItem returns one row of a flat catalog
func (s *Service) GetCatalogItem(ctx context.Context, t *storage.CatalogTable, id int64) (storage.CatalogItem, error) {
	item, err := s.store.CatalogItem(ctx, t, id)
	if err != nil {
		return nil, storeError(err, entityName(t))
	}
	return item, nil
}

// CreateCatalogItem inserts a row built from the request fields
func (s *Service) CreateCatalogItem(ctx context.Context, userID string, t *storage.CatalogTable, fields core.CatalogFields) (storage.CatalogItem, error) {
	values, err := catalogValues(t, fields, true)
	if err != nil {
		return nil, err
	}

	id, err := s.store.InsertCatalogItem(ctx, t, userID, values)
	if err != nil {
		return nil, ownerError(err, entityName(t))
	}
	return s.GetCatalogItem(ctx, t, id)
}

// UpdateCatalogItem writes the supplied fields of a row
func (s *Service) UpdateCatalogItem(ctx context.Context, t *storage.CatalogTable, id int64, fields core.CatalogFields) (storage.CatalogItem, error) {
	values, err := catalogValues(t, fields, false)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateCatalogItem(ctx, t, id, values); err != nil {
		return nil, storeError(err, entityName(t))
	}
	return s.GetCatalogItem(ctx, t, id)
}

// DeleteCatalogItem removes a row. Rows still used by a race are refused with a conflict.
func (s *Service) DeleteCatalogItem(ctx context.Context, t *storage.CatalogTable, id int64) (core.Deleted, error) {
	err := s.store.DeleteCatalogItem(ctx, t, id)
	if errors.Is(err, storage.ErrInvalidReference) {
		return core.Deleted{}, core.Conflict(entityName(t)+" is still used by a race", err)
	}
	if err != nil {
		return core.Deleted{}, storeError(err, entityName(t))
	}
	return core.Deleted{ID: id}, nil
}

// catalogValues converts a request body into column values. Unknown fields
// are rejected; numeric fields follow the null coercion rules.
func catalogValues(t *storage.CatalogTable, fields core.CatalogFields, create bool) (map[string]any, error) {
	var problems []string
	values := make(map[string]any, len(fields))

	for field, raw := range fields {
		if readOnlyFields[field] {
			continue
		}
		col, ok := t.Column(field)
		if !ok {
			problems = append(problems, fmt.Sprintf("%s is not a known field", field))
			continue
		}

		switch col.Kind {
		case storage.ColumnInt:
			if n, ok := core.CoerceInt(raw); ok {
				values[col.Name] = &n
			} else {
				values[col.Name] = (*int64)(nil)
			}
		case storage.ColumnReal:
			if f, ok := core.CoerceFloat(raw); ok {
				values[col.Name] = &f
			} else {
				values[col.Name] = (*float64)(nil)
			}
		default:
			text, err := core.CoerceText(raw)
			if err != nil {
				problems = append(problems, fmt.Sprintf("%s %v", field, err))
				continue
			}
			if col.Required && text == "" {
				problems = append(problems, fmt.Sprintf("%s is required", field))
				continue
			}
			values[col.Name] = text
		}
	}

	if create {
		for _, col := range t.Columns {
			if _, ok := fields[col.Field]; col.Required && !ok {
				problems = append(problems, fmt.Sprintf("%s is required", col.Field))
			}
		}
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return nil, core.Validation("validation failed", strings.Join(problems, "; "))
	}
	return values, nil
}

// entityName turns "magic_builds" into "magic build"
func entityName(t *storage.CatalogTable) string {
	name := strings.ReplaceAll(t.Table, "_", " ")
	switch {
	case strings.HasSuffix(name, "ies"):
		return strings.TrimSuffix(name, "ies") + "y"
	case strings.HasSuffix(name, "s"):
		return strings.TrimSuffix(name, "s")
	}
	return name
}
