package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// ColumnKind is the storage type of a catalog column
type ColumnKind int

const (
	ColumnText ColumnKind = iota
	ColumnInt
	ColumnReal
)

// Column maps one catalog table column to its JSON field
type Column struct {
	Name     string
	Field    string
	Kind     ColumnKind
	Required bool
}

// CatalogTable describes a flat catalog resource. Statements are rendered once
// from the column constants and never from request keys.
type CatalogTable struct {
	Resource string
	Table    string
	Columns  []Column

	insertSQL string
	updateSQL string
	selectSQL string
}

// CatalogItem is one row of a flat catalog table keyed by JSON field name
type CatalogItem map[string]any

var (
	Creatures = newCatalogTable("creatures", "creatures",
		Column{Name: "habitat", Field: "habitat", Kind: ColumnText},
		Column{Name: "challenge_rating", Field: "challengeRating", Kind: ColumnReal},
	)
	Items = newCatalogTable("items", "items",
		Column{Name: "item_type", Field: "itemType", Kind: ColumnText},
		Column{Name: "weight", Field: "weight", Kind: ColumnReal},
		Column{Name: "cost", Field: "cost", Kind: ColumnInt},
	)
	Skills = newCatalogTable("skills", "skills",
		Column{Name: "attribute", Field: "attribute", Kind: ColumnText},
	)
	Armors = newCatalogTable("armors", "armors",
		Column{Name: "armor_type", Field: "armorType", Kind: ColumnText},
		Column{Name: "armor_class", Field: "armorClass", Kind: ColumnInt},
		Column{Name: "weight", Field: "weight", Kind: ColumnReal},
		Column{Name: "cost", Field: "cost", Kind: ColumnInt},
	)
	MagicBuilds = newCatalogTable("magic-builds", "magic_builds",
		Column{Name: "school", Field: "school", Kind: ColumnText},
		Column{Name: "power_cost", Field: "powerCost", Kind: ColumnInt},
	)
	SpecialAbilities = newCatalogTable("special-abilities", "special_abilities",
		Column{Name: "ability_type", Field: "abilityType", Kind: ColumnText},
	)
)

// CatalogTables lists the flat catalog resources in route order
var CatalogTables = []*CatalogTable{Creatures, Items, Skills, Armors, MagicBuilds, SpecialAbilities}

func newCatalogTable(resource, table string, extra ...Column) *CatalogTable {
	cols := append([]Column{
		{Name: "name", Field: "name", Kind: ColumnText, Required: true},
		{Name: "description", Field: "description", Kind: ColumnText},
	}, extra...)

	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	sets := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
		marks[i] = "?"
		sets[i] = fmt.Sprintf("%s = CASE WHEN ? THEN ? ELSE %s END", c.Name, c.Name)
	}

	return &CatalogTable{
		Resource: resource,
		Table:    table,
		Columns:  cols,
		insertSQL: fmt.Sprintf(`INSERT INTO %s (%s, created_by_id) VALUES (%s, ?)`,
			table, strings.Join(names, ", "), strings.Join(marks, ", ")),
		updateSQL: fmt.Sprintf(`UPDATE %s SET %s, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			table, strings.Join(sets, ", ")),
		selectSQL: fmt.Sprintf(`SELECT id, %s, created_by_id, created_at, updated_at FROM %s`,
			strings.Join(names, ", "), table),
	}
}

// Column returns the column bound to a JSON field
func (t *CatalogTable) Column(field string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Field == field {
			return c, true
		}
	}
	return Column{}, false
}

// InsertCatalogItem creates a row from values keyed by column name; absent columns take their zero value
func (q queries) InsertCatalogItem(ctx context.Context, t *CatalogTable, createdBy string, values map[string]any) (int64, error) {
	args := make([]any, 0, len(t.Columns)+1)
	for _, c := range t.Columns {
		v, ok := values[c.Name]
		if !ok && c.Kind == ColumnText {
			v = ""
		}
		args = append(args, v)
	}
	args = append(args, nullString(createdBy))
	return insertID(q.q.ExecContext(ctx, t.insertSQL, args...))
}

// UpdateCatalogItem writes only the columns present in values
func (q queries) UpdateCatalogItem(ctx context.Context, t *CatalogTable, id int64, values map[string]any) error {
	args := make([]any, 0, 2*len(t.Columns)+1)
	for _, c := range t.Columns {
		v, ok := values[c.Name]
		args = append(args, ok, v)
	}
	args = append(args, id)
	return expectRows(q.q.ExecContext(ctx, t.updateSQL, args...))
}

// DeleteCatalogItem removes a row. Rows still referenced by a race slot
// fail with ErrInvalidReference.
func (q queries) DeleteCatalogItem(ctx context.Context, t *CatalogTable, id int64) error {
	return expectRows(q.q.ExecContext(ctx, `DELETE FROM `+t.Table+` WHERE id = ?`, id))
}

// CatalogItem reads one row or returns ErrNotFound
func (q queries) CatalogItem(ctx context.Context, t *CatalogTable, id int64) (CatalogItem, error) {
	items, err := q.catalogItems(ctx, t, t.selectSQL+` WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items[0], nil
}

// CatalogItems lists the rows matching the filter, ordered by name
func (q queries) CatalogItems(ctx context.Context, t *CatalogTable, filter CatalogFilter) ([]CatalogItem, error) {
	query := t.selectSQL + ` WHERE ` + nameFilter + ` ORDER BY name COLLATE NOCASE, id`
	return q.catalogItems(ctx, t, query, filter.args()...)
}

func (q queries) catalogItems(ctx context.Context, t *CatalogTable, query string, args ...any) ([]CatalogItem, error) {
	items := []CatalogItem{}
	err := q.each(ctx, query, args, func(rows *sql.Rows) error {
		var (
			id                   int64
			createdBy            sql.NullString
			createdAt, updatedAt time.Time
		)
		dest := make([]any, 0, len(t.Columns)+4)
		dest = append(dest, &id)
		for _, c := range t.Columns {
			switch c.Kind {
			case ColumnInt:
				dest = append(dest, new(sql.NullInt64))
			case ColumnReal:
				dest = append(dest, new(sql.NullFloat64))
			default:
				dest = append(dest, new(string))
			}
		}
		dest = append(dest, &createdBy, &createdAt, &updatedAt)
		if err := rows.Scan(dest...); err != nil {
			return err
		}

		item := CatalogItem{"id": id, "createdAt": createdAt, "updatedAt": updatedAt, "createdById": nil}
		if createdBy.Valid {
			item["createdById"] = createdBy.String
		}
		for i, c := range t.Columns {
			switch v := dest[i+1].(type) {
			case *sql.NullInt64:
				item[c.Field] = intPtr(*v)
			case *sql.NullFloat64:
				item[c.Field] = floatPtr(*v)
			case *string:
				item[c.Field] = *v
			}
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.Resource, err)
	}
	return items, nil
}
