package storage

import (
	"context"
	"fmt"
	"strings"
)

// Group identifies a family of ordered siblings. Table and column names are
// compile-time constants; no group is ever built from request input.
type Group struct {
	table  string
	parent []string
}

// Sibling groups whose members carry a dense, zero-based order_index
var (
	GroupEras        = Group{table: "eras", parent: []string{"world_id"}}
	GroupGovernments = Group{table: "era_governments", parent: []string{"era_id"}}
	GroupRegions     = Group{table: "era_regions", parent: []string{"government_id"}}
	GroupCurrencies  = Group{table: "era_currencies", parent: []string{"region_id"}}
	GroupCatalog     = Group{table: "era_catalog_entries", parent: []string{"era_id", "kind"}}
	GroupCatalysts   = Group{table: "era_catalysts", parent: []string{"era_id"}}
)

func (g Group) where() string {
	clauses := make([]string, len(g.parent))
	for i, col := range g.parent {
		clauses[i] = col + " = ?"
	}
	return strings.Join(clauses, " AND ")
}

// appendIndex is the subquery that yields the next free index of a group
func (g Group) appendIndex() string {
	return fmt.Sprintf("(SELECT COALESCE(MAX(order_index), -1) + 1 FROM %s WHERE %s)", g.table, g.where())
}

// parentOf returns the group key values of a member
func (q queries) parentOf(ctx context.Context, g Group, id int64) ([]any, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", strings.Join(g.parent, ", "), g.table)

	values := make([]any, len(g.parent))
	ptrs := make([]any, len(g.parent))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := q.q.QueryRowContext(ctx, query, id).Scan(ptrs...); err != nil {
		return nil, classify(err)
	}
	return values, nil
}

// orderedIDs reads the group members in display order
func (q queries) orderedIDs(ctx context.Context, g Group, parent []any) ([]int64, error) {
	query := fmt.Sprintf("SELECT id FROM %s WHERE %s ORDER BY order_index ASC, id ASC", g.table, g.where())

	rows, err := q.q.QueryContext(ctx, query, parent...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// writeOrder assigns index i to ids[i]
func (q queries) writeOrder(ctx context.Context, g Group, ids []int64) error {
	query := fmt.Sprintf("UPDATE %s SET order_index = ? WHERE id = ?", g.table)
	for i, id := range ids {
		if _, err := q.q.ExecContext(ctx, query, i, id); err != nil {
			return fmt.Errorf("failed to reorder %s: %w", g.table, err)
		}
	}
	return nil
}

// Renumber rewrites a group to 0..n-1, preserving relative order
func (tx *Tx) Renumber(ctx context.Context, g Group, parent ...any) error {
	if len(parent) != len(g.parent) {
		return fmt.Errorf("renumber %s: want %d key values, got %d", g.table, len(g.parent), len(parent))
	}
	ids, err := tx.orderedIDs(ctx, g, parent)
	if err != nil {
		return err
	}
	return tx.writeOrder(ctx, g, ids)
}

// Move swaps a member with its neighbour one step earlier (dir < 0) or later
// (dir > 0). At either boundary nothing is written and moved is false.
func (tx *Tx) Move(ctx context.Context, g Group, id int64, dir int) (moved bool, err error) {
	parent, err := tx.parentOf(ctx, g, id)
	if err != nil {
		return false, err
	}

	ids, err := tx.orderedIDs(ctx, g, parent)
	if err != nil {
		return false, err
	}

	pos := -1
	for i, memberID := range ids {
		if memberID == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return false, ErrNotFound
	}

	step := 1
	if dir < 0 {
		step = -1
	}
	target := pos + step
	if target < 0 || target >= len(ids) {
		return false, nil
	}

	ids[pos], ids[target] = ids[target], ids[pos]
	if err := tx.writeOrder(ctx, g, ids); err != nil {
		return false, err
	}
	return true, nil
}
