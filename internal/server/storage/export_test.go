package storage

import (
	"context"
	"fmt"
)

// OrderIndexes returns the order_index values of a group in display order
func (q queries) OrderIndexes(ctx context.Context, g Group, parent ...any) ([]int, error) {
	query := fmt.Sprintf("SELECT order_index FROM %s WHERE %s ORDER BY order_index ASC, id ASC", g.table, g.where())

	rows, err := q.q.QueryContext(ctx, query, parent...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	indexes := []int{}
	for rows.Next() {
		var idx int
		if err := rows.Scan(&idx); err != nil {
			return nil, err
		}
		indexes = append(indexes, idx)
	}
	return indexes, rows.Err()
}
