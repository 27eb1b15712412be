package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"
)

// IDs runs a single-column select and returns the scanned ids.
func (s *Store) IDs(ctx context.Context, q sq.Sqlizer, kind string) ([]uint, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, translate(err, "scan", kind)
	}
	defer rows.Close()

	ids := []uint{}
	for rows.Next() {
		var id uint
		if err := rows.Scan(&id); err != nil {
			return nil, translate(err, "scan", kind)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "scan", kind)
	}
	return ids, nil
}
