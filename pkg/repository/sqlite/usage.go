package sqlite

import (
	"context"
	"database/sql"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memvault/memvault/pkg/domain/types"
)

type usageRepository struct {
	db *sql.DB
}

func (r *usageRepository) IncrementShare(ctx context.Context, id types.MemeID) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO share_counts (meme_id, count) VALUES (?, 1)
		 ON CONFLICT(meme_id) DO UPDATE SET count = count + 1
		 RETURNING count`,
		id.String()).Scan(&count)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to increment share count", goerr.V("id", id))
	}
	return count, nil
}

func (r *usageRepository) GetShareCounts(ctx context.Context) (map[types.MemeID]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT meme_id, count FROM share_counts`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query share counts")
	}
	defer rows.Close()

	result := make(map[types.MemeID]int64)
	for rows.Next() {
		var id string
		var count int64
		if err := rows.Scan(&id, &count); err != nil {
			return nil, goerr.Wrap(err, "failed to scan share count row")
		}
		result[types.MemeID(id)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate share count rows")
	}
	return result, nil
}
