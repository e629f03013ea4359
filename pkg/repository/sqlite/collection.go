package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memvault/memvault/pkg/domain/model"
	"github.com/memvault/memvault/pkg/repository"
)

type collectionRepository struct {
	db *sql.DB
}

func (r *collectionRepository) GetAll(ctx context.Context) ([]*model.Collection, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT doc FROM collections ORDER BY created_at ASC`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query collections")
	}
	defer rows.Close()

	var result []*model.Collection
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to scan collection row")
		}
		var c model.Collection
		if err := json.Unmarshal([]byte(doc), &c); err != nil {
			return nil, goerr.Wrap(err, "failed to decode collection")
		}
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate collection rows")
	}
	if result == nil {
		result = []*model.Collection{}
	}
	return result, nil
}

func (r *collectionRepository) Get(ctx context.Context, id string) (*model.Collection, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, `SELECT doc FROM collections WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(repository.ErrCollectionNotFound, "collection not found", goerr.V("id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query collection", goerr.V("id", id))
	}

	var c model.Collection
	if err := json.Unmarshal([]byte(doc), &c); err != nil {
		return nil, goerr.Wrap(err, "failed to decode collection", goerr.V("id", id))
	}
	return &c, nil
}

func (r *collectionRepository) Put(ctx context.Context, collection *model.Collection) error {
	doc, err := json.Marshal(collection)
	if err != nil {
		return goerr.Wrap(err, "failed to encode collection", goerr.V("id", collection.ID))
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO collections (id, created_at, doc) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET doc = excluded.doc`,
		collection.ID, collection.CreatedAt.Format(time.RFC3339Nano), string(doc))
	if err != nil {
		return goerr.Wrap(err, "failed to write collection", goerr.V("id", collection.ID))
	}
	return nil
}

func (r *collectionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM collections WHERE id = ?`, id)
	if err != nil {
		return goerr.Wrap(err, "failed to delete collection", goerr.V("id", id))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to check delete result", goerr.V("id", id))
	}
	if affected == 0 {
		return goerr.Wrap(repository.ErrCollectionNotFound, "collection not found", goerr.V("id", id))
	}
	return nil
}
