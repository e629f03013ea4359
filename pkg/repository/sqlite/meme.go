package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memvault/memvault/pkg/domain/model"
	"github.com/memvault/memvault/pkg/domain/types"
	"github.com/memvault/memvault/pkg/repository"
)

type memeRepository struct {
	db *sql.DB
}

func (r *memeRepository) GetAll(ctx context.Context) ([]*model.Meme, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT doc FROM memes ORDER BY pos ASC`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query memes")
	}
	defer rows.Close()

	var result []*model.Meme
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to scan meme row")
		}
		var m model.Meme
		if err := json.Unmarshal([]byte(doc), &m); err != nil {
			return nil, goerr.Wrap(err, "failed to decode meme record")
		}
		result = append(result, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate meme rows")
	}
	if result == nil {
		result = []*model.Meme{}
	}
	return result, nil
}

func (r *memeRepository) ReplaceAll(ctx context.Context, memes []*model.Meme) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM memes`); err != nil {
		return goerr.Wrap(err, "failed to clear memes")
	}
	for pos, m := range memes {
		doc, err := json.Marshal(m)
		if err != nil {
			return goerr.Wrap(err, "failed to encode meme record", goerr.V("id", m.ID))
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO memes (id, pos, doc) VALUES (?, ?, ?)`,
			m.ID.String(), pos, string(doc)); err != nil {
			return goerr.Wrap(err, "failed to insert meme record", goerr.V("id", m.ID))
		}
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit meme catalog")
	}
	return nil
}

func (r *memeRepository) Get(ctx context.Context, id types.MemeID) (*model.Meme, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, `SELECT doc FROM memes WHERE id = ?`, id.String()).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(repository.ErrMemeNotFound, "meme not found", goerr.V("id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query meme", goerr.V("id", id))
	}

	var m model.Meme
	if err := json.Unmarshal([]byte(doc), &m); err != nil {
		return nil, goerr.Wrap(err, "failed to decode meme record", goerr.V("id", id))
	}
	return &m, nil
}

func (r *memeRepository) Put(ctx context.Context, meme *model.Meme) error {
	doc, err := json.Marshal(meme)
	if err != nil {
		return goerr.Wrap(err, "failed to encode meme record", goerr.V("id", meme.ID))
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO memes (id, pos, doc)
		 VALUES (?, (SELECT COALESCE(MAX(pos), -1) + 1 FROM memes), ?)
		 ON CONFLICT(id) DO UPDATE SET doc = excluded.doc`,
		meme.ID.String(), string(doc))
	if err != nil {
		return goerr.Wrap(err, "failed to write meme record", goerr.V("id", meme.ID))
	}
	return nil
}

func (r *memeRepository) Delete(ctx context.Context, id types.MemeID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM memes WHERE id = ?`, id.String())
	if err != nil {
		return goerr.Wrap(err, "failed to delete meme record", goerr.V("id", id))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to check delete result", goerr.V("id", id))
	}
	if affected == 0 {
		return goerr.Wrap(repository.ErrMemeNotFound, "meme not found", goerr.V("id", id))
	}
	return nil
}
