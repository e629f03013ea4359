// Package sqlite provides a SQLite-backed Repository implementation.
// Each concern is persisted independently: the meme catalog as rows,
// everything else as one JSON document per namespaced key. There is no
// cross-key transactionality.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	_ "modernc.org/sqlite"

	"github.com/memvault/memvault/pkg/domain/interfaces"
)

// Client is the SQLite-backed repository
type Client struct {
	db *sql.DB

	memeRepo       *memeRepository
	mappingRepo    *tagMappingRepository
	cloudRepo      *cloudRepository
	collectionRepo *collectionRepository
	usageRepo      *usageRepository
}

// New opens or creates a SQLite database at the given path
func New(dbPath string) (*Client, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, goerr.Wrap(err, "failed to create database directory", goerr.V("dir", dir))
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("path", dbPath))
	}

	c := &Client{db: db}
	if err := c.migrate(); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to migrate database", goerr.V("path", dbPath))
	}

	c.memeRepo = &memeRepository{db: db}
	c.mappingRepo = &tagMappingRepository{client: c}
	c.cloudRepo = &cloudRepository{client: c}
	c.collectionRepo = &collectionRepository{db: db}
	c.usageRepo = &usageRepository{db: db}

	return c, nil
}

var _ interfaces.Repository = (*Client)(nil)

func (c *Client) Meme() interfaces.MemeRepository             { return c.memeRepo }
func (c *Client) TagMapping() interfaces.TagMappingRepository { return c.mappingRepo }
func (c *Client) Cloud() interfaces.CloudRepository           { return c.cloudRepo }
func (c *Client) Collection() interfaces.CollectionRepository { return c.collectionRepo }
func (c *Client) Usage() interfaces.UsageRepository           { return c.usageRepo }

// Close closes the underlying database
func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memes (
		id   TEXT PRIMARY KEY,
		pos  INTEGER NOT NULL,
		doc  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_memes_pos ON memes(pos);

	CREATE TABLE IF NOT EXISTS blobs (
		key  TEXT PRIMARY KEY,
		doc  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS collections (
		id         TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		doc        TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS share_counts (
		meme_id TEXT PRIMARY KEY,
		count   INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Namespaced keys of the blobs table, one per concern
const (
	keyTagMappings = "tag_mappings"
	keyCloudConfig = "cloud_config"
	keyCloudIndex  = "cloud_index"
	keySyncQueue   = "sync_queue"
	keySyncStats   = "sync_stats"
)

// getBlob reads one JSON document. Returns false when the key is unset.
func (c *Client) getBlob(ctx context.Context, key string, v any) (bool, error) {
	var doc string
	err := c.db.QueryRowContext(ctx, `SELECT doc FROM blobs WHERE key = ?`, key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, goerr.Wrap(err, "failed to read blob", goerr.V("key", key))
	}
	if err := json.Unmarshal([]byte(doc), v); err != nil {
		return false, goerr.Wrap(err, "failed to decode blob", goerr.V("key", key))
	}
	return true, nil
}

// putBlob replaces one JSON document
func (c *Client) putBlob(ctx context.Context, key string, v any) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return goerr.Wrap(err, "failed to encode blob", goerr.V("key", key))
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO blobs (key, doc) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET doc = excluded.doc`,
		key, string(doc))
	if err != nil {
		return goerr.Wrap(err, "failed to write blob", goerr.V("key", key))
	}
	return nil
}
