// Package memory provides an in-memory Repository implementation for
// development and tests.
package memory

import (
	"sync"

	"github.com/memvault/memvault/pkg/domain/interfaces"
	"github.com/memvault/memvault/pkg/domain/model"
	"github.com/memvault/memvault/pkg/domain/types"
)

// Client is the in-memory repository. All sub-repositories share one
// mutex; values are copied on the way in and out so callers never
// alias internal state.
type Client struct {
	mu sync.RWMutex

	memes       map[types.MemeID]*model.Meme
	memeOrder   []types.MemeID
	mappings    []*model.TagMapping
	cloudConfig *model.CloudConfig
	cloudIndex  []*model.CloudEntry
	syncQueue   []types.MemeID
	syncStats   *model.SyncStats
	collections map[string]*model.Collection
	shareCounts map[types.MemeID]int64

	memeRepo       *memeRepository
	mappingRepo    *tagMappingRepository
	cloudRepo      *cloudRepository
	collectionRepo *collectionRepository
	usageRepo      *usageRepository
}

// New creates a new in-memory repository
func New() *Client {
	c := &Client{
		memes:       make(map[types.MemeID]*model.Meme),
		collections: make(map[string]*model.Collection),
		shareCounts: make(map[types.MemeID]int64),
	}
	c.memeRepo = &memeRepository{client: c}
	c.mappingRepo = &tagMappingRepository{client: c}
	c.cloudRepo = &cloudRepository{client: c}
	c.collectionRepo = &collectionRepository{client: c}
	c.usageRepo = &usageRepository{client: c}
	return c
}

var _ interfaces.Repository = (*Client)(nil)

func (c *Client) Meme() interfaces.MemeRepository               { return c.memeRepo }
func (c *Client) TagMapping() interfaces.TagMappingRepository   { return c.mappingRepo }
func (c *Client) Cloud() interfaces.CloudRepository             { return c.cloudRepo }
func (c *Client) Collection() interfaces.CollectionRepository   { return c.collectionRepo }
func (c *Client) Usage() interfaces.UsageRepository             { return c.usageRepo }

// Close is a no-op for the in-memory repository
func (c *Client) Close() error { return nil }
