package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memvault/memvault/pkg/domain/types"
)

// CloudEntry is one record of the local cloud index: the metadata of a
// meme's remote mirror. Created on successful upload, removed on
// eviction or explicit delete, and rebuilt wholesale by a restore.
type CloudEntry struct {
	ID          types.MemeID `json:"id"`
	RemoteURI   string       `json:"remoteUri"`
	ContentHash string       `json:"contentHash"`
	Tags        []string     `json:"tags"` // snapshot at sync time
	CreatedAt   string       `json:"createdAt"`
	ModifiedAt  string       `json:"modifiedAt"`
	Size        int64        `json:"size"`
}

// ModifiedTime parses the entry's modification timestamp. Entries with
// an unparsable timestamp sort as oldest so they are evicted first.
func (e *CloudEntry) ModifiedTime() time.Time {
	t, err := time.Parse(time.RFC3339, e.ModifiedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Clone returns a deep copy of the entry
func (e *CloudEntry) Clone() *CloudEntry {
	copied := *e
	copied.Tags = make([]string, len(e.Tags))
	copy(copied.Tags, e.Tags)
	return &copied
}

// SyncStats accumulates cloud synchronization counters
type SyncStats struct {
	TotalSize    int64 `json:"totalSize"`
	SyncedCount  int64 `json:"syncedCount"`
	FailedCount  int64 `json:"failedCount"`
	LastSyncTime int64 `json:"lastSyncTime,omitempty"` // unix milliseconds
}

// CloudConfig is the typed configuration of the cloud storage service.
// Credential fields are tagged for masq so they never appear in logs.
type CloudConfig struct {
	Enabled            bool              `json:"enabled"`
	Type               types.BackendType `json:"type"`
	APIKey             string            `json:"apiKey,omitempty" masq:"secret"`
	APIEndpoint        string            `json:"apiEndpoint,omitempty"`
	GitHubRepo         string            `json:"githubRepo,omitempty"`
	GitHubToken        string            `json:"githubToken,omitempty" masq:"secret"`
	AutoSync           bool              `json:"autoSync"`
	SyncInterval       int               `json:"syncInterval"` // minutes, advisory
	SyncOnWiFi         bool              `json:"syncOnWifi"`
	MaxStorageSizeMB   int64             `json:"maxStorageSize"`
	CompressionQuality float64           `json:"compressionQuality"` // 0-1
	Deduplication      bool              `json:"deduplication"`
}

// DefaultCloudConfig returns the configuration used before the user
// saves anything.
func DefaultCloudConfig() *CloudConfig {
	return &CloudConfig{
		Enabled:            false,
		Type:               types.BackendTypeImgur,
		AutoSync:           false,
		SyncInterval:       120,
		SyncOnWiFi:         true,
		MaxStorageSizeMB:   1024,
		CompressionQuality: 0.8,
		Deduplication:      true,
	}
}

// Validate checks if the cloud configuration is consistent
func (c *CloudConfig) Validate() error {
	if !c.Type.IsValid() {
		return goerr.New("invalid backend type", goerr.V("type", c.Type))
	}
	if c.CompressionQuality < 0 || c.CompressionQuality > 1 {
		return goerr.New("compression quality must be between 0 and 1",
			goerr.V("quality", c.CompressionQuality))
	}
	if c.MaxStorageSizeMB < 0 {
		return goerr.New("max storage size must not be negative",
			goerr.V("maxStorageSize", c.MaxStorageSizeMB))
	}
	return nil
}

// MaxStorageBytes returns the eviction threshold in bytes
func (c *CloudConfig) MaxStorageBytes() int64 {
	return c.MaxStorageSizeMB * 1024 * 1024
}

// Clone returns a copy of the configuration
func (c *CloudConfig) Clone() *CloudConfig {
	copied := *c
	return &copied
}

// CloudConfigPatch is a partial configuration update. Nil fields keep
// the current value.
type CloudConfigPatch struct {
	Enabled            *bool
	Type               *types.BackendType
	APIKey             *string
	APIEndpoint        *string
	GitHubRepo         *string
	GitHubToken        *string
	AutoSync           *bool
	SyncInterval       *int
	SyncOnWiFi         *bool
	MaxStorageSizeMB   *int64
	CompressionQuality *float64
	Deduplication      *bool
}

// Apply merges the patch into the configuration
func (p *CloudConfigPatch) Apply(c *CloudConfig) {
	if p.Enabled != nil {
		c.Enabled = *p.Enabled
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.APIKey != nil {
		c.APIKey = *p.APIKey
	}
	if p.APIEndpoint != nil {
		c.APIEndpoint = *p.APIEndpoint
	}
	if p.GitHubRepo != nil {
		c.GitHubRepo = *p.GitHubRepo
	}
	if p.GitHubToken != nil {
		c.GitHubToken = *p.GitHubToken
	}
	if p.AutoSync != nil {
		c.AutoSync = *p.AutoSync
	}
	if p.SyncInterval != nil {
		c.SyncInterval = *p.SyncInterval
	}
	if p.SyncOnWiFi != nil {
		c.SyncOnWiFi = *p.SyncOnWiFi
	}
	if p.MaxStorageSizeMB != nil {
		c.MaxStorageSizeMB = *p.MaxStorageSizeMB
	}
	if p.CompressionQuality != nil {
		c.CompressionQuality = *p.CompressionQuality
	}
	if p.Deduplication != nil {
		c.Deduplication = *p.Deduplication
	}
}
