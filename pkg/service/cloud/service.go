package cloud

import (
	"context"
	"io"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/memvault/memvault/pkg/domain/interfaces"
	"github.com/memvault/memvault/pkg/domain/model"
	"github.com/memvault/memvault/pkg/domain/types"
	"github.com/memvault/memvault/pkg/service/cloud/backend"
	"github.com/memvault/memvault/pkg/utils/async"
	"github.com/memvault/memvault/pkg/utils/logging"
)

// BackendFactory builds the upload backend for a configuration.
type BackendFactory func(cfg *model.CloudConfig) (backend.Backend, error)

// Service synchronizes the local catalog with a remote image host. All
// sync state (config, index, queue, stats) lives in the repository so
// it survives restarts.
type Service struct {
	repo       interfaces.Repository
	store      interfaces.ObjectStore
	network    interfaces.NetworkChecker
	newBackend BackendFactory
	httpClient *http.Client

	mu      sync.Mutex
	syncing bool
}

type Option func(*Service)

func WithNetworkChecker(n interfaces.NetworkChecker) Option {
	return func(x *Service) {
		x.network = n
	}
}

func WithBackendFactory(f BackendFactory) Option {
	return func(x *Service) {
		x.newBackend = f
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(x *Service) {
		x.httpClient = c
	}
}

func New(repo interfaces.Repository, store interfaces.ObjectStore, opts ...Option) *Service {
	x := &Service{
		repo:       repo,
		store:      store,
		network:    interfaces.AlwaysOnWiFi(),
		newBackend: backend.FromConfig,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Config returns the stored configuration, falling back to defaults
// when nothing has been saved yet.
func (x *Service) Config(ctx context.Context) (*model.CloudConfig, error) {
	cfg, err := x.repo.Cloud().GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return model.DefaultCloudConfig(), nil
	}
	return cfg, nil
}

// UpdateConfig merges a partial update into the stored configuration.
func (x *Service) UpdateConfig(ctx context.Context, patch *model.CloudConfigPatch) (*model.CloudConfig, error) {
	cfg, err := x.Config(ctx)
	if err != nil {
		return nil, err
	}
	patch.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := x.repo.Cloud().SaveConfig(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Stats returns the accumulated sync counters.
func (x *Service) Stats(ctx context.Context) (*model.SyncStats, error) {
	return x.repo.Cloud().GetStats(ctx)
}

// UploadImage pushes one meme's image to the configured backend and
// records it in the cloud index. When deduplication is on and the
// index already holds an entry with the same pixel hash, the existing
// remote URI is returned and nothing is uploaded.
func (x *Service) UploadImage(ctx context.Context, meme *model.Meme) (string, error) {
	cfg, err := x.Config(ctx)
	if err != nil {
		return "", err
	}
	if !cfg.Enabled {
		return "", ErrDisabled
	}

	data, err := x.store.Read(ctx, meme.Location)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read image for upload", goerr.V("id", meme.ID))
	}

	hash := ContentHash(data)
	index, err := x.repo.Cloud().GetIndex(ctx)
	if err != nil {
		return "", err
	}
	if cfg.Deduplication {
		for _, entry := range index {
			if entry.ContentHash == hash {
				logging.From(ctx).Debug("duplicate image, reusing remote object",
					"meme_id", meme.ID, "existing_id", entry.ID)
				return entry.RemoteURI, nil
			}
		}
	}

	compressed, err := Compress(data, cfg.CompressionQuality)
	if err != nil {
		return "", err
	}

	b, err := x.newBackend(cfg)
	if err != nil {
		return "", err
	}

	uri, err := b.Upload(ctx, meme.ID.String(), compressed)
	if err != nil {
		x.recordFailure(ctx)
		return "", goerr.Wrap(err, "upload failed", goerr.V("id", meme.ID))
	}

	if mw, ok := b.(backend.MetadataWriter); ok {
		if err := mw.WriteTags(ctx, meme.ID.String(), meme.Tags); err != nil {
			logging.From(ctx).Warn("failed to update remote tag metadata",
				"meme_id", meme.ID, "error", err)
		}
	}

	entry := &model.CloudEntry{
		ID:          meme.ID,
		RemoteURI:   uri,
		ContentHash: hash,
		Tags:        slices.Clone(meme.Tags),
		CreatedAt:   meme.CreatedAt.Format(time.RFC3339),
		ModifiedAt:  meme.ModifiedAt.Format(time.RFC3339),
		Size:        int64(len(compressed)),
	}

	index = slices.DeleteFunc(index, func(e *model.CloudEntry) bool {
		return e.ID == entry.ID
	})
	index = append(index, entry)
	if err := x.repo.Cloud().ReplaceIndex(ctx, index); err != nil {
		return "", err
	}

	stats, err := x.repo.Cloud().GetStats(ctx)
	if err != nil {
		return "", err
	}
	stats.TotalSize += entry.Size
	stats.SyncedCount++
	stats.LastSyncTime = time.Now().UnixMilli()
	if err := x.repo.Cloud().SaveStats(ctx, stats); err != nil {
		return "", err
	}

	if err := x.CleanupStorage(ctx); err != nil {
		logging.From(ctx).Warn("storage cleanup failed", "error", err)
	}

	return uri, nil
}

func (x *Service) recordFailure(ctx context.Context) {
	stats, err := x.repo.Cloud().GetStats(ctx)
	if err != nil {
		logging.From(ctx).Warn("failed to load sync stats", "error", err)
		return
	}
	stats.FailedCount++
	if err := x.repo.Cloud().SaveStats(ctx, stats); err != nil {
		logging.From(ctx).Warn("failed to save sync stats", "error", err)
	}
}

// AddToSyncQueue appends a meme to the persisted sync queue unless it
// is already waiting, then kicks queue processing in the background.
func (x *Service) AddToSyncQueue(ctx context.Context, id types.MemeID) error {
	queue, err := x.repo.Cloud().GetSyncQueue(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(queue, id) {
		queue = append(queue, id)
		if err := x.repo.Cloud().ReplaceSyncQueue(ctx, queue); err != nil {
			return err
		}
	}

	async.Dispatch(ctx, x.ProcessSyncQueue)
	return nil
}

// ProcessSyncQueue drains the sync queue one meme at a time. Only one
// pass runs at a time. A failed WiFi gate leaves the queue untouched
// for a later pass; a failed upload marks the record failed and drops
// it from the queue without re-enqueueing.
func (x *Service) ProcessSyncQueue(ctx context.Context) error {
	x.mu.Lock()
	if x.syncing {
		x.mu.Unlock()
		return nil
	}
	x.syncing = true
	x.mu.Unlock()
	defer func() {
		x.mu.Lock()
		x.syncing = false
		x.mu.Unlock()
	}()

	cfg, err := x.Config(ctx)
	if err != nil {
		return err
	}
	if !cfg.Enabled {
		return nil
	}
	if cfg.SyncOnWiFi && !x.network.OnWiFi(ctx) {
		logging.From(ctx).Debug("not on WiFi, deferring sync")
		return nil
	}

	logger := logging.From(ctx)
	for {
		queue, err := x.repo.Cloud().GetSyncQueue(ctx)
		if err != nil {
			return err
		}
		if len(queue) == 0 {
			return nil
		}
		id := queue[0]

		meme, err := x.repo.Meme().Get(ctx, id)
		switch {
		case err != nil || meme.RemoteURI != "":
			// Deleted or already synced while queued.

		default:
			uri, uploadErr := x.UploadImage(ctx, meme)
			if uploadErr != nil {
				logger.Warn("sync failed", "meme_id", id, "error", uploadErr)
				meme.SyncStatus = types.SyncStatusFailed
			} else {
				meme.RemoteURI = uri
				meme.SyncStatus = types.SyncStatusSynced
			}
			if err := x.repo.Meme().Put(ctx, meme); err != nil {
				return err
			}
		}

		if err := x.repo.Cloud().ReplaceSyncQueue(ctx, queue[1:]); err != nil {
			return err
		}
	}
}

// SyncAll enqueues every meme that has no remote mirror yet.
func (x *Service) SyncAll(ctx context.Context) error {
	memes, err := x.repo.Meme().GetAll(ctx)
	if err != nil {
		return err
	}
	for _, meme := range memes {
		if meme.RemoteURI != "" {
			continue
		}
		if err := x.AddToSyncQueue(ctx, meme.ID); err != nil {
			return err
		}
	}
	return nil
}

// RestoreFromCloud rebuilds the cloud index from the backend listing
// and downloads every remote image that has no local record. Existing
// local records are never touched. Returns the number of restored
// records.
func (x *Service) RestoreFromCloud(ctx context.Context) (int, error) {
	cfg, err := x.Config(ctx)
	if err != nil {
		return 0, err
	}
	if !cfg.Enabled {
		return 0, ErrDisabled
	}

	b, err := x.newBackend(cfg)
	if err != nil {
		return 0, err
	}
	lister, ok := b.(backend.Lister)
	if !ok {
		return 0, goerr.Wrap(ErrRestoreUnsupported, "restore unavailable",
			goerr.V("type", cfg.Type))
	}

	// Discard stale local sync state before rebuilding.
	if err := x.repo.Cloud().ReplaceIndex(ctx, nil); err != nil {
		return 0, err
	}
	stats := &model.SyncStats{LastSyncTime: time.Now().UnixMilli()}
	if err := x.repo.Cloud().SaveStats(ctx, stats); err != nil {
		return 0, err
	}

	entries, err := lister.List(ctx)
	if err != nil {
		return 0, err
	}
	if err := x.repo.Cloud().ReplaceIndex(ctx, entries); err != nil {
		return 0, err
	}

	memes, err := x.repo.Meme().GetAll(ctx)
	if err != nil {
		return 0, err
	}
	local := make(map[types.MemeID]bool, len(memes))
	for _, m := range memes {
		local[m.ID] = true
	}

	logger := logging.From(ctx)
	restored := 0
	for _, entry := range entries {
		stats.TotalSize += entry.Size
		if local[entry.ID] {
			continue
		}

		data, err := x.download(ctx, entry.RemoteURI)
		if err != nil {
			logger.Warn("failed to download remote image", "id", entry.ID, "error", err)
			stats.FailedCount++
			continue
		}

		location, err := x.store.Write(ctx, string(entry.ID), data)
		if err != nil {
			logger.Warn("failed to store downloaded image", "id", entry.ID, "error", err)
			stats.FailedCount++
			continue
		}

		now := time.Now().UTC()
		meme := &model.Meme{
			ID:          entry.ID,
			Location:    location,
			Tags:        slices.Clone(entry.Tags),
			CreatedAt:   now,
			ModifiedAt:  now,
			Size:        entry.Size,
			ContentHash: entry.ContentHash,
			RemoteURI:   entry.RemoteURI,
			SyncStatus:  types.SyncStatusSynced,
		}
		if meme.Tags == nil {
			meme.Tags = []string{}
		}
		if err := x.repo.Meme().Put(ctx, meme); err != nil {
			return restored, err
		}
		restored++
	}

	stats.SyncedCount = int64(restored)
	stats.LastSyncTime = time.Now().UnixMilli()
	if err := x.repo.Cloud().SaveStats(ctx, stats); err != nil {
		return restored, err
	}
	return restored, nil
}

func (x *Service) download(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create download request")
	}
	resp, err := x.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download object")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("download returned error", goerr.V("status", resp.StatusCode))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read download body")
	}
	return data, nil
}

// CleanupStorage evicts the oldest entries until the indexed total
// fits the configured quota. Remote objects are deleted when the
// backend supports it; otherwise eviction is index-only.
func (x *Service) CleanupStorage(ctx context.Context) error {
	cfg, err := x.Config(ctx)
	if err != nil {
		return err
	}
	if !cfg.Enabled {
		return nil
	}

	index, err := x.repo.Cloud().GetIndex(ctx)
	if err != nil {
		return err
	}

	var total int64
	for _, entry := range index {
		total += entry.Size
	}
	limit := cfg.MaxStorageBytes()
	if total <= limit {
		return nil
	}

	b, err := x.newBackend(cfg)
	if err != nil {
		return err
	}
	deleter, canDelete := b.(backend.Deleter)

	slices.SortStableFunc(index, func(a, b *model.CloudEntry) int {
		return a.ModifiedTime().Compare(b.ModifiedTime())
	})

	logger := logging.From(ctx)
	evicted := 0
	for total > limit && evicted < len(index) {
		entry := index[evicted]
		if canDelete {
			if err := deleter.Delete(ctx, entry); err != nil {
				logger.Warn("failed to delete remote object, evicting from index only",
					"id", entry.ID, "error", err)
			}
		}
		total -= entry.Size
		evicted++
		logger.Info("evicted cloud entry over storage quota", "id", entry.ID, "size", entry.Size)
	}

	index = index[evicted:]
	if err := x.repo.Cloud().ReplaceIndex(ctx, index); err != nil {
		return err
	}

	stats, err := x.repo.Cloud().GetStats(ctx)
	if err != nil {
		return err
	}
	stats.TotalSize = total
	return x.repo.Cloud().SaveStats(ctx, stats)
}
