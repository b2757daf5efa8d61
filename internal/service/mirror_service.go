package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-finance-mirror/internal/models"
	"github.com/noah-isme/sma-finance-mirror/pkg/config"
	"github.com/noah-isme/sma-finance-mirror/pkg/jobs"
)

const reloadJobType = "mirror.reload"

// DocumentReader reads mirrored upstream documents.
type DocumentReader interface {
	ListByCollection(ctx context.Context, collection models.Collection) ([]models.Document, error)
	Fingerprint(ctx context.Context, collection models.Collection) (models.CollectionFingerprint, error)
}

// ChangeSubscriber streams collection change notifications.
type ChangeSubscriber interface {
	Subscribe(ctx context.Context) (<-chan models.Collection, error)
}

// SnapshotProvider exposes the current snapshot to read services.
type SnapshotProvider interface {
	Snapshot() *models.Snapshot
}

// MirrorServiceParams groups constructor dependencies.
type MirrorServiceParams struct {
	Documents DocumentReader
	Changes   ChangeSubscriber
	Cache     *CacheService
	Metrics   *MetricsService
	Logger    *zap.Logger
	Config    config.MirrorConfig
}

// MirrorService keeps an in-memory snapshot of every mirrored collection. Each
// reload builds a new snapshot and swaps it in, so readers always see a
// consistent view without locking.
type MirrorService struct {
	docs    DocumentReader
	changes ChangeSubscriber
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	cfg     config.MirrorConfig
	now     func() time.Time

	current atomic.Pointer[models.Snapshot]

	// reloadMu serialises reloads of one collection from list to swap.
	reloadMu map[models.Collection]*sync.Mutex

	writeMu      sync.Mutex
	fingerprints map[models.Collection]models.CollectionFingerprint

	queue     *jobs.Queue
	debouncer *jobs.Debouncer
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewMirrorService constructs the mirror with an empty snapshot.
func NewMirrorService(params MirrorServiceParams) *MirrorService {
	cfg := params.Config
	if cfg.DebounceWindow < 0 {
		cfg.DebounceWindow = 0
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 30 * time.Second
	}
	if cfg.ReloadWorkers <= 0 {
		cfg.ReloadWorkers = 2
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &MirrorService{
		docs:         params.Documents,
		changes:      params.Changes,
		cache:        params.Cache,
		metrics:      params.Metrics,
		logger:       logger,
		cfg:          cfg,
		now:          time.Now,
		reloadMu:     make(map[models.Collection]*sync.Mutex, len(models.AllCollections)),
		fingerprints: make(map[models.Collection]models.CollectionFingerprint),
	}
	for _, c := range models.AllCollections {
		s.reloadMu[c] = &sync.Mutex{}
	}
	initial := models.NewSnapshot()
	initial.Epoch = uuid.NewString()
	s.current.Store(initial)
	s.queue = jobs.NewQueue("mirror-reload", s.handleReloadJob, jobs.QueueConfig{
		Workers:    cfg.ReloadWorkers,
		MaxRetries: cfg.ReloadRetries,
		RetryDelay: time.Second,
		Logger:     logger,
	})
	s.debouncer = jobs.NewDebouncer(cfg.DebounceWindow, func(key string) {
		s.enqueue(models.Collection(key), "change")
	})
	return s
}

// Snapshot returns the current immutable snapshot.
func (s *MirrorService) Snapshot() *models.Snapshot {
	return s.current.Load()
}

// Ready reports whether every collection has been loaded at least once.
func (s *MirrorService) Ready() bool {
	return s.Snapshot().Ready()
}

// LoadAll reloads every collection synchronously. Failures of individual
// collections are joined; successfully loaded collections are kept.
func (s *MirrorService) LoadAll(ctx context.Context) error {
	var errs []error
	for _, c := range models.AllCollections {
		if err := s.Reload(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Reload replaces one collection of the snapshot with the documents currently
// stored upstream. On a repository failure the previous snapshot is kept.
func (s *MirrorService) Reload(ctx context.Context, collection models.Collection) error {
	mu, ok := s.reloadMu[collection]
	if !ok {
		return fmt.Errorf("reload %s: unknown collection", collection)
	}
	mu.Lock()
	defer mu.Unlock()

	start := time.Now()
	docs, err := s.docs.ListByCollection(ctx, collection)
	s.metrics.ObserveDBQuery("mirror_list_"+string(collection), time.Since(start))
	if err != nil {
		s.metrics.RecordReload(collection, err, time.Since(start), 0)
		return fmt.Errorf("reload %s: %w", collection, err)
	}

	s.writeMu.Lock()
	prev := s.current.Load()
	next := prev.Clone()
	skipped := next.Apply(collection, docs)
	next.Version = prev.Version + 1
	next.LoadedAt = s.now().UTC()
	s.current.Store(next)
	s.fingerprints[collection] = models.FingerprintOf(docs)
	s.writeMu.Unlock()

	s.metrics.RecordReload(collection, nil, time.Since(start), len(skipped))
	s.metrics.SetSnapshot(next)
	if len(skipped) > 0 {
		s.logger.Warn("skipped undecodable documents",
			zap.String("collection", string(collection)),
			zap.Strings("doc_ids", skipped))
	}
	s.logger.Debug("collection reloaded",
		zap.String("collection", string(collection)),
		zap.Int("documents", next.Count(collection)),
		zap.Int64("version", next.Version))

	s.invalidateSnapshot(ctx, prev)
	return nil
}

// Notify schedules a debounced reload of a collection.
func (s *MirrorService) Notify(collection models.Collection) {
	s.debouncer.Trigger(string(collection))
}

// Refresh enqueues reloads for collections whose fingerprint changed since
// they were last loaded.
func (s *MirrorService) Refresh(ctx context.Context) {
	for _, c := range models.AllCollections {
		start := time.Now()
		fp, err := s.docs.Fingerprint(ctx, c)
		s.metrics.ObserveDBQuery("mirror_fingerprint", time.Since(start))
		if err != nil {
			s.logger.Warn("fingerprint failed", zap.String("collection", string(c)), zap.Error(err))
			continue
		}
		s.writeMu.Lock()
		known, ok := s.fingerprints[c]
		s.writeMu.Unlock()
		if ok && known.Matches(fp) {
			continue
		}
		s.enqueue(c, "refresh")
	}
}

// Start loads the initial snapshot and begins following upstream changes. A
// failing initial load is logged; the periodic refresh retries it.
func (s *MirrorService) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	if err := s.LoadAll(runCtx); err != nil {
		s.logger.Error("initial snapshot load incomplete", zap.Error(err))
	}

	s.queue.Start(runCtx)

	if s.changes != nil {
		feed, err := s.changes.Subscribe(runCtx)
		if err != nil {
			cancel()
			s.queue.Stop()
			return fmt.Errorf("subscribe to change feed: %w", err)
		}
		s.wg.Add(1)
		go s.follow(runCtx, feed)
	}

	s.wg.Add(1)
	go s.refreshLoop(runCtx)

	s.logger.Info("mirror started",
		zap.Duration("debounce", s.cfg.DebounceWindow),
		zap.Duration("refresh_interval", s.cfg.RefreshInterval),
		zap.Bool("ready", s.Ready()))
	return nil
}

// Stop halts change processing and waits for background work to finish.
func (s *MirrorService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.debouncer.Stop()
	s.wg.Wait()
	s.queue.Stop()
}

func (s *MirrorService) follow(ctx context.Context, feed <-chan models.Collection) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-feed:
			if !ok {
				s.logger.Warn("change feed closed; relying on periodic refresh")
				return
			}
			s.Notify(c)
		}
	}
}

func (s *MirrorService) refreshLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

func (s *MirrorService) enqueue(collection models.Collection, reason string) {
	queued, err := s.queue.Enqueue(jobs.Job{
		Type:    reloadJobType,
		Key:     string(collection),
		Payload: collection,
	})
	if err != nil {
		s.logger.Debug("reload not queued", zap.String("collection", string(collection)), zap.Error(err))
		return
	}
	if queued {
		s.logger.Debug("reload queued", zap.String("collection", string(collection)), zap.String("reason", reason))
	}
}

// invalidateSnapshot drops payloads cached for a superseded snapshot. Entries
// that survive a failed delete, or belong to an earlier process, expire with
// their TTL.
func (s *MirrorService) invalidateSnapshot(ctx context.Context, snap *models.Snapshot) {
	tag := snapshotTag(snap.Epoch, snap.Version)
	for _, pattern := range []string{"*:" + tag, "*:" + tag + ":*"} {
		if err := s.cache.Invalidate(ctx, pattern); err != nil {
			s.logger.Debug("stale cache entries left to expire", zap.Int64("version", snap.Version))
			return
		}
	}
}

func (s *MirrorService) handleReloadJob(ctx context.Context, job jobs.Job) error {
	collection, ok := job.Payload.(models.Collection)
	if !ok {
		return fmt.Errorf("job %s: unexpected payload %T", job.ID, job.Payload)
	}
	return s.Reload(ctx, collection)
}
