package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"docsync/internal/config"
	"docsync/internal/detect"
	"docsync/internal/domain"
	"docsync/internal/fingerprint"
	"docsync/internal/monitor"
	"docsync/internal/state"
)

// SyncService drives full and incremental synchronization runs: discovery,
// fetching, fingerprinting, change classification, indexing, schedule upkeep
// and obsolete cleanup. It owns the fingerprint, schedule and history stores
// and hands them to the classifier and monitoring scheduler. One logical flow
// drives each run; per-item work is strictly sequential within a batch.
type SyncService struct {
	discoverer Discoverer
	fetcher    Fetcher
	indexer    Indexer
	objects    ObjectStore
	publisher  Publisher

	engine     *fingerprint.Engine
	classifier *detect.Classifier
	monitor    *monitor.Scheduler

	fingerprints *state.FingerprintStore
	schedules    *state.ScheduleStore
	history      *state.History

	logger *slog.Logger
	cfg    config.SyncConfig
	now    func() time.Time

	mu                  sync.Mutex
	active              map[string]*domain.SyncOperation
	results             []domain.SyncResult
	metrics             syncMetrics
	lastFullSync        *time.Time
	lastIncrementalSync *time.Time
}

type syncMetrics struct {
	TotalSyncs      int     `json:"total_syncs"`
	SuccessfulSyncs int     `json:"successful_syncs"`
	FailedSyncs     int     `json:"failed_syncs"`
	AverageSyncTime float64 `json:"average_sync_time"`
	LastError       *string `json:"last_error"`
}

func NewSyncService(
	discoverer Discoverer,
	fetcher Fetcher,
	indexer Indexer,
	objects ObjectStore,
	publisher Publisher,
	logger *slog.Logger,
	cfg config.SyncConfig,
) *SyncService {
	fingerprints := state.NewFingerprintStore()
	schedules := state.NewScheduleStore()
	history := state.NewHistory()

	return &SyncService{
		discoverer:   discoverer,
		fetcher:      fetcher,
		indexer:      indexer,
		objects:      objects,
		publisher:    publisher,
		engine:       fingerprint.NewEngine(logger),
		classifier:   detect.NewClassifier(fingerprints, history, logger),
		monitor:      monitor.NewScheduler(schedules, logger),
		fingerprints: fingerprints,
		schedules:    schedules,
		history:      history,
		logger:       logger.With("component", "sync"),
		cfg:          cfg,
		now:          time.Now,
		active:       make(map[string]*domain.SyncOperation),
	}
}

// FullSync reconciles the index with the full discovered URL universe of the
// given sources, then retires documents no longer present. Per-item failures
// are collected, never propagated; the run always covers its candidate set
// and is marked failed at finalization only if the error list is non-empty.
func (s *SyncService) FullSync(ctx context.Context, sources []string) *domain.SyncResult {
	start := s.now()
	if len(sources) == 0 {
		sources = s.cfg.Sources
	}

	op := s.beginOperation(domain.FullSync)
	s.logger.Info("starting full sync", "operation_id", op.OperationID, "sources", sources)

	var (
		totalProcessed, newlyIndexed, updatedIndexed, removedIndexed int
		errs                                                         []string
	)

	// Discover and union candidate URLs across sources.
	seen := make(map[string]struct{})
	var candidates []domain.DiscoveredURL
	discoveryFailed := false
	for _, source := range sources {
		discovered, err := s.discoverer.Discover(ctx, source)
		if err != nil {
			msg := fmt.Sprintf("discover %s: %v", source, err)
			errs = append(errs, msg)
			discoveryFailed = true
			s.logger.Error("discovery failed", "source", source, "error", err)
			continue
		}
		for _, d := range discovered {
			if _, ok := seen[d.URL]; ok {
				continue
			}
			seen[d.URL] = struct{}{}
			candidates = append(candidates, d)
		}
		s.logger.Info("discovered urls", "source", source, "count", len(discovered))
	}

	// Cheap format validation; no fetching here.
	valid := make([]domain.DiscoveredURL, 0, len(candidates))
	for _, d := range candidates {
		if s.isValidURL(d.URL) {
			valid = append(valid, d)
		}
	}
	s.logger.Info("validated urls", "candidates", len(candidates), "valid", len(valid))

	for i := 0; i < len(valid); i += s.batchSize() {
		if ctx.Err() != nil {
			errs = append(errs, fmt.Sprintf("run interrupted: %v", ctx.Err()))
			break
		}

		end := i + s.batchSize()
		if end > len(valid) {
			end = len(valid)
		}

		out := s.processBatch(ctx, valid[i:end], false)
		totalProcessed += out.processed
		newlyIndexed += out.newlyIndexed
		updatedIndexed += out.updatedIndexed
		errs = append(errs, out.errors...)

		s.updateOperation(op, totalProcessed, newlyIndexed+updatedIndexed, errs)
		s.pause(ctx, s.cfg.BatchDelay)
	}

	// Retire documents absent from this run's discovery. A partial universe
	// (failed discovery or an interrupted run) would retire live documents,
	// so cleanup only runs against a complete one.
	if discoveryFailed || ctx.Err() != nil {
		s.logger.Warn("skipping obsolete cleanup, discovered universe incomplete",
			"discovery_failed", discoveryFailed,
		)
	} else {
		currentURLs := make(map[string]struct{}, len(valid))
		for _, d := range valid {
			currentURLs[d.URL] = struct{}{}
		}
		var cleanupErrs []string
		removedIndexed, cleanupErrs = s.cleanupObsolete(ctx, currentURLs)
		errs = append(errs, cleanupErrs...)
	}

	result := s.finishOperation(ctx, op, start, totalProcessed, newlyIndexed, updatedIndexed, removedIndexed, errs)

	s.logger.Info("full sync completed",
		"operation_id", op.OperationID,
		"processed", totalProcessed,
		"new", newlyIndexed,
		"updated", updatedIndexed,
		"removed", removedIndexed,
		"errors", len(errs),
	)

	return result
}

// IncrementalSync re-checks only the URLs whose monitoring schedule is due.
// An empty due set completes immediately with all-zero counts and success.
func (s *SyncService) IncrementalSync(ctx context.Context) *domain.SyncResult {
	start := s.now()

	op := s.beginOperation(domain.IncrementalSync)

	due := s.monitor.Due(s.now())
	s.logger.Info("starting incremental sync",
		"operation_id", op.OperationID,
		"due", len(due),
	)

	var (
		totalProcessed, newlyIndexed, updatedIndexed int
		errs                                         []string
	)

	items := make([]domain.DiscoveredURL, 0, len(due))
	for _, u := range due {
		entry, ok := s.schedules.Get(u)
		if !ok {
			continue
		}
		items = append(items, domain.DiscoveredURL{URL: u, ContentType: entry.ContentType})
	}

	for i := 0; i < len(items); i += s.batchSize() {
		if ctx.Err() != nil {
			errs = append(errs, fmt.Sprintf("run interrupted: %v", ctx.Err()))
			break
		}

		end := i + s.batchSize()
		if end > len(items) {
			end = len(items)
		}

		out := s.processBatch(ctx, items[i:end], true)
		totalProcessed += out.processed
		newlyIndexed += out.newlyIndexed
		updatedIndexed += out.updatedIndexed
		errs = append(errs, out.errors...)

		s.updateOperation(op, totalProcessed, newlyIndexed+updatedIndexed, errs)
		s.pause(ctx, s.cfg.IncrementalBatchDelay)
	}

	result := s.finishOperation(ctx, op, start, totalProcessed, newlyIndexed, updatedIndexed, 0, errs)

	s.logger.Info("incremental sync completed",
		"operation_id", op.OperationID,
		"processed", totalProcessed,
		"updated", updatedIndexed,
		"errors", len(errs),
	)

	return result
}

type batchOutcome struct {
	processed      int
	newlyIndexed   int
	updatedIndexed int
	errors         []string
}

// processBatch runs the per-URL pipeline sequentially: fetch, fingerprint,
// classify, and for changed or new content index, reschedule and archive.
// A failure for one URL is recorded and processing continues with the next.
func (s *SyncService) processBatch(ctx context.Context, items []domain.DiscoveredURL, incremental bool) batchOutcome {
	var out batchOutcome

	for _, item := range items {
		doc, err := s.fetcher.Fetch(ctx, item.URL)
		out.processed++
		if err != nil {
			out.errors = append(out.errors, fmt.Sprintf("fetch %s: %v", item.URL, err))
			s.pause(ctx, s.cfg.RequestDelay)
			continue
		}

		meta := doc.Metadata
		if item.ContentType != "" {
			meta.ContentType = item.ContentType
		}
		doc.Metadata = meta

		fp := s.engine.Fingerprint(item.URL, doc.Content, meta)
		event := s.classifier.Classify(fp)

		if event == nil {
			// Unchanged: the classifier already refreshed the stored
			// fingerprint; just advance the schedule.
			s.monitor.MarkChecked(item.URL, s.now())
			s.pause(ctx, s.cfg.RequestDelay)
			continue
		}

		indexDoc := domain.IndexDocument{
			ID:       fingerprint.DocumentID(item.URL),
			URL:      item.URL,
			Title:    meta.Title,
			Content:  doc.Content,
			Metadata: meta,
		}
		if err := s.indexer.Upsert(ctx, indexDoc); err != nil {
			// Nothing committed: the old fingerprint stays authoritative and
			// the change is re-detected and re-submitted on the next check.
			out.errors = append(out.errors, fmt.Sprintf("index %s: %v", item.URL, err))
			s.pause(ctx, s.cfg.RequestDelay)
			continue
		}

		s.classifier.Commit(event)

		if s.publisher != nil {
			if err := s.publisher.PublishChange(ctx, event); err != nil {
				out.errors = append(out.errors, fmt.Sprintf("publish change %s: %v", item.URL, err))
			}
		}

		if event.ChangeType == domain.ChangeNew {
			out.newlyIndexed++
		} else {
			out.updatedIndexed++
		}

		if incremental {
			s.monitor.MarkChecked(item.URL, s.now())
		} else {
			s.monitor.Register(item.URL, meta.ContentType, domain.PriorityMedium, s.now())
		}

		if err := s.archiveContent(ctx, doc, fp); err != nil {
			out.errors = append(out.errors, fmt.Sprintf("store content %s: %v", item.URL, err))
		}

		s.pause(ctx, s.cfg.RequestDelay)
	}

	return out
}

// cleanupObsolete deletes indexed documents absent from the current URL set.
// Each successful deletion also removes the fingerprint and schedule entry;
// a failed deletion joins the run's error list and the document is retried
// on the next full run.
func (s *SyncService) cleanupObsolete(ctx context.Context, current map[string]struct{}) (int, []string) {
	removed := 0
	var errs []string
	for _, u := range s.fingerprints.URLs() {
		if _, ok := current[u]; ok {
			continue
		}
		if err := s.indexer.Delete(ctx, fingerprint.DocumentID(u)); err != nil {
			errs = append(errs, fmt.Sprintf("remove obsolete %s: %v", u, err))
			s.logger.Warn("failed to remove obsolete document", "url", u, "error", err)
			continue
		}
		s.fingerprints.Delete(u)
		s.schedules.Delete(u)
		removed++
	}
	if removed > 0 {
		s.logger.Info("removed obsolete documents", "count", removed)
	}
	return removed, errs
}

func (s *SyncService) isValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return false
	}
	if len(s.cfg.AllowedHosts) == 0 {
		return true
	}
	for _, host := range s.cfg.AllowedHosts {
		if u.Host == host || strings.HasSuffix(u.Host, "."+host) {
			return true
		}
	}
	return false
}

func (s *SyncService) batchSize() int {
	if s.cfg.BatchSize <= 0 {
		return 20
	}
	return s.cfg.BatchSize
}

// pause sleeps for the configured courtesy delay, returning early on
// cancellation.
func (s *SyncService) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
