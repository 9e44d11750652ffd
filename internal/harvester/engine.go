package harvester

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ldes-tools/harvester/internal/metrics"
	"github.com/ldes-tools/harvester/internal/notify"
	"github.com/ldes-tools/harvester/internal/registry"
)

// defaultCheckpointEvery is the number of processed pages between state saves.
const defaultCheckpointEvery = 10

// Config holds the settings for a harvest run.
type Config struct {
	// Resume loads prior state and drains its pending pages first.
	Resume bool
	// CheckpointEvery is the checkpoint cadence in processed pages.
	CheckpointEvery int
}

// Engine orchestrates the crawl: it owns the frontier and the processed
// sets, drives traversal with an explicit worklist, and enforces page and
// member dedup plus resumable checkpointing. All shared state is mutated
// only by the engine; Snapshot gives other goroutines a consistent copy.
type Engine struct {
	cfg      Config
	fetcher  Fetcher
	sink     Sink
	store    StateStore
	registry registry.Provider
	notifier notify.Provider
	clock    Clock
	logger   *zap.Logger

	mu               sync.Mutex
	frontier         *frontier
	processedPages   map[string]struct{}
	processedMembers map[string]struct{}
	stats            Stats
	runID            string
	resumed          bool
}

type clockFunc func() time.Time

func (c clockFunc) Now() time.Time { return c() }

// NewEngine constructs an Engine. The registry and notifier are optional;
// a nil logger falls back to a no-op logger.
func NewEngine(
	cfg Config,
	fetcher Fetcher,
	sink Sink,
	store StateStore,
	reg registry.Provider,
	notifier notify.Provider,
	idGen IDGenerator,
	clock Clock,
	logger *zap.Logger,
) *Engine {
	if cfg.CheckpointEvery <= 0 {
		cfg.CheckpointEvery = defaultCheckpointEvery
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = clockFunc(time.Now)
	}
	var runID string
	if idGen != nil {
		id, err := idGen.NewID()
		if err != nil {
			logger.Warn("Failed to generate run ID", zap.Error(err))
		} else {
			runID = id
		}
	}
	return &Engine{
		cfg:              cfg,
		fetcher:          fetcher,
		sink:             sink,
		store:            store,
		registry:         reg,
		notifier:         notifier,
		clock:            clock,
		logger:           logger,
		frontier:         newFrontier(),
		processedPages:   make(map[string]struct{}),
		processedMembers: make(map[string]struct{}),
		runID:            runID,
	}
}

// Run executes a harvest starting from entryURL. It always checkpoints state
// and logs a summary before returning, including on error or cancellation.
// The returned error is context.Canceled when the run was interrupted.
func (e *Engine) Run(ctx context.Context, entryURL string) error {
	e.loadState()

	start := e.clock.Now()
	e.mu.Lock()
	if e.stats.StartTime == "" {
		e.stats.StartTime = start.UTC().Format(time.RFC3339)
	}
	e.mu.Unlock()

	e.logger.Info("Starting harvest",
		zap.String("url", entryURL),
		zap.String("run_id", e.runID),
	)
	defer e.finish(start)

	if e.resumed {
		e.logger.Info("Resuming with pending pages", zap.Int("pending", e.frontier.pendingLen()))
		e.drain(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.frontier.pendingLen() == 0 {
			e.logger.Info("All pending pages processed, harvest complete")
			return nil
		}
	}

	doc, err := e.fetcher.Fetch(ctx, entryURL)
	if err != nil {
		e.countError()
		return fmt.Errorf("fetch entry point: %w", err)
	}

	entryContext := DocumentContext(doc)
	if IsEventStream(doc) {
		initial := ExtractRelations(doc)
		e.logger.Info("Detected EventStream collection entry point",
			zap.Int("initial_pages", len(initial)),
		)
		for _, u := range initial {
			e.seed(pageItem{url: u, context: entryContext})
		}
	} else {
		e.logger.Info("Processing entry point as direct page")
		e.seed(pageItem{url: entryURL, context: entryContext})
	}

	e.drain(ctx)
	return ctx.Err()
}

// Snapshot returns a consistent copy of the crawl state. Safe to call from
// other goroutines (e.g. the status server) while a run is in progress.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{
		RunID:            e.runID,
		ProcessedPages:   sortedKeys(e.processedPages),
		ProcessedMembers: sortedKeys(e.processedMembers),
		PendingPages:     e.frontier.snapshot(),
		Stats:            e.stats,
		LastUpdated:      e.clock.Now().UTC().Format(time.RFC3339),
	}
}

// loadState restores prior progress when resuming. Missing or unreadable
// state means a fresh start, never a failed run.
func (e *Engine) loadState() {
	if !e.cfg.Resume {
		return
	}
	st, err := e.store.Load()
	if err != nil {
		e.logger.Error("Failed to load state, starting fresh", zap.Error(err))
		return
	}
	if st == nil {
		return
	}
	e.mu.Lock()
	for _, u := range st.ProcessedPages {
		e.processedPages[u] = struct{}{}
	}
	for _, id := range st.ProcessedMembers {
		e.processedMembers[id] = struct{}{}
	}
	e.stats = st.Stats
	e.mu.Unlock()
	e.frontier.seed(st.PendingPages)
	e.resumed = e.frontier.pendingLen() > 0

	e.logger.Info("Resumed from previous state",
		zap.Int("members", len(st.ProcessedMembers)),
		zap.Int("pages", len(st.ProcessedPages)),
		zap.Int("pending", len(st.PendingPages)),
	)
}

// seed schedules an entry-point relation. Already-processed pages are still
// visited for relation discovery only; everything else enters the frontier.
func (e *Engine) seed(item pageItem) {
	if e.isProcessedPage(item.url) {
		e.frontier.requeue(item)
		return
	}
	e.frontier.add(item)
}

// drain is the traversal loop: it pops worklist items until the queue is
// empty or the context is cancelled. Using an explicit queue instead of
// recursion bounds memory on arbitrarily long relation chains and lets a
// checkpoint land between any two pages.
func (e *Engine) drain(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			e.logger.Warn("Harvest cancelled, stopping traversal")
			return
		}
		item, ok := e.frontier.pop()
		if !ok {
			return
		}
		if e.isProcessedPage(item.url) {
			e.refreshRelations(ctx, item)
			continue
		}
		e.processPage(ctx, item)
	}
}

// processPage fetches one page, persists its unseen members, marks it
// processed, and enqueues its unseen relations. A fetch or parse failure
// leaves the page pending so a future run retries it.
func (e *Engine) processPage(ctx context.Context, item pageItem) {
	e.frontier.ensure(item.url)

	doc, err := e.fetcher.Fetch(ctx, item.url)
	if err != nil {
		e.countError()
		e.logger.Error("Failed to process page", zap.String("url", item.url), zap.Error(err))
		return
	}

	pageContext := DocumentContext(doc)
	if pageContext == nil {
		pageContext = item.context
	}

	members := ExtractMembers(doc)
	e.logger.Info("Processing page",
		zap.String("url", item.url),
		zap.Int("members", len(members)),
	)

	persisted := 0
	for _, member := range members {
		id := MemberID(member)
		if e.isProcessedMember(id) {
			continue
		}
		artifact, err := e.sink.Persist(ctx, id, member, pageContext)
		if err != nil {
			e.countError()
			e.logger.Error("Failed to persist member",
				zap.String("member_id", id),
				zap.Error(err),
			)
			continue
		}
		e.markMemberProcessed(id)
		persisted++
		metrics.IncMemberHarvested()
		e.recordMember(ctx, id, artifact)
	}

	pages := e.markPageProcessed(item.url)
	metrics.IncPageProcessed()
	metrics.SetPendingPages(e.frontier.pendingLen())
	e.recordPage(ctx, item.url, persisted)

	if pages%e.cfg.CheckpointEvery == 0 {
		e.checkpoint()
	}

	for _, next := range ExtractRelations(doc) {
		if e.isProcessedPage(next) || e.frontier.has(next) {
			continue
		}
		e.frontier.add(pageItem{url: next, context: pageContext})
	}
}

// refreshRelations re-fetches an already-processed page to catch relations
// appended since the first visit. Members are not re-extracted: they were
// persisted when the page was first processed. The processed set never
// shrinks, which assumes an append-only stream; a page whose relations are
// later edited away is not repaired.
func (e *Engine) refreshRelations(ctx context.Context, item pageItem) {
	doc, err := e.fetcher.Fetch(ctx, item.url)
	if err != nil {
		e.logger.Error("Failed to refresh relations",
			zap.String("url", item.url),
			zap.Error(err),
		)
		return
	}
	pageContext := DocumentContext(doc)
	if pageContext == nil {
		pageContext = item.context
	}
	for _, next := range ExtractRelations(doc) {
		if e.isProcessedPage(next) || e.frontier.has(next) {
			continue
		}
		e.frontier.add(pageItem{url: next, context: pageContext})
	}
}

// checkpoint saves a snapshot of crawl state. Save failures are logged but
// never abort the run.
func (e *Engine) checkpoint() {
	st := e.Snapshot()
	if err := e.store.Save(&st); err != nil {
		e.logger.Error("Failed to save state", zap.Error(err))
		return
	}
	metrics.IncCheckpoint()
}

// finish runs unconditionally at the end of a harvest: it stamps final
// statistics, checkpoints, and logs the summary. A state-save failure here
// never masks the run outcome.
func (e *Engine) finish(start time.Time) {
	end := e.clock.Now()
	e.mu.Lock()
	e.stats.TotalDuration = end.Sub(start).Seconds()
	e.stats.EndTime = end.UTC().Format(time.RFC3339)
	stats := e.stats
	e.mu.Unlock()

	e.checkpoint()

	e.logger.Info("Harvest finished",
		zap.String("run_id", e.runID),
		zap.Int("members_harvested", stats.MembersHarvested),
		zap.Int("pages_processed", stats.PagesProcessed),
		zap.Int("errors", stats.Errors),
		zap.Float64("duration_seconds", stats.TotalDuration),
	)
}

func (e *Engine) recordMember(ctx context.Context, id, artifact string) {
	if e.registry != nil {
		rec := registry.MemberRecord{
			RunID:       e.runID,
			MemberID:    id,
			ArtifactURI: artifact,
			HarvestedAt: e.clock.Now().UTC(),
		}
		if err := e.registry.RecordMember(ctx, rec); err != nil {
			e.logger.Warn("Failed to record member in registry",
				zap.String("member_id", id),
				zap.Error(err),
			)
		}
	}
	if e.notifier != nil {
		if err := e.notifier.MemberHarvested(ctx, id); err != nil {
			e.logger.Warn("Failed to publish member notification",
				zap.String("member_id", id),
				zap.Error(err),
			)
		}
	}
}

func (e *Engine) recordPage(ctx context.Context, url string, members int) {
	if e.registry == nil {
		return
	}
	rec := registry.PageRecord{
		RunID:       e.runID,
		URL:         url,
		Members:     members,
		ProcessedAt: e.clock.Now().UTC(),
	}
	if err := e.registry.RecordPage(ctx, rec); err != nil {
		e.logger.Warn("Failed to record page in registry",
			zap.String("url", url),
			zap.Error(err),
		)
	}
}

func (e *Engine) isProcessedPage(url string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.processedPages[url]
	return ok
}

func (e *Engine) isProcessedMember(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.processedMembers[id]
	return ok
}

func (e *Engine) markMemberProcessed(id string) {
	e.mu.Lock()
	e.processedMembers[id] = struct{}{}
	e.stats.MembersHarvested++
	e.mu.Unlock()
}

// markPageProcessed moves a page from pending to processed and returns the
// updated page counter.
func (e *Engine) markPageProcessed(url string) int {
	e.mu.Lock()
	e.processedPages[url] = struct{}{}
	e.stats.PagesProcessed++
	pages := e.stats.PagesProcessed
	e.mu.Unlock()
	e.frontier.remove(url)
	return pages
}

func (e *Engine) countError() {
	e.mu.Lock()
	e.stats.Errors++
	e.mu.Unlock()
	metrics.IncError()
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
