// Package engine keeps the user's learning progress consistent between
// the device-local cache and the authoritative remote store. Reads are
// cache-first and never block on the network when a snapshot exists;
// writes land locally first and reconcile with the remote best-effort.
package engine

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/topiq/internal/cache"
	"github.com/abhisek/topiq/internal/connectivity"
	"github.com/abhisek/topiq/internal/profile"
	"github.com/abhisek/topiq/internal/remote"
)

// Engine orchestrates the dual-store protocol. Both stores are injected
// so tests can substitute in-memory fakes.
type Engine struct {
	cache  cache.ProfileCache
	remote remote.ProfileRemote
	log    *zap.Logger

	wg          sync.WaitGroup
	refreshHook func(RefreshResult)
}

// RefreshResult reports the outcome of one background cache refresh.
type RefreshResult struct {
	Profile *profile.Profile
	Err     error
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to zap.NewNop().
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithRefreshHook registers a callback invoked after every background
// refresh attempt. Used by tests to observe the refresh without racing it.
func WithRefreshHook(hook func(RefreshResult)) Option {
	return func(e *Engine) { e.refreshHook = hook }
}

// New creates an Engine over the given stores.
func New(c cache.ProfileCache, r remote.ProfileRemote, opts ...Option) *Engine {
	e := &Engine{
		cache:  c,
		remote: r,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GetProfile returns the user's profile, or nil when none can be
// produced. With a matching cached snapshot the cached value is returned
// immediately and a background refresh overwrites the cache from the
// remote without altering this call's result. On a cache miss the remote
// is fetched synchronously; if that also fails the profile is absent,
// which callers must treat as guest state, not as a hard failure.
func (e *Engine) GetProfile(ctx context.Context, userID string) *profile.Profile {
	cached, err := e.cache.Load()
	if err != nil {
		e.log.Warn("load cached profile", zap.Error(err))
	}

	if cached != nil && cached.ID == userID {
		e.wg.Add(1)
		go e.refresh(userID)
		return cached
	}

	fetched, err := e.remote.FetchProfile(ctx, userID)
	if err != nil {
		out := connectivity.Classify(err)
		e.log.Warn("fetch profile",
			zap.String("user", userID),
			zap.String("kind", out.Kind.String()),
			zap.Error(err))
		return nil
	}

	// A snapshot for a different user must be cleared before the new one
	// is written; snapshots never mix across accounts.
	if cached != nil && cached.ID != userID {
		if err := e.cache.Clear(); err != nil {
			e.log.Warn("clear stale profile", zap.Error(err))
		}
	}
	if err := e.cache.Save(fetched); err != nil {
		e.log.Warn("cache fetched profile", zap.Error(err))
	}
	return fetched
}

// refresh fetches the remote profile and, on success, overwrites the
// local snapshot with remote truth.
func (e *Engine) refresh(userID string) {
	defer e.wg.Done()

	p, err := e.remote.FetchProfile(context.Background(), userID)
	if err == nil {
		if saveErr := e.cache.Save(p); saveErr != nil {
			err = saveErr
		}
	} else {
		out := connectivity.Classify(err)
		e.log.Debug("background refresh failed",
			zap.String("user", userID),
			zap.String("kind", out.Kind.String()),
			zap.Error(err))
	}

	if e.refreshHook != nil {
		e.refreshHook(RefreshResult{Profile: p, Err: err})
	}
}

// Wait blocks until all in-flight background refreshes complete. The CLI
// calls it before exit so a refresh is not cut off mid-write.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// RecordQuizCompletion folds one completed quiz into both stores.
//
// The local phase merges the delta into the cached snapshot when its ID
// matches userID, and is skipped silently otherwise: fabricating a local
// profile here could graft one account's progress onto another's cache.
// The remote phase re-fetches the remote's own current state and merges
// the delta against that, not against the locally merged value; local
// and remote may have diverged, and only a fresh read keeps the delta
// from being applied twice or against a stale count. Remote failures are
// logged and reported in the ReconcileOutcome, never returned as errors.
//
// The returned error covers precondition violations and local-phase I/O
// only.
func (e *Engine) RecordQuizCompletion(ctx context.Context, userID, topic string, questionsAnswered, correctCount int, records []profile.HistoryRecord) (ReconcileOutcome, error) {
	// Validate deltas before touching either store.
	if _, err := profile.Merge(profile.TopicKnowledge{}, questionsAnswered, correctCount); err != nil {
		return ReconcileFailed, err
	}

	if err := e.applyLocal(userID, topic, questionsAnswered, correctCount); err != nil {
		return ReconcileFailed, err
	}

	return e.reconcileRemote(ctx, userID, topic, questionsAnswered, correctCount, records), nil
}

func (e *Engine) applyLocal(userID, topic string, questionsAnswered, correctCount int) error {
	cached, err := e.cache.Load()
	if err != nil {
		return err
	}
	if cached == nil || cached.ID != userID {
		// No matching snapshot: the local phase is a no-op, not an error.
		return nil
	}

	merged, err := profile.Merge(cached.Knowledge(topic), questionsAnswered, correctCount)
	if err != nil {
		return err
	}
	cached.SetKnowledge(topic, merged)
	return e.cache.Save(cached)
}

func (e *Engine) reconcileRemote(ctx context.Context, userID, topic string, questionsAnswered, correctCount int, records []profile.HistoryRecord) ReconcileOutcome {
	current, err := e.remote.FetchProfile(ctx, userID)
	if err != nil {
		e.logReconcileFailure("fetch remote profile", userID, err)
		return ReconcileFailed
	}

	merged, err := profile.Merge(current.Knowledge(topic), questionsAnswered, correctCount)
	if err != nil {
		e.logReconcileFailure("merge remote knowledge", userID, err)
		return ReconcileFailed
	}
	current.SetKnowledge(topic, merged)

	if err := e.remote.UpdateKnowledge(ctx, userID, current.KnowledgeByTopic); err != nil {
		e.logReconcileFailure("update remote knowledge", userID, err)
		return ReconcileFailed
	}

	if err := e.remote.AppendHistory(ctx, records); err != nil {
		e.logReconcileFailure("append history", userID, err)
		return ReconcileFailed
	}

	return ReconcileSynced
}

func (e *Engine) logReconcileFailure(op, userID string, err error) {
	out := connectivity.Classify(err)
	e.log.Warn("remote reconciliation failed",
		zap.String("op", op),
		zap.String("user", userID),
		zap.String("kind", out.Kind.String()),
		zap.Error(err))
}

// ListTopics returns the sorted topic names in the user's knowledge map,
// or an empty slice when the profile is absent.
func (e *Engine) ListTopics(ctx context.Context, userID string) []string {
	p := e.GetProfile(ctx, userID)
	if p == nil {
		return []string{}
	}
	topics := p.Topics()
	sort.Strings(topics)
	return topics
}

// HistoryForTopic returns the user's answered-question history for the
// topic. History is supplementary, so failures degrade to an empty slice.
func (e *Engine) HistoryForTopic(ctx context.Context, userID, topic string) []profile.HistoryRecord {
	records, err := e.remote.FetchHistory(ctx, userID, topic)
	if err != nil {
		out := connectivity.Classify(err)
		e.log.Warn("fetch history",
			zap.String("user", userID),
			zap.String("topic", profile.NormalizeTopic(topic)),
			zap.String("kind", out.Kind.String()),
			zap.Error(err))
		return []profile.HistoryRecord{}
	}
	if records == nil {
		records = []profile.HistoryRecord{}
	}
	return records
}
