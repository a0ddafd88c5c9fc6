// Package service composes the fusion pipeline behind the external
// ingest and query operations and mediates with the durable mirror.
package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/gridwatch/internal/evidence"
	"github.com/linnemanlabs/gridwatch/internal/fusion"
	"github.com/linnemanlabs/gridwatch/internal/incident"
	"github.com/linnemanlabs/gridwatch/internal/mirror"
)

const (
	// DefaultLimit and MaxLimit bound the query page size.
	DefaultLimit = 20
	MaxLimit     = 100

	// mirrorTimeout bounds each mirror call so a slow or unavailable
	// store never stalls the primary response path.
	mirrorTimeout = 5 * time.Second
)

// Notifier delivers high-severity incident notifications. Best effort:
// errors are logged and counted, never surfaced.
type Notifier interface {
	Send(ctx context.Context, inc *incident.Incident) error
}

// IngestResult reports per-batch ingest accounting.
type IngestResult struct {
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// Service is the business boundary for evidence ingest and incident
// queries. Safe for concurrent callers: many producers may ingest while
// queries are in flight; each query is independently consistent with the
// snapshot it took.
type Service struct {
	store   *evidence.Store
	engine  *fusion.Engine
	mirror  mirror.Store
	metrics *fusion.Metrics
	logger  log.Logger
	clock   func() time.Time

	notifier        Notifier
	notifyThreshold float64
	notifiedMu      sync.Mutex
	notified        map[string]struct{}
}

// New creates the service. store, engine, mir, and metrics are required;
// logger may be nil (Nop); notifier may be nil (notifications disabled).
func New(
	store *evidence.Store,
	engine *fusion.Engine,
	mir mirror.Store,
	metrics *fusion.Metrics,
	logger log.Logger,
	notifier Notifier,
	notifyThreshold float64,
) *Service {
	if store == nil || engine == nil || mir == nil || metrics == nil {
		panic(xerrors.New("service: store, engine, mirror, and metrics are required"))
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		store:           store,
		engine:          engine,
		mirror:          mir,
		metrics:         metrics,
		logger:          logger,
		clock:           time.Now,
		notifier:        notifier,
		notifyThreshold: notifyThreshold,
		notified:        make(map[string]struct{}),
	}
}

// Ingest validates and stores a batch of evidence records. Malformed
// records are skipped individually; the rest of the batch is accepted.
// Never touches the mirror.
func (s *Service) Ingest(ctx context.Context, batch []evidence.Evidence) IngestResult {
	now := s.clock()
	var res IngestResult
	for i := range batch {
		ev := batch[i]
		ev.Normalize(now)
		if err := ev.Validate(); err != nil {
			s.logger.Warn(ctx, "rejected evidence record",
				"evidence_id", ev.EvidenceID,
				"source_type", ev.SourceType,
				"error", err,
			)
			s.metrics.EvidenceRejected.WithLabelValues("validation").Inc()
			res.Rejected++
			continue
		}
		s.store.Add(ev)
		s.metrics.EvidenceIngested.WithLabelValues(string(ev.SourceType)).Inc()
		res.Accepted++
	}
	return res
}

// Query runs the full fusion pipeline over a fresh snapshot, mirrors the
// result best-effort, and serves the mirror read-back when available so
// callers see continuity across restarts, falling back to the freshly
// computed result otherwise. Output is ordered by severity descending.
func (s *Service) Query(ctx context.Context, limit int, since *time.Time) []incident.Public {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	snapshot := s.store.Snapshot()
	s.metrics.SnapshotSize.Observe(float64(len(snapshot)))

	start := s.clock()
	incidents := s.engine.Build(snapshot, start)
	s.metrics.BuildDuration.Observe(time.Since(start).Seconds())
	s.metrics.IncidentsBuilt.Observe(float64(len(incidents)))
	for i := range incidents {
		for _, rule := range incidents[i].Why.RulesFired {
			s.metrics.RulesFired.WithLabelValues(rule).Inc()
		}
	}

	if len(incidents) > limit {
		incidents = incidents[:limit]
	}

	fresh := make([]incident.Public, len(incidents))
	for i := range incidents {
		fresh[i] = incident.ToPublic(&incidents[i])
	}

	s.upsertMirror(ctx, fresh)
	s.dispatchNotifications(ctx, incidents)

	if rows, ok := s.readBack(ctx, limit, since); ok {
		s.metrics.QueriesServed.WithLabelValues("mirror").Inc()
		return rows
	}

	s.metrics.QueriesServed.WithLabelValues("fresh").Inc()
	return filterSince(fresh, since)
}

// upsertMirror is best effort: bounded, no retries, failures logged and
// swallowed. The next query retries implicitly by re-running the pipeline.
func (s *Service) upsertMirror(ctx context.Context, rows []incident.Public) {
	if len(rows) == 0 {
		return
	}
	mctx, cancel := context.WithTimeout(ctx, mirrorTimeout)
	defer cancel()
	if err := s.mirror.Upsert(mctx, rows); err != nil {
		s.logger.Warn(ctx, "mirror upsert failed", "incidents", len(rows), "error", err)
		s.metrics.MirrorOps.WithLabelValues("upsert", "error").Inc()
		return
	}
	s.metrics.MirrorOps.WithLabelValues("upsert", "ok").Inc()
}

// readBack prefers the durable mirror; ok is false when the mirror is
// unavailable or has nothing, in which case the caller serves fresh.
func (s *Service) readBack(ctx context.Context, limit int, since *time.Time) ([]incident.Public, bool) {
	mctx, cancel := context.WithTimeout(ctx, mirrorTimeout)
	defer cancel()

	rows, err := s.mirror.Query(mctx, limit, since)
	if err != nil {
		s.logger.Warn(ctx, "mirror query failed", "error", err)
		s.metrics.MirrorOps.WithLabelValues("query", "error").Inc()
		return nil, false
	}
	s.metrics.MirrorOps.WithLabelValues("query", "ok").Inc()
	if len(rows) == 0 {
		return nil, false
	}

	// The mirror returns recency order; the external contract is
	// severity descending on every path.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Severity != rows[j].Severity {
			return rows[i].Severity > rows[j].Severity
		}
		return rows[i].ID < rows[j].ID
	})
	return rows, true
}

// dispatchNotifications sends each incident at or above the severity
// threshold at most once per process lifetime, asynchronously.
func (s *Service) dispatchNotifications(ctx context.Context, incidents []incident.Incident) {
	if s.notifier == nil {
		return
	}
	for i := range incidents {
		inc := incidents[i]
		if inc.Severity < s.notifyThreshold {
			continue
		}

		s.notifiedMu.Lock()
		_, seen := s.notified[inc.ID]
		if !seen {
			s.notified[inc.ID] = struct{}{}
		}
		s.notifiedMu.Unlock()
		if seen {
			continue
		}

		go func() {
			nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mirrorTimeout)
			defer cancel()
			if err := s.notifier.Send(nctx, &inc); err != nil {
				s.logger.Warn(nctx, "incident notification failed", "incident_id", inc.ID, "error", err)
				s.metrics.NotifyTotal.WithLabelValues("error").Inc()
				return
			}
			s.metrics.NotifyTotal.WithLabelValues("ok").Inc()
		}()
	}
}

func filterSince(rows []incident.Public, since *time.Time) []incident.Public {
	if since == nil {
		return rows
	}
	out := rows[:0:0]
	for _, r := range rows {
		if r.CreatedAt.After(*since) {
			out = append(out, r)
		}
	}
	return out
}
