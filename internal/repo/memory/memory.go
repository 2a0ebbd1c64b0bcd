package memory

import (
	"context"
	"sync"
	"time"

	"github.com/consolehq/sitemonitor/internal/domain"
	"github.com/consolehq/sitemonitor/internal/repo"
)

// Store is the in-memory adapter, used in tests and when no DATABASE_URL
// is configured.
type Store struct {
	mu       sync.RWMutex
	monitors map[domain.MonitorID]*domain.MonitorConfig
	results  []*domain.CheckResult
	alerts   map[domain.MonitorID]*repo.AlertRecord
}

func New() *Store {
	return &Store{
		monitors: make(map[domain.MonitorID]*domain.MonitorConfig),
		results:  make([]*domain.CheckResult, 0, 128),
		alerts:   make(map[domain.MonitorID]*repo.AlertRecord),
	}
}

// ---- MonitorStore ----

func (s *Store) Get(ctx context.Context, id domain.MonitorID) (*domain.MonitorConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := s.monitors[id]
	if m == nil {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (s *Store) Put(ctx context.Context, m *domain.MonitorConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = domain.MonitorID(time.Now().UTC().Format("20060102T150405.000000000"))
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	cp := *m
	s.monitors[m.ID] = &cp
	return nil
}

func (s *Store) ListActive(ctx context.Context) ([]*domain.MonitorConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.MonitorConfig, 0, len(s.monitors))
	for _, m := range s.monitors {
		if m.IsActive {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) ListByOrg(ctx context.Context, org domain.OrgID) ([]*domain.MonitorConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.MonitorConfig, 0)
	for _, m := range s.monitors {
		if m.OrgID == org {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) UpdateCheckCache(ctx context.Context, id domain.MonitorID, c repo.CheckCache) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.monitors[id]
	if m == nil {
		return nil
	}
	at := c.LastCheckedAt
	st := c.LastStatus
	m.LastCheckedAt = &at
	m.LastStatus = &st
	if c.LastScreenshotURL != nil {
		m.LastScreenshotURL = c.LastScreenshotURL
	}
	return nil
}

// ---- ResultStore ----

func (s *Store) Append(ctx context.Context, r *domain.CheckResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.results = append(s.results, &cp)
	return nil
}

func (s *Store) HistoryByMonitor(ctx context.Context, id domain.MonitorID, since time.Time, limit, offset int) ([]*domain.CheckResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*domain.CheckResult, 0)
	// results are appended in arrival order; walk backwards for newest first
	for i := len(s.results) - 1; i >= 0; i-- {
		r := s.results[i]
		if r.MonitorID != id || r.Timestamp.Before(since) {
			continue
		}
		cp := *r
		matched = append(matched, &cp)
	}
	if offset > 0 {
		if offset >= len(matched) {
			return nil, nil
		}
		matched = matched[offset:]
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *Store) HistoryByOrg(ctx context.Context, org domain.OrgID, since time.Time) ([]*domain.CheckResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make(map[domain.MonitorID]bool)
	for _, m := range s.monitors {
		if m.OrgID == org {
			ids[m.ID] = true
		}
	}

	out := make([]*domain.CheckResult, 0)
	for _, r := range s.results {
		if ids[r.MonitorID] && !r.Timestamp.Before(since) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- AlertStore ----

// Alerts exposes the alert-state view of the store; Get/Set clash with
// the monitor methods, hence the separate facade.
func (s *Store) Alerts() repo.AlertStore { return alertStore{s} }

type alertStore struct{ s *Store }

func (a alertStore) Get(ctx context.Context, id domain.MonitorID) (*repo.AlertRecord, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	rec := a.s.alerts[id]
	if rec == nil {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (a alertStore) Set(ctx context.Context, id domain.MonitorID, verdict domain.Verdict, sentAt time.Time) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	rec := a.s.alerts[id]
	if rec == nil {
		rec = &repo.AlertRecord{MonitorID: id}
		a.s.alerts[id] = rec
	}
	rec.LastVerdict = verdict
	if !sentAt.IsZero() {
		at := sentAt
		rec.LastSentAt = &at
	}
	return nil
}

var _ repo.MonitorStore = (*Store)(nil)
var _ repo.ResultStore = (*Store)(nil)
var _ repo.AlertStore = (alertStore{})
