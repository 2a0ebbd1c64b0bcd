package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/consolehq/sitemonitor/internal/domain"
	"github.com/consolehq/sitemonitor/internal/repo"
)

var _ repo.MonitorStore = (*Store)(nil)
var _ repo.ResultStore = (*Store)(nil)

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// ---- MonitorStore ----

func (s *Store) Get(ctx context.Context, id domain.MonitorID) (*domain.MonitorConfig, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, org_id, url, name, checks, is_active, created_at,
		        last_checked_at, last_status, last_screenshot_url
		   FROM monitors
		  WHERE id = $1`, string(id))

	var (
		m          domain.MonitorConfig
		checksJSON []byte
		lastStatus *string
	)
	err := row.Scan(&m.ID, &m.OrgID, &m.URL, &m.Name, &checksJSON, &m.IsActive,
		&m.CreatedAt, &m.LastCheckedAt, &lastStatus, &m.LastScreenshotURL)
	if found, err := classifyScan("select monitor", err); !found {
		return nil, err
	}
	if err := json.Unmarshal(checksJSON, &m.Checks); err != nil {
		return nil, fmt.Errorf("decode checks: %w", err)
	}
	if lastStatus != nil {
		v := domain.Verdict(*lastStatus)
		m.LastStatus = &v
	}
	return &m, nil
}

// classifyScan separates an absent row from a persistence failure.
// Only pgx.ErrNoRows means "not found"; anything else is a real error
// and must never be reported as absence.
func classifyScan(op string, err error) (found bool, _ error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, pgx.ErrNoRows):
		return false, nil
	default:
		return false, fmt.Errorf("%s: %w", op, err)
	}
}

func (s *Store) Put(ctx context.Context, m *domain.MonitorConfig) error {
	if m.ID == "" {
		m.ID = domain.MonitorID(makeID())
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	checksJSON, err := json.Marshal(m.Checks)
	if err != nil {
		return fmt.Errorf("encode checks: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO monitors (id, org_id, url, name, checks, is_active, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (id) DO UPDATE
		    SET org_id = EXCLUDED.org_id, url = EXCLUDED.url, name = EXCLUDED.name,
		        checks = EXCLUDED.checks, is_active = EXCLUDED.is_active`,
		string(m.ID), string(m.OrgID), m.URL, m.Name, checksJSON, m.IsActive, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert monitor: %w", err)
	}
	return nil
}

func (s *Store) ListActive(ctx context.Context) ([]*domain.MonitorConfig, error) {
	return s.list(ctx,
		`SELECT id, org_id, url, name, checks, is_active, created_at,
		        last_checked_at, last_status, last_screenshot_url
		   FROM monitors
		  WHERE is_active
		  ORDER BY created_at`)
}

func (s *Store) ListByOrg(ctx context.Context, org domain.OrgID) ([]*domain.MonitorConfig, error) {
	return s.list(ctx,
		`SELECT id, org_id, url, name, checks, is_active, created_at,
		        last_checked_at, last_status, last_screenshot_url
		   FROM monitors
		  WHERE org_id = $1
		  ORDER BY created_at`, string(org))
}

func (s *Store) list(ctx context.Context, sql string, args ...any) ([]*domain.MonitorConfig, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list monitors: %w", err)
	}
	defer rows.Close()

	var out []*domain.MonitorConfig
	for rows.Next() {
		var (
			m          domain.MonitorConfig
			checksJSON []byte
			lastStatus *string
		)
		if err := rows.Scan(&m.ID, &m.OrgID, &m.URL, &m.Name, &checksJSON, &m.IsActive,
			&m.CreatedAt, &m.LastCheckedAt, &lastStatus, &m.LastScreenshotURL); err != nil {
			return nil, fmt.Errorf("scan monitor: %w", err)
		}
		if err := json.Unmarshal(checksJSON, &m.Checks); err != nil {
			return nil, fmt.Errorf("decode checks: %w", err)
		}
		if lastStatus != nil {
			v := domain.Verdict(*lastStatus)
			m.LastStatus = &v
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (s *Store) UpdateCheckCache(ctx context.Context, id domain.MonitorID, c repo.CheckCache) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE monitors
		    SET last_checked_at = $2,
		        last_status = $3,
		        last_screenshot_url = COALESCE($4, last_screenshot_url)
		  WHERE id = $1`,
		string(id), c.LastCheckedAt, string(c.LastStatus), c.LastScreenshotURL)
	if err != nil {
		return fmt.Errorf("update check cache: %w", err)
	}
	return nil
}

// ---- ResultStore ----

func (s *Store) Append(ctx context.Context, r *domain.CheckResult) error {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	httpJSON, err := marshalOpt(r.HTTPStatus)
	if err != nil {
		return err
	}
	sslJSON, err := marshalOpt(r.SSLCertificate)
	if err != nil {
		return err
	}
	dnsJSON, err := marshalOpt(r.DNSRecords)
	if err != nil {
		return err
	}
	mxJSON, err := marshalOpt(r.MXRecords)
	if err != nil {
		return err
	}
	ssJSON, err := marshalOpt(r.Screenshot)
	if err != nil {
		return err
	}
	piJSON, err := marshalOpt(r.PageInfo)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO check_results
		   (monitor_id, url, ts, http_status, ssl_certificate, dns_records,
		    mx_records, screenshot, page_info, response_time_ms, overall_status)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		string(r.MonitorID), r.URL, r.Timestamp, httpJSON, sslJSON, dnsJSON,
		mxJSON, ssJSON, piJSON, r.ResponseTimeMS, string(r.OverallStatus))
	if err != nil {
		return fmt.Errorf("insert check result: %w", err)
	}
	return nil
}

func (s *Store) HistoryByMonitor(ctx context.Context, id domain.MonitorID, since time.Time, limit, offset int) ([]*domain.CheckResult, error) {
	// LIMIT NULL is "no limit" in postgres, matching limit <= 0.
	var lim *int
	if limit > 0 {
		lim = &limit
	}
	rows, err := s.pool.Query(ctx,
		`SELECT monitor_id, url, ts, http_status, ssl_certificate, dns_records,
		        mx_records, screenshot, page_info, response_time_ms, overall_status
		   FROM check_results
		  WHERE monitor_id = $1 AND ts >= $2
		  ORDER BY ts DESC
		  LIMIT $3 OFFSET $4`,
		string(id), since, lim, offset)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()
	return scanResults(rows)
}

func (s *Store) HistoryByOrg(ctx context.Context, org domain.OrgID, since time.Time) ([]*domain.CheckResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT r.monitor_id, r.url, r.ts, r.http_status, r.ssl_certificate, r.dns_records,
		        r.mx_records, r.screenshot, r.page_info, r.response_time_ms, r.overall_status
		   FROM check_results r
		   JOIN monitors m ON m.id = r.monitor_id
		  WHERE m.org_id = $1 AND r.ts >= $2
		  ORDER BY r.ts DESC`,
		string(org), since)
	if err != nil {
		return nil, fmt.Errorf("list org results: %w", err)
	}
	defer rows.Close()
	return scanResults(rows)
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanResults(rows pgxRows) ([]*domain.CheckResult, error) {
	var out []*domain.CheckResult
	for rows.Next() {
		var (
			r      domain.CheckResult
			status string
			httpB  []byte
			sslB   []byte
			dnsB   []byte
			mxB    []byte
			ssB    []byte
			piB    []byte
		)
		if err := rows.Scan(&r.MonitorID, &r.URL, &r.Timestamp, &httpB, &sslB, &dnsB,
			&mxB, &ssB, &piB, &r.ResponseTimeMS, &status); err != nil {
			return nil, fmt.Errorf("scan check result: %w", err)
		}
		r.OverallStatus = domain.Verdict(status)
		if err := unmarshalOpt(httpB, &r.HTTPStatus); err != nil {
			return nil, err
		}
		if err := unmarshalOpt(sslB, &r.SSLCertificate); err != nil {
			return nil, err
		}
		if err := unmarshalOpt(dnsB, &r.DNSRecords); err != nil {
			return nil, err
		}
		if err := unmarshalOpt(mxB, &r.MXRecords); err != nil {
			return nil, err
		}
		if err := unmarshalOpt(ssB, &r.Screenshot); err != nil {
			return nil, err
		}
		if err := unmarshalOpt(piB, &r.PageInfo); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// marshalOpt encodes an optional sub-result; a nil pointer stays SQL NULL.
func marshalOpt[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode sub-result: %w", err)
	}
	return b, nil
}

func unmarshalOpt[T any](b []byte, dst **T) error {
	if len(b) == 0 {
		return nil
	}
	v := new(T)
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode sub-result: %w", err)
	}
	*dst = v
	return nil
}

// ID format mirrors the memory store: 20060102Thhmmss.nnnnnnnnn
func makeID() string {
	now := time.Now().UTC()
	return now.Format("20060102T150405.") + fmt.Sprintf("%09d", now.Nanosecond())
}
