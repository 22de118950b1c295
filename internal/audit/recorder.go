// Package audit persiste y consulta los eventos de autenticación y administración.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dropDatabas3/authhub/internal/metrics"
	"github.com/dropDatabas3/authhub/internal/observability/logger"
	"github.com/dropDatabas3/authhub/internal/store/core"
)

const (
	DefaultLimit         = 100
	MaxLimit             = 1000
	DefaultRetentionDays = 30
	recentWindow         = 24 * time.Hour
	writeTimeout         = 5 * time.Second
)

var ErrInvalidRetention = errors.New("audit: retention days must not be negative")

// Filter es el filtro de Query; Limit y Offset se normalizan.
type Filter = core.AuditFilter

// Stats sale de una única consulta agrupada, así que
// TotalEvents == SuccessCount+FailureCount == suma de EventTypes.
type Stats struct {
	TotalEvents  int64            `json:"total_events"`
	SuccessCount int64            `json:"success_count"`
	FailureCount int64            `json:"failure_count"`
	RecentEvents int64            `json:"recent_events"`
	EventTypes   map[string]int64 `json:"event_types"`
}

type Recorder struct {
	repo    core.AuditRepository
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Recorder)

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Recorder) { r.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

func NewRecorder(repo core.AuditRepository, opts ...Option) *Recorder {
	r := &Recorder{repo: repo, now: time.Now}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Record nunca falla hacia el caller: los errores se loguean y se cuentan.
func (r *Recorder) Record(ctx context.Context, ev Event) {
	log := logger.From(ctx).With(logger.Component("audit"), logger.EventType(ev.Type))

	details := ""
	if len(ev.Details) > 0 {
		b, err := json.Marshal(ev.Details)
		if err != nil {
			log.Warn("audit details not serializable", logger.Err(err))
		} else {
			details = string(b)
		}
	}

	if c, ok := clientFrom(ctx); ok {
		if ev.IP == "" {
			ev.IP = c.ip
		}
		if ev.UserAgent == "" {
			ev.UserAgent = c.userAgent
		}
	}

	row := &core.AuthEvent{
		EventType:      ev.Type,
		ExternalApp:    ev.ExternalApp,
		InternalApp:    ev.InternalApp,
		UserIdentifier: ev.UserIdentifier,
		IPAddress:      ev.IP,
		UserAgent:      ev.UserAgent,
		Success:        ev.Success,
		ErrorMessage:   ev.ErrorMessage,
		Details:        details,
		CreatedAt:      r.now().UTC(),
	}
	// el evento se escribe aunque el cliente haya cortado el request
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()
	if err := r.repo.InsertEvent(wctx, row); err != nil {
		r.metrics.AuditWriteFailed()
		log.Error("audit write failed", logger.Err(err))
	}
}

// NormalizePage acota Limit a [1, MaxLimit] (0 => DefaultLimit) y Offset a >= 0.
func NormalizePage(f Filter) Filter {
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultLimit
	case f.Limit > MaxLimit:
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

func (r *Recorder) Query(ctx context.Context, f Filter) ([]core.AuthEvent, error) {
	events, err := r.repo.QueryEvents(ctx, NormalizePage(f))
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []core.AuthEvent{}
	}
	return events, nil
}

// Stats considera "recent" las últimas 24h respecto de now.
func (r *Recorder) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	rows, err := r.repo.CountEvents(ctx, now.Add(-recentWindow))
	if err != nil {
		return nil, err
	}
	st := &Stats{EventTypes: map[string]int64{}}
	for _, c := range rows {
		st.TotalEvents += c.Count
		st.RecentEvents += c.Recent
		st.EventTypes[c.EventType] += c.Count
		if c.Success {
			st.SuccessCount += c.Count
		} else {
			st.FailureCount += c.Count
		}
	}
	return st, nil
}

// Purge borra eventos con más de days días. 0 usa DefaultRetentionDays.
func (r *Recorder) Purge(ctx context.Context, days int) (int64, error) {
	if days < 0 {
		return 0, ErrInvalidRetention
	}
	if days == 0 {
		days = DefaultRetentionDays
	}
	cutoff := r.now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	n, err := r.repo.PurgeEvents(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	r.metrics.AuditPurged(n)
	return n, nil
}

// RunRetention purga al arrancar y luego en cada interval hasta que ctx se cancele.
// Los errores de purga se loguean; el loop sigue.
func (r *Recorder) RunRetention(ctx context.Context, interval time.Duration, days int) error {
	if interval <= 0 {
		return errors.New("audit: retention interval must be positive")
	}
	log := logger.From(ctx).With(logger.Component("audit"), logger.Op("retention"))

	purge := func() {
		n, err := r.Purge(ctx, days)
		if err != nil {
			if ctx.Err() == nil {
				log.Error("audit purge failed", logger.Err(err))
			}
			return
		}
		if n > 0 {
			log.Info("audit events purged", logger.Int64("purged", n), logger.Int("retention_days", days))
		}
	}

	purge()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			purge()
		}
	}
}
