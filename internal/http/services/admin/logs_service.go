package admin

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/authhub/internal/audit"
	"github.com/dropDatabas3/authhub/internal/store/core"
)

// Dashboard son los contadores de /api/admin/stats.
type Dashboard struct {
	TotalUsers        int64 `json:"total_users"`
	ActiveConnections int64 `json:"active_connections"`
	InternalApps      int64 `json:"internal_apps"`
	RecentActivity    int64 `json:"recent_activity"`
}

type LogsService interface {
	Logs(ctx context.Context, f audit.Filter) ([]core.AuthEvent, error)
	LogStats(ctx context.Context) (*audit.Stats, error)
	PurgeLogs(ctx context.Context, days int) (int64, error)
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type logsService struct {
	deps Deps
}

func NewLogsService(d Deps) LogsService {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &logsService{deps: d}
}

func (s *logsService) Logs(ctx context.Context, f audit.Filter) ([]core.AuthEvent, error) {
	return s.deps.Audit.Query(ctx, f)
}

func (s *logsService) LogStats(ctx context.Context) (*audit.Stats, error) {
	return s.deps.Audit.Stats(ctx, s.deps.Now().UTC())
}

func (s *logsService) PurgeLogs(ctx context.Context, days int) (int64, error) {
	if days == 0 {
		days = audit.DefaultRetentionDays
	}
	n, err := s.deps.Audit.Purge(ctx, days)
	if err != nil {
		return 0, err
	}
	s.deps.Audit.Record(ctx, audit.Event{
		Type:           audit.AuditPurged,
		UserIdentifier: "admin",
		Success:        true,
		Details:        map[string]any{"deleted": n, "older_than_days": days},
	})
	return n, nil
}

// Dashboard junta los contadores en paralelo; el primer error cancela el resto.
func (s *logsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.TotalUsers, err = s.deps.Repo.CountUsers(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.ActiveConnections, err = s.deps.Repo.CountConnectionsByStatus(gctx, core.ConnectionActive)
		return err
	})
	g.Go(func() (err error) {
		d.InternalApps, err = s.deps.Repo.CountActiveApps(gctx)
		return err
	})
	g.Go(func() error {
		st, err := s.deps.Audit.Stats(gctx, s.deps.Now().UTC())
		if err != nil {
			return err
		}
		d.RecentActivity = st.RecentEvents
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}
