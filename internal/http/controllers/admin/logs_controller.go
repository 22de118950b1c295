package admin

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dropDatabas3/authhub/internal/audit"
	dto "github.com/dropDatabas3/authhub/internal/http/dto/admin"
	dtoconn "github.com/dropDatabas3/authhub/internal/http/dto/connections"
	httperrors "github.com/dropDatabas3/authhub/internal/http/errors"
	"github.com/dropDatabas3/authhub/internal/http/helpers"
	svc "github.com/dropDatabas3/authhub/internal/http/services/admin"
)

// LogsController maneja auditoría, dashboard y el listado global de conexiones.
type LogsController struct {
	logs     svc.LogsService
	mappings svc.MappingsService
}

func NewLogsController(logs svc.LogsService, mappings svc.MappingsService) *LogsController {
	return &LogsController{logs: logs, mappings: mappings}
}

// Logs maneja GET /api/admin/logs?limit&offset&event_type&success&start_date&end_date
func (c *LogsController) Logs(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail(err.Error()))
		return
	}
	events, err := c.logs.Logs(r.Context(), f)
	if err != nil {
		httperrors.WriteError(w, MapError(err))
		return
	}
	f = audit.NormalizePage(f)
	helpers.WriteJSON(w, http.StatusOK, dto.LogsResponse{Logs: events, Limit: f.Limit, Offset: f.Offset})
}

// Stats maneja GET /api/admin/logs/stats
func (c *LogsController) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := c.logs.LogStats(r.Context())
	if err != nil {
		httperrors.WriteError(w, MapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, st)
}

// Purge maneja DELETE /api/admin/logs?older_than_days
func (c *LogsController) Purge(w http.ResponseWriter, r *http.Request) {
	days := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("older_than_days")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("older_than_days"))
			return
		}
		days = n
	}
	if days == 0 {
		days = audit.DefaultRetentionDays
	}
	n, err := c.logs.PurgeLogs(r.Context(), days)
	if err != nil {
		httperrors.WriteError(w, MapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.PurgeResponse{
		Message:       "Logs purged successfully",
		Deleted:       n,
		OlderThanDays: days,
	})
}

// Dashboard maneja GET /api/admin/stats
func (c *LogsController) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := c.logs.Dashboard(r.Context())
	if err != nil {
		httperrors.WriteError(w, MapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, d)
}

// Connections maneja GET /api/admin/connections (sin tokens).
func (c *LogsController) Connections(w http.ResponseWriter, r *http.Request) {
	conns, err := c.mappings.ListConnections(r.Context())
	if err != nil {
		httperrors.WriteError(w, MapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dtoconn.ListResponse{Connections: dtoconn.FromCoreList(conns)})
}

type paramError string

func (e paramError) Error() string { return string(e) }

func parseFilter(r *http.Request) (audit.Filter, error) {
	q := r.URL.Query()
	f := audit.Filter{EventType: strings.TrimSpace(q.Get("event_type"))}

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return f, paramError("limit")
		}
		f.Limit = n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return f, paramError("offset")
		}
		f.Offset = n
	}
	if raw := q.Get("success"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return f, paramError("success")
		}
		f.Success = &b
	}
	if raw := q.Get("start_date"); raw != "" {
		t, _, err := parseDate(raw)
		if err != nil {
			return f, paramError("start_date")
		}
		f.Since = &t
	}
	if raw := q.Get("end_date"); raw != "" {
		t, dateOnly, err := parseDate(raw)
		if err != nil {
			return f, paramError("end_date")
		}
		// una fecha sin hora incluye el día completo
		if dateOnly {
			t = t.Add(24*time.Hour - time.Millisecond)
		}
		f.Until = &t
	}
	return f, nil
}

// parseDate acepta RFC3339 o YYYY-MM-DD (UTC).
func parseDate(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), false, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}
