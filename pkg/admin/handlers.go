package admin

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/getmockd/wsdebug/pkg/export"
	"github.com/getmockd/wsdebug/pkg/inspector"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}

// readQuery parses the request's query, answering 400 on failure.
func (a *API) readQuery(w http.ResponseWriter, r *http.Request) (inspector.Query, bool) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidFilter, err.Error())
		return q, false
	}
	return q, true
}

// queryFailed reports an error returned while evaluating a query.
func (a *API) queryFailed(w http.ResponseWriter, err error) {
	a.log.Warn("query failed", "error", err)
	writeError(w, http.StatusUnprocessableEntity, codeFilterFailed, err.Error())
}

// handleHealth handles GET /health.
func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Session: a.session.ID(),
		Uptime:  a.Uptime(),
		Events:  a.session.Len(),
		Version: a.version,
	})
}

// handleSockets handles GET /sockets.
func (a *API) handleSockets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SocketsResponse{Sockets: a.insp.Sockets()})
}

// handleColumns handles GET /columns.
func (a *API) handleColumns(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ColumnsResponse{Columns: a.insp.DefaultColumns()})
}

// handleLogs handles GET /logs.
func (a *API) handleLogs(w http.ResponseWriter, r *http.Request) {
	q, ok := a.readQuery(w, r)
	if !ok {
		return
	}
	res, err := a.insp.Logs(q)
	if err != nil {
		a.queryFailed(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleLogsCSV handles GET /logs.csv.
func (a *API) handleLogsCSV(w http.ResponseWriter, r *http.Request) {
	q, ok := a.readQuery(w, r)
	if !ok {
		return
	}
	body, err := a.insp.CSV(q)
	if err != nil {
		a.queryFailed(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// handleLogsPretty handles GET /logs/pretty.
func (a *API) handleLogsPretty(w http.ResponseWriter, r *http.Request) {
	q, ok := a.readQuery(w, r)
	if !ok {
		return
	}
	// Evaluate first so a failing filter can still get a proper status.
	if _, err := a.insp.Logs(q); err != nil {
		a.queryFailed(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := a.insp.PrettyTo(w, q); err != nil {
		a.log.Warn("pretty output failed", "error", err)
	}
}

// handleClearLogs handles DELETE /logs.
func (a *API) handleClearLogs(w http.ResponseWriter, _ *http.Request) {
	n := a.insp.Clear()
	a.log.Info("event log cleared", "events", n)
	writeJSON(w, http.StatusOK, ClearResponse{Cleared: n})
}

// handleExport handles GET /logs/export.
func (a *API) handleExport(w http.ResponseWriter, r *http.Request) {
	q, ok := a.readQuery(w, r)
	if !ok {
		return
	}
	gzip := true
	if v := r.URL.Query().Get(paramGzip); v != "" {
		b, err := parseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidFilter, fmt.Sprintf("gzip %q must be a boolean", v))
			return
		}
		gzip = b
	}

	q.Raw = true
	res, err := a.insp.Logs(q)
	if err != nil {
		a.queryFailed(w, err)
		return
	}

	name := "wsdebug-" + a.session.ID() + ".jsonl"
	if gzip {
		name += ".gz"
		w.Header().Set("Content-Type", "application/gzip")
	} else {
		w.Header().Set("Content-Type", export.ContentType)
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)

	if err := export.Write(w, res.Events, export.Options{Gzip: gzip}); err != nil {
		a.log.Warn("export failed", "error", err)
	}
}
