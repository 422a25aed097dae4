package admin

import "net/http"

func (a *API) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", a.handleHealth)
	mux.HandleFunc("GET /sockets", a.handleSockets)
	mux.HandleFunc("GET /columns", a.handleColumns)

	mux.HandleFunc("GET /logs", a.handleLogs)
	mux.HandleFunc("GET /logs.csv", a.handleLogsCSV)
	mux.HandleFunc("GET /logs/pretty", a.handleLogsPretty)
	mux.HandleFunc("DELETE /logs", a.handleClearLogs)
	mux.HandleFunc("GET /logs/export", a.handleExport)
	mux.HandleFunc("GET /logs/stream", a.handleStream)
}
