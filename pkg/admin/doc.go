// Package admin serves an HTTP API over a capture session.
//
// Routes:
//
//	GET    /health        liveness and session summary
//	GET    /sockets       target to transport identity registry
//	GET    /columns       default projection columns
//	GET    /logs          query results as JSON
//	GET    /logs.csv      query results as CSV
//	GET    /logs/pretty   query results as plain pretty text
//	DELETE /logs          clear the event log
//	GET    /logs/export   JSON Lines dump, gzipped unless gzip=false
//	GET    /logs/stream   WebSocket pushing matching events as they arrive
//
// Every /logs route accepts the same query parameters. columns, limit, raw,
// noXml, where and jsonpath are reserved; any other parameter names a field
// (optionally prefixed with "!") and gives its value. A value wrapped in
// slashes is a regular expression:
//
//	/logs?direction=in&!payload=/^ping/&limit=20
package admin
