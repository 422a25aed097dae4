// Package logging configures the operational logger used across wsdebug.
//
// Operational logs describe what the tool itself is doing (connections
// accepted, upstream failures, filters that errored). They always go to
// stderr or a log file and never mix with captured traffic, which is printed
// to stdout by the inspector.
//
//	log := logging.New(logging.Config{
//	    Level:  logging.ParseLevel("debug"),
//	    Format: logging.FormatJSON,
//	})
//	log.Info("proxy listening", "addr", ":8089")
//
// Components take a *slog.Logger through an option and fall back to Nop.
package logging
