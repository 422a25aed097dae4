// Package config resolves wsdebug settings.
//
// Values come from four layers, each overriding the one before:
//
//	defaults
//	a YAML file (--config, or .wsdebug.yaml in the working directory)
//	WSDEBUG_* environment variables
//	command-line flags
//
// A minimal file:
//
//	upstream: wss://api.example.com/socket
//	admin: :8090
//	live:
//	  direction: in
//	  match: '!^\{"type":"hb"'
//	record:
//	  exclude: ["/health"]
//
// Sources records which layer supplied each key, keyed by the Key* constants.
package config
