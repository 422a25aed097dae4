// Package cli implements the wsdebug command line.
//
//	wsdebug proxy --upstream ws://localhost:9000 --admin :8090
//	wsdebug connect ws://localhost:9000/feed --csv
//	wsdebug init -i
//	wsdebug version
package cli
