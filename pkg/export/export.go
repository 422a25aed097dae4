// Package export writes captured events as JSON Lines, optionally gzipped.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"

	"github.com/getmockd/wsdebug/pkg/capture"
)

// ContentType is the media type of an uncompressed dump.
const ContentType = "application/x-ndjson"

// Options controls the dump encoding.
type Options struct {
	// Gzip compresses the output.
	Gzip bool
}

var gzipPool = sync.Pool{
	New: func() any {
		w, _ := gzip.NewWriterLevel(nil, gzip.BestSpeed)
		return w
	},
}

// Write encodes events to w, one JSON object per line.
func Write(w io.Writer, events []capture.Event, opts Options) error {
	if !opts.Gzip {
		return encode(w, events)
	}

	gz := gzipPool.Get().(*gzip.Writer)
	defer gzipPool.Put(gz)
	gz.Reset(w)

	if err := encode(gz, events); err != nil {
		_ = gz.Close()
		return err
	}
	return gz.Close()
}

func encode(w io.Writer, events []capture.Event) error {
	enc := json.NewEncoder(w)
	for _, ev := range events {
		if err := enc.Encode(ev); err != nil {
			return fmt.Errorf("encode event: %w", err)
		}
	}
	return nil
}

// WriteFile writes events to path, gzipping when the name ends in ".gz".
func WriteFile(path string, events []capture.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dump: %w", err)
	}

	bw := bufio.NewWriter(f)
	if err := Write(bw, events, Options{Gzip: strings.HasSuffix(path, ".gz")}); err != nil {
		_ = f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write dump: %w", err)
	}
	return f.Close()
}
