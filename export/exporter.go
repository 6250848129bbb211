// Package export writes query results to Parquet, Avro or NDJSON files on a
// FileIO backend.
package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/uuid"

	qbio "github.com/BrobridgeOrg/go-quickbase/io"
	"github.com/BrobridgeOrg/go-quickbase/orm"
)

// Format is an export file format.
type Format string

const (
	FormatParquet Format = "parquet"
	FormatAvro    Format = "avro"
	FormatNDJSON  Format = "ndjson"
)

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatParquet, FormatAvro, FormatNDJSON:
		return f, nil
	case "jsonl":
		return FormatNDJSON, nil
	default:
		return "", fmt.Errorf("unknown export format: %s", s)
	}
}

// Extension returns the file extension without the dot.
func (f Format) Extension() string {
	return string(f)
}

// Result describes a written export file.
type Result struct {
	Location string
	Format   Format
	Rows     int
	Bytes    int64
}

// Exporter writes records of a table to files.
type Exporter struct {
	fileIO qbio.FileIO
	mem    memory.Allocator
	logger *slog.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithAllocator sets the Arrow allocator used for Parquet exports.
func WithAllocator(mem memory.Allocator) Option {
	return func(e *Exporter) {
		e.mem = mem
	}
}

// WithLogger sets the logger for export events.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExporter creates an exporter writing through fileIO.
func NewExporter(fileIO qbio.FileIO, opts ...Option) *Exporter {
	e := &Exporter{
		fileIO: fileIO,
		mem:    memory.DefaultAllocator,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export writes records of table t in the given format. A location ending
// in "/" is a directory; a unique file name is generated inside it.
func (e *Exporter) Export(ctx context.Context, t *orm.Table, records []*orm.Record, format Format, location string) (*Result, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}
	for i, r := range records {
		if r.Table() != t {
			return nil, fmt.Errorf("%w: row %d", orm.ErrTableMismatch, i)
		}
	}

	if qbio.IsDir(location) {
		location = qbio.Join(location, fmt.Sprintf("%s-%s.%s", t.ID(), uuid.NewString(), format.Extension()))
	}

	start := time.Now()
	w, err := e.fileIO.Create(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", location, err)
	}
	cw := &countingWriter{w: w}

	if err := e.write(cw, t, records, format); err != nil {
		qbio.Abort(w)
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close %s: %w", location, err)
	}

	e.logger.Debug("quickbase export written",
		"table", t.ID(),
		"format", format,
		"location", location,
		"rows", len(records),
		"bytes", cw.n,
		"duration", time.Since(start),
	)

	return &Result{
		Location: location,
		Format:   format,
		Rows:     len(records),
		Bytes:    cw.n,
	}, nil
}

func (e *Exporter) write(w io.Writer, t *orm.Table, records []*orm.Record, format Format) error {
	switch format {
	case FormatParquet:
		rec, err := ToArrow(t, records, e.mem)
		if err != nil {
			return err
		}
		defer rec.Release()
		return writeParquet(w, rec)
	case FormatAvro:
		return writeAvro(w, t, records)
	default:
		return writeNDJSON(w, records)
	}
}

// countingWriter counts bytes and hides the Close method of the wrapped
// writer so format writers cannot commit the file early.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
