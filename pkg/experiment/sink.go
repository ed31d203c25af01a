package experiment

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/golang/snappy"

	"github.com/dd0wney/ftroute/pkg/routing"
)

// Sink receives records in order.
type Sink interface {
	Write(Record) error
	Close() error
}

// CSVWriter writes a header followed by one row per record.
type CSVWriter struct {
	w           *csv.Writer
	algs        []routing.Algorithm
	wroteHeader bool
}

// NewCSVWriter returns a CSV sink whose columns cover algs.
func NewCSVWriter(w io.Writer, algs []routing.Algorithm) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w), algs: algs}
}

// Write appends rec, emitting the header first.
func (c *CSVWriter) Write(rec Record) error {
	if !c.wroteHeader {
		if err := c.w.Write(Header(c.algs)); err != nil {
			return err
		}
		c.wroteHeader = true
	}
	return c.w.Write(rec.Row(c.algs))
}

// Close flushes buffered rows. A run with no records still gets a header.
func (c *CSVWriter) Close() error {
	if !c.wroteHeader {
		if err := c.w.Write(Header(c.algs)); err != nil {
			return err
		}
		c.wroteHeader = true
	}
	c.w.Flush()
	return c.w.Error()
}

// JSONLWriter writes one JSON object per line.
type JSONLWriter struct {
	buf *bufio.Writer
	enc *json.Encoder
}

// NewJSONLWriter returns a JSON-lines sink.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	buf := bufio.NewWriter(w)
	return &JSONLWriter{buf: buf, enc: json.NewEncoder(buf)}
}

// Write appends rec.
func (j *JSONLWriter) Write(rec Record) error {
	return j.enc.Encode(rec)
}

// Close flushes buffered lines.
func (j *JSONLWriter) Close() error {
	return j.buf.Flush()
}

// fileSink chains a format sink over optional snappy framing over a file.
type fileSink struct {
	Sink
	closers []io.Closer
}

func (f *fileSink) Close() error {
	errs := []error{f.Sink.Close()}
	for _, c := range f.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// OpenSink creates the output file described by cfg. With Compress set the
// stream is snappy-framed and ".sz" is appended to the path. It returns the
// path actually written.
func OpenSink(cfg OutputConfig, algs []routing.Algorithm) (Sink, string, error) {
	path := cfg.Path
	if cfg.Compress {
		path += ".sz"
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("experiment: create output: %w", err)
	}

	var w io.Writer = file
	closers := []io.Closer{}
	if cfg.Compress {
		sw := snappy.NewBufferedWriter(file)
		w = sw
		closers = append(closers, sw)
	}
	closers = append(closers, file)

	var sink Sink
	switch cfg.Format {
	case FormatJSONL:
		sink = NewJSONLWriter(w)
	default:
		sink = NewCSVWriter(w, algs)
	}
	return &fileSink{Sink: sink, closers: closers}, path, nil
}

// WriteAll writes records to sink and closes it.
func WriteAll(sink Sink, records []Record) error {
	for _, rec := range records {
		if err := sink.Write(rec); err != nil {
			sink.Close()
			return fmt.Errorf("experiment: write record %s: %w", rec.ID, err)
		}
	}
	return sink.Close()
}
