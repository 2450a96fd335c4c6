package exporter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// output is a buffered file, optionally gzip compressed. The path "-" is stdout.
type output struct {
	// closer is nil for stdout, which is never closed
	closer io.Closer
	gz     *gzip.Writer
	buf    *bufio.Writer
}

func openOutput(path string) (*output, error) {
	if path == "-" {
		return newOutput(os.Stdout, nil, false), nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %s: %w", path, err)
	}
	return newOutput(file, file, strings.HasSuffix(path, ".gz")), nil
}

func newOutput(w io.Writer, closer io.Closer, compress bool) *output {
	o := &output{closer: closer}
	if compress {
		o.gz = gzip.NewWriter(w)
		w = o.gz
	}
	o.buf = bufio.NewWriterSize(w, 1<<20)
	return o
}

func (o *output) Write(p []byte) (int, error) {
	return o.buf.Write(p)
}

// Close flushes and closes every layer, also after a failing one.
func (o *output) Close() error {
	var errs []error
	if err := o.buf.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("failed to flush output: %w", err))
	}
	if o.gz != nil {
		if err := o.gz.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close gzip stream: %w", err))
		}
	}
	if o.closer != nil {
		if err := o.closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close output file: %w", err))
		}
	}
	return errors.Join(errs...)
}
