// Package streaming reads the arena server's line-framed event feeds.
//
// Each payload is one line, optionally prefixed with "data: ". Blank lines are
// keep-alives. The feed never ends on its own until the server closes it.
package streaming

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
)

const (
	// DataPrefix frames every payload line.
	DataPrefix = "data: "

	// MaxLineLength is the longest payload line accepted, in bytes.
	MaxLineLength = 10000
)

// ErrLineTooLong is wrapped by the ProtocolError raised for oversized lines.
var ErrLineTooLong = errors.New("line exceeds maximum length")

// ProtocolError is a framing violation. The reader is unusable afterwards.
type ProtocolError struct {
	Source string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Source == "" {
		return "stream protocol: " + e.Err.Error()
	}
	return fmt.Sprintf("stream protocol (%s): %s", e.Source, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// Option configures a Reader.
type Option func(*Reader)

// WithMaxLineLength overrides MaxLineLength.
func WithMaxLineLength(n int) Option {
	return func(r *Reader) { r.maxLen = n }
}

// WithPrefix overrides DataPrefix. An empty prefix disables stripping.
func WithPrefix(prefix string) Option {
	return func(r *Reader) { r.prefix = prefix }
}

// WithSource names the feed in protocol errors.
func WithSource(source string) Option {
	return func(r *Reader) { r.source = source }
}

// Reader splits a long-lived body into payload lines. It is single pass and not safe
// for concurrent use.
type Reader struct {
	body   io.ReadCloser
	buf    *bufio.Reader
	maxLen int
	prefix string
	source string

	line []byte
	err  error
}

// NewReader wraps body. The reader owns body and closes it on Close or cancellation.
func NewReader(body io.ReadCloser, opts ...Option) *Reader {
	r := &Reader{
		body:   body,
		buf:    bufio.NewReader(body),
		maxLen: MaxLineLength,
		prefix: DataPrefix,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Next blocks until the next non-blank line arrives and returns it without its
// framing prefix. It returns io.EOF once the server closes the feed; an unterminated
// trailing fragment is dropped. Cancelling ctx closes the body and ends the reader.
func (r *Reader) Next(ctx context.Context) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	stop := context.AfterFunc(ctx, func() { _ = r.body.Close() })
	defer stop()

	for {
		b, err := r.buf.ReadByte()
		if err != nil {
			return "", r.fail(ctx, err)
		}

		if b != '\n' {
			if len(r.line) >= r.maxLen {
				r.err = &ProtocolError{Source: r.source, Err: fmt.Errorf("%w (%d bytes)", ErrLineTooLong, r.maxLen)}
				return "", r.err
			}
			r.line = append(r.line, b)
			continue
		}

		line := strings.TrimSuffix(string(r.line), "\r")
		r.line = r.line[:0]
		if line == "" {
			continue
		}
		return strings.TrimPrefix(line, r.prefix), nil
	}
}

func (r *Reader) fail(ctx context.Context, err error) error {
	switch {
	case ctx.Err() != nil:
		r.err = ctx.Err()
	case errors.Is(err, io.EOF):
		r.err = io.EOF
	default:
		r.err = fmt.Errorf("read stream: %w", err)
	}
	return r.err
}

// All ranges over the remaining lines. Iteration stops after the first error;
// a clean end of stream yields no error.
func (r *Reader) All(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for {
			line, err := r.Next(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(line, err) || err != nil {
				return
			}
		}
	}
}

// Close releases the underlying body.
func (r *Reader) Close() error {
	return r.body.Close()
}
