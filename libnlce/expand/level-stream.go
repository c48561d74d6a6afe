package expand

import (
	"io"
	"strings"

	"github.com/2x3systems/nlce/nlce"
	"github.com/pkg/errors"
)

// LevelStream carries completed levels between pipeline stages.
//
// Err is valid once Outlet is closed and reports why the producer stopped early, if it did.
type LevelStream struct {
	Outlet chan *Level
	err    error
	prev   *LevelStream
}

func NewLevelStream() *LevelStream {
	stream := &LevelStream{
		Outlet: make(chan *Level, 1),
	}
	return stream
}

func (stream *LevelStream) Close() {
	if stream.Outlet != nil {
		close(stream.Outlet)
	}
}

// Err returns the error reported by this stream or, failing that, by the streams it was chained from.
func (stream *LevelStream) Err() error {
	for s := stream; s != nil; s = s.prev {
		if s.err != nil {
			return s.err
		}
	}
	return nil
}

func (stream *LevelStream) next() *LevelStream {
	return &LevelStream{
		Outlet: make(chan *Level, 1),
		prev:   stream,
	}
}

func (stream *LevelStream) PullAll() int {
	count := int(0)
	for range stream.Outlet {
		count++
	}
	return count
}

// Print writes each level passing through the stream to out, closing out (if it is an io.Closer) once the stream ends.
func (stream *LevelStream) Print(
	out io.Writer,
	opts PrintOpts) *LevelStream {

	next := stream.next()

	go func() {
		buf := strings.Builder{}
		buf.Grow(256)

		for lvl := range stream.Outlet {
			lvl.WriteAsString(&buf, opts)
			io.WriteString(out, buf.String())
			buf.Reset()
			next.Outlet <- lvl
		}
		if closer, ok := out.(io.Closer); ok {
			closer.Close()
		}
		next.Close()
	}()

	return next
}

func (stream *LevelStream) AddTo(target LevelAdder) *LevelStream {
	next := stream.next()

	go func() {
		for lvl := range stream.Outlet {
			if target.TryAddLevel(lvl) {
				next.Outlet <- lvl
			} else {
				if next.err == nil {
					next.err = errors.Wrapf(nlce.ErrBadLevel, "level %d was not added", lvl.Size)
				}
			}
		}
		next.Close()
	}()

	return next
}
