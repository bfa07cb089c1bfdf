package pdf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
)

// Compression levels for streams.
const (
	NoCompression      = zlib.NoCompression
	BestSpeed          = zlib.BestSpeed
	BestCompression    = zlib.BestCompression
	DefaultCompression = zlib.DefaultCompression
	HuffmanOnly        = zlib.HuffmanOnly
)

// flateBufferSize is the size of the output buffer between the compression
// engine and the destination.
const flateBufferSize = 0x8000

var (
	// ErrInvalidLevel is returned for compression levels outside of
	// HuffmanOnly..BestCompression.
	ErrInvalidLevel = errors.New("invalid compression level")
	errReleased     = errors.New("flate writer already released")
)

func checkLevel(level int) error {
	if level < HuffmanOnly || level > BestCompression {
		return fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}
	return nil
}

// An Engine is the compression state that produces a zlib stream. Close
// writes the trailer but does not close the underlying writer.
type Engine interface {
	io.WriteCloser
	Reset(w io.Writer)
}

// An EnginePool hands out compression engines. An engine that has been closed
// successfully is given back with Put, so implementations can use a
// sync.Pool.
type EnginePool interface {
	Get(w io.Writer, level int) (Engine, error)
	Put(e Engine, level int)
}

// zlibPool keeps one sync.Pool per compression level.
type zlibPool struct {
	pools [BestCompression - HuffmanOnly + 1]sync.Pool
}

var defaultEngines EnginePool = &zlibPool{}

func (zp *zlibPool) Get(w io.Writer, level int) (Engine, error) {
	if err := checkLevel(level); err != nil {
		return nil, err
	}
	if zw, ok := zp.pools[level-HuffmanOnly].Get().(*zlib.Writer); ok {
		zw.Reset(w)
		return zw, nil
	}
	zw, err := zlib.NewWriterLevel(w, level)
	if err != nil {
		return nil, err
	}
	return zw, nil
}

func (zp *zlibPool) Put(e Engine, level int) {
	zw, ok := e.(*zlib.Writer)
	if !ok || checkLevel(level) != nil {
		return
	}
	// don't keep the destination alive
	zw.Reset(io.Discard)
	zp.pools[level-HuffmanOnly].Put(zw)
}

// flateWriter compresses everything written to it and passes the compressed
// data through a 32 KiB buffer to the destination. Call Finish to write the
// trailer and Release to give the engine back.
type flateWriter struct {
	engine   Engine
	pool     EnginePool
	level    int
	buf      *bufio.Writer
	finished bool
}

func newFlateWriter(w io.Writer, level int, pool EnginePool) (*flateWriter, error) {
	buf := bufio.NewWriterSize(w, flateBufferSize)
	e, err := pool.Get(buf, level)
	if err != nil {
		return nil, err
	}
	return &flateWriter{
		engine: e,
		pool:   pool,
		level:  level,
		buf:    buf,
	}, nil
}

func (fw *flateWriter) Write(p []byte) (int, error) {
	if fw.engine == nil {
		return 0, errReleased
	}
	return fw.engine.Write(p)
}

// Finish flushes the compression state, writes the trailer and flushes the
// output buffer.
func (fw *flateWriter) Finish() error {
	if fw.engine == nil {
		return errReleased
	}
	if fw.finished {
		return nil
	}
	if err := fw.engine.Close(); err != nil {
		return err
	}
	if err := fw.buf.Flush(); err != nil {
		return err
	}
	fw.finished = true
	return nil
}

// Release gives the engine back to the pool. An engine whose Finish did not
// succeed is dropped instead, it must not be handed out again. Calling
// Release more than once is a no-op.
func (fw *flateWriter) Release() {
	if fw.engine == nil {
		return
	}
	if fw.finished {
		fw.pool.Put(fw.engine, fw.level)
	}
	fw.engine = nil
}
