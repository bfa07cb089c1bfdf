package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/speedata/pdfembed/backend/bag"
)

const (
	// readChunkSize is the number of bytes read from a stream source at once.
	readChunkSize = 4096
	// maxConsecutiveEmptyReads is the number of reads returning no data and no
	// error before the source is considered broken.
	maxConsecutiveEmptyReads = 100
)

var (
	startMarker = []byte("\nstream\n")
	endMarker   = []byte("\nendstream")
)

var (
	// ErrStreamConsumed is returned when a stream with a reader source is
	// serialized a second time.
	ErrStreamConsumed = errors.New("stream source already consumed")
	errNegativeRead   = errors.New("stream source returned negative count from Read")
)

// payload is the data of a stream, either a *bufferPayload or a
// *readerPayload.
type payload interface {
	isPayload()
}

// bufferPayload holds the stream data in memory. The writer compresses the
// data before the stream dictionary is written.
type bufferPayload struct {
	data     []byte
	level    int
	deflated bool
}

// readerPayload reads the stream data while the stream is written.
type readerPayload struct {
	r        io.Reader
	compress bool
	level    int
}

func (*bufferPayload) isPayload() {}
func (*readerPayload) isPayload() {}

// A Stream holds any kind of data. The data is either held in memory or read
// from an io.Reader when the stream gets written.
type Stream struct {
	dict          Dict
	payload       payload
	engines       EnginePool
	rawLength     int64
	emittedLength int64
	consumed      bool
}

// NewStream creates a stream of data
func NewStream(data []byte) *Stream {
	s := Stream{}
	s.payload = &bufferPayload{data: data}
	s.dict = make(Dict)
	return &s
}

// NewReaderStream creates a stream whose data is read from r when the stream
// is written. The data is compressed unless compresslevel is NoCompression.
// The reader is not closed by the stream.
func NewReaderStream(r io.Reader, compresslevel int) (*Stream, error) {
	if err := checkLevel(compresslevel); err != nil {
		return nil, err
	}
	s := Stream{}
	s.payload = &readerPayload{
		r:        r,
		compress: compresslevel != NoCompression,
		level:    compresslevel,
	}
	s.dict = make(Dict)
	return &s, nil
}

// SetCompression sets the compression level for in-memory data. The data gets
// compressed when the stream is written to a PDF file. Streams with a reader
// source keep the compression level they were created with.
func (s *Stream) SetCompression(compresslevel int) error {
	if err := checkLevel(compresslevel); err != nil {
		return err
	}
	if bp, ok := s.payload.(*bufferPayload); ok && !bp.deflated {
		bp.level = compresslevel
	}
	return nil
}

// SetEnginePool sets the source of compression engines. The default pool uses
// zlib writers.
func (s *Stream) SetEnginePool(p EnginePool) {
	s.engines = p
}

func (s *Stream) enginePool() EnginePool {
	if s.engines == nil {
		return defaultEngines
	}
	return s.engines
}

// Dict returns the stream dictionary.
func (s *Stream) Dict() Dict {
	return s.dict
}

// Streamed reports whether the data is read from an io.Reader.
func (s *Stream) Streamed() bool {
	_, ok := s.payload.(*readerPayload)
	return ok
}

// RawLength returns the number of bytes read from the reader source. It is
// set when the stream is written and always 0 for in-memory data.
func (s *Stream) RawLength() int64 {
	return s.rawLength
}

// EmittedLength returns the number of payload bytes written for a stream with
// a reader source, after compression.
func (s *Stream) EmittedLength() int64 {
	return s.emittedLength
}

// deflateData compresses in-memory data if requested and sets the Filter and
// Length entries. It must be called before the dictionary is written.
func (s *Stream) deflateData() error {
	bp, ok := s.payload.(*bufferPayload)
	if !ok {
		return nil
	}
	if bp.level != NoCompression && !bp.deflated {
		var b bytes.Buffer
		fw, err := newFlateWriter(&b, bp.level, s.enginePool())
		if err != nil {
			return err
		}
		defer fw.Release()
		if _, err = fw.Write(bp.data); err != nil {
			return err
		}
		if err = fw.Finish(); err != nil {
			return err
		}
		bp.data = b.Bytes()
		bp.deflated = true
		s.dict.Set(KeyFilter, FlateDecode)
	}
	s.dict.Set(KeyLength, len(bp.data))
	return nil
}

// WriteTo writes the complete stream (dictionary, stream and endstream) to w
// and returns the number of bytes written.
func (s *Stream) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	err := s.Serialize(cw)
	return cw.Count(), err
}

// Serialize writes the stream dictionary, the start marker, the data and the
// end marker to w.
//
// The data of a reader stream is written in a single pass. The Length entry
// is set to the number of bytes emitted after the data has been written, so
// the dictionary on the wire still holds the value it had before. Writers
// that need the correct value in the file use an indirect object for Length
// (see PDF.WriteStream). A reader stream can be serialized only once.
func (s *Stream) Serialize(w io.Writer) error {
	rp, streamed := s.payload.(*readerPayload)
	if streamed {
		if s.consumed {
			return ErrStreamConsumed
		}
		s.consumed = true
		if rp.compress {
			s.dict.Set(KeyFilter, FlateDecode)
		}
	}
	if _, err := s.dict.WriteTo(w); err != nil {
		return fmt.Errorf("write stream dictionary: %w", err)
	}
	if _, err := w.Write(startMarker); err != nil {
		return err
	}
	switch p := s.payload.(type) {
	case *bufferPayload:
		if _, err := w.Write(p.data); err != nil {
			return err
		}
	case *readerPayload:
		if err := s.copyPayload(w, p); err != nil {
			return err
		}
	}
	_, err := w.Write(endMarker)
	return err
}

// copyPayload reads the source in chunks and writes them to w, compressed if
// requested. It records the raw and the emitted length.
func (s *Stream) copyPayload(w io.Writer, p *readerPayload) error {
	s.rawLength = 0
	cw := &countingWriter{w: w}
	var out io.Writer = cw
	var fw *flateWriter
	if p.compress {
		var err error
		if fw, err = newFlateWriter(cw, p.level, s.enginePool()); err != nil {
			return err
		}
		defer fw.Release()
		out = fw
	}
	chunks := newChunkReader(p.r, readChunkSize)
	for {
		chunk, err := chunks.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read stream data: %w", err)
		}
		if _, err = out.Write(chunk); err != nil {
			return fmt.Errorf("write stream data: %w", err)
		}
		s.rawLength += int64(len(chunk))
	}
	if fw != nil {
		if err := fw.Finish(); err != nil {
			return fmt.Errorf("finish compressed stream: %w", err)
		}
		fw.Release()
	}
	s.emittedLength = cw.Count()
	s.dict.Set(KeyLength, s.emittedLength)
	bag.Logger.Debugf("Stream data written, %d bytes read, %d bytes emitted", s.rawLength, s.emittedLength)
	return nil
}

// chunkReader yields the data of a reader in chunks. The chunks share one
// buffer, so a chunk is only valid until the next call to Next.
type chunkReader struct {
	r   io.Reader
	buf []byte
	err error
}

func newChunkReader(r io.Reader, size int) *chunkReader {
	return &chunkReader{r: r, buf: make([]byte, size)}
}

// Next returns the next chunk of data or io.EOF when the source is exhausted.
// A Read that returns neither data nor an error is not the end of the data,
// the source is asked again.
func (cr *chunkReader) Next() ([]byte, error) {
	if cr.err != nil {
		return nil, cr.err
	}
	for i := 0; i < maxConsecutiveEmptyReads; i++ {
		n, err := cr.r.Read(cr.buf)
		if n < 0 {
			cr.err = errNegativeRead
			return nil, cr.err
		}
		if err != nil {
			cr.err = err
		}
		if n > 0 {
			return cr.buf[:n], nil
		}
		if err != nil {
			return nil, err
		}
	}
	cr.err = io.ErrNoProgress
	return nil, cr.err
}
