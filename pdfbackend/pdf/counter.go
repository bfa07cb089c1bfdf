package pdf

import "io"

// countingWriter passes all bytes unchanged to w and counts them. The count
// is the number of bytes the underlying writer accepted.
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// Count returns the number of bytes written so far.
func (cw *countingWriter) Count() int64 {
	return cw.n
}
