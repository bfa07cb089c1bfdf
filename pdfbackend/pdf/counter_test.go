package pdf

import (
	"bytes"
	"errors"
	"testing"
)

func TestCountingWriter(t *testing.T) {
	var b bytes.Buffer
	cw := &countingWriter{w: &b}
	for _, s := range []string{"", "a", "hello world", "\x00\xff"} {
		if _, err := cw.Write([]byte(s)); err != nil {
			t.Fatal(err)
		}
	}
	if cw.Count() != 14 {
		t.Errorf("Count() = %d, want 14", cw.Count())
	}
	if b.String() != "ahello world\x00\xff" {
		t.Errorf("data = %q", b.String())
	}
}

func TestCountingWriterFailure(t *testing.T) {
	cw := &countingWriter{w: &failWriter{limit: 3}}
	n, err := cw.Write([]byte("abcdef"))
	if !errors.Is(err, errSink) {
		t.Errorf("err = %v, want errSink", err)
	}
	if n != 3 || cw.Count() != 3 {
		t.Errorf("n = %d, Count() = %d, want 3", n, cw.Count())
	}
}
