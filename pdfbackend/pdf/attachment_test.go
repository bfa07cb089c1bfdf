package pdf

import (
	"bytes"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestDateToPDF(t *testing.T) {
	data := []struct {
		t    time.Time
		want string
	}{
		{time.Date(2024, 3, 5, 14, 7, 9, 0, time.FixedZone("", 2*3600+30*60)), "D:20240305140709+02'30'"},
		{time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC), "D:19991231235959+00'00'"},
		{time.Date(2010, 1, 2, 3, 4, 5, 0, time.FixedZone("", -5*3600)), "D:20100102030405-05'00'"},
	}
	for _, d := range data {
		if got := DateToPDF(d.t); got != d.want {
			t.Errorf("DateToPDF(%v) = %q, want %q", d.t, got, d.want)
		}
	}
}

func TestAttachFile(t *testing.T) {
	streamed := repeatingData(50000)
	inMemory := []byte("name,value\nfoo,1\n")
	var b bytes.Buffer
	pw := NewPDFWriter(&b)
	pw.AddPage(NewStream(nil), 0, 0)
	fsStreamed, err := pw.AttachFile(Attachment{
		Name:        "zeta.txt",
		Description: "streamed file",
		MimeType:    "text/plain",
		Reader:      bytes.NewReader(streamed),
		ModDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}, DefaultCompression)
	if err != nil {
		t.Fatal(err)
	}
	fsMemory, err := pw.AttachFile(Attachment{
		Name:     "alpha.csv",
		MimeType: "text/csv",
		Data:     inMemory,
	}, NoCompression)
	if err != nil {
		t.Fatal(err)
	}
	if err = pw.Finish(); err != nil {
		t.Fatal(err)
	}
	out := b.Bytes()
	checkXref(t, out)

	// name tree is sorted by name
	if !bytes.Contains(out, []byte("/Names [(alpha.csv) "+fsMemory.Ref()+" (zeta.txt) "+fsStreamed.Ref()+"]")) {
		t.Errorf("EmbeddedFiles name tree not found")
	}
	if !bytes.Contains(out, []byte("/AF ["+fsStreamed.Ref()+" "+fsMemory.Ref()+"]")) {
		t.Errorf("AF array not found")
	}

	refRE := regexp.MustCompile(`/F (\d+) 0 R`)
	fs := objectBody(t, out, int(fsStreamed))
	for _, want := range []string{"/Type /Filespec", "/F (zeta.txt)", "/UF (zeta.txt)", "/Desc (streamed file)", "/AFRelationship /Unspecified"} {
		if !bytes.Contains(fs, []byte(want)) {
			t.Errorf("file specification lacks %q: %q", want, fs)
		}
	}
	m := refRE.FindSubmatch(fs)
	if m == nil {
		t.Fatalf("no /EF reference in %q", fs)
	}
	efnum, _ := strconv.Atoi(string(m[1]))
	ef := objectBody(t, out, efnum)
	dict, payload := splitStream(t, ef)
	for _, want := range []string{"/Type /EmbeddedFile", "/Subtype /text#2Fplain", "/Filter /FlateDecode", "/ModDate (D:20240101000000+00'00')"} {
		if !bytes.Contains(dict, []byte(want)) {
			t.Errorf("embedded file dict lacks %q: %q", want, dict)
		}
	}
	if got := inflate(t, payload); !bytes.Equal(got, streamed) {
		t.Error("inflated attachment differs")
	}
	sizeRef := regexp.MustCompile(`/Size (\d+) 0 R`).FindSubmatch(dict)
	if sizeRef == nil {
		t.Fatalf("no indirect size in %q", dict)
	}
	sizeObj, _ := strconv.Atoi(string(sizeRef[1]))
	if got := strings.TrimSpace(string(objectBody(t, out, sizeObj))); got != "50000" {
		t.Errorf("size object = %q, want 50000", got)
	}

	fs = objectBody(t, out, int(fsMemory))
	if m = refRE.FindSubmatch(fs); m == nil {
		t.Fatalf("no /EF reference in %q", fs)
	}
	efnum, _ = strconv.Atoi(string(m[1]))
	dict, payload = splitStream(t, objectBody(t, out, efnum))
	if !bytes.Equal(payload, inMemory) {
		t.Errorf("attachment data = %q", payload)
	}
	for _, want := range []string{"/Length 17\n", "/Size 17\n"} {
		if !bytes.Contains(dict, []byte(want)) {
			t.Errorf("embedded file dict lacks %q: %q", want, dict)
		}
	}
}

func TestAttachFileErrors(t *testing.T) {
	pw := NewPDFWriter(&bytes.Buffer{})
	_, err := pw.AttachFile(Attachment{Name: "x", Data: []byte("a"), Reader: bytes.NewReader(nil)}, 0)
	if !errors.Is(err, ErrAttachmentSource) {
		t.Errorf("err = %v, want ErrAttachmentSource", err)
	}
	_, err = pw.AttachFile(Attachment{Name: "x", Reader: &failReader{data: []byte("abc")}}, BestSpeed)
	if !errors.Is(err, errSource) {
		t.Errorf("err = %v, want errSource", err)
	}
	_, err = pw.AttachFile(Attachment{Name: "x", Data: []byte("a")}, 12)
	if !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("err = %v, want ErrInvalidLevel", err)
	}
}
