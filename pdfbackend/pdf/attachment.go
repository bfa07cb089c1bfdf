package pdf

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrAttachmentSource is returned when an attachment has both Data and a
// Reader.
var ErrAttachmentSource = errors.New("attachment must have either data or a reader")

// Attachment represents a file attachment in the PDF document. It contains the
// name, description, mime type, data, and optionally creation/modification
// dates.
type Attachment struct {
	// Name of the attachment as displayed in the PDF viewer. This is not
	// necessarily the same as the original file name.
	Name        string
	Description string
	MimeType    string
	// Data holds the contents of a file that is already in memory.
	Data []byte
	// Reader is read when the attachment is written. The PDF writer does not
	// close it.
	Reader       io.Reader
	CreationDate time.Time
	ModDate      time.Time
}

type embeddedFile struct {
	name     string
	filespec Objectnumber
}

// DateToPDF formats t as a PDF date string D:YYYYMMDDHHmmSS+HH'mm'.
func DateToPDF(t time.Time) string {
	_, offset := t.Zone()
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return fmt.Sprintf("D:%s%c%02d'%02d'", t.Format("20060102150405"), sign, offset/3600, offset/60%60)
}

// AttachFile writes the embedded file stream and the file specification of a
// to the PDF and registers it in the EmbeddedFiles name tree of the catalog.
// Unless compresslevel is NoCompression, the file contents are compressed.
// AttachFile returns the object number of the file specification.
func (pw *PDF) AttachFile(a Attachment, compresslevel int) (Objectnumber, error) {
	if a.Reader != nil && a.Data != nil {
		return 0, ErrAttachmentSource
	}
	var st *Stream
	var err error
	params := Dict{}
	var sizeObj Objectnumber
	if a.Reader != nil {
		if st, err = NewReaderStream(a.Reader, compresslevel); err != nil {
			return 0, err
		}
		// the size is only known after the stream is written
		sizeObj = pw.NextObject()
		params["Size"] = sizeObj
	} else {
		st = NewStream(a.Data)
		if err = st.SetCompression(compresslevel); err != nil {
			return 0, err
		}
		params["Size"] = len(a.Data)
	}
	if !a.CreationDate.IsZero() {
		params["CreationDate"] = String(DateToPDF(a.CreationDate))
	}
	if !a.ModDate.IsZero() {
		params["ModDate"] = String(DateToPDF(a.ModDate))
	}
	d := st.Dict()
	d.Set(KeyType, Name("EmbeddedFile"))
	d.Set(KeyParams, params)
	if a.MimeType != "" {
		d.Set(KeySubtype, Name(a.MimeType))
	}

	fileObj, err := pw.WriteStream(st, nil)
	if err != nil {
		return 0, fmt.Errorf("attach %s: %w", a.Name, err)
	}
	if sizeObj != 0 {
		if err = pw.writeInteger(sizeObj, st.RawLength()); err != nil {
			return 0, err
		}
	}

	fs := pw.NewObject()
	fsDict := Dict{
		"Type":           Name("Filespec"),
		"F":              String(a.Name),
		"UF":             String(a.Name),
		"EF":             Dict{"F": fileObj.ObjectNumber, "UF": fileObj.ObjectNumber},
		"AFRelationship": Name("Unspecified"),
	}
	if a.Description != "" {
		fsDict["Desc"] = String(a.Description)
	}
	fs.Dict(fsDict)
	if err = fs.Save(); err != nil {
		return 0, err
	}
	pw.attachments = append(pw.attachments, embeddedFile{name: a.Name, filespec: fs.ObjectNumber})
	if l := pw.Logger; l != nil {
		l.Infof("Attached file %q", a.Name)
	}
	return fs.ObjectNumber, nil
}
