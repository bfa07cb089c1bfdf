package pdf

import (
	"bytes"
	"fmt"
)

// Object has information about a specific PDF object
type Object struct {
	ObjectNumber Objectnumber
	Data         *bytes.Buffer
	Dictionary   Dict
	Array        Array
	Raw          bool // Data holds everything between object number and endobj
	pdfwriter    *PDF
	compress     int // for streams
	comment      string
}

// NewObjectWithNumber create a new PDF object with the given object number.
// The object is not written to the PDF until Save() is called.
func (pw *PDF) NewObjectWithNumber(objnum Objectnumber) *Object {
	obj := &Object{
		Data: &bytes.Buffer{},
	}
	obj.ObjectNumber = objnum
	obj.pdfwriter = pw
	return obj
}

// NewObject create a new PDF object and reserves an object
// number for it.
// The object is not written to the PDF until Save() is called.
func (pw *PDF) NewObject() *Object {
	return pw.NewObjectWithNumber(pw.NextObject())
}

// SetCompression sets the compression level of the stream data. NoCompression
// (0) writes the data as is.
func (obj *Object) SetCompression(compresslevel int) {
	obj.compress = compresslevel
}

// SetComment sets a comment that is written before the object.
func (obj *Object) SetComment(comment string) {
	obj.comment = comment
}

// Dict sets the dictionary of the object.
func (obj *Object) Dict(d Dict) *Object {
	obj.Dictionary = d
	return obj
}

// Save adds the PDF object to the main PDF file.
func (obj *Object) Save() error {
	pw := obj.pdfwriter
	if obj.comment != "" {
		if err := pw.Print("\n% " + obj.comment); err != nil {
			return err
		}
	}

	if obj.Raw {
		if err := pw.startObject(obj.ObjectNumber); err != nil {
			return err
		}
		if _, err := obj.Data.WriteTo(pw.outfile); err != nil {
			return err
		}
		return pw.endObject()
	}

	if obj.Data.Len() > 0 {
		st := NewStream(obj.Data.Bytes())
		for k, v := range obj.Dictionary {
			st.dict[k] = v
		}
		if err := st.SetCompression(obj.compress); err != nil {
			return err
		}
		_, err := pw.WriteStream(st, obj)
		return err
	}

	if err := pw.startObject(obj.ObjectNumber); err != nil {
		return err
	}
	var err error
	if len(obj.Dictionary) > 0 {
		_, err = obj.Dictionary.WriteTo(pw.outfile)
	} else if len(obj.Array) > 0 {
		err = pw.Print(obj.Array.String())
	} else {
		err = pw.Print("null")
	}
	if err != nil {
		return fmt.Errorf("write object %d: %w", obj.ObjectNumber, err)
	}
	return pw.endObject()
}
