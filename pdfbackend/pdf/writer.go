package pdf

import (
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/speedata/pdfembed/backend/bag"
	"go.uber.org/zap"
)

// ErrNoPages is returned by Finish when the document has no pages.
var ErrNoPages = errors.New("no pages in document")

// Pages is the parent page structure
type Pages struct {
	pages   []*Page
	dictnum Objectnumber
}

// Page contains information about a single page.
type Page struct {
	Obj     *Object
	Dictnum Objectnumber
	stream  *Stream
	Width   bag.ScaledPoint
	Height  bag.ScaledPoint
	Dict    Dict
}

// PDF is the central point of writing a PDF file.
type PDF struct {
	outfile           *countingWriter
	nextobject        Objectnumber
	Catalog           Dict
	DefaultPageWidth  bag.ScaledPoint
	DefaultPageHeight bag.ScaledPoint
	Logger            *zap.SugaredLogger
	objectlocations   map[Objectnumber]int64
	pages             *Pages
	attachments       []embeddedFile
	lastEOL           int64
}

// NewPDFWriter creates a PDF file for writing to file
func NewPDFWriter(file io.Writer) *PDF {
	pw := PDF{}
	pw.outfile = &countingWriter{w: file}
	pw.nextobject = 1
	pw.objectlocations = make(map[Objectnumber]int64)
	pw.pages = &Pages{}
	pw.Catalog = Dict{}
	pw.Logger = bag.Logger
	pw.DefaultPageWidth = bag.MustSp("595pt")
	pw.DefaultPageHeight = bag.MustSp("842pt")
	pw.Println("%PDF-1.7")
	pw.Println("%\xE2\xE3\xCF\xD3")
	return &pw
}

// Print writes the string to the PDF file
func (pw *PDF) Print(s string) error {
	_, err := io.WriteString(pw.outfile, s)
	return err
}

// Println writes the string to the PDF file and adds a newline.
func (pw *PDF) Println(s string) error {
	_, err := fmt.Fprintln(pw.outfile, s)
	return err
}

// Printf writes the formatted string to the PDF file.
func (pw *PDF) Printf(format string, a ...any) error {
	_, err := fmt.Fprintf(pw.outfile, format, a...)
	return err
}

// Size returns the current size of the PDF file.
func (pw *PDF) Size() int64 {
	return pw.outfile.Count()
}

// NextObject returns the next free object number
func (pw *PDF) NextObject() Objectnumber {
	pw.nextobject++
	return pw.nextobject - 1
}

// AddPage adds a page to the PDF file. The stream must be complete. A width or
// height of 0 uses the default page size.
func (pw *PDF) AddPage(pagestream *Stream, width, height bag.ScaledPoint) *Page {
	if width == 0 {
		width = pw.DefaultPageWidth
	}
	if height == 0 {
		height = pw.DefaultPageHeight
	}
	pg := &Page{
		stream: pagestream,
		Width:  width,
		Height: height,
	}
	pg.Obj = pw.NewObject()
	pg.Dictnum = pw.NextObject()
	pw.pages.pages = append(pw.pages.pages, pg)
	return pg
}

// WriteStream writes the stream as a PDF object. If obj is nil, a new object
// is created. In-memory data is compressed (if requested) and gets a direct
// Length entry. For a stream read from an io.Reader the length is not known
// in advance, so Length refers to an object that is written after the stream.
func (pw *PDF) WriteStream(st *Stream, obj *Object) (*Object, error) {
	if obj == nil {
		obj = pw.NewObject()
	}
	var lengthObj Objectnumber
	if st.Streamed() {
		lengthObj = pw.NextObject()
		st.dict.Set(KeyLength, lengthObj)
	} else if err := st.deflateData(); err != nil {
		return nil, err
	}

	if err := pw.startObject(obj.ObjectNumber); err != nil {
		return nil, err
	}
	if err := st.Serialize(pw.outfile); err != nil {
		return nil, fmt.Errorf("write stream object %d: %w", obj.ObjectNumber, err)
	}
	if err := pw.endObject(); err != nil {
		return nil, err
	}
	if lengthObj != 0 {
		if err := pw.writeInteger(lengthObj, st.EmittedLength()); err != nil {
			return nil, err
		}
		if l := pw.Logger; l != nil {
			l.Debugf("Stream object %d: %d bytes read, %d bytes written", obj.ObjectNumber, st.RawLength(), st.EmittedLength())
		}
	}
	return obj, nil
}

// writeInteger writes an object that only holds the number n.
func (pw *PDF) writeInteger(onum Objectnumber, n int64) error {
	obj := pw.NewObjectWithNumber(onum)
	obj.Raw = true
	fmt.Fprint(obj.Data, n)
	return obj.Save()
}

func (pw *PDF) writeDocumentCatalogAndPages() (Objectnumber, error) {
	if len(pw.pages.pages) == 0 {
		return 0, ErrNoPages
	}
	// Write all page streams:
	for _, page := range pw.pages.pages {
		if _, err := pw.WriteStream(page.stream, page.Obj); err != nil {
			return 0, err
		}
	}

	// Page streams are finished. Now the /Page dictionaries with
	// references to the streams and the parent
	// Pages objects have to be placed in the file

	//  We need to know in advance where the parent object is written (/Pages)
	pagesObj := pw.NewObject()
	for _, page := range pw.pages.pages {
		obj := pw.NewObjectWithNumber(page.Dictnum)
		pageHash := Dict{
			"Type":     Name("Page"),
			"Contents": page.Obj.ObjectNumber,
			"Parent":   pagesObj.ObjectNumber,
			"MediaBox": Array{0, 0, page.Width, page.Height},
		}
		for k, v := range page.Dict {
			pageHash[k] = v
		}
		obj.Dict(pageHash)
		if err := obj.Save(); err != nil {
			return 0, err
		}
	}

	// The pages object
	kids := make(Array, len(pw.pages.pages))
	for i, v := range pw.pages.pages {
		kids[i] = v.Dictnum
	}

	pagesObj.comment = "The pages object"
	pw.pages.dictnum = pagesObj.ObjectNumber
	pagesObj.Dict(Dict{
		"Type":     Name("Pages"),
		"Kids":     kids,
		"Count":    len(pw.pages.pages),
		"MediaBox": Array{0, 0, pw.DefaultPageWidth, pw.DefaultPageHeight},
	})
	if err := pagesObj.Save(); err != nil {
		return 0, err
	}

	catalog := pw.NewObject()
	catalog.comment = "Catalog"
	dictCatalog := Dict{
		"Type":  Name("Catalog"),
		"Pages": pw.pages.dictnum,
	}
	if len(pw.attachments) > 0 {
		dictCatalog["Names"] = Dict{"EmbeddedFiles": pw.embeddedFilesNameTree()}
		dictCatalog["AF"] = pw.associatedFiles()
	}
	for k, v := range pw.Catalog {
		dictCatalog[k] = v
	}
	catalog.Dict(dictCatalog)
	if err := catalog.Save(); err != nil {
		return 0, err
	}
	return catalog.ObjectNumber, nil
}

// Finish writes the trailer and xref section but does not close the file.
func (pw *PDF) Finish() error {
	dc, err := pw.writeDocumentCatalogAndPages()
	if err != nil {
		return err
	}
	// XRef section, one subsection. Object numbers that were reserved but
	// never written become free entries.
	var str strings.Builder
	fmt.Fprintf(&str, "0 %d\n", pw.nextobject)
	fmt.Fprint(&str, "0000000000 65535 f \n")
	for i := Objectnumber(1); i < pw.nextobject; i++ {
		if loc, ok := pw.objectlocations[i]; ok {
			fmt.Fprintf(&str, "%010d 00000 n \n", loc)
		} else {
			fmt.Fprint(&str, "0000000000 65535 f \n")
		}
	}

	xrefpos := pw.Size()
	if err = pw.Println("xref"); err != nil {
		return err
	}
	if err = pw.Print(str.String()); err != nil {
		return err
	}
	docID := uuid.New()
	sum := md5.Sum([]byte(str.String()))

	trailer := Dict{
		"Size": int(pw.nextobject),
		"Root": dc,
		"ID":   fmt.Sprintf("[<%X> <%X>]", docID[:], sum[:]),
	}
	if err = pw.Println("trailer"); err != nil {
		return err
	}
	if _, err = trailer.WriteTo(pw.outfile); err != nil {
		return err
	}
	if err = pw.Printf("\nstartxref\n%d\n%%%%EOF\n", xrefpos); err != nil {
		return err
	}
	if l := pw.Logger; l != nil {
		l.Infof("PDF finished, %d objects, %d bytes", pw.nextobject-1, pw.Size())
	}
	return nil
}

// Write an end of line (EOL) marker to the file if it is not on a EOL already.
func (pw *PDF) eol() error {
	if pw.Size() != pw.lastEOL {
		if err := pw.Println(""); err != nil {
			return err
		}
		pw.lastEOL = pw.Size()
	}
	return nil
}

// Write a start object marker with the given object number.
func (pw *PDF) startObject(onum Objectnumber) error {
	pw.objectlocations[onum] = pw.Size() + 1
	return pw.Printf("\n%d 0 obj\n", onum)
}

// Write a simple "endobj" to the PDF file.
func (pw *PDF) endObject() error {
	if err := pw.eol(); err != nil {
		return err
	}
	if err := pw.Println("endobj"); err != nil {
		return err
	}
	pw.lastEOL = pw.Size()
	return nil
}

func (pw *PDF) embeddedFilesNameTree() Dict {
	files := make([]embeddedFile, len(pw.attachments))
	copy(files, pw.attachments)
	sort.SliceStable(files, func(i, j int) bool { return files[i].name < files[j].name })
	names := make(Array, 0, 2*len(files))
	for _, f := range files {
		names = append(names, String(f.name), f.filespec)
	}
	return Dict{"Names": names}
}

func (pw *PDF) associatedFiles() Array {
	af := make(Array, len(pw.attachments))
	for i, f := range pw.attachments {
		af[i] = f.filespec
	}
	return af
}
