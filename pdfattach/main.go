// pdfattach creates a PDF file with embedded files. The files are streamed
// into the PDF, so they can be larger than the available memory.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/speedata/optionparser"
	"github.com/speedata/pdfembed/backend/bag"
	"github.com/speedata/pdfembed/pdfbackend/pdf"
)

var errUsage = errors.New("need an output file and at least one file to attach")

// coverPage returns the contents of a page that lists the attached files.
func coverPage(files []string, height bag.ScaledPoint) *pdf.Stream {
	var b []byte
	b = fmt.Appendf(b, "BT /F1 14 Tf 72 %s Td (Attached files) Tj /F1 10 Tf", height-bag.MustSp("72pt"))
	for _, f := range files {
		b = fmt.Appendf(b, " 0 -16 Td %s Tj", pdf.String(filepath.Base(f)))
	}
	b = append(b, " ET"...)
	return pdf.NewStream(b)
}

func mimeType(filename string) string {
	mt := mime.TypeByExtension(filepath.Ext(filename))
	if mt == "" {
		return "application/octet-stream"
	}
	if base, _, err := mime.ParseMediaType(mt); err == nil {
		return base
	}
	return mt
}

// attach streams the file into the PDF.
func attach(pw *pdf.PDF, filename string, cfg *settings) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return err
	}
	_, err = pw.AttachFile(pdf.Attachment{
		Name:        filepath.Base(filename),
		Description: cfg.Description,
		MimeType:    mimeType(filename),
		Reader:      f,
		ModDate:     fi.ModTime(),
	}, cfg.Level)
	return err
}

func writePDF(w io.Writer, files []string, cfg *settings) (int64, error) {
	pw := pdf.NewPDFWriter(w)
	pw.DefaultPageWidth = cfg.PageWidth
	pw.DefaultPageHeight = cfg.PageHeight
	cover := coverPage(files, cfg.PageHeight)
	if err := cover.SetCompression(cfg.Level); err != nil {
		return 0, err
	}
	pg := pw.AddPage(cover, 0, 0)
	pg.Dict = pdf.Dict{
		"Resources": pdf.Dict{
			"Font": pdf.Dict{
				"F1": pdf.Dict{
					"Type":     pdf.Name("Font"),
					"Subtype":  pdf.Name("Type1"),
					"BaseFont": pdf.Name("Helvetica"),
				},
			},
		},
	}
	for _, f := range files {
		if err := attach(pw, f, cfg); err != nil {
			return 0, err
		}
	}
	if err := pw.Finish(); err != nil {
		return 0, err
	}
	return pw.Size(), nil
}

func run(outfile string, files []string, cfg *settings) error {
	out, err := os.Create(outfile)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(out)
	size, err := writePDF(bw, files, cfg)
	if err == nil {
		err = bw.Flush()
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	bag.Logger.Infow("Output written", "filename", outfile, "bytes", size)
	return nil
}

func dothings() error {
	options := map[string]string{}
	op := optionparser.NewOptionParser()
	op.Banner = "Usage: pdfattach [options] <output.pdf> <file>..."
	op.On("--level LEVEL", "Compression level (-2 to 9, 0 turns compression off)", options)
	op.On("--pagesize SIZE", "Page size (a4, a5, letter, legal or width,height)", options)
	op.On("--description TEXT", "Description for the attached files", options)
	op.On("--loglevel LEVEL", "Log level (error, warn, info, debug)", options)
	op.On("--config FILE", "Read the settings from FILE", options)
	if err := op.Parse(); err != nil {
		return err
	}
	if len(op.Extra) < 2 {
		op.Help()
		return errUsage
	}
	cfg, err := loadSettings(options)
	if err != nil {
		return err
	}
	bag.SetLogLevel(cfg.LogLevel)
	return run(op.Extra[0], op.Extra[1:], cfg)
}

func main() {
	if err := dothings(); err != nil {
		bag.Logger.Error(err)
		os.Exit(1)
	}
	bag.Logger.Sync()
}
