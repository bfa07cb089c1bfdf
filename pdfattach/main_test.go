package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/speedata/pdfembed/backend/bag"
	"github.com/speedata/pdfembed/pdfbackend/pdf"
)

func TestParsePageSize(t *testing.T) {
	wd, ht, err := parsePageSize("A4")
	if err != nil {
		t.Fatal(err)
	}
	if wd != bag.MustSp("210mm") || ht != bag.MustSp("297mm") {
		t.Errorf("a4 = %s x %s", wd, ht)
	}
	wd, ht, err = parsePageSize("100pt, 2in")
	if err != nil {
		t.Fatal(err)
	}
	if wd.String() != "100" || ht.String() != "144" {
		t.Errorf("100pt,2in = %s x %s", wd, ht)
	}
	for _, str := range []string{"b17", "100pt", "0pt,10pt", "x,y"} {
		if _, _, err = parsePageSize(str); err == nil {
			t.Errorf("parsePageSize(%q) should fail", str)
		}
	}
}

func TestLoadSettings(t *testing.T) {
	cfgfile := filepath.Join(t.TempDir(), "pdfattach.toml")
	if err := os.WriteFile(cfgfile, []byte("level = 9\ndescription = \"from file\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PDFATTACH_PAGESIZE", "letter")
	cfg, err := loadSettings(map[string]string{"config": cfgfile, "description": "from flag"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Level != 9 {
		t.Errorf("Level = %d, want 9", cfg.Level)
	}
	if cfg.Description != "from flag" {
		t.Errorf("Description = %q", cfg.Description)
	}
	if cfg.PageWidth != bag.MustSp("8.5in") {
		t.Errorf("PageWidth = %s", cfg.PageWidth)
	}
	if cfg.LogLevel != bag.InfoLevel {
		t.Errorf("LogLevel = %d", cfg.LogLevel)
	}
}

func TestLoadSettingsDefaults(t *testing.T) {
	cfg, err := loadSettings(map[string]string{})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Level != pdf.DefaultCompression || cfg.PageHeight != bag.MustSp("297mm") {
		t.Errorf("defaults = %+v", cfg)
	}
	for _, flags := range []map[string]string{
		{"level": "10"},
		{"level": "fast"},
		{"loglevel": "chatty"},
		{"config": filepath.Join(t.TempDir(), "missing.toml")},
	} {
		if _, err = loadSettings(flags); err == nil {
			t.Errorf("loadSettings(%v) should fail", flags)
		}
	}
}

func TestMimeType(t *testing.T) {
	if got := mimeType("report.pdf"); got != "application/pdf" {
		t.Errorf("mimeType(report.pdf) = %q", got)
	}
	if got := mimeType("data.unknownext"); got != "application/octet-stream" {
		t.Errorf("mimeType(data.unknownext) = %q", got)
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	data := bytes.Repeat([]byte("attachment data\n"), 5000)
	infile := filepath.Join(dir, "data.txt")
	if err := os.WriteFile(infile, data, 0o644); err != nil {
		t.Fatal(err)
	}
	outfile := filepath.Join(dir, "out.pdf")
	cfg, err := loadSettings(map[string]string{"level": "6"})
	if err != nil {
		t.Fatal(err)
	}
	if err = run(outfile, []string{infile}, cfg); err != nil {
		t.Fatal(err)
	}
	out, err := os.ReadFile(outfile)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"%PDF-1.7", "/EmbeddedFiles", "(data.txt)", "/Type /EmbeddedFile", "%%EOF"} {
		if !bytes.Contains(out, []byte(want)) {
			t.Errorf("output lacks %q", want)
		}
	}
	if len(out) >= len(data) {
		t.Errorf("output has %d bytes, compressed attachment expected", len(out))
	}
	if err = run(filepath.Join(dir, "missing.pdf"), []string{filepath.Join(dir, "nothere")}, cfg); err == nil {
		t.Error("run with a missing input file should fail")
	}
}
