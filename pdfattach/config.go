package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/speedata/pdfembed/backend/bag"
	"github.com/speedata/pdfembed/pdfbackend/pdf"
	"github.com/spf13/viper"
)

// settings for a pdfattach run
type settings struct {
	Level       int
	PageWidth   bag.ScaledPoint
	PageHeight  bag.ScaledPoint
	Description string
	LogLevel    bag.Level
}

var namedPageSizes = map[string][2]string{
	"a4":     {"210mm", "297mm"},
	"a5":     {"148mm", "210mm"},
	"letter": {"8.5in", "11in"},
	"legal":  {"8.5in", "14in"},
}

// parsePageSize accepts a name like a4 or letter or width,height.
func parsePageSize(str string) (bag.ScaledPoint, bag.ScaledPoint, error) {
	str = strings.ToLower(strings.TrimSpace(str))
	dims, ok := namedPageSizes[str]
	if !ok {
		parts := strings.Split(str, ",")
		if len(parts) != 2 {
			return 0, 0, fmt.Errorf("unknown page size %q", str)
		}
		dims = [2]string{parts[0], parts[1]}
	}
	wd, err := bag.Sp(dims[0])
	if err != nil {
		return 0, 0, err
	}
	ht, err := bag.Sp(dims[1])
	if err != nil {
		return 0, 0, err
	}
	if wd <= 0 || ht <= 0 {
		return 0, 0, fmt.Errorf("page size %q must be positive", str)
	}
	return wd, ht, nil
}

// loadSettings combines the defaults, the optional configuration file, the
// PDFATTACH_* environment variables and the command line options. Command line
// options have the highest priority.
func loadSettings(flags map[string]string) (*settings, error) {
	v := viper.New()
	v.SetDefault("level", pdf.DefaultCompression)
	v.SetDefault("pagesize", "a4")
	v.SetDefault("description", "")
	v.SetDefault("loglevel", "info")
	v.SetEnvPrefix("PDFATTACH")
	v.AutomaticEnv()

	if cfgfile := flags["config"]; cfgfile != "" {
		v.SetConfigFile(cfgfile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read configuration %s: %w", cfgfile, err)
		}
	}
	for k, val := range flags {
		if k != "config" {
			v.Set(k, val)
		}
	}

	s := &settings{}
	var err error
	if s.Level, err = strconv.Atoi(strings.TrimSpace(v.GetString("level"))); err != nil {
		return nil, fmt.Errorf("compression level: %w", err)
	}
	if s.Level < pdf.HuffmanOnly || s.Level > pdf.BestCompression {
		return nil, fmt.Errorf("%w: %d", pdf.ErrInvalidLevel, s.Level)
	}
	if s.PageWidth, s.PageHeight, err = parsePageSize(v.GetString("pagesize")); err != nil {
		return nil, err
	}
	s.Description = v.GetString("description")
	var ok bool
	if s.LogLevel, ok = bag.ParseLevel(strings.ToLower(v.GetString("loglevel"))); !ok {
		return nil, fmt.Errorf("unknown log level %q", v.GetString("loglevel"))
	}
	return s, nil
}
