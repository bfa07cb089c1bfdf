package pdf

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Well known dictionary keys.
const (
	KeyType    Name = "Type"
	KeySubtype Name = "Subtype"
	KeyLength  Name = "Length"
	KeyFilter  Name = "Filter"
	KeyParams  Name = "Params"
)

// FlateDecode is the filter name for zlib/deflate compressed streams.
const FlateDecode Name = "FlateDecode"

var pdfStringReplacer = strings.NewReplacer(`(`, `\(`, `)`, `\)`, `\`, `\\`, "\n", `\n`, "\r", `\r`, "\t", `\t`, "\b", `\b`, "\f", `\f`)

// Objectnumber represents a PDF object number
type Objectnumber int

// Ref returns a reference to the object number
func (o Objectnumber) Ref() string {
	return fmt.Sprintf("%d 0 R", o)
}

// String returns a reference to the object number
func (o Objectnumber) String() string {
	return o.Ref()
}

// Name represents a PDF name such as Adobe Green. The String() method prepends
// a / (slash) to the name and escapes all characters that are not allowed in
// a name.
type Name string

func (n Name) String() string {
	var b strings.Builder
	b.WriteByte('/')
	for i := 0; i < len(n); i++ {
		c := n[i]
		if c < 0x21 || c > 0x7e || strings.IndexByte("#()<>[]{}/%", c) >= 0 {
			fmt.Fprintf(&b, "#%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// String is a string that gets automatically converted to (...) or
// hexadecimal form when placed in the PDF.
type String string

func (s String) String() string {
	return StringToPDF(string(s))
}

// StringToPDF returns an escaped string suitable to be used as a PDF object.
func StringToPDF(str string) string {
	isASCII := true
	for _, g := range str {
		if g > 127 {
			isASCII = false
			break
		}
	}
	var out strings.Builder
	if isASCII {
		out.WriteRune('(')
		out.WriteString(pdfStringReplacer.Replace(str))
		out.WriteRune(')')
		return out.String()
	}
	out.WriteString("<feff")
	for _, i := range utf16.Encode([]rune(str)) {
		fmt.Fprintf(&out, "%04x", i)
	}
	out.WriteRune('>')
	return out.String()
}

// FloatToPoint returns a string suitable as a PDF size value.
func FloatToPoint(in float64) string {
	const precisionFactor = 100.0
	rounded := math.Round(precisionFactor*in) / precisionFactor
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// Array is a list of anything
type Array []any

func (ary Array) String() string {
	var b strings.Builder
	writeArray(&b, ary, 0)
	return b.String()
}

// ArrayToString converts the objects in ary to a string including the opening
// and closing bracket.
func ArrayToString(ary []any) string {
	return Array(ary).String()
}

// Dict is a PDF dictionary. Keys are names without the leading slash. The
// serialization is deterministic, the keys are written in sorted order.
type Dict map[Name]any

// Set sets the entry key to value, overwriting a previous value.
func (d Dict) Set(key Name, value any) {
	d[key] = value
}

// Get returns the value for key and whether the key exists.
func (d Dict) Get(key Name) (any, bool) {
	v, ok := d[key]
	return v, ok
}

func (d Dict) String() string {
	return HashToString(d, 0)
}

// WriteTo writes the serialized dictionary to w.
func (d Dict) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, HashToString(d, 0))
	return int64(n), err
}

func (d Dict) keys() []Name {
	keys := make([]Name, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// HashToString converts a PDF dictionary to a string including the paired angle
// brackets (<< ... >>).
func HashToString(h Dict, level int) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", level))
	writeDict(&b, h, level)
	return b.String()
}

func writeDict(b *strings.Builder, h Dict, level int) {
	b.WriteString("<<\n")
	for _, k := range h.keys() {
		b.WriteString(strings.Repeat("  ", level+1))
		b.WriteString(k.String())
		b.WriteByte(' ')
		writeValue(b, h[k], level+1)
		b.WriteByte('\n')
	}
	b.WriteString(strings.Repeat("  ", level))
	b.WriteString(">>")
}

func writeArray(b *strings.Builder, ary []any, level int) {
	b.WriteByte('[')
	for i, elt := range ary {
		if i > 0 {
			b.WriteByte(' ')
		}
		writeValue(b, elt, level)
	}
	b.WriteByte(']')
}

// writeValue writes the PDF representation of v. Plain Go strings are written
// verbatim, so they can hold any prepared PDF token.
func writeValue(b *strings.Builder, v any, level int) {
	switch t := v.(type) {
	case string:
		b.WriteString(t)
	case Dict:
		writeDict(b, t, level)
	case Array:
		writeArray(b, t, level)
	case []any:
		writeArray(b, t, level)
	case int:
		b.WriteString(strconv.Itoa(t))
	case int64:
		b.WriteString(strconv.FormatInt(t, 10))
	case uint:
		b.WriteString(strconv.FormatUint(uint64(t), 10))
	case float64:
		b.WriteString(FloatToPoint(t))
	case bool:
		b.WriteString(strconv.FormatBool(t))
	case nil:
		b.WriteString("null")
	case fmt.Stringer:
		// Name, String, Objectnumber
		b.WriteString(t.String())
	default:
		fmt.Fprintf(b, "%v", t)
	}
}
