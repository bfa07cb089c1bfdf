package bag

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	unitRE = regexp.MustCompile(`^\s*(-?[0-9]*\.?[0-9]+)\s*(mm|cm|in|pt|px|pc|m)\s*$`)
	// ErrConversion signals an error in unit conversion
	ErrConversion = errors.New("conversion error")
)

// Factor is the multiplier to get ScaledPoints from DTP points.
const Factor ScaledPoint = 0xffff

// A ScaledPoint is a 65535th of a DTP point
type ScaledPoint int

// String returns the value in DTP points, suitable for a PDF file.
func (s ScaledPoint) String() string {
	return strconv.FormatFloat(s.ToPT(), 'f', -1, 64)
}

// ToPT returns the value in DTP points rounded to two decimal places.
func (s ScaledPoint) ToPT() float64 {
	return math.Round(float64(s)/float64(Factor)*100) / 100
}

// Sp converts a dimension such as "12pt" or "21cm" to ScaledPoints.
func Sp(unit string) (ScaledPoint, error) {
	m := unitRE.FindStringSubmatch(strings.ToLower(unit))
	if m == nil {
		return 0, fmt.Errorf("%w: cannot parse %q", ErrConversion, unit)
	}
	l, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parse float %s", ErrConversion, m[1])
	}

	switch m[2] {
	case "pt":
		return ScaledPoint(l * 0xffff), nil
	case "in":
		return ScaledPoint(l * 72 * 0xffff), nil
	case "mm":
		// l = l / 10 [cm], l = l / 2.54 [in], l = l * 72 [pt]
		return ScaledPoint(l / 10 / 2.54 * 72 * 0xffff), nil
	case "cm":
		return ScaledPoint(l / 2.54 * 72 * 0xffff), nil
	case "m":
		return ScaledPoint(l * 100 / 2.54 * 72 * 0xffff), nil
	case "px":
		// 1/96th of an inch
		return ScaledPoint(l * 72 / 96 * 0xffff), nil
	case "pc":
		// pica, 12pt
		return ScaledPoint(l * 12 * 0xffff), nil
	}
	return 0, ErrConversion
}

// MustSp converts the unit to ScaledPoints. In case of an error, the function panics
func MustSp(unit string) ScaledPoint {
	val, err := Sp(unit)
	if err != nil {
		Logger.Error(err)
		panic(err)
	}
	return val
}
