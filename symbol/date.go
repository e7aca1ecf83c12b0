package symbol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ccxtgo/unified/spec"
)

// monthAbbrev is the frozen month-name table used by ddmmmyy conversion
// (§4.4 step 7). Index 0 is unused so monthAbbrev[3] == "MAR" reads naturally.
var monthAbbrev = [13]string{
	"", "JAN", "FEB", "MAR", "APR", "MAY", "JUN",
	"JUL", "AUG", "SEP", "OCT", "NOV", "DEC",
}

func monthNumber(abbrev string) (int, bool) {
	upper := strings.ToUpper(abbrev)
	for i := 1; i <= 12; i++ {
		if monthAbbrev[i] == upper {
			return i, true
		}
	}
	return 0, false
}

// dmy is a bare year/month/day triple; years are always two-digit-century
// 20xx, matching every derivative expiry date this package handles (§9:
// the original format's century pivot is not in scope, all contracts here
// are 21st-century).
type dmy struct {
	year, month, day int
}

func parseDate(d string, format spec.DateFormat) (dmy, error) {
	switch format {
	case spec.DateYYMMDD:
		if len(d) != 6 {
			return dmy{}, fmt.Errorf("symbol: %q is not a valid yymmdd date", d)
		}
		yy, err1 := strconv.Atoi(d[0:2])
		mm, err2 := strconv.Atoi(d[2:4])
		dd, err3 := strconv.Atoi(d[4:6])
		if err1 != nil || err2 != nil || err3 != nil {
			return dmy{}, fmt.Errorf("symbol: %q is not a valid yymmdd date", d)
		}
		return dmy{2000 + yy, mm, dd}, nil

	case spec.DateDDMMMYY:
		if len(d) != 7 {
			return dmy{}, fmt.Errorf("symbol: %q is not a valid ddmmmyy date", d)
		}
		dd, err1 := strconv.Atoi(d[0:2])
		mm, ok := monthNumber(d[2:5])
		yy, err2 := strconv.Atoi(d[5:7])
		if err1 != nil || !ok || err2 != nil {
			return dmy{}, fmt.Errorf("symbol: %q is not a valid ddmmmyy date", d)
		}
		return dmy{2000 + yy, mm, dd}, nil

	case spec.DateYYYYMMDD:
		if len(d) != 8 {
			return dmy{}, fmt.Errorf("symbol: %q is not a valid yyyymmdd date", d)
		}
		yyyy, err1 := strconv.Atoi(d[0:4])
		mm, err2 := strconv.Atoi(d[4:6])
		dd, err3 := strconv.Atoi(d[6:8])
		if err1 != nil || err2 != nil || err3 != nil {
			return dmy{}, fmt.Errorf("symbol: %q is not a valid yyyymmdd date", d)
		}
		return dmy{yyyy, mm, dd}, nil

	default:
		return dmy{}, fmt.Errorf("symbol: unsupported date_format %q", format)
	}
}

func formatDate(v dmy, format spec.DateFormat) (string, error) {
	switch format {
	case spec.DateYYMMDD:
		return fmt.Sprintf("%02d%02d%02d", v.year%100, v.month, v.day), nil
	case spec.DateDDMMMYY:
		if v.month < 1 || v.month > 12 {
			return "", fmt.Errorf("symbol: month %d out of range", v.month)
		}
		return fmt.Sprintf("%02d%s%02d", v.day, monthAbbrev[v.month], v.year%100), nil
	case spec.DateYYYYMMDD:
		return fmt.Sprintf("%04d%02d%02d", v.year, v.month, v.day), nil
	default:
		return "", fmt.Errorf("symbol: unsupported date_format %q", format)
	}
}

// ConvertDate converts a derivative expiry date between the three closed
// date_format encodings (§4.4 step 7). It is involutive for every unordered
// pair of formats (Property 4): ConvertDate(ConvertDate(d, a, b), b, a) == d.
func ConvertDate(d string, from, to spec.DateFormat) (string, error) {
	if from == to {
		return d, nil
	}
	parsed, err := parseDate(d, from)
	if err != nil {
		return "", err
	}
	return formatDate(parsed, to)
}
