package report

import (
	"strings"
	"time"
	"unicode"

	"github.com/ginjaninja78/shelf-inventory/internal/types"
)

const filenamePrefixLen = 4

// Filename derives the output workbook name:
//
//	<library>_<locations joined by "-">_<first4>_<last4>_<YYYY-MM-DD>.xlsx
//
// first4 and last4 are taken from the normalized keys of the first and last
// sorted items. Same-day re-runs with the same parameters collide on purpose.
func Filename(library string, locations []string, sorted []*types.ProcessedPhysicalItem, now time.Time) string {
	first, last := "none", "none"
	if len(sorted) > 0 {
		first = keyPrefix(sorted[0].CallSort)
		last = keyPrefix(sorted[len(sorted)-1].CallSort)
	}

	parts := []string{
		orDefault(sanitize(library), "library"),
		orDefault(sanitize(strings.Join(locations, "-")), "locations"),
		first,
		last,
		now.Format("2006-01-02"),
	}
	return strings.Join(parts, "_") + ".xlsx"
}

func keyPrefix(key string) string {
	if len(key) > filenamePrefixLen {
		key = key[:filenamePrefixLen]
	}
	return orDefault(sanitize(strings.TrimSpace(key)), "none")
}

// sanitize keeps letters, digits, dots and dashes.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
