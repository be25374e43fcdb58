// =============================================================================
// Shelf Inventory Reconciler - Call Number Normalizer
// =============================================================================
//
// This package turns free-text library call numbers into fixed-layout sort
// keys. Two keys compare with ordinary string comparison in the same order a
// librarian shelves the books.
//
// SUPPORTED SCHEMES:
//   - Library of Congress (lc.go)
//   - Dewey Decimal       (dewey.go)
//
// PIPELINE:
//   1. Clean the raw string (case, whitespace, stray characters)
//   2. Parse it into a tagged result (LCCallNumber / DeweyCallNumber) or fail
//   3. Render every field at a fixed width
//   4. Normalize the trailing volume/part/date remainder
//
// A call number that does not match the scheme grammar gets the unparsable
// sentinel. The sentinel sorts after every real key by default, or before
// every real key when problems are sent to the top.
//
// Field widths are load-bearing: changing any of them changes cross-item
// ordering.
//
// =============================================================================

package callnumber

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ginjaninja78/shelf-inventory/internal/types"
)

// =============================================================================
// SENTINELS
// =============================================================================

const (
	// UnparsableBottom sorts after any LC key (letters) or Dewey key (digits).
	UnparsableBottom = "~~~~UNPARSABLE~~~~"

	// UnparsableTop sorts before any LC key (letters) or Dewey key (digits).
	UnparsableTop = "!!!!UNPARSABLE!!!!"
)

// ErrUnknownScheme is returned by ParseScheme for anything but LC or Dewey.
var ErrUnknownScheme = errors.New("unknown call number scheme")

// Sentinel returns the unparsable key for the given polarity.
func Sentinel(problemsToTop bool) string {
	if problemsToTop {
		return UnparsableTop
	}
	return UnparsableBottom
}

// IsUnparsable reports whether key is one of the unparsable sentinels.
func IsUnparsable(key string) bool {
	return key == UnparsableBottom || key == UnparsableTop
}

// ParseScheme maps a configuration value onto a Scheme.
// Matching is case-insensitive; "DDC" is accepted as an alias for Dewey.
func ParseScheme(s string) (types.Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lc", "loc", "lcc":
		return types.SchemeLC, nil
	case "dewey", "ddc":
		return types.SchemeDewey, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownScheme, s)
	}
}

// =============================================================================
// NORMALIZE
// =============================================================================

// Normalize converts raw into a sort key for the given scheme.
// It never fails: anything that cannot be parsed yields Sentinel(problemsToTop).
func Normalize(raw string, scheme types.Scheme, problemsToTop bool) string {
	var (
		key string
		ok  bool
	)

	switch scheme {
	case types.SchemeLC:
		key, ok = NormalizeLC(raw)
	case types.SchemeDewey:
		key, ok = NormalizeDewey(raw)
	}

	if !ok {
		return Sentinel(problemsToTop)
	}
	return key
}

// =============================================================================
// REMAINDER HELPERS
// =============================================================================

var (
	// integerMarker matches volume/part/copy markers followed by a number.
	// Longer alternatives come first so VOL wins over V and NO over N.
	integerMarker = regexp.MustCompile(`\b(DISC|DISK|VOL|BD|PT|OP|NO|C|V)\.?\s*(\d+)`)

	// descriptionMarker adds the bare N marker used by description fields.
	descriptionMarker = regexp.MustCompile(`\b(DISC|DISK|VOL|BD|PT|OP|NO|C|V|N)\.?\s*(\d+)`)

	// dashRange matches a digit range written with spaces around the dash.
	dashRange = regexp.MustCompile(`(\d)\s*-\s*(\d)`)
)

// padMarkers rewrites "<marker> <n>" as "<marker>.<n zero-padded to 5>".
// VOL is canonicalized to V.
func padMarkers(s string, pattern *regexp.Regexp) string {
	return pattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := pattern.FindStringSubmatch(match)
		marker := parts[1]
		if marker == "VOL" {
			marker = "V"
		}
		return marker + "." + padLeft(parts[2], 5, '0')
	})
}

// normalizeDashRanges strips whitespace around dashes between digits.
// It repeats until stable so chained ranges like "1 - 2 - 3" collapse fully.
func normalizeDashRanges(s string) string {
	for {
		next := dashRange.ReplaceAllString(s, "$1-$2")
		if next == s {
			return s
		}
		s = next
	}
}

// collapseSpaces trims s and replaces every whitespace run with one space.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// =============================================================================
// PADDING
// =============================================================================

// padLeft pads s on the left with padChar to length. Longer input is kept whole.
func padLeft(s string, length int, padChar byte) string {
	if len(s) >= length {
		return s
	}
	return strings.Repeat(string(padChar), length-len(s)) + s
}

// padRight pads s on the right with padChar to length. Longer input is kept whole.
func padRight(s string, length int, padChar byte) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(string(padChar), length-len(s))
}
