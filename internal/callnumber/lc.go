package callnumber

import (
	"regexp"
	"strings"
)

// =============================================================================
// LIBRARY OF CONGRESS GRAMMAR
// =============================================================================
//
//   PS3572.A39D66 2004
//   \/\__/\__/\_/ \__/
//    |  |   |  |    +-- remainder ("trimmings": volume, copy, date)
//    |  |   |  +------- second cutter  (letter + number + 0-2 letter suffix)
//    |  |   +---------- first cutter
//    |  +-------------- class number (integer, optional decimal)
//    +----------------- 1-4 class letters
//
// KEY LAYOUT:
//   letters(4, space padded) " " class(5, zero padded left)
//   decimal(12, "." then zero padded right)
//   " " cutter1(8) " " cutter2(8) [" " remainder]
//
// A cutter is its letter followed by number+suffix zero padded right to 7.
// An absent cutter is 8 spaces, so a one-cutter key sorts before any
// two-cutter key sharing the same first cutter.

const lcCutter = `(?:\s*\.?\s*([A-Z])(\d+)([A-Z]{1,2}\b)?)?`

var lcPattern = regexp.MustCompile(
	`^([A-Z]{1,4})\s*(\d+)\s*(\.\d+)?` + lcCutter + lcCutter + `\s*(.*)$`,
)

const (
	lcLettersWidth = 4
	lcClassWidth   = 5
	lcDecimalWidth = 12
	lcCutterWidth  = 7
)

// Cutter is one author/title cutter of a parsed call number.
type Cutter struct {
	Letters string
	Number  string
	Suffix  string
}

// LCCallNumber is a successfully parsed Library of Congress call number.
type LCCallNumber struct {
	Letters     string
	ClassNumber string
	Decimal     string // includes the leading ".", empty when absent
	Cutter1     *Cutter
	Cutter2     *Cutter
	Remainder   string
}

// ParseLC parses raw against the LC grammar. ok is false when nothing matches.
func ParseLC(raw string) (cn LCCallNumber, ok bool) {
	cleaned := strings.TrimLeft(strings.ToUpper(raw), " \t\r\n")

	m := lcPattern.FindStringSubmatch(cleaned)
	if m == nil {
		return LCCallNumber{}, false
	}

	cn = LCCallNumber{
		Letters:     m[1],
		ClassNumber: m[2],
		Decimal:     m[3],
		Cutter1:     newCutter(m[4], m[5], m[6]),
		Cutter2:     newCutter(m[7], m[8], m[9]),
		Remainder:   strings.TrimSpace(m[10]),
	}
	return cn, true
}

// newCutter returns nil when the optional cutter group did not match.
func newCutter(letters, number, suffix string) *Cutter {
	if letters == "" {
		return nil
	}
	return &Cutter{Letters: letters, Number: number, Suffix: suffix}
}

// Key renders the fixed-width sort key.
func (cn LCCallNumber) Key() string {
	decimal := cn.Decimal
	if !strings.HasPrefix(decimal, ".") {
		decimal = "." + decimal
	}

	var b strings.Builder
	b.WriteString(padRight(cn.Letters, lcLettersWidth, ' '))
	b.WriteByte(' ')
	b.WriteString(padLeft(cn.ClassNumber, lcClassWidth, '0'))
	b.WriteString(padRight(decimal, lcDecimalWidth, '0'))
	b.WriteByte(' ')
	b.WriteString(renderLCCutter(cn.Cutter1))
	b.WriteByte(' ')
	b.WriteString(renderLCCutter(cn.Cutter2))

	if rem := normalizeLCRemainder(cn.Remainder); rem != "" {
		b.WriteByte(' ')
		b.WriteString(rem)
	}
	return b.String()
}

func renderLCCutter(c *Cutter) string {
	if c == nil {
		return strings.Repeat(" ", lcCutterWidth+1)
	}
	return c.Letters + padRight(c.Number+c.Suffix, lcCutterWidth, '0')
}

// normalizeLCRemainder cleans the trimmings so volume numbers compare
// numerically and spacing differences disappear.
func normalizeLCRemainder(s string) string {
	s = strings.ReplaceAll(s, `\`, "")
	s = collapseSpaces(s)
	s = normalizeDashRanges(s)
	return padMarkers(s, integerMarker)
}

// NormalizeLC returns the LC sort key for raw. ok is false when raw is unparsable.
func NormalizeLC(raw string) (key string, ok bool) {
	cn, ok := ParseLC(raw)
	if !ok {
		return "", false
	}
	return cn.Key(), true
}
