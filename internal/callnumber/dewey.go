package callnumber

import (
	"regexp"
	"strings"
)

// =============================================================================
// DEWEY DECIMAL GRAMMAR
// =============================================================================
//
//   813.54 h123a 2001
//   \_/\_/ \___/ \__/
//    |  |    |     +-- remainder
//    |  |    +-------- up to three cutters (letters + digits + optional suffix)
//    |  +------------- decimal extension
//    +---------------- 3-digit class number
//
// KEY LAYOUT:
//   class(3) decimal(11, default ".0000000000")
//   " " cutter1(12) " " cutter2(12) " " cutter3(12) [" " remainder]
//
// A cutter is letters(3, space padded) "_" digits(4, zero padded right)
// "_" suffix(3, space padded). An absent cutter is 12 spaces.

const deweyCutter = `(?:\s*\.?\s*([a-z]{1,3})(\d+)([a-z]{1,3}\b)?)?`

var deweyPattern = regexp.MustCompile(
	`^(\d{3})\s*(\.\d+)?` + deweyCutter + deweyCutter + deweyCutter + `\s*(.*)$`,
)

var deweyStripper = strings.NewReplacer("&", "", "/", "", `\`, "", "\r", " ", "\n", " ")

const (
	deweyDecimalWidth = 11
	deweyLettersWidth = 3
	deweyDigitsWidth  = 4
	deweySuffixWidth  = 3
	deweyCutterWidth  = deweyLettersWidth + 1 + deweyDigitsWidth + 1 + deweySuffixWidth
)

// DeweyCallNumber is a successfully parsed Dewey Decimal call number.
type DeweyCallNumber struct {
	ClassNumber string
	Decimal     string // includes the leading ".", empty when absent
	Cutters     []Cutter
	Remainder   string
}

// ParseDewey parses raw against the Dewey grammar. ok is false when nothing matches.
func ParseDewey(raw string) (cn DeweyCallNumber, ok bool) {
	cleaned := strings.TrimSpace(deweyStripper.Replace(strings.ToLower(raw)))

	m := deweyPattern.FindStringSubmatch(cleaned)
	if m == nil {
		return DeweyCallNumber{}, false
	}

	cn = DeweyCallNumber{
		ClassNumber: m[1],
		Decimal:     m[2],
		Remainder:   strings.TrimSpace(m[12]),
	}
	for i := 3; i < 12; i += 3 {
		if m[i] == "" {
			continue
		}
		cn.Cutters = append(cn.Cutters, Cutter{Letters: m[i], Number: m[i+1], Suffix: m[i+2]})
	}
	return cn, true
}

// Key renders the fixed-width sort key.
func (cn DeweyCallNumber) Key() string {
	decimal := cn.Decimal
	if decimal == "" {
		decimal = "."
	}

	var b strings.Builder
	b.WriteString(cn.ClassNumber)
	b.WriteString(padRight(decimal, deweyDecimalWidth, '0'))

	for i := 0; i < 3; i++ {
		b.WriteByte(' ')
		if i < len(cn.Cutters) {
			b.WriteString(renderDeweyCutter(cn.Cutters[i]))
		} else {
			b.WriteString(strings.Repeat(" ", deweyCutterWidth))
		}
	}

	if rem := normalizeDashRanges(collapseSpaces(cn.Remainder)); rem != "" {
		b.WriteByte(' ')
		b.WriteString(rem)
	}
	return b.String()
}

func renderDeweyCutter(c Cutter) string {
	return padRight(c.Letters, deweyLettersWidth, ' ') + "_" +
		padRight(c.Number, deweyDigitsWidth, '0') + "_" +
		padRight(c.Suffix, deweySuffixWidth, ' ')
}

// NormalizeDewey returns the Dewey sort key for raw. ok is false when raw is unparsable.
func NormalizeDewey(raw string) (key string, ok bool) {
	cn, ok := ParseDewey(raw)
	if !ok {
		return "", false
	}
	return cn.Key(), true
}
