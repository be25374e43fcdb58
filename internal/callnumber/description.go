package callnumber

import "strings"

// NormalizeDescription converts a volume/part description ("v.2", "no. 3",
// "op.57") into a key that breaks ties between items sharing a call number.
//
// Markers are matched case-insensitively and their numbers are zero padded
// to five digits. Whitespace runs collapse to one space and backslashes are
// dropped. An empty description normalizes to "", which sorts lowest.
func NormalizeDescription(raw string) string {
	s := strings.ToUpper(raw)
	s = strings.ReplaceAll(s, `\`, "")
	s = collapseSpaces(s)
	if s == "" {
		return ""
	}
	return padMarkers(s, descriptionMarker)
}
