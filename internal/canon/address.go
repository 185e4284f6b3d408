package canon

import (
	"regexp"
	"strings"
)

var rePunct = regexp.MustCompile(`[^A-Za-z0-9\s]`)

// FormattedAddress joins the listing address fields the way geocoders expect:
// "12 Example St, Fitzroy VIC 3065".
func FormattedAddress(line, suburb, state, postcode string) string {
	return strings.TrimSpace(line) + ", " + strings.TrimSpace(suburb) + " " +
		strings.ToUpper(strings.TrimSpace(state)) + " " + strings.TrimSpace(postcode)
}

// Canonicalize normalizes AU address fields and computes a stable key used
// for cache entries. Unit/apartment prefixes are ignored to stabilize
// identity per parcel.
func Canonicalize(line, suburb, state, postcode string) (normLine, normSuburb, normState, normPostcode, key string) {
	n1 := strings.TrimSpace(strings.ToUpper(line))
	n1 = stripUnit(n1)
	n1 = rePunct.ReplaceAllString(n1, " ")
	n1 = abbreviateSuffix(n1)
	n1 = collapseSpaces(n1)

	sub := collapseSpaces(rePunct.ReplaceAllString(strings.ToUpper(strings.TrimSpace(suburb)), " "))
	st := strings.ToUpper(strings.TrimSpace(state))
	if len(st) > 3 {
		st = stateAbbrev(st)
	}
	pc := trimPostcode(postcode)

	key = strings.ToLower(n1 + "|" + sub + "|" + st + "|" + pc)
	return n1, sub, st, pc, key
}

// FreeformKey reduces a free-text address ("12 Example Street, Fitzroy VIC
// 3065") to the same stable key Canonicalize produces for structured fields,
// so spelling variants of one address share a cache entry.
func FreeformKey(address string) string {
	line := strings.TrimSpace(address)
	rest := ""
	if i := strings.Index(line, ","); i >= 0 {
		line, rest = line[:i], line[i+1:]
	}

	fields := strings.Fields(rest)
	var state, postcode string
	if n := len(fields); n >= 2 && isPostcode(fields[n-1]) {
		postcode = fields[n-1]
		state = fields[n-2]
		fields = fields[:n-2]
	}
	suburb := strings.Join(fields, " ")

	_, _, _, _, key := Canonicalize(line, suburb, state, postcode)
	return key
}

func isPostcode(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func trimPostcode(p string) string {
	p = strings.TrimSpace(p)
	if len(p) >= 4 {
		return p[:4]
	}
	return p
}

func stripUnit(s string) string {
	// "2/14 Example St" and "Unit 2 14 Example St" both key on the parcel.
	if i := strings.Index(s, "/"); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	for _, prefix := range []string{"UNIT ", "APT ", "FLAT ", "SUITE "} {
		if strings.HasPrefix(s, prefix) {
			rest := strings.TrimPrefix(s, prefix)
			if j := strings.IndexByte(rest, ' '); j >= 0 {
				return strings.TrimSpace(rest[j+1:])
			}
		}
	}
	return strings.TrimSpace(s)
}

func abbreviateSuffix(s string) string {
	repl := map[string]string{
		" STREET":    " ST",
		" ROAD":      " RD",
		" AVENUE":    " AVE",
		" BOULEVARD": " BVD",
		" DRIVE":     " DR",
		" LANE":      " LA",
		" COURT":     " CT",
		" CRESCENT":  " CRES",
		" TERRACE":   " TCE",
		" PLACE":     " PL",
		" PARADE":    " PDE",
		" HIGHWAY":   " HWY",
		" GROVE":     " GR",
	}
	out := s
	for k, v := range repl {
		out = strings.ReplaceAll(out, k, v)
	}
	return out
}

func stateAbbrev(s string) string {
	m := map[string]string{
		"VICTORIA":                     "VIC",
		"NEW SOUTH WALES":              "NSW",
		"QUEENSLAND":                   "QLD",
		"SOUTH AUSTRALIA":              "SA",
		"WESTERN AUSTRALIA":            "WA",
		"TASMANIA":                     "TAS",
		"NORTHERN TERRITORY":           "NT",
		"AUSTRALIAN CAPITAL TERRITORY": "ACT",
	}
	if v, ok := m[s]; ok {
		return v
	}
	return s
}
