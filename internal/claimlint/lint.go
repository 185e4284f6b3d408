package claimlint

import "regexp"

// Issue is one flagged phrase with a compliant rewrite.
type Issue struct {
	Rule       string `json:"rule"`
	Suggestion string `json:"suggestion"`
}

// Result reports every applicable issue in one pass.
type Result struct {
	Passed bool    `json:"passed"`
	Issues []Issue `json:"issues"`
}

type rule struct {
	id      string
	pattern *regexp.Regexp
	fix     string
}

// Rules are ordered and independent: all of them are evaluated, none
// short-circuits.
var rules = []rule{
	{"school_catchment", regexp.MustCompile(`(?i)\bin catchment\b`),
		"near [School]; check official zones (link)"},
	{"heritage_free", regexp.MustCompile(`(?i)\bheritage[- ]?free\b`),
		"no state heritage record found nearby; verify overlays via VicPlan"},
	{"walk_time_abs", regexp.MustCompile(`(?i)\b\d+\s*-?\s*minute walk\b`),
		"~X-minute walk (mapping estimate)"},
	{"price_claims", regexp.MustCompile(`(?i)\bunder market\b|\bbargain\b|\bguarantee\b`),
		"remove subjective price claims; rely on SoI & comparable sales"},
}

// Lint scans marketing copy against every rule.
func Lint(copy string) Result {
	issues := []Issue{}
	for _, r := range rules {
		if r.pattern.MatchString(copy) {
			issues = append(issues, Issue{Rule: r.id, Suggestion: r.fix})
		}
	}
	return Result{Passed: len(issues) == 0, Issues: issues}
}
