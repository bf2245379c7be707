package probe

import (
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// AuthSignal is the derived authentication requirement for one outcome. It
// is always recomputed from an Outcome, never stored on its own.
type AuthSignal struct {
	Required  bool     `json:"required"`
	Variables []string `json:"variables"`
}

// authErrorPatterns match explicit credential complaints in failure output.
// They run against uppercased text, so the literals are uppercase; the
// capture group is an identifier-like token of at least 4 characters.
var authErrorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`MISSING REQUIRED ENVIRONMENT VARIABLE[:\s]+([A-Z][A-Z0-9_]{3,})`),
	regexp.MustCompile(`ENVIRONMENT VARIABLE ([A-Z][A-Z0-9_]{3,}) IS REQUIRED`),
	regexp.MustCompile(`PLEASE SET ([A-Z][A-Z0-9_]{3,})`),
	regexp.MustCompile(`([A-Z][A-Z0-9_]{3,}) NOT FOUND`),
	regexp.MustCompile(`([A-Z][A-Z0-9_]{3,}) IS NOT SET`),
	regexp.MustCompile(`MISSING ([A-Z][A-Z0-9_]{3,})`),
	regexp.MustCompile(`REQUIRES? ([A-Z][A-Z0-9_]{3,})`),
	regexp.MustCompile(`SET THE ([A-Z][A-Z0-9_]{3,}) ENVIRONMENT VARIABLE`),
}

// identTokenPattern matches capitalized identifier-like tokens of at least 5
// characters in raw diagnostic text
var identTokenPattern = regexp.MustCompile(`[A-Z][A-Z0-9_]{4,}`)

// authKeywords filters candidate tokens; a token counts as a credential
// variable only when it contains one of these as a substring
var authKeywords = []string{"key", "token", "secret", "auth", "api", "url", "client"}

const maxLooseMatches = 5

// ExtractAuthSignal infers whether the probed server needs credential-based
// authentication, using three tiers in strict priority order:
//
//  1. explicit credential complaints in failure output (authoritative),
//  2. a successful negotiation, which is taken as proof that no
//     authentication is required (or that it was already provided),
//  3. a loose scan of the diagnostic text, capped to avoid noise.
//
// The first tier that yields a result wins.
func ExtractAuthSignal(out Outcome) AuthSignal {
	if !out.Success {
		text := strings.ToUpper(out.ErrorText + " " + out.Diagnostics)
		var vars []string
		for _, pattern := range authErrorPatterns {
			for _, m := range pattern.FindAllStringSubmatch(text, -1) {
				if containsAuthKeyword(m[1]) {
					vars = append(vars, m[1])
				}
			}
		}
		vars = lo.Uniq(vars)
		if len(vars) > 0 {
			sort.Strings(vars)
			return AuthSignal{Required: true, Variables: vars}
		}
	}

	if out.Success {
		return AuthSignal{Required: false, Variables: []string{}}
	}

	var vars []string
	for _, token := range identTokenPattern.FindAllString(out.Diagnostics, -1) {
		if containsAuthKeyword(token) {
			vars = append(vars, token)
		}
	}
	vars = lo.Uniq(vars)
	if len(vars) > maxLooseMatches {
		vars = vars[:maxLooseMatches]
	}
	sort.Strings(vars)
	return AuthSignal{Required: len(vars) > 0, Variables: vars}
}

func containsAuthKeyword(token string) bool {
	lowered := strings.ToLower(token)
	for _, kw := range authKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
