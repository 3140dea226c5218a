// Package aidispatch implements ai_run (spec.md §4.8): provider
// resolution, anchor-line parsing, context-window extraction, ordered
// redaction, provider gating, dispatch, and AiTrace persistence.
//
// Grounded on original_source/src-tauri/src/commands.rs's ai_run_core,
// parse_anchor_line, extract_context, redact — generalized from the
// original's two-pattern toy redact() into the ordered six-rule set
// spec.md §4.8 step 5 requires.
package aidispatch

import "regexp"

var (
	reAWSAccessKey = regexp.MustCompile(`\b(?:AKIA|ASIA)[A-Z0-9]{16}\b`)
	reAWSSecretKey = regexp.MustCompile(`(?i)(aws_secret_access_key\s*=\s*)[A-Za-z0-9+/]{40}`)
	reBearer       = regexp.MustCompile(`(?i)(bearer)\s+\S+`)
	reLabeledToken = regexp.MustCompile(`(?i)\b(api_key|apikey|token|auth_id|auth)\s*=\s*\S+`)
	reURLParam     = regexp.MustCompile(`(?i)(\?(?:key|api_key|token)=)[^&\s]+`)
	reFallback     = regexp.MustCompile(`[A-Za-z0-9+/]{24,}`)
)

// Redact applies the ordered, globally-applied rule set of spec.md §4.8
// step 5. Each rule runs over the full result of the previous rule.
func Redact(s string) string {
	s = reAWSAccessKey.ReplaceAllString(s, "****")
	s = reAWSSecretKey.ReplaceAllString(s, "${1}****")
	s = reBearer.ReplaceAllString(s, "${1} ****")
	s = reLabeledToken.ReplaceAllString(s, "${1}=****")
	s = reURLParam.ReplaceAllString(s, "${1}****")
	s = reFallback.ReplaceAllStringFunc(s, func(run string) string {
		if looksLikeSecret(run) {
			return "****"
		}
		return run
	})
	return s
}

// looksLikeSecret requires a mixed letter+digit run, per spec.md §4.8's
// fallback rule ("mixed letters+digits"): pure-alpha words (e.g. ordinary
// prose) are left alone.
func looksLikeSecret(run string) bool {
	hasLetter, hasDigit := false, false
	for _, r := range run {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		}
	}
	return hasLetter && hasDigit
}
