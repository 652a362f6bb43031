package patch

import (
	"regexp"
	"strings"
)

// Placeholder tokens substituted for matched secret spans
const (
	placeholderPEM    = "[REDACTED:PRIVATE_KEY]"
	placeholderAWSKey = "[REDACTED:AWS_ACCESS_KEY]"
	placeholderToken  = "[REDACTED:TOKEN]"
	placeholderOpaque = "[REDACTED:OPAQUE64]"
)

// Each pattern is a high-precision signature: exact delimiter pairs,
// fixed-prefix token formats, or minimum-length base64-like runs.
// Ordinary code must never match, so no entropy heuristics here;
// a missed secret is preferable to a corrupted patch.
var (
	pemBlockRe = regexp.MustCompile(
		`(?s)-----BEGIN [A-Z0-9 ]*PRIVATE KEY-----.*?-----END [A-Z0-9 ]*PRIVATE KEY-----`)

	awsAccessKeyRe = regexp.MustCompile(`\b(?:AKIA|ASIA)[0-9A-Z]{16}\b`)

	// GitHub fine-grained/classic tokens and Slack tokens carry fixed,
	// unambiguous prefixes
	vendorTokenRe = regexp.MustCompile(
		`\b(?:gh[pousr]_[A-Za-z0-9]{36,255}|github_pat_[A-Za-z0-9_]{22,255}|xox[baprs]-[A-Za-z0-9-]{10,48})\b`)

	// A standalone base64-like run of 40+ characters. The surrounding
	// character groups reject matches embedded in longer identifiers;
	// they are captured and restored so neighboring text is untouched.
	// The leading boundary admits '=' so env-style "KEY=value"
	// assignments match; the trailing one rejects it so a partially
	// consumed padding run never counts as standalone.
	opaqueRunRe = regexp.MustCompile(
		`(^|[^A-Za-z0-9+/_.-])([A-Za-z0-9+/]{40,}={0,2})($|[^A-Za-z0-9+/=_.-])`)
)

// Redact replaces unambiguous secret-shaped substrings in diff text
// with typed placeholder tokens. It is a pure text transform and
// idempotent: redacting already-redacted text changes nothing.
func Redact(text string) string {
	if text == "" {
		return text
	}

	out := pemBlockRe.ReplaceAllString(text, placeholderPEM)
	out = awsAccessKeyRe.ReplaceAllString(out, placeholderAWSKey)
	out = vendorTokenRe.ReplaceAllString(out, placeholderToken)

	// Boundary groups consume a character on each side, so adjacent
	// runs need a second pass to be caught.
	for {
		replaced := opaqueRunRe.ReplaceAllString(out, "${1}"+placeholderOpaque+"${3}")
		if replaced == out {
			break
		}
		out = replaced
	}

	return out
}

// Redacted reports whether text already contains a redaction placeholder
func Redacted(text string) bool {
	return strings.Contains(text, "[REDACTED:")
}
