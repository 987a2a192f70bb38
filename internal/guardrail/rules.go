package guardrail

import "regexp"

// patternRule is one entry of a data-driven detection table: a compiled
// pattern with the message reported when it matches.
type patternRule struct {
	name    string
	re      *regexp.Regexp
	message string
}

// sensitiveRules detect personally identifiable data. Matches are reported as
// warnings only; contracts legitimately carry contact information.
var sensitiveRules = []patternRule{
	{
		name:    "ssn",
		re:      regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
		message: "possible SSN detected",
	},
	{
		name:    "credit_card",
		re:      regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`),
		message: "possible credit card number detected",
	},
	{
		name:    "email",
		re:      regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		message: "email address detected",
	},
	{
		name:    "phone",
		re:      regexp.MustCompile(`\b(\+\d{1,2}\s?)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}\b`),
		message: "phone number detected",
	},
}

// safetyRules detect executable or markup injection fragments. A match blocks
// the document.
var safetyRules = []patternRule{
	{
		name:    "script_tag",
		re:      regexp.MustCompile(`(?i)<script`),
		message: "script markup detected",
	},
	{
		name:    "javascript_uri",
		re:      regexp.MustCompile(`(?i)javascript:`),
		message: "javascript URI detected",
	},
	{
		name:    "eval_call",
		re:      regexp.MustCompile(`(?i)\beval\s*\(`),
		message: "executable eval fragment detected",
	},
}

// genericTopics is the denylist of non-specific topic strings flagged by the
// output guardrail.
var genericTopics = []string{
	"general", "miscellaneous", "other", "various",
	"changes", "updates", "modifications",
}

// broadSectionRefs are catch-all section references that defeat the purpose of
// a per-section change record.
var broadSectionRefs = []string{
	"all sections", "entire document", "whole contract",
}
