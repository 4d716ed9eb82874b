package parser

import "regexp"

// Compiled regex patterns for event detection.
var (
	// Matches: "[2025.07.17-07.48.43:644][996]"
	// Matches: "[2025.07.17-07.48.43:644][  7]"
	// Captures: (1) timestamp
	timestampPattern = regexp.MustCompile(
		`^\[(\d{4}\.\d\d\.\d\d-\d\d\.\d\d\.\d\d:\d{3})\]\[\s*\d+\]`,
	)

	// Matches: "LogChat: Name has become Role (granted by Actor)"
	// Matches: "LogChat: Name (not present) is no longer Role (revoked by Actor)"
	// Target excludes ':' so chat messages ("Name: text") never match.
	// Captures: (1) target, (2) not-present marker, (3) verb, (4) role,
	// (5) granted|revoked, (6) actor
	grantRevokePattern = regexp.MustCompile(
		`^LogChat: ([^:]+?)( \(not present\))? (has become|is no longer) (.+?) \((granted|revoked) by (.+)\)$`,
	)

	// Matches: "LogChat: Actor created the Role Name role."
	// Captures: (1) actor, (2) created|updated|removed, (3) role
	roleManagePattern = regexp.MustCompile(
		`^LogChat: ([^:]+?) (created|updated|removed) the (.+) role\.$`,
	)
)
