package auth

import "strings"

// Allowlist is a normalized, case-insensitive set of permitted email addresses.
// The zero value (empty) permits everyone.
type Allowlist map[string]struct{}

// ParseAllowlist builds an Allowlist from a comma-separated list of emails.
// Entries are trimmed and lowercased; blank entries are dropped.
func ParseAllowlist(csv string) Allowlist {
	return NewAllowlist(strings.Split(csv, ","))
}

// NewAllowlist builds an Allowlist from individual entries.
func NewAllowlist(emails []string) Allowlist {
	out := make(Allowlist, len(emails))
	for _, e := range emails {
		if n := normalizeEmail(e); n != "" {
			out[n] = struct{}{}
		}
	}
	return out
}

// Len returns the number of distinct entries.
func (a Allowlist) Len() int { return len(a) }

// IsAllowed reports whether email may use the service.
func (a Allowlist) IsAllowed(email string) bool {
	return IsAllowed(email, a)
}

// IsAllowed is the access policy: an empty allowlist allows everyone, otherwise the email must
// be a member, compared case-insensitively.
func IsAllowed(email string, allowlist Allowlist) bool {
	if len(allowlist) == 0 {
		return true
	}
	_, ok := allowlist[normalizeEmail(email)]
	return ok
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
