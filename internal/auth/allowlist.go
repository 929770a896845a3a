package auth

// Allowlist holds the email addresses permitted to use the dashboard. A nil or
// empty Allowlist permits nobody.
type Allowlist struct {
	emails map[string]struct{}
}

// NewAllowlist normalises emails and drops blanks.
func NewAllowlist(emails ...string) *Allowlist {
	a := &Allowlist{emails: make(map[string]struct{}, len(emails))}
	for _, e := range emails {
		if e = normalizeEmail(e); e != "" {
			a.emails[e] = struct{}{}
		}
	}
	return a
}

// Allows reports whether email is listed.
func (a *Allowlist) Allows(email string) bool {
	if a == nil {
		return false
	}
	_, ok := a.emails[normalizeEmail(email)]
	return ok
}

// Len returns the number of listed addresses.
func (a *Allowlist) Len() int {
	if a == nil {
		return 0
	}
	return len(a.emails)
}
