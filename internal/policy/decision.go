package policy

// Decision is the outcome of an authorization check.
// The zero value is Indeterminate, which is enforced as a denial.
type Decision int

const (
	Indeterminate Decision = iota
	Allow
	Deny
)

// Allowed reports whether d grants access. Only Allow does.
func (d Decision) Allowed() bool {
	return d == Allow
}

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	default:
		return "indeterminate"
	}
}
