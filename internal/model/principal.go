package model

// Principal is the authenticated identity attached to a request.
type Principal struct {
	SubjectID string
	Name      string
	Role      string
}
