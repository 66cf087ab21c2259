package model

// TokenIssuer produces signed bearer tokens for a principal.
type TokenIssuer interface {
	Issue(principal Principal) (string, error)
}

// TokenValidator verifies a bearer token and returns the principal it carries.
type TokenValidator interface {
	Validate(token string) (Principal, error)
}
