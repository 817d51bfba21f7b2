package entity

// Claim types assembled into every issued token.
const (
	ClaimSubject = "sub"
	ClaimTokenID = "jti"
	ClaimEmail   = "email"
	ClaimUserID  = "uid"
	ClaimRoles   = "roles"
)

// Claim is a single key/value assertion about the token subject.
// A claim set is an ordered []Claim; the same Type may appear more than once.
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// ClaimValues returns every value of claimType in order.
func ClaimValues(claims []Claim, claimType string) []string {
	var out []string
	for _, c := range claims {
		if c.Type == claimType {
			out = append(out, c.Value)
		}
	}
	return out
}

// FirstClaim returns the first value of claimType.
func FirstClaim(claims []Claim, claimType string) (string, bool) {
	for _, c := range claims {
		if c.Type == claimType {
			return c.Value, true
		}
	}
	return "", false
}
