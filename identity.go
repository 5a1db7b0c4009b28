package accounts

// Identity is the authenticated caller resolved from a token, or an account
// record returned by the identity service. It is created per request and
// never persisted by this package.
type Identity struct {
	UID           string         `json:"uid"`
	DisplayName   string         `json:"displayName,omitempty"`
	Email         string         `json:"email,omitempty"`
	EmailVerified bool           `json:"emailVerified"`
	PhoneNumber   string         `json:"phoneNumber,omitempty"`
	PhotoURL      string         `json:"photoURL,omitempty"`
	Disabled      bool           `json:"disabled"`
	CustomClaims  map[string]any `json:"customClaims,omitempty"`
}

// Admin reports whether the identity carries a truthy admin custom claim.
func (i *Identity) Admin() bool {
	if i == nil || i.CustomClaims == nil {
		return false
	}

	admin, ok := i.CustomClaims["admin"].(bool)
	return ok && admin
}

// Claim returns a single custom claim value.
func (i *Identity) Claim(name string) (any, bool) {
	if i == nil || i.CustomClaims == nil {
		return nil, false
	}
	v, ok := i.CustomClaims[name]
	return v, ok
}
