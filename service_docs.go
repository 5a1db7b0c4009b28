package accounts

import "context"

// DocumentationPolicies leaves the documentation resource open.
var DocumentationPolicies = map[Operation]Policy{
	OpFind: {},
}

var DocumentationErrorDefaults = map[Operation]int{
	OpFind: 500,
}

// DocumentationService serves a static description of the API surface. It
// exists so clients have a discoverable root to probe.
type DocumentationService struct {
	Unsupported
}

func NewDocumentationService() *DocumentationService {
	return &DocumentationService{}
}

func (s *DocumentationService) Find(ctx context.Context, rc *RequestContext) (any, error) {
	return map[string]any{
		"name":        "accounts",
		"description": "Account management facade. All routes speak JSON.",
		"endpoints": []map[string]string{
			{"method": "POST", "path": "/accounts", "description": "Create an account."},
			{"method": "GET", "path": "/accounts", "description": "List accounts or look one up by email. Admin only."},
			{"method": "GET", "path": "/accounts/:id", "description": "Fetch an account."},
			{"method": "PATCH", "path": "/accounts/:id", "description": "Update profile claims."},
			{"method": "PUT", "path": "/accounts/:id", "description": "Update account attributes."},
			{"method": "DELETE", "path": "/accounts/:id", "description": "Delete an account."},
			{"method": "POST", "path": "/authentication", "description": "Exchange an id token for a custom token."},
			{"method": "GET", "path": "/authentication", "description": "Request an account management link."},
			{"method": "DELETE", "path": "/authentication/:id", "description": "Revoke the caller's refresh tokens."},
			{"method": "GET", "path": "/documentation", "description": "This document."},
		},
	}, nil
}
