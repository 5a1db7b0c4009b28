package accounts

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Resource is a named collection of entities exposed through the pipeline.
type Resource string

const (
	ResourceAccounts       Resource = "accounts"
	ResourceAuthentication Resource = "authentication"
	ResourceDocumentation  Resource = "documentation"
)

// Operation is one of the fixed service methods a resource exposes.
type Operation string

const (
	OpCreate Operation = "create"
	OpFind   Operation = "find"
	OpGet    Operation = "get"
	OpPatch  Operation = "patch"
	OpUpdate Operation = "update"
	OpRemove Operation = "remove"
)

// ActionMode identifies an out-of-band user management action.
type ActionMode string

const (
	ActionRecoverEmail  ActionMode = "recoverEmail"
	ActionResetPassword ActionMode = "resetPassword"
	ActionVerifyEmail   ActionMode = "verifyEmail"
)

// Token is a verified identity token as decoded by the identity service.
type Token struct {
	Subject string
	Claims  map[string]any
}

// IdentityPage is one page of a paged identity listing.
type IdentityPage struct {
	Identities    []*Identity `json:"users"`
	NextPageToken string      `json:"pageToken,omitempty"`
}

// IdentityFields carries the writable attributes of an identity record.
// Nil pointers mean "leave unchanged" on update.
type IdentityFields struct {
	UID           string
	DisplayName   *string
	Email         *string
	Password      *string
	PhoneNumber   *string
	PhotoURL      *string
	Disabled      *bool
	EmailVerified *bool
}

// IdentityService is the narrow interface to the external identity platform.
// Token issuance cryptography, password hashing, and record storage all live
// behind it; this package only orchestrates calls against it.
type IdentityService interface {
	// VerifyToken checks the token's signature, expiry, and revocation
	// status and returns the decoded token.
	VerifyToken(ctx context.Context, idToken string) (*Token, error)
	GetIdentity(ctx context.Context, uid string) (*Identity, error)
	FindIdentityByEmail(ctx context.Context, email string) (*Identity, error)
	ListIdentities(ctx context.Context, maxResults int, pageToken string) (*IdentityPage, error)
	CreateIdentity(ctx context.Context, fields *IdentityFields) (*Identity, error)
	UpdateIdentity(ctx context.Context, uid string, fields *IdentityFields) (*Identity, error)
	DeleteIdentity(ctx context.Context, uid string) error
	SetClaims(ctx context.Context, uid string, claims map[string]any) error
	RevokeTokens(ctx context.Context, uid string) error
	CustomToken(ctx context.Context, uid string) (string, error)
	ActionLink(ctx context.Context, mode ActionMode, email string) (string, error)
}

// Reporter is an optional side channel notified after each completed request.
// Reporter failures are logged and swallowed; they never fail the request.
type Reporter interface {
	Report(ctx context.Context, rc *RequestContext) error
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(ctx context.Context, rc *RequestContext) error

func (f ReporterFunc) Report(ctx context.Context, rc *RequestContext) error {
	return f(ctx, rc)
}

// Config holds pipeline options. It is read once at construction and never
// re-queried per call.
type Config struct {
	// LogRequests enables the request/success/failure log stages. Wiring
	// code sets it from the environment; the pipeline never checks env vars.
	LogRequests bool

	// DisableNewAccounts rejects accounts/create before the business
	// action runs.
	DisableNewAccounts bool
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCOUNTS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
