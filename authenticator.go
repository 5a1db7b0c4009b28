package accounts

import (
	"context"
	"fmt"
)

// Authenticator verifies opaque identity tokens against the external
// identity service. It performs read-only calls; nothing is persisted.
type Authenticator struct {
	svc    IdentityService
	logger Logger
}

// NewAuthenticator returns a new Authenticator bound to an identity service.
func NewAuthenticator(svc IdentityService) *Authenticator {
	if svc == nil {
		panic("Missing IdentityService in authenticator...")
	}

	return &Authenticator{
		svc:    svc,
		logger: defLogger{},
	}
}

func (a *Authenticator) WithLogger(logger Logger) *Authenticator {
	a.logger = logger
	return a
}

// Authenticate verifies idToken with the identity service and returns the
// caller's identity record. When expectedSubject is set the token must have
// been issued for that subject. When requireAdmin is set the identity must
// carry a truthy admin custom claim.
func (a *Authenticator) Authenticate(ctx context.Context, idToken, expectedSubject string, requireAdmin bool) (*Identity, error) {
	detail := map[string]any{"id_token": idToken}
	if expectedSubject != "" {
		detail["uid"] = expectedSubject
	}

	token, err := a.svc.VerifyToken(ctx, idToken)
	if err != nil {
		return nil, a.failure(err, detail)
	}

	if expectedSubject != "" && token.Subject != expectedSubject {
		return nil, Normalize("Id token does not match uid.", detail, 401)
	}

	identity, err := a.svc.GetIdentity(ctx, token.Subject)
	if err != nil {
		return nil, a.failure(err, detail)
	}

	if requireAdmin && !identity.Admin() {
		return nil, Normalize("User is not admin.", detail, 401)
	}

	return identity, nil
}

func (a *Authenticator) failure(err error, detail map[string]any) error {
	if code := ProviderCode(err); code != "" {
		detail["provider_code"] = code
	}

	a.logger.Error("Authentication failure -> %v", err)

	return Normalize(
		fmt.Sprintf("Error authenticating user -> %s", err.Error()),
		detail, 401,
	)
}
