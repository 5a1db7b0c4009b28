package accounts

import (
	"context"
	"fmt"
)

// AuthenticationPolicies is the per-operation policy table for the
// authentication resource. Exchanging a token and revoking sessions both
// require a verified caller; action links are requested out of band, before
// the user can sign in.
var AuthenticationPolicies = map[Operation]Policy{
	OpCreate: {Authenticate: true},
	OpFind:   {},
	OpRemove: {Authenticate: true},
}

var AuthenticationErrorDefaults = map[Operation]int{
	OpCreate: 401,
	OpFind:   401,
	OpRemove: 400,
}

// AuthenticationService implements session-shaped operations: minting custom
// tokens, issuing account management links, and revoking refresh tokens.
type AuthenticationService struct {
	Unsupported

	svc    IdentityService
	logger Logger
}

func NewAuthenticationService(svc IdentityService) *AuthenticationService {
	if svc == nil {
		panic("Missing IdentityService in authentication service...")
	}

	return &AuthenticationService{
		svc:    svc,
		logger: defLogger{},
	}
}

func (s *AuthenticationService) WithLogger(logger Logger) *AuthenticationService {
	s.logger = logger
	return s
}

// Create exchanges the caller's verified id token for a custom token the
// client can sign in with on another surface.
func (s *AuthenticationService) Create(ctx context.Context, rc *RequestContext) (any, error) {
	uid, err := s.callerUID(ctx, rc)
	if err != nil {
		return nil, err
	}

	token, err := s.svc.CustomToken(ctx, uid)
	if err != nil {
		return nil, s.failure("authentication.create", err, rc)
	}

	return map[string]any{
		"uid":         uid,
		"accessToken": token,
	}, nil
}

// Find issues an out-of-band account management link for the given mode:
// email recovery, password reset, or email verification.
func (s *AuthenticationService) Find(ctx context.Context, rc *RequestContext) (any, error) {
	mode, _ := rc.Query["mode"].(string)

	email, _ := rc.Query["email"].(string)
	if email == "" && rc.Identity != nil {
		email = rc.Identity.Email
	}
	if email == "" {
		return nil, Normalize(authMessages["email"], nil, 400)
	}

	link, err := s.svc.ActionLink(ctx, ActionMode(mode), email)
	if err != nil {
		return nil, s.failure("authentication.find", err, rc)
	}

	return map[string]any{
		"mode": mode,
		"link": link,
	}, nil
}

// Remove revokes every refresh token issued to the caller, forcing a fresh
// sign-in everywhere.
func (s *AuthenticationService) Remove(ctx context.Context, rc *RequestContext) (any, error) {
	uid, err := s.callerUID(ctx, rc)
	if err != nil {
		return nil, err
	}

	if err := s.svc.RevokeTokens(ctx, uid); err != nil {
		return nil, s.failure("authentication.remove", err, rc)
	}

	return true, nil
}

// callerUID resolves the subject of the request. Transport calls arrive with
// the identity already authenticated; server-to-server calls skip that stage
// and are resolved from the raw token here.
func (s *AuthenticationService) callerUID(ctx context.Context, rc *RequestContext) (string, error) {
	if rc.Identity != nil {
		return rc.Identity.UID, nil
	}

	idToken, _ := rc.Query["id_token"].(string)
	if idToken == "" {
		return "", Normalize(authMessages["id_token"], nil, 401)
	}

	token, err := s.svc.VerifyToken(ctx, idToken)
	if err != nil {
		return "", s.failure("authentication.verify", err, rc)
	}

	return token.Subject, nil
}

func (s *AuthenticationService) failure(name string, err error, rc *RequestContext) error {
	s.logger.Error("%s failure -> %v", name, err)

	return Normalize(
		fmt.Sprintf("Error on %s -> %s", name, err.Error()),
		MethodPreview(name, rc.ID, rc.Data, rc.Query),
		providerStatus(err, AuthenticationErrorDefaults[rc.Operation]),
	)
}
