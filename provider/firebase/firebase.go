// Package firebase adapts the Firebase Admin SDK to the identity service
// interface. All account state lives in Firebase Authentication.
package firebase

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	accounts "github.com/goliatone/go-accounts"
)

// Config carries the SDK bootstrap options. With no credentials file the SDK
// falls back to application default credentials.
type Config struct {
	ProjectID       string
	CredentialsFile string
}

// Service implements the identity service over the Firebase Admin SDK.
type Service struct {
	client *fbauth.Client
}

// New initializes the Admin SDK and returns the adapter.
func New(ctx context.Context, cfg Config) (*Service, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}

	return &Service{client: client}, nil
}

// NewWithClient wraps an already initialized auth client.
func NewWithClient(client *fbauth.Client) *Service {
	if client == nil {
		panic("Missing auth client in firebase identity service...")
	}
	return &Service{client: client}
}

func (s *Service) VerifyToken(ctx context.Context, idToken string) (*accounts.Token, error) {
	token, err := s.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return nil, mapError(err)
	}

	return &accounts.Token{Subject: token.UID, Claims: token.Claims}, nil
}

func (s *Service) GetIdentity(ctx context.Context, uid string) (*accounts.Identity, error) {
	user, err := s.client.GetUser(ctx, uid)
	if err != nil {
		return nil, mapError(err)
	}

	return toIdentity(user), nil
}

func (s *Service) FindIdentityByEmail(ctx context.Context, email string) (*accounts.Identity, error) {
	user, err := s.client.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, mapError(err)
	}

	return toIdentity(user), nil
}

func (s *Service) ListIdentities(ctx context.Context, maxResults int, pageToken string) (*accounts.IdentityPage, error) {
	if maxResults <= 0 || maxResults > 1000 {
		maxResults = 1000
	}

	pager := iterator.NewPager(s.client.Users(ctx, ""), maxResults, pageToken)

	var users []*fbauth.ExportedUserRecord
	next, err := pager.NextPage(&users)
	if err != nil {
		return nil, mapError(err)
	}

	page := &accounts.IdentityPage{
		Identities:    make([]*accounts.Identity, 0, len(users)),
		NextPageToken: next,
	}

	for _, user := range users {
		page.Identities = append(page.Identities, toIdentity(user.UserRecord))
	}

	return page, nil
}

func (s *Service) CreateIdentity(ctx context.Context, fields *accounts.IdentityFields) (*accounts.Identity, error) {
	params := &fbauth.UserToCreate{}

	if fields.UID != "" {
		params = params.UID(fields.UID)
	}
	if fields.DisplayName != nil {
		params = params.DisplayName(*fields.DisplayName)
	}
	if fields.Email != nil {
		params = params.Email(*fields.Email)
	}
	if fields.Password != nil {
		params = params.Password(*fields.Password)
	}
	if fields.PhoneNumber != nil {
		params = params.PhoneNumber(*fields.PhoneNumber)
	}
	if fields.PhotoURL != nil {
		params = params.PhotoURL(*fields.PhotoURL)
	}
	if fields.Disabled != nil {
		params = params.Disabled(*fields.Disabled)
	}
	if fields.EmailVerified != nil {
		params = params.EmailVerified(*fields.EmailVerified)
	}

	user, err := s.client.CreateUser(ctx, params)
	if err != nil {
		return nil, mapError(err)
	}

	return toIdentity(user), nil
}

func (s *Service) UpdateIdentity(ctx context.Context, uid string, fields *accounts.IdentityFields) (*accounts.Identity, error) {
	params := &fbauth.UserToUpdate{}

	if fields.DisplayName != nil {
		params = params.DisplayName(*fields.DisplayName)
	}
	if fields.Email != nil {
		params = params.Email(*fields.Email)
	}
	if fields.Password != nil {
		params = params.Password(*fields.Password)
	}
	if fields.PhoneNumber != nil {
		params = params.PhoneNumber(*fields.PhoneNumber)
	}
	if fields.PhotoURL != nil {
		params = params.PhotoURL(*fields.PhotoURL)
	}
	if fields.Disabled != nil {
		params = params.Disabled(*fields.Disabled)
	}
	if fields.EmailVerified != nil {
		params = params.EmailVerified(*fields.EmailVerified)
	}

	user, err := s.client.UpdateUser(ctx, uid, params)
	if err != nil {
		return nil, mapError(err)
	}

	return toIdentity(user), nil
}

func (s *Service) DeleteIdentity(ctx context.Context, uid string) error {
	return mapError(s.client.DeleteUser(ctx, uid))
}

func (s *Service) SetClaims(ctx context.Context, uid string, claims map[string]any) error {
	return mapError(s.client.SetCustomUserClaims(ctx, uid, claims))
}

func (s *Service) RevokeTokens(ctx context.Context, uid string) error {
	return mapError(s.client.RevokeRefreshTokens(ctx, uid))
}

func (s *Service) CustomToken(ctx context.Context, uid string) (string, error) {
	token, err := s.client.CustomToken(ctx, uid)
	if err != nil {
		return "", mapError(err)
	}
	return token, nil
}

// ActionLink issues the hosted management link for the given mode. Email
// recovery links have no server-side API; the platform sends those itself
// when the address changes.
func (s *Service) ActionLink(ctx context.Context, mode accounts.ActionMode, email string) (string, error) {
	var link string
	var err error

	switch mode {
	case accounts.ActionResetPassword:
		link, err = s.client.PasswordResetLink(ctx, email)
	case accounts.ActionVerifyEmail:
		link, err = s.client.EmailVerificationLink(ctx, email)
	default:
		return "", accounts.NewProviderError(
			accounts.ProviderCodeNotSupported,
			fmt.Sprintf("Action links for mode %q are not supported.", mode),
		)
	}

	if err != nil {
		return "", mapError(err)
	}

	return link, nil
}

func toIdentity(user *fbauth.UserRecord) *accounts.Identity {
	return &accounts.Identity{
		UID:           user.UID,
		DisplayName:   user.DisplayName,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		PhoneNumber:   user.PhoneNumber,
		PhotoURL:      user.PhotoURL,
		Disabled:      user.Disabled,
		CustomClaims:  user.CustomClaims,
	}
}

// mapError wraps SDK failures with the provider code the services key off.
// Unrecognized failures pass through untouched.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	code := ""

	switch {
	case fbauth.IsUserNotFound(err):
		code = accounts.ProviderCodeUserNotFound
	case fbauth.IsEmailAlreadyExists(err):
		code = accounts.ProviderCodeEmailExists
	case fbauth.IsUIDAlreadyExists(err):
		code = accounts.ProviderCodeUIDExists
	case fbauth.IsPhoneNumberAlreadyExists(err):
		code = accounts.ProviderCodePhoneExists
	case fbauth.IsIDTokenExpired(err):
		code = accounts.ProviderCodeTokenExpired
	case fbauth.IsIDTokenRevoked(err):
		code = accounts.ProviderCodeTokenRevoked
	case fbauth.IsIDTokenInvalid(err):
		code = accounts.ProviderCodeInvalidToken
	default:
		return err
	}

	return &accounts.ProviderError{Code: code, Message: err.Error(), Err: err}
}
