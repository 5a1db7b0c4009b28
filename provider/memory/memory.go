// Package memory implements the identity service against process-local
// state. It backs development servers and tests; nothing survives a restart.
package memory

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	accounts "github.com/goliatone/go-accounts"
)

const (
	defaultIssuer        = "accounts-memory"
	defaultTokenTTL      = time.Hour
	defaultActionBaseURL = "http://localhost:3030"
)

type record struct {
	identity         accounts.Identity
	passwordHash     []byte
	tokensValidAfter time.Time
}

// Service is an in-memory identity platform. Safe for concurrent use.
type Service struct {
	mu sync.Mutex

	signingKey    []byte
	issuer        string
	tokenTTL      time.Duration
	actionBaseURL string
	now           func() time.Time

	records map[string]*record
	emails  map[string]string
}

type Option func(*Service)

func WithIssuer(issuer string) Option {
	return func(s *Service) {
		s.issuer = issuer
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithActionBaseURL sets the host action links point at.
func WithActionBaseURL(base string) Option {
	return func(s *Service) {
		s.actionBaseURL = base
	}
}

// WithClock overrides the time source. Tests use it to age tokens.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(signingKey string, opts ...Option) *Service {
	if signingKey == "" {
		panic("Missing signing key in memory identity service...")
	}

	s := &Service{
		signingKey:    []byte(signingKey),
		issuer:        defaultIssuer,
		tokenTTL:      defaultTokenTTL,
		actionBaseURL: defaultActionBaseURL,
		now:           time.Now,
		records:       map[string]*record{},
		emails:        map[string]string{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// IssueToken mints an id token for an existing identity. It stands in for
// the client-side sign-in flow a real platform provides.
func (s *Service) IssueToken(uid string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[uid]; !ok {
		return "", userNotFound()
	}

	return s.mint(uid, "id")
}

func (s *Service) VerifyToken(ctx context.Context, idToken string) (*accounts.Token, error) {
	claims := jwt.MapClaims{}

	token, err := jwt.ParseWithClaims(idToken, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("Unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &accounts.ProviderError{
				Code:    accounts.ProviderCodeTokenExpired,
				Message: "The provided token is expired.",
				Err:     err,
			}
		}
		return nil, &accounts.ProviderError{
			Code:    accounts.ProviderCodeInvalidToken,
			Message: "The provided token is invalid.",
			Err:     err,
		}
	}

	if !token.Valid {
		return nil, accounts.NewProviderError(accounts.ProviderCodeInvalidToken, "The provided token is invalid.")
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, accounts.NewProviderError(accounts.ProviderCodeInvalidToken, "The provided token has no subject.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[subject]
	if !ok {
		return nil, userNotFound()
	}

	if rec.identity.Disabled {
		return nil, accounts.NewProviderError(accounts.ProviderCodeUserDisabled, "The user account has been disabled.")
	}

	if issued, err := claims.GetIssuedAt(); err == nil && issued != nil {
		if issued.Time.Before(rec.tokensValidAfter) {
			return nil, accounts.NewProviderError(accounts.ProviderCodeTokenRevoked, "The provided token has been revoked.")
		}
	}

	return &accounts.Token{Subject: subject, Claims: claims}, nil
}

func (s *Service) GetIdentity(ctx context.Context, uid string) (*accounts.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[uid]
	if !ok {
		return nil, userNotFound()
	}

	return cloneIdentity(&rec.identity), nil
}

func (s *Service) FindIdentityByEmail(ctx context.Context, email string) (*accounts.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	uid, ok := s.emails[email]
	if !ok {
		return nil, userNotFound()
	}

	return cloneIdentity(&s.records[uid].identity), nil
}

// ListIdentities pages through records in uid order. The page token is the
// last uid of the previous page.
func (s *Service) ListIdentities(ctx context.Context, maxResults int, pageToken string) (*accounts.IdentityPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	uids := make([]string, 0, len(s.records))
	for uid := range s.records {
		uids = append(uids, uid)
	}
	sort.Strings(uids)

	start := 0
	if pageToken != "" {
		if _, ok := s.records[pageToken]; !ok {
			return nil, accounts.NewProviderError(accounts.ProviderCodeInvalidPageToken, "The provided page token is invalid.")
		}
		start = sort.SearchStrings(uids, pageToken) + 1
	}

	if maxResults <= 0 || maxResults > 1000 {
		maxResults = 1000
	}

	page := &accounts.IdentityPage{Identities: []*accounts.Identity{}}

	for i := start; i < len(uids) && len(page.Identities) < maxResults; i++ {
		page.Identities = append(page.Identities, cloneIdentity(&s.records[uids[i]].identity))
	}

	if last := start + len(page.Identities); last < len(uids) && len(page.Identities) > 0 {
		page.NextPageToken = page.Identities[len(page.Identities)-1].UID
	}

	return page, nil
}

func (s *Service) CreateIdentity(ctx context.Context, fields *accounts.IdentityFields) (*accounts.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	uid := fields.UID
	if uid == "" {
		uid = uuid.NewString()
	}

	if _, ok := s.records[uid]; ok {
		return nil, accounts.NewProviderError(accounts.ProviderCodeUIDExists, "The user with the provided uid already exists.")
	}

	email := stringValue(fields.Email)
	if email == "" {
		return nil, accounts.NewProviderError(accounts.ProviderCodeInvalidEmail, "The provided email is invalid.")
	}

	if _, ok := s.emails[email]; ok {
		return nil, accounts.NewProviderError(accounts.ProviderCodeEmailExists, "The email address is already in use by another account.")
	}

	password := stringValue(fields.Password)
	if len(password) < 6 {
		return nil, accounts.NewProviderError(accounts.ProviderCodeInvalidPassword, "The password must be a string with at least six characters.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	rec := &record{
		identity: accounts.Identity{
			UID:           uid,
			DisplayName:   stringValue(fields.DisplayName),
			Email:         email,
			PhoneNumber:   stringValue(fields.PhoneNumber),
			PhotoURL:      stringValue(fields.PhotoURL),
			Disabled:      boolValue(fields.Disabled),
			EmailVerified: boolValue(fields.EmailVerified),
		},
		passwordHash: hash,
	}

	s.records[uid] = rec
	s.emails[email] = uid

	return cloneIdentity(&rec.identity), nil
}

func (s *Service) UpdateIdentity(ctx context.Context, uid string, fields *accounts.IdentityFields) (*accounts.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[uid]
	if !ok {
		return nil, userNotFound()
	}

	if fields.Email != nil && *fields.Email != rec.identity.Email {
		if _, taken := s.emails[*fields.Email]; taken {
			return nil, accounts.NewProviderError(accounts.ProviderCodeEmailExists, "The email address is already in use by another account.")
		}
		delete(s.emails, rec.identity.Email)
		rec.identity.Email = *fields.Email
		rec.identity.EmailVerified = false
		s.emails[*fields.Email] = uid
	}

	if fields.Password != nil {
		if len(*fields.Password) < 6 {
			return nil, accounts.NewProviderError(accounts.ProviderCodeInvalidPassword, "The password must be a string with at least six characters.")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*fields.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		rec.passwordHash = hash
	}

	if fields.DisplayName != nil {
		rec.identity.DisplayName = *fields.DisplayName
	}
	if fields.PhoneNumber != nil {
		rec.identity.PhoneNumber = *fields.PhoneNumber
	}
	if fields.PhotoURL != nil {
		rec.identity.PhotoURL = *fields.PhotoURL
	}
	if fields.Disabled != nil {
		rec.identity.Disabled = *fields.Disabled
	}
	if fields.EmailVerified != nil {
		rec.identity.EmailVerified = *fields.EmailVerified
	}

	return cloneIdentity(&rec.identity), nil
}

func (s *Service) DeleteIdentity(ctx context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[uid]
	if !ok {
		return userNotFound()
	}

	delete(s.emails, rec.identity.Email)
	delete(s.records, uid)

	return nil
}

func (s *Service) SetClaims(ctx context.Context, uid string, claims map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[uid]
	if !ok {
		return userNotFound()
	}

	cloned := make(map[string]any, len(claims))
	for k, v := range claims {
		cloned[k] = v
	}
	rec.identity.CustomClaims = cloned

	return nil
}

func (s *Service) RevokeTokens(ctx context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[uid]
	if !ok {
		return userNotFound()
	}

	rec.tokensValidAfter = s.now()

	return nil
}

func (s *Service) CustomToken(ctx context.Context, uid string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[uid]; !ok {
		return "", userNotFound()
	}

	return s.mint(uid, "custom")
}

// ActionLink synthesizes the hosted action URL a real platform would email
// to the user.
func (s *Service) ActionLink(ctx context.Context, mode accounts.ActionMode, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.emails[email]; !ok {
		return "", userNotFound()
	}

	oobUUID, err := hashid.NewUUID(fmt.Sprintf("%s:%s:%d", mode, email, s.now().UnixNano()))
	oobCode := oobUUID.String()
	if err != nil {
		oobCode = uuid.NewString()
	}

	query := url.Values{}
	query.Set("mode", string(mode))
	query.Set("oobCode", oobCode)
	query.Set("email", email)

	return fmt.Sprintf("%s/__/auth/action?%s", s.actionBaseURL, query.Encode()), nil
}

// mint signs a token for uid. Callers hold the lock.
func (s *Service) mint(uid, typ string) (string, error) {
	now := s.now()

	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": uid,
		"aud": typ,
		"jti": uuid.NewString(),
		"iat": jwt.NewNumericDate(now),
		"exp": jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(s.signingKey)
}

func userNotFound() *accounts.ProviderError {
	return accounts.NewProviderError(
		accounts.ProviderCodeUserNotFound,
		"There is no user record corresponding to the provided identifier.",
	)
}

func cloneIdentity(in *accounts.Identity) *accounts.Identity {
	out := *in
	if in.CustomClaims != nil {
		out.CustomClaims = make(map[string]any, len(in.CustomClaims))
		for k, v := range in.CustomClaims {
			out.CustomClaims[k] = v
		}
	}
	return &out
}

func stringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func boolValue(p *bool) bool {
	return p != nil && *p
}
