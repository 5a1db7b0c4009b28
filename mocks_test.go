package accounts_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	accounts "github.com/goliatone/go-accounts"
)

// MockIdentityService implements accounts.IdentityService
type MockIdentityService struct {
	mock.Mock
}

func (m *MockIdentityService) VerifyToken(ctx context.Context, idToken string) (*accounts.Token, error) {
	args := m.Called(ctx, idToken)
	var token *accounts.Token
	if v := args.Get(0); v != nil {
		token = v.(*accounts.Token)
	}
	return token, args.Error(1)
}

func (m *MockIdentityService) GetIdentity(ctx context.Context, uid string) (*accounts.Identity, error) {
	args := m.Called(ctx, uid)
	var identity *accounts.Identity
	if v := args.Get(0); v != nil {
		identity = v.(*accounts.Identity)
	}
	return identity, args.Error(1)
}

func (m *MockIdentityService) FindIdentityByEmail(ctx context.Context, email string) (*accounts.Identity, error) {
	args := m.Called(ctx, email)
	var identity *accounts.Identity
	if v := args.Get(0); v != nil {
		identity = v.(*accounts.Identity)
	}
	return identity, args.Error(1)
}

func (m *MockIdentityService) ListIdentities(ctx context.Context, maxResults int, pageToken string) (*accounts.IdentityPage, error) {
	args := m.Called(ctx, maxResults, pageToken)
	var page *accounts.IdentityPage
	if v := args.Get(0); v != nil {
		page = v.(*accounts.IdentityPage)
	}
	return page, args.Error(1)
}

func (m *MockIdentityService) CreateIdentity(ctx context.Context, fields *accounts.IdentityFields) (*accounts.Identity, error) {
	args := m.Called(ctx, fields)
	var identity *accounts.Identity
	if v := args.Get(0); v != nil {
		identity = v.(*accounts.Identity)
	}
	return identity, args.Error(1)
}

func (m *MockIdentityService) UpdateIdentity(ctx context.Context, uid string, fields *accounts.IdentityFields) (*accounts.Identity, error) {
	args := m.Called(ctx, uid, fields)
	var identity *accounts.Identity
	if v := args.Get(0); v != nil {
		identity = v.(*accounts.Identity)
	}
	return identity, args.Error(1)
}

func (m *MockIdentityService) DeleteIdentity(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

func (m *MockIdentityService) SetClaims(ctx context.Context, uid string, claims map[string]any) error {
	args := m.Called(ctx, uid, claims)
	return args.Error(0)
}

func (m *MockIdentityService) RevokeTokens(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

func (m *MockIdentityService) CustomToken(ctx context.Context, uid string) (string, error) {
	args := m.Called(ctx, uid)
	return args.String(0), args.Error(1)
}

func (m *MockIdentityService) ActionLink(ctx context.Context, mode accounts.ActionMode, email string) (string, error) {
	args := m.Called(ctx, mode, email)
	return args.String(0), args.Error(1)
}

// MockResourceAction implements accounts.ResourceAction
type MockResourceAction struct {
	mock.Mock
}

func (m *MockResourceAction) Create(ctx context.Context, rc *accounts.RequestContext) (any, error) {
	args := m.Called(ctx, rc)
	return args.Get(0), args.Error(1)
}

func (m *MockResourceAction) Find(ctx context.Context, rc *accounts.RequestContext) (any, error) {
	args := m.Called(ctx, rc)
	return args.Get(0), args.Error(1)
}

func (m *MockResourceAction) Get(ctx context.Context, rc *accounts.RequestContext) (any, error) {
	args := m.Called(ctx, rc)
	return args.Get(0), args.Error(1)
}

func (m *MockResourceAction) Patch(ctx context.Context, rc *accounts.RequestContext) (any, error) {
	args := m.Called(ctx, rc)
	return args.Get(0), args.Error(1)
}

func (m *MockResourceAction) Update(ctx context.Context, rc *accounts.RequestContext) (any, error) {
	args := m.Called(ctx, rc)
	return args.Get(0), args.Error(1)
}

func (m *MockResourceAction) Remove(ctx context.Context, rc *accounts.RequestContext) (any, error) {
	args := m.Called(ctx, rc)
	return args.Get(0), args.Error(1)
}
