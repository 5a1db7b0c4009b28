package accounts_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	accounts "github.com/goliatone/go-accounts"
)

func TestAuthenticationCreateMintsCustomToken(t *testing.T) {
	svc := &MockIdentityService{}
	svc.On("CustomToken", mock.Anything, "pepe").Return("custom-token", nil)

	service := accounts.NewAuthenticationService(svc)

	rc := &accounts.RequestContext{
		Resource:  accounts.ResourceAuthentication,
		Operation: accounts.OpCreate,
		Identity:  &accounts.Identity{UID: "pepe"},
	}

	result, err := service.Create(context.Background(), rc)

	assert.NoError(t, err)
	assert.Equal(t, map[string]any{
		"uid":         "pepe",
		"accessToken": "custom-token",
	}, result)

	// The identity is already authenticated; no second verification.
	svc.AssertNotCalled(t, "VerifyToken", mock.Anything, mock.Anything)
}

func TestAuthenticationCreateServerCallVerifiesToken(t *testing.T) {
	svc := &MockIdentityService{}
	svc.On("VerifyToken", mock.Anything, "tok-123").Return(&accounts.Token{Subject: "pepe"}, nil)
	svc.On("CustomToken", mock.Anything, "pepe").Return("custom-token", nil)

	service := accounts.NewAuthenticationService(svc)

	rc := &accounts.RequestContext{
		Resource:  accounts.ResourceAuthentication,
		Operation: accounts.OpCreate,
		Query:     map[string]any{"id_token": "tok-123"},
	}

	_, err := service.Create(context.Background(), rc)

	assert.NoError(t, err)
	svc.AssertExpectations(t)
}

func TestAuthenticationFindIssuesActionLink(t *testing.T) {
	svc := &MockIdentityService{}
	svc.On("ActionLink", mock.Anything, accounts.ActionResetPassword, "pepe@example.com").
		Return("https://example.com/action", nil)

	service := accounts.NewAuthenticationService(svc)

	rc := &accounts.RequestContext{
		Resource:  accounts.ResourceAuthentication,
		Operation: accounts.OpFind,
		Query: map[string]any{
			"mode":  "resetPassword",
			"email": "pepe@example.com",
		},
	}

	result, err := service.Find(context.Background(), rc)

	assert.NoError(t, err)
	assert.Equal(t, map[string]any{
		"mode": "resetPassword",
		"link": "https://example.com/action",
	}, result)
}

func TestAuthenticationFindFallsBackToCallerEmail(t *testing.T) {
	svc := &MockIdentityService{}
	svc.On("ActionLink", mock.Anything, accounts.ActionVerifyEmail, "pepe@example.com").
		Return("https://example.com/action", nil)

	service := accounts.NewAuthenticationService(svc)

	rc := &accounts.RequestContext{
		Resource:  accounts.ResourceAuthentication,
		Operation: accounts.OpFind,
		Identity:  &accounts.Identity{UID: "pepe", Email: "pepe@example.com"},
		Query:     map[string]any{"mode": "verifyEmail"},
	}

	_, err := service.Find(context.Background(), rc)

	assert.NoError(t, err)
	svc.AssertExpectations(t)
}

func TestAuthenticationFindRequiresEmail(t *testing.T) {
	svc := &MockIdentityService{}
	service := accounts.NewAuthenticationService(svc)

	rc := &accounts.RequestContext{
		Resource:  accounts.ResourceAuthentication,
		Operation: accounts.OpFind,
		Query:     map[string]any{"mode": "resetPassword"},
	}

	_, err := service.Find(context.Background(), rc)

	assert.Error(t, err)
	assert.Equal(t, 400, accounts.BodyOf(err).Status)
	svc.AssertNotCalled(t, "ActionLink", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthenticationRemoveRevokesTokens(t *testing.T) {
	svc := &MockIdentityService{}
	svc.On("RevokeTokens", mock.Anything, "pepe").Return(nil)

	service := accounts.NewAuthenticationService(svc)

	rc := &accounts.RequestContext{
		Resource:  accounts.ResourceAuthentication,
		Operation: accounts.OpRemove,
		ID:        "pepe",
		Identity:  &accounts.Identity{UID: "pepe"},
	}

	result, err := service.Remove(context.Background(), rc)

	assert.NoError(t, err)
	assert.Equal(t, true, result)
}

func TestAuthenticationUnsupportedOperations(t *testing.T) {
	service := accounts.NewAuthenticationService(&MockIdentityService{})

	rc := &accounts.RequestContext{
		Resource:  accounts.ResourceAuthentication,
		Operation: accounts.OpPatch,
	}

	_, err := service.Patch(context.Background(), rc)

	assert.Error(t, err)
	assert.Equal(t, 405, accounts.BodyOf(err).Status)
}

func TestDocumentationFind(t *testing.T) {
	service := accounts.NewDocumentationService()

	result, err := service.Find(context.Background(), &accounts.RequestContext{
		Resource:  accounts.ResourceDocumentation,
		Operation: accounts.OpFind,
	})

	assert.NoError(t, err)

	doc := result.(map[string]any)
	assert.Equal(t, "accounts", doc["name"])
	assert.NotEmpty(t, doc["endpoints"])
}
