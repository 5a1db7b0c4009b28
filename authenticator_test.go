package accounts_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	accounts "github.com/goliatone/go-accounts"
)

func TestAuthenticateSuccess(t *testing.T) {
	svc := &MockIdentityService{}
	svc.On("VerifyToken", mock.Anything, "tok-123").Return(&accounts.Token{Subject: "pepe"}, nil)
	svc.On("GetIdentity", mock.Anything, "pepe").Return(&accounts.Identity{UID: "pepe"}, nil)

	auther := accounts.NewAuthenticator(svc)

	identity, err := auther.Authenticate(context.Background(), "tok-123", "", false)

	assert.NoError(t, err)
	assert.Equal(t, "pepe", identity.UID)
	svc.AssertExpectations(t)
}

func TestAuthenticateVerifyFailure(t *testing.T) {
	svc := &MockIdentityService{}
	svc.On("VerifyToken", mock.Anything, "tok-123").Return(nil,
		accounts.NewProviderError(accounts.ProviderCodeTokenExpired, "token expired"))

	auther := accounts.NewAuthenticator(svc)

	_, err := auther.Authenticate(context.Background(), "tok-123", "", false)

	assert.Error(t, err)

	body := accounts.BodyOf(err)
	assert.Equal(t, 401, body.Status)
	assert.Equal(t, accounts.ProviderCodeTokenExpired, body.Data["provider_code"])
}

func TestAuthenticateSubjectMismatch(t *testing.T) {
	svc := &MockIdentityService{}
	svc.On("VerifyToken", mock.Anything, "tok-123").Return(&accounts.Token{Subject: "pepe"}, nil)

	auther := accounts.NewAuthenticator(svc)

	_, err := auther.Authenticate(context.Background(), "tok-123", "coquito", false)

	assert.Error(t, err)

	body := accounts.BodyOf(err)
	assert.Equal(t, 401, body.Status)
	assert.Equal(t, "Id token does not match uid.", body.Message)

	svc.AssertNotCalled(t, "GetIdentity", mock.Anything, mock.Anything)
}

func TestAuthenticateRequireAdmin(t *testing.T) {
	tests := []struct {
		name     string
		identity *accounts.Identity
		wantErr  bool
	}{
		{
			name:     "admin claim present",
			identity: &accounts.Identity{UID: "pepe", CustomClaims: map[string]any{"admin": true}},
		},
		{
			name:     "admin claim false",
			identity: &accounts.Identity{UID: "pepe", CustomClaims: map[string]any{"admin": false}},
			wantErr:  true,
		},
		{
			name:     "no claims",
			identity: &accounts.Identity{UID: "pepe"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockIdentityService{}
			svc.On("VerifyToken", mock.Anything, "tok-123").Return(&accounts.Token{Subject: "pepe"}, nil)
			svc.On("GetIdentity", mock.Anything, "pepe").Return(tt.identity, nil)

			auther := accounts.NewAuthenticator(svc)

			_, err := auther.Authenticate(context.Background(), "tok-123", "", true)

			if tt.wantErr {
				assert.Error(t, err)
				body := accounts.BodyOf(err)
				assert.Equal(t, 401, body.Status)
				assert.Equal(t, "User is not admin.", body.Message)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestNewAuthenticatorPanicsWithoutService(t *testing.T) {
	assert.Panics(t, func() {
		accounts.NewAuthenticator(nil)
	})
}
