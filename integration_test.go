package accounts_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	accounts "github.com/goliatone/go-accounts"
	"github.com/goliatone/go-accounts/provider/memory"
)

func newTestServer(t *testing.T) (*fiber.App, *memory.Service) {
	t.Helper()

	svc := memory.New("test-signing-key")

	pipeline := accounts.NewPipeline(
		accounts.NewRegistry(),
		accounts.NewAuthenticator(svc),
		accounts.Config{},
	)

	pipeline.Register(accounts.ResourceAccounts, accounts.NewAccountService(svc), accounts.AccountPolicies, accounts.AccountErrorDefaults)
	pipeline.Register(accounts.ResourceAuthentication, accounts.NewAuthenticationService(svc), accounts.AuthenticationPolicies, accounts.AuthenticationErrorDefaults)
	pipeline.Register(accounts.ResourceDocumentation, accounts.NewDocumentationService(), accounts.DocumentationPolicies, accounts.DocumentationErrorDefaults)

	app := fiber.New(fiber.Config{ErrorHandler: accounts.ErrorHandler})
	accounts.NewHTTPController(pipeline).RegisterRoutes(app)

	return app, svc
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, target, reader)
	assert.NoError(t, err)

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := app.Test(req)
	assert.NoError(t, err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	assert.NoError(t, err)

	decoded := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		assert.NoError(t, json.Unmarshal(raw, &decoded))
	}

	return res.StatusCode, decoded
}

// signInAs enables the account and issues an id token, standing in for the
// platform's client-side sign-in.
func signInAs(t *testing.T, svc *memory.Service, uid string) string {
	t.Helper()

	disabled := false
	_, err := svc.UpdateIdentity(context.Background(), uid, &accounts.IdentityFields{Disabled: &disabled})
	assert.NoError(t, err)

	token, err := svc.IssueToken(uid)
	assert.NoError(t, err)

	return token
}

func TestCreateAccountOverHTTP(t *testing.T) {
	app, _ := newTestServer(t)

	status, body := doJSON(t, app, "POST", "/accounts",
		`{"displayName":"Pepe Rone","email":"pepe@example.com","password":"secret-sauce"}`)

	assert.Equal(t, 201, status)
	assert.Equal(t, "pepe", body["uid"])
	assert.Equal(t, false, body["emailVerified"])
	assert.Equal(t, true, body["disabled"])
	assert.Equal(t, "https://api.adorable.io/avatars/285/pepe", body["photoURL"])
}

func TestCreateAccountEmptyPayload(t *testing.T) {
	app, _ := newTestServer(t)

	status, body := doJSON(t, app, "POST", "/accounts", `{}`)

	assert.Equal(t, 400, status)

	failures, ok := body["data"].(map[string]any)["errors"].([]any)
	assert.True(t, ok)
	assert.Len(t, failures, 3)
}

func TestCreateAccountDuplicateUsernameOverHTTP(t *testing.T) {
	app, _ := newTestServer(t)

	status, _ := doJSON(t, app, "POST", "/accounts",
		`{"displayName":"Pepe Rone","email":"pepe@example.com","password":"secret-sauce","username":"pepe"}`)
	assert.Equal(t, 201, status)

	status, body := doJSON(t, app, "POST", "/accounts",
		`{"displayName":"Impostor","email":"impostor@example.com","password":"secret-sauce","username":"pepe"}`)

	assert.Equal(t, 400, status)
	assert.Equal(t, "Username unavailable.", body["message"])

	fields := body["data"].(map[string]any)["errors"].(map[string]any)
	assert.Equal(t, "Username unavailable.", fields["username"])
}

func TestGetAccountLifecycle(t *testing.T) {
	app, svc := newTestServer(t)

	status, _ := doJSON(t, app, "POST", "/accounts",
		`{"displayName":"Pepe Rone","email":"pepe@example.com","password":"secret-sauce"}`)
	assert.Equal(t, 201, status)

	// No token.
	status, body := doJSON(t, app, "GET", "/accounts/pepe", "")
	assert.Equal(t, 400, status)
	assert.Equal(t, "Query required.", body["message"])

	token := signInAs(t, svc, "pepe")

	status, body = doJSON(t, app, "GET", "/accounts/pepe?id_token="+token, "")
	assert.Equal(t, 200, status)
	assert.Equal(t, "Pepe Rone", body["displayName"])

	// A token for one account cannot read another.
	status, _ = doJSON(t, app, "GET", "/accounts/coquito?id_token="+token, "")
	assert.Equal(t, 401, status)

	status, body = doJSON(t, app, "DELETE", "/accounts/pepe?id_token="+token, "")
	assert.Equal(t, 200, status)
	assert.Equal(t, "pepe", body["id"])

	status, _ = doJSON(t, app, "GET", "/accounts/pepe?id_token="+token, "")
	assert.Equal(t, 401, status)
}

func TestFindAccountsRequiresAdmin(t *testing.T) {
	app, svc := newTestServer(t)

	status, _ := doJSON(t, app, "POST", "/accounts",
		`{"displayName":"Pepe Rone","email":"pepe@example.com","password":"secret-sauce"}`)
	assert.Equal(t, 201, status)

	token := signInAs(t, svc, "pepe")

	status, body := doJSON(t, app, "GET", "/accounts?id_token="+token, "")
	assert.Equal(t, 401, status)
	assert.Equal(t, "User is not admin.", body["message"])

	assert.NoError(t, svc.SetClaims(context.Background(), "pepe", map[string]any{"admin": true}))

	status, body = doJSON(t, app, "GET", "/accounts?id_token="+token, "")
	assert.Equal(t, 200, status)

	users, ok := body["users"].([]any)
	assert.True(t, ok)
	assert.Len(t, users, 1)
}

func TestPatchAccountClaimsOverHTTP(t *testing.T) {
	app, svc := newTestServer(t)

	status, _ := doJSON(t, app, "POST", "/accounts",
		`{"displayName":"Pepe Rone","email":"pepe@example.com","password":"secret-sauce"}`)
	assert.Equal(t, 201, status)

	token := signInAs(t, svc, "pepe")

	status, body := doJSON(t, app, "PATCH",
		"/accounts/pepe?id_token="+token,
		`{"birthday":"1990-04-01","premium":true}`)

	assert.Equal(t, 200, status)

	claims := body["customClaims"].(map[string]any)
	assert.Equal(t, "1990-04-01", claims["birthday"])
	assert.Equal(t, true, claims["premium"])

	// Booleans default when omitted.
	assert.Equal(t, false, claims["business"])
}

func TestAuthenticationFlowOverHTTP(t *testing.T) {
	app, svc := newTestServer(t)

	status, _ := doJSON(t, app, "POST", "/accounts",
		`{"displayName":"Pepe Rone","email":"pepe@example.com","password":"secret-sauce"}`)
	assert.Equal(t, 201, status)

	token := signInAs(t, svc, "pepe")

	status, body := doJSON(t, app, "POST", "/authentication?id_token="+token, "")
	assert.Equal(t, 201, status)
	assert.Equal(t, "pepe", body["uid"])
	assert.NotEmpty(t, body["accessToken"])

	status, body = doJSON(t, app, "GET",
		"/authentication?mode=resetPassword&email=pepe%40example.com", "")
	assert.Equal(t, 200, status)
	assert.Contains(t, body["link"], "mode=resetPassword")

	status, _ = doJSON(t, app, "DELETE", "/authentication/pepe?id_token="+token, "")
	assert.Equal(t, 200, status)
}

func TestRevokedTokenIsRejectedOverHTTP(t *testing.T) {
	app, svc := newTestServer(t)

	status, _ := doJSON(t, app, "POST", "/accounts",
		`{"displayName":"Pepe Rone","email":"pepe@example.com","password":"secret-sauce"}`)
	assert.Equal(t, 201, status)

	token := signInAs(t, svc, "pepe")

	assert.NoError(t, svc.RevokeTokens(context.Background(), "pepe"))

	status, body := doJSON(t, app, "GET", "/accounts/pepe?id_token="+token, "")
	assert.Equal(t, 401, status)
	assert.Contains(t, fmt.Sprint(body["message"]), "Error authenticating user")
}

func TestDisabledNewAccountsOverHTTP(t *testing.T) {
	svc := memory.New("test-signing-key")

	pipeline := accounts.NewPipeline(
		accounts.NewRegistry(),
		accounts.NewAuthenticator(svc),
		accounts.Config{DisableNewAccounts: true},
	)
	pipeline.Register(accounts.ResourceAccounts, accounts.NewAccountService(svc), accounts.AccountPolicies, accounts.AccountErrorDefaults)

	app := fiber.New(fiber.Config{ErrorHandler: accounts.ErrorHandler})
	accounts.NewHTTPController(pipeline).RegisterRoutes(app)

	status, body := doJSON(t, app, "POST", "/accounts",
		`{"displayName":"Pepe Rone","email":"pepe@example.com","password":"secret-sauce"}`)

	assert.Equal(t, 405, status)
	assert.Equal(t, "New account registration is disabled.", body["message"])
}

func TestDocumentationOverHTTP(t *testing.T) {
	app, _ := newTestServer(t)

	status, body := doJSON(t, app, "GET", "/documentation", "")

	assert.Equal(t, 200, status)
	assert.Equal(t, "accounts", body["name"])
}

func TestInvalidJSONPayload(t *testing.T) {
	app, _ := newTestServer(t)

	status, body := doJSON(t, app, "POST", "/accounts", `{"displayName":`)

	assert.Equal(t, 400, status)
	assert.Equal(t, "Invalid JSON payload.", body["message"])
}
