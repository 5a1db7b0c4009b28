package accounts

import (
	"context"
	"fmt"
	"strings"
)

// avatarURLTemplate is the placeholder photo assigned to new accounts that
// did not provide one.
const avatarURLTemplate = "https://api.adorable.io/avatars/285/%s"

// AccountPolicies is the per-operation authentication policy table for the
// accounts resource. Listing accounts is an administrative operation.
var AccountPolicies = map[Operation]Policy{
	OpCreate: {},
	OpFind:   {Authenticate: true, RequireAdmin: true},
	OpGet:    {Authenticate: true},
	OpPatch:  {Authenticate: true},
	OpUpdate: {Authenticate: true},
	OpRemove: {Authenticate: true},
}

// AccountErrorDefaults maps each accounts operation to the status used for
// errors that escape the action without a provider code.
var AccountErrorDefaults = map[Operation]int{
	OpCreate: 400,
	OpFind:   404,
	OpGet:    404,
	OpPatch:  500,
	OpUpdate: 500,
	OpRemove: 500,
}

// createFieldByCode maps provider rejection codes for account creation to the
// payload field that caused them.
var createFieldByCode = map[string]string{
	ProviderCodeInvalidDisplayName: "displayName",
	ProviderCodeInvalidEmail:       "email",
	ProviderCodeEmailExists:        "email",
	ProviderCodeInvalidPassword:    "password",
	ProviderCodeInvalidPhone:       "phoneNumber",
	ProviderCodePhoneExists:        "phoneNumber",
	ProviderCodeInvalidPhotoURL:    "photoURL",
	ProviderCodeUIDExists:          "username",
}

var createMessageByCode = map[string]string{
	ProviderCodeUIDExists:   "Username unavailable.",
	ProviderCodeEmailExists: "Email unavailable.",
}

// AccountService implements the accounts resource on top of the identity
// service. Account records live entirely in the identity platform; this
// service holds no state of its own.
type AccountService struct {
	svc    IdentityService
	logger Logger
}

func NewAccountService(svc IdentityService) *AccountService {
	if svc == nil {
		panic("Missing IdentityService in account service...")
	}

	return &AccountService{
		svc:    svc,
		logger: defLogger{},
	}
}

func (s *AccountService) WithLogger(logger Logger) *AccountService {
	s.logger = logger
	return s
}

// Create registers a new identity. The account starts disabled with an
// unverified email; enabling it is a manual moderation step. The username
// becomes the record UID and, absent an explicit one, is derived from the
// email's local part.
func (s *AccountService) Create(ctx context.Context, rc *RequestContext) (any, error) {
	email, _ := rc.Data["email"].(string)

	username, _ := rc.Data["username"].(string)
	if username == "" {
		username = emailLocalPart(email)
	}

	photoURL, _ := rc.Data["photoURL"].(string)
	if photoURL == "" {
		photoURL = fmt.Sprintf(avatarURLTemplate, username)
	}

	displayName, _ := rc.Data["displayName"].(string)
	password, _ := rc.Data["password"].(string)

	fields := &IdentityFields{
		UID:           username,
		DisplayName:   &displayName,
		Email:         &email,
		Password:      &password,
		PhotoURL:      &photoURL,
		Disabled:      boolPtr(true),
		EmailVerified: boolPtr(false),
	}

	if phone, ok := rc.Data["phoneNumber"].(string); ok && phone != "" {
		fields.PhoneNumber = &phone
	}

	identity, err := s.svc.CreateIdentity(ctx, fields)
	if err != nil {
		return nil, s.createError(err, rc)
	}

	return identity, nil
}

// createError translates provider rejections into field-level failures so the
// caller can surface them on the registration form.
func (s *AccountService) createError(err error, rc *RequestContext) error {
	code := ProviderCode(err)

	if field, ok := createFieldByCode[code]; ok {
		message := createMessageByCode[code]
		if message == "" {
			message = accountMessages[field]
		}
		return Normalize(message, map[string]any{
			"errors": map[string]any{field: message},
		}, 400)
	}

	s.logger.Error("Create account failure -> %v", err)

	return Normalize(
		fmt.Sprintf("Error creating account -> %s", err.Error()),
		MethodPreview("accounts.create", "", rc.Data, rc.Query),
		400,
	)
}

// Find looks up a single account by email when the query carries one, and
// otherwise returns a page of accounts.
func (s *AccountService) Find(ctx context.Context, rc *RequestContext) (any, error) {
	if email, ok := rc.Query["email"].(string); ok && email != "" {
		identity, err := s.svc.FindIdentityByEmail(ctx, email)
		if err != nil {
			return nil, s.failure("accounts.find", err, rc)
		}
		return identity, nil
	}

	results := 1000
	if n, ok := rc.Query["results"].(int); ok {
		results = n
	}

	pageToken, _ := rc.Query["page"].(string)

	page, err := s.svc.ListIdentities(ctx, results, pageToken)
	if err != nil {
		return nil, s.failure("accounts.find", err, rc)
	}

	return page, nil
}

// Get fetches a single account by UID.
func (s *AccountService) Get(ctx context.Context, rc *RequestContext) (any, error) {
	if rc.ID == "" {
		return nil, Normalize("Id is required.", nil, 400)
	}

	identity, err := s.svc.GetIdentity(ctx, rc.ID)
	if err != nil {
		return nil, s.failure("accounts.get", err, rc)
	}

	return identity, nil
}

// Patch merges profile claims into the account's custom claims. Existing
// claims outside the payload, admin included, survive the merge.
func (s *AccountService) Patch(ctx context.Context, rc *RequestContext) (any, error) {
	if rc.ID == "" {
		return nil, Normalize("Id is required.", nil, 400)
	}

	identity, err := s.svc.GetIdentity(ctx, rc.ID)
	if err != nil {
		return nil, s.failure("accounts.patch", err, rc)
	}

	claims := make(map[string]any, len(identity.CustomClaims)+len(rc.Data))
	for k, v := range identity.CustomClaims {
		claims[k] = v
	}
	for k, v := range rc.Data {
		claims[k] = v
	}

	if err := s.svc.SetClaims(ctx, rc.ID, claims); err != nil {
		return nil, s.failure("accounts.patch", err, rc)
	}

	identity.CustomClaims = claims
	return identity, nil
}

// Update rewrites top-level account attributes. Only fields present in the
// payload are touched.
func (s *AccountService) Update(ctx context.Context, rc *RequestContext) (any, error) {
	if rc.ID == "" {
		return nil, Normalize("Id is required.", nil, 400)
	}

	fields := &IdentityFields{UID: rc.ID}
	touched := false

	if v, ok := rc.Data["displayName"].(string); ok {
		fields.DisplayName = &v
		touched = true
	}
	if v, ok := rc.Data["email"].(string); ok {
		fields.Email = &v
		touched = true
	}
	if v, ok := rc.Data["password"].(string); ok {
		fields.Password = &v
		touched = true
	}
	if v, ok := rc.Data["photoURL"].(string); ok {
		fields.PhotoURL = &v
		touched = true
	}
	if v, ok := rc.Data["phoneNumber"].(string); ok {
		fields.PhoneNumber = &v
		touched = true
	}

	if !touched {
		return nil, Normalize(accountMessages["data"], nil, 400)
	}

	identity, err := s.svc.UpdateIdentity(ctx, rc.ID, fields)
	if err != nil {
		return nil, s.failure("accounts.update", err, rc)
	}

	return identity, nil
}

// Remove deletes the account record and reports the removed id.
func (s *AccountService) Remove(ctx context.Context, rc *RequestContext) (any, error) {
	if rc.ID == "" {
		return nil, Normalize("Id is required.", nil, 400)
	}

	if err := s.svc.DeleteIdentity(ctx, rc.ID); err != nil {
		return nil, s.failure("accounts.remove", err, rc)
	}

	return map[string]any{"id": rc.ID}, nil
}

func (s *AccountService) failure(name string, err error, rc *RequestContext) error {
	s.logger.Error("%s failure -> %v", name, err)

	return Normalize(
		fmt.Sprintf("Error on %s -> %s", name, err.Error()),
		MethodPreview(name, rc.ID, rc.Data, rc.Query),
		providerStatus(err, AccountErrorDefaults[rc.Operation]),
	)
}

// providerStatus maps an identity service failure to an HTTP status, falling
// back to the operation default when the code is unknown.
func providerStatus(err error, fallback int) int {
	switch ProviderCode(err) {
	case ProviderCodeUserNotFound:
		return 404
	case ProviderCodeInvalidEmail,
		ProviderCodeInvalidDisplayName,
		ProviderCodeInvalidPassword,
		ProviderCodeInvalidPhone,
		ProviderCodeInvalidPhotoURL,
		ProviderCodeInvalidPageToken:
		return 400
	case ProviderCodeEmailExists,
		ProviderCodePhoneExists,
		ProviderCodeUIDExists:
		return 409
	case ProviderCodeUserDisabled,
		ProviderCodeTokenExpired,
		ProviderCodeTokenRevoked,
		ProviderCodeInvalidToken:
		return 401
	case ProviderCodeNotSupported:
		return 405
	default:
		return fallback
	}
}

func emailLocalPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

func boolPtr(b bool) *bool { return &b }
