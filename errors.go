package accounts

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

// Taxonomy kinds carried as the TextCode of every normalized error.
const (
	KindInvalidInput     = "invalid-input"
	KindNotAuthenticated = "not-authenticated"
	KindPaymentRequired  = "payment-required"
	KindForbidden        = "forbidden"
	KindNotFound         = "not-found"
	KindMethodNotAllowed = "method-not-allowed"
	KindNotAcceptable    = "not-acceptable"
	KindTimeout          = "timeout"
	KindConflict         = "conflict"
	KindLengthRequired   = "length-required"
	KindUnprocessable    = "unprocessable"
	KindRateLimited      = "rate-limited"
	KindInternal         = "internal"
	KindNotImplemented   = "not-implemented"
	KindBadGateway       = "bad-gateway"
	KindUnavailable      = "unavailable"
)

type statusKind struct {
	textCode string
	category goerrors.Category
}

// statusTable is the fixed status -> kind mapping. Unmapped statuses fall
// back to the internal kind.
var statusTable = map[int]statusKind{
	400: {KindInvalidInput, goerrors.CategoryBadInput},
	401: {KindNotAuthenticated, goerrors.CategoryAuth},
	402: {KindPaymentRequired, goerrors.CategoryOperation},
	403: {KindForbidden, goerrors.CategoryAuthz},
	404: {KindNotFound, goerrors.CategoryNotFound},
	405: {KindMethodNotAllowed, goerrors.CategoryOperation},
	406: {KindNotAcceptable, goerrors.CategoryOperation},
	408: {KindTimeout, goerrors.CategoryOperation},
	409: {KindConflict, goerrors.CategoryConflict},
	411: {KindLengthRequired, goerrors.CategoryBadInput},
	422: {KindUnprocessable, goerrors.CategoryValidation},
	429: {KindRateLimited, goerrors.CategoryRateLimit},
	501: {KindNotImplemented, goerrors.CategoryOperation},
	502: {KindBadGateway, goerrors.CategoryOperation},
	503: {KindUnavailable, goerrors.CategoryOperation},
}

// Normalize maps an error (or bare message) to the transport-facing error for
// a status code. The detail bag is attached verbatim as metadata. A missing
// error argument is a programming mistake and is surfaced as invalid input
// rather than swallowed.
func Normalize(err any, detail map[string]any, status int) *goerrors.Error {
	message := messageOf(err)
	if message == "" {
		return goerrors.New("Error argument is required.", goerrors.CategoryBadInput).
			WithTextCode(KindInvalidInput).
			WithCode(400)
	}

	kind, ok := statusTable[status]
	if !ok {
		kind = statusKind{KindInternal, goerrors.CategoryInternal}
		status = 500
	}

	normalized := goerrors.New(message, kind.category).
		WithTextCode(kind.textCode).
		WithCode(status)

	if source, ok := err.(error); ok {
		normalized.Source = source
	}

	if len(detail) > 0 {
		normalized = normalized.WithMetadata(detail)
	}

	return normalized
}

// EnsureNormalized passes through errors that already crossed the normalizer
// and maps everything else with the given default status.
func EnsureNormalized(err error, detail map[string]any, status int) *goerrors.Error {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.TextCode != "" {
		return rich
	}
	return Normalize(err, detail, status)
}

// ErrorBody is the stable JSON shape every failure crosses the boundary with.
type ErrorBody struct {
	Status  int            `json:"status"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// BodyOf converts any error into the transport error body. Raw internal
// errors are never returned to a caller.
func BodyOf(err error) ErrorBody {
	rich := EnsureNormalized(err, nil, 500)
	return ErrorBody{
		Status:  rich.Code,
		Message: rich.Message,
		Data:    rich.Metadata,
	}
}

// MethodPreview describes a service method invocation for diagnostics.
func MethodPreview(name string, id string, data, params any) map[string]any {
	return map[string]any{
		"name": name,
		"arguments": map[string]any{
			"id":     id,
			"data":   data,
			"params": params,
		},
	}
}

func messageOf(err any) string {
	switch e := err.(type) {
	case nil:
		return ""
	case error:
		if e == nil {
			return ""
		}
		return e.Error()
	case string:
		return e
	default:
		return fmt.Sprintf("%v", e)
	}
}

// Provider error codes surfaced by identity service adapters. The codes keep
// the platform's native spelling so callers can key off them.
const (
	ProviderCodeInvalidDisplayName = "auth/invalid-display-name"
	ProviderCodeInvalidEmail       = "auth/invalid-email"
	ProviderCodeEmailExists        = "auth/email-already-exists"
	ProviderCodeInvalidPassword    = "auth/invalid-password"
	ProviderCodeInvalidPhone       = "auth/invalid-phone-number"
	ProviderCodePhoneExists        = "auth/phone-number-already-exists"
	ProviderCodeInvalidPhotoURL    = "auth/invalid-photo-url"
	ProviderCodeUIDExists          = "auth/uid-already-exists"
	ProviderCodeUserNotFound       = "auth/user-not-found"
	ProviderCodeUserDisabled       = "auth/user-disabled"
	ProviderCodeTokenExpired       = "auth/id-token-expired"
	ProviderCodeTokenRevoked       = "auth/id-token-revoked"
	ProviderCodeInvalidToken       = "auth/invalid-id-token"
	ProviderCodeInvalidPageToken   = "auth/invalid-page-token"
	ProviderCodeNotSupported       = "auth/operation-not-allowed"
)

// ProviderError is a failure reported by the external identity service.
type ProviderError struct {
	Code    string
	Message string
	Err     error
}

func NewProviderError(code, message string) *ProviderError {
	return &ProviderError{Code: code, Message: message}
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ProviderCode extracts the provider's native error code, if any.
func ProviderCode(err error) string {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
