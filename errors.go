package castlegate

import (
	"net/http"

	"github.com/goliatone/go-errors"
)

// Text codes surfaced to clients in error payloads. These are wire contract,
// do not rename.
const (
	TextCodeTokenRequired    = "TOKEN_REQUIRED"
	TextCodeNewTokenRequired = "NEW_TOKEN_REQUIRED"
	TextCodeDisabledUser     = "DISABLED_USER"
	TextCodeLoginFailed      = "LOGIN_FAILED"
	TextCodeDuplicateEmail   = "ALREADY_PRESENT_EMAIL"
	TextCodeValidationError  = "VALIDATION_ERROR"
	TextCodeGenericError     = "GENERIC_ERROR"
	TextCodeTokenExpired     = "AUTH_TOKEN_EXPIRED"
	TextCodeTokenMalformed   = "AUTH_TOKEN_MALFORMED"
	TextCodeEmptyPassword    = "AUTH_EMPTY_PASSWORD"
)

// ErrLoginFailed covers both unknown email and wrong password so callers
// cannot enumerate registered addresses.
var ErrLoginFailed = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeLoginFailed).
	WithCode(errors.CodeUnauthorized)

// ErrDisabledUser is returned for any authentication attempt against a
// disabled account, including lockout-disabled ones.
var ErrDisabledUser = errors.New("user is disabled", errors.CategoryAuthz).
	WithTextCode(TextCodeDisabledUser).
	WithCode(errors.CodeForbidden)

// ErrDuplicateEmail maps the store's uniqueness violation on email.
var ErrDuplicateEmail = errors.New("email address already registered", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateEmail)

// ErrValidationFailed maps the store's or payload shape violations.
var ErrValidationFailed = errors.New("record failed validation", errors.CategoryValidation).
	WithTextCode(TextCodeValidationError)

// ErrTokenExpired is the codec failure for a well-formed token past its expiry.
var ErrTokenExpired = errors.New("authentication token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is the codec failure for a bad signature or structure.
var ErrTokenMalformed = errors.New("authentication token malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrMismatchedHashAndPassword is the hasher's constant mismatch failure.
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeLoginFailed).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects hashing an empty plaintext.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// ErrAccountNotFound is the store's lookup miss.
var ErrAccountNotFound = errors.New("account not found", errors.CategoryNotFound)

// ErrorCode resolves the wire error code for any error. Unrecognized errors
// collapse to GENERIC_ERROR so nothing internal leaks through the boundary.
func ErrorCode(err error) string {
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode != "" {
		switch richErr.TextCode {
		case TextCodeTokenRequired, TextCodeNewTokenRequired, TextCodeDisabledUser,
			TextCodeLoginFailed, TextCodeDuplicateEmail, TextCodeValidationError:
			return richErr.TextCode
		case TextCodeTokenExpired, TextCodeTokenMalformed:
			// expiry and invalidity are deliberately indistinguishable on the wire
			return TextCodeNewTokenRequired
		}
	}
	return TextCodeGenericError
}

// ErrorStatus maps a wire error code to its HTTP status.
func ErrorStatus(code string) int {
	switch code {
	case TextCodeDisabledUser:
		return http.StatusForbidden
	case TextCodeLoginFailed, TextCodeTokenRequired, TextCodeNewTokenRequired:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}

// ErrorPayload builds the `{errorCode, data}` body clients consume.
func ErrorPayload(err error) map[string]any {
	payload := map[string]any{
		"errorCode": ErrorCode(err),
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) && len(richErr.Metadata) > 0 {
		payload["data"] = richErr.Metadata
	}

	return payload
}
