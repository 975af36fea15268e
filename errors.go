package identity

import (
	"github.com/goliatone/go-errors"
)

// ErrActivationNotFound is returned when an activation code does not match
// any pending account, including codes that were already consumed.
var ErrActivationNotFound = errors.New("activation code not found", errors.CategoryNotFound).
	WithTextCode("ACTIVATION_NOT_FOUND").
	WithCode(errors.CodeNotFound)

// ErrInvalidCredentials covers both unknown identifiers and wrong passwords.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIALS").
	WithCode(errors.CodeUnauthorized)

// ErrAccountNotUsable is returned when the credentials are valid but the
// account is not in a state that permits login.
var ErrAccountNotUsable = errors.New("account is not active", errors.CategoryAuthz).
	WithTextCode("ACCOUNT_NOT_USABLE").
	WithCode(errors.CodeForbidden)

// ErrResetCodeNotFound is returned when a recovery code does not match any
// outstanding ticket, including codes that were already redeemed or replaced.
var ErrResetCodeNotFound = errors.New("password recovery code not found", errors.CategoryNotFound).
	WithTextCode("RESET_NOT_FOUND").
	WithCode(errors.CodeNotFound)

// ErrTokenExpired is returned by TokenBuilder.Validate for tokens past
// their expiry.
var ErrTokenExpired = errors.New("token has expired", errors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED").
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed covers every parse or signature failure other than
// expiry.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED").
	WithCode(errors.CodeUnauthorized)

// ErrMismatchedHashAndPassword is the store-internal mismatch error.
var ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth).
	WithTextCode("PASSWORD_MISMATCH").
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects hashing an empty password.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode("EMPTY_PASSWORD")

const reasonsMetadataKey = "reasons"

// NewPasswordPolicyError builds the validation error carried back to the
// caller when a new password is rejected by the policy.
func NewPasswordPolicyError(reasons []string) *errors.Error {
	return errors.New("password rejected by policy", errors.CategoryValidation).
		WithTextCode("PASSWORD_POLICY").
		WithMetadata(map[string]any{
			reasonsMetadataKey: reasons,
		})
}

// ValidationReasons extracts the human readable policy failure messages from
// an error, if it carries any.
func ValidationReasons(err error) []string {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return nil
	}

	if richErr.Metadata == nil {
		return nil
	}

	raw, ok := richErr.Metadata[reasonsMetadataKey]
	if !ok {
		return nil
	}

	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, r := range v {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}

	return nil
}

// IsValidationError reports whether the error is a password policy rejection.
func IsValidationError(err error) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.Category == errors.CategoryValidation
}
