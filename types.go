package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// CredentialStore abstracts lookup and mutation of user credentials,
// activation codes, and password recovery codes. One-time codes are consumed
// with find-and-invalidate semantics: a code that was redeemed once never
// matches again, even under concurrent redemptions.
type CredentialStore interface {
	// VerifyCredentials authenticates an identifier/password pair and returns
	// the matching user. Unknown identifiers and wrong passwords produce the
	// same error so callers cannot tell them apart.
	VerifyCredentials(ctx context.Context, identifier, password string) (*User, error)

	GetByEmail(ctx context.Context, email string) (*User, error)

	// FindByActivationCode returns the pending user holding the activation
	// code without consuming it.
	FindByActivationCode(ctx context.Context, code string) (*User, error)

	// ActivateByCode consumes a pending activation code, hashing and storing
	// the supplied password and marking the account active in one atomic
	// step. The code is permanently invalid afterwards.
	ActivateByCode(ctx context.Context, code, password string) (*User, error)

	// SetResetCode binds a recovery code to the user, replacing any
	// outstanding code.
	SetResetCode(ctx context.Context, userID uuid.UUID, code string) error

	// FindByResetCode returns the user holding the outstanding recovery code
	// without consuming it.
	FindByResetCode(ctx context.Context, code string) (*User, error)

	// ResetPasswordByCode redeems an outstanding recovery code and sets the
	// new password. A password rejected by the policy leaves the code
	// outstanding and the old password in place; a successful redemption
	// consumes the code atomically.
	ResetPasswordByCode(ctx context.Context, code, password string) (*User, error)
}

// RoleStore retrieves the authorization roles assigned to a user.
type RoleStore interface {
	FindRolesByUserID(ctx context.Context, userID uuid.UUID) ([]*Role, error)
}

// ProfileStore retrieves the profile attributes referenced by User.PersonID.
type ProfileStore interface {
	FindPersonByID(ctx context.Context, personID uuid.UUID) (*Person, error)
}

// MailSender dispatches a rendered message to a single recipient.
type MailSender interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// Config holds the static configuration the workflow consumes at
// construction. All values are required; NewWorkflow fails fast on any
// missing one.
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
	GetRecoveryMailSubject() string
	GetRecoveryMailText() string
	GetRecoveryMailHTML() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] IDENTITY "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] IDENTITY "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] IDENTITY "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] IDENTITY "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
