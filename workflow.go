package identity

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenResult is the outcome of a successful credential exchange. Both
// tokens share the same issuance instant and expiry.
type TokenResult struct {
	Token            string    `json:"token"`
	LightweightToken string    `json:"lightweight_token"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// Workflow drives the credential lifecycle: account activation, login token
// issuance, and password recovery.
type Workflow struct {
	credentials  CredentialStore
	roles        RoleStore
	people       ProfileStore
	mailer       MailSender
	tokenBuilder *TokenBuilder
	recoveryMail *recoveryTemplates
	policy       Policy
	logger       Logger
	activitySink ActivitySink
}

// NewWorkflow wires the workflow dependencies and validates configuration.
// Every gateway and every config value is required; a misconfigured workflow
// is rejected here rather than at first use.
func NewWorkflow(credentials CredentialStore, roles RoleStore, people ProfileStore, mailer MailSender, cfg Config) (*Workflow, error) {
	if credentials == nil {
		return nil, errors.New("credential store is required", errors.CategoryBadInput)
	}
	if roles == nil {
		return nil, errors.New("role store is required", errors.CategoryBadInput)
	}
	if people == nil {
		return nil, errors.New("profile store is required", errors.CategoryBadInput)
	}
	if mailer == nil {
		return nil, errors.New("mail sender is required", errors.CategoryBadInput)
	}
	if cfg == nil {
		return nil, errors.New("config is required", errors.CategoryBadInput)
	}

	if cfg.GetSigningKey() == "" {
		return nil, errors.New("signing key is required", errors.CategoryBadInput)
	}
	if cfg.GetTokenExpiration() <= 0 {
		return nil, errors.New("token expiration must be positive", errors.CategoryBadInput)
	}
	if cfg.GetIssuer() == "" {
		return nil, errors.New("issuer is required", errors.CategoryBadInput)
	}
	if len(cfg.GetAudience()) == 0 {
		return nil, errors.New("audience is required", errors.CategoryBadInput)
	}
	if cfg.GetRecoveryMailSubject() == "" {
		return nil, errors.New("recovery mail subject is required", errors.CategoryBadInput)
	}
	if cfg.GetRecoveryMailText() == "" {
		return nil, errors.New("recovery mail text template is required", errors.CategoryBadInput)
	}
	if cfg.GetRecoveryMailHTML() == "" {
		return nil, errors.New("recovery mail HTML template is required", errors.CategoryBadInput)
	}

	recoveryMail, err := parseRecoveryTemplates(
		cfg.GetRecoveryMailSubject(),
		cfg.GetRecoveryMailText(),
		cfg.GetRecoveryMailHTML(),
	)
	if err != nil {
		return nil, err
	}

	tokenBuilder := NewTokenBuilder(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenExpiration(),
		cfg.GetIssuer(),
		jwt.ClaimStrings(cfg.GetAudience()),
		defLogger{},
	)

	return &Workflow{
		credentials:  credentials,
		roles:        roles,
		people:       people,
		mailer:       mailer,
		tokenBuilder: tokenBuilder,
		recoveryMail: recoveryMail,
		policy:       DefaultPolicy,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}, nil
}

func (w *Workflow) WithLogger(logger Logger) *Workflow {
	if logger != nil {
		w.logger = logger
		w.tokenBuilder.logger = logger
	}
	return w
}

// WithActivitySink configures an ActivitySink for emitting lifecycle events.
func (w *Workflow) WithActivitySink(sink ActivitySink) *Workflow {
	w.activitySink = normalizeActivitySink(sink)
	return w
}

// WithPolicy overrides the password policy applied to new passwords.
func (w *Workflow) WithPolicy(policy Policy) *Workflow {
	w.policy = policy
	return w
}

// TokenBuilder returns the builder used for minting and validating tokens.
func (w *Workflow) TokenBuilder() *TokenBuilder {
	return w.tokenBuilder
}

// Activate redeems a one-time activation code, setting the account password
// and marking it active. The code never matches again afterwards, so a
// replay returns ErrActivationNotFound even with the same arguments.
func (w *Workflow) Activate(ctx context.Context, code, password string) (*User, error) {
	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), errors.CategoryOperation, "activation canceled")
	default:
	}

	if _, err := w.credentials.FindByActivationCode(ctx, code); err != nil {
		if errors.IsNotFound(err) {
			err = ErrActivationNotFound
		}
		w.logger.Warn("Activate lookup failed: %v", err)
		w.emitEvent(ctx, ActivityEventActivationFailure, "", "", map[string]any{
			"error": err.Error(),
		})
		return nil, err
	}

	// The lookup does not consume the code, so a rejected password leaves it
	// usable for a retry.
	if ok, reasons := w.policy.Validate(password); !ok {
		err := NewPasswordPolicyError(reasons)
		w.emitEvent(ctx, ActivityEventActivationFailure, "", "", map[string]any{
			"error": err.Error(),
		})
		return nil, err
	}

	user, err := w.credentials.ActivateByCode(ctx, code, password)
	if err != nil {
		if errors.IsNotFound(err) {
			err = ErrActivationNotFound
		}
		w.logger.Warn("Activate failed: %v", err)
		w.emitEvent(ctx, ActivityEventActivationFailure, "", "", map[string]any{
			"error": err.Error(),
		})
		return nil, err
	}

	w.emitEvent(ctx, ActivityEventActivationSuccess, user.ID.String(), "", nil)

	return user, nil
}

// CreateToken authenticates the identifier/password pair and mints a full
// session token plus a lightweight companion carrying no role claims. Both
// tokens expire at the same instant.
func (w *Workflow) CreateToken(ctx context.Context, identifier, password string) (*TokenResult, error) {
	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), errors.CategoryOperation, "token creation canceled")
	default:
	}

	user, err := w.credentials.VerifyCredentials(ctx, identifier, password)
	if err != nil {
		w.logger.Warn("CreateToken verify credentials failed for %s", identifier)
		w.emitEvent(ctx, ActivityEventLoginFailure, "", identifier, map[string]any{
			"error": err.Error(),
		})
		return nil, err
	}

	user.EnsureStatus()
	if !user.IsActive() {
		w.logger.Warn("CreateToken blocked, account status %s", user.Status)
		w.emitEvent(ctx, ActivityEventLoginFailure, user.ID.String(), identifier, map[string]any{
			"status": string(user.Status),
			"error":  ErrAccountNotUsable.Error(),
		})
		return nil, ErrAccountNotUsable
	}

	roles, err := w.roles.FindRolesByUserID(ctx, user.ID)
	if err != nil {
		w.logger.Error("CreateToken failed to fetch roles: %v", err)
		w.emitEvent(ctx, ActivityEventLoginFailure, user.ID.String(), identifier, map[string]any{
			"error": err.Error(),
		})
		return nil, err
	}

	person, err := w.people.FindPersonByID(ctx, user.PersonID)
	if err != nil {
		if !errors.IsNotFound(err) {
			w.logger.Error("CreateToken failed to fetch profile: %v", err)
			w.emitEvent(ctx, ActivityEventLoginFailure, user.ID.String(), identifier, map[string]any{
				"error": err.Error(),
			})
			return nil, err
		}
		// A user without a profile row still gets a token, just without
		// a display name.
		person = nil
	}

	opts := MintOptions{IssuedAt: time.Now()}

	token, expiresAt, err := w.tokenBuilder.Mint(user, person, FlattenRoleClaims(roles), opts)
	if err != nil {
		w.emitEvent(ctx, ActivityEventLoginFailure, user.ID.String(), identifier, map[string]any{
			"error": err.Error(),
		})
		return nil, err
	}

	lightweight, _, err := w.tokenBuilder.Mint(user, nil, nil, opts)
	if err != nil {
		w.emitEvent(ctx, ActivityEventLoginFailure, user.ID.String(), identifier, map[string]any{
			"error": err.Error(),
		})
		return nil, err
	}

	w.emitEvent(ctx, ActivityEventLoginSuccess, user.ID.String(), identifier, nil)

	return &TokenResult{
		Token:            token,
		LightweightToken: lightweight,
		ExpiresAt:        expiresAt,
	}, nil
}

// RequestPasswordReset binds a fresh recovery code to the account and mails
// it to the address on file. An unknown email succeeds without side effects
// so the endpoint does not reveal which addresses exist.
func (w *Workflow) RequestPasswordReset(ctx context.Context, email string) error {
	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), errors.CategoryOperation, "password reset request canceled")
	default:
	}

	user, err := w.credentials.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			w.logger.Debug("RequestPasswordReset no account for %s", email)
			return nil
		}
		w.logger.Error("RequestPasswordReset lookup failed: %v", err)
		return err
	}

	code := uuid.NewString()
	if err := w.credentials.SetResetCode(ctx, user.ID, code); err != nil {
		w.logger.Error("RequestPasswordReset failed to store code: %v", err)
		return err
	}

	textBody, htmlBody, err := w.recoveryMail.Render(RecoveryMailVars{
		Email: user.Email,
		Code:  code,
	})
	if err != nil {
		return err
	}

	if err := w.mailer.Send(ctx, user.Email, w.recoveryMail.subject, htmlBody, textBody); err != nil {
		w.logger.Error("RequestPasswordReset failed to send mail: %v", err)
		return err
	}

	w.emitEvent(ctx, ActivityEventRecoverRequested, user.ID.String(), user.Email, nil)

	return nil
}

// CompletePasswordReset redeems an outstanding recovery code and sets the
// new password. A password the policy rejects leaves the code outstanding,
// so the caller can retry with a stronger one. A redeemed code never matches
// again.
func (w *Workflow) CompletePasswordReset(ctx context.Context, code, password string) (*User, error) {
	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), errors.CategoryOperation, "password reset canceled")
	default:
	}

	if _, err := w.credentials.FindByResetCode(ctx, code); err != nil {
		if errors.IsNotFound(err) {
			err = ErrResetCodeNotFound
		}
		w.logger.Warn("CompletePasswordReset lookup failed: %v", err)
		w.emitEvent(ctx, ActivityEventResetFailure, "", "", map[string]any{
			"error": err.Error(),
		})
		return nil, err
	}

	// The lookup does not consume the code, so a rejected password leaves it
	// outstanding for a retry.
	if ok, reasons := w.policy.Validate(password); !ok {
		err := NewPasswordPolicyError(reasons)
		w.emitEvent(ctx, ActivityEventResetFailure, "", "", map[string]any{
			"error": err.Error(),
		})
		return nil, err
	}

	user, err := w.credentials.ResetPasswordByCode(ctx, code, password)
	if err != nil {
		if errors.IsNotFound(err) {
			err = ErrResetCodeNotFound
		}
		w.logger.Warn("CompletePasswordReset failed: %v", err)
		w.emitEvent(ctx, ActivityEventResetFailure, "", "", map[string]any{
			"error": err.Error(),
		})
		return nil, err
	}

	w.emitEvent(ctx, ActivityEventResetSuccess, user.ID.String(), "", nil)

	return user, nil
}

func (w *Workflow) emitEvent(ctx context.Context, eventType ActivityEventType, userID, identifier string, metadata map[string]any) {
	event := ActivityEvent{
		EventType:  eventType,
		UserID:     userID,
		Identifier: identifier,
		Metadata:   metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := w.activitySink.Record(ctx, event); err != nil {
		w.logger.Warn("activity sink record error: %v", err)
	}
}
