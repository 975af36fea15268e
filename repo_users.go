package identity

import (
	"context"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ActivateUserSQL consumes a pending activation code in a single statement.
// A code that was already redeemed matches zero rows.
var ActivateUserSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?,
	"status" = 'active',
	"activation_code" = NULL,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"usr"."deleted_at" IS NULL
AND "usr"."status" = 'pending'
AND (
	"usr"."activation_code" = ?
) RETURNING *;`

// ResetUserPasswordSQL redeems an outstanding recovery code in a single
// statement. A code that was already redeemed or replaced matches zero rows.
var ResetUserPasswordSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?,
	"recover_code" = NULL,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."recover_code" = ?
) RETURNING *;`

// SetRecoverCodeSQL binds a recovery code to the user, replacing any
// outstanding one.
var SetRecoverCodeSQL = `UPDATE "users" AS "usr"
SET
	"recover_code" = ?,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

type Users interface {
	repository.Repository[*User]
	CredentialStore

	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	FindByActivationCodeTx(ctx context.Context, tx bun.IDB, code string) (*User, error)
	ActivateByCodeTx(ctx context.Context, tx bun.IDB, code, password string) (*User, error)
	FindByResetCodeTx(ctx context.Context, tx bun.IDB, code string) (*User, error)
	SetResetCodeTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, code string) error
	ResetPasswordByCodeTx(ctx context.Context, tx bun.IDB, code, password string) (*User, error)

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users           = (*users)(nil)
	_ CredentialStore = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

// VerifyCredentials runs the lookup and the hash comparison, collapsing
// every failure to ErrInvalidCredentials so callers cannot distinguish an
// unknown identifier from a wrong password.
func (a *users) VerifyCredentials(ctx context.Context, identifier, password string) (*User, error) {
	user, err := a.GetByEmail(ctx, identifier)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", strings.TrimSpace(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) FindByActivationCode(ctx context.Context, code string) (*User, error) {
	return a.FindByActivationCodeTx(ctx, a.db, code)
}

func (a *users) FindByActivationCodeTx(ctx context.Context, tx bun.IDB, code string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.activation_code = ?", code).
		Where("?TableAlias.status = ?", string(UserStatusPending)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"activation_code": code,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) ActivateByCode(ctx context.Context, code, password string) (*User, error) {
	return a.ActivateByCodeTx(ctx, a.db, code, password)
}

func (a *users) ActivateByCodeTx(ctx context.Context, tx bun.IDB, code, password string) (*User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	res, err := a.Repository.RawTx(ctx, tx, ActivateUserSQL, hash, code)
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"activation_code": code,
			})
	}

	return res[0], nil
}

func (a *users) SetResetCode(ctx context.Context, userID uuid.UUID, code string) error {
	return a.SetResetCodeTx(ctx, a.db, userID, code)
}

func (a *users) SetResetCodeTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, code string) error {
	res, err := a.Repository.RawTx(ctx, tx, SetRecoverCodeSQL, code, userID.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": userID.String(),
			})
	}

	return nil
}

func (a *users) FindByResetCode(ctx context.Context, code string) (*User, error) {
	return a.FindByResetCodeTx(ctx, a.db, code)
}

func (a *users) FindByResetCodeTx(ctx context.Context, tx bun.IDB, code string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.recover_code = ?", code).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"recover_code": code,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) ResetPasswordByCode(ctx context.Context, code, password string) (*User, error) {
	return a.ResetPasswordByCodeTx(ctx, a.db, code, password)
}

func (a *users) ResetPasswordByCodeTx(ctx context.Context, tx bun.IDB, code, password string) (*User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	res, err := a.Repository.RawTx(ctx, tx, ResetUserPasswordSQL, hash, code)
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"recover_code": code,
			})
	}

	return res[0], nil
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)
	return a.Repository.CreateTx(ctx, tx, user)
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	record.EnsureStatus()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.Status == UserStatusPending && record.ActivationCode == nil {
		code := uuid.NewString()
		record.ActivationCode = &code
	}
}
