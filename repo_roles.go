package identity

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Roles interface {
	repository.Repository[*Role]
	RoleStore

	FindRolesByUserIDTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) ([]*Role, error)
	Grant(ctx context.Context, userID uuid.UUID, name string) (*Role, error)
	GrantTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, name string) (*Role, error)
}

type roles struct {
	repository.Repository[*Role]
	db *bun.DB
}

var (
	_ Roles     = (*roles)(nil)
	_ RoleStore = (*roles)(nil)
)

func NewRolesRepository(db *bun.DB) Roles {
	repo := repository.NewRepository[*Role](db, repository.ModelHandlers[*Role]{
		NewRecord: func() *Role { return &Role{} },
		GetID: func(r *Role) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *Role, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
	})

	return &roles{
		Repository: repo,
		db:         db,
	}
}

// FindRolesByUserID returns every role granted to the user. A user with no
// roles gets an empty slice, not an error.
func (a *roles) FindRolesByUserID(ctx context.Context, userID uuid.UUID) ([]*Role, error) {
	return a.FindRolesByUserIDTx(ctx, a.db, userID)
}

func (a *roles) FindRolesByUserIDTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) ([]*Role, error) {
	records := []*Role{}
	err := tx.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", userID.String()).
		Order("name ASC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (a *roles) Grant(ctx context.Context, userID uuid.UUID, name string) (*Role, error) {
	return a.GrantTx(ctx, a.db, userID, name)
}

func (a *roles) GrantTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, name string) (*Role, error) {
	record := &Role{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
	}
	return a.Repository.CreateTx(ctx, tx, record)
}
