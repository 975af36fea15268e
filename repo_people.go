package identity

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultPhoneRegion is the region used when normalizing phone numbers that
// carry no country prefix.
var DefaultPhoneRegion = "US"

type Persons interface {
	repository.Repository[*Person]
	ProfileStore

	FindPersonByIDTx(ctx context.Context, tx bun.IDB, personID uuid.UUID) (*Person, error)
}

type persons struct {
	repository.Repository[*Person]
	db *bun.DB
}

var (
	_ Persons      = (*persons)(nil)
	_ ProfileStore = (*persons)(nil)
)

func NewPersonsRepository(db *bun.DB) Persons {
	repo := repository.NewRepository[*Person](db, repository.ModelHandlers[*Person]{
		NewRecord: func() *Person { return &Person{} },
		GetID: func(p *Person) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Person, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	return &persons{
		Repository: repo,
		db:         db,
	}
}

func (a *persons) FindPersonByID(ctx context.Context, personID uuid.UUID) (*Person, error) {
	return a.FindPersonByIDTx(ctx, a.db, personID)
}

func (a *persons) FindPersonByIDTx(ctx context.Context, tx bun.IDB, personID uuid.UUID) (*Person, error) {
	record := &Person{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", personID.String()).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id": personID.String(),
				})
		}
		return nil, err
	}

	record.NormalizePhone(DefaultPhoneRegion)

	return record, nil
}
