package identity

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// RegisterAccountMessage seeds a pending account with its profile row. The
// account gets an activation code and stays locked out of login until the
// code is redeemed.
type RegisterAccountMessage struct {
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	Roles     []string `json:"roles"`
	UseHashid bool
}

func (e RegisterAccountMessage) Type() string { return "identity.register" }

type RegisterAccountHandler struct {
	repo RepositoryManager
}

func NewRegisterAccountHandler(repo RepositoryManager) *RegisterAccountHandler {
	return &RegisterAccountHandler{repo: repo}
}

func (h *RegisterAccountHandler) Execute(ctx context.Context, event RegisterAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterAccountHandler) execute(ctx context.Context, event RegisterAccountMessage) error {
	if event.Email == "" {
		return goerrors.New("email is required", goerrors.CategoryValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		person := &Person{
			FirstName: event.FirstName,
			LastName:  event.LastName,
			Phone:     event.Phone,
		}
		person.NormalizePhone(DefaultPhoneRegion)

		person, err := h.repo.Persons().CreateTx(ctx, tx, person)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create person")
		}

		user := &User{
			Email:    event.Email,
			PersonID: person.ID,
		}
		if event.UseHashid {
			if id, err := hashid.NewUUID(event.Email); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		for _, name := range event.Roles {
			if name == "" {
				continue
			}
			if _, err := h.repo.Roles().GrantTx(ctx, tx, user.ID, name); err != nil {
				return goerrors.Wrap(err, goerrors.CategoryConflict, "could not grant role")
			}
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "account registration transaction failed")
	}

	return nil
}
