package identity_test

import (
	"context"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	identity "github.com/goliatone/go-identity"
	"github.com/google/uuid"
)

// fakeCredentialStore is an in-memory CredentialStore with the same
// find-and-invalidate semantics the SQL gateway implements.
type fakeCredentialStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*identity.User
}

func newFakeCredentialStore() *fakeCredentialStore {
	return &fakeCredentialStore{
		users: map[uuid.UUID]*identity.User{},
	}
}

func (s *fakeCredentialStore) seed(user *identity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.EnsureStatus()

	cp := *user
	s.users[user.ID] = &cp
}

func (s *fakeCredentialStore) VerifyCredentials(ctx context.Context, identifier, password string) (*identity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email != identifier {
			continue
		}
		if err := identity.ComparePasswordAndHash(password, u.PasswordHash); err != nil {
			return nil, identity.ErrInvalidCredentials
		}
		cp := *u
		return &cp, nil
	}

	return nil, identity.ErrInvalidCredentials
}

func (s *fakeCredentialStore) GetByEmail(ctx context.Context, email string) (*identity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}

	return nil, goerrors.New("record not found", goerrors.CategoryNotFound)
}

func (s *fakeCredentialStore) FindByActivationCode(ctx context.Context, code string) (*identity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Status != identity.UserStatusPending {
			continue
		}
		if u.ActivationCode != nil && *u.ActivationCode == code {
			cp := *u
			return &cp, nil
		}
	}

	return nil, goerrors.New("record not found", goerrors.CategoryNotFound)
}

func (s *fakeCredentialStore) ActivateByCode(ctx context.Context, code, password string) (*identity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Status != identity.UserStatusPending {
			continue
		}
		if u.ActivationCode == nil || *u.ActivationCode != code {
			continue
		}

		hash, err := identity.HashPassword(password)
		if err != nil {
			return nil, err
		}

		u.PasswordHash = hash
		u.Status = identity.UserStatusActive
		u.ActivationCode = nil

		cp := *u
		return &cp, nil
	}

	return nil, goerrors.New("record not found", goerrors.CategoryNotFound)
}

func (s *fakeCredentialStore) SetResetCode(ctx context.Context, userID uuid.UUID, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return goerrors.New("record not found", goerrors.CategoryNotFound)
	}

	u.RecoverCode = &code
	return nil
}

func (s *fakeCredentialStore) FindByResetCode(ctx context.Context, code string) (*identity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.RecoverCode != nil && *u.RecoverCode == code {
			cp := *u
			return &cp, nil
		}
	}

	return nil, goerrors.New("record not found", goerrors.CategoryNotFound)
}

func (s *fakeCredentialStore) ResetPasswordByCode(ctx context.Context, code, password string) (*identity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.RecoverCode == nil || *u.RecoverCode != code {
			continue
		}

		hash, err := identity.HashPassword(password)
		if err != nil {
			return nil, err
		}

		u.PasswordHash = hash
		u.RecoverCode = nil

		cp := *u
		return &cp, nil
	}

	return nil, goerrors.New("record not found", goerrors.CategoryNotFound)
}

// recordingMailer captures every message instead of delivering it.
type recordingMailer struct {
	mu   sync.Mutex
	sent []capturedMail
}

type capturedMail struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, capturedMail{
		To:       to,
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	})
	return nil
}

func (m *recordingMailer) last() capturedMail {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sent) == 0 {
		return capturedMail{}
	}
	return m.sent[len(m.sent)-1]
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sent)
}

// fakeRoleStore returns a fixed role set per user.
type fakeRoleStore struct {
	roles map[uuid.UUID][]*identity.Role
}

func (s *fakeRoleStore) FindRolesByUserID(ctx context.Context, userID uuid.UUID) ([]*identity.Role, error) {
	return s.roles[userID], nil
}

// fakeProfileStore returns a fixed person per id.
type fakeProfileStore struct {
	persons map[uuid.UUID]*identity.Person
}

func (s *fakeProfileStore) FindPersonByID(ctx context.Context, personID uuid.UUID) (*identity.Person, error) {
	p, ok := s.persons[personID]
	if !ok {
		return nil, goerrors.New("record not found", goerrors.CategoryNotFound)
	}
	return p, nil
}
