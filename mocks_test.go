package identity_test

import (
	"context"

	identity "github.com/goliatone/go-identity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCredentialStore implements identity.CredentialStore
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) VerifyCredentials(ctx context.Context, identifier, password string) (*identity.User, error) {
	args := m.Called(ctx, identifier, password)
	user, _ := args.Get(0).(*identity.User)
	return user, args.Error(1)
}

func (m *MockCredentialStore) GetByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*identity.User)
	return user, args.Error(1)
}

func (m *MockCredentialStore) FindByActivationCode(ctx context.Context, code string) (*identity.User, error) {
	args := m.Called(ctx, code)
	user, _ := args.Get(0).(*identity.User)
	return user, args.Error(1)
}

func (m *MockCredentialStore) ActivateByCode(ctx context.Context, code, password string) (*identity.User, error) {
	args := m.Called(ctx, code, password)
	user, _ := args.Get(0).(*identity.User)
	return user, args.Error(1)
}

func (m *MockCredentialStore) SetResetCode(ctx context.Context, userID uuid.UUID, code string) error {
	args := m.Called(ctx, userID, code)
	return args.Error(0)
}

func (m *MockCredentialStore) FindByResetCode(ctx context.Context, code string) (*identity.User, error) {
	args := m.Called(ctx, code)
	user, _ := args.Get(0).(*identity.User)
	return user, args.Error(1)
}

func (m *MockCredentialStore) ResetPasswordByCode(ctx context.Context, code, password string) (*identity.User, error) {
	args := m.Called(ctx, code, password)
	user, _ := args.Get(0).(*identity.User)
	return user, args.Error(1)
}

// MockRoleStore implements identity.RoleStore
type MockRoleStore struct {
	mock.Mock
}

func (m *MockRoleStore) FindRolesByUserID(ctx context.Context, userID uuid.UUID) ([]*identity.Role, error) {
	args := m.Called(ctx, userID)
	roles, _ := args.Get(0).([]*identity.Role)
	return roles, args.Error(1)
}

// MockProfileStore implements identity.ProfileStore
type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) FindPersonByID(ctx context.Context, personID uuid.UUID) (*identity.Person, error) {
	args := m.Called(ctx, personID)
	person, _ := args.Get(0).(*identity.Person)
	return person, args.Error(1)
}

// MockMailSender implements identity.MailSender
type MockMailSender struct {
	mock.Mock
}

func (m *MockMailSender) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	args := m.Called(ctx, to, subject, htmlBody, textBody)
	return args.Error(0)
}

// MockLogger implements identity.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// testConfig implements identity.Config with sensible values for tests.
type testConfig struct {
	signingKey      string
	tokenExpiration int
	issuer          string
	audience        []string
	mailSubject     string
	mailText        string
	mailHTML        string
}

func newTestConfig() *testConfig {
	return &testConfig{
		signingKey:      "test-signing-key",
		tokenExpiration: 24,
		issuer:          "test-issuer",
		audience:        []string{"test-audience"},
		mailSubject:     "Reset your password",
		mailText:        "Hello {{.Email}}, your code is {{.Code}}",
		mailHTML:        "<p>Hello {{.Email}}, your code is <b>{{.Code}}</b></p>",
	}
}

func (c *testConfig) GetSigningKey() string          { return c.signingKey }
func (c *testConfig) GetTokenExpiration() int        { return c.tokenExpiration }
func (c *testConfig) GetIssuer() string              { return c.issuer }
func (c *testConfig) GetAudience() []string          { return c.audience }
func (c *testConfig) GetRecoveryMailSubject() string { return c.mailSubject }
func (c *testConfig) GetRecoveryMailText() string    { return c.mailText }
func (c *testConfig) GetRecoveryMailHTML() string    { return c.mailHTML }
