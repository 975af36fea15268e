package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"github.com/uptrace/bun"
)

// UserStatus is the activation state of an account.
type UserStatus string

const (
	// UserStatusPending means the account was registered but never activated.
	UserStatusPending UserStatus = "pending"
	// UserStatusActive means the account can authenticate.
	UserStatusActive UserStatus = "active"
	// UserStatusLocked means the account is blocked from authenticating.
	UserStatusLocked UserStatus = "locked"
)

// User is the credential record. The email doubles as the login identifier.
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email          string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PersonID       uuid.UUID  `bun:"person_id,nullzero,type:uuid" json:"person_id,omitempty"`
	PasswordHash   string     `bun:"password_hash" json:"-"`
	Status         UserStatus `bun:"status,notnull" json:"status,omitempty"`
	ActivationCode *string    `bun:"activation_code,nullzero" json:"-"`
	RecoverCode    *string    `bun:"recover_code,nullzero" json:"-"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureStatus backfills the zero value with pending, the state accounts are
// born in.
func (u *User) EnsureStatus() {
	if u != nil && u.Status == "" {
		u.Status = UserStatusPending
	}
}

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool {
	return u != nil && u.Status == UserStatusActive
}

// Person holds the profile attributes referenced by User.PersonID.
// Read-only from this package's perspective.
type Person struct {
	bun.BaseModel `bun:"table:persons,alias:psn"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	FirstName     string     `bun:"first_name" json:"first_name,omitempty"`
	LastName      string     `bun:"last_name" json:"last_name,omitempty"`
	Phone         string     `bun:"phone_number" json:"phone_number,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// FullName joins the name parts, skipping blanks.
func (p *Person) FullName() string {
	if p == nil {
		return ""
	}
	parts := make([]string, 0, 2)
	if p.FirstName != "" {
		parts = append(parts, p.FirstName)
	}
	if p.LastName != "" {
		parts = append(parts, p.LastName)
	}
	return strings.Join(parts, " ")
}

// NormalizePhone rewrites the phone number in E.164 form when it parses.
// Unparseable numbers are left as stored.
func (p *Person) NormalizePhone(defaultRegion string) {
	if p == nil || p.Phone == "" {
		return
	}
	num, err := phonenumbers.Parse(p.Phone, defaultRegion)
	if err != nil {
		return
	}
	p.Phone = phonenumbers.Format(num, phonenumbers.E164)
}

// Role is one authorization role assigned to a user. Each role contributes
// its name as one claim on the full token.
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:rol"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// FlattenRoleClaims collapses the user's roles into the single claim list
// carried by the full token.
func FlattenRoleClaims(roles []*Role) []string {
	if len(roles) == 0 {
		return nil
	}
	claims := make([]string, 0, len(roles))
	for _, role := range roles {
		if role == nil || role.Name == "" {
			continue
		}
		claims = append(claims, role.Name)
	}
	if len(claims) == 0 {
		return nil
	}
	return claims
}
