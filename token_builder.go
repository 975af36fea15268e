package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenBuilder mints and validates the HS256 session tokens issued after a
// successful login.
type TokenBuilder struct {
	signingKey      []byte
	tokenExpiration int
	issuer          string
	audience        jwt.ClaimStrings
	logger          Logger
}

// MintOptions controls how Mint issues a token.
type MintOptions struct {
	// IssuedAt overrides the issuance time. Zero uses time.Now().
	IssuedAt time.Time
}

// NewTokenBuilder creates a new TokenBuilder instance
func NewTokenBuilder(signingKey []byte, tokenExpiration int, issuer string, audience jwt.ClaimStrings, logger Logger) *TokenBuilder {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenBuilder{
		signingKey:      signingKey,
		tokenExpiration: tokenExpiration,
		issuer:          issuer,
		audience:        audience,
		logger:          logger,
	}
}

// Mint creates a signed JWT for the user. The person carries the display
// name; a nil person mints a token without one. The claims slice carries the
// role names granted to the subject.
func (tb *TokenBuilder) Mint(user *User, person *Person, claims []string, opts MintOptions) (string, time.Time, error) {
	if user == nil {
		return "", time.Time{}, errors.New("user is required", errors.CategoryBadInput)
	}

	issuedAt := opts.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}

	expiresAt := issuedAt.Add(time.Duration(tb.tokenExpiration) * time.Hour)

	var name string
	if person != nil {
		name = person.FullName()
	}

	tokenClaims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tb.issuer,
			Subject:   user.ID.String(),
			Audience:  tb.audience,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UID:    user.ID.String(),
		Name:   name,
		Claims: claims,
	}

	ensureTokenID(&tokenClaims.RegisteredClaims)

	token, err := tb.SignClaims(tokenClaims)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}

// SignClaims signs arbitrary claims using the configured signing key.
func (tb *TokenBuilder) SignClaims(claims *TokenClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(tb.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and validates a token string, returning structured claims
func (tb *TokenBuilder) Validate(tokenString string) (*TokenClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if tb.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(tb.issuer))
	}
	if len(tb.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(tb.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			tb.logger.Error("TokenBuilder validate encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return tb.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).WithTextCode(ErrTokenMalformed.TextCode)
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}

	tb.logger.Error("TokenBuilder validate could not decode or validate claims")
	return nil, ErrTokenMalformed
}

func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}
