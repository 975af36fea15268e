package identity

import (
	"fmt"
	"unicode"
)

// Policy describes the complexity rules a new password must satisfy.
// The zero value accepts everything.
type Policy struct {
	MinLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool
}

// DefaultPolicy is applied by Workflow when no custom policy is set.
var DefaultPolicy = Policy{
	MinLength:    8,
	RequireUpper: true,
	RequireLower: true,
	RequireDigit: true,
}

// Validate checks s against the policy. When the password is rejected
// it returns every rule it broke, not just the first one.
func (p Policy) Validate(s string) (ok bool, reasons []string) {
	if p.MinLength > 0 && len([]rune(s)) < p.MinLength {
		reasons = append(reasons, fmt.Sprintf("password must be at least %d characters", p.MinLength))
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}

	if p.RequireUpper && !hasUpper {
		reasons = append(reasons, "password must contain an uppercase letter")
	}
	if p.RequireLower && !hasLower {
		reasons = append(reasons, "password must contain a lowercase letter")
	}
	if p.RequireDigit && !hasDigit {
		reasons = append(reasons, "password must contain a digit")
	}
	if p.RequireSymbol && !hasSymbol {
		reasons = append(reasons, "password must contain a symbol")
	}

	return len(reasons) == 0, reasons
}
