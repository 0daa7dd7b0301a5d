// Package tenant validates organization scope identifiers and carries them
// through context.Context.
//
// Every graph, radar and gap query is partitioned by org scope. A request
// without a valid scope fails closed with ErrMissingOrg or ErrInvalidOrg.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrMissingOrg is returned when no org scope was supplied.
	ErrMissingOrg = errors.New("org scope missing")

	// ErrInvalidOrg is returned when the org scope is malformed.
	ErrInvalidOrg = errors.New("invalid org scope")
)

// MaxOrgIDLength bounds org identifiers.
const MaxOrgIDLength = 128

var orgIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.:-]*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("orgid", func(fl validator.FieldLevel) bool {
		return orgIDPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validator returns the shared validator with the "orgid" tag registered, so
// request structs can use `validate:"orgid"`.
func Validator() *validator.Validate {
	return validate
}

// ValidateOrgID checks an org identifier. An empty id yields ErrMissingOrg;
// any other failure wraps ErrInvalidOrg.
func ValidateOrgID(orgID string) error {
	if orgID == "" {
		return ErrMissingOrg
	}
	if err := validate.Var(orgID, fmt.Sprintf("max=%d,orgid", MaxOrgIDLength)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidOrg, truncate(orgID, 32))
	}
	return nil
}

// IsInputError reports whether err is an org scope validation failure.
func IsInputError(err error) bool {
	return errors.Is(err, ErrMissingOrg) || errors.Is(err, ErrInvalidOrg)
}

type orgContextKey struct{}

// ContextWithOrg returns a copy of ctx carrying orgID.
func ContextWithOrg(ctx context.Context, orgID string) context.Context {
	return context.WithValue(ctx, orgContextKey{}, orgID)
}

// OrgFromContext returns the org scope stored in ctx, validated.
// Fails closed with ErrMissingOrg when absent.
func OrgFromContext(ctx context.Context) (string, error) {
	orgID, _ := ctx.Value(orgContextKey{}).(string)
	if err := ValidateOrgID(orgID); err != nil {
		return "", err
	}
	return orgID, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
