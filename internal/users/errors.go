package users

import (
	"errors"
	"fmt"

	pkgerrors "github.com/angelmondragon/usermanagement/pkg/errors"
)

var (
	// ErrRecordNotFound is returned by stores when no user matches the query.
	ErrRecordNotFound = errors.New("user record not found")
	// ErrEmailTaken is returned by stores when the unique email index rejects an insert.
	ErrEmailTaken = errors.New("user email already stored")
)

func ValidationError(v Violations) error {
	details := make(map[string]string, len(v))
	for field, msg := range v {
		details[field] = msg
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
}

func DuplicateEmailError(email string) error {
	return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("Email already exists: %s", email)).
		WithDetails(map[string]string{"email": email})
}

func NotFoundError(id string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("User not found with ID: %s", id))
}

func StoreUnavailableError(err error, op string) error {
	return pkgerrors.Wrap(pkgerrors.CodeInternal, fmt.Errorf("%s: %w", op, err), "user store unavailable")
}
