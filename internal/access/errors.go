package access

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound          = errors.New("user not found for this course")
	ErrAccountSuspended      = errors.New("account is suspended for this course")
	ErrPasswordSetupRequired = errors.New("password setup required")
	ErrInvalidCredentials    = errors.New("invalid password")
	ErrNotAuthenticated      = errors.New("not authenticated")
)

type SetupReason string

const (
	// SetupMissing: one of the two password fields was empty.
	SetupMissing SetupReason = "missing"
	// SetupMismatch: both fields given but they differ.
	SetupMismatch SetupReason = "mismatch"
)

// PasswordSetupError is returned on a first login that cannot provision the
// password. It matches ErrPasswordSetupRequired with errors.Is.
type PasswordSetupError struct {
	Reason SetupReason
}

func (e *PasswordSetupError) Error() string {
	return fmt.Sprintf("%s: %s", ErrPasswordSetupRequired, e.Reason)
}

func (e *PasswordSetupError) Is(target error) bool {
	return target == ErrPasswordSetupRequired
}

// SetupReasonOf extracts the reason, empty if err is not a setup error.
func SetupReasonOf(err error) SetupReason {
	var setupErr *PasswordSetupError
	if errors.As(err, &setupErr) {
		return setupErr.Reason
	}
	return ""
}
