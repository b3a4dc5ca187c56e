// Package access decides who may log in and what a session may touch.
//
// A login attempt walks lookup, suspension check, then one of two credential
// branches. A record without a stored credential is provisioned by the very
// attempt that supplies a matching password pair; a record with one must
// verify against it. Only the provisioning branch writes to the store.
package access

import (
	"context"
	"fmt"
	"strings"

	"github.com/Phairoj-Ja/student-score-web/internal/models"
)

// CredentialStore is the part of the record store a login needs.
type CredentialStore interface {
	GetStudentRecord(ctx context.Context, course, userID string) (*models.Record, error)
	SetCredential(ctx context.Context, id int64, hash string) error
}

type Attempt struct {
	Course          string
	UserID          string
	Password        string
	PasswordConfirm string
}

type Result struct {
	Session models.Session
	// PasswordProvisioned is set when this attempt stored the first password.
	PasswordProvisioned bool
}

type Authenticator struct {
	store  CredentialStore
	hasher PasswordHasher
}

func NewAuthenticator(store CredentialStore, hasher PasswordHasher) *Authenticator {
	return &Authenticator{store: store, hasher: hasher}
}

func (a *Authenticator) Authenticate(ctx context.Context, attempt Attempt) (*Result, error) {
	userID := strings.TrimSpace(attempt.UserID)

	record, err := a.store.GetStudentRecord(ctx, attempt.Course, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s/%s: %w", attempt.Course, userID, err)
	}
	if record == nil {
		return nil, ErrUserNotFound
	}

	isAdmin := models.IsAdminIdentity(attempt.Course, userID)
	if !isAdmin && record.Suspended() {
		return nil, ErrAccountSuspended
	}

	provisioned := false
	if !record.HasCredential() {
		if err := a.provision(ctx, record, attempt.Password, attempt.PasswordConfirm); err != nil {
			return nil, err
		}
		provisioned = true
	} else {
		if err := a.verify(record, attempt.Password); err != nil {
			return nil, err
		}
	}

	return &Result{
		Session: models.Session{
			Role:     models.RoleFor(attempt.Course, userID),
			Course:   attempt.Course,
			UserID:   userID,
			FullName: record.FullName,
		},
		PasswordProvisioned: provisioned,
	}, nil
}

func (a *Authenticator) provision(ctx context.Context, record *models.Record, password, confirm string) error {
	if err := CheckNewPassword(password, confirm); err != nil {
		return err
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		return err
	}
	if err := a.store.SetCredential(ctx, record.ID, hash); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

func (a *Authenticator) verify(record *models.Record, password string) error {
	if password == "" {
		return ErrInvalidCredentials
	}
	ok, err := a.hasher.Verify(*record.Password, password)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	if !ok {
		return ErrInvalidCredentials
	}
	return nil
}

// Verify checks a password against a record's stored credential. A record
// without one accepts anything.
func (a *Authenticator) Verify(record *models.Record, password string) error {
	if !record.HasCredential() {
		return nil
	}
	return a.verify(record, password)
}

// Hash exposes the configured hasher for password changes outside login.
func (a *Authenticator) Hash(password string) (string, error) {
	return a.hasher.Hash(password)
}

// CheckNewPassword requires both fields and that they match.
func CheckNewPassword(password, confirm string) error {
	if password == "" || confirm == "" {
		return &PasswordSetupError{Reason: SetupMissing}
	}
	if password != confirm {
		return &PasswordSetupError{Reason: SetupMismatch}
	}
	return nil
}
