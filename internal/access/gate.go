package access

import (
	"github.com/Phairoj-Ja/student-score-web/internal/models"
)

// RequireAdmin passes only an admin session.
func RequireAdmin(s *models.Session) error {
	if !s.IsAdmin() {
		return ErrNotAuthenticated
	}
	return nil
}

// RequireStudent passes only a student session.
func RequireStudent(s *models.Session) error {
	if !s.IsStudent() {
		return ErrNotAuthenticated
	}
	return nil
}

// RequireRecordAccess lets an admin read any record and a student only the
// one their session was established for.
func RequireRecordAccess(s *models.Session, course, userID string) error {
	if s.IsAdmin() {
		return nil
	}
	if s.IsStudent() && s.Course == course && s.UserID == userID {
		return nil
	}
	return ErrNotAuthenticated
}
