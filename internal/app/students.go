package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/Phairoj-Ja/student-score-web/internal/access"
	"github.com/Phairoj-Ja/student-score-web/internal/grading"
	"github.com/Phairoj-Ja/student-score-web/internal/models"
	"github.com/Phairoj-Ja/student-score-web/internal/store"
)

type StudentInput struct {
	UserID   string        `validate:"required,max=64"`
	FullName string        `validate:"required"`
	Status   models.Status `validate:"omitempty,oneof=active suspended"`
	Scores   models.Scores
}

// AddStudent inserts a record into an existing course. Missing slots are
// zero filled to the configured layout.
func (s *Service) AddStudent(ctx context.Context, sess *models.Session, course string, in StudentInput) (*models.Record, error) {
	if err := access.RequireAdmin(sess); err != nil {
		return nil, err
	}

	in.UserID = strings.TrimSpace(in.UserID)
	in.FullName = strings.TrimSpace(in.FullName)
	if err := validate.Struct(&in); err != nil {
		return nil, validationFailed(err)
	}
	if course == models.AdminCourse {
		return nil, invalid("students cannot be added to %s", models.AdminCourse)
	}
	if _, err := s.course(ctx, course); err != nil {
		return nil, err
	}

	record := s.Layout.BlankRecord(course, in.UserID, in.FullName)
	if in.Status != "" {
		record.Status = in.Status
	}
	scores := s.Layout.Shape(in.Scores)
	record.MidTerm = scores.MidTerm
	record.Final = scores.Final
	record.Project1 = scores.Project1
	record.Project2 = scores.Project2
	record.Class = scores.Class
	record.Lab = scores.Lab
	record.Homework = scores.Homework
	record.Quiz = scores.Quiz

	if err := s.Store.InsertStudentRecord(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) GetStudent(ctx context.Context, sess *models.Session, id int64) (*models.Record, error) {
	if err := access.RequireAdmin(sess); err != nil {
		return nil, err
	}
	return s.record(ctx, id)
}

func (s *Service) record(ctx context.Context, id int64) (*models.Record, error) {
	record, err := s.Store.GetStudentRecordByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("student %d: %w", id, store.ErrRecordNotFound)
	}
	return record, nil
}

type StudentEdit struct {
	FullName string        `validate:"required"`
	Status   models.Status `validate:"omitempty,oneof=active suspended"`
	// Scores is left untouched when nil.
	Scores *models.Scores
}

// EditStudent updates name, status and scores. The user id and course of a
// record never change, and the administrator record is not editable.
func (s *Service) EditStudent(ctx context.Context, sess *models.Session, id int64, edit StudentEdit) error {
	if err := access.RequireAdmin(sess); err != nil {
		return err
	}

	edit.FullName = strings.TrimSpace(edit.FullName)
	if err := validate.Struct(&edit); err != nil {
		return validationFailed(err)
	}

	record, err := s.record(ctx, id)
	if err != nil {
		return err
	}
	if record.IsAdmin() {
		return invalid("the administrator record cannot be edited")
	}

	upd := models.RecordUpdate{FullName: &edit.FullName}
	if edit.Status != "" {
		upd.Status = &edit.Status
	}
	if edit.Scores != nil {
		shaped := s.Layout.Shape(*edit.Scores)
		upd.Scores = &shaped
	}

	if err := s.Store.UpdateStudentRecord(ctx, id, upd); err != nil {
		return fmt.Errorf("student %d: %w", id, err)
	}
	return nil
}

func (s *Service) DeleteStudent(ctx context.Context, sess *models.Session, id int64) error {
	if err := access.RequireAdmin(sess); err != nil {
		return err
	}

	record, err := s.record(ctx, id)
	if err != nil {
		return err
	}
	if record.IsAdmin() {
		return invalid("the administrator record cannot be deleted")
	}

	if err := s.Store.DeleteStudentRecord(ctx, id); err != nil {
		return fmt.Errorf("student %d: %w", id, err)
	}
	return nil
}

// ResetStudentPassword drops the stored credential; the next login
// provisions a new one. The admin password only changes through
// ChangeAdminPassword.
func (s *Service) ResetStudentPassword(ctx context.Context, sess *models.Session, id int64) error {
	if err := access.RequireAdmin(sess); err != nil {
		return err
	}

	record, err := s.record(ctx, id)
	if err != nil {
		return err
	}
	if record.IsAdmin() {
		return invalid("the administrator password cannot be reset")
	}

	if err := s.Store.ClearCredential(ctx, id); err != nil {
		return fmt.Errorf("student %d: %w", id, err)
	}
	return nil
}

type PasswordChange struct {
	Old     string
	New     string
	Confirm string
}

func (s *Service) ChangeAdminPassword(ctx context.Context, sess *models.Session, change PasswordChange) error {
	if err := access.RequireAdmin(sess); err != nil {
		return err
	}

	admin, err := s.Store.GetStudentRecord(ctx, models.AdminCourse, models.AdminUserID)
	if err != nil {
		return err
	}
	if admin == nil {
		return fmt.Errorf("admin: %w", store.ErrRecordNotFound)
	}

	if err := s.Auth.Verify(admin, change.Old); err != nil {
		return err
	}
	if err := access.CheckNewPassword(change.New, change.Confirm); err != nil {
		return err
	}

	hash, err := s.Auth.Hash(change.New)
	if err != nil {
		return err
	}
	return s.Store.SetCredential(ctx, admin.ID, hash)
}

type Dashboard struct {
	Course models.Course     `json:"course"`
	Record models.Record     `json:"record"`
	Scores grading.Breakdown `json:"scores"`
}

// StudentDashboard shows a student their own record. A session whose record
// has since been deleted no longer authenticates.
func (s *Service) StudentDashboard(ctx context.Context, sess *models.Session) (*Dashboard, error) {
	if err := access.RequireStudent(sess); err != nil {
		return nil, err
	}

	record, err := s.Store.GetStudentRecord(ctx, sess.Course, sess.UserID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, access.ErrNotAuthenticated
	}
	if err := access.RequireRecordAccess(sess, record.Course, record.UserID); err != nil {
		return nil, err
	}

	course, err := s.course(ctx, sess.Course)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Course: *course,
		Record: *record,
		Scores: s.Layout.Compute(record, course),
	}, nil
}
