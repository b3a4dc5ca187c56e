package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/Phairoj-Ja/student-score-web/internal/access"
	"github.com/Phairoj-Ja/student-score-web/internal/grading"
	"github.com/Phairoj-Ja/student-score-web/internal/models"
	"github.com/Phairoj-Ja/student-score-web/internal/store"
)

const defaultMaxTotal = 100

var validate = validator.New()

// storedFactors keeps a "no normalization" factor as an explicit 1.
func storedFactors(f models.Factors) models.Factors {
	return models.Factors{
		ClassFactor: grading.ResolveFactor(f.ClassFactor),
		LabFactor:   grading.ResolveFactor(f.LabFactor),
		HWFactor:    grading.ResolveFactor(f.HWFactor),
		QuizFactor:  grading.ResolveFactor(f.QuizFactor),
	}
}

func validationFailed(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return &InputError{Err: verrs}
	}
	return err
}

func (s *Service) ListCourses(ctx context.Context, sess *models.Session) ([]models.Course, error) {
	if err := access.RequireAdmin(sess); err != nil {
		return nil, err
	}
	return s.Store.ListCourses(ctx, "")
}

func (s *Service) GetCourse(ctx context.Context, sess *models.Session, code string) (*models.Course, error) {
	if err := access.RequireAdmin(sess); err != nil {
		return nil, err
	}
	return s.course(ctx, code)
}

func (s *Service) course(ctx context.Context, code string) (*models.Course, error) {
	course, err := s.Store.GetCourse(ctx, code)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, fmt.Errorf("course %s: %w", code, store.ErrRecordNotFound)
	}
	return course, nil
}

// AddCourse creates an active course. A zero max total becomes 100 and
// unset factors become 1.
func (s *Service) AddCourse(ctx context.Context, sess *models.Session, course models.Course) (*models.Course, error) {
	if err := access.RequireAdmin(sess); err != nil {
		return nil, err
	}

	course.Status = models.StatusActive
	if course.MaxTotal == 0 {
		course.MaxTotal = defaultMaxTotal
	}
	course.Factors = storedFactors(course.Factors)

	if err := course.Validate(); err != nil {
		return nil, validationFailed(err)
	}
	if err := s.Store.InsertCourse(ctx, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

type CourseEdit struct {
	Name   string        `validate:"required"`
	Status models.Status `validate:"oneof=active suspended"`
	models.MaxScores
	models.Factors
}

func (s *Service) EditCourse(ctx context.Context, sess *models.Session, code string, edit CourseEdit) error {
	if err := access.RequireAdmin(sess); err != nil {
		return err
	}
	if edit.Status == "" {
		edit.Status = models.StatusActive
	}
	if err := validate.Struct(&edit); err != nil {
		return validationFailed(err)
	}

	factors := storedFactors(edit.Factors)
	err := s.Store.UpdateCourseFields(ctx, code, models.CourseUpdate{
		Name:    &edit.Name,
		Status:  &edit.Status,
		Max:     &edit.MaxScores,
		Factors: &factors,
	})
	if err != nil {
		return fmt.Errorf("course %s: %w", code, err)
	}
	return nil
}

// ToggleCourse flips the course between active and suspended and returns
// the new status.
func (s *Service) ToggleCourse(ctx context.Context, sess *models.Session, code string) (models.Status, error) {
	if err := access.RequireAdmin(sess); err != nil {
		return "", err
	}

	course, err := s.course(ctx, code)
	if err != nil {
		return "", err
	}

	status := course.Status.Toggled()
	if err := s.Store.UpdateCourseFields(ctx, code, models.CourseUpdate{Status: &status}); err != nil {
		return "", fmt.Errorf("course %s: %w", code, err)
	}
	return status, nil
}

type RosterEntry struct {
	Record models.Record     `json:"record"`
	Scores grading.Breakdown `json:"scores"`
}

type Roster struct {
	Course   models.Course `json:"course"`
	Students []RosterEntry `json:"students"`
}

// CourseRoster computes every student's breakdown, ordered by user id. The
// admin row never shows up.
func (s *Service) CourseRoster(ctx context.Context, sess *models.Session, code string) (*Roster, error) {
	if err := access.RequireAdmin(sess); err != nil {
		return nil, err
	}

	course, err := s.course(ctx, code)
	if err != nil {
		return nil, err
	}
	records, err := s.Store.ListStudentRecords(ctx, code, models.AdminUserID)
	if err != nil {
		return nil, err
	}

	roster := &Roster{Course: *course, Students: make([]RosterEntry, 0, len(records))}
	for i := range records {
		roster.Students = append(roster.Students, RosterEntry{
			Record: records[i],
			Scores: s.Layout.Compute(&records[i], course),
		})
	}
	return roster, nil
}

type Chart struct {
	Course models.Course  `json:"course"`
	Series grading.Series `json:"series"`
}

func (s *Service) CourseChart(ctx context.Context, sess *models.Session, code string) (*Chart, error) {
	roster, err := s.CourseRoster(ctx, sess, code)
	if err != nil {
		return nil, err
	}

	breakdowns := make([]grading.Breakdown, 0, len(roster.Students))
	for _, st := range roster.Students {
		breakdowns = append(breakdowns, st.Scores)
	}
	return &Chart{Course: roster.Course, Series: grading.Summarize(breakdowns)}, nil
}
