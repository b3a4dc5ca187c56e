package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/Phairoj-Ja/student-score-web/internal/models"
)

type RecordStore interface {
	Close() error
	ApplyMigrations(dir string) error
	EnsureAdmin(ctx context.Context) error

	GetCourse(ctx context.Context, code string) (*models.Course, error)
	// ListCourses returns every course when status is empty.
	ListCourses(ctx context.Context, status models.Status) ([]models.Course, error)
	InsertCourse(ctx context.Context, course *models.Course) error
	UpsertCourse(ctx context.Context, course *models.Course) error
	UpdateCourseFields(ctx context.Context, code string, upd models.CourseUpdate) error

	GetStudentRecord(ctx context.Context, course, userID string) (*models.Record, error)
	GetStudentRecordByID(ctx context.Context, id int64) (*models.Record, error)
	// ListStudentRecords skips excludeUserID when it is not empty.
	ListStudentRecords(ctx context.Context, course, excludeUserID string) ([]models.Record, error)
	InsertStudentRecord(ctx context.Context, record *models.Record) error
	UpdateStudentRecord(ctx context.Context, id int64, upd models.RecordUpdate) error
	DeleteStudentRecord(ctx context.Context, id int64) error

	SetCredential(ctx context.Context, id int64, hash string) error
	ClearCredential(ctx context.Context, id int64) error
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
	// IsUniqueViolation recognises the driver's unique constraint error.
	IsUniqueViolation func(error) bool
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

func (s *BaseStore) duplicate(err error) bool {
	return err != nil && s.IsUniqueViolation != nil && s.IsUniqueViolation(err)
}

func affectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// EnsureAdmin seeds the administrator row when it does not exist yet.
func (s *BaseStore) EnsureAdmin(ctx context.Context) error {
	_, err := s.DB.NamedExecContext(ctx, `
		INSERT INTO scores (course, user_id, fullname, status)
		VALUES (:course, :user_id, :fullname, :status)
		ON CONFLICT (course, user_id) DO NOTHING
	`, map[string]interface{}{
		"course":   models.AdminCourse,
		"user_id":  models.AdminUserID,
		"fullname": models.AdminFullName,
		"status":   models.StatusActive,
	})
	if err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	return nil
}

func (s *BaseStore) GetCourse(ctx context.Context, code string) (*models.Course, error) {
	var course models.Course
	query := s.Converter(`SELECT ` + courseColumns + ` FROM courses WHERE course = ?`)

	err := s.DB.GetContext(ctx, &course, query, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return &course, nil
}

func (s *BaseStore) ListCourses(ctx context.Context, status models.Status) ([]models.Course, error) {
	courses := []models.Course{}
	var err error
	if status == "" {
		err = s.DB.SelectContext(ctx, &courses, `SELECT `+courseColumns+` FROM courses ORDER BY course`)
	} else {
		query := s.Converter(`SELECT ` + courseColumns + ` FROM courses WHERE status = ? ORDER BY course`)
		err = s.DB.SelectContext(ctx, &courses, query, status)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

const insertCourse = `
	INSERT INTO courses (
		course, name, status,
		max_total, max_mid, max_final, max_class, max_lab, max_hw, max_quiz, max_p1, max_p2,
		class_factor, lab_factor, hw_factor, quiz_factor
	) VALUES (
		:course, :name, :status,
		:max_total, :max_mid, :max_final, :max_class, :max_lab, :max_hw, :max_quiz, :max_p1, :max_p2,
		:class_factor, :lab_factor, :hw_factor, :quiz_factor
	)`

func (s *BaseStore) InsertCourse(ctx context.Context, course *models.Course) error {
	_, err := s.DB.NamedExecContext(ctx, insertCourse, course)
	if s.duplicate(err) {
		return ErrDuplicateKey
	}
	if err != nil {
		return fmt.Errorf("failed to insert course: %w", err)
	}
	return nil
}

func (s *BaseStore) UpsertCourse(ctx context.Context, course *models.Course) error {
	_, err := s.DB.NamedExecContext(ctx, insertCourse+`
		ON CONFLICT (course) DO UPDATE SET
		name = :name,
		status = :status,
		max_total = :max_total,
		max_mid = :max_mid,
		max_final = :max_final,
		max_class = :max_class,
		max_lab = :max_lab,
		max_hw = :max_hw,
		max_quiz = :max_quiz,
		max_p1 = :max_p1,
		max_p2 = :max_p2,
		class_factor = :class_factor,
		lab_factor = :lab_factor,
		hw_factor = :hw_factor,
		quiz_factor = :quiz_factor
	`, course)
	if err != nil {
		return fmt.Errorf("failed to upsert course: %w", err)
	}
	return nil
}

// setClause collects "col = :col" pairs for a partial update.
type setClause struct {
	cols []string
	args map[string]interface{}
}

func newSetClause() *setClause {
	return &setClause{args: map[string]interface{}{}}
}

func (c *setClause) set(col string, v interface{}) {
	c.cols = append(c.cols, fmt.Sprintf("%s = :%s", col, col))
	c.args[col] = v
}

func (c *setClause) empty() bool {
	return len(c.cols) == 0
}

func (c *setClause) String() string {
	return strings.Join(c.cols, ", ")
}

func (s *BaseStore) UpdateCourseFields(ctx context.Context, code string, upd models.CourseUpdate) error {
	set := newSetClause()
	if upd.Name != nil {
		set.set("name", *upd.Name)
	}
	if upd.Status != nil {
		set.set("status", *upd.Status)
	}
	if m := upd.Max; m != nil {
		set.set("max_total", m.MaxTotal)
		set.set("max_mid", m.MaxMid)
		set.set("max_final", m.MaxFinal)
		set.set("max_class", m.MaxClass)
		set.set("max_lab", m.MaxLab)
		set.set("max_hw", m.MaxHW)
		set.set("max_quiz", m.MaxQuiz)
		set.set("max_p1", m.MaxP1)
		set.set("max_p2", m.MaxP2)
	}
	if f := upd.Factors; f != nil {
		set.set("class_factor", f.ClassFactor)
		set.set("lab_factor", f.LabFactor)
		set.set("hw_factor", f.HWFactor)
		set.set("quiz_factor", f.QuizFactor)
	}

	if set.empty() {
		course, err := s.GetCourse(ctx, code)
		if err != nil {
			return err
		}
		if course == nil {
			return ErrRecordNotFound
		}
		return nil
	}

	set.args["key"] = code
	res, err := s.DB.NamedExecContext(ctx, `UPDATE courses SET `+set.String()+` WHERE course = :key`, set.args)
	if err != nil {
		return fmt.Errorf("failed to update course %s: %w", code, err)
	}
	return affectedOrNotFound(res)
}

func (s *BaseStore) GetStudentRecord(ctx context.Context, course, userID string) (*models.Record, error) {
	var record models.Record
	query := s.Converter(`SELECT ` + recordColumns + ` FROM scores WHERE course = ? AND user_id = ?`)

	err := s.DB.GetContext(ctx, &record, query, course, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student record: %w", err)
	}
	return &record, nil
}

func (s *BaseStore) GetStudentRecordByID(ctx context.Context, id int64) (*models.Record, error) {
	var record models.Record
	query := s.Converter(`SELECT ` + recordColumns + ` FROM scores WHERE id = ?`)

	err := s.DB.GetContext(ctx, &record, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student record %d: %w", id, err)
	}
	return &record, nil
}

func (s *BaseStore) ListStudentRecords(ctx context.Context, course, excludeUserID string) ([]models.Record, error) {
	records := []models.Record{}
	query := s.Converter(`
		SELECT ` + recordColumns + `
		FROM scores
		WHERE course = ?
		AND user_id <> ?
		ORDER BY user_id
	`)

	err := s.DB.SelectContext(ctx, &records, query, course, excludeUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list student records: %w", err)
	}
	return records, nil
}

func (s *BaseStore) InsertStudentRecord(ctx context.Context, record *models.Record) error {
	rows, err := s.DB.NamedQueryContext(ctx, `
		INSERT INTO scores (
			course, user_id, fullname, password, status,
			mid_term, final, project1, project2,
			class_scores, lab_scores, hw_scores, quiz_scores
		) VALUES (
			:course, :user_id, :fullname, :password, :status,
			:mid_term, :final, :project1, :project2,
			:class_scores, :lab_scores, :hw_scores, :quiz_scores
		)
		RETURNING id
	`, record)
	if s.duplicate(err) {
		return ErrDuplicateKey
	}
	if err != nil {
		return fmt.Errorf("failed to insert student record: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&record.ID); err != nil {
			return fmt.Errorf("failed to read inserted id: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		if s.duplicate(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert student record: %w", err)
	}
	return nil
}

func (s *BaseStore) UpdateStudentRecord(ctx context.Context, id int64, upd models.RecordUpdate) error {
	set := newSetClause()
	if upd.FullName != nil {
		set.set("fullname", *upd.FullName)
	}
	if upd.Status != nil {
		set.set("status", *upd.Status)
	}
	if sc := upd.Scores; sc != nil {
		set.set("mid_term", sc.MidTerm)
		set.set("final", sc.Final)
		set.set("project1", sc.Project1)
		set.set("project2", sc.Project2)
		set.set("class_scores", sc.Class)
		set.set("lab_scores", sc.Lab)
		set.set("hw_scores", sc.Homework)
		set.set("quiz_scores", sc.Quiz)
	}

	if set.empty() {
		record, err := s.GetStudentRecordByID(ctx, id)
		if err != nil {
			return err
		}
		if record == nil {
			return ErrRecordNotFound
		}
		return nil
	}

	set.args["key"] = id
	res, err := s.DB.NamedExecContext(ctx, `UPDATE scores SET `+set.String()+` WHERE id = :key`, set.args)
	if err != nil {
		return fmt.Errorf("failed to update student record %d: %w", id, err)
	}
	return affectedOrNotFound(res)
}

func (s *BaseStore) DeleteStudentRecord(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, s.Converter(`DELETE FROM scores WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete student record %d: %w", id, err)
	}
	return affectedOrNotFound(res)
}

func (s *BaseStore) SetCredential(ctx context.Context, id int64, hash string) error {
	res, err := s.DB.ExecContext(ctx, s.Converter(`UPDATE scores SET password = ? WHERE id = ?`), hash, id)
	if err != nil {
		return fmt.Errorf("failed to set credential for %d: %w", id, err)
	}
	return affectedOrNotFound(res)
}

func (s *BaseStore) ClearCredential(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, s.Converter(`UPDATE scores SET password = NULL WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to clear credential for %d: %w", id, err)
	}
	return affectedOrNotFound(res)
}
