package store

import "errors"

type DatabaseType string

const (
	DBTypePostgres DatabaseType = "postgres"
	DBTypeSQLite   DatabaseType = "sqlite"
)

type DBConfig struct {
	DSN  string
	Type DatabaseType
}

var (
	ErrDuplicateKey   = errors.New("record with this key already exists")
	ErrRecordNotFound = errors.New("record not found")
)

const courseColumns = `
	course,
	name,
	status,
	COALESCE(max_total, 0) AS max_total,
	COALESCE(max_mid, 0) AS max_mid,
	COALESCE(max_final, 0) AS max_final,
	COALESCE(max_class, 0) AS max_class,
	COALESCE(max_lab, 0) AS max_lab,
	COALESCE(max_hw, 0) AS max_hw,
	COALESCE(max_quiz, 0) AS max_quiz,
	COALESCE(max_p1, 0) AS max_p1,
	COALESCE(max_p2, 0) AS max_p2,
	COALESCE(class_factor, 0) AS class_factor,
	COALESCE(lab_factor, 0) AS lab_factor,
	COALESCE(hw_factor, 0) AS hw_factor,
	COALESCE(quiz_factor, 0) AS quiz_factor`

const recordColumns = `
	id,
	course,
	user_id,
	fullname,
	password,
	status,
	COALESCE(mid_term, 0) AS mid_term,
	COALESCE(final, 0) AS final,
	COALESCE(project1, 0) AS project1,
	COALESCE(project2, 0) AS project2,
	class_scores,
	lab_scores,
	hw_scores,
	quiz_scores`
