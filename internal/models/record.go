package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Slots is one repeated score component, stored as a JSON array column.
type Slots []float64

// At returns the i-th slot (0-based), 0 past the end.
func (s Slots) At(i int) float64 {
	if i < 0 || i >= len(s) {
		return 0
	}
	return s[i]
}

// Fit returns a copy padded with zeros or truncated to n slots.
func (s Slots) Fit(n int) Slots {
	out := make(Slots, n)
	copy(out, s)
	return out
}

func (s Slots) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]float64(s))
	if err != nil {
		return nil, fmt.Errorf("failed to encode slots: %w", err)
	}
	return string(b), nil
}

func (s *Slots) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into slots", src)
	}
	if len(raw) == 0 {
		*s = nil
		return nil
	}

	// null elements decode as 0
	var vals []*float64
	if err := json.Unmarshal(raw, &vals); err != nil {
		return fmt.Errorf("failed to decode slots: %w", err)
	}
	out := make(Slots, len(vals))
	for i, v := range vals {
		if v != nil {
			out[i] = *v
		}
	}
	*s = out
	return nil
}

type Record struct {
	ID       int64   `db:"id" json:"id"`
	Course   string  `db:"course" json:"course" validate:"required"`
	UserID   string  `db:"user_id" json:"user_id" validate:"required,max=64"`
	FullName string  `db:"fullname" json:"fullname" validate:"required"`
	Password *string `db:"password" json:"-"`
	Status   Status  `db:"status" json:"status" validate:"oneof=active suspended"`

	MidTerm  float64 `db:"mid_term" json:"mid_term"`
	Final    float64 `db:"final" json:"final"`
	Project1 float64 `db:"project1" json:"project1"`
	Project2 float64 `db:"project2" json:"project2"`

	Class    Slots `db:"class_scores" json:"class"`
	Lab      Slots `db:"lab_scores" json:"lab"`
	Homework Slots `db:"hw_scores" json:"hw"`
	Quiz     Slots `db:"quiz_scores" json:"quiz"`
}

func (r *Record) Validate() error {
	return validate.Struct(r)
}

// HasCredential reports whether a password has been provisioned.
func (r *Record) HasCredential() bool {
	return r.Password != nil && *r.Password != ""
}

func (r *Record) IsAdmin() bool {
	return IsAdminIdentity(r.Course, r.UserID)
}

func (r *Record) Suspended() bool {
	return r.Status == StatusSuspended
}

func IsAdminIdentity(course, userID string) bool {
	return course == AdminCourse && userID == AdminUserID
}

// Scores groups the editable numeric fields of a record.
type Scores struct {
	MidTerm  float64
	Final    float64
	Project1 float64
	Project2 float64
	Class    Slots
	Lab      Slots
	Homework Slots
	Quiz     Slots
}

// RecordUpdate carries the fields an edit touches; nil means unchanged.
type RecordUpdate struct {
	FullName *string
	Status   *Status
	Scores   *Scores
}

// unique_together is enforced on DB level:
/*
CREATE TABLE scores (
    ...
    UNIQUE (course, user_id)
);
*/
