package models

import (
	"github.com/go-playground/validator/v10"
)

const (
	// AdminCourse and AdminUserID identify the seeded administrator row.
	AdminCourse   = "All"
	AdminUserID   = "admin"
	AdminFullName = "Administrator"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusSuspended
}

// Toggled flips active <-> suspended.
func (s Status) Toggled() Status {
	if s == StatusSuspended {
		return StatusActive
	}
	return StatusSuspended
}

var validate = validator.New()

// MaxScores are display bounds only, they never enter the total.
type MaxScores struct {
	MaxTotal float64 `db:"max_total" json:"max_total" validate:"gte=0"`
	MaxMid   float64 `db:"max_mid" json:"max_mid" validate:"gte=0"`
	MaxFinal float64 `db:"max_final" json:"max_final" validate:"gte=0"`
	MaxClass float64 `db:"max_class" json:"max_class" validate:"gte=0"`
	MaxLab   float64 `db:"max_lab" json:"max_lab" validate:"gte=0"`
	MaxHW    float64 `db:"max_hw" json:"max_hw" validate:"gte=0"`
	MaxQuiz  float64 `db:"max_quiz" json:"max_quiz" validate:"gte=0"`
	MaxP1    float64 `db:"max_p1" json:"max_p1" validate:"gte=0"`
	MaxP2    float64 `db:"max_p2" json:"max_p2" validate:"gte=0"`
}

// Factors divide the raw sum of each repeated component.
type Factors struct {
	ClassFactor float64 `db:"class_factor" json:"class_factor"`
	LabFactor   float64 `db:"lab_factor" json:"lab_factor"`
	HWFactor    float64 `db:"hw_factor" json:"hw_factor"`
	QuizFactor  float64 `db:"quiz_factor" json:"quiz_factor"`
}

// DefaultFactors leaves every component unscaled.
func DefaultFactors() Factors {
	return Factors{ClassFactor: 1, LabFactor: 1, HWFactor: 1, QuizFactor: 1}
}

type Course struct {
	Code   string `db:"course" json:"course" validate:"required,max=32,ne=All"`
	Name   string `db:"name" json:"name" validate:"required"`
	Status Status `db:"status" json:"status" validate:"oneof=active suspended"`
	MaxScores
	Factors
}

func (c *Course) Validate() error {
	return validate.Struct(c)
}

func (c *Course) Active() bool {
	return c.Status == StatusActive
}

// CourseUpdate carries the fields an edit touches; nil means unchanged.
type CourseUpdate struct {
	Name    *string
	Status  *Status
	Max     *MaxScores
	Factors *Factors
}
