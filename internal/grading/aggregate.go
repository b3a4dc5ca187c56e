// Package grading turns a student record and its course configuration into a
// score breakdown. Nothing in here performs I/O.
package grading

import (
	"github.com/Phairoj-Ja/student-score-web/internal/models"
)

// Layout is the number of slots each repeated component has.
type Layout struct {
	ClassSlots    int `toml:"class_slots"`
	LabSlots      int `toml:"lab_slots"`
	HomeworkSlots int `toml:"homework_slots"`
	QuizSlots     int `toml:"quiz_slots"`
}

var DefaultLayout = Layout{
	ClassSlots:    15,
	LabSlots:      15,
	HomeworkSlots: 5,
	QuizSlots:     10,
}

// WithDefaults fills every non-positive count from DefaultLayout.
func (l Layout) WithDefaults() Layout {
	if l.ClassSlots <= 0 {
		l.ClassSlots = DefaultLayout.ClassSlots
	}
	if l.LabSlots <= 0 {
		l.LabSlots = DefaultLayout.LabSlots
	}
	if l.HomeworkSlots <= 0 {
		l.HomeworkSlots = DefaultLayout.HomeworkSlots
	}
	if l.QuizSlots <= 0 {
		l.QuizSlots = DefaultLayout.QuizSlots
	}
	return l
}

// Breakdown is the computed view of one record. Field names match what the
// dashboards render.
type Breakdown struct {
	MidTerm  float64 `json:"mid_term"`
	Final    float64 `json:"final"`
	Project1 float64 `json:"project1"`
	Project2 float64 `json:"project2"`

	ClassSum      float64 `json:"class_sum"`
	ClassScore    float64 `json:"class_score"`
	LabSum        float64 `json:"lab_sum"`
	LabScore      float64 `json:"lab_score"`
	HomeworkSum   float64 `json:"homework_sum"`
	HomeworkScore float64 `json:"homework_score"`
	QuizSum       float64 `json:"quiz_sum"`
	QuizScore     float64 `json:"quiz_score"`

	Total float64 `json:"total"`
}

// ResolveFactor maps a missing, zero or negative factor to 1.
func ResolveFactor(f float64) float64 {
	if f <= 0 {
		return 1
	}
	return f
}

// Normalize divides the raw sum by the factor, 0 if the factor is 0.
func Normalize(raw, factor float64) float64 {
	if factor == 0 {
		return 0
	}
	return raw / factor
}

func sumSlots(s models.Slots, n int) float64 {
	var sum float64
	for i := 0; i < n; i++ {
		sum += s.At(i)
	}
	return sum
}

// Compute uses DefaultLayout.
func Compute(r *models.Record, c *models.Course) Breakdown {
	return DefaultLayout.Compute(r, c)
}

// Compute never fails: a nil record or course contributes zeros and
// default factors respectively.
func (l Layout) Compute(r *models.Record, c *models.Course) Breakdown {
	l = l.WithDefaults()
	if r == nil {
		r = &models.Record{}
	}

	var factors models.Factors
	if c != nil {
		factors = c.Factors
	}
	classFactor := ResolveFactor(factors.ClassFactor)
	labFactor := ResolveFactor(factors.LabFactor)
	hwFactor := ResolveFactor(factors.HWFactor)
	quizFactor := ResolveFactor(factors.QuizFactor)

	b := Breakdown{
		MidTerm:  r.MidTerm,
		Final:    r.Final,
		Project1: r.Project1,
		Project2: r.Project2,

		ClassSum:    sumSlots(r.Class, l.ClassSlots),
		LabSum:      sumSlots(r.Lab, l.LabSlots),
		HomeworkSum: sumSlots(r.Homework, l.HomeworkSlots),
		QuizSum:     sumSlots(r.Quiz, l.QuizSlots),
	}
	b.ClassScore = Normalize(b.ClassSum, classFactor)
	b.LabScore = Normalize(b.LabSum, labFactor)
	b.HomeworkScore = Normalize(b.HomeworkSum, hwFactor)
	b.QuizScore = Normalize(b.QuizSum, quizFactor)

	b.Total = b.MidTerm + b.Final + b.Project1 + b.Project2 +
		b.ClassScore + b.LabScore + b.HomeworkScore + b.QuizScore

	return b
}

// BlankRecord is what "add student" starts from: active, no password, every
// score zero and every component sized to the layout.
func (l Layout) BlankRecord(course, userID, fullName string) *models.Record {
	l = l.WithDefaults()
	return &models.Record{
		Course:   course,
		UserID:   userID,
		FullName: fullName,
		Status:   models.StatusActive,
		Class:    make(models.Slots, l.ClassSlots),
		Lab:      make(models.Slots, l.LabSlots),
		Homework: make(models.Slots, l.HomeworkSlots),
		Quiz:     make(models.Slots, l.QuizSlots),
	}
}

// Shape fits every component of the scores to the layout.
func (l Layout) Shape(s models.Scores) models.Scores {
	l = l.WithDefaults()
	s.Class = s.Class.Fit(l.ClassSlots)
	s.Lab = s.Lab.Fit(l.LabSlots)
	s.Homework = s.Homework.Fit(l.HomeworkSlots)
	s.Quiz = s.Quiz.Fit(l.QuizSlots)
	return s
}
