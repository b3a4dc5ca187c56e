package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Phairoj-Ja/student-score-web/internal/app"
	"github.com/Phairoj-Ja/student-score-web/internal/grading"
	"github.com/Phairoj-Ja/student-score-web/internal/models"
)

func formNumber(r *http.Request, key string) float64 {
	return grading.ParseNumber(r.PostFormValue(key))
}

func courseMax(r *http.Request) models.MaxScores {
	return models.MaxScores{
		MaxTotal: formNumber(r, "max_total"),
		MaxMid:   formNumber(r, "max_mid"),
		MaxFinal: formNumber(r, "max_final"),
		MaxClass: formNumber(r, "max_class"),
		MaxLab:   formNumber(r, "max_lab"),
		MaxHW:    formNumber(r, "max_hw"),
		MaxQuiz:  formNumber(r, "max_quiz"),
		MaxP1:    formNumber(r, "max_p1"),
		MaxP2:    formNumber(r, "max_p2"),
	}
}

func courseFactors(r *http.Request) models.Factors {
	return models.Factors{
		ClassFactor: formNumber(r, "class_factor"),
		LabFactor:   formNumber(r, "lab_factor"),
		HWFactor:    formNumber(r, "hw_factor"),
		QuizFactor:  formNumber(r, "quiz_factor"),
	}
}

func parseCourseForm(r *http.Request) models.Course {
	return models.Course{
		Code:      strings.TrimSpace(r.PostFormValue("course")),
		Name:      strings.TrimSpace(r.PostFormValue("name")),
		MaxScores: courseMax(r),
		Factors:   courseFactors(r),
	}
}

func parseCourseEdit(r *http.Request) app.CourseEdit {
	return app.CourseEdit{
		Name:      strings.TrimSpace(r.PostFormValue("name")),
		Status:    models.Status(r.PostFormValue("status")),
		MaxScores: courseMax(r),
		Factors:   courseFactors(r),
	}
}

// formSlots reads one repeated component. A single free-text field named
// after the component wins over the numbered class_1..class_n fields.
func formSlots(r *http.Request, name string, n int) models.Slots {
	if _, ok := r.PostForm[name]; ok {
		return grading.ParseScores(r.PostFormValue(name), n)
	}

	slots := make(models.Slots, n)
	for i := range slots {
		slots[i] = formNumber(r, fmt.Sprintf("%s_%d", name, i+1))
	}
	return slots
}

func parseScores(r *http.Request, layout grading.Layout) models.Scores {
	return models.Scores{
		MidTerm:  formNumber(r, "mid_term"),
		Final:    formNumber(r, "final"),
		Project1: formNumber(r, "project1"),
		Project2: formNumber(r, "project2"),
		Class:    formSlots(r, "class", layout.ClassSlots),
		Lab:      formSlots(r, "lab", layout.LabSlots),
		Homework: formSlots(r, "hw", layout.HomeworkSlots),
		Quiz:     formSlots(r, "quiz", layout.QuizSlots),
	}
}

func parseStudentForm(r *http.Request, layout grading.Layout) app.StudentInput {
	return app.StudentInput{
		UserID:   r.PostFormValue("user_id"),
		FullName: r.PostFormValue("fullname"),
		Status:   models.Status(r.PostFormValue("status")),
		Scores:   parseScores(r, layout),
	}
}

func parseStudentEdit(r *http.Request, layout grading.Layout) app.StudentEdit {
	scores := parseScores(r, layout)
	return app.StudentEdit{
		FullName: r.PostFormValue("fullname"),
		Status:   models.Status(r.PostFormValue("status")),
		Scores:   &scores,
	}
}
