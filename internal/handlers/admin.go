package handlers

import (
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/Phairoj-Ja/student-score-web/internal/app"
	"github.com/Phairoj-Ja/student-score-web/internal/metrics"
	"github.com/Phairoj-Ja/student-score-web/internal/models"
)

func parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{"invalid_input", "Invalid form body"})
		return false
	}
	return true
}

func studentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := pathID(r)
	if !ok {
		logger.Error.Printf("Failed to extract student id from path: %s", r.URL.Path)
		writeJSON(w, http.StatusBadRequest, errorResponse{"invalid_input", "Invalid student id"})
	}
	return id, ok
}

var okResponse = map[string]string{"status": "ok"}

func (h *Handler) HandleCourses(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	courses, err := h.service.ListCourses(r.Context(), sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"courses": courses,
	})
}

func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	if !parseForm(w, r) {
		return
	}
	err := h.service.ChangeAdminPassword(r.Context(), sess, app.PasswordChange{
		Old:     r.PostFormValue("old_password"),
		New:     r.PostFormValue("new_password"),
		Confirm: r.PostFormValue("confirm_password"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.Info.Println("Admin password changed")
	writeJSON(w, http.StatusOK, okResponse)
}

func (h *Handler) HandleAddCourse(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	if !parseForm(w, r) {
		return
	}
	course, err := h.service.AddCourse(r.Context(), sess, parseCourseForm(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.Info.Printf("Course %s added", course.Code)
	writeJSON(w, http.StatusCreated, course)
}

func (h *Handler) HandleCourse(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	course, err := h.service.GetCourse(r.Context(), sess, r.PathValue("course"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (h *Handler) HandleEditCourse(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	if !parseForm(w, r) {
		return
	}
	code := r.PathValue("course")
	if err := h.service.EditCourse(r.Context(), sess, code, parseCourseEdit(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse)
}

func (h *Handler) HandleToggleCourse(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	code := r.PathValue("course")
	status, err := h.service.ToggleCourse(r.Context(), sess, code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.Info.Printf("Course %s is now %s", code, status)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"course": code,
		"status": status,
	})
}

func (h *Handler) HandleRoster(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	roster, err := h.service.CourseRoster(r.Context(), sess, r.PathValue("course"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

func (h *Handler) HandleChart(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	chart, err := h.service.CourseChart(r.Context(), sess, r.PathValue("course"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	metrics.ObserveCourse(chart.Course.Code, chart.Series.Count, chart.Series.Mean, chart.Series.Min, chart.Series.Max)
	writeJSON(w, http.StatusOK, chart)
}

func (h *Handler) HandleAddStudent(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	if !parseForm(w, r) {
		return
	}
	code := r.PathValue("course")
	record, err := h.service.AddStudent(r.Context(), sess, code, parseStudentForm(r, h.service.Layout))
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.Info.Printf("Student %s added to %s", record.UserID, code)
	writeJSON(w, http.StatusCreated, record)
}

func (h *Handler) HandleStudent(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	id, valid := studentID(w, r)
	if !valid {
		return
	}
	record, err := h.service.GetStudent(r.Context(), sess, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) HandleEditStudent(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	id, valid := studentID(w, r)
	if !valid || !parseForm(w, r) {
		return
	}
	if err := h.service.EditStudent(r.Context(), sess, id, parseStudentEdit(r, h.service.Layout)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse)
}

func (h *Handler) HandleDeleteStudent(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	id, valid := studentID(w, r)
	if !valid {
		return
	}
	if err := h.service.DeleteStudent(r.Context(), sess, id); err != nil {
		writeError(w, r, err)
		return
	}
	logger.Info.Printf("Student record %d deleted", id)
	writeJSON(w, http.StatusOK, okResponse)
}

func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	id, valid := studentID(w, r)
	if !valid {
		return
	}
	if err := h.service.ResetStudentPassword(r.Context(), sess, id); err != nil {
		writeError(w, r, err)
		return
	}
	logger.Info.Printf("Password reset for student record %d", id)
	writeJSON(w, http.StatusOK, okResponse)
}
