package handlers

import (
	"net/http"

	"github.com/Phairoj-Ja/student-score-web/internal/models"
)

func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	dashboard, err := h.service.StudentDashboard(r.Context(), sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}
