package handlers

import (
	"errors"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/Phairoj-Ja/student-score-web/internal/access"
	"github.com/Phairoj-Ja/student-score-web/internal/metrics"
	"github.com/Phairoj-Ja/student-score-web/internal/models"
)

type loginResponse struct {
	Role                models.Role `json:"role"`
	Course              string      `json:"course"`
	UserID              string      `json:"user_id"`
	FullName            string      `json:"fullname"`
	PasswordProvisioned bool        `json:"password_provisioned"`
	Redirect            string      `json:"redirect"`
}

func landingFor(sess *models.Session) string {
	switch {
	case sess.IsAdmin():
		return "/admin"
	case sess.IsStudent():
		return "/student/dashboard"
	default:
		return "/login"
	}
}

func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	http.Redirect(w, r, landingFor(sess), http.StatusSeeOther)
}

func (h *Handler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.LoginCourses(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"courses": courses,
	})
}

// loginOutcome names a login result for the response body and metrics.
func loginOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, access.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, access.ErrAccountSuspended):
		return "account_suspended"
	case errors.Is(err, access.ErrPasswordSetupRequired):
		return setupCode(err)
	case errors.Is(err, access.ErrInvalidCredentials):
		return "invalid_password"
	default:
		return "error"
	}
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{"invalid_input", "Invalid form body"})
		return
	}

	attempt := access.Attempt{
		Course:          r.PostFormValue("course"),
		UserID:          r.PostFormValue("user_id"),
		Password:        r.PostFormValue("password"),
		PasswordConfirm: r.PostFormValue("password_confirm"),
	}

	res, err := h.service.Login(r.Context(), attempt, h.sessionToken(r))
	outcome := loginOutcome(err)
	metrics.LoginAttempts.WithLabelValues(outcome).Inc()

	if err != nil {
		if outcome == "error" {
			writeError(w, r, err)
			return
		}
		logger.Info.Printf("Login refused for %s/%s: %s", attempt.Course, attempt.UserID, outcome)
		writeJSON(w, http.StatusUnauthorized, errorResponse{outcome, err.Error()})
		return
	}

	if res.PasswordProvisioned {
		metrics.CredentialsProvisioned.Inc()
		logger.Info.Printf("Password provisioned for %s/%s", res.Session.Course, res.Session.UserID)
	}

	h.setSessionCookie(w, res.Token)
	writeJSON(w, http.StatusOK, loginResponse{
		Role:                res.Session.Role,
		Course:              res.Session.Course,
		UserID:              res.Session.UserID,
		FullName:            res.Session.FullName,
		PasswordProvisioned: res.PasswordProvisioned,
		Redirect:            landingFor(&res.Session),
	})
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if token := h.sessionToken(r); token != "" {
		if err := h.service.Logout(r.Context(), token); err != nil {
			logger.Error.Printf("Failed to drop session: %v", err)
		}
	}
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
