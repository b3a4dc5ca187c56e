package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/Phairoj-Ja/student-score-web/internal/access"
	"github.com/Phairoj-Ja/student-score-web/internal/app"
	"github.com/Phairoj-Ja/student-score-web/internal/metrics"
	"github.com/Phairoj-Ja/student-score-web/internal/models"
	"github.com/Phairoj-Ja/student-score-web/internal/store"
)

type Handler struct {
	service *app.Service
}

func NewHandler(service *app.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// Routes registers every endpoint on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, instrument(fn))
	}

	handle("GET /{$}", h.withSession(h.HandleIndex))
	handle("GET /login", h.HandleLoginPage)
	handle("POST /login", h.HandleLogin)
	handle("GET /logout", h.HandleLogout)

	handle("GET /admin", h.withSession(h.HandleCourses))
	handle("POST /admin/change_password", h.withSession(h.HandleChangePassword))
	handle("POST /admin/course/add", h.withSession(h.HandleAddCourse))
	handle("GET /admin/course/{course}", h.withSession(h.HandleRoster))
	handle("GET /admin/course/{course}/edit", h.withSession(h.HandleCourse))
	handle("POST /admin/course/{course}/edit", h.withSession(h.HandleEditCourse))
	handle("POST /admin/course/{course}/toggle", h.withSession(h.HandleToggleCourse))
	handle("POST /admin/course/{course}/add", h.withSession(h.HandleAddStudent))
	handle("GET /admin/dashboard/{course}", h.withSession(h.HandleChart))
	handle("GET /admin/student/{id}/edit", h.withSession(h.HandleStudent))
	handle("POST /admin/student/{id}/edit", h.withSession(h.HandleEditStudent))
	handle("POST /admin/student/{id}/delete", h.withSession(h.HandleDeleteStudent))
	handle("POST /admin/student/{id}/reset_password", h.withSession(h.HandleResetPassword))

	handle("GET /student/dashboard", h.withSession(h.HandleDashboard))

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func instrument(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			duration := time.Since(start).Seconds()
			metrics.APIRequestDuration.WithLabelValues(
				r.Pattern,
				r.Method,
				strconv.Itoa(rec.status),
			).Observe(duration)
		}()
		next(rec, r)
	})
}

type sessionHandlerFunc func(w http.ResponseWriter, r *http.Request, sess *models.Session)

// withSession resolves the cookie into a session, nil when there is none.
// Role checks happen in the service.
func (h *Handler) withSession(next sessionHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := h.service.SessionFor(r.Context(), h.sessionToken(r))
		if err != nil {
			logger.Error.Printf("Failed to resolve session: %v", err)
			http.Error(w, "Failed to resolve session", http.StatusInternalServerError)
			return
		}
		next(w, r, sess)
	}
}

func (h *Handler) sessionToken(r *http.Request) string {
	c, err := r.Cookie(h.service.Config.Sessions.CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	cookie := &http.Cookie{
		Name:     h.service.Config.Sessions.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.service.Config.Sessions.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl := h.service.Config.SessionTTL(); ttl > 0 {
		cookie.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, cookie)
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.service.Config.Sessions.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error.Printf("Failed to encode response: %v", err)
	}
}

// writeError maps service errors onto statuses. Anything unknown is logged
// and reported as 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, access.ErrNotAuthenticated):
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	case errors.Is(err, store.ErrRecordNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{"not_found", err.Error()})
	case errors.Is(err, store.ErrDuplicateKey):
		writeJSON(w, http.StatusConflict, errorResponse{"duplicate", err.Error()})
	case errors.Is(err, app.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorResponse{"invalid_input", err.Error()})
	case errors.Is(err, access.ErrPasswordSetupRequired):
		writeJSON(w, http.StatusBadRequest, errorResponse{setupCode(err), err.Error()})
	case errors.Is(err, access.ErrInvalidCredentials):
		writeJSON(w, http.StatusForbidden, errorResponse{"invalid_password", err.Error()})
	default:
		logger.Error.Printf("%s %s failed: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{"internal", "internal error"})
	}
}

func setupCode(err error) string {
	if access.SetupReasonOf(err) == access.SetupMismatch {
		return "password_mismatch"
	}
	return "password_required"
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
