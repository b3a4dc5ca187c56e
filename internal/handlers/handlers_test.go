package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Phairoj-Ja/student-score-web/internal/app"
	"github.com/Phairoj-Ja/student-score-web/internal/grading"
	"github.com/Phairoj-Ja/student-score-web/internal/models"
	"github.com/Phairoj-Ja/student-score-web/internal/sessions"
	"github.com/Phairoj-Ja/student-score-web/internal/store"
	"github.com/Phairoj-Ja/student-score-web/internal/store/sqlite"
)

const cookieName = "test_session"

type testServer struct {
	t       *testing.T
	mux     *http.ServeMux
	service *app.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	recordStore, err := sqlite.NewSQLiteStore(&store.DBConfig{DSN: ":memory:", Type: store.DBTypeSQLite})
	require.NoError(t, err)
	require.NoError(t, recordStore.ApplyMigrations("../../migrations"))

	config := &app.Config{}
	config.Sessions.CookieName = cookieName
	config.Admin.InitialPassword = "adminpw"
	config.Admin.BcryptCost = bcrypt.MinCost
	config.Scoring = grading.DefaultLayout

	service := app.New(config, recordStore, sessions.NewMemoryStore(0))
	require.NoError(t, service.Bootstrap(context.Background()))
	t.Cleanup(func() { service.Close() })

	mux := http.NewServeMux()
	NewHandler(service).Routes(mux)

	return &testServer{t: t, mux: mux, service: service}
}

func (ts *testServer) do(method, path, token string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	}

	rec := httptest.NewRecorder()
	ts.mux.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) string {
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c.Value
		}
	}
	return ""
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (ts *testServer) login(course, userID, password, confirm string) *httptest.ResponseRecorder {
	return ts.do(http.MethodPost, "/login", "", url.Values{
		"course":           {course},
		"user_id":          {userID},
		"password":         {password},
		"password_confirm": {confirm},
	})
}

func (ts *testServer) adminToken() string {
	rec := ts.login(models.AdminCourse, models.AdminUserID, "adminpw", "")
	require.Equal(ts.t, http.StatusOK, rec.Code, rec.Body.String())
	token := sessionCookie(rec)
	require.NotEmpty(ts.t, token)
	return token
}

func TestLoginPageListsAdminFirst(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/login", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Courses []app.LoginCourse `json:"courses"`
	}
	decode(t, rec, &body)
	require.NotEmpty(t, body.Courses)
	assert.Equal(t, models.AdminCourse, body.Courses[0].Course)
}

func TestLoginFailuresHaveDistinctCodes(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.adminToken()

	rec := ts.do(http.MethodPost, "/admin/course/add", admin, url.Values{"course": {"CS101"}, "name": {"Intro"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = ts.do(http.MethodPost, "/admin/course/CS101/add", admin, url.Values{"user_id": {"alice"}, "fullname": {"Alice"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = ts.do(http.MethodPost, "/admin/course/CS101/add", admin, url.Values{"user_id": {"sam"}, "fullname": {"Sam"}, "status": {"suspended"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	tests := []struct {
		name     string
		userID   string
		password string
		confirm  string
		code     string
	}{
		{"unknown user", "nobody", "pw", "pw", "user_not_found"},
		{"suspended", "sam", "pw", "pw", "account_suspended"},
		{"missing confirm", "alice", "pw", "", "password_required"},
		{"mismatch", "alice", "abc", "xyz", "password_mismatch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.login("CS101", tt.userID, tt.password, tt.confirm)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			var body errorResponse
			decode(t, rec, &body)
			assert.Equal(t, tt.code, body.Error)
			assert.Empty(t, sessionCookie(rec))
		})
	}

	rec = ts.login("CS101", "alice", "pw", "pw")
	require.Equal(t, http.StatusOK, rec.Code)
	var ok loginResponse
	decode(t, rec, &ok)
	assert.True(t, ok.PasswordProvisioned)
	assert.Equal(t, "/student/dashboard", ok.Redirect)

	rec = ts.login("CS101", "alice", "wrong", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body errorResponse
	decode(t, rec, &body)
	assert.Equal(t, "invalid_password", body.Error)
}

func TestUnauthenticatedRedirectsToLogin(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/admin", "/student/dashboard", "/admin/course/CS101"} {
		rec := ts.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/login", rec.Header().Get("Location"), path)
	}

	rec := ts.do(http.MethodGet, "/", ts.adminToken(), nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))
}

func TestStudentCannotReachAdmin(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.adminToken()

	ts.do(http.MethodPost, "/admin/course/add", admin, url.Values{"course": {"CS101"}, "name": {"Intro"}})
	ts.do(http.MethodPost, "/admin/course/CS101/add", admin, url.Values{"user_id": {"alice"}, "fullname": {"Alice"}})

	student := sessionCookie(ts.login("CS101", "alice", "pw", "pw"))
	require.NotEmpty(t, student)

	rec := ts.do(http.MethodGet, "/admin", student, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = ts.do(http.MethodGet, "/student/dashboard", admin, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestCourseAndStudentForms(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.adminToken()

	rec := ts.do(http.MethodPost, "/admin/course/add", admin, url.Values{
		"course":    {"CS101"},
		"name":      {"Intro"},
		"hw_factor": {"5"},
		"max_mid":   {"abc"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var course models.Course
	decode(t, rec, &course)
	assert.Equal(t, 5.0, course.HWFactor)
	assert.Equal(t, 1.0, course.ClassFactor)
	assert.Equal(t, 0.0, course.MaxMid)

	rec = ts.do(http.MethodPost, "/admin/course/add", admin, url.Values{"course": {"CS101"}, "name": {"Again"}})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(http.MethodPost, "/admin/course/add", admin, url.Values{"course": {"CS102"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/admin/course/CS101/add", admin, url.Values{
		"user_id":  {"alice"},
		"fullname": {"Alice"},
		"mid_term": {"30"},
		"final":    {"40"},
		"hw":       {"10, 10 10,10  10 99"},
		"class_1":  {"3"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var record models.Record
	decode(t, rec, &record)
	assert.Equal(t, models.Slots{10, 10, 10, 10, 10}, record.Homework)
	assert.Equal(t, 3.0, record.Class.At(0))

	rec = ts.do(http.MethodPost, "/admin/course/CS101/add", admin, url.Values{"user_id": {"alice"}, "fullname": {"Dup"}})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(http.MethodGet, "/admin/course/CS101", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var roster app.Roster
	decode(t, rec, &roster)
	require.Len(t, roster.Students, 1)
	assert.Equal(t, 80.0+3.0, roster.Students[0].Scores.Total)

	rec = ts.do(http.MethodGet, "/admin/dashboard/CS101", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodGet, "/admin/course/NOPE", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodPost, "/admin/course/CS101/toggle", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"suspended"`)
}

func TestStudentEditDeleteAndReset(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.adminToken()

	ts.do(http.MethodPost, "/admin/course/add", admin, url.Values{"course": {"CS101"}, "name": {"Intro"}})
	rec := ts.do(http.MethodPost, "/admin/course/CS101/add", admin, url.Values{"user_id": {"bob"}, "fullname": {"Bob"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	var record models.Record
	decode(t, rec, &record)
	base := "/admin/student/" + jsonID(record.ID)

	rec = ts.do(http.MethodPost, base+"/edit", admin, url.Values{"fullname": {"Bob B"}, "mid_term": {"12.5"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(http.MethodGet, base+"/edit", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &record)
	assert.Equal(t, "Bob B", record.FullName)
	assert.Equal(t, 12.5, record.MidTerm)

	student := sessionCookie(ts.login("CS101", "bob", "pw", "pw"))
	require.NotEmpty(t, student)

	rec = ts.do(http.MethodGet, "/student/dashboard", student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dashboard app.Dashboard
	decode(t, rec, &dashboard)
	assert.Equal(t, 12.5, dashboard.Scores.Total)

	rec = ts.do(http.MethodPost, base+"/reset_password", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.login("CS101", "bob", "pw", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodPost, base+"/delete", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(http.MethodPost, base+"/delete", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodPost, "/admin/student/abc/delete", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNonFiniteScoresBecomeZero(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.adminToken()

	ts.do(http.MethodPost, "/admin/course/add", admin, url.Values{"course": {"CS101"}, "name": {"Intro"}, "hw_factor": {"NaN"}})
	rec := ts.do(http.MethodPost, "/admin/course/CS101/add", admin, url.Values{
		"user_id":  {"alice"},
		"fullname": {"Alice"},
		"mid_term": {"inf"},
		"final":    {"-Inf"},
		"hw":       {"NaN 1"},
		"lab_1":    {"+Inf"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var record models.Record
	decode(t, rec, &record)
	assert.Equal(t, 0.0, record.MidTerm)
	assert.Equal(t, 0.0, record.Final)
	assert.Equal(t, models.Slots{0, 1, 0, 0, 0}, record.Homework)
	assert.Equal(t, 0.0, record.Lab.At(0))

	rec = ts.do(http.MethodGet, "/admin/course/CS101", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var roster app.Roster
	decode(t, rec, &roster)
	require.Len(t, roster.Students, 1)
	assert.Equal(t, 1.0, roster.Students[0].Scores.Total)
	assert.Equal(t, 1.0, roster.Course.HWFactor)

	rec = ts.do(http.MethodGet, "/admin/dashboard/CS101", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var chart app.Chart
	decode(t, rec, &chart)
	assert.Equal(t, []float64{1}, chart.Series.Totals)
}

func TestAdminRecordIsProtected(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.adminToken()

	record, err := ts.service.Store.GetStudentRecord(context.Background(), models.AdminCourse, models.AdminUserID)
	require.NoError(t, err)
	base := "/admin/student/" + jsonID(record.ID)

	rec := ts.do(http.MethodPost, base+"/reset_password", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, base+"/edit", admin, url.Values{"fullname": {"Mallory"}, "status": {"suspended"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, base+"/delete", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.login(models.AdminCourse, models.AdminUserID, "intruder", "intruder")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, sessionCookie(rec))

	rec = ts.login(models.AdminCourse, models.AdminUserID, "adminpw", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChangePasswordAndLogout(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.adminToken()

	rec := ts.do(http.MethodPost, "/admin/change_password", admin, url.Values{
		"old_password": {"nope"}, "new_password": {"n"}, "confirm_password": {"n"},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(http.MethodPost, "/admin/change_password", admin, url.Values{
		"old_password": {"adminpw"}, "new_password": {"n"}, "confirm_password": {"m"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/admin/change_password", admin, url.Values{
		"old_password": {"adminpw"}, "new_password": {"next"}, "confirm_password": {"next"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodGet, "/logout", admin, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	rec = ts.do(http.MethodGet, "/admin", admin, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = ts.login(models.AdminCourse, models.AdminUserID, "next", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
