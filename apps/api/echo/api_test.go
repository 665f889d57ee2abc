package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/access"
	"github.com/maktabuz/maktab/core/attendance"
	"github.com/maktabuz/maktab/core/class"
	"github.com/maktabuz/maktab/core/grade"
	"github.com/maktabuz/maktab/core/guardian"
	"github.com/maktabuz/maktab/core/student"
	"github.com/maktabuz/maktab/core/subject"
	"github.com/maktabuz/maktab/core/teacher"
	"github.com/maktabuz/maktab/core/user"
	inmemdb "github.com/maktabuz/maktab/storage/database/inmem"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type nopMail struct{}

func (nopMail) SendMessages(...*core.EmailMessage) {}

type testEnv struct {
	app  Server
	auth *jwtAuth
	deps *ServerDeps
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conf := &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "Maktab",
		SecretKey: []byte("test-secret-key"),
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 24 * time.Hour,
		},
	}

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	db := inmemdb.NewDB()
	deps := &ServerDeps{
		Conf:          conf,
		Logger:        nopLogger{},
		UserSvc:       user.NewService(inmemdb.NewUserRepository(db), nopMail{}, conf),
		StudentSvc:    student.NewService(inmemdb.NewStudentRepository(db)),
		TeacherSvc:    teacher.NewService(inmemdb.NewTeacherRepository(db)),
		GuardianSvc:   guardian.NewService(inmemdb.NewGuardianRepository(db)),
		ClassSvc:      class.NewService(inmemdb.NewClassRepository(db)),
		SubjectSvc:    subject.NewService(inmemdb.NewSubjectRepository(db)),
		GradeSvc:      grade.NewService(inmemdb.NewGradeRepository(db)),
		AttendanceSvc: attendance.NewService(inmemdb.NewAttendanceRepository(db)),
		Validate:      validate,
		Translator:    translator,
	}

	app := NewServer(&Options{DisableReqLogs: true, Deps: deps})
	return &testEnv{
		app:  app,
		auth: newJWTAuth(conf),
		deps: deps,
	}
}

func (env *testEnv) token(t *testing.T, usr user.User, profileID string) string {
	t.Helper()
	token, err := env.auth.GenerateToken(env.auth.claims(usr, profileID))
	require.NoError(t, err)
	return token
}

func (env *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buff bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buff).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buff)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.app.ServeHTTP(rec, req)
	return rec
}

type testEnvelope struct {
	Success    bool              `json:"success"`
	Data       json.RawMessage   `json:"data"`
	Message    string            `json:"message"`
	MessageUz  string            `json:"message_uz"`
	Errors     map[string]string `json:"errors"`
	Pagination *core.PageMeta    `json:"pagination"`
	Statistics json.RawMessage   `json:"statistics"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

// fixtures

type fixtures struct {
	admin, teacherA, teacherB, studentU1, studentU2, parentU user.User

	tchA, tchB teacher.Teacher
	std1, std2 student.Student
	grdn       guardian.Guardian
	cls        class.Class
	sbj        subject.Subject
}

func seed(t *testing.T, env *testEnv) fixtures {
	t.Helper()
	ctx := context.Background()

	var fx fixtures
	var err error

	newUser := func(name string, role access.Role) user.User {
		usr, err := env.deps.UserSvc.Create(ctx, user.NewUser{
			Name:     name,
			Username: name,
			Email:    name + "@test.uz",
			Role:     role,
			Password: "Sekret!pwd1",
		})
		require.NoError(t, err)
		return usr
	}

	fx.admin = newUser("admin", access.RoleAdmin)
	fx.teacherA = newUser("teachera", access.RoleTeacher)
	fx.teacherB = newUser("teacherb", access.RoleTeacher)
	fx.studentU1 = newUser("studone", access.RoleStudent)
	fx.studentU2 = newUser("studtwo", access.RoleStudent)
	fx.parentU = newUser("parent", access.RoleParent)

	fx.tchA, err = env.deps.TeacherSvc.Create(ctx, teacher.NewTeacher{
		UserID: fx.teacherA.ID, FirstName: "Aziz", LastName: "Karimov", EmployeeNumber: "T001", HireDate: time.Now(),
	})
	require.NoError(t, err)
	fx.tchB, err = env.deps.TeacherSvc.Create(ctx, teacher.NewTeacher{
		UserID: fx.teacherB.ID, FirstName: "Bobur", LastName: "Aliyev", EmployeeNumber: "T002", HireDate: time.Now(),
	})
	require.NoError(t, err)

	fx.cls, err = env.deps.ClassSvc.Create(ctx, class.NewClass{Grade: 7, Section: "B", AcademicYear: "2025-2026"})
	require.NoError(t, err)
	fx.sbj, err = env.deps.SubjectSvc.Create(ctx, subject.NewSubject{Name: "Mathematics", Code: "MATH7", GradeLevel: 7})
	require.NoError(t, err)

	fx.std1, err = env.deps.StudentSvc.Create(ctx, student.NewStudent{
		UserID: fx.studentU1.ID, FirstName: "Olim", LastName: "Toshev", StudentNumber: "S001",
		ClassID: fx.cls.ID, EnrollmentDate: time.Now(),
	})
	require.NoError(t, err)
	fx.std2, err = env.deps.StudentSvc.Create(ctx, student.NewStudent{
		UserID: fx.studentU2.ID, FirstName: "Nilufar", LastName: "Rashidova", StudentNumber: "S002",
		ClassID: fx.cls.ID, EnrollmentDate: time.Now(),
	})
	require.NoError(t, err)

	fx.grdn, err = env.deps.GuardianSvc.Create(ctx, guardian.NewGuardian{
		UserID: fx.parentU.ID, FirstName: "Gulnora", LastName: "Tosheva", Relationship: guardian.RelMother,
	})
	require.NoError(t, err)

	return fx
}

func (env *testEnv) addGrade(t *testing.T, fx fixtures, studentID, teacherID string, value float64) grade.Grade {
	t.Helper()
	grd, err := env.deps.GradeSvc.Create(context.Background(), grade.NewGrade{
		StudentID: studentID,
		SubjectID: fx.sbj.ID,
		ClassID:   fx.cls.ID,
		TeacherID: teacherID,
		Value:     value,
		Type:      grade.TypeExam,
		Semester:  1,
	})
	require.NoError(t, err)
	return grd
}

// tests

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/v1/students", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	fx := seed(t, env)

	t.Run("ok", func(t *testing.T) {
		rec := env.request(t, http.MethodPost, "/v1/users/login", "", LoginRequest{Username: fx.admin.Username, Password: "Sekret!pwd1"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		envl := decodeEnvelope(t, rec)
		var resp LoginResponse
		require.NoError(t, json.Unmarshal(envl.Data, &resp))
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("bad password", func(t *testing.T) {
		rec := env.request(t, http.MethodPost, "/v1/users/login", "", LoginRequest{Username: fx.admin.Username, Password: "nope"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("deactivated account", func(t *testing.T) {
		_, err := env.deps.UserSvc.Deactivate(context.Background(), fx.studentU2.ID)
		require.NoError(t, err)
		rec := env.request(t, http.MethodPost, "/v1/users/login", "", LoginRequest{Username: fx.studentU2.Username, Password: "Sekret!pwd1"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestDeactivatedAccountLockedOut(t *testing.T) {
	env := newTestEnv(t)
	fx := seed(t, env)

	token := env.token(t, fx.studentU1, fx.std1.ID)
	_, err := env.deps.UserSvc.Deactivate(context.Background(), fx.studentU1.ID)
	require.NoError(t, err)

	// a token issued before deactivation no longer grants access
	for _, path := range []string{
		"/v1/students/" + fx.std1.ID,
		"/v1/grades",
		"/v1/users/me",
	} {
		rec := env.request(t, http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusForbidden, rec.Code, "%s: %s", path, rec.Body.String())
		envl := decodeEnvelope(t, rec)
		assert.Equal(t, "account deactivated", envl.Message)
	}
}

func TestMalformedFilterRejected(t *testing.T) {
	env := newTestEnv(t)
	fx := seed(t, env)
	token := env.token(t, fx.admin, "")

	for _, path := range []string{
		"/v1/grades?semester=abc",
		"/v1/grades/statistics?semester=abc",
		"/v1/attendance?date_from=not-a-date",
		"/v1/attendance/statistics?date_to=nope",
		"/v1/students?enrolled_from=nope",
		"/v1/classes?grade=abc",
	} {
		rec := env.request(t, http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code, path)
		envl := decodeEnvelope(t, rec)
		assert.False(t, envl.Success, path)
		assert.Equal(t, "malformed query parameters", envl.Errors["query"], path)
	}
}

func TestGradeUpdatePermissions(t *testing.T) {
	env := newTestEnv(t)
	fx := seed(t, env)
	grd := env.addGrade(t, fx, fx.std1.ID, fx.tchA.ID, 90)

	path := "/v1/grades/" + grd.ID
	body := map[string]interface{}{"grade_value": 95}

	t.Run("another teacher denied", func(t *testing.T) {
		rec := env.request(t, http.MethodPut, path, env.token(t, fx.teacherB, fx.tchB.ID), body)
		assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
	})

	t.Run("authoring teacher allowed", func(t *testing.T) {
		rec := env.request(t, http.MethodPut, path, env.token(t, fx.teacherA, fx.tchA.ID), body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("admin allowed", func(t *testing.T) {
		rec := env.request(t, http.MethodPut, path, env.token(t, fx.admin, ""), map[string]interface{}{"grade_value": 88})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		envl := decodeEnvelope(t, rec)
		var got grade.Grade
		require.NoError(t, json.Unmarshal(envl.Data, &got))
		assert.Equal(t, 88.0, got.Value)
	})

	t.Run("student denied", func(t *testing.T) {
		rec := env.request(t, http.MethodPut, path, env.token(t, fx.studentU1, fx.std1.ID), body)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestGradeListNarrowing(t *testing.T) {
	env := newTestEnv(t)
	fx := seed(t, env)
	env.addGrade(t, fx, fx.std1.ID, fx.tchA.ID, 80)
	env.addGrade(t, fx, fx.std2.ID, fx.tchA.ID, 70)

	t.Run("student only sees own grades despite filter", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/v1/grades?student_id="+fx.std2.ID, env.token(t, fx.studentU1, fx.std1.ID), nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		envl := decodeEnvelope(t, rec)
		var grades []grade.Grade
		require.NoError(t, json.Unmarshal(envl.Data, &grades))
		require.Len(t, grades, 1)
		assert.Equal(t, fx.std1.ID, grades[0].StudentID)
	})

	t.Run("parent with no linked children sees nothing", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/v1/grades", env.token(t, fx.parentU, fx.grdn.ID), nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		envl := decodeEnvelope(t, rec)
		var grades []grade.Grade
		require.NoError(t, json.Unmarshal(envl.Data, &grades))
		assert.Empty(t, grades)
	})

	t.Run("parent sees linked child's grades", func(t *testing.T) {
		require.NoError(t, env.deps.GuardianSvc.LinkStudent(context.Background(), fx.grdn.ID, fx.std1.ID))
		rec := env.request(t, http.MethodGet, "/v1/grades", env.token(t, fx.parentU, fx.grdn.ID), nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		envl := decodeEnvelope(t, rec)
		var grades []grade.Grade
		require.NoError(t, json.Unmarshal(envl.Data, &grades))
		require.Len(t, grades, 1)
		assert.Equal(t, fx.std1.ID, grades[0].StudentID)
	})

	t.Run("admin sees everything", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/v1/grades", env.token(t, fx.admin, ""), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		envl := decodeEnvelope(t, rec)
		var grades []grade.Grade
		require.NoError(t, json.Unmarshal(envl.Data, &grades))
		assert.Len(t, grades, 2)
		require.NotNil(t, envl.Pagination)
		assert.Equal(t, 2, envl.Pagination.Total)
	})
}

func TestAttendanceUpsertIdempotence(t *testing.T) {
	env := newTestEnv(t)
	fx := seed(t, env)
	token := env.token(t, fx.teacherA, fx.tchA.ID)

	mark := map[string]interface{}{
		"student_id": fx.std1.ID,
		"class_id":   fx.cls.ID,
		"date":       "2026-02-10T00:00:00Z",
		"status":     "absent",
	}
	rec := env.request(t, http.MethodPost, "/v1/attendance", token, mark)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// re-mark the same (student, class, date): overwrite, not duplicate
	mark["status"] = "late"
	rec = env.request(t, http.MethodPost, "/v1/attendance", token, mark)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	records, total, err := env.deps.AttendanceSvc.Query(context.Background(), attendance.QueryFilter{StudentID: fx.std1.ID}, nil, core.Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, attendance.StatusLate, records[0].Status)
}

func TestAttendanceBulkPartialFailure(t *testing.T) {
	env := newTestEnv(t)
	fx := seed(t, env)

	marks := []map[string]interface{}{
		{"student_id": fx.std1.ID, "class_id": fx.cls.ID, "status": "present"},
		{"student_id": fx.std2.ID, "class_id": fx.cls.ID, "status": "bogus"},
		{"student_id": fx.std2.ID, "class_id": fx.cls.ID, "status": "excused"},
	}
	rec := env.request(t, http.MethodPost, "/v1/attendance/bulk", env.token(t, fx.teacherA, fx.tchA.ID), marks)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	envl := decodeEnvelope(t, rec)
	var results []attendance.Result
	require.NoError(t, json.Unmarshal(envl.Data, &results))
	require.Len(t, results, 3)
	assert.True(t, results[0].OK())
	assert.Equal(t, "unknown status", results[1].Error)
	assert.True(t, results[2].OK())

	// earlier successes stand
	_, total, err := env.deps.AttendanceSvc.Query(context.Background(), attendance.QueryFilter{}, nil, core.Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestGradeStatisticsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	fx := seed(t, env)
	env.addGrade(t, fx, fx.std1.ID, fx.tchA.ID, 90)
	env.addGrade(t, fx, fx.std1.ID, fx.tchA.ID, 80)
	env.addGrade(t, fx, fx.std2.ID, fx.tchA.ID, 50)

	t.Run("scoped to own grades for students", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/v1/grades/statistics", env.token(t, fx.studentU1, fx.std1.ID), nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		envl := decodeEnvelope(t, rec)
		var stats grade.Statistics
		require.NoError(t, json.Unmarshal(envl.Statistics, &stats))
		assert.Equal(t, 2, stats.Summary.Count)
		assert.Equal(t, 85.0, stats.Summary.Average)
	})

	t.Run("whole school for admins", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/v1/grades/statistics", env.token(t, fx.admin, ""), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		envl := decodeEnvelope(t, rec)
		var stats grade.Statistics
		require.NoError(t, json.Unmarshal(envl.Statistics, &stats))
		assert.Equal(t, 3, stats.Summary.Count)
		assert.Equal(t, 1, stats.Distribution.Unsatisfactory)
	})
}

func TestStudentDetailAccess(t *testing.T) {
	env := newTestEnv(t)
	fx := seed(t, env)
	path := "/v1/students/" + fx.std1.ID

	t.Run("own profile", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, path, env.token(t, fx.studentU1, fx.std1.ID), nil)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("other student denied", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, path, env.token(t, fx.studentU2, fx.std2.ID), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("teacher may read", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, path, env.token(t, fx.teacherA, fx.tchA.ID), nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("student cannot write", func(t *testing.T) {
		rec := env.request(t, http.MethodPut, path, env.token(t, fx.studentU1, fx.std1.ID), map[string]interface{}{"first_name": "X"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unlinked parent denied", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, path, env.token(t, fx.parentU, fx.grdn.ID), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestWithdrawIsSoftDelete(t *testing.T) {
	env := newTestEnv(t)
	fx := seed(t, env)

	rec := env.request(t, http.MethodDelete, "/v1/students/"+fx.std1.ID, env.token(t, fx.admin, ""), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	std, err := env.deps.StudentSvc.GetByID(context.Background(), fx.std1.ID)
	require.NoError(t, err)
	assert.Equal(t, student.StatusWithdrawn, std.Status)
	assert.False(t, std.ClassID.Valid)
}

func TestNotFoundEnvelope(t *testing.T) {
	env := newTestEnv(t)
	fx := seed(t, env)

	rec := env.request(t, http.MethodGet, "/v1/grades/"+uuid.New().String(), env.token(t, fx.admin, ""), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	envl := decodeEnvelope(t, rec)
	assert.False(t, envl.Success)
	assert.NotEmpty(t, envl.Message)
	assert.NotEmpty(t, envl.MessageUz)
}
