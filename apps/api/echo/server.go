package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/attendance"
	"github.com/maktabuz/maktab/core/class"
	"github.com/maktabuz/maktab/core/grade"
	"github.com/maktabuz/maktab/core/guardian"
	"github.com/maktabuz/maktab/core/student"
	"github.com/maktabuz/maktab/core/subject"
	"github.com/maktabuz/maktab/core/teacher"
	"github.com/maktabuz/maktab/core/user"
)

type (
	// ServerDeps carries the service collaborators of the API server.
	ServerDeps struct {
		Conf   *core.Config
		Logger core.Logger

		UserSvc       *user.Service
		StudentSvc    *student.Service
		TeacherSvc    *teacher.Service
		GuardianSvc   *guardian.Service
		ClassSvc      *class.Service
		SubjectSvc    *subject.Service
		GradeSvc      *grade.Service
		AttendanceSvc *attendance.Service

		Validate   *validator.Validate
		Translator ut.Translator

		// SignalShutdown initiates the graceful shutdown of the whole app;
		// called when an unrecoverable error bubbles up to the error handler.
		SignalShutdown func()
	}

	Options struct {
		Address        string
		DisableReqLogs bool
		Deps           *ServerDeps
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
		auth *jwtAuth
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
		auth: newJWTAuth(opts.Deps.Conf),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	deps := s.opts.Deps
	conf := deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	signalShutdown := deps.SignalShutdown
	if signalShutdown == nil {
		signalShutdown = func() {}
	}
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(deps.Logger, deps.Translator, signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(s.auth.config)

	registerUserAPI(v1, jwt, s.auth, deps)
	registerStudentAPI(v1, jwt, deps)
	registerTeacherAPI(v1, jwt, deps)
	registerGuardianAPI(v1, jwt, deps)
	registerClassAPI(v1, jwt, deps)
	registerSubjectAPI(v1, jwt, deps)
	registerGradeAPI(v1, jwt, deps)
	registerAttendanceAPI(v1, jwt, deps)
	registerReportAPI(v1, jwt, deps)
}

func (s *server) Start() {
	if err := s.app.Start(s.opts.Address); err != nil && err != http.ErrServerClosed {
		s.app.Logger.Fatal(err)
	}
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Maktab API!")
}
