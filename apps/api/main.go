package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/maktabuz/maktab/apps/api/echo"
	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/attendance"
	"github.com/maktabuz/maktab/core/class"
	"github.com/maktabuz/maktab/core/grade"
	"github.com/maktabuz/maktab/core/guardian"
	"github.com/maktabuz/maktab/core/student"
	"github.com/maktabuz/maktab/core/subject"
	"github.com/maktabuz/maktab/core/teacher"
	"github.com/maktabuz/maktab/core/user"
	emailsvc "github.com/maktabuz/maktab/services/email"
	logsvc "github.com/maktabuz/maktab/services/logger"
	"github.com/maktabuz/maktab/storage/database"
	sqlxrepos "github.com/maktabuz/maktab/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error(fmt.Sprintf("closing database: %v", err), err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc, conf)
	stdSvc := student.NewService(sqlxrepos.NewStudentRepository(db))
	tchSvc := teacher.NewService(sqlxrepos.NewTeacherRepository(db))
	grdnSvc := guardian.NewService(sqlxrepos.NewGuardianRepository(db))
	clsSvc := class.NewService(sqlxrepos.NewClassRepository(db))
	sbjSvc := subject.NewService(sqlxrepos.NewSubjectRepository(db))
	grdSvc := grade.NewService(sqlxrepos.NewGradeRepository(db))
	attSvc := attendance.NewService(sqlxrepos.NewAttendanceRepository(db))

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	if err = core.ParseEmailTemplates(); err != nil {
		logger.Fatal(fmt.Sprintf("parsing email templates: %v", err), err)
	}
	user.LoadCommonPasswords(logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(&echoapi.Options{
		Address: conf.Server.Host,
		Deps: &echoapi.ServerDeps{
			Conf:           conf,
			Logger:         logger,
			UserSvc:        usrSvc,
			StudentSvc:     stdSvc,
			TeacherSvc:     tchSvc,
			GuardianSvc:    grdnSvc,
			ClassSvc:       clsSvc,
			SubjectSvc:     sbjSvc,
			GradeSvc:       grdSvc,
			AttendanceSvc:  attSvc,
			Validate:       validate,
			Translator:     translator,
			SignalShutdown: func() { shutdown <- syscall.SIGTERM },
		},
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()

	if err = server.Stop(ctx); err != nil {
		logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return sqlx.NewDb(db, "postgres"), nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
