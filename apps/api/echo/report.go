package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/attendance"
	"github.com/maktabuz/maktab/core/class"
	"github.com/maktabuz/maktab/core/student"
	"github.com/maktabuz/maktab/core/subject"
	"github.com/maktabuz/maktab/core/teacher"
)

type reportApi struct {
	deps *ServerDeps
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := reportApi{deps: deps}

	rg := g.Group("/reports", jwt)
	rg.GET("/dashboard", api.dashboard, staffMiddleware())
}

type dashboardResponse struct {
	AcademicYear string `json:"academic_year"`
	Semester     int    `json:"semester"`

	Students int `json:"students"`
	Teachers int `json:"teachers"`
	Classes  int `json:"classes"`
	Subjects int `json:"subjects"`

	TodayAttendance attendance.Statistics `json:"today_attendance"`
}

func (api *reportApi) dashboard(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	one := core.Pagination{Page: 1, Limit: 1}

	_, students, err := api.deps.StudentSvc.Query(rctx, student.QueryFilter{Status: string(student.StatusActive)}, nil, one)
	if err != nil {
		return errors.Wrap(err, "counting students")
	}
	_, teachers, err := api.deps.TeacherSvc.Query(rctx, teacher.QueryFilter{Status: string(teacher.StatusActive)}, nil, one)
	if err != nil {
		return errors.Wrap(err, "counting teachers")
	}
	_, classes, err := api.deps.ClassSvc.Query(rctx, class.QueryFilter{AcademicYear: core.CurrentAcademicYear()}, nil, one)
	if err != nil {
		return errors.Wrap(err, "counting classes")
	}
	_, subjects, err := api.deps.SubjectSvc.Query(rctx, subject.QueryFilter{}, nil, one)
	if err != nil {
		return errors.Wrap(err, "counting subjects")
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	todayStats, err := api.deps.AttendanceSvc.Statistics(rctx, attendance.QueryFilter{DateFrom: today, DateTo: today})
	if err != nil {
		return errors.Wrap(err, "computing today's attendance")
	}

	return respond(ctx, http.StatusOK, dashboardResponse{
		AcademicYear:    core.CurrentAcademicYear(),
		Semester:        core.CurrentSemester(),
		Students:        students,
		Teachers:        teachers,
		Classes:         classes,
		Subjects:        subjects,
		TodayAttendance: todayStats,
	})
}
