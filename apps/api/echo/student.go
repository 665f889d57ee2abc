package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/access"
	"github.com/maktabuz/maktab/core/attendance"
	"github.com/maktabuz/maktab/core/grade"
	"github.com/maktabuz/maktab/core/student"
)

type studentApi struct {
	deps *ServerDeps
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := studentApi{deps: deps}

	sg := g.Group("/students", jwt)
	sg.POST("", api.create, adminMiddleware())
	sg.GET("", api.query)

	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, adminMiddleware())
	dg.DELETE("", api.withdraw, adminMiddleware())
	dg.GET("/grades", api.queryGrades)
	dg.GET("/attendance", api.queryAttendance)
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	data.Clean()
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	std, err := api.deps.StudentSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return respond(ctx, http.StatusCreated, std)
}

func (api *studentApi) query(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.deps)
	if err != nil {
		return err
	}

	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errMalformedQuery
	}
	filter.Clean()
	if err := filter.Validate(); err != nil {
		return err
	}
	filter.Narrow(actor)

	ordering, err := bindOrdering(ctx, student.OrderFields)
	if err != nil {
		return err
	}
	page, err := bindPagination(ctx, core.DefaultPageLimit)
	if err != nil {
		return err
	}

	students, total, err := api.deps.StudentSvc.Query(ctx.Request().Context(), *filter, ordering, page)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return respondList(ctx, students, core.NewPageMeta(page, total))
}

// getAuthorized fetches the student and checks the caller may read them.
func (api *studentApi) getAuthorized(ctx echo.Context) (student.Student, error) {
	actor, err := getContextActor(ctx, api.deps)
	if err != nil {
		return student.Student{}, err
	}
	std, err := api.deps.StudentSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return student.Student{}, err
	}
	if dec := access.Authorize(actor, access.OpRead, access.ResourceRef{StudentID: std.ID}); !dec.Allowed {
		return student.Student{}, core.NewForbiddenError(dec.Reason)
	}
	return std, nil
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	std, err := api.getAuthorized(ctx)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, std)
}

func (api *studentApi) update(ctx echo.Context) error {
	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	data.Clean()
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	std, err := api.deps.StudentSvc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return respond(ctx, http.StatusOK, std)
}

// withdraw is the soft delete: the student transitions to "withdrawn" and
// loses their class assignment. No rows are removed.
func (api *studentApi) withdraw(ctx echo.Context) error {
	std, err := api.deps.StudentSvc.Withdraw(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "withdrawing student")
	}
	return respond(ctx, http.StatusOK, std)
}

func (api *studentApi) queryGrades(ctx echo.Context) error {
	std, err := api.getAuthorized(ctx)
	if err != nil {
		return err
	}

	filter := new(grade.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errMalformedQuery
	}
	filter.Clean()
	filter.StudentID = std.ID
	filter.StudentIDs = nil
	if err := filter.Validate(); err != nil {
		return err
	}

	ordering, err := bindOrdering(ctx, grade.OrderFields)
	if err != nil {
		return err
	}
	page, err := bindPagination(ctx, core.HeavyPageLimit)
	if err != nil {
		return err
	}

	grades, total, err := api.deps.GradeSvc.Query(ctx.Request().Context(), *filter, ordering, page)
	if err != nil {
		return errors.Wrap(err, "querying student grades")
	}
	if grades == nil {
		grades = []grade.Grade{}
	}
	return respondList(ctx, grades, core.NewPageMeta(page, total))
}

func (api *studentApi) queryAttendance(ctx echo.Context) error {
	std, err := api.getAuthorized(ctx)
	if err != nil {
		return err
	}

	filter := new(attendance.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errMalformedQuery
	}
	filter.Clean()
	filter.StudentID = std.ID
	filter.StudentIDs = nil
	if err := filter.Validate(); err != nil {
		return err
	}

	ordering, err := bindOrdering(ctx, attendance.OrderFields)
	if err != nil {
		return err
	}
	page, err := bindPagination(ctx, core.HeavyPageLimit)
	if err != nil {
		return err
	}

	records, total, err := api.deps.AttendanceSvc.Query(ctx.Request().Context(), *filter, ordering, page)
	if err != nil {
		return errors.Wrap(err, "querying student attendance")
	}
	if records == nil {
		records = []attendance.Attendance{}
	}
	return respondList(ctx, records, core.NewPageMeta(page, total))
}
