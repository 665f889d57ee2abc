package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/access"
	"github.com/maktabuz/maktab/core/attendance"
)

type attendanceApi struct {
	deps *ServerDeps
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := attendanceApi{deps: deps}

	ag := g.Group("/attendance", jwt)
	ag.POST("", api.mark, staffMiddleware())
	ag.POST("/bulk", api.markBulk, staffMiddleware())
	ag.GET("", api.query)
	ag.GET("/statistics", api.statistics)
	ag.GET("/:id", api.retrieve)
}

// mark records attendance with upsert semantics: re-marking the same
// (student, class, date) overwrites the previous record.
func (api *attendanceApi) mark(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.deps)
	if err != nil {
		return err
	}

	var data attendance.Mark
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Mark")
	}
	data.Clean()
	// teachers always mark as themselves
	if actor.Role == access.RoleTeacher {
		data.TeacherID = actor.ProfileID
	}
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	ref := access.ResourceRef{StudentID: data.StudentID, TeacherID: data.TeacherID}
	if dec := access.Authorize(actor, access.OpCreate, ref); !dec.Allowed {
		return core.NewForbiddenError(dec.Reason)
	}

	att, err := api.deps.AttendanceSvc.Mark(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "marking attendance")
	}
	return respond(ctx, http.StatusCreated, att)
}

// markBulk applies mark per item; a failing item does not roll back the ones
// before it. The response carries one result per input item, in order.
func (api *attendanceApi) markBulk(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.deps)
	if err != nil {
		return err
	}

	var marks []attendance.Mark
	if err := ctx.Bind(&marks); err != nil {
		return errors.Wrap(err, "binding to Mark list")
	}
	if actor.Role == access.RoleTeacher {
		for i := range marks {
			marks[i].TeacherID = actor.ProfileID
		}
	}

	results := api.deps.AttendanceSvc.MarkBatch(ctx.Request().Context(), marks)
	return respond(ctx, http.StatusOK, results)
}

func (api *attendanceApi) query(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.deps)
	if err != nil {
		return err
	}

	filter := new(attendance.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errMalformedQuery
	}
	filter.Clean()
	if err := filter.Validate(); err != nil {
		return err
	}
	filter.Narrow(actor)

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
		return errors.Wrap(err, "querying attendance")
	}
	if records == nil {
		records = []attendance.Attendance{}
	}
	return respondList(ctx, records, core.NewPageMeta(page, total))
}

func (api *attendanceApi) statistics(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.deps)
	if err != nil {
		return err
	}

	filter := new(attendance.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errMalformedQuery
	}
	filter.Clean()
	if err := filter.Validate(); err != nil {
		return err
	}
	filter.Narrow(actor)

	stats, err := api.deps.AttendanceSvc.Statistics(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "computing attendance statistics")
	}
	return respondStats(ctx, stats)
}

func (api *attendanceApi) retrieve(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.deps)
	if err != nil {
		return err
	}

	att, err := api.deps.AttendanceSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	ref := access.ResourceRef{StudentID: att.StudentID, TeacherID: att.TeacherID}
	if dec := access.Authorize(actor, access.OpRead, ref); !dec.Allowed {
		return core.NewForbiddenError(dec.Reason)
	}
	return respond(ctx, http.StatusOK, att)
}
