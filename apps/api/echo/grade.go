package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/access"
	"github.com/maktabuz/maktab/core/grade"
)

type gradeApi struct {
	deps *ServerDeps
}

func registerGradeAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := gradeApi{deps: deps}

	gg := g.Group("/grades", jwt)
	gg.POST("", api.create, staffMiddleware())
	gg.GET("", api.query)
	gg.GET("/statistics", api.statistics)

	dg := gg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, staffMiddleware())
	dg.DELETE("", api.destroy, staffMiddleware())
}

func (api *gradeApi) create(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.deps)
	if err != nil {
		return err
	}

	var data grade.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	data.Clean()
	// teachers always author as themselves
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

	grd, err := api.deps.GradeSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating grade")
	}
	return respond(ctx, http.StatusCreated, grd)
}

func (api *gradeApi) query(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.deps)
	if err != nil {
		return err
	}

	filter := new(grade.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errMalformedQuery
	}
	filter.Clean()
	if err := filter.Validate(); err != nil {
		return err
	}
	filter.Narrow(actor)

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
		return errors.Wrap(err, "querying grades")
	}
	if grades == nil {
		grades = []grade.Grade{}
	}
	return respondList(ctx, grades, core.NewPageMeta(page, total))
}

// statistics computes summary, distribution and GPA over every grade matching
// the (narrowed) filter, unpaginated.
func (api *gradeApi) statistics(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.deps)
	if err != nil {
		return err
	}

	filter := new(grade.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errMalformedQuery
	}
	filter.Clean()
	if err := filter.Validate(); err != nil {
		return err
	}
	filter.Narrow(actor)

	stats, err := api.deps.GradeSvc.Statistics(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "computing grade statistics")
	}
	return respondStats(ctx, stats)
}

func (api *gradeApi) retrieve(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.deps)
	if err != nil {
		return err
	}

	grd, err := api.deps.GradeSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	ref := access.ResourceRef{StudentID: grd.StudentID, TeacherID: grd.TeacherID}
	if dec := access.Authorize(actor, access.OpRead, ref); !dec.Allowed {
		return core.NewForbiddenError(dec.Reason)
	}
	return respond(ctx, http.StatusOK, grd)
}

// update is restricted to admins and the authoring teacher.
func (api *gradeApi) update(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.deps)
	if err != nil {
		return err
	}

	grd, err := api.deps.GradeSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	ref := access.ResourceRef{StudentID: grd.StudentID, TeacherID: grd.TeacherID}
	if dec := access.Authorize(actor, access.OpUpdate, ref); !dec.Allowed {
		return core.NewForbiddenError(dec.Reason)
	}

	var data grade.UpdateGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGrade")
	}
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	grd, err = api.deps.GradeSvc.Update(ctx.Request().Context(), grd.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating grade")
	}
	return respond(ctx, http.StatusOK, grd)
}

func (api *gradeApi) destroy(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.deps)
	if err != nil {
		return err
	}

	grd, err := api.deps.GradeSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	ref := access.ResourceRef{StudentID: grd.StudentID, TeacherID: grd.TeacherID}
	if dec := access.Authorize(actor, access.OpDelete, ref); !dec.Allowed {
		return core.NewForbiddenError(dec.Reason)
	}

	if err := api.deps.GradeSvc.Delete(ctx.Request().Context(), grd.ID); err != nil {
		return errors.Wrap(err, "deleting grade")
	}
	return ctx.NoContent(http.StatusNoContent)
}
