package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/subject"
)

type subjectApi struct {
	deps *ServerDeps
}

// Subjects are reference data: any authenticated role may read them, only
// admins may write.
func registerSubjectAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := subjectApi{deps: deps}

	sg := g.Group("/subjects", jwt)
	sg.POST("", api.create, adminMiddleware())
	sg.GET("", api.query)

	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, adminMiddleware())
	dg.GET("/teachers", api.queryTeachers)
	dg.POST("/teachers/:teacherID", api.assignTeacher, adminMiddleware())
	dg.DELETE("/teachers/:teacherID", api.unassignTeacher, adminMiddleware())
}

func (api *subjectApi) create(ctx echo.Context) error {
	var data subject.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	data.Clean()
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	sbj, err := api.deps.SubjectSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return respond(ctx, http.StatusCreated, sbj)
}

func (api *subjectApi) query(ctx echo.Context) error {
	filter := new(subject.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errMalformedQuery
	}
	filter.Clean()
	if err := filter.Validate(); err != nil {
		return err
	}

	ordering, err := bindOrdering(ctx, subject.OrderFields)
	if err != nil {
		return err
	}
	page, err := bindPagination(ctx, core.DefaultPageLimit)
	if err != nil {
		return err
	}

	subjects, total, err := api.deps.SubjectSvc.Query(ctx.Request().Context(), *filter, ordering, page)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if subjects == nil {
		subjects = []subject.Subject{}
	}
	return respondList(ctx, subjects, core.NewPageMeta(page, total))
}

func (api *subjectApi) retrieve(ctx echo.Context) error {
	sbj, err := api.deps.SubjectSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, sbj)
}

func (api *subjectApi) update(ctx echo.Context) error {
	var data subject.UpdateSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSubject")
	}
	data.Clean()
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	sbj, err := api.deps.SubjectSvc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating subject")
	}
	return respond(ctx, http.StatusOK, sbj)
}

func (api *subjectApi) queryTeachers(ctx echo.Context) error {
	teacherIDs, err := api.deps.SubjectSvc.TeacherIDs(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "resolving assigned teachers")
	}
	if teacherIDs == nil {
		teacherIDs = []string{}
	}
	return respond(ctx, http.StatusOK, teacherIDs)
}

func (api *subjectApi) assignTeacher(ctx echo.Context) error {
	if err := api.deps.SubjectSvc.AssignTeacher(ctx.Request().Context(), ctx.Param("id"), ctx.Param("teacherID")); err != nil {
		return errors.Wrap(err, "assigning teacher")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *subjectApi) unassignTeacher(ctx echo.Context) error {
	if err := api.deps.SubjectSvc.UnassignTeacher(ctx.Request().Context(), ctx.Param("id"), ctx.Param("teacherID")); err != nil {
		return errors.Wrap(err, "unassigning teacher")
	}
	return ctx.NoContent(http.StatusNoContent)
}
