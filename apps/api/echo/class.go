package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/class"
)

type classApi struct {
	deps *ServerDeps
}

// Classes are reference data: any authenticated role may read them, only
// admins may write.
func registerClassAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := classApi{deps: deps}

	cg := g.Group("/classes", jwt)
	cg.POST("", api.create, adminMiddleware())
	cg.GET("", api.query)

	dg := cg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, adminMiddleware())
	dg.GET("/teachers", api.queryTeachers)
	dg.POST("/teachers/:teacherID", api.assignTeacher, adminMiddleware())
	dg.DELETE("/teachers/:teacherID", api.unassignTeacher, adminMiddleware())
}

func (api *classApi) create(ctx echo.Context) error {
	var data class.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	data.Clean()
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	cls, err := api.deps.ClassSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return respond(ctx, http.StatusCreated, cls)
}

func (api *classApi) query(ctx echo.Context) error {
	filter := new(class.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errMalformedQuery
	}
	filter.Clean()
	if err := filter.Validate(); err != nil {
		return err
	}

	ordering, err := bindOrdering(ctx, class.OrderFields)
	if err != nil {
		return err
	}
	page, err := bindPagination(ctx, core.DefaultPageLimit)
	if err != nil {
		return err
	}

	classes, total, err := api.deps.ClassSvc.Query(ctx.Request().Context(), *filter, ordering, page)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	if classes == nil {
		classes = []class.Class{}
	}
	return respondList(ctx, classes, core.NewPageMeta(page, total))
}

func (api *classApi) retrieve(ctx echo.Context) error {
	cls, err := api.deps.ClassSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, cls)
}

func (api *classApi) update(ctx echo.Context) error {
	var data class.UpdateClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClass")
	}
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	cls, err := api.deps.ClassSvc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating class")
	}
	return respond(ctx, http.StatusOK, cls)
}

func (api *classApi) queryTeachers(ctx echo.Context) error {
	teacherIDs, err := api.deps.ClassSvc.TeacherIDs(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "resolving assigned teachers")
	}
	if teacherIDs == nil {
		teacherIDs = []string{}
	}
	return respond(ctx, http.StatusOK, teacherIDs)
}

func (api *classApi) assignTeacher(ctx echo.Context) error {
	if err := api.deps.ClassSvc.AssignTeacher(ctx.Request().Context(), ctx.Param("id"), ctx.Param("teacherID")); err != nil {
		return errors.Wrap(err, "assigning teacher")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *classApi) unassignTeacher(ctx echo.Context) error {
	if err := api.deps.ClassSvc.UnassignTeacher(ctx.Request().Context(), ctx.Param("id"), ctx.Param("teacherID")); err != nil {
		return errors.Wrap(err, "unassigning teacher")
	}
	return ctx.NoContent(http.StatusNoContent)
}
