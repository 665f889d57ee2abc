package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/access"
	"github.com/maktabuz/maktab/core/guardian"
	"github.com/maktabuz/maktab/core/student"
)

type guardianApi struct {
	deps *ServerDeps
}

func registerGuardianAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := guardianApi{deps: deps}

	gg := g.Group("/guardians", jwt)
	gg.POST("", api.create, adminMiddleware())
	gg.GET("", api.query, adminMiddleware())

	dg := gg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, adminMiddleware())
	dg.GET("/students", api.queryStudents)
	dg.POST("/students/:studentID", api.linkStudent, adminMiddleware())
	dg.DELETE("/students/:studentID", api.unlinkStudent, adminMiddleware())
}

func (api *guardianApi) create(ctx echo.Context) error {
	var data guardian.NewGuardian
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGuardian")
	}
	data.Clean()
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	grd, err := api.deps.GuardianSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating guardian")
	}
	return respond(ctx, http.StatusCreated, grd)
}

func (api *guardianApi) query(ctx echo.Context) error {
	filter := new(guardian.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errMalformedQuery
	}
	filter.Clean()
	if err := filter.Validate(); err != nil {
		return err
	}

	ordering, err := bindOrdering(ctx, guardian.OrderFields)
	if err != nil {
		return err
	}
	page, err := bindPagination(ctx, core.DefaultPageLimit)
	if err != nil {
		return err
	}

	guardians, total, err := api.deps.GuardianSvc.Query(ctx.Request().Context(), *filter, ordering, page)
	if err != nil {
		return errors.Wrap(err, "querying guardians")
	}
	if guardians == nil {
		guardians = []guardian.Guardian{}
	}
	return respondList(ctx, guardians, core.NewPageMeta(page, total))
}

// getAuthorized fetches the guardian and checks the caller may read the
// profile: admins, or the guardian themselves.
func (api *guardianApi) getAuthorized(ctx echo.Context) (guardian.Guardian, error) {
	actor, err := getContextActor(ctx, api.deps)
	if err != nil {
		return guardian.Guardian{}, err
	}
	grd, err := api.deps.GuardianSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return guardian.Guardian{}, err
	}
	if dec := access.Authorize(actor, access.OpRead, access.ResourceRef{OwnerUserID: grd.UserID}); !dec.Allowed {
		return guardian.Guardian{}, core.NewForbiddenError(dec.Reason)
	}
	return grd, nil
}

func (api *guardianApi) retrieve(ctx echo.Context) error {
	grd, err := api.getAuthorized(ctx)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, grd)
}

func (api *guardianApi) update(ctx echo.Context) error {
	var data guardian.UpdateGuardian
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGuardian")
	}
	data.Clean()
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	grd, err := api.deps.GuardianSvc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating guardian")
	}
	return respond(ctx, http.StatusOK, grd)
}

func (api *guardianApi) queryStudents(ctx echo.Context) error {
	grd, err := api.getAuthorized(ctx)
	if err != nil {
		return err
	}

	studentIDs, err := api.deps.GuardianSvc.StudentIDs(ctx.Request().Context(), grd.ID)
	if err != nil {
		return errors.Wrap(err, "resolving linked students")
	}
	if len(studentIDs) == 0 {
		return respond(ctx, http.StatusOK, []student.Student{})
	}

	filter := student.QueryFilter{IDs: studentIDs}
	students, _, err := api.deps.StudentSvc.Query(ctx.Request().Context(), filter, nil, core.Pagination{Page: 1, Limit: core.MaxPageLimit})
	if err != nil {
		return errors.Wrap(err, "querying linked students")
	}
	return respond(ctx, http.StatusOK, students)
}

func (api *guardianApi) linkStudent(ctx echo.Context) error {
	if err := api.deps.GuardianSvc.LinkStudent(ctx.Request().Context(), ctx.Param("id"), ctx.Param("studentID")); err != nil {
		return errors.Wrap(err, "linking student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *guardianApi) unlinkStudent(ctx echo.Context) error {
	if err := api.deps.GuardianSvc.UnlinkStudent(ctx.Request().Context(), ctx.Param("id"), ctx.Param("studentID")); err != nil {
		return errors.Wrap(err, "unlinking student")
	}
	return ctx.NoContent(http.StatusNoContent)
}
