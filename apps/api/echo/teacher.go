package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/access"
	"github.com/maktabuz/maktab/core/grade"
	"github.com/maktabuz/maktab/core/teacher"
)

type teacherApi struct {
	deps *ServerDeps
}

func registerTeacherAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := teacherApi{deps: deps}

	tg := g.Group("/teachers", jwt)
	tg.POST("", api.create, adminMiddleware())
	tg.GET("", api.query, staffMiddleware())

	dg := tg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, adminMiddleware())
	dg.DELETE("", api.terminate, adminMiddleware())
	dg.GET("/grades", api.queryGrades)
	dg.GET("/assignments", api.assignments)
}

func (api *teacherApi) create(ctx echo.Context) error {
	var data teacher.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	data.Clean()
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	tch, err := api.deps.TeacherSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating teacher")
	}
	return respond(ctx, http.StatusCreated, tch)
}

func (api *teacherApi) query(ctx echo.Context) error {
	filter := new(teacher.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errMalformedQuery
	}
	filter.Clean()
	if err := filter.Validate(); err != nil {
		return err
	}

	ordering, err := bindOrdering(ctx, teacher.OrderFields)
	if err != nil {
		return err
	}
	page, err := bindPagination(ctx, core.DefaultPageLimit)
	if err != nil {
		return err
	}

	teachers, total, err := api.deps.TeacherSvc.Query(ctx.Request().Context(), *filter, ordering, page)
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	if teachers == nil {
		teachers = []teacher.Teacher{}
	}
	return respondList(ctx, teachers, core.NewPageMeta(page, total))
}

// getAuthorized fetches the teacher and checks the caller may read the
// profile: admins, or the teacher themselves.
func (api *teacherApi) getAuthorized(ctx echo.Context) (teacher.Teacher, error) {
	actor, err := getContextActor(ctx, api.deps)
	if err != nil {
		return teacher.Teacher{}, err
	}
	tch, err := api.deps.TeacherSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return teacher.Teacher{}, err
	}
	if dec := access.Authorize(actor, access.OpRead, access.ResourceRef{TeacherID: tch.ID}); !dec.Allowed {
		return teacher.Teacher{}, core.NewForbiddenError(dec.Reason)
	}
	return tch, nil
}

func (api *teacherApi) retrieve(ctx echo.Context) error {
	tch, err := api.getAuthorized(ctx)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, tch)
}

func (api *teacherApi) update(ctx echo.Context) error {
	var data teacher.UpdateTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTeacher")
	}
	data.Clean()
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	tch, err := api.deps.TeacherSvc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating teacher")
	}
	return respond(ctx, http.StatusOK, tch)
}

// terminate is the soft delete: the teacher transitions to "terminated".
func (api *teacherApi) terminate(ctx echo.Context) error {
	tch, err := api.deps.TeacherSvc.Terminate(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "terminating teacher")
	}
	return respond(ctx, http.StatusOK, tch)
}

func (api *teacherApi) queryGrades(ctx echo.Context) error {
	tch, err := api.getAuthorized(ctx)
	if err != nil {
		return err
	}

	filter := new(grade.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errMalformedQuery
	}
	filter.Clean()
	filter.TeacherID = tch.ID
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
		return errors.Wrap(err, "querying teacher grades")
	}
	if grades == nil {
		grades = []grade.Grade{}
	}
	return respondList(ctx, grades, core.NewPageMeta(page, total))
}

type assignmentsResponse struct {
	ClassIDs   []string `json:"class_ids"`
	SubjectIDs []string `json:"subject_ids"`
}

func (api *teacherApi) assignments(ctx echo.Context) error {
	tch, err := api.getAuthorized(ctx)
	if err != nil {
		return err
	}
	classIDs, subjectIDs, err := api.deps.TeacherSvc.Assignments(ctx.Request().Context(), tch.ID)
	if err != nil {
		return errors.Wrap(err, "querying teacher assignments")
	}
	return respond(ctx, http.StatusOK, assignmentsResponse{ClassIDs: classIDs, SubjectIDs: subjectIDs})
}
