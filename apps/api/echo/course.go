package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mabroukmoatez/formly/core/course"
)

type courseApi struct {
	svc      *course.Service
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, svc *course.Service, validate *validator.Validate) {
	api := courseApi{
		svc:      svc,
		validate: validate,
	}

	cg := g.Group("/courses")
	cg.POST("", api.create)
	cg.GET("/:uuid", api.retrieve)
	cg.POST("/:uuid/sessions", api.createSession)

	sg := g.Group("/sessions/:uuid")
	sg.GET("", api.retrieveEffective)
	sg.PUT("/overrides/:field", api.setOverride)
	sg.DELETE("/overrides/:field", api.resetOverride)
	sg.DELETE("/overrides", api.resetAllOverrides)
}

// Handlers

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.CreateCourse(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	id, err := pathUUID(ctx)
	if err != nil {
		return err
	}

	crs, err := api.svc.GetCourse(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) createSession(ctx echo.Context) error {
	courseUUID, err := pathUUID(ctx)
	if err != nil {
		return err
	}

	var data course.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sess, err := api.svc.CreateSession(ctx.Request().Context(), courseUUID, data)
	if err != nil {
		return errors.Wrap(err, "creating session")
	}
	return ctx.JSON(http.StatusCreated, sess)
}

func (api *courseApi) retrieveEffective(ctx echo.Context) error {
	id, err := pathUUID(ctx)
	if err != nil {
		return err
	}

	eff, err := api.svc.GetEffective(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "resolving session")
	}
	return ctx.JSON(http.StatusOK, eff)
}

func (api *courseApi) setOverride(ctx echo.Context) error {
	id, err := pathUUID(ctx)
	if err != nil {
		return err
	}

	var data course.SetOverride
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetOverride")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	eff, err := api.svc.SetOverride(ctx.Request().Context(), id, ctx.Param("field"), data.Value)
	if err != nil {
		return errors.Wrap(err, "setting override")
	}
	return ctx.JSON(http.StatusOK, eff)
}

func (api *courseApi) resetOverride(ctx echo.Context) error {
	id, err := pathUUID(ctx)
	if err != nil {
		return err
	}

	eff, err := api.svc.ResetOverride(ctx.Request().Context(), id, ctx.Param("field"))
	if err != nil {
		return errors.Wrap(err, "resetting override")
	}
	return ctx.JSON(http.StatusOK, eff)
}

func (api *courseApi) resetAllOverrides(ctx echo.Context) error {
	id, err := pathUUID(ctx)
	if err != nil {
		return err
	}

	eff, err := api.svc.ResetAllOverrides(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "resetting overrides")
	}
	return ctx.JSON(http.StatusOK, eff)
}
