package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mabroukmoatez/formly/core/session"
)

type sessionApi struct {
	svc      *session.Service
	validate *validator.Validate
}

func registerSessionAPI(g *echo.Group, svc *session.Service, validate *validator.Validate) {
	api := sessionApi{
		svc:      svc,
		validate: validate,
	}

	sg := g.Group("/sessions/:uuid/instances")
	sg.POST("/preview", api.preview)
	sg.POST("", api.generate)
	sg.GET("", api.query)

	ig := g.Group("/instances/:uuid")
	ig.GET("", api.retrieve)
	ig.POST("/cancel", api.cancel)
	ig.POST("/enroll", api.enroll)
}

// Handlers

func (api *sessionApi) preview(ctx echo.Context) error {
	if _, err := pathUUID(ctx); err != nil {
		return err
	}

	var data session.GenerateInstances
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GenerateInstances")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	instances, err := api.svc.Preview(data)
	if err != nil {
		return errors.Wrap(err, "previewing instances")
	}
	return ctx.JSON(http.StatusOK, newInstanceBatchResponse(instances))
}

func (api *sessionApi) generate(ctx echo.Context) error {
	sessionUUID, err := pathUUID(ctx)
	if err != nil {
		return err
	}

	var data session.GenerateInstances
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GenerateInstances")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	instances, err := api.svc.Generate(ctx.Request().Context(), sessionUUID, data)
	if err != nil {
		return errors.Wrap(err, "generating instances")
	}
	return ctx.JSON(http.StatusCreated, newInstanceBatchResponse(instances))
}

func (api *sessionApi) query(ctx echo.Context) error {
	sessionUUID, err := pathUUID(ctx)
	if err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	instances, err := api.svc.QueryBySession(ctx.Request().Context(), sessionUUID, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying instances")
	}
	if instances == nil {
		instances = []session.Instance{}
	}
	return ctx.JSON(http.StatusOK, instances)
}

func (api *sessionApi) retrieve(ctx echo.Context) error {
	id, err := pathUUID(ctx)
	if err != nil {
		return err
	}

	inst, err := api.svc.GetByUUID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting instance")
	}
	return ctx.JSON(http.StatusOK, inst)
}

func (api *sessionApi) cancel(ctx echo.Context) error {
	id, err := pathUUID(ctx)
	if err != nil {
		return err
	}

	var data session.CancelInstance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CancelInstance")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	inst, err := api.svc.Cancel(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "cancelling instance")
	}
	return ctx.JSON(http.StatusOK, inst)
}

func (api *sessionApi) enroll(ctx echo.Context) error {
	id, err := pathUUID(ctx)
	if err != nil {
		return err
	}

	data := EnrollmentRequest{Delta: 1}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollmentRequest")
	}
	if data.Delta == 0 {
		data.Delta = 1
	}

	inst, err := api.svc.RecordEnrollment(ctx.Request().Context(), id, data.Delta)
	if err != nil {
		return errors.Wrap(err, "recording enrollment")
	}
	return ctx.JSON(http.StatusOK, inst)
}

func pathUUID(ctx echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Param("uuid"))
	if err != nil {
		return uuid.Nil, errHttpNotFound
	}
	return id, nil
}

type (
	// InstanceBatchResponse wraps a preview or generation result with
	// its count so "0 instances would be generated" is explicit.
	InstanceBatchResponse struct {
		Count     int                `json:"count"`
		Instances []session.Instance `json:"instances"`
	}

	EnrollmentRequest struct {
		Delta int `json:"delta"`
	}
)

func newInstanceBatchResponse(instances []session.Instance) InstanceBatchResponse {
	if instances == nil {
		instances = []session.Instance{}
	}
	return InstanceBatchResponse{Count: len(instances), Instances: instances}
}
