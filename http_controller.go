package accounts

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
)

// RESTProvider is the transport name stamped on requests arriving over HTTP.
const RESTProvider = "rest"

// HTTPController mounts the resource routes on a fiber router and translates
// between HTTP requests and pipeline request contexts.
type HTTPController struct {
	pipeline *Pipeline
	logger   Logger
}

func NewHTTPController(pipeline *Pipeline) *HTTPController {
	if pipeline == nil {
		panic("Missing Pipeline in http controller...")
	}

	return &HTTPController{
		pipeline: pipeline,
		logger:   defLogger{},
	}
}

func (c *HTTPController) WithLogger(logger Logger) *HTTPController {
	c.logger = logger
	return c
}

// RegisterRoutes mounts the API routes.
func (c *HTTPController) RegisterRoutes(app fiber.Router) {
	app.Post("/accounts", c.handle(ResourceAccounts, OpCreate))
	app.Get("/accounts", c.handle(ResourceAccounts, OpFind))
	app.Get("/accounts/:id", c.handle(ResourceAccounts, OpGet))
	app.Patch("/accounts/:id", c.handle(ResourceAccounts, OpPatch))
	app.Put("/accounts/:id", c.handle(ResourceAccounts, OpUpdate))
	app.Delete("/accounts/:id", c.handle(ResourceAccounts, OpRemove))

	app.Post("/authentication", c.handle(ResourceAuthentication, OpCreate))
	app.Get("/authentication", c.handle(ResourceAuthentication, OpFind))
	app.Delete("/authentication/:id", c.handle(ResourceAuthentication, OpRemove))

	app.Get("/documentation", c.handle(ResourceDocumentation, OpFind))
}

func (c *HTTPController) handle(resource Resource, op Operation) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		rc := &RequestContext{
			Resource:  resource,
			Operation: op,
			ID:        ctx.Params("id"),
			Provider:  RESTProvider,
			Query:     queryMap(ctx),
		}

		if body := ctx.Body(); len(body) > 0 {
			data := map[string]any{}
			if err := json.Unmarshal(body, &data); err != nil {
				return WriteError(ctx, Normalize("Invalid JSON payload.", nil, 400))
			}
			rc.Data = data
		}

		result, err := c.pipeline.Run(ctx.UserContext(), rc)
		if err != nil {
			return WriteError(ctx, err)
		}

		status := fiber.StatusOK
		if op == OpCreate {
			status = fiber.StatusCreated
		}

		return ctx.Status(status).JSON(result)
	}
}

func queryMap(ctx *fiber.Ctx) map[string]any {
	queries := ctx.Queries()
	if len(queries) == 0 {
		return nil
	}

	out := make(map[string]any, len(queries))
	for k, v := range queries {
		out[k] = v
	}

	return out
}

// WriteError emits the uniform error body.
func WriteError(ctx *fiber.Ctx, err error) error {
	body := BodyOf(err)
	return ctx.Status(body.Status).JSON(body)
}

// ErrorHandler adapts the error normalizer to fiber's application-level error
// handler, so errors escaping any handler still cross the wire in the uniform
// shape.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return WriteError(ctx, Normalize(fe.Message, nil, fe.Code))
	}
	return WriteError(ctx, err)
}
