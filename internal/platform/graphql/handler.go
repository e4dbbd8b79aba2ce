package graphql

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler serves the engine over HTTP at a single endpoint.
type Handler struct {
	engine *Engine
}

// NewHandler creates an HTTP handler around the engine.
func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// Register mounts the GraphQL endpoint on the router.
func (h *Handler) Register(e *echo.Echo) {
	e.POST("/graphql", h.execute)
}

func (h *Handler) execute(c echo.Context) error {
	var req Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, &Response{
			Errors: []Error{{Message: "invalid request body"}},
		})
	}

	resp := h.engine.Execute(c.Request().Context(), req)

	// GraphQL transports errors in-band; the HTTP layer stays 200 so
	// clients always look at the errors array.
	return c.JSON(http.StatusOK, resp)
}
