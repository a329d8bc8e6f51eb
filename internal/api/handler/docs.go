package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

// DocsHandler serves the OpenAPI document registered with swag.
type DocsHandler struct {
	instance string
}

// NewDocsHandler serves the swag document registered under instance.
func NewDocsHandler(instance string) *DocsHandler {
	return &DocsHandler{instance: instance}
}

// Get handles GET /api/docs.
//
// @Summary      OpenAPI document
// @Tags         docs
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      500  {object}  errorResponse
// @Router       /docs [get]
func (h *DocsHandler) Get(c echo.Context) error {
	doc, err := swag.ReadDoc(h.instance)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, []byte(doc))
}
