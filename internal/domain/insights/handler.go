package insights

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler is the HTTP boundary around the insights service.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/insights", h.BuildInsights)
}

type buildRequest struct {
	Bundle           interface{} `json:"bundle"`
	IncludeResources bool        `json:"includeResources"`
}

// BuildInsights accepts {"bundle": <Bundle|entry array>, "includeResources": bool}
// and returns the derived summary. A bare array is wrapped into a synthetic
// bundle envelope for tolerant callers; any other top-level tag is a client
// error.
func (h *Handler) BuildInsights(c echo.Context) error {
	var req buildRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Bundle == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "bundle is required")
	}

	bundle, err := normalizeBundle(req.Bundle)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	summary, err := h.svc.BuildInsights(bundle, Options{IncludeResources: req.IncludeResources})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, summary)
}

// normalizeBundle validates the top-level container tag, wrapping a bare
// entry array into a synthetic bundle envelope.
func normalizeBundle(raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case map[string]interface{}:
		if rt, _ := v["resourceType"].(string); rt != "Bundle" {
			return nil, fmt.Errorf("bundle.resourceType must be %q", "Bundle")
		}
		return v, nil
	case []interface{}:
		entries := make([]interface{}, 0, len(v))
		for _, el := range v {
			entries = append(entries, map[string]interface{}{"resource": el})
		}
		return map[string]interface{}{
			"resourceType": "Bundle",
			"type":         "collection",
			"entry":        entries,
		}, nil
	}
	return nil, fmt.Errorf("bundle must be an object or an array")
}
