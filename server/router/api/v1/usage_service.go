package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chatassist/chatassist/server/finops"
)

type UsageResponse struct {
	TotalCost float64              `json:"total_cost"`
	Models    []*finops.ModelUsage `json:"models"`
}

// GetUsage reports estimated OpenAI spend since the server started, broken
// down by model.
func (s *APIV1Service) GetUsage(c echo.Context) error {
	return c.JSON(http.StatusOK, &UsageResponse{
		TotalCost: s.Usage.TotalCost(),
		Models:    s.Usage.Snapshot(),
	})
}
