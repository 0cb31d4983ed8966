package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetly/internal/services"
)

// AnalyticsHandler serves spending aggregates.
type AnalyticsHandler struct {
	analyticsService services.AnalyticsServicer
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService services.AnalyticsServicer) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// GetAnalytics returns the spending dashboard.
// @Summary     Spending analytics
// @Description Totals per category and per month, recent expenses and the active budget's reconciliation
// @Tags        analytics
// @Produce     json
// @Security    CookieAuth
// @Success     200 {object} services.Analytics "Analytics"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analytics [get]
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	analytics, err := h.analyticsService.GetAnalytics(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// GetBudgetAlerts returns allocations that are close to or over their limit.
// @Summary     Budget alerts
// @Description Allocations of the active budget at or above 80% usage, most used first
// @Tags        analytics
// @Produce     json
// @Security    CookieAuth
// @Success     200 {array}  services.BudgetAlert "Alerts"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analytics/alerts [get]
func (h *AnalyticsHandler) GetBudgetAlerts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	alerts, err := h.analyticsService.GetBudgetAlerts(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, alerts)
}
