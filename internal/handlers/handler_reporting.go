package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	portssvc "github.com/openbooks/ledger_app/internal/core/ports/services"
	"github.com/openbooks/ledger_app/internal/middleware"
)

// reportingHandler handles HTTP requests for financial reports.
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// registerReportingRoutes registers routes related to reports.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := &reportingHandler{reportingService: reportingService}

	reports := rg.Group("/reports")
	{
		reports.GET("/trial-balance", h.trialBalance)
		reports.GET("/income-statement", h.incomeStatement)
		reports.GET("/balance-sheet", h.balanceSheet)
	}
}

// dateQuery parses a YYYY-MM-DD query parameter, falling back to def when
// absent.
func dateQuery(c *gin.Context, name string, def time.Time) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	parsed, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a date in YYYY-MM-DD format"})
		return time.Time{}, false
	}
	return parsed, true
}

// trialBalance handles GET /reports/trial-balance.
func (h *reportingHandler) trialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	asOf, ok := dateQuery(c, "asOf", time.Now())
	if !ok {
		return
	}

	resp, err := h.reportingService.TrialBalance(c.Request.Context(), asOf)
	if err != nil {
		respondWithError(c, logger, err, "Failed to build trial balance")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// incomeStatement handles GET /reports/income-statement.
func (h *reportingHandler) incomeStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	now := time.Now()
	from, ok := dateQuery(c, "from", time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC))
	if !ok {
		return
	}
	to, ok := dateQuery(c, "to", now)
	if !ok {
		return
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must not be before from"})
		return
	}

	resp, err := h.reportingService.IncomeStatement(c.Request.Context(), from, to)
	if err != nil {
		respondWithError(c, logger, err, "Failed to build income statement")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// balanceSheet handles GET /reports/balance-sheet.
func (h *reportingHandler) balanceSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	asOf, ok := dateQuery(c, "asOf", time.Now())
	if !ok {
		return
	}

	resp, err := h.reportingService.BalanceSheet(c.Request.Context(), asOf)
	if err != nil {
		respondWithError(c, logger, err, "Failed to build balance sheet")
		return
	}
	c.JSON(http.StatusOK, resp)
}
