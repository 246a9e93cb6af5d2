package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"bitbucket.org/mmdatafocus/fabric_backend/workflow"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (h *Handler) StartCheck(c *gin.Context) {
	var input models.NewInventoryCheck
	if !h.bindJSON(c, &input) {
		return
	}
	check, err := workflow.StartCheck(c.Request.Context(), h.Deps, &input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, check)
}

func (h *Handler) GetCheck(c *gin.Context) {
	id, ok := h.pathId(c, "id")
	if !ok {
		return
	}
	check, err := workflow.GetCheck(c.Request.Context(), h.Deps, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, check)
}

func (h *Handler) ListChecks(c *gin.Context) {
	checks, err := workflow.ListChecks(c.Request.Context(), h.Deps, models.CheckStatus(c.Query("status")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, checks)
}

type countRequest struct {
	ActualLength decimal.Decimal `json:"actual_length"`
	ActualWeight decimal.Decimal `json:"actual_weight"`
	Notes        string          `json:"notes"`
}

func (h *Handler) RecordCount(c *gin.Context) {
	checkId, ok := h.pathId(c, "id")
	if !ok {
		return
	}
	itemId, ok := h.pathId(c, "itemId")
	if !ok {
		return
	}
	var input countRequest
	if !h.bindJSON(c, &input) {
		return
	}
	item, err := workflow.RecordCount(c.Request.Context(), h.Deps, checkId, itemId, input.ActualLength, input.ActualWeight, input.Notes)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) CompleteCheck(c *gin.Context) {
	id, ok := h.pathId(c, "id")
	if !ok {
		return
	}
	report, err := workflow.CompleteCheck(c.Request.Context(), h.Deps, id, h.threshold(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) CancelCheck(c *gin.Context) {
	id, ok := h.pathId(c, "id")
	if !ok {
		return
	}
	check, err := workflow.CancelCheck(c.Request.Context(), h.Deps, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, check)
}

func (h *Handler) CheckReport(c *gin.Context) {
	id, ok := h.pathId(c, "id")
	if !ok {
		return
	}
	report, err := workflow.GetCheckReport(c.Request.Context(), h.Deps, id, h.threshold(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) RunIntegritySweep(c *gin.Context) {
	report, err := workflow.RunIntegritySweep(c.Request.Context(), h.Deps, workflow.DefaultIntegrityConfig())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// threshold reads the per-request discrepancy threshold, falling back to the
// server-wide configuration.
func (h *Handler) threshold(c *gin.Context) decimal.Decimal {
	if v := c.Query("threshold"); v != "" {
		if parsed, err := decimal.NewFromString(v); err == nil && parsed.IsPositive() {
			return parsed
		}
	}
	return h.Threshold
}
