package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"bitbucket.org/mmdatafocus/fabric_backend/workflow"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (h *Handler) CreateCuttingOrder(c *gin.Context) {
	var input models.NewCuttingOrder
	if !h.bindJSON(c, &input) {
		return
	}
	order, err := workflow.CreateCuttingOrder(c.Request.Context(), h.Deps, &input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) GetCuttingOrder(c *gin.Context) {
	id, ok := h.pathId(c, "id")
	if !ok {
		return
	}
	order, err := workflow.GetCuttingOrder(c.Request.Context(), h.Deps, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) ListCuttingOrders(c *gin.Context) {
	orders, err := workflow.ListCuttingOrders(c.Request.Context(), h.Deps, models.CuttingOrderStatus(c.Query("status")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

type orderStatusRequest struct {
	Status string `json:"status" binding:"required,orderstatus"`
}

func (h *Handler) UpdateCuttingOrderStatus(c *gin.Context) {
	id, ok := h.pathId(c, "id")
	if !ok {
		return
	}
	var input orderStatusRequest
	if !h.bindJSON(c, &input) {
		return
	}
	order, err := workflow.UpdateOrderStatus(c.Request.Context(), h.Deps, id, models.CuttingOrderStatus(input.Status))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type consumptionRequest struct {
	RollId       int             `json:"roll_id" binding:"required"`
	ActualLength decimal.Decimal `json:"actual_consumed_length"`
}

func (h *Handler) ReportConsumption(c *gin.Context) {
	id, ok := h.pathId(c, "id")
	if !ok {
		return
	}
	var input consumptionRequest
	if !h.bindJSON(c, &input) {
		return
	}
	detail, err := workflow.ReportConsumption(c.Request.Context(), h.Deps, id, input.RollId, input.ActualLength)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) ConsumptionReport(c *gin.Context) {
	id, ok := h.pathId(c, "id")
	if !ok {
		return
	}
	report, err := workflow.GetConsumptionReport(c.Request.Context(), h.Deps, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) CreateIssuance(c *gin.Context) {
	var input models.NewIssuanceRecord
	if !h.bindJSON(c, &input) {
		return
	}
	record, err := workflow.CreateIssuance(c.Request.Context(), h.Deps, &input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *Handler) GetIssuance(c *gin.Context) {
	id, ok := h.pathId(c, "id")
	if !ok {
		return
	}
	record, err := workflow.GetIssuance(c.Request.Context(), h.Deps, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) CancelIssuance(c *gin.Context) {
	id, ok := h.pathId(c, "id")
	if !ok {
		return
	}
	record, err := workflow.CancelIssuance(c.Request.Context(), h.Deps, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) ListIssuancesByOrder(c *gin.Context) {
	id, ok := h.pathId(c, "id")
	if !ok {
		return
	}
	records, err := workflow.ListIssuancesByOrder(c.Request.Context(), h.Deps, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}
