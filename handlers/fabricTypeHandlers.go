package handlers

import (
	"net/http"
	"strconv"

	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateFabricType(c *gin.Context) {
	var input models.NewFabricType
	if !h.bindJSON(c, &input) {
		return
	}
	fabricType, err := h.Catalog.Create(c.Request.Context(), &input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fabricType)
}

func (h *Handler) UpdateFabricType(c *gin.Context) {
	id, ok := h.pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewFabricType
	if !h.bindJSON(c, &input) {
		return
	}
	fabricType, err := h.Catalog.Update(c.Request.Context(), id, &input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fabricType)
}

func (h *Handler) DeleteFabricType(c *gin.Context) {
	id, ok := h.pathId(c, "id")
	if !ok {
		return
	}
	if err := h.Catalog.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetFabricType(c *gin.Context) {
	id, ok := h.pathId(c, "id")
	if !ok {
		return
	}
	fabricType, err := h.Catalog.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fabricType)
}

func (h *Handler) ListFabricTypes(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	fabricTypes, err := h.Catalog.List(c.Request.Context(), activeOnly)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fabricTypes)
}

func (h *Handler) ToggleFabricTypeActive(c *gin.Context) {
	id, ok := h.pathId(c, "id")
	if !ok {
		return
	}
	var input struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if !h.bindJSON(c, &input) {
		return
	}
	fabricType, err := h.Catalog.ToggleActive(c.Request.Context(), id, *input.IsActive)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fabricType)
}

func (h *Handler) LowStockReport(c *gin.Context) {
	entries, err := h.Catalog.LowStock(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) pathId(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		h.respondError(c, &models.ValidationError{Entity: "request", Field: name, Message: "must be a positive integer"})
		return 0, false
	}
	return id, true
}
