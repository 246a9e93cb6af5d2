package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"bitbucket.org/mmdatafocus/fabric_backend/workflow"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ReceiveRoll(c *gin.Context) {
	var input models.NewInventoryRoll
	if !h.bindJSON(c, &input) {
		return
	}
	roll, err := h.Deps.Ledger.Receive(c.Request.Context(), &input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, roll)
}

func (h *Handler) GetRoll(c *gin.Context) {
	id, ok := h.pathId(c, "id")
	if !ok {
		return
	}
	roll, err := h.Deps.Ledger.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, roll)
}

func (h *Handler) GetRollByNumber(c *gin.Context) {
	rollNumber := c.Param("number")
	if rollNumber == "" {
		h.respondError(c, &models.ValidationError{Entity: "request", Field: "number", Message: "roll number is required"})
		return
	}
	roll, err := h.Deps.Ledger.GetByNumber(c.Request.Context(), rollNumber)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, roll)
}

func (h *Handler) QueryRolls(c *gin.Context) {
	filter := models.RollFilter{
		LotNumber:     c.Query("lot_number"),
		Status:        models.RollStatus(c.Query("status")),
		Grade:         models.QualityGrade(c.Query("grade")),
		Location:      c.Query("location"),
		IncludeVoided: c.Query("include_voided") == "true",
	}
	if v := c.Query("fabric_type_id"); v != "" {
		id, err := atoiPositive(v)
		if err != nil {
			h.respondError(c, &models.ValidationError{Entity: "request", Field: "fabric_type_id", Message: "must be a positive integer"})
			return
		}
		filter.FabricTypeId = id
	}
	if filter.Status != "" && !filter.Status.Valid() {
		h.respondError(c, &models.ValidationError{Entity: "request", Field: "status", Message: "invalid roll status"})
		return
	}
	if filter.Grade != "" && !filter.Grade.Valid() {
		h.respondError(c, &models.ValidationError{Entity: "request", Field: "grade", Message: "invalid quality grade"})
		return
	}

	rolls, err := h.Deps.Ledger.Query(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rolls)
}

type transitionRequest struct {
	Version int    `json:"version"`
	Status  string `json:"status" binding:"required,rollstatus"`
}

func (h *Handler) TransitionRoll(c *gin.Context) {
	id, ok := h.pathId(c, "id")
	if !ok {
		return
	}
	var input transitionRequest
	if !h.bindJSON(c, &input) {
		return
	}
	roll, err := h.Deps.Ledger.Transition(c.Request.Context(), id, input.Version, models.RollStatus(input.Status))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, roll)
}

type correctionRequest struct {
	Version int `json:"version"`
	models.RollCorrection
}

func (h *Handler) CorrectRoll(c *gin.Context) {
	id, ok := h.pathId(c, "id")
	if !ok {
		return
	}
	var input correctionRequest
	if !h.bindJSON(c, &input) {
		return
	}
	roll, err := h.Deps.Ledger.Correct(c.Request.Context(), id, input.Version, &input.RollCorrection)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, roll)
}

type voidRequest struct {
	Version int    `json:"version"`
	Reason  string `json:"reason"`
}

func (h *Handler) VoidRoll(c *gin.Context) {
	id, ok := h.pathId(c, "id")
	if !ok {
		return
	}
	var input voidRequest
	if !h.bindJSON(c, &input) {
		return
	}
	roll, err := h.Deps.Ledger.Void(c.Request.Context(), id, input.Version, input.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, roll)
}

func (h *Handler) AssessRollGrade(c *gin.Context) {
	id, ok := h.pathId(c, "id")
	if !ok {
		return
	}
	var input models.GradeAssessment
	if !h.bindJSON(c, &input) {
		return
	}
	input.RollId = id
	result, err := workflow.AssessGrade(c.Request.Context(), h.Deps, &input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
