// Package handlers exposes the ledger over HTTP with gin.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"bitbucket.org/mmdatafocus/fabric_backend/catalog"
	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"bitbucket.org/mmdatafocus/fabric_backend/utils"
	"bitbucket.org/mmdatafocus/fabric_backend/workflow"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	Deps      *workflow.Deps
	Catalog   *catalog.Catalog
	Logger    *logrus.Logger
	Threshold decimal.Decimal
}

func New(deps *workflow.Deps, cat *catalog.Catalog, logger *logrus.Logger, threshold decimal.Decimal) *Handler {
	return &Handler{Deps: deps, Catalog: cat, Logger: logger, Threshold: threshold}
}

// RegisterValidations installs the enum validations used by binding tags.
func RegisterValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterValidation("rollstatus", func(fl validator.FieldLevel) bool {
		return models.RollStatus(fl.Field().String()).Valid()
	})
	v.RegisterValidation("qualitygrade", func(fl validator.FieldLevel) bool {
		return models.QualityGrade(fl.Field().String()).Valid()
	})
	v.RegisterValidation("orderstatus", func(fl validator.FieldLevel) bool {
		return models.CuttingOrderStatus(fl.Field().String()).Valid()
	})
	v.RegisterValidation("defectseverity", func(fl validator.FieldLevel) bool {
		return models.DefectSeverity(fl.Field().String()).Valid()
	})
}

// respondError maps the error taxonomy onto HTTP statuses: bad input 400,
// missing 404, lost races and state conflicts 409, dangling references 422.
func (h *Handler) respondError(c *gin.Context, err error) {
	var bindingErrors validator.ValidationErrors
	switch {
	case models.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case models.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case models.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case models.IsReferential(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &bindingErrors):
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
	default:
		h.Logger.WithField("path", c.FullPath()).Error(err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *Handler) bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		h.respondError(c, err)
		return false
	}
	return true
}

func atoiPositive(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, strconv.ErrRange
	}
	return v, nil
}
