package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freedomgate/portal/internal/plans"
)

// PlanHandler serves the static plan catalog.
type PlanHandler struct{}

// NewPlanHandler constructs a PlanHandler.
func NewPlanHandler() *PlanHandler {
	return &PlanHandler{}
}

// List returns the purchasable plans and accepted payment methods.
func (h *PlanHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"plans":          plans.Catalog,
		"paymentMethods": plans.PaymentMethods,
	})
}
