package leads

import (
	"net/http"

	"dealerbridge_backend/platform/apperr"
	"dealerbridge_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

type intakeRequest struct {
	InputFields Submission `json:"inputFields"`
}

type intakeResponse struct {
	OutputFields Outcome `json:"outputFields"`
}

// Handler exposes the lead intake endpoint.
type Handler struct {
	processor *Processor
}

// NewHandler creates a new leads handler.
func NewHandler(processor *Processor) *Handler {
	return &Handler{processor: processor}
}

// HandleIntake receives an inbound lead and forwards it to the resolved
// tenant's CRM account.
// POST /api/v1/leads/intake
//
// The response is always an outputFields envelope, failure included, because
// the upstream workflow engine reads its result from the body rather than
// the status code.
func (h *Handler) HandleIntake(c *gin.Context) {
	var req intakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead payload", err.Error())
		return
	}

	outcome, err := h.processor.Process(c.Request.Context(), req.InputFields)
	if err != nil {
		status := http.StatusBadGateway
		if domainErr, ok := err.(*apperr.Error); ok {
			status = domainErr.HTTPStatus()
		}
		outcome.Success = false
		outcome.Message = err.Error()
		c.JSON(status, intakeResponse{OutputFields: outcome})
		return
	}

	httpkit.OK(c, intakeResponse{OutputFields: outcome})
}
