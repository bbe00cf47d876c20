package pipelines

import (
	"dealerbridge_backend/internal/configstore"
	"dealerbridge_backend/internal/crm"
	"dealerbridge_backend/internal/tenants"
	"dealerbridge_backend/platform/apperr"
	"dealerbridge_backend/platform/httpkit"
	"dealerbridge_backend/platform/normalize"

	"github.com/gin-gonic/gin"
)

// Handler exposes the live pipeline listing operators use when editing a
// tenant's pipelineMapping: the mapped stage IDs must exist in the CRM
// account, and this is where to look them up.
type Handler struct {
	store   *configstore.Store
	factory *crm.Factory
}

// NewHandler creates a new pipelines handler.
func NewHandler(store *configstore.Store, factory *crm.Factory) *Handler {
	return &Handler{store: store, factory: factory}
}

// HandleList returns the deal pipelines of one tenant's CRM account.
// GET /api/v1/admin/pipelines/:tenant
func (h *Handler) HandleList(c *gin.Context) {
	dir, err := h.store.Tenants(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	wanted := c.Param("tenant")
	var (
		tenantName string
		record     configstore.TenantRecord
		found      bool
	)
	for _, name := range dir.Names() {
		if normalize.Equal(name, wanted) {
			tenantName, record, found = name, dir[name], true
			break
		}
	}
	if !found {
		httpkit.HandleError(c, apperr.NotFound("unknown tenant: "+wanted))
		return
	}

	token, err := tenants.Credential(tenantName, record)
	if httpkit.HandleError(c, err) {
		return
	}

	pipelines, err := h.factory.ForToken(token).ListPipelines(c.Request.Context(), crm.ObjectTypeDeals)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"tenant": tenantName, "pipelines": pipelines})
}
