package configstore

import (
	"net/http"

	"dealerbridge_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler exposes the tenant directory and brand catalog to operators.
type Handler struct {
	store *Store
}

// NewHandler creates a new configstore handler.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// HandleGetTenants returns the full tenant directory.
// GET /api/v1/admin/config/tenants
func (h *Handler) HandleGetTenants(c *gin.Context) {
	dir, err := h.store.Tenants(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, dir)
}

// HandlePutTenants replaces the tenant directory.
// PUT /api/v1/admin/config/tenants
func (h *Handler) HandlePutTenants(c *gin.Context) {
	var dir Directory
	if err := c.ShouldBindJSON(&dir); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid tenant directory", err.Error())
		return
	}

	if err := h.store.PutTenants(c.Request.Context(), dir); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"message": "tenant directory updated", "tenants": len(dir)})
}

// HandleGetBrands returns the brand catalog.
// GET /api/v1/admin/config/brands
func (h *Handler) HandleGetBrands(c *gin.Context) {
	catalog, err := h.store.Brands(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, catalog)
}

// HandlePutBrands replaces the brand catalog.
// PUT /api/v1/admin/config/brands
func (h *Handler) HandlePutBrands(c *gin.Context) {
	var catalog BrandCatalog
	if err := c.ShouldBindJSON(&catalog); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid brand catalog", err.Error())
		return
	}

	if err := h.store.PutBrands(c.Request.Context(), catalog); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"message": "brand catalog updated", "brands": len(catalog)})
}

// HandleRefresh discards the in-memory cache and reloads from the store.
// POST /api/v1/admin/config/refresh
func (h *Handler) HandleRefresh(c *gin.Context) {
	if err := h.store.Refresh(c.Request.Context()); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"message": "configuration reloaded"})
}
